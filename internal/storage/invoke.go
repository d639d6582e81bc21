package storage

import (
	"context"
	"fmt"

	"github.com/Ratebah20/HR-plateform-learning/internal/logging"
)

// NamedParam is a stored-procedure argument passed by name, without "@".
type NamedParam struct {
	Name  string
	Value any
}

// Call describes one stored-procedure invocation. Positional arguments come
// first, then named ones.
type Call struct {
	Name       string
	Positional []any
	Named      []NamedParam
	Fetch      bool // return the procedure's result set
}

// ResultSet is a fetched result in server order. []byte cells are returned
// as strings.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Invoke runs call on the session. Without Fetch the result is nil. Any
// failure is a *ProcedureError carrying the server's message.
func Invoke(ctx context.Context, s *Session, call Call) (*ResultSet, error) {
	q, args := s.dialect.Procedure(call.Name, call.Positional, call.Named)
	logging.Infof("storage: EXEC %s", call.Name)
	logging.Debugf("storage: %s %v", q, args)

	fail := func(err error) (*ResultSet, error) {
		return nil, &ProcedureError{Procedure: call.Name, ServerMessage: s.dialect.ServerMessage(err), Err: err}
	}

	if !call.Fetch {
		if _, err := s.tx.ExecContext(ctx, q, args...); err != nil {
			return fail(err)
		}
		return nil, nil
	}

	rows, err := s.tx.QueryxContext(ctx, q, args...)
	if err != nil {
		return fail(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fail(fmt.Errorf("columns: %w", err))
	}
	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return fail(fmt.Errorf("scan: %w", err))
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return fail(err)
	}
	if err := rows.Close(); err != nil {
		return fail(err)
	}
	logging.Debugf("storage: fetched %d rows from %s", len(rs.Rows), call.Name)
	return rs, nil
}
