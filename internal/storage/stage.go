package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ratebah20/HR-plateform-learning/internal/logging"
	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
)

// CreateStaging declares the session temporary table for fields. The
// statement carries no arguments so it runs at session scope.
func CreateStaging(ctx context.Context, s *Session, table string, fields []schema.Field) error {
	q := s.dialect.CreateStagingSQL(table, fields)
	if _, err := s.tx.ExecContext(ctx, q); err != nil {
		return &StagingLoadError{Table: table, ServerMessage: s.dialect.ServerMessage(err), Err: fmt.Errorf("create: %w", err)}
	}
	logging.Debugf("storage: created %s (%d columns)", table, len(fields))
	return nil
}

// Stage bulk-loads recs into table in one operation, columns in the given
// order. The load is all-or-nothing: any rejection, or a reported count that
// differs from len(recs), is a *StagingLoadError and the session must be
// rolled back by the caller.
func Stage(ctx context.Context, s *Session, table string, columns []string, recs []schema.Record) (int64, error) {
	if len(recs) == 0 {
		logging.Warnf("storage: nothing to stage into %s", table)
		return 0, nil
	}

	rows := make([][]any, len(recs))
	for i, rec := range recs {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = s.dialect.StagingValue(rec[c])
		}
		rows[i] = row
	}

	n, err := s.dialect.BulkInsert(ctx, s.tx, table, columns, rows)
	if err != nil {
		return n, &StagingLoadError{
			Table:         table,
			Expected:      len(recs),
			Loaded:        n,
			ServerMessage: s.dialect.ServerMessage(err),
			Err:           err,
		}
	}
	if n != int64(len(recs)) {
		return n, &StagingLoadError{Table: table, Expected: len(recs), Loaded: n, Err: ErrRowCountMismatch}
	}
	logging.Infof("storage: staged %d rows into %s", n, table)
	return n, nil
}

// PreparedInsert executes stmtSQL once per row on a statement prepared in
// tx and sums the affected counts. Dialects without a bulk protocol use it.
func PreparedInsert(ctx context.Context, tx *sqlx.Tx, stmtSQL string, rows [][]any) (int64, error) {
	stmt, err := tx.PreparexContext(ctx, stmtSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var total int64
	for i, row := range rows {
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			return total, fmt.Errorf("insert row %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}
