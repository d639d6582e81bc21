package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Ratebah20/HR-plateform-learning/internal/config"
	"github.com/Ratebah20/HR-plateform-learning/internal/logging"
)

// openDB is a test hook that points to sqlx.Open by default.
var openDB = sqlx.Open

// Session is one exclusive connection and the transaction open on it. Staging
// and procedure invocation both run on the same session so the procedure
// sees the session's temporary table.
//
// A Session is not safe for concurrent use.
type Session struct {
	db      *sqlx.DB
	conn    *sqlx.Conn
	tx      *sqlx.Tx
	dialect Dialect

	committed bool
	closed    bool
}

// Connect validates desc, opens a single-connection pool with the dialect
// the descriptor names, and begins the session transaction. Every failure is
// a *ConnectionError.
func Connect(ctx context.Context, desc config.Descriptor) (*Session, error) {
	target := desc.String()
	fail := func(err error) (*Session, error) { return nil, &ConnectionError{Target: target, Err: err} }

	if err := desc.Validate(); err != nil {
		return fail(err)
	}
	d, err := Lookup(desc.Dialect())
	if err != nil {
		return fail(err)
	}
	dsn, err := d.DSN(desc)
	if err != nil {
		return fail(fmt.Errorf("dsn: %w", err))
	}
	db, err := openDB(d.DriverName(), dsn)
	if err != nil {
		return fail(fmt.Errorf("open: %w", err))
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(desc.Timeout)*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		if msg := d.ServerMessage(err); msg != "" {
			return fail(errors.New(msg))
		}
		return fail(fmt.Errorf("ping: %w", err))
	}

	s, err := NewSession(ctx, db, d)
	if err != nil {
		_ = db.Close()
		return fail(err)
	}
	logging.Debugf("storage: session open on %s", target)
	return s, nil
}

// NewSession takes an exclusive connection from db and begins a transaction
// on it. The session owns db from here on and closes it in Close.
func NewSession(ctx context.Context, db *sqlx.DB, d Dialect) (*Session, error) {
	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire conn: %w", err)
	}
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Session{db: db, conn: conn, tx: tx, dialect: d}, nil
}

// Dialect returns the session's backend dialect.
func (s *Session) Dialect() Dialect { return s.dialect }

// Tx exposes the session transaction.
func (s *Session) Tx() *sqlx.Tx { return s.tx }

// Commit commits the session transaction. Close must still be called.
func (s *Session) Commit() error {
	if s.closed {
		return errors.New("session closed")
	}
	if s.committed {
		return nil
	}
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.committed = true
	return nil
}

// Close rolls back unless committed, then releases the connection and pool.
// It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if !s.committed {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			keep(fmt.Errorf("rollback: %w", err))
		} else {
			logging.Debugf("storage: session rolled back")
		}
	}
	keep(s.conn.Close())
	keep(s.db.Close())
	return first
}
