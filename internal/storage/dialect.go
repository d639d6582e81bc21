// Package storage holds the database session used by one import run and the
// backend-agnostic operations performed on it: staging rows into a session
// temporary table and invoking a stored procedure.
//
// Backends (SQL Server, Postgres) implement Dialect and register themselves
// at init time; importing storage/all makes every built-in dialect available.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/Ratebah20/HR-plateform-learning/internal/config"
	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
)

// Dialect captures everything that differs between database backends.
type Dialect interface {
	// Name is the registry key, e.g. "sqlserver".
	Name() string
	// DriverName is the database/sql driver to open.
	DriverName() string
	// DSN builds a connection string from a validated descriptor.
	DSN(desc config.Descriptor) (string, error)

	// StagingTable decorates a logical staging name, e.g. "TempOLU" becomes
	// "#TempOLU" on SQL Server.
	StagingTable(logical string) string
	// CreateStagingSQL declares a session temporary table for fields.
	CreateStagingSQL(table string, fields []schema.Field) string
	// StagingValue converts a coerced value into what BulkInsert accepts.
	StagingValue(v any) any
	// BulkInsert loads rows into table inside tx and returns the count the
	// server reported.
	BulkInsert(ctx context.Context, tx *sqlx.Tx, table string, columns []string, rows [][]any) (int64, error)

	// Procedure renders the statement and arguments invoking a stored
	// procedure with positional then named parameters.
	Procedure(name string, positional []any, named []NamedParam) (string, []any)

	// ServerMessage extracts the server's own message from a driver error,
	// or "" when err did not come from the server.
	ServerMessage(err error) string
}

var (
	dialectMu sync.RWMutex
	dialects  = map[string]Dialect{}
)

// Register makes a dialect available by name. It is called from backend
// init functions; registering the same name twice replaces the first.
func Register(d Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()
	dialects[d.Name()] = d
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, error) {
	dialectMu.RLock()
	d, ok := dialects[name]
	dialectMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no storage dialect registered for %q (have %v)", name, Names())
	}
	return d, nil
}

// Names lists registered dialects, sorted.
func Names() []string {
	dialectMu.RLock()
	defer dialectMu.RUnlock()
	out := make([]string, 0, len(dialects))
	for n := range dialects {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
