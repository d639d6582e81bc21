package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Ratebah20/HR-plateform-learning/internal/config"
	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
)

// sqliteDialect runs the storage operations against an embedded database.
// The "procedure" is a plain SELECT, enough to observe what the session sees.
type sqliteDialect struct{}

func (sqliteDialect) Name() string                          { return "sqlite-test" }
func (sqliteDialect) DriverName() string                    { return "sqlite" }
func (sqliteDialect) DSN(config.Descriptor) (string, error) { return "", nil }
func (sqliteDialect) StagingTable(l string) string          { return l }
func (sqliteDialect) StagingValue(v any) any                { return v }
func (sqliteDialect) ServerMessage(err error) string        { return "" }

func (sqliteDialect) CreateStagingSQL(table string, fields []schema.Field) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	return fmt.Sprintf("CREATE TEMP TABLE %s (%s)", table, strings.Join(cols, ", "))
}

func (sqliteDialect) BulkInsert(ctx context.Context, tx *sqlx.Tx, table string, columns []string, rows [][]any) (int64, error) {
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), ph)
	return PreparedInsert(ctx, tx, q, rows)
}

func (sqliteDialect) Procedure(name string, positional []any, _ []NamedParam) (string, []any) {
	return "SELECT COUNT(*) AS n FROM " + name, positional
}

func sqliteDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staging.db")
	db, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE staging (nom_formation TEXT NOT NULL, budget TEXT)`)
	require.NoError(t, err)
	return path
}

func countRows(t *testing.T, path string) int {
	t.Helper()
	db, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM staging`))
	return n
}

func openSQLiteSession(t *testing.T, path string) *Session {
	t.Helper()
	db, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	s, err := NewSession(context.Background(), db, sqliteDialect{})
	require.NoError(t, err)
	return s
}

func TestStage_RejectedLoadLeavesNothing(t *testing.T) {
	t.Parallel()

	path := sqliteDB(t)
	s := openSQLiteSession(t, path)

	recs := []schema.Record{
		{"nom_formation": "Excel", "budget": "1200"},
		{"nom_formation": "Go", "budget": "800"},
		{"nom_formation": nil, "budget": "5"},
	}
	_, err := Stage(context.Background(), s, "staging", []string{"nom_formation", "budget"}, recs)
	var serr *StagingLoadError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 3, serr.Expected)
	require.NoError(t, s.Close())

	assert.Equal(t, 0, countRows(t, path))
}

func TestStage_CommittedLoadIsVisible(t *testing.T) {
	t.Parallel()

	path := sqliteDB(t)
	s := openSQLiteSession(t, path)

	recs := []schema.Record{
		{"nom_formation": "Excel", "budget": "1200"},
		{"nom_formation": "Go", "budget": nil},
	}
	n, err := Stage(context.Background(), s, "staging", []string{"nom_formation", "budget"}, recs)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	require.NoError(t, s.Commit())
	require.NoError(t, s.Close())

	assert.Equal(t, 2, countRows(t, path))
}

func TestSession_TempTableVisibleToCall(t *testing.T) {
	t.Parallel()

	s := openSQLiteSession(t, sqliteDB(t))
	defer s.Close()
	ctx := context.Background()

	fields := []schema.Field{{Name: "titre"}, {Name: "heures"}}
	require.NoError(t, CreateStaging(ctx, s, "tmp_olu", fields))
	_, err := Stage(ctx, s, "tmp_olu", []string{"titre", "heures"}, []schema.Record{
		{"titre": "Sécurité", "heures": "2"},
		{"titre": "RGPD", "heures": nil},
		{"titre": nil, "heures": nil},
	})
	require.NoError(t, err)

	rs, err := Invoke(ctx, s, Call{Name: "tmp_olu", Fetch: true})
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, []string{"n"}, rs.Columns)
	assert.EqualValues(t, 3, rs.Rows[0][0])
}

func TestInvoke_FailureDiscardsStagedRows(t *testing.T) {
	t.Parallel()

	path := sqliteDB(t)
	s := openSQLiteSession(t, path)
	ctx := context.Background()

	n, err := Stage(ctx, s, "staging", []string{"nom_formation", "budget"}, []schema.Record{
		{"nom_formation": "Excel", "budget": "1200"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = Invoke(ctx, s, Call{Name: "no_such_table", Fetch: true})
	var perr *ProcedureError
	require.ErrorAs(t, err, &perr)
	require.NoError(t, s.Close())

	assert.Equal(t, 0, countRows(t, path))
}
