// Package postgres implements the Postgres storage dialect through the pgx
// database/sql driver. Staging uses a TEMP table dropped at commit, and
// procedures are invoked with CALL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Ratebah20/HR-plateform-learning/internal/config"
	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
	"github.com/Ratebah20/HR-plateform-learning/internal/storage"
)

// Dialect is the Postgres storage.Dialect.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func init() { storage.Register(Dialect{}) }

func (Dialect) Name() string       { return "postgres" }
func (Dialect) DriverName() string { return "pgx" }

// DSN renders desc as a postgres:// URL and checks it with pgx.
func (Dialect) DSN(desc config.Descriptor) (string, error) {
	host := desc.Server
	if desc.Port > 0 {
		host = net.JoinHostPort(host, strconv.Itoa(desc.Port))
	}
	q := url.Values{}
	if desc.Timeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(desc.Timeout))
	}
	if mode := sslMode(desc.Encrypt, desc.TrustServerCertificate); mode != "" {
		q.Set("sslmode", mode)
	}
	if desc.AppName != "" {
		q.Set("application_name", desc.AppName)
	}
	u := &url.URL{Scheme: "postgres", Host: host, Path: "/" + desc.Database, RawQuery: q.Encode()}
	if !desc.Trusted {
		u.User = url.UserPassword(desc.Username, desc.Password)
	}
	dsn := u.String()
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return "", fmt.Errorf("postgres dsn: %w", err)
	}
	return dsn, nil
}

func sslMode(encrypt, trust string) string {
	switch strings.ToLower(strings.TrimSpace(encrypt)) {
	case "":
		return ""
	case "disable":
		return "disable"
	case "no", "optional", "false", "0":
		return "prefer"
	case "strict":
		return "verify-full"
	default:
		if ok, _ := config.ParseBool(trust); ok {
			return "require"
		}
		return "verify-full"
	}
}

func (Dialect) StagingTable(logical string) string { return logical }

func (Dialect) CreateStagingSQL(table string, fields []schema.Field) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = pgIdent(f.Name) + " " + sqlType(f.Kind)
	}
	return fmt.Sprintf("CREATE TEMP TABLE %s (%s) ON COMMIT DROP", pgIdent(table), strings.Join(cols, ", "))
}

func sqlType(k schema.Kind) string {
	switch k {
	case schema.KindNumeric:
		return "NUMERIC"
	case schema.KindDate:
		return "DATE"
	case schema.KindBoolPrefix:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// StagingValue sends decimals as their exact text form.
func (Dialect) StagingValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}
	return v
}

// BulkInsert runs a prepared INSERT per row in tx.
func (Dialect) BulkInsert(ctx context.Context, tx *sqlx.Tx, table string, columns []string, rows [][]any) (int64, error) {
	return storage.PreparedInsert(ctx, tx, insertSQL(table, columns), rows)
}

func insertSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	ph := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = pgIdent(c)
		ph[i] = "$" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", pgIdent(table), strings.Join(cols, ", "), strings.Join(ph, ", "))
}

// Procedure renders CALL name($1, ..., k => $n).
func (Dialect) Procedure(name string, positional []any, named []storage.NamedParam) (string, []any) {
	parts := make([]string, 0, len(positional)+len(named))
	args := make([]any, 0, len(positional)+len(named))
	for _, v := range positional {
		args = append(args, v)
		parts = append(parts, "$"+strconv.Itoa(len(args)))
	}
	for _, np := range named {
		args = append(args, np.Value)
		parts = append(parts, pgIdent(np.Name)+" => $"+strconv.Itoa(len(args)))
	}
	return fmt.Sprintf("CALL %s(%s)", pgFQN(name), strings.Join(parts, ", ")), args
}

// ServerMessage returns the message of a Postgres error response.
func (Dialect) ServerMessage(err error) string {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return ""
}

// pgIdent quotes a Postgres identifier, preserving case.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}
