// Package mssql implements the SQL Server storage dialect on go-mssqldb. Rows
// are staged with the TDS bulk copy API into a session temporary table
// (#Temp...) and procedures are called with EXEC and named parameters.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/jmoiron/sqlx"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
	"github.com/shopspring/decimal"

	"github.com/Ratebah20/HR-plateform-learning/internal/config"
	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
	"github.com/Ratebah20/HR-plateform-learning/internal/storage"
)

const defaultAppName = "hrimport"

// Dialect is the SQL Server storage.Dialect.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func init() { storage.Register(Dialect{}) }

func (Dialect) Name() string       { return "sqlserver" }
func (Dialect) DriverName() string { return "sqlserver" }

// DSN renders desc as a sqlserver:// URL. Without a username the driver uses
// integrated authentication.
func (Dialect) DSN(desc config.Descriptor) (string, error) {
	host, instance, _ := strings.Cut(desc.Server, `\`)
	if desc.Port > 0 {
		host = net.JoinHostPort(host, strconv.Itoa(desc.Port))
	}

	q := url.Values{}
	q.Set("database", desc.Database)
	if desc.Timeout > 0 {
		q.Set("connection timeout", strconv.Itoa(desc.Timeout))
		q.Set("dial timeout", strconv.Itoa(desc.Timeout))
	}
	if enc := encryptMode(desc.Encrypt); enc != "" {
		q.Set("encrypt", enc)
	}
	if desc.TrustServerCertificate != "" {
		b, _ := config.ParseBool(desc.TrustServerCertificate)
		q.Set("TrustServerCertificate", strconv.FormatBool(b))
	}
	app := desc.AppName
	if app == "" {
		app = defaultAppName
	}
	q.Set("app name", app)

	u := &url.URL{Scheme: "sqlserver", Host: host, RawQuery: q.Encode()}
	if instance != "" {
		u.Path = "/" + instance
	}
	if !desc.Trusted {
		u.User = url.UserPassword(desc.Username, desc.Password)
	}
	dsn := u.String()
	if _, err := msdsn.Parse(dsn); err != nil {
		return "", fmt.Errorf("mssql dsn: %w", err)
	}
	return dsn, nil
}

// encryptMode maps ODBC-style Encrypt values onto the driver's.
func encryptMode(v string) string {
	switch s := strings.ToLower(strings.TrimSpace(v)); s {
	case "":
		return ""
	case "yes", "mandatory", "true", "1":
		return "true"
	case "no", "optional", "false", "0":
		return "false"
	default:
		return s
	}
}

func (Dialect) StagingTable(logical string) string {
	if strings.HasPrefix(logical, "#") {
		return logical
	}
	return "#" + logical
}

func (Dialect) CreateStagingSQL(table string, fields []schema.Field) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = msIdent(f.Name) + " " + sqlType(f.Kind) + " NULL"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", tableRef(table), strings.Join(cols, ", "))
}

func sqlType(k schema.Kind) string {
	switch k {
	case schema.KindNumeric:
		return "DECIMAL(19,4)"
	case schema.KindDate:
		return "DATE"
	case schema.KindBoolPrefix:
		return "BIT"
	default:
		return "NVARCHAR(MAX)"
	}
}

// StagingValue sends decimals as their exact text; bulk copy parses it at the
// destination DECIMAL column's scale.
func (Dialect) StagingValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.String()
	default:
		return v
	}
}

// BulkInsert streams rows through mssql.CopyIn on tx. The final Exec flushes
// the batch and reports the number of rows the server accepted.
func (Dialect) BulkInsert(ctx context.Context, tx *sqlx.Tx, table string, columns []string, rows [][]any) (int64, error) {
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Procedure renders EXEC name @p1, ..., @k=@k with every argument bound by
// name. Dates are sent as DATE.
func (Dialect) Procedure(name string, positional []any, named []storage.NamedParam) (string, []any) {
	parts := make([]string, 0, len(positional)+len(named))
	args := make([]any, 0, len(positional)+len(named))
	for i, v := range positional {
		p := "p" + strconv.Itoa(i+1)
		parts = append(parts, "@"+p)
		args = append(args, sql.Named(p, procValue(v)))
	}
	for _, np := range named {
		parts = append(parts, "@"+np.Name+"=@"+np.Name)
		args = append(args, sql.Named(np.Name, procValue(np.Value)))
	}
	q := "EXEC " + msFQN(name)
	if len(parts) > 0 {
		q += " " + strings.Join(parts, ", ")
	}
	return q, args
}

func procValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return civil.DateOf(x)
	case decimal.Decimal:
		return x.String()
	default:
		return v
	}
}

// ServerMessage returns the message of a SQL Server error token.
func (Dialect) ServerMessage(err error) string {
	var me mssql.Error
	if errors.As(err, &me) {
		return me.Message
	}
	return ""
}

// tableRef quotes a permanent table name; temporary names pass through.
func tableRef(name string) string {
	if strings.HasPrefix(name, "#") {
		return name
	}
	return msFQN(name)
}

// msIdent quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// msFQN quotes a possibly schema-qualified name like "dbo.sp_Import".
func msFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = msIdent(p)
	}
	return strings.Join(parts, ".")
}
