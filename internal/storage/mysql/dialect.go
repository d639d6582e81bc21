// Package mysql implements the MySQL/MariaDB storage dialect through
// go-sql-driver/mysql. Staging uses a session TEMPORARY table and procedures
// are invoked with CALL. MySQL has no named procedure arguments, so named
// parameters follow the positional ones in order.
package mysql

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Ratebah20/HR-plateform-learning/internal/config"
	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
	"github.com/Ratebah20/HR-plateform-learning/internal/storage"
)

const defaultPort = 3306

// Dialect is the MySQL storage.Dialect.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func init() { storage.Register(Dialect{}) }

func (Dialect) Name() string       { return "mysql" }
func (Dialect) DriverName() string { return "mysql" }

// DSN renders desc with the driver's own config type. Trusted connections
// have no MySQL equivalent.
func (Dialect) DSN(desc config.Descriptor) (string, error) {
	if desc.Trusted {
		return "", errors.New("mysql: trusted_connection is not supported; set username and password")
	}
	port := desc.Port
	if port == 0 {
		port = defaultPort
	}

	cfg := mysql.NewConfig()
	cfg.User = desc.Username
	cfg.Passwd = desc.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(desc.Server, strconv.Itoa(port))
	cfg.DBName = desc.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if desc.Timeout > 0 {
		cfg.Timeout = time.Duration(desc.Timeout) * time.Second
	}
	cfg.TLSConfig = tlsMode(desc.Encrypt, desc.TrustServerCertificate)

	dsn := cfg.FormatDSN()
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	return dsn, nil
}

func tlsMode(encrypt, trust string) string {
	switch strings.ToLower(strings.TrimSpace(encrypt)) {
	case "":
		return ""
	case "disable", "no", "false", "0":
		return "false"
	case "optional":
		return "preferred"
	default:
		if ok, _ := config.ParseBool(trust); ok {
			return "skip-verify"
		}
		return "true"
	}
}

func (Dialect) StagingTable(logical string) string { return logical }

func (Dialect) CreateStagingSQL(table string, fields []schema.Field) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = myIdent(f.Name) + " " + sqlType(f.Kind) + " NULL"
	}
	return fmt.Sprintf("CREATE TEMPORARY TABLE %s (%s)", myIdent(table), strings.Join(cols, ", "))
}

func sqlType(k schema.Kind) string {
	switch k {
	case schema.KindNumeric:
		return "DECIMAL(19,4)"
	case schema.KindDate:
		return "DATE"
	case schema.KindBoolPrefix:
		return "BOOLEAN"
	default:
		return "LONGTEXT"
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
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = myIdent(c)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		myIdent(table), strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))
	return storage.PreparedInsert(ctx, tx, q, rows)
}

// Procedure renders CALL name(?, ...).
func (Dialect) Procedure(name string, positional []any, named []storage.NamedParam) (string, []any) {
	args := append(make([]any, 0, len(positional)+len(named)), positional...)
	for _, np := range named {
		args = append(args, np.Value)
	}
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	return fmt.Sprintf("CALL %s(%s)", myFQN(name), ph), args
}

// ServerMessage returns "Error <number>: <message>" for server errors.
func (Dialect) ServerMessage(err error) string {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return fmt.Sprintf("Error %d: %s", me.Number, me.Message)
	}
	return ""
}

// myIdent quotes a MySQL identifier with backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func myFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = myIdent(p)
	}
	return strings.Join(parts, ".")
}
