package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Descriptor holds everything needed to open a session against the database.
type Descriptor struct {
	Driver                 string // ODBC driver name or "postgres"; selects the dialect
	Server                 string
	Port                   int // 0 means the driver default
	Database               string
	Trusted                bool // integrated authentication; Username/Password ignored
	Username               string
	Password               string
	Encrypt                string // passed through: yes/no/strict/mandatory/optional/disable
	TrustServerCertificate string
	Timeout                int // seconds, connection and command
	AppName                string
}

// Dialect names the storage dialect the descriptor targets. ODBC driver
// names select SQL Server.
func (d Descriptor) Dialect() string {
	switch strings.ToLower(strings.TrimSpace(d.Driver)) {
	case "postgres", "postgresql", "pgx":
		return "postgres"
	case "mysql", "mariadb":
		return "mysql"
	}
	return "sqlserver"
}

// String renders the descriptor for logs. The password is never included.
func (d Descriptor) String() string {
	host := d.Server
	if d.Port > 0 {
		host = fmt.Sprintf("%s,%d", d.Server, d.Port)
	}
	auth := "user=" + d.Username
	if d.Trusted {
		auth = "trusted"
	}
	return fmt.Sprintf("%s/%s (%s, %s)", host, d.Database, auth, d.Dialect())
}

// IssueSeverity represents the severity of a descriptor issue.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single finding against a Descriptor. Path is the INI key.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

var knownEncrypt = map[string]struct{}{
	"yes": {}, "no": {}, "true": {}, "false": {}, "mandatory": {}, "optional": {}, "strict": {}, "disable": {},
}

// Lint returns every problem found in d without mutating it.
func (d Descriptor) Lint() []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, k, msg string) {
		issues = append(issues, Issue{Severity: sev, Path: key(k), Message: msg})
	}

	if d.Server == "" {
		add(SeverityError, "server", "server must not be empty")
	}
	if d.Database == "" {
		add(SeverityError, "database", "database must not be empty")
	}
	if d.Port < 0 || d.Port > 65535 {
		add(SeverityError, "port", fmt.Sprintf("port %d out of range", d.Port))
	}
	if d.Timeout <= 0 {
		add(SeverityError, "timeout", "timeout must be a positive number of seconds")
	}
	if d.Trusted {
		if d.Username != "" {
			add(SeverityWarning, "username", "ignored with trusted_connection")
		}
	} else {
		if d.Username == "" {
			add(SeverityError, "username", "username is required unless trusted_connection is set")
		}
		if d.Password == "" {
			add(SeverityError, "password", "password is required unless trusted_connection is set")
		}
	}
	if e := strings.ToLower(d.Encrypt); e != "" {
		if _, ok := knownEncrypt[e]; !ok {
			add(SeverityWarning, "encrypt", fmt.Sprintf("unknown encrypt mode %q", d.Encrypt))
		}
	}
	if t := d.TrustServerCertificate; t != "" {
		if _, ok := ParseBool(t); !ok {
			add(SeverityWarning, "trust_server_certificate", fmt.Sprintf("unrecognized boolean %q", t))
		}
	}
	return issues
}

// Validate aggregates the error-severity issues of Lint, or returns nil.
func (d Descriptor) Validate() error {
	var errs *multierror.Error
	for _, iss := range d.Lint() {
		if iss.Severity == SeverityError {
			errs = multierror.Append(errs, iss)
		}
	}
	return errs.ErrorOrNil()
}
