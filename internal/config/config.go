// Package config resolves the SQL Server connection descriptor from an INI
// file with a [sqlserver] section, environment overrides and an optional
// .env file.
//
// Resolution order for the file itself:
//
//  1. PLATFORM_HR_CONFIG, which must point at an existing file when set.
//  2. An explicit path (the --config flag).
//  3. ./config.ini, <exe dir>/config.ini, <exe dir>/../config.ini.
//
// Every key can then be overridden with HRIMPORT_SQLSERVER_<KEY>, e.g.
// HRIMPORT_SQLSERVER_PASSWORD.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvConfigPath names the environment variable that pins the config file.
	EnvConfigPath = "PLATFORM_HR_CONFIG"
	// EnvPrefix prefixes per-key environment overrides.
	EnvPrefix = "HRIMPORT"

	section        = "sqlserver"
	defaultDriver  = "ODBC Driver 17 for SQL Server"
	defaultTimeout = 30
)

// ErrNoConfig is returned when no configuration file can be located.
var ErrNoConfig = errors.New("no config.ini found; copy config.ini.example and edit credentials")

// Options controls where Load looks. Zero values mean process defaults.
type Options struct {
	Path   string              // explicit file, lower priority than PLATFORM_HR_CONFIG
	ExeDir string              // directory of the running binary
	Getenv func(string) string // defaults to os.Getenv
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. An empty path tries ./.env and
// ignores its absence; an explicit path must exist.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Locate returns the configuration file to read.
func Locate(opts Options) (string, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if pinned := getenv(EnvConfigPath); pinned != "" {
		if _, err := os.Stat(pinned); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfigPath, pinned, err)
		}
		return pinned, nil
	}
	if opts.Path != "" {
		if _, err := os.Stat(opts.Path); err != nil {
			return "", fmt.Errorf("config %s: %w", opts.Path, err)
		}
		return opts.Path, nil
	}

	candidates := []string{"config.ini"}
	if opts.ExeDir != "" {
		candidates = append(candidates,
			filepath.Join(opts.ExeDir, "config.ini"),
			filepath.Join(opts.ExeDir, "..", "config.ini"),
		)
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c, nil
		}
	}
	return "", ErrNoConfig
}

// Load locates the file, reads the [sqlserver] section and applies
// environment overrides. Malformed scalar values (port, timeout, booleans)
// are reported together.
func Load(opts Options) (Descriptor, string, error) {
	path, err := Locate(opts)
	if err != nil {
		return Descriptor{}, "", err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault(key("driver"), defaultDriver)
	v.SetDefault(key("timeout"), strconv.Itoa(defaultTimeout))

	if err := v.ReadInConfig(); err != nil {
		return Descriptor{}, path, fmt.Errorf("read config %s: %w", path, err)
	}
	d, err := fromViper(v)
	if err != nil {
		return Descriptor{}, path, fmt.Errorf("config %s: %w", path, err)
	}
	return d, path, nil
}

func key(k string) string { return section + "." + k }

func fromViper(v *viper.Viper) (Descriptor, error) {
	get := func(k string) string { return strings.TrimSpace(v.GetString(key(k))) }

	var errs *multierror.Error
	d := Descriptor{
		Driver:                 get("driver"),
		Server:                 get("server"),
		Database:               get("database"),
		Username:               get("username"),
		Password:               v.GetString(key("password")),
		Encrypt:                get("encrypt"),
		TrustServerCertificate: get("trust_server_certificate"),
		AppName:                get("app_name"),
	}

	if s := get("port"); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: invalid port %q", key("port"), s))
		}
		d.Port = p
	}
	if s := get("timeout"); s != "" {
		t, err := strconv.Atoi(s)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: invalid timeout %q", key("timeout"), s))
		}
		d.Timeout = t
	}
	if s := get("trusted_connection"); s != "" {
		b, ok := ParseBool(s)
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("%s: invalid boolean %q", key("trusted_connection"), s))
		}
		d.Trusted = b
	}
	return d, errs.ErrorOrNil()
}

// ParseBool accepts the INI boolean spellings 1/true/yes/on and
// 0/false/no/off, case-insensitively.
func ParseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
