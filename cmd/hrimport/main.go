// Command hrimport loads one HR training workbook into its staging table and
// hands it to the job's stored procedure.
//
//	hrimport budget budget_2025.xlsx --annee 2025
//	hrimport olu export_olu.xlsx --date 2025-05-20
//
// main stays tiny: every side effect goes through Deps so execute() can be
// tested without a database.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Ratebah20/HR-plateform-learning/internal/config"
	"github.com/Ratebah20/HR-plateform-learning/internal/datasource"
	"github.com/Ratebah20/HR-plateform-learning/internal/datasource/file"
	"github.com/Ratebah20/HR-plateform-learning/internal/logging"
	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
	"github.com/Ratebah20/HR-plateform-learning/internal/storage"

	// register the built-in dialects; the descriptor's driver picks one.
	_ "github.com/Ratebah20/HR-plateform-learning/internal/storage/all"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// Deps holds the boundaries execute() would otherwise hard-code.
type Deps struct {
	LoadEnv    func(path string) error
	LoadConfig func(opts config.Options) (config.Descriptor, string, error)
	Connect    func(ctx context.Context, desc config.Descriptor) (*storage.Session, error)
	Source     func(path string) datasource.Source

	Getenv func(string) string
	ExeDir string
	Now    func() time.Time
	Stdout io.Writer
}

func defaultDeps() Deps {
	var exeDir string
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	return Deps{
		LoadEnv:    config.LoadEnvFile,
		LoadConfig: config.Load,
		Connect:    storage.Connect,
		Source:     func(path string) datasource.Source { return file.NewLocal(path) },
		Getenv:     os.Getenv,
		ExeDir:     exeDir,
		Now:        time.Now,
		Stdout:     os.Stdout,
	}
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], defaultDeps()))
}

// execute runs the command line and maps the outcome to an exit code.
func execute(ctx context.Context, args []string, deps Deps) int {
	root := newRootCmd(deps)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		logging.Errorf("%v", err)
		return exitCode(err)
	}
	return exitOK
}

// usageError marks a bad command line.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usage(err error) error { return &usageError{err: err} }

func exitCode(err error) int {
	var uerr *usageError
	var verr *schema.ValidationError
	if errors.As(err, &uerr) || errors.As(err, &verr) {
		return exitUsage
	}
	return exitFailure
}
