package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Ratebah20/HR-plateform-learning/internal/config"
	"github.com/Ratebah20/HR-plateform-learning/internal/datasource/file"
	"github.com/Ratebah20/HR-plateform-learning/internal/logging"
	"github.com/Ratebah20/HR-plateform-learning/internal/parser/xlsx"
	"github.com/Ratebah20/HR-plateform-learning/internal/pipeline"
	"github.com/Ratebah20/HR-plateform-learning/internal/rejectlog"
	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
	"github.com/Ratebah20/HR-plateform-learning/internal/storage"
	"github.com/Ratebah20/HR-plateform-learning/internal/transformer"
)

// run imports one workbook for spec. The configuration is resolved before
// the workbook is read so a missing config.ini fails at startup.
func run(ctx context.Context, out io.Writer, spec schema.Spec, path string, param any, opts options, deps Deps) error {
	var desc config.Descriptor
	if !opts.validateOnly {
		if err := deps.LoadEnv(opts.envFile); err != nil {
			return err
		}
		d, cfgPath, err := deps.LoadConfig(config.Options{Path: opts.configPath, ExeDir: deps.ExeDir, Getenv: deps.Getenv})
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		for _, iss := range d.Lint() {
			if iss.Severity == config.SeverityWarning {
				logging.Warnf("config %s: %v", cfgPath, iss)
			}
		}
		logging.Infof("config: %s -> %s", cfgPath, d)
		desc = d
	}

	rs, err := readWorkbook(ctx, path, opts.sheet, deps)
	if err != nil {
		return err
	}

	var onReject transformer.RejectFunc
	if opts.rejects != "" {
		rl, err := rejectlog.Create(opts.rejects, spec.Name)
		if err != nil {
			return err
		}
		defer func() {
			if err := rl.Close(); err != nil {
				logging.Warnf("%v", err)
			} else if n := len(rl.Counts()); n > 0 {
				logging.Infof("rejects: unreadable cells in %d column(s) written to %s", n, rl.Path())
			}
		}()
		onReject = rl.Add
	}

	if opts.validateOnly {
		return dryRun(out, spec, rs, onReject)
	}

	flush := installMetrics(spec.Name, opts, deps.Getenv)
	defer flush()

	p := pipeline.Pipeline{
		Spec:          spec,
		Connect:       func(ctx context.Context) (*storage.Session, error) { return deps.Connect(ctx, desc) },
		CreateStaging: opts.createStaging,
		FetchResults:  opts.fetch,
		OnReject:      onReject,
		Timeout:       time.Duration(desc.Timeout) * time.Second,
	}
	res, err := p.Run(ctx, rs, param)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d rows staged into %s, %s completed (run %s)\n",
		spec.Name, res.Staged, spec.StagingTable, spec.Procedure, res.RunID)
	if res.Output != nil {
		printResultSet(out, res.Output)
	}
	return nil
}

func readWorkbook(ctx context.Context, path, sheet string, deps Deps) (schema.RecordSet, error) {
	src := deps.Source(path)
	sum, err := file.Fingerprint(ctx, src)
	if err != nil {
		return schema.RecordSet{}, err
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return schema.RecordSet{}, err
	}
	defer rc.Close()

	rs, err := xlsx.Parser{Sheet: sheet}.Parse(rc)
	if err != nil {
		return schema.RecordSet{}, fmt.Errorf("%s: %w", src.Name(), err)
	}
	logging.Infof("source: %s xxh3=%s rows=%d columns=%d", src.Name(), sum, rs.Len(), len(rs.Headers))
	return rs, nil
}

// dryRun validates and coerces rs without touching the database.
func dryRun(out io.Writer, spec schema.Spec, rs schema.RecordSet, onReject transformer.RejectFunc) error {
	if err := spec.Validate(rs); err != nil {
		return fmt.Errorf("%s: %w", spec.Name, err)
	}
	_, st := transformer.Coerce{Fields: spec.Fields, OnReject: onReject}.Apply(rs.Rows)

	fmt.Fprintf(out, "%s: columns OK, %d rows, %d fully parsed, %d unreadable cells\n",
		spec.Name, st.Rows, st.ParsedRows, st.TotalNullCells())
	for _, f := range spec.Fields {
		if n := st.NullCells[f.Name]; n > 0 {
			fmt.Fprintf(out, "  %s (%s): %d\n", f.Header, f.Kind, n)
		}
	}
	return nil
}

func printResultSet(out io.Writer, rs *storage.ResultSet) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, c := range rs.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
	for _, row := range rs.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v == nil {
				v = "NULL"
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}
