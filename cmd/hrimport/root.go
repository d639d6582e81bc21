package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ratebah20/HR-plateform-learning/internal/jobs"
	"github.com/Ratebah20/HR-plateform-learning/internal/logging"
	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
)

// options are the flags shared by every job.
type options struct {
	configPath string
	envFile    string
	verbose    bool
	sheet      string
	rejects    string

	createStaging bool
	fetch         bool
	validateOnly  bool

	metricsBackend string
	pushgatewayURL string
	dogstatsdAddr  string
}

func newRootCmd(deps Deps) *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "hrimport <job> <excel-path>",
		Short:         "Import HR training workbooks into SQL Server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usage(fmt.Errorf("unknown job %q (have %s)", args[0], strings.Join(jobs.Names(), ", ")))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.verbose {
				logging.SetLevel(logging.LevelDebug)
			}
			return nil
		},
	}
	if deps.Stdout != nil {
		root.SetOut(deps.Stdout)
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usage(err) })

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config.ini path (PLATFORM_HR_CONFIG takes precedence)")
	pf.StringVar(&opts.envFile, "env-file", "", ".env file loaded before the configuration (default ./.env when present)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logs")
	pf.StringVar(&opts.sheet, "sheet", "", "worksheet to read (default: first sheet)")
	pf.StringVar(&opts.rejects, "rejects", "", "write cells that could not be read to this CSV file")
	pf.BoolVar(&opts.createStaging, "create-staging", false, "create the session staging table before loading it")
	pf.BoolVar(&opts.fetch, "fetch", false, "print the procedure's result set")
	pf.BoolVar(&opts.validateOnly, "validate", false, "check columns and coercion only; do not connect")
	pf.StringVar(&opts.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (env METRICS_BACKEND)")
	pf.StringVar(&opts.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	pf.StringVar(&opts.dogstatsdAddr, "dogstatsd-addr", "", "DogStatsD address (env DOGSTATSD_ADDR)")

	for _, spec := range jobs.All() {
		root.AddCommand(newJobCmd(spec, &opts, deps))
	}
	return root
}

func newJobCmd(spec schema.Spec, opts *options, deps Deps) *cobra.Command {
	var raw string

	param := "--" + spec.Param.Flag
	switch spec.Param.Kind {
	case schema.ParamYear:
		param += " YYYY"
	case schema.ParamDate:
		param = "[" + param + " YYYY-MM-DD]"
	}

	cmd := &cobra.Command{
		Use:   spec.Name + " <excel-path> " + param,
		Short: spec.Description,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usage(fmt.Errorf("%s: expected one workbook path, got %d arguments", spec.Name, len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := spec.Param.Parse(raw, deps.Now())
			if err != nil {
				return usage(fmt.Errorf("%s: %w", spec.Name, err))
			}
			return run(cmd.Context(), cmd.OutOrStdout(), spec, args[0], value, *opts, deps)
		},
	}

	help := "training year (YYYY)"
	if spec.Param.Kind == schema.ParamDate {
		help = "import date (YYYY-MM-DD, default today)"
	}
	cmd.Flags().StringVar(&raw, spec.Param.Flag, "", help)
	return cmd
}
