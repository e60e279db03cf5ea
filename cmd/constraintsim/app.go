package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/constraintsim/config"
	"github.com/c360studio/constraintsim/evaluator"
	"github.com/c360studio/constraintsim/report"
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "skip-config"

// App holds the state shared by every command.
type App struct {
	stdout io.Writer
	stderr io.Writer

	// global flags
	configPath string
	logLevel   string
	logFormat  string

	cfg       *config.Config
	logger    *slog.Logger
	evaluator *evaluator.Evaluator
}

func newApp(stdout, stderr io.Writer) *App {
	return &App{
		stdout: stdout,
		stderr: stderr,
		cfg:    config.DefaultConfig(),
	}
}

func rootCmd(app *App) *cobra.Command {
	var (
		jsonOutput bool
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "constraintsim [FILE]",
		Short: "Evaluate warehouse facility eligibility for Empty Tote Return task",
		Long: `Constraintsim evaluates a facility snapshot (JSON, YAML, or HCL) against a
fixed catalog of disqualifying and caution rules and reports a verdict.

Examples:
  constraintsim examples/facility_eligible.json
  constraintsim examples/facility_ineligible.json --json
  constraintsim batch 'sites/**/*.yaml'

Exit codes:
  0 - QUALIFIED: Facility meets all requirements
  2 - DISQUALIFIED: Facility violates one or more rules
  3 - UNKNOWN: Required information missing or invalid
  1 - Unexpected error occurred`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return app.evaluateFile(args[0], app.outputOptions(cmd, jsonOutput, noColor))
		},
	}
	cmd.SetOut(app.stdout)
	cmd.SetErr(app.stderr)

	cmd.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Config file path (YAML); skips the user and project search")
	cmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&app.logFormat, "log-format", "", "Log format (text, json)")

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format instead of human-readable format")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		batchCmd(app),
		watchCmd(app),
		lintCmd(app),
		rulesCmd(app),
		schemaCmd(app),
		configCmd(app),
		versionCmd(app),
	)

	return cmd
}

func versionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(app.stdout, "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// setup loads configuration, applies global flag overrides, and configures
// logging.
func (a *App) setup(cmd *cobra.Command) error {
	bootstrap := newLogger(a.stderr, config.LogConfig{Level: orDefault(a.logLevel, "warn"), Format: orDefault(a.logFormat, "text")})

	if cmd.Annotations[skipConfig] == "" {
		loader := config.NewLoader(bootstrap)
		var (
			cfg *config.Config
			err error
		)
		if a.configPath != "" {
			cfg, err = loader.LoadFile(a.configPath)
		} else {
			cfg, err = loader.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		a.cfg = cfg
	}

	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		a.cfg.Log.Format = a.logFormat
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.logger = newLogger(a.stderr, a.cfg.Log)
	slog.SetDefault(a.logger)
	a.evaluator = evaluator.New(a.logger, nil)
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// outputOptions resolves report format and color from flags and config.
type outputOptions struct {
	json  bool
	color report.ColorMode
}

func (a *App) outputOptions(cmd *cobra.Command, jsonFlag, noColorFlag bool) outputOptions {
	opts := outputOptions{json: a.cfg.Report.Format == "json"}
	if cmd.Flags().Changed("json") {
		opts.json = jsonFlag
	}

	opts.color = report.ColorAuto
	if m, ok := report.ParseColorMode(a.cfg.Report.Color); ok {
		opts.color = m
	}
	if noColorFlag {
		opts.color = report.ColorNever
	}
	return opts
}

// evaluateFile evaluates and renders one file, returning an ExitError that
// carries the verdict's exit code.
func (a *App) evaluateFile(path string, opts outputOptions) error {
	result, err := a.evaluator.EvaluateFile(path)
	if err != nil {
		return loadFault(path, err)
	}

	if opts.json {
		err = report.RenderJSON(a.stdout, result)
	} else {
		err = report.RenderText(a.stdout, result, report.Options{Color: opts.color})
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return exitWith(report.ExitCode(result.Verdict))
}

// loadFault maps an input channel fault to exit code 1 with a readable
// message.
func loadFault(path string, err error) error {
	var msg string
	switch {
	case errors.Is(err, evaluator.ErrInputNotFound):
		msg = fmt.Sprintf("Error: File not found: %s", path)
	case errors.Is(err, evaluator.ErrMalformedInput):
		msg = fmt.Sprintf("Error: Invalid input in file: %v", err)
	case errors.Is(err, evaluator.ErrUnsupportedFormat):
		msg = fmt.Sprintf("Error: Unsupported file type: %v", err)
	case errors.Is(err, os.ErrPermission):
		msg = fmt.Sprintf("Error: Cannot read file: %v", err)
	default:
		msg = fmt.Sprintf("Error: Unexpected error occurred: %v", err)
	}
	return &ExitError{Code: report.ExitFailure, Message: msg}
}
