package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/constraintsim/batch"
	"github.com/c360studio/constraintsim/report"
)

func batchCmd(app *App) *cobra.Command {
	var (
		jsonOutput  bool
		noColor     bool
		workers     int
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "batch PATTERN...",
		Short: "Evaluate many facility files",
		Long: `Evaluate every facility file matched by the given paths, directories, or
glob patterns (** is supported). Directories expand to the facility files
directly inside them.

The exit code is 1 if any file could not be loaded, otherwise 3 if any
verdict is UNKNOWN, otherwise 2 if any is DISQUALIFIED, otherwise 0.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.outputOptions(cmd, jsonOutput, noColor)
			if !cmd.Flags().Changed("workers") {
				workers = app.cfg.Batch.Workers
			}
			if !cmd.Flags().Changed("metrics-file") {
				metricsFile = app.cfg.Batch.MetricsFile
			}
			if workers < 1 {
				return &ExitError{Code: report.ExitFailure, Message: "Error: --workers must be at least 1"}
			}

			files, err := batch.ResolveFiles(args, nil)
			if err != nil {
				return &ExitError{Code: report.ExitFailure, Message: fmt.Sprintf("Error: %v", err)}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runnerOpts := []batch.Option{batch.WithWorkers(workers), batch.WithLogger(app.logger)}
			var metrics *batch.Metrics
			if metricsFile != "" {
				metrics = batch.NewMetrics()
				runnerOpts = append(runnerOpts, batch.WithMetrics(metrics))
			}

			rep, err := batch.NewRunner(app.evaluator, runnerOpts...).Run(ctx, files)
			if err != nil {
				return fmt.Errorf("batch run: %w", err)
			}

			if opts.json {
				err = report.RenderBatchJSON(app.stdout, rep)
			} else {
				err = report.RenderBatchText(app.stdout, rep, report.Options{Color: opts.color})
			}
			if err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			if metrics != nil {
				if err := metrics.WriteFile(metricsFile); err != nil {
					return err
				}
				app.logger.Debug("Wrote metrics file", slog.String("path", metricsFile))
			}

			return exitWith(report.BatchExitCode(rep))
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().IntVarP(&workers, "workers", "w", batch.DefaultWorkers, "Number of files evaluated concurrently")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")

	return cmd
}
