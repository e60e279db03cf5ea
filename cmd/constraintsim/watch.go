package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/constraintsim/batch"
	"github.com/c360studio/constraintsim/watch"
)

func watchCmd(app *App) *cobra.Command {
	var (
		jsonOutput bool
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "watch PATH...",
		Short: "Re-evaluate facility files whenever they change",
		Long: `Evaluate the given files, and the facility files inside the given
directories, then re-evaluate each one whenever it changes. Runs until
interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.outputOptions(cmd, jsonOutput, noColor)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := watch.New(watch.Config{
				Debounce:   app.cfg.Watch.Debounce,
				Extensions: app.cfg.Watch.Extensions,
			}, args, app.logger)
			if err != nil {
				return &ExitError{Code: 1, Message: fmt.Sprintf("Error: %v", err)}
			}

			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			// Initial pass over everything that exists now. The watch is
			// already registered so no write in between is lost.
			for _, arg := range args {
				files, err := batch.ResolveFiles([]string{arg}, nil)
				if err != nil {
					app.logger.Warn("Nothing to evaluate yet", slog.String("path", arg), slog.Any("error", err))
					continue
				}
				for _, f := range files {
					app.watchEvaluate(f, opts)
				}
			}

			for ev := range w.Events() {
				switch ev.Op {
				case watch.OpRemove:
					fmt.Fprintf(app.stdout, "--- %s removed (%s)\n", ev.Path, time.Now().Format(time.TimeOnly))
				default:
					app.watchEvaluate(ev.Path, opts)
				}
			}

			app.logger.Info("Watch stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

// watchEvaluate renders one evaluation and reports faults without stopping
// the watch loop.
func (a *App) watchEvaluate(path string, opts outputOptions) {
	fmt.Fprintf(a.stdout, "--- %s (%s)\n", path, time.Now().Format(time.TimeOnly))
	err := a.evaluateFile(path, opts)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintln(a.stderr, exitErr.Message)
		}
		return
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
}
