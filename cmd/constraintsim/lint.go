package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/constraintsim/report"
	"github.com/c360studio/constraintsim/schema"
)

func lintCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lint FILE...",
		Short: "Check facility files against the snapshot schema",
		Long: `Check facility files against the JSON Schema printed by "constraintsim
schema". Lint is stricter than evaluation: unknown keys are reported even
though evaluation ignores them.

Exit codes: 0 when every file is clean, 3 when any file has problems,
1 when a file cannot be read or decoded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			faults, dirty := 0, 0

			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					faults++
					fmt.Fprintf(app.stderr, "%s: %v\n", path, err)
					continue
				}
				doc, err := app.evaluator.Decode(path, content)
				if err != nil {
					faults++
					fmt.Fprintf(app.stderr, "%s: %v\n", path, err)
					continue
				}

				err = schema.Validate(doc)
				var lintErr *schema.LintError
				switch {
				case err == nil:
					fmt.Fprintf(app.stdout, "%s: ok\n", path)
				case errors.As(err, &lintErr):
					dirty++
					fmt.Fprintf(app.stdout, "%s: %d problem(s)\n", path, len(lintErr.Problems))
					for _, p := range lintErr.Problems {
						fmt.Fprintf(app.stdout, "  - %s\n", p)
					}
				default:
					faults++
					fmt.Fprintf(app.stderr, "%s: %v\n", path, err)
				}
			}

			switch {
			case faults > 0:
				return exitWith(report.ExitFailure)
			case dirty > 0:
				return exitWith(report.ExitUnknown)
			}
			return nil
		},
	}
}
