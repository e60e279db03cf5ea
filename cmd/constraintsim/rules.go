package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/constraintsim/rules"
	"github.com/c360studio/constraintsim/schema"
)

type ruleView struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func rulesCmd(app *App) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := rules.All()

			if jsonOutput {
				views := make([]ruleView, len(all))
				for i, r := range all {
					views[i] = ruleView{Name: r.Name, Category: string(r.Category), Description: r.Description}
				}
				enc := json.NewEncoder(app.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			for _, r := range all {
				fmt.Fprintf(app.stdout, "%-13s %-32s %s\n", r.Category, r.Name, r.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the catalog as JSON")
	return cmd
}

func schemaCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "schema",
		Short:       "Print the facility snapshot JSON Schema",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := app.stdout.Write(schema.Schema())
			return err
		},
	}
}
