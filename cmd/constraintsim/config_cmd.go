package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/constraintsim/config"
)

func configCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage constraintsim configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:         "init",
		Short:       "Create the user config file with defaults if it does not exist",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.NewLoader(app.logger).EnsureUserConfig()
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(app.stdout, "Created %s\n", path)
			} else {
				fmt.Fprintf(app.stdout, "Config already exists: %s\n", path)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = app.stdout.Write(data)
			return err
		},
	})

	return cmd
}
