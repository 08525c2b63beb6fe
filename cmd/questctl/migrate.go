package main

import (
	"fmt"
	"path"

	"github.com/phrazzld/scry-quest/internal/app"
	"github.com/phrazzld/scry-quest/internal/platform/migrate"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	var valid []string
	for _, c := range migrate.Commands() {
		valid = append(valid, string(c))
	}

	return &cobra.Command{
		Use:       "migrate {up|down|reset|status|version}",
		Short:     "Manage the schema of the configured SQL store",
		ValidArgs: valid,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			report, err := app.Migrate(cmd.Context(), cfg.Storage, migrate.Command(args[0]), log)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return opts.printJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			for _, applied := range report.Applied {
				fmt.Fprintln(out, styleMuted.Render(applied))
			}
			for _, s := range report.Status {
				state := styleBad.Render("pending")
				if s.Applied {
					state = styleGood.Render("applied")
				}
				fmt.Fprintf(out, "%5d  %-8s %s\n", s.Version, state, path.Base(s.Path))
			}
			fmt.Fprintln(out, labelValue("Schema version", report.Version))
			return nil
		},
	}
}
