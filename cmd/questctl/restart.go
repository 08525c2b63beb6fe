package main

import (
	"fmt"

	"github.com/phrazzld/scry-quest/internal/app"
	"github.com/spf13/cobra"
)

func newRestartCmd(opts *globalOptions) *cobra.Command {
	user := &userOptions{}
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Reset a learner's progress, streak and daily counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := user.userID()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.Application) error {
				if err := a.Engine.Restart(cmd.Context(), userID); err != nil {
					return err
				}
				if opts.jsonOutput {
					return opts.printJSON(cmd, map[string]bool{"restarted": true})
				}
				fmt.Fprintln(cmd.OutOrStdout(), styleGood.Render("progress restarted"))
				return nil
			})
		},
	}
	addUserFlags(cmd, user, false)
	return cmd
}
