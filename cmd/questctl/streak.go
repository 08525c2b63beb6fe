package main

import (
	"fmt"

	"github.com/phrazzld/scry-quest/internal/app"
	"github.com/spf13/cobra"
)

func newStreakCmd(opts *globalOptions) *cobra.Command {
	user := &userOptions{}
	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Show a learner's daily streak, clearing it if it was broken",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := user.userID()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.Application) error {
				current, err := a.Engine.CurrentStreak(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return opts.printJSON(cmd, map[string]int{"streak": current})
				}
				fmt.Fprintln(cmd.OutOrStdout(), labelValue("Streak", fmt.Sprintf("%s %d", iconFire, current)))
				return nil
			})
		},
	}
	addUserFlags(cmd, user, false)
	cmd.AddCommand(newStreakCompleteCmd(opts))
	return cmd
}

func newStreakCompleteCmd(opts *globalOptions) *cobra.Command {
	user := &userOptions{}
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Mark today as completed without advancing through the curriculum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := user.userID()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.Application) error {
				completion, err := a.Engine.RecordCompletion(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return opts.printJSON(cmd, completion)
				}
				note := styleMuted.Render("(already completed today)")
				if completion.IsFirstToday {
					note = styleGood.Render("first completion today")
				}
				fmt.Fprintln(cmd.OutOrStdout(), labelValue("Streak", fmt.Sprintf("%s %d %s", iconFire, completion.NewStreak, note)))
				return nil
			})
		},
	}
	addUserFlags(cmd, user, false)
	return cmd
}
