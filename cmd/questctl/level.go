package main

import (
	"fmt"

	"github.com/phrazzld/scry-quest/internal/app"
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
	"github.com/spf13/cobra"
)

func newLevelCmd(opts *globalOptions) *cobra.Command {
	user := &userOptions{}
	var xp int
	cmd := &cobra.Command{
		Use:   "level",
		Short: "Look up the level for an amount of XP on a learner's curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := user.userID()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.Application) error {
				progress, err := a.Engine.LevelFromTotalXP(cmd.Context(), userID, xp)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return opts.printJSON(cmd, progress)
				}
				printLevel(cmd, xp, progress)
				return nil
			})
		},
	}
	addUserFlags(cmd, user, false)
	cmd.Flags().IntVar(&xp, "xp", 0, "total experience points")
	return cmd
}

func printLevel(cmd *cobra.Command, xp int, p leveling.Progress) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, labelValue("XP", xp))
	if p.IsMaxLevel() {
		fmt.Fprintln(out, labelValue("Level", fmt.Sprintf("%d %s", p.Level, styleGold.Render("MAX"))))
		return
	}
	fmt.Fprintln(out, labelValue("Level", fmt.Sprintf("%d %s %d/%d XP", p.Level,
		progressBar(p.XPIntoCurrentLevel, p.XPRequiredForNextLevel, 20), p.XPIntoCurrentLevel, p.XPRequiredForNextLevel)))
}
