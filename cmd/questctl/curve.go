package main

import (
	"fmt"

	"github.com/phrazzld/scry-quest/internal/app"
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
	"github.com/spf13/cobra"
)

func newCurveCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Manage a learner's leveling curve",
	}
	cmd.AddCommand(newCurveSetCmd(opts))
	return cmd
}

func newCurveSetCmd(opts *globalOptions) *cobra.Command {
	user := &userOptions{}
	def := leveling.DefaultCurve()
	curve := leveling.Curve{}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a learner-specific leveling curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := user.userID()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.Application) error {
				if err := a.Engine.SetCurve(cmd.Context(), userID, curve); err != nil {
					return err
				}
				if opts.jsonOutput {
					return opts.printJSON(cmd, curve)
				}
				fmt.Fprintln(cmd.OutOrStdout(), labelValue("Curve", fmt.Sprintf("base %d XP, +%g%% per level, max level %d",
					curve.BaseXPPerLevel, curve.XPGrowthPercentPerLevel, curve.MaxLevel)))
				return nil
			})
		},
	}
	addUserFlags(cmd, user, false)
	cmd.Flags().IntVar(&curve.BaseXPPerLevel, "base", def.BaseXPPerLevel, "XP required for level 1")
	cmd.Flags().Float64Var(&curve.XPGrowthPercentPerLevel, "growth", def.XPGrowthPercentPerLevel, "percent growth of the requirement per level")
	cmd.Flags().IntVar(&curve.MaxLevel, "max-level", def.MaxLevel, "highest reachable level")
	return cmd
}
