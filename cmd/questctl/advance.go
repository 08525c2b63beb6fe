package main

import (
	"fmt"

	"github.com/phrazzld/scry-quest/internal/app"
	"github.com/phrazzld/scry-quest/internal/domain/sequencer"
	"github.com/phrazzld/scry-quest/internal/service"
	"github.com/spf13/cobra"
)

func newAdvanceCmd(opts *globalOptions) *cobra.Command {
	user := &userOptions{}
	var count int
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Record successfully completed exercises for a learner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := user.userID()
			if err != nil {
				return err
			}
			if count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", count)
			}
			return opts.withApp(cmd, func(a *app.Application) error {
				results := make([]*service.AdvanceResult, 0, count)
				for range count {
					result, err := a.Engine.Advance(cmd.Context(), userID)
					if err != nil {
						return err
					}
					results = append(results, result)
				}
				if opts.jsonOutput {
					return opts.printJSON(cmd, results)
				}
				for _, result := range results {
					printAdvance(cmd, result)
				}
				return nil
			})
		},
	}
	addUserFlags(cmd, user, false)
	cmd.Flags().IntVar(&count, "count", 1, "number of exercises to complete")
	return cmd
}

func printAdvance(cmd *cobra.Command, r *service.AdvanceResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s lesson %d → %d  %s\n",
		styleGood.Render("✔"),
		r.LessonNumberBefore, r.LessonNumberAfter,
		styleMuted.Render(fmt.Sprintf("+%d XP  +%d coins", r.XPAwarded, r.CoinsAwarded)))

	if r.LevelUp {
		fmt.Fprintf(out, "  %s level %d → %d\n", styleGold.Render("LEVEL UP"), r.LevelBefore, r.LevelAfter)
	}
	switch r.Milestone {
	case sequencer.MilestoneRoundComplete:
		fmt.Fprintln(out, "  "+styleTitle.Render(iconTrophy+" round one complete"))
	case sequencer.MilestoneCurriculumComplete:
		fmt.Fprintln(out, "  "+styleTitle.Render(iconTrophy+" curriculum complete, starting over"))
	case sequencer.MilestoneNone:
	}
	if r.MilestoneReached {
		fmt.Fprintf(out, "  %s milestone reached, +%d gems\n", iconGem, r.GemsAwarded)
	}
	if r.Streak.IsFirstToday {
		fmt.Fprintf(out, "  %s streak %d\n", iconFire, r.Streak.NewStreak)
	}
}
