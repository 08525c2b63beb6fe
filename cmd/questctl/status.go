package main

import (
	"fmt"

	"github.com/phrazzld/scry-quest/internal/app"
	"github.com/phrazzld/scry-quest/internal/service"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	user := &userOptions{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a learner's position, level, wallet, streak and daily limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := user.userID()
			if err != nil {
				return err
			}
			tier, err := user.parsedTier()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.Application) error {
				status, err := a.Engine.Status(cmd.Context(), userID, tier)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return opts.printJSON(cmd, status)
				}
				printStatus(cmd, status)
				return nil
			})
		},
	}
	addUserFlags(cmd, user, true)
	return cmd
}

func printStatus(cmd *cobra.Command, s *service.Status) {
	out := cmd.OutOrStdout()
	round := 1
	if !s.IsFirstRound {
		round = 2
	}

	fmt.Fprintln(out, heading(iconSparkle, "Learner Status"))
	fmt.Fprintln(out, labelValue("Lesson", fmt.Sprintf("%d %s", s.LessonNumber,
		styleMuted.Render(fmt.Sprintf("(round %d, %s)", round, s.GameType)))))

	level := fmt.Sprintf("%d", s.Level.Level)
	if s.Level.IsMaxLevel() {
		level += " " + styleGold.Render("MAX")
	} else {
		level += fmt.Sprintf(" %s %d/%d XP", progressBar(s.Level.XPIntoCurrentLevel, s.Level.XPRequiredForNextLevel, 20),
			s.Level.XPIntoCurrentLevel, s.Level.XPRequiredForNextLevel)
	}
	fmt.Fprintln(out, labelValue("Level", level))
	fmt.Fprintln(out, labelValue("Total XP", s.TotalXP))
	fmt.Fprintln(out, labelValue("Wallet", fmt.Sprintf("%s %d  %s %d", iconCoin, s.Coins, iconGem, s.Gems)))
	fmt.Fprintln(out, labelValue("Milestone", fmt.Sprintf("%s stage %d/%d", progressBar(s.StageInMilestoneCycle, s.StagesPerMilestone, s.StagesPerMilestone),
		s.StageInMilestoneCycle, s.StagesPerMilestone)))
	fmt.Fprintln(out, labelValue("Streak", fmt.Sprintf("%s %d", iconFire, s.Streak)))
	fmt.Fprintln(out, labelValue("Lessons", remainingLabel(s.LessonsRemaining)))
	fmt.Fprintln(out, labelValue("Arena", remainingLabel(s.ArenaGamesRemaining)))
}
