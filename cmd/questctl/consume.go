package main

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-quest/internal/app"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/service"
	"github.com/spf13/cobra"
)

type consumeResult struct {
	Feature   domain.Feature `json:"feature"`
	Consumed  bool           `json:"consumed"`
	Remaining int            `json:"remaining"`
}

func newConsumeCmd(opts *globalOptions) *cobra.Command {
	user := &userOptions{}
	var feature string
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Use one unit of a rate-limited feature if any are left today",
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
			f := domain.Feature(feature)
			if !f.IsValid() {
				return fmt.Errorf("invalid --feature %q (want %s or %s)", feature, domain.FeatureLesson, domain.FeatureArena)
			}

			return opts.withApp(cmd, func(a *app.Application) error {
				result := consumeResult{Feature: f}
				remaining, err := a.Engine.TryConsume(cmd.Context(), userID, f, tier)
				switch {
				case errors.Is(err, service.ErrLimitReached):
					result.Remaining = 0
				case err != nil:
					return err
				default:
					result.Consumed = true
					result.Remaining = remaining
				}

				if opts.jsonOutput {
					return opts.printJSON(cmd, result)
				}
				status := styleBad.Render("limit reached")
				if result.Consumed {
					status = styleGood.Render("consumed")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s, %s\n", styleKey.Render(string(f)+":"), status, remainingLabel(result.Remaining))
				return nil
			})
		},
	}
	addUserFlags(cmd, user, true)
	cmd.Flags().StringVar(&feature, "feature", string(domain.FeatureLesson), "feature to consume: lesson or arena")
	return cmd
}
