package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/app"
	"github.com/phrazzld/scry-quest/internal/config"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

type globalOptions struct {
	configPath string
	jsonOutput bool
}

// userOptions are shared by every command that acts on one learner.
type userOptions struct {
	user string
	tier string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "questctl",
		Short:         "Drive the progression engine from the shell",
		Long:          "questctl runs progression engine operations (advance, streaks, daily limits) against the configured record store.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file (default: ./config.yaml or ./config/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newStatusCmd(opts),
		newAdvanceCmd(opts),
		newStreakCmd(opts),
		newConsumeCmd(opts),
		newLevelCmd(opts),
		newCurveCmd(opts),
		newRestartCmd(opts),
	)
	return cmd
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, styleBad.Render(iconError+" "+err.Error()))
		return 1
	}
	return 0
}

func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

// openApp loads configuration and opens the application. The caller closes it.
func (o *globalOptions) openApp(cmd *cobra.Command) (*app.Application, error) {
	cfg, log, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(logger.WithLogger(cmd.Context(), log), cfg, log, nil)
}

// withApp runs fn against a freshly opened application and closes it afterwards.
func (o *globalOptions) withApp(cmd *cobra.Command, fn func(*app.Application) error) (err error) {
	application, err := o.openApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := application.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(application)
}

func (o *globalOptions) printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addUserFlags(cmd *cobra.Command, opts *userOptions, withTier bool) {
	cmd.Flags().StringVar(&opts.user, "user", "", "learner id (UUID)")
	_ = cmd.MarkFlagRequired("user")
	if withTier {
		cmd.Flags().StringVar(&opts.tier, "tier", "free", "subscription tier: free, plus or premium")
	}
}

func (o userOptions) userID() (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(o.user))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --user %q: %w", o.user, err)
	}
	return id, nil
}

func (o userOptions) parsedTier() (domain.Tier, error) {
	switch strings.ToLower(strings.TrimSpace(o.tier)) {
	case "", "free":
		return domain.TierFree, nil
	case "plus":
		return domain.TierPlus, nil
	case "premium":
		return domain.TierPremium, nil
	default:
		return domain.TierFree, fmt.Errorf("invalid --tier %q (want free, plus or premium)", o.tier)
	}
}
