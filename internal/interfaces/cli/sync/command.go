// Package sync runs channel syncs from the command line.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/channelsync/internal/infrastructure/database"
	"github.com/orris-inc/channelsync/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/orris-inc/channelsync/internal/interfaces/http"
)

var (
	opts      bootstrap.Options
	channelID uint
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one channel sync pass and exit",
		Long:  `Refresh tokens and record follower snapshots and recent posts for every active channel, or for one channel with --channel.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&opts.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().UintVar(&channelID, "channel", 0, "Sync only this channel id")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.ConfigAndDatabase(&opts)
	if err != nil {
		return err
	}
	defer database.Close()

	container, err := httpRouter.NewContainer(database.Get(), nil, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer container.Shutdown()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	syncUC := container.SyncUseCase()

	if channelID != 0 {
		outcome, err := syncUC.SyncChannel(ctx, channelID)
		fmt.Fprintf(out, "channel %d: %s\n", channelID, outcome)
		return err
	}

	report, err := syncUC.SyncAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "synced %d/%d channels (failed %d, deactivated %d, skipped %d) in %s\n",
		report.Succeeded, report.Total, report.Failed, report.Deactivated, report.Skipped,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return nil
}
