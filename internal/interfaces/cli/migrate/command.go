package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/channelsync/internal/infrastructure/database"
	"github.com/orris-inc/channelsync/internal/infrastructure/migration"
	"github.com/orris-inc/channelsync/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/channelsync/internal/shared/logger"
)

var (
	opts     bootstrap.Options
	strategy string
	steps    int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back and inspect the channel schema. Goose runs the embedded SQL scripts; auto uses gorm AutoMigrate.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().StringVarP(&strategy, "strategy", "s", "", "Migration strategy: goose or auto (default: auto for sqlite, goose otherwise)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func initEnv() (*migration.Manager, logger.Interface, error) {
	cfg, log, err := bootstrap.ConfigAndDatabase(&opts)
	if err != nil {
		return nil, nil, err
	}

	manager, err := migration.NewManager(cfg.Database.Driver, strategy, log)
	if err != nil {
		_ = database.Close()
		return nil, nil, err
	}
	return manager, log, nil
}

func gooseOnly(manager *migration.Manager, op string) (*migration.GooseStrategy, error) {
	goose, ok := manager.Strategy().(*migration.GooseStrategy)
	if !ok {
		return nil, fmt.Errorf("%s is only supported with the goose strategy", op)
	}
	return goose, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	manager, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("running up migrations", "environment", opts.Env, "strategy", manager.Strategy().GetName())

	if err := manager.Migrate(database.Get()); err != nil {
		log.Errorw("migration failed", "error", err)
		return err
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	manager, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	goose, err := gooseOnly(manager, "down")
	if err != nil {
		return err
	}

	log.Infow("running down migrations", "environment", opts.Env, "steps", steps)

	if err := goose.MigrateDown(database.Get(), steps); err != nil {
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	goose, err := gooseOnly(manager, "status")
	if err != nil {
		return err
	}

	version, err := goose.GetVersion(database.Get())
	if err != nil {
		log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMigration Status:\n")
	fmt.Fprintf(out, "  Environment:     %s\n", opts.Env)
	fmt.Fprintf(out, "  Current Version: %d\n", version)

	if err := goose.Status(database.Get()); err != nil {
		log.Errorw("failed to get detailed status", "error", err)
		return fmt.Errorf("failed to get detailed status: %w", err)
	}
	return nil
}
