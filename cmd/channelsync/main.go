package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/channelsync/internal/interfaces/cli/migrate"
	"github.com/orris-inc/channelsync/internal/interfaces/cli/server"
	"github.com/orris-inc/channelsync/internal/interfaces/cli/sync"
	"github.com/orris-inc/channelsync/internal/interfaces/cli/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "channelsync",
		Short:        "Channelsync links social accounts to projects and keeps their stats fresh",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		sync.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
