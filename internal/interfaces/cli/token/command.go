// Package token mints access tokens for local development.
package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/channelsync/internal/infrastructure/auth"
	"github.com/orris-inc/channelsync/internal/interfaces/cli/bootstrap"
)

var (
	opts   bootstrap.Options
	userID string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token for a user id",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&opts.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id to put in the token subject (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.Config(&opts)
	if err != nil {
		return err
	}
	if cfg.Server.Mode == "release" {
		log.Warnw("minting an access token with the production secret", "user_id", userID)
	}

	jwtSvc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.ExpiresIn)
	signed, expiresAt, err := jwtSvc.Generate(userID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, signed)
	fmt.Fprintf(out, "# expires %s\n", expiresAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}
