package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/royaltysplit/internal/auth"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Development tokens",
	}
	tokenCmd.AddCommand(&cobra.Command{
		Use:   "mint <artist-id>",
		Short: "Mint a bearer token for an artist from auth.jwt_secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.TokenDuration()).Generate(args[0])
			if err != nil {
				return fmt.Errorf("mint token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	})
	return tokenCmd
}
