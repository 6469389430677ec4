package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "willgate/internal/jwt_token"
	"willgate/pkg/domain"
)

// newTokenCommand issues session tokens for local testing; production tokens
// come from the wallet sign-in flow.
func newTokenCommand(ctx *commandContext) *cobra.Command {
	var wallet string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for a wallet address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := domain.ParseAddress(wallet)
			if err != nil {
				return err
			}
			cfg := ctx.cfg
			token, err := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience).
				GenerateSessionToken(addr, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&wallet, "wallet", "", "Wallet address to put in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("wallet")
	return cmd
}
