// file: cmd/rate-cli/cmd/token.go
package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"freight-rates/internal/auth"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Log in and show the issued token and its expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := buildBase(cmd)
			if err != nil {
				return err
			}
			defer base.Logger.Sync()

			token, err := base.Tokens.GetValidToken(cmd.Context())
			if err != nil {
				return err
			}
			return printToken(cmd.OutOrStdout(), token, time.Now())
		},
	}
}

func printToken(w io.Writer, token auth.Token, now time.Time) error {
	expiry := "unknown (token carries no exp claim)"
	if !token.Expiry.IsZero() {
		expiry = fmt.Sprintf("%s (in %s)", token.Expiry.UTC().Format(time.RFC3339), token.Expiry.Sub(now).Round(time.Second))
	}
	_, err := fmt.Fprintf(w, "token:   %s\nexpires: %s\n", token.Masked(), expiry)
	return err
}
