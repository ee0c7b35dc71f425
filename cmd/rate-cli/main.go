// file: cmd/rate-cli/main.go
package main

import (
	"os"

	"github.com/spf13/cobra"

	"freight-rates/cmd/rate-cli/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "rate-cli",
	Short: "Query freight rates from the command line.",
	Long: `rate-cli logs in to the rate provider with the configured credentials,
fetches rates for the given parameters and prints them normalized, together
with the cheapest rate per service level.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.SilenceUsage = true
	cmd.AddCommands(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
