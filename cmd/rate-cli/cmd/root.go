// file: cmd/rate-cli/cmd/root.go
package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"freight-rates/config"
	"freight-rates/internal/app"
)

// AddCommands adds all the subcommands and shared flags to the root command.
func AddCommands(root *cobra.Command) {
	root.PersistentFlags().StringP("config", "c", "", "Path to a config file (YAML or JSON)")
	root.PersistentFlags().String("env-file", ".env", "Dotenv file to load before reading the environment")
	root.PersistentFlags().String("log-level", "warn", "Log level for diagnostics written to stderr")

	root.AddCommand(newQuoteCmd())
	root.AddCommand(newTokenCmd())
}

// buildBase loads configuration and wires the provider clients. Logs go
// to stderr so stdout stays parseable.
func buildBase(cmd *cobra.Command) (*app.BaseApp, error) {
	configPath, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	logLevel, _ := cmd.Flags().GetString("log-level")

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Logging = config.LogConfig{Level: logLevel, OutputPath: "stderr", Encoding: "console"}
	cfg.Metrics.Enabled = false

	return app.NewAppBuilder(cfg).
		WithLogger().
		WithProvider().
		Build()
}
