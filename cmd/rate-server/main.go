// file: cmd/rate-server/main.go

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"freight-rates/config"
	"freight-rates/internal/app"
	"freight-rates/internal/lifecycle"
	"freight-rates/internal/logger"
)

type options struct {
	configPath     string
	envFile        string
	listenAddr     string
	metricsAddr    string
	metricsEnabled bool
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	opts := parseFlags(os.Args[1:])

	if err := loadEnvFile(opts.envFile); err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	// Validate once up front so a bad config fails before signals are wired.
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	first := true
	createApp := func() (lifecycle.Application, error) {
		if !first {
			// SIGHUP: pick up edited config and credentials.
			if cfg, err = loadConfig(opts); err != nil {
				return nil, err
			}
		}
		first = false
		return app.NewServerApp(cfg)
	}

	return lifecycle.RunWithReload(createApp, appLogger)
}

func parseFlags(args []string) options {
	var opts options
	flags := flag.NewFlagSet("rate-server", flag.ExitOnError)
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to config file (YAML or JSON); empty uses environment and defaults")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flags.StringVar(&opts.listenAddr, "listen", "", "override HTTP listen address")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "override metrics server address")
	flags.BoolVar(&opts.metricsEnabled, "metrics", false, "enable the metrics server")
	_ = flags.Parse(args)
	return opts
}

func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyOverrides(opts.listenAddr, opts.metricsAddr, opts.metricsEnabled)
	return cfg, nil
}

// loadEnvFile loads path into the environment. A missing file is not an
// error; variables already set win over the file.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
