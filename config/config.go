// file: config/config.go

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every automatically bound environment key,
// e.g. RATES_PROVIDER_VENDORID or RATES_LOGGING_LEVEL.
const EnvPrefix = "RATES"

const (
	DefaultBaseURL  = "https://sandbox-api.shipprimus.com/api/v1"
	DefaultVendorID = "1901539643"
)

// Config is the complete freight-rates configuration
type Config struct {
	Provider ProviderConfig `json:"provider" yaml:"provider" mapstructure:"provider"`
	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Logging  LogConfig      `json:"logging" yaml:"logging" mapstructure:"logging"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// ProviderConfig holds the rate provider credentials and per-call limits.
// Credentials are read once at construction and never mutated afterwards.
type ProviderConfig struct {
	BaseURL  string `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl"`
	Username string `json:"username" yaml:"username" mapstructure:"username"`
	Password string `json:"password" yaml:"password" mapstructure:"password"`
	VendorID string `json:"vendorId" yaml:"vendorId" mapstructure:"vendorId"`

	AuthTimeout  time.Duration `json:"authTimeout" yaml:"authTimeout" mapstructure:"authTimeout"`
	RateTimeout  time.Duration `json:"rateTimeout" yaml:"rateTimeout" mapstructure:"rateTimeout"`
	ExpiryMargin time.Duration `json:"expiryMargin" yaml:"expiryMargin" mapstructure:"expiryMargin"` // token must outlive now+margin
}

type LogConfig struct {
	Level      string `json:"level" yaml:"level" mapstructure:"level"`                // debug, info, warn, error
	OutputPath string `json:"outputPath" yaml:"outputPath" mapstructure:"outputPath"` // file path or "stdout"
	Encoding   string `json:"encoding" yaml:"encoding" mapstructure:"encoding"`       // json or console
}

type MetricsConfig struct {
	Enabled        bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Address        string        `json:"address" yaml:"address" mapstructure:"address"`
	Path           string        `json:"path" yaml:"path" mapstructure:"path"`
	UpdateInterval time.Duration `json:"updateInterval" yaml:"updateInterval" mapstructure:"updateInterval"` // system gauges refresh
}

// legacyEnv maps config keys to the environment variables the provider
// integration has always been configured with.
var legacyEnv = map[string]string{
	"provider.baseUrl":  "SHIPPRIMUS_API_BASE",
	"provider.username": "SHIPPRIMUS_USERNAME",
	"provider.password": "SHIPPRIMUS_PASSWORD",
	"provider.vendorId": "SHIPPRIMUS_VENDOR_ID",
}

// Load reads configuration using Viper. An empty path skips the file and
// builds the configuration from defaults and the environment alone.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key with Viper so environment overrides
// resolve even when no config file mentions the key.
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("provider.baseUrl", DefaultBaseURL)
	v.SetDefault("provider.username", "")
	v.SetDefault("provider.password", "")
	v.SetDefault("provider.vendorId", DefaultVendorID)
	v.SetDefault("provider.authTimeout", 15*time.Second)
	v.SetDefault("provider.rateTimeout", 20*time.Second)
	v.SetDefault("provider.expiryMargin", 10*time.Second)

	// HTTP server defaults
	v.SetDefault("http.server.address", ":8080")
	v.SetDefault("http.server.readTimeout", 30*time.Second)
	v.SetDefault("http.server.writeTimeout", 90*time.Second)
	v.SetDefault("http.server.idleTimeout", 120*time.Second)
	v.SetDefault("http.server.maxHeaderBytes", 1<<20) // 1MB
	v.SetDefault("http.server.requestTimeout", 75*time.Second)
	v.SetDefault("http.server.shutdownGracePeriod", 30*time.Second)
	v.SetDefault("http.server.rateLimit.enabled", true)
	v.SetDefault("http.server.rateLimit.requestsPerSecond", 10.0)
	v.SetDefault("http.server.rateLimit.burst", 20)

	// HTTP client defaults
	v.SetDefault("http.client.maxIdleConns", 100)
	v.SetDefault("http.client.maxIdleConnsPerHost", 10)
	v.SetDefault("http.client.idleConnTimeout", 90*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.outputPath", "stdout")
	v.SetDefault("logging.encoding", "json")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":2112")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.updateInterval", 15*time.Second)
}

// validateConfig performs validation of all configuration values
func validateConfig(cfg *Config) error {
	if err := validateProvider(&cfg.Provider); err != nil {
		return err
	}
	if err := validateHTTP(&cfg.HTTP); err != nil {
		return err
	}

	// Validate logging config
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	switch cfg.Logging.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log encoding: %s", cfg.Logging.Encoding)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Address == "" {
			return fmt.Errorf("metrics address cannot be empty when metrics are enabled")
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			return fmt.Errorf("metrics path must start with '/': %s", cfg.Metrics.Path)
		}
		if cfg.Metrics.UpdateInterval <= 0 {
			return fmt.Errorf("metrics update interval must be positive")
		}
	}

	return nil
}

func validateProvider(p *ProviderConfig) error {
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid provider base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("provider base URL must be an absolute http(s) URL: %s", p.BaseURL)
	}

	if p.Username == "" || p.Password == "" {
		return fmt.Errorf("provider username and password are required")
	}
	if p.VendorID == "" {
		return fmt.Errorf("provider vendor id cannot be empty")
	}

	if p.AuthTimeout <= 0 {
		return fmt.Errorf("provider auth timeout must be positive")
	}
	if p.RateTimeout <= 0 {
		return fmt.Errorf("provider rate timeout must be positive")
	}
	if p.ExpiryMargin < 0 {
		return fmt.Errorf("token expiry margin cannot be negative")
	}
	return nil
}

// ApplyOverrides applies command line flag overrides to the configuration
func (c *Config) ApplyOverrides(listenAddr, metricsAddr string, metricsEnabled bool) {
	if listenAddr != "" {
		c.HTTP.Server.Address = listenAddr
	}
	if metricsAddr != "" {
		c.Metrics.Address = metricsAddr
	}
	if metricsEnabled {
		c.Metrics.Enabled = true
	}
}
