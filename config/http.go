// file: config/http.go

package config

import (
	"fmt"
	"time"
)

// HTTPConfig contains HTTP server and client configuration
type HTTPConfig struct {
	Server HTTPServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	Client HTTPClientConfig `json:"client" yaml:"client" mapstructure:"client"`
}

// HTTPServerConfig configures the inbound quote server
type HTTPServerConfig struct {
	Address             string          `json:"address" yaml:"address" mapstructure:"address"`
	ReadTimeout         time.Duration   `json:"readTimeout" yaml:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout        time.Duration   `json:"writeTimeout" yaml:"writeTimeout" mapstructure:"writeTimeout"`
	IdleTimeout         time.Duration   `json:"idleTimeout" yaml:"idleTimeout" mapstructure:"idleTimeout"`
	MaxHeaderBytes      int             `json:"maxHeaderBytes" yaml:"maxHeaderBytes" mapstructure:"maxHeaderBytes"`
	RequestTimeout      time.Duration   `json:"requestTimeout" yaml:"requestTimeout" mapstructure:"requestTimeout"`
	ShutdownGracePeriod time.Duration   `json:"shutdownGracePeriod" yaml:"shutdownGracePeriod" mapstructure:"shutdownGracePeriod"`
	RateLimit           RateLimitConfig `json:"rateLimit" yaml:"rateLimit" mapstructure:"rateLimit"`
}

// RateLimitConfig limits inbound requests per client IP
type RateLimitConfig struct {
	Enabled           bool    `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond" mapstructure:"requestsPerSecond"`
	Burst             int     `json:"burst" yaml:"burst" mapstructure:"burst"`
}

// HTTPClientConfig configures the outbound provider transport
type HTTPClientConfig struct {
	MaxIdleConns        int           `json:"maxIdleConns" yaml:"maxIdleConns" mapstructure:"maxIdleConns"`
	MaxIdleConnsPerHost int           `json:"maxIdleConnsPerHost" yaml:"maxIdleConnsPerHost" mapstructure:"maxIdleConnsPerHost"`
	IdleConnTimeout     time.Duration `json:"idleConnTimeout" yaml:"idleConnTimeout" mapstructure:"idleConnTimeout"`
}

func validateHTTP(cfg *HTTPConfig) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("HTTP server address cannot be empty")
	}
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 || cfg.Server.IdleTimeout < 0 {
		return fmt.Errorf("HTTP server timeouts cannot be negative")
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("HTTP request timeout must be positive")
	}

	if cfg.Server.RateLimit.Enabled {
		if cfg.Server.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate limit requests per second must be positive")
		}
		if cfg.Server.RateLimit.Burst < 1 {
			return fmt.Errorf("rate limit burst must be at least 1")
		}
	}

	if cfg.Client.MaxIdleConns < 0 || cfg.Client.MaxIdleConnsPerHost < 0 {
		return fmt.Errorf("HTTP client idle connection limits cannot be negative")
	}
	return nil
}
