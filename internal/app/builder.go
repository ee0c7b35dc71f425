// file: internal/app/builder.go

package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"freight-rates/config"
	"freight-rates/internal/auth"
	"freight-rates/internal/httpx"
	"freight-rates/internal/logger"
	"freight-rates/internal/metrics"
	"freight-rates/internal/quote"
	"freight-rates/internal/rates"
)

// BaseApp holds the components shared by the server and the CLI.
type BaseApp struct {
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
	MetricsServer *http.Server
	Collector     *metrics.MetricsCollector
	Tokens        *auth.TokenManager
	Rates         *rates.RateClient
	Quotes        *quote.Service
}

// AppBuilder constructs the BaseApp components fluently.
type AppBuilder struct {
	cfg  *config.Config
	base *BaseApp
	err  error
}

// NewAppBuilder creates a new builder.
func NewAppBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{
		cfg:  cfg,
		base: &BaseApp{},
	}
}

// WithLogger creates the logger.
func (b *AppBuilder) WithLogger() *AppBuilder {
	if b.err != nil {
		return b
	}
	b.base.Logger, b.err = logger.NewLogger(&b.cfg.Logging)
	if b.err != nil {
		b.err = fmt.Errorf("failed to initialize logger: %w", b.err)
	}
	return b
}

// WithExistingLogger uses log instead of building one from config.
func (b *AppBuilder) WithExistingLogger(log *logger.Logger) *AppBuilder {
	if b.err != nil {
		return b
	}
	b.base.Logger = log
	return b
}

// WithMetrics registers the collectors and starts the metrics listener.
// It is a no-op when metrics are disabled.
func (b *AppBuilder) WithMetrics() *AppBuilder {
	if b.err != nil {
		return b
	}
	if !b.cfg.Metrics.Enabled {
		b.base.Logger.Info("metrics disabled")
		return b
	}

	var err error
	b.base.Metrics, err = metrics.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		b.err = fmt.Errorf("failed to create metrics service: %w", err)
		return b
	}

	b.base.Collector = metrics.NewMetricsCollector(b.base.Metrics, b.cfg.Metrics.UpdateInterval)
	b.base.Collector.Start()

	reg := b.base.Metrics.GetRegistry()
	mux := http.NewServeMux()
	mux.Handle(b.cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry:          reg,
		EnableOpenMetrics: true,
	}))

	b.base.MetricsServer = &http.Server{
		Addr:    b.cfg.Metrics.Address,
		Handler: mux,
	}

	go func() {
		b.base.Logger.Info("starting metrics server",
			"address", b.cfg.Metrics.Address,
			"path", b.cfg.Metrics.Path)
		if err := b.base.MetricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			b.base.Logger.Error("metrics server error", "error", err)
		}
	}()

	b.base.Logger.Info("metrics initialized",
		"address", b.cfg.Metrics.Address,
		"path", b.cfg.Metrics.Path,
		"updateInterval", b.cfg.Metrics.UpdateInterval)
	return b
}

// WithProvider builds the token manager, rate client and quote service.
// Each call starts with an empty token cache.
func (b *AppBuilder) WithProvider() *AppBuilder {
	if b.err != nil {
		return b
	}

	p := b.cfg.Provider
	authLog := b.base.Logger.With("component", "auth")
	rateLog := b.base.Logger.With("component", "rates")

	b.base.Tokens, b.err = auth.NewTokenManager(
		auth.Credentials{BaseURL: p.BaseURL, Username: p.Username, Password: p.Password},
		auth.WithHTTPClient(httpx.New(p.AuthTimeout, b.cfg.HTTP.Client)),
		auth.WithTimeout(p.AuthTimeout),
		auth.WithExpiryMargin(p.ExpiryMargin),
		auth.WithLogger(authLog),
		auth.WithMetrics(b.base.Metrics),
	)
	if b.err != nil {
		b.err = fmt.Errorf("failed to create token manager: %w", b.err)
		return b
	}

	b.base.Rates, b.err = rates.NewRateClient(p.BaseURL, p.VendorID, b.base.Tokens,
		rates.WithHTTPClient(httpx.New(p.RateTimeout, b.cfg.HTTP.Client)),
		rates.WithTimeout(p.RateTimeout),
		rates.WithLogger(rateLog),
		rates.WithMetrics(b.base.Metrics),
	)
	if b.err != nil {
		b.err = fmt.Errorf("failed to create rate client: %w", b.err)
		return b
	}

	b.base.Quotes = quote.NewService(b.base.Rates, b.base.Logger.With("component", "quote"), b.base.Metrics)
	b.base.Logger.Info("rate provider configured",
		"baseURL", p.BaseURL,
		"vendorID", p.VendorID,
		"authTimeout", p.AuthTimeout,
		"rateTimeout", p.RateTimeout)
	return b
}

// Build finalizes the construction and returns the BaseApp.
func (b *AppBuilder) Build() (*BaseApp, error) {
	if b.err != nil {
		_ = b.base.Shutdown(context.Background())
		return nil, b.err
	}
	return b.base, nil
}

// Shutdown stops the collector and the metrics listener.
func (base *BaseApp) Shutdown(ctx context.Context) error {
	if base.Collector != nil {
		base.Collector.Stop()
	}
	if base.MetricsServer != nil {
		if err := base.MetricsServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown metrics server: %w", err)
		}
	}
	return nil
}
