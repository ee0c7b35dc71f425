// file: internal/server/server.go

// Package server exposes the quote pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"freight-rates/config"
	"freight-rates/internal/logger"
	"freight-rates/internal/metrics"
	"freight-rates/internal/quote"
)

// RatesPath is the route serving quotes.
const RatesPath = "/api/rates"

// Quoter is satisfied by *quote.Service.
type Quoter interface {
	QueryQuote(ctx context.Context, values url.Values) (*quote.Result, error)
}

// Server serves quotes and health checks.
type Server struct {
	cfg        config.HTTPServerConfig
	quoter     Quoter
	logger     *logger.Logger
	metrics    *metrics.Metrics
	limiter    *RateLimiter
	engine     *gin.Engine
	httpServer *http.Server
	errCh      chan error
}

// New builds the router and its middleware chain. log and m may be nil.
func New(cfg config.HTTPServerConfig, quoter Quoter, log *logger.Logger, m *metrics.Metrics) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		cfg:     cfg,
		quoter:  quoter,
		logger:  log,
		metrics: m,
		errCh:   make(chan error, 1),
	}

	engine := gin.New()
	engine.Use(RequestID(), RequestLogger(log), Recovery(log), Metrics(m))
	if cfg.RateLimit.Enabled {
		s.limiter = NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, defaultLimiterTTL)
		engine.Use(s.limiter.Middleware(log))
	}
	if cfg.RequestTimeout > 0 {
		engine.Use(Timeout(cfg.RequestTimeout))
	}

	engine.GET("/health", s.health)
	engine.GET("/healthz", s.health)
	engine.GET(RatesPath, s.getRates)

	s.engine = engine
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listener and serves in the background. Serve failures
// after a successful bind are reported on Errors.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}

	s.httpServer = &http.Server{
		Handler:        s.engine,
		ReadTimeout:    s.cfg.ReadTimeout,
		WriteTimeout:   s.cfg.WriteTimeout,
		IdleTimeout:    s.cfg.IdleTimeout,
		MaxHeaderBytes: s.cfg.MaxHeaderBytes,
	}

	go func() {
		s.logger.Info("starting HTTP quote server",
			"address", ln.Addr().String(),
			"rateLimit", s.cfg.RateLimit.Enabled,
			"requestTimeout", s.cfg.RequestTimeout)

		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
			s.errCh <- err
		}
	}()

	return nil
}

// Errors delivers a fatal serve error, if any.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// Stop drains in-flight requests and releases the limiter.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP quote server")

	if s.limiter != nil {
		s.limiter.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to gracefully shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP quote server stopped")
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
