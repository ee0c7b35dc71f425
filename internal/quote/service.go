// file: internal/quote/service.go

package quote

import (
	"context"
	"errors"
	"net/url"

	"freight-rates/internal/auth"
	"freight-rates/internal/logger"
	"freight-rates/internal/metrics"
	"freight-rates/internal/rates"
)

// Outcome labels used for logs and metrics.
const (
	OutcomeOK             = "ok"
	OutcomeClientError    = "client_error"
	OutcomeAuthError      = "auth_error"
	OutcomeTransportError = "transport_error"
	OutcomeError          = "error"
)

// Fetcher is satisfied by *rates.RateClient.
type Fetcher interface {
	FetchRates(ctx context.Context, params map[string]interface{}) ([]rates.RawRateEntry, error)
}

// Result is the payload returned to callers.
type Result struct {
	Data     []rates.NormalizedRate `json:"data" yaml:"data"`
	Cheapest []rates.NormalizedRate `json:"cheapest" yaml:"cheapest"`
}

// Service runs the fetch, normalize and aggregate pipeline.
type Service struct {
	fetcher Fetcher
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewService creates a quote service. log and m may be nil.
func NewService(fetcher Fetcher, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Service{fetcher: fetcher, logger: log, metrics: m}
}

// Quote fetches rates for params and returns them normalized together
// with the cheapest rate per service level.
func (s *Service) Quote(ctx context.Context, params map[string]interface{}) (*Result, error) {
	raw, err := s.fetcher.FetchRates(ctx, params)
	if err != nil {
		s.metrics.IncQuotes(Outcome(err))
		return nil, err
	}

	data := rates.Normalize(raw)
	result := &Result{
		Data:     data,
		Cheapest: rates.CheapestPerServiceLevel(data),
	}

	s.metrics.IncQuotes(OutcomeOK)
	s.metrics.ObserveRatesReturned(len(data))
	s.logger.Debug("quote built", "rates", len(result.Data), "serviceLevels", len(result.Cheapest))
	return result, nil
}

// QueryQuote parses raw query values and runs Quote.
func (s *Service) QueryQuote(ctx context.Context, values url.Values) (*Result, error) {
	params, err := ParseParams(values)
	if err != nil {
		s.metrics.IncQuotes(OutcomeClientError)
		return nil, err
	}
	return s.Quote(ctx, params)
}

// Outcome classifies err for logs and metrics.
func Outcome(err error) string {
	var (
		inputErr     *ClientInputError
		authErr      *auth.AuthError
		transportErr *rates.TransportError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &inputErr):
		return OutcomeClientError
	case errors.As(err, &authErr):
		return OutcomeAuthError
	case errors.As(err, &transportErr):
		return OutcomeTransportError
	default:
		return OutcomeError
	}
}
