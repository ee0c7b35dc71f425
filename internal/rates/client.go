// file: internal/rates/client.go

package rates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"freight-rates/internal/auth"
	"freight-rates/internal/httpx"
	"freight-rates/internal/jsonpath"
	"freight-rates/internal/logger"
	"freight-rates/internal/metrics"
)

// DefaultTimeout bounds each rate lookup round-trip.
const DefaultTimeout = 20 * time.Second

// ErrUnexpectedShape is wrapped when the results field is not a list.
var ErrUnexpectedShape = errors.New("unexpected results shape")

var resultsRule = jsonpath.Rule{"data.results", "results"}

// RawRateEntry is one unstructured rate record as returned by the provider.
type RawRateEntry map[string]interface{}

// TokenProvider hands out bearer tokens. *auth.TokenManager implements it.
type TokenProvider interface {
	GetValidToken(ctx context.Context) (auth.Token, error)
	RefreshToken(ctx context.Context, oldToken string) (auth.Token, error)
}

// RateClient fetches rates for one vendor contract.
type RateClient struct {
	baseURL    string
	vendorID   string
	tokens     TokenProvider
	httpClient httpx.HTTPClient
	timeout    time.Duration
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// Option configures a RateClient.
type Option func(*RateClient)

// WithHTTPClient sets the HTTP client used for rate lookups.
func WithHTTPClient(c httpx.HTTPClient) Option {
	return func(rc *RateClient) {
		rc.httpClient = c
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(rc *RateClient) {
		if d > 0 {
			rc.timeout = d
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(rc *RateClient) {
		rc.logger = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(rc *RateClient) {
		rc.metrics = m
	}
}

// NewRateClient creates a rate client for vendorID at baseURL.
func NewRateClient(baseURL, vendorID string, tokens TokenProvider, opts ...Option) (*RateClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if vendorID == "" {
		return nil, fmt.Errorf("vendor id is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token provider is required")
	}

	rc := &RateClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		vendorID:   vendorID,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		timeout:    DefaultTimeout,
		logger:     logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(rc)
	}
	if rc.logger == nil {
		rc.logger = logger.NewNopLogger()
	}
	if rc.httpClient == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}
	return rc, nil
}

// FetchRates looks up rates for params. A 401 triggers exactly one token
// refresh and one retry; any other failure status is returned as a
// *TransportError without retrying. Auth failures surface as the
// *auth.AuthError from the token provider.
func (c *RateClient) FetchRates(ctx context.Context, params map[string]interface{}) ([]RawRateEntry, error) {
	start := time.Now()
	endpoint := c.endpoint(params)

	token, err := c.tokens.GetValidToken(ctx)
	if err != nil {
		return nil, err
	}

	status, body, err := c.get(ctx, endpoint, token)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	retried := false
	if status == http.StatusUnauthorized {
		retried = true
		c.metrics.IncAuthRetries()
		c.logger.Warn("rate request unauthorized, refreshing token", "vendorId", c.vendorID)

		token, err = c.tokens.RefreshToken(ctx, token.Value)
		if err != nil {
			return nil, err
		}

		status, body, err = c.get(ctx, endpoint, token)
		if err != nil {
			return nil, &TransportError{Err: err}
		}
	}

	if !httpx.IsSuccess(status) {
		c.logger.Error("rate request rejected",
			"vendorId", c.vendorID,
			"status", status,
			"retried", retried)
		return nil, &TransportError{StatusCode: status, Body: httpx.Snippet(body)}
	}

	results, err := decodeResults(body)
	if err != nil {
		return nil, &TransportError{StatusCode: status, Body: httpx.Snippet(body), Err: err}
	}

	c.logger.Info("rates fetched",
		"vendorId", c.vendorID,
		"count", len(results),
		"retried", retried,
		"duration", time.Since(start))
	return results, nil
}

// get performs one GET and returns the status and body. A non-nil error
// means no usable response was received.
func (c *RateClient) get(ctx context.Context, endpoint string, token auth.Token) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	token.OAuth2().SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveProviderDuration(time.Since(start).Seconds())
	if err != nil {
		c.metrics.IncProviderRequests(0)
		return 0, nil, fmt.Errorf("http request failed: %w", err)
	}
	c.metrics.IncProviderRequests(resp.StatusCode)

	body, err := httpx.ReadBody(resp)
	if err != nil {
		return 0, nil, err
	}

	c.logger.Debug("rate response received", "status", resp.StatusCode, "bytes", len(body))
	return resp.StatusCode, body, nil
}

func (c *RateClient) endpoint(params map[string]interface{}) string {
	u := c.baseURL + "/database/vendor/contract/" + url.PathEscape(c.vendorID) + "/rate"
	if q := EncodeQuery(params); q != "" {
		u += "?" + q
	}
	return u
}

// decodeResults pulls the rate list out of a response body. An empty body
// or a body without results yields an empty list.
func decodeResults(body []byte) ([]RawRateEntry, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []RawRateEntry{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	value, ok := resultsRule.Lookup(data)
	if !ok {
		return []RawRateEntry{}, nil
	}

	list, isList := value.([]interface{})
	if !isList {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedShape, value)
	}

	results := make([]RawRateEntry, 0, len(list))
	for _, item := range list {
		entry, isObject := item.(map[string]interface{})
		if !isObject {
			// keeps Normalize one-to-one; the row degrades to defaults
			entry = map[string]interface{}{}
		}
		results = append(results, RawRateEntry(entry))
	}
	return results, nil
}
