// file: internal/auth/manager.go

package auth

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"freight-rates/internal/httpx"
	"freight-rates/internal/jsonpath"
	"freight-rates/internal/logger"
	"freight-rates/internal/metrics"
)

const (
	// DefaultTimeout bounds each login or refresh call.
	DefaultTimeout = 15 * time.Second
	// DefaultExpiryMargin is how long a cached token must still be valid
	// for GetValidToken to hand it out.
	DefaultExpiryMargin = 10 * time.Second

	opLogin   = "login"
	opRefresh = "refresh"

	loginPath   = "login"
	refreshPath = "refreshtoken"
)

var (
	loginTokenRule   = jsonpath.Rule{"accessToken", "data.accessToken"}
	refreshTokenRule = jsonpath.Rule{"token", "data.token"}
)

// Credentials identify the account used against the auth endpoints.
type Credentials struct {
	BaseURL  string
	Username string
	Password string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

// TokenManager owns the in-memory access token. It logs in lazily when
// the cached token is missing or about to expire, and refreshes on
// demand. It never refreshes in the background.
type TokenManager struct {
	creds      Credentials
	httpClient httpx.HTTPClient
	timeout    time.Duration
	margin     time.Duration
	now        func() time.Time
	logger     *logger.Logger
	metrics    *metrics.Metrics

	// mu is held across the network call so concurrent callers share a
	// single login.
	mu    sync.Mutex
	token Token
}

// Option configures a TokenManager.
type Option func(*TokenManager)

// WithHTTPClient sets the HTTP client used for auth calls.
func WithHTTPClient(c httpx.HTTPClient) Option {
	return func(m *TokenManager) {
		m.httpClient = c
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *TokenManager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithExpiryMargin sets how much remaining lifetime a cached token needs.
func WithExpiryMargin(d time.Duration) Option {
	return func(m *TokenManager) {
		if d >= 0 {
			m.margin = d
		}
	}
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		m.now = now
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(m *TokenManager) {
		m.logger = l
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *TokenManager) {
		m.metrics = mt
	}
}

// WithToken seeds the cache, e.g. with a token obtained earlier in the
// process.
func WithToken(raw string) Option {
	return func(m *TokenManager) {
		m.token = NewToken(raw)
	}
}

// NewTokenManager creates a token manager for creds.
func NewTokenManager(creds Credentials, opts ...Option) (*TokenManager, error) {
	if creds.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	m := &TokenManager{
		creds:      creds,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		timeout:    DefaultTimeout,
		margin:     DefaultExpiryMargin,
		now:        time.Now,
		logger:     logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.NewNopLogger()
	}
	if m.httpClient == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}
	return m, nil
}

// GetValidToken returns the cached token when it outlives now+margin,
// otherwise it logs in and caches the new token.
func (m *TokenManager) GetValidToken(ctx context.Context) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token.ValidAt(m.now(), m.margin) {
		m.metrics.IncTokenCacheHits()
		return m.token, nil
	}

	if m.token.Value != "" {
		m.logger.Debug("cached token expired or undecodable, logging in",
			"expiry", m.token.Expiry)
	}

	token, err := m.exchange(ctx, opLogin, loginPath,
		loginRequest{Username: m.creds.Username, Password: m.creds.Password}, loginTokenRule)
	if err != nil {
		return Token{}, err
	}

	m.token = token
	return token, nil
}

// RefreshToken exchanges oldToken for a new one and caches it. It always
// calls the provider, whatever the state of the cache.
func (m *TokenManager) RefreshToken(ctx context.Context, oldToken string) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.exchange(ctx, opRefresh, refreshPath,
		refreshRequest{Token: oldToken}, refreshTokenRule)
	if err != nil {
		return Token{}, err
	}

	m.token = token
	return token, nil
}

// Token implements oauth2.TokenSource.
func (m *TokenManager) Token() (*oauth2.Token, error) {
	tok, err := m.GetValidToken(context.Background())
	if err != nil {
		return nil, err
	}
	return tok.OAuth2(), nil
}

var _ oauth2.TokenSource = (*TokenManager)(nil)

// exchange posts payload to path and extracts a token with rule.
func (m *TokenManager) exchange(ctx context.Context, op, path string, payload interface{}, rule jsonpath.Rule) (Token, error) {
	start := time.Now()
	m.logger.Debug("requesting token", "op", op, "endpoint", m.endpoint(path))

	token, err := m.post(ctx, path, payload, rule)

	duration := time.Since(start)
	m.metrics.ObserveAuthDuration(op, duration.Seconds())
	m.metrics.IncAuthRequest(op, err == nil)

	if err != nil {
		m.logger.Error("token request failed", "op", op, "duration", duration, "error", err)
		return Token{}, &AuthError{Op: op, Err: err}
	}

	m.logger.Info("token acquired",
		"op", op,
		"duration", duration,
		"expiry", token.Expiry,
		"expiryKnown", !token.Expiry.IsZero())
	return token, nil
}

func (m *TokenManager) post(ctx context.Context, path string, payload interface{}, rule jsonpath.Rule) (Token, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return Token{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return Token{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("http request failed: %w", err)
	}

	respBody, err := httpx.ReadBody(resp)
	if err != nil {
		return Token{}, err
	}

	if !httpx.IsSuccess(resp.StatusCode) {
		return Token{}, &StatusError{StatusCode: resp.StatusCode, Body: httpx.Snippet(respBody)}
	}

	var data interface{}
	if err := json.Unmarshal(respBody, &data); err != nil {
		return Token{}, fmt.Errorf("failed to parse response: %w", err)
	}

	value, ok := rule.Lookup(data)
	raw, isString := value.(string)
	if !ok || !isString || raw == "" {
		return Token{}, fmt.Errorf("%w (looked at %s)", ErrNoToken, rule)
	}

	return NewToken(raw), nil
}

func (m *TokenManager) endpoint(path string) string {
	return strings.TrimRight(m.creds.BaseURL, "/") + "/" + path
}
