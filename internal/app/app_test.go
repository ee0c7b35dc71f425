package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-rates/config"
	"freight-rates/internal/quote"
)

func newProvider(t *testing.T) (*httptest.Server, *int) {
	t.Helper()

	logins := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		logins++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"accessToken":"opaque-token"}}`))
	})
	mux.HandleFunc("/api/v1/database/vendor/contract/42/rate", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer opaque-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"results":[
			{"name":"ACME","serviceLevel":"STD","rateType":"LTL","total":"120.50","transitDays":3},
			{"name":"BOLT","serviceLevel":"STD","rateType":"LTL","total":99.99,"transitDays":"5 days"},
			{"name":"ZOOM","serviceLevel":"EXP","rateType":"LTL","total":300,"transitDays":1}
		]}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &logins
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Provider: config.ProviderConfig{
			BaseURL:      baseURL,
			Username:     "user",
			Password:     "secret",
			VendorID:     "42",
			AuthTimeout:  2 * time.Second,
			RateTimeout:  2 * time.Second,
			ExpiryMargin: 10 * time.Second,
		},
		HTTP: config.HTTPConfig{
			Server: config.HTTPServerConfig{
				Address:             "127.0.0.1:0",
				RequestTimeout:      5 * time.Second,
				ShutdownGracePeriod: time.Second,
			},
		},
		Logging: config.LogConfig{Level: "error", OutputPath: "stderr", Encoding: "json"},
	}
}

func TestServerAppServesQuotes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	provider, logins := newProvider(t)

	a, err := NewServerApp(testConfig(provider.URL + "/api/v1"))
	require.NoError(t, err)
	defer a.Close()

	w := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rates?originZip=10001", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result quote.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Data, 3)
	require.Len(t, result.Cheapest, 2)

	assert.Equal(t, "BOLT", result.Cheapest[0].Carrier)
	assert.Equal(t, 99.99, *result.Cheapest[0].Total)
	assert.Equal(t, 5, *result.Cheapest[0].TransitTime)
	assert.Equal(t, "ZOOM", result.Cheapest[1].Carrier)
	assert.Equal(t, 1, *logins)
}

func TestServerAppRunStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	provider, _ := newProvider(t)

	a, err := NewServerApp(testConfig(provider.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}

func TestBuilderRejectsIncompleteProvider(t *testing.T) {
	cfg := testConfig("")

	_, err := NewAppBuilder(cfg).WithLogger().WithMetrics().WithProvider().Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token manager")
}

func TestBuilderMetricsEnabled(t *testing.T) {
	provider, _ := newProvider(t)
	cfg := testConfig(provider.URL)
	cfg.Metrics = config.MetricsConfig{
		Enabled:        true,
		Address:        "127.0.0.1:0",
		Path:           "/metrics",
		UpdateInterval: time.Hour,
	}

	base, err := NewAppBuilder(cfg).WithLogger().WithMetrics().WithProvider().Build()
	require.NoError(t, err)
	defer base.Shutdown(context.Background())

	require.NotNil(t, base.Metrics)
	require.NotNil(t, base.Collector)
	require.NotNil(t, base.MetricsServer)
	assert.NotNil(t, base.Metrics.GetRegistry())
	assert.NotNil(t, base.Quotes)
}
