package auth_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"freight-rates/internal/auth"
	"freight-rates/internal/httpx/httpxmock"
)

const baseURL = "https://sandbox-api.shipprimus.com/api/v1"

var fixedNow = time.Unix(1_700_000_000, 0)

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func jsonResponse(t *testing.T, status int, body any) *http.Response {
	t.Helper()
	buffer := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buffer).Encode(body))
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(buffer),
	}
}

func decodeBody(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
	return body
}

func newManager(t *testing.T, client *httpxmock.MockHTTPClient, opts ...auth.Option) *auth.TokenManager {
	t.Helper()
	opts = append([]auth.Option{
		auth.WithHTTPClient(client),
		auth.WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	m, err := auth.NewTokenManager(auth.Credentials{
		BaseURL:  baseURL,
		Username: "demo",
		Password: "secret",
	}, opts...)
	require.NoError(t, err)
	return m
}

func TestNewTokenManagerRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := auth.NewTokenManager(auth.Credentials{Username: "demo"})
	require.Error(t, err)
}

func TestGetValidTokenReturnsCachedToken(t *testing.T) {
	t.Parallel()

	// Arrange: a cached token an hour away from expiry and a client that must not be called.
	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Times(0)

	cached := mintToken(t, fixedNow.Add(time.Hour))
	manager := newManager(t, httpClient, auth.WithToken(cached))

	// Act
	token, err := manager.GetValidToken(testContext(t))

	// Assert
	require.NoError(t, err)
	require.Equal(t, cached, token.Value)
	require.True(t, token.Expiry.Equal(fixedNow.Add(time.Hour)))
}

func TestGetValidTokenLogsIn(t *testing.T) {
	t.Parallel()

	fresh := mintToken(t, fixedNow.Add(time.Hour))

	tests := []struct {
		name     string
		response any
	}{
		{name: "top level accessToken", response: map[string]any{"accessToken": fresh}},
		{name: "nested data.accessToken", response: map[string]any{"data": map[string]any{"accessToken": fresh}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Arrange: expect exactly one login; the second call must be served from memory.
			ctrl := gomock.NewController(t)
			httpClient := httpxmock.NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(req *http.Request) (*http.Response, error) {
					require.Equal(t, http.MethodPost, req.Method)
					require.Equal(t, baseURL+"/login", req.URL.String())
					require.Equal(t, "application/json", req.Header.Get("Content-Type"))
					require.Equal(t, map[string]any{"username": "demo", "password": "secret"}, decodeBody(t, req))
					return jsonResponse(t, http.StatusOK, tt.response), nil
				}).
				Times(1)

			manager := newManager(t, httpClient)

			// Act
			first, err := manager.GetValidToken(testContext(t))
			require.NoError(t, err)
			second, err := manager.GetValidToken(testContext(t))
			require.NoError(t, err)

			// Assert
			require.Equal(t, fresh, first.Value)
			require.Equal(t, first, second)
		})
	}
}

func TestGetValidTokenReplacesUnusableCache(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cached func(t *testing.T) string
	}{
		{name: "expired", cached: func(t *testing.T) string { return mintToken(t, fixedNow.Add(-time.Minute)) }},
		{name: "inside safety margin", cached: func(t *testing.T) string { return mintToken(t, fixedNow.Add(5*time.Second)) }},
		{name: "exactly at safety margin", cached: func(t *testing.T) string { return mintToken(t, fixedNow.Add(10*time.Second)) }},
		{name: "not decodable", cached: func(t *testing.T) string { return "just.two.parts" }},
		{name: "opaque", cached: func(t *testing.T) string { return "opaque-token" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Arrange
			fresh := mintToken(t, fixedNow.Add(time.Hour))
			ctrl := gomock.NewController(t)
			httpClient := httpxmock.NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				Return(jsonResponse(t, http.StatusOK, map[string]any{"accessToken": fresh}), nil).
				Times(1)

			manager := newManager(t, httpClient, auth.WithToken(tt.cached(t)))

			// Act
			token, err := manager.GetValidToken(testContext(t))

			// Assert
			require.NoError(t, err)
			require.Equal(t, fresh, token.Value)
		})
	}
}

func TestGetValidTokenCustomMargin(t *testing.T) {
	t.Parallel()

	// Arrange: a token with 30s left is stale when a minute of margin is required.
	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockHTTPClient(ctrl)
	fresh := mintToken(t, fixedNow.Add(time.Hour))
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(t, http.StatusOK, map[string]any{"accessToken": fresh}), nil).
		Times(1)

	manager := newManager(t, httpClient,
		auth.WithToken(mintToken(t, fixedNow.Add(30*time.Second))),
		auth.WithExpiryMargin(time.Minute))

	// Act
	token, err := manager.GetValidToken(testContext(t))

	// Assert
	require.NoError(t, err)
	require.Equal(t, fresh, token.Value)
}

func TestGetValidTokenLoginFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resp   func(t *testing.T) (*http.Response, error)
		assert func(t *testing.T, err error)
	}{
		{
			name: "unauthorized",
			resp: func(t *testing.T) (*http.Response, error) {
				return jsonResponse(t, http.StatusUnauthorized, map[string]any{"message": "bad credentials"}), nil
			},
			assert: func(t *testing.T, err error) {
				var statusErr *auth.StatusError
				require.ErrorAs(t, err, &statusErr)
				require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
				require.Contains(t, statusErr.Body, "bad credentials")
			},
		},
		{
			name: "server error",
			resp: func(t *testing.T) (*http.Response, error) {
				return jsonResponse(t, http.StatusInternalServerError, map[string]any{}), nil
			},
			assert: func(t *testing.T, err error) {
				var statusErr *auth.StatusError
				require.ErrorAs(t, err, &statusErr)
				require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
			},
		},
		{
			name: "network failure",
			resp: func(t *testing.T) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			assert: func(t *testing.T, err error) {
				require.ErrorContains(t, err, "connection refused")
			},
		},
		{
			name: "no token in body",
			resp: func(t *testing.T) (*http.Response, error) {
				return jsonResponse(t, http.StatusOK, map[string]any{"data": map[string]any{}}), nil
			},
			assert: func(t *testing.T, err error) {
				require.ErrorIs(t, err, auth.ErrNoToken)
			},
		},
		{
			name: "empty token",
			resp: func(t *testing.T) (*http.Response, error) {
				return jsonResponse(t, http.StatusOK, map[string]any{"accessToken": ""}), nil
			},
			assert: func(t *testing.T, err error) {
				require.ErrorIs(t, err, auth.ErrNoToken)
			},
		},
		{
			name: "token is not a string",
			resp: func(t *testing.T) (*http.Response, error) {
				return jsonResponse(t, http.StatusOK, map[string]any{"accessToken": 12345}), nil
			},
			assert: func(t *testing.T, err error) {
				require.ErrorIs(t, err, auth.ErrNoToken)
			},
		},
		{
			name: "body is not json",
			resp: func(t *testing.T) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString("<html>"))}, nil
			},
			assert: func(t *testing.T, err error) {
				require.ErrorContains(t, err, "failed to parse response")
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Arrange
			ctrl := gomock.NewController(t)
			httpClient := httpxmock.NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(*http.Request) (*http.Response, error) { return tt.resp(t) }).
				Times(1)

			manager := newManager(t, httpClient)

			// Act
			_, err := manager.GetValidToken(testContext(t))

			// Assert
			var authErr *auth.AuthError
			require.ErrorAs(t, err, &authErr)
			require.Equal(t, "login", authErr.Op)
			tt.assert(t, err)
		})
	}
}

func TestGetValidTokenHonorsContext(t *testing.T) {
	t.Parallel()

	// Arrange: the client observes the request context.
	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		}).
		Times(1)

	manager := newManager(t, httpClient)
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	// Act
	_, err := manager.GetValidToken(ctx)

	// Assert
	require.ErrorIs(t, err, context.Canceled)
}

func TestGetValidTokenConcurrentCallersShareOneLogin(t *testing.T) {
	t.Parallel()

	// Arrange
	fresh := mintToken(t, fixedNow.Add(time.Hour))
	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(*http.Request) (*http.Response, error) {
			time.Sleep(10 * time.Millisecond)
			return jsonResponse(t, http.StatusOK, map[string]any{"accessToken": fresh}), nil
		}).
		Times(1)

	manager := newManager(t, httpClient)

	// Act
	var wg sync.WaitGroup
	tokens := make([]string, 8)
	for i := range tokens {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := manager.GetValidToken(context.Background())
			if err == nil {
				tokens[i] = tok.Value
			}
		}()
	}
	wg.Wait()

	// Assert
	for _, tok := range tokens {
		require.Equal(t, fresh, tok)
	}
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	old := mintToken(t, fixedNow.Add(time.Hour))
	renewed := mintToken(t, fixedNow.Add(2*time.Hour))

	tests := []struct {
		name     string
		response any
	}{
		{name: "top level token", response: map[string]any{"token": renewed}},
		{name: "nested data.token", response: map[string]any{"data": map[string]any{"token": renewed}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Arrange: refresh is called even though the cached token is still valid.
			ctrl := gomock.NewController(t)
			httpClient := httpxmock.NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(req *http.Request) (*http.Response, error) {
					require.Equal(t, http.MethodPost, req.Method)
					require.Equal(t, baseURL+"/refreshtoken", req.URL.String())
					require.Equal(t, map[string]any{"token": old}, decodeBody(t, req))
					return jsonResponse(t, http.StatusOK, tt.response), nil
				}).
				Times(1)

			manager := newManager(t, httpClient, auth.WithToken(old))

			// Act
			refreshed, err := manager.RefreshToken(testContext(t), old)
			require.NoError(t, err)
			current, err := manager.GetValidToken(testContext(t))
			require.NoError(t, err)

			// Assert: the refreshed token replaced the cache.
			require.Equal(t, renewed, refreshed.Value)
			require.Equal(t, renewed, current.Value)
		})
	}
}

func TestRefreshTokenFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp func(t *testing.T) (*http.Response, error)
	}{
		{
			name: "missing token",
			resp: func(t *testing.T) (*http.Response, error) {
				return jsonResponse(t, http.StatusOK, map[string]any{"accessToken": "wrong-field"}), nil
			},
		},
		{
			name: "rejected",
			resp: func(t *testing.T) (*http.Response, error) {
				return jsonResponse(t, http.StatusUnauthorized, map[string]any{}), nil
			},
		},
		{
			name: "network failure",
			resp: func(t *testing.T) (*http.Response, error) {
				return nil, errors.New("reset by peer")
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			httpClient := httpxmock.NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(*http.Request) (*http.Response, error) { return tt.resp(t) }).
				Times(1)

			manager := newManager(t, httpClient)

			_, err := manager.RefreshToken(testContext(t), "old-token")

			var authErr *auth.AuthError
			require.ErrorAs(t, err, &authErr)
			require.Equal(t, "refresh", authErr.Op)
		})
	}
}

func TestTokenSource(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockHTTPClient(ctrl)
	cached := mintToken(t, fixedNow.Add(time.Hour))
	manager := newManager(t, httpClient, auth.WithToken(cached))

	tok, err := manager.Token()

	require.NoError(t, err)
	require.Equal(t, cached, tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
}
