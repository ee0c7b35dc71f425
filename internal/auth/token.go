// file: internal/auth/token.go

package auth

import (
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

// Token is a bearer credential plus the expiry decoded from its claims.
// A zero Expiry means the expiry could not be determined.
type Token struct {
	Value  string
	Expiry time.Time
}

// NewToken wraps raw and decodes its expiry.
func NewToken(raw string) Token {
	return Token{Value: raw, Expiry: ParseExpiry(raw)}
}

// ValidAt reports whether the token can still be used at now, keeping
// margin in reserve. Tokens with an unknown expiry are never valid.
func (t Token) ValidAt(now time.Time, margin time.Duration) bool {
	if t.Value == "" || t.Expiry.IsZero() {
		return false
	}
	return t.Expiry.After(now.Add(margin))
}

// OAuth2 converts the token for use with golang.org/x/oauth2 transports.
func (t Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: t.Value,
		TokenType:   "Bearer",
		Expiry:      t.Expiry,
	}
}

// Masked returns a log-safe rendering of the token value.
func (t Token) Masked() string {
	if len(t.Value) <= 12 {
		return strings.Repeat("*", len(t.Value))
	}
	return t.Value[:6] + "..." + t.Value[len(t.Value)-4:]
}

// ParseExpiry extracts the exp claim from a JWT-shaped string without
// verifying its signature. It never fails: anything that cannot be
// decoded yields the zero time.
func ParseExpiry(raw string) time.Time {
	parts := strings.Split(raw, ".")
	if len(parts) < 2 {
		return time.Time{}
	}

	payload, err := jwt.DecodeSegment(strings.TrimRight(parts[1], "="))
	if err != nil {
		return time.Time{}
	}

	// exp only; the remaining claims are not inspected.
	var claims struct {
		ExpiresAt *jwt.NumericDate `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
