// file: internal/server/handler.go

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"freight-rates/internal/auth"
	"freight-rates/internal/quote"
	"freight-rates/internal/rates"
)

// Client-facing messages. Error chains stay in the logs.
const (
	msgAuthFailed      = "rate provider authentication failed"
	msgProviderFailed  = "rate provider request failed"
	msgInternal        = "internal server error"
	msgTooManyRequests = "too many requests"
	msgTimeout         = "request timed out"
)

func (s *Server) getRates(c *gin.Context) {
	result, err := s.quoter.QueryQuote(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		status, body := errorResponse(err)
		s.logger.With("request_id", c.GetString(requestIDKey)).Warn("quote request failed",
			"outcome", quote.Outcome(err),
			"status", status,
			"error", err)
		c.JSON(status, body)
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		s.logger.With("request_id", c.GetString(requestIDKey)).Error("failed to encode quote",
			"rates", len(result.Data),
			"error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": msgProviderFailed})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// errorResponse maps a pipeline error to a status code and JSON body.
func errorResponse(err error) (int, gin.H) {
	var (
		inputErr     *quote.ClientInputError
		authErr      *auth.AuthError
		transportErr *rates.TransportError
	)

	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, gin.H{"error": inputErr.Message}
	case errors.As(err, &authErr):
		return http.StatusBadGateway, gin.H{"error": msgAuthFailed}
	case errors.As(err, &transportErr):
		body := gin.H{"error": msgProviderFailed}
		if transportErr.StatusCode != 0 {
			body["status"] = transportErr.StatusCode
		}
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, gin.H{"error": msgInternal}
	}
}
