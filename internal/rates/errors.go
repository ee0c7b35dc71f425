// file: internal/rates/errors.go

package rates

import "fmt"

// TransportError reports a failed rate lookup: a non-401 error status, a
// network failure, a failed retry or an unreadable body. StatusCode is 0
// when no response was received.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("rate request failed: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("rate request failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("rate request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
