// file: internal/quote/errors.go

package quote

import "fmt"

// ClientInputError reports a malformed caller payload. Message is safe to
// return to the caller as-is.
type ClientInputError struct {
	Field   string
	Message string
	Err     error
}

func (e *ClientInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ClientInputError) Unwrap() error {
	return e.Err
}
