package gateway

import (
	"errors"
	"fmt"
)

// ErrTransport marks failures where no usable response reached the client:
// network errors and bodies that are not JSON.
var ErrTransport = errors.New("backend transport failure")

// BackendError is a non-2xx response carrying the backend's error payload.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}

// userMessage picks the text shown to the user: the backend's own message when
// it sent one, otherwise the operation's fallback.
func userMessage(err error, backendFallback, transportFallback string) string {
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		if backendErr.Message != "" {
			return backendErr.Message
		}
		return backendFallback
	}
	return transportFallback
}
