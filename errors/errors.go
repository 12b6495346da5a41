package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrUnknownChannel   = fmt.Errorf("unknown notification channel")
	ErrMalformedPayload = fmt.Errorf("malformed notification payload")
	ErrFeedClosed       = fmt.Errorf("change feed closed")
	ErrMissingToken     = fmt.Errorf("missing access token")
	ErrInvalidToken     = fmt.Errorf("invalid or expired token")
)

// MapToHTTPStatus translates auth errors into the status the gateway
// returns before any registry interaction happens.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidToken):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
