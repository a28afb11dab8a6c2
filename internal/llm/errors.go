package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

var (
	// ErrRateLimited marks an upstream throttling failure that survived every retry.
	// Callers may offer a manual retry with identical inputs.
	ErrRateLimited = errors.New("llm: rate limited")
	// ErrFatal marks any other upstream failure. It is never retried.
	ErrFatal = errors.New("llm: gateway error")
)

// StatusError is returned by HTTP-based gateways for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("llm: upstream status %d", e.StatusCode)
	}
	return fmt.Sprintf("llm: upstream status %d: %s", e.StatusCode, e.Body)
}

// HTTPCode reports the upstream HTTP status code.
func (e *StatusError) HTTPCode() int {
	return e.StatusCode
}

// httpCoder is satisfied by gax apierror.APIError and StatusError.
type httpCoder interface {
	HTTPCode() int
}

// IsRateLimited reports whether err carries a rate-limit signature: an HTTP 429
// status on any error in the chain, or a throttling marker in the message.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests {
		return true
	}

	var coded httpCoder
	if errors.As(err, &coded) && coded.HTTPCode() == http.StatusTooManyRequests {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
