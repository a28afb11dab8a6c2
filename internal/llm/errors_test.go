package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

type codedErr struct{ code int }

func (e codedErr) Error() string { return "coded" }
func (e codedErr) HTTPCode() int { return e.code }

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"googleapi 429", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"googleapi 403", &googleapi.Error{Code: http.StatusForbidden, Message: "denied"}, false},
		{"wrapped googleapi 429", fmt.Errorf("generate: %w", &googleapi.Error{Code: 429}), true},
		{"status 429", &StatusError{StatusCode: 429}, true},
		{"status 503", &StatusError{StatusCode: 503}, false},
		{"http coder 429", codedErr{code: 429}, true},
		{"http coder 500", codedErr{code: 500}, false},
		{"message 429", errors.New("upstream said 429 Too Many Requests"), true},
		{"message rate_limit", errors.New(`{"code":"rate_limit_exceeded"}`), true},
		{"message resource exhausted", errors.New("rpc error: code = RESOURCE_EXHAUSTED"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimited(tt.err))
		})
	}
}

func TestStatusError(t *testing.T) {
	err := &StatusError{StatusCode: 429, Body: "slow down"}
	assert.Equal(t, "llm: upstream status 429: slow down", err.Error())
	assert.Equal(t, 429, err.HTTPCode())

	assert.Equal(t, "llm: upstream status 500", (&StatusError{StatusCode: 500}).Error())
}
