package interview

import (
	"errors"

	"github.com/ratuser/inter-prep-GenAi/internal/llm"
)

var (
	// ErrNotReady means the profile is missing or its resume is not analysed yet.
	ErrNotReady = errors.New("interview: profile not ready")
	// ErrNoProfile means a completion was requested for a user without a profile.
	ErrNoProfile = errors.New("interview: no profile")

	// ErrRateLimited is returned when upstream throttling outlived every retry.
	// The same turn may be retried with identical inputs.
	ErrRateLimited = llm.ErrRateLimited
	// ErrGateway is returned for any other upstream failure.
	ErrGateway = llm.ErrFatal
)
