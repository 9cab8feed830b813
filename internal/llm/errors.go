package llm

import (
	"errors"
	"fmt"
)

// Failure classes a Client may report. Transport/transient-server/rate-limit
// failures are retried by the Gateway; authentication and malformed-request
// failures fail immediately.
var (
	ErrTransport        = errors.New("llm: transport error")
	ErrTransientServer  = errors.New("llm: transient server error")
	ErrRateLimited      = errors.New("llm: rate limited")
	ErrAuthentication   = errors.New("llm: authentication error")
	ErrMalformedRequest = errors.New("llm: malformed request")
)

func isRetryable(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrTransientServer) || errors.Is(err, ErrRateLimited)
}

// LLMError reports that a Gateway call exhausted its retry budget (or hit a
// non-retryable failure), carrying the last underlying cause and the
// correlation ID of the call that produced it.
type LLMError struct {
	Tier          Tier
	CorrelationID string
	Attempts      int
	Err           error
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("llm: tier %s: correlation %s: attempt %d: %v", e.Tier, e.CorrelationID, e.Attempts, e.Err)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}
