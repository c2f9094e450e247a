package llm

import (
	"errors"
	"fmt"
)

// ErrNoModelResponse means the provider returned an empty completion
var ErrNoModelResponse = errors.New("no response from model")

// UnparsableResponseError means a completion was present but no JSON
// could be recovered from it. Raw keeps the full text for diagnostics.
type UnparsableResponseError struct {
	Raw string
}

func (e *UnparsableResponseError) Error() string {
	return "model returned a non-JSON response"
}

// AuthError means the model provider rejected our credentials. Kept
// distinct from generic upstream failures for operator diagnostics.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("model provider rejected credentials (status %d)", e.StatusCode)
}
