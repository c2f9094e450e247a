// Package apperr defines the error taxonomy shared across handlers,
// validators and the normalizer. Parsing heuristics never use these;
// they degrade to absent fields instead of failing.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAuthRequired signals a request without a valid session identity
var ErrAuthRequired = errors.New("authentication required")

// Issue is one field-level problem, identified by its wire-format path
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports malformed caller input. All issues are
// collected before the error is returned, not just the first.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	return "invalid request: " + joinIssues(e.Issues)
}

// SchemaViolationError reports model output that parsed as JSON but does
// not match the application schema. Enumeration is exhaustive.
type SchemaViolationError struct {
	Issues []Issue
}

func (e *SchemaViolationError) Error() string {
	return "schema violation: " + joinIssues(e.Issues)
}

func joinIssues(issues []Issue) string {
	if len(issues) == 0 {
		return "no details"
	}
	parts := make([]string, len(issues))
	for i, is := range issues {
		parts[i] = fmt.Sprintf("%s: %s", is.Path, is.Message)
	}
	return strings.Join(parts, "; ")
}
