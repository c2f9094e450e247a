// Package goals enforces the two goal-related contracts: the schema of
// AI-generated training plans and the constraints on user-selected
// goals. Validation is exhaustive; every offending path is reported.
package goals

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/riftnotes/riftnotes/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report violations with wire-format field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// toIssues flattens validator output into path/message pairs, dropping
// the root struct name from each namespace.
func toIssues(errs validator.ValidationErrors) []apperr.Issue {
	issues := make([]apperr.Issue, 0, len(errs))
	for _, fe := range errs {
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		issues = append(issues, apperr.Issue{Path: path, Message: describe(fe)})
	}
	return issues
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must have at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}
