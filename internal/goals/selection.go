package goals

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/riftnotes/riftnotes/internal/apperr"
)

// Goal sources
const (
	SourceCustom      = "custom"
	SourceRecommended = "recommended"
)

// SecondaryGoal is one of up to three extra goals picked from the
// recommendations.
type SecondaryGoal struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
}

// MainGoal is the user's primary training goal. Unlike secondary goals
// its source must be stated: hand-written or picked from the plan.
type MainGoal struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Source      string `json:"source" validate:"required,oneof=custom recommended"`
}

// Selection is the payload the user submits when saving goals
type Selection struct {
	MainGoal       MainGoal        `json:"mainGoal"`
	SecondaryGoals []SecondaryGoal `json:"secondaryGoals" validate:"max=3,dive"`
}

// ValidateSelection checks all constraints at once and defaults the
// secondary goals to an empty list when absent.
func ValidateSelection(sel *Selection) error {
	if sel.SecondaryGoals == nil {
		sel.SecondaryGoals = []SecondaryGoal{}
	}

	if err := validate.Struct(sel); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &apperr.ValidationError{Issues: toIssues(verrs)}
		}
		return fmt.Errorf("validate selection: %w", err)
	}

	return nil
}
