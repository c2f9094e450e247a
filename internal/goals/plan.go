package goals

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/riftnotes/riftnotes/internal/apperr"
)

// Plan is the training plan the model must produce. Arrays may be
// empty but must be present; required distinguishes a missing key
// (nil slice) from a present-but-empty one.
type Plan struct {
	ImprovementAreas []string          `json:"improvementAreas" validate:"required"`
	RecommendedGoals []RecommendedGoal `json:"recommendedGoals" validate:"required"`
	Suggestions      []Suggestion      `json:"suggestions" validate:"required"`
	LongTermGoals    []string          `json:"longTermGoals" validate:"required"`
	SkillPlan        *SkillPlan        `json:"skillPlan" validate:"required"`
}

// RecommendedGoal pairs a goal with the coach's reasoning
type RecommendedGoal struct {
	Goal      string `json:"goal"`
	Reasoning string `json:"reasoning"`
}

// Suggestion pairs a goal with a concrete practice suggestion
type Suggestion struct {
	Goal       string `json:"goal"`
	Suggestion string `json:"suggestion"`
}

// SkillPlan breaks training down by game phase
type SkillPlan struct {
	Laning    []string `json:"laning" validate:"required"`
	Midgame   []string `json:"midgame" validate:"required"`
	Macro     []string `json:"macro" validate:"required"`
	Mechanics []string `json:"mechanics" validate:"required"`
}

// ParsePlan decodes and validates a model-generated plan. Malformed
// output fails with a SchemaViolationError so it never reaches storage
// or the client. Each field is decoded on its own so that every type
// mismatch is reported; a single json.Unmarshal of the whole object
// would stop at the first one.
func ParsePlan(raw json.RawMessage) (*Plan, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &apperr.SchemaViolationError{Issues: []apperr.Issue{
				{Path: "(root)", Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)},
			}}
		}
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	var plan Plan
	var issues []apperr.Issue
	mistyped := map[string]bool{}

	decodeField := func(path string, raw json.RawMessage, dst any) {
		if raw == nil {
			// Missing key: the validator pass reports it.
			return
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			p, msg := path, err.Error()
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				if typeErr.Field != "" {
					p = path + "." + typeErr.Field
				}
				msg = fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)
			}
			issues = append(issues, apperr.Issue{Path: p, Message: msg})
			mistyped[path] = true
		}
	}

	decodeField("improvementAreas", fields["improvementAreas"], &plan.ImprovementAreas)
	decodeField("recommendedGoals", fields["recommendedGoals"], &plan.RecommendedGoals)
	decodeField("suggestions", fields["suggestions"], &plan.Suggestions)
	decodeField("longTermGoals", fields["longTermGoals"], &plan.LongTermGoals)

	if rawSkill, ok := fields["skillPlan"]; ok {
		var sub map[string]json.RawMessage
		if err := json.Unmarshal(rawSkill, &sub); err != nil {
			msg := err.Error()
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				msg = fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)
			}
			issues = append(issues, apperr.Issue{Path: "skillPlan", Message: msg})
			mistyped["skillPlan"] = true
		} else if sub != nil {
			sp := &SkillPlan{}
			decodeField("skillPlan.laning", sub["laning"], &sp.Laning)
			decodeField("skillPlan.midgame", sub["midgame"], &sp.Midgame)
			decodeField("skillPlan.macro", sub["macro"], &sp.Macro)
			decodeField("skillPlan.mechanics", sub["mechanics"], &sp.Mechanics)
			plan.SkillPlan = sp
		}
	}

	if err := validate.Struct(&plan); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validate plan: %w", err)
		}
		// A mistyped field decodes to nil and would also show up as
		// missing; report it once, as the type mismatch.
		for _, issue := range toIssues(verrs) {
			if !mistyped[issue.Path] {
				issues = append(issues, issue)
			}
		}
	}

	if len(issues) > 0 {
		return nil, &apperr.SchemaViolationError{Issues: issues}
	}

	return &plan, nil
}
