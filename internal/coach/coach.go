// Package coach orchestrates the model-backed operations: tag
// extraction, screenshot drafts, goal plan generation and note
// summarization. Each operation assembles a deterministic prompt,
// makes one model call, recovers JSON from the completion and
// validates it before returning. Nothing is retried; upstream
// failures surface directly to the caller.
package coach

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/riftnotes/riftnotes/internal/domain"
	"github.com/riftnotes/riftnotes/internal/goals"
	"github.com/riftnotes/riftnotes/internal/llm"
)

// Coach runs AI requests against an injected model client
type Coach struct {
	client *llm.Client
}

// New creates a Coach
func New(client *llm.Client) *Coach {
	return &Coach{client: client}
}

// maxTags matches the limit the tag extraction prompt states.
const maxTags = 10

// AutotagResult holds extracted tags with per-tag reasoning
type AutotagResult struct {
	Tags         []string          `json:"tags"`
	Explanations map[string]string `json:"explanations"`
}

// Autotag extracts short gameplay tags from note text and optional
// draft data. Tags come back lowercase and hyphenated per the prompt
// contract; anything non-string the model sneaks in is coerced.
func (c *Coach) Autotag(ctx context.Context, text string, draft *domain.Draft) (*AutotagResult, error) {
	raw, err := c.client.Complete(ctx, c.client.Config().ChatDeployment,
		[]llm.Message{
			llm.TextMessage("system", jsonOnlySystem),
			llm.TextMessage("user", buildAutotagPrompt(text, draft)),
		},
		llm.CompleteOptions{Temperature: 0, MaxTokens: 400, JSONOnly: true})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Tags         []any             `json:"tags"`
		Explanations map[string]string `json:"explanations"`
	}
	if err := llm.ExtractJSON(raw, &parsed); err != nil {
		return nil, err
	}

	result := &AutotagResult{
		Tags:         make([]string, 0, len(parsed.Tags)),
		Explanations: parsed.Explanations,
	}
	for _, tag := range parsed.Tags {
		if s, ok := tag.(string); ok {
			result.Tags = append(result.Tags, s)
		} else {
			result.Tags = append(result.Tags, fmt.Sprint(tag))
		}
	}
	// The prompt asks for at most 10 tags; hold the model to it.
	if len(result.Tags) > maxTags {
		result.Tags = result.Tags[:maxTags]
	}
	if result.Explanations == nil {
		result.Explanations = map[string]string{}
	}

	return result, nil
}

// DraftFromScreenshot asks the vision deployment to parse an
// end-of-game screenshot into structured draft data.
func (c *Coach) DraftFromScreenshot(ctx context.Context, imageBase64, summonerName string) (*domain.Draft, error) {
	raw, err := c.client.Complete(ctx, c.client.Config().VisionDeployment,
		[]llm.Message{llm.VisionMessage(buildVisionPrompt(summonerName), imageBase64)},
		llm.CompleteOptions{Temperature: 0.1, JSONOnly: true})
	if err != nil {
		return nil, err
	}

	var draft domain.Draft
	if err := llm.ExtractJSON(raw, &draft); err != nil {
		return nil, err
	}
	if draft.GameOutcome == "" {
		draft.GameOutcome = domain.OutcomeUnknown
	}

	return &draft, nil
}

// GenerateGoals synthesizes a training plan from the user's recent
// notes and validates it against the plan schema.
func (c *Coach) GenerateGoals(ctx context.Context, notes []domain.Note) (*goals.Plan, error) {
	raw, err := c.client.Complete(ctx, c.client.Config().ChatDeployment,
		[]llm.Message{
			llm.TextMessage("system", goalPlanSystem),
			llm.TextMessage("user", buildGoalPlanPrompt(notes)),
		},
		llm.CompleteOptions{Temperature: 0.2, JSONOnly: true})
	if err != nil {
		return nil, err
	}

	var rawJSON json.RawMessage
	if err := llm.ExtractJSON(raw, &rawJSON); err != nil {
		return nil, err
	}

	return goals.ParsePlan(rawJSON)
}

// Summarize condenses a set of notes into recurring patterns
func (c *Coach) Summarize(ctx context.Context, notes []domain.Note) (*domain.Summary, error) {
	raw, err := c.client.Complete(ctx, c.client.Config().ChatDeployment,
		[]llm.Message{
			llm.TextMessage("system", summarizeSystem),
			llm.TextMessage("user", buildSummarizePrompt(notes)),
		},
		llm.CompleteOptions{Temperature: 0.3, JSONOnly: true})
	if err != nil {
		return nil, err
	}

	var summary domain.Summary
	if err := llm.ExtractJSON(raw, &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}

// Embed generates an embedding vector for note text
func (c *Coach) Embed(ctx context.Context, text string) ([]float64, error) {
	return c.client.Embed(ctx, text)
}
