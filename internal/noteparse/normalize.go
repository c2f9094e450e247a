package noteparse

import (
	"strings"

	"github.com/riftnotes/riftnotes/internal/apperr"
	"github.com/riftnotes/riftnotes/internal/domain"
)

// Input is what a caller submits when creating a note: either already
// structured fields, legacy free text, or both. When both are present
// the structured fields win and the text is kept as-is for display.
type Input struct {
	Text       string
	Structured *domain.StructuredNote
}

// Normalize produces the canonical note shape from either representation.
// Structured input passes through untouched; legacy text goes through the
// parser. Fails only when neither representation is supplied.
func Normalize(in Input) (domain.StructuredNote, error) {
	if in.Structured != nil {
		return *in.Structured, nil
	}

	if strings.TrimSpace(in.Text) == "" {
		return domain.StructuredNote{}, &apperr.ValidationError{Issues: []apperr.Issue{
			{Path: "text", Message: "either text or structured fields are required"},
		}}
	}

	parsed := Parse(in.Text)
	return domain.StructuredNote{
		Matchup:      parsed.Matchup,
		Positive:     parsed.WhatWentWell,
		Improvements: parsed.WhatWentPoorly,
	}, nil
}

// Render synthesizes a legacy text body from structured fields so that
// structured-only notes stay readable to anything that still consumes
// raw text.
func Render(s domain.StructuredNote) string {
	var lines []string
	if s.Matchup != "" {
		lines = append(lines, s.Matchup)
	}
	if s.Positive != "" {
		lines = append(lines, "What went well: "+s.Positive)
	}
	if s.Improvements != "" {
		lines = append(lines, "What went poorly: "+s.Improvements)
	}
	return strings.Join(lines, "\n")
}
