// Package noteparse recovers structure from legacy free-text game notes.
// Notes written before the structured form existed follow loose
// conventions: a "X vs Y" matchup line up top and "What went well" /
// "What went poorly" style sections below. The parser is best-effort;
// a field that cannot be found is left empty, never an error.
package noteparse

import (
	"regexp"
	"strings"
)

// Parsed holds whatever could be recovered from a legacy note.
// Empty fields mean the section was not found.
type Parsed struct {
	Matchup        string
	WhatWentWell   string
	WhatWentPoorly string
}

// Matchup patterns tried in order against the first non-empty line.
// Common shapes: "Playing X vs Y", "X vs Y", "Matchup: X vs Y",
// "X (mid) vs Y (mid)".
var matchupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:Playing\s+)?(.+?)\s+vs\s+(.+)$`),
	regexp.MustCompile(`(?i)^Matchup:\s*(.+?)\s+vs\s+(.+)$`),
	regexp.MustCompile(`(?i)^(.+?)\s*\([^)]*\)\s*vs\s*(.+?)\s*\([^)]*\)$`),
}

var wellPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^What went well[:-]?[ \t]*`),
	regexp.MustCompile(`(?im)^Positives[:-]?[ \t]*`),
	regexp.MustCompile(`(?im)^Good[:-]?[ \t]*`),
}

var poorlyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^What went (?:poorly|wrong)[:-]?[ \t]*`),
	regexp.MustCompile(`(?im)^Negatives[:-]?[ \t]*`),
	regexp.MustCompile(`(?im)^Improvements[:-]?[ \t]*`),
	regexp.MustCompile(`(?im)^Areas for improvement[:-]?[ \t]*`),
}

// nextSection marks where the positive section ends: the first header
// that opens a negative section.
var nextSection = regexp.MustCompile(`(?im)^(?:What went poorly|What went wrong|Negatives|Improvements|Areas for improvement)[:-]?`)

// Parse extracts matchup and section content from legacy note text.
// It is pure: identical input always yields identical output.
func Parse(text string) Parsed {
	var result Parsed
	if text == "" {
		return result
	}

	firstLine := firstNonEmptyLine(text)

	for _, pattern := range matchupPatterns {
		if m := pattern.FindStringSubmatch(firstLine); m != nil {
			result.Matchup = strings.TrimSpace(m[1]) + " vs " + strings.TrimSpace(m[2])
			break
		}
	}

	// Fallback: any short first line mentioning "vs" is taken verbatim.
	if result.Matchup == "" && firstLine != "" {
		if strings.Contains(firstLine, "vs") && len(firstLine) < 100 {
			result.Matchup = firstLine
		}
	}

	for _, pattern := range wellPatterns {
		loc := pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		rest := text[loc[1]:]
		end := len(rest)
		if next := nextSection.FindStringIndex(rest); next != nil {
			end = next[0]
		}
		result.WhatWentWell = strings.TrimSpace(rest[:end])
		break
	}

	for _, pattern := range poorlyPatterns {
		loc := pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		// Runs to end of text. When headers appear out of the usual
		// order this can duplicate content already claimed above;
		// accepted legacy behavior.
		result.WhatWentPoorly = strings.TrimSpace(text[loc[1]:])
		break
	}

	return result
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
