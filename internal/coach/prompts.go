package coach

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/riftnotes/riftnotes/internal/domain"
	"github.com/riftnotes/riftnotes/internal/noteparse"
)

const jsonOnlySystem = "You output strict JSON; do not include extra commentary."

func buildAutotagPrompt(text string, draft *domain.Draft) string {
	draftDesc := "none"
	if draft != nil {
		if b, err := json.Marshal(draft); err == nil {
			draftDesc = string(b)
		}
	}

	var sb strings.Builder
	sb.WriteString(`You are an assistant that extracts concise, consistent tags from a player's game note
and optional draft info. Tags should be short, lowercase, single phrases (no spaces if possible, use hyphens).
Return JSON ONLY in the format:
{ "tags": ["tag1","tag2",...], "explanations": { "tag1": "brief reason", ... } }

Note text:
`)
	sb.WriteString(text)
	sb.WriteString("\n\nDraft (optional):\n")
	sb.WriteString(draftDesc)
	sb.WriteString(`

Focus on gameplay aspects (e.g. laning, cs, trading, wave-control, vision, jungle-tracking, roaming, tilt, mechanics, positioning, matchup-xxx),
and champion/role-specific tags like "ahri-mid" or "zed-vs-yasuo" when clearly present.
If nothing relevant, return an empty tags array: { "tags": [], "explanations": {} }.
Limit tags to 10 maximum.`)

	return sb.String()
}

func buildVisionPrompt(summonerName string) string {
	return fmt.Sprintf(`You are analyzing a League of Legends end-of-game or lobby screenshot.

The user's summoner name is: %q.

Tasks:
1. Identify all players shown in the image.
2. Extract for each player:
   - summoner name
   - champion played
   - team (ally or enemy)
3. Identify which player matches the given summoner name.
4. For that player:
   - champion
   - likely role if visible or inferable
   - direct lane opponent if visible
5. IMPORTANT: Detect the game outcome (Victory or Defeat):
   - Look for "Victory" or "Defeat" banners/text in the image
   - Check team colors and UI indicators
   - If unclear or not visible, return "unknown"

If something is unclear, use "unknown". Do NOT guess.

Output STRICT JSON in this exact shape:
{
  "me": {
    "summoner": "",
    "champion": "",
    "role": "",
    "opponentChampion": ""
  },
  "teams": {
    "allies": [],
    "enemies": []
  },
  "gameOutcome": "victory" | "defeat" | "unknown"
}`, summonerName)
}

const goalPlanSystem = `You are a CHALLENGER-LEVEL League of Legends coach.

Your job:
- analyze the player's recent notes
- identify real performance patterns
- generate elite-level training goals
- the user may be a high-elo player (Master/GM/Challenger)
- avoid generic advice ("farm more", "ward more", "play safe")
- advice MUST be matchup-, timing-, or mechanic-specific
- include reasoning, but do NOT hallucinate incorrect note content
- VERY IMPORTANT: Base findings on the user's actual notes and tags.

Your output MUST be strict JSON:

{
  "improvementAreas": [],
  "recommendedGoals": [{"goal": "", "reasoning": ""}],
  "suggestions": [{"goal": "", "suggestion": ""}],
  "longTermGoals": [],
  "skillPlan": {
    "laning": [],
    "midgame": [],
    "macro": [],
    "mechanics": []
  }
}`

func buildGoalPlanPrompt(notes []domain.Note) string {
	entries := make([]string, len(notes))
	for i, n := range notes {
		tags := "none"
		if len(n.Tags) > 0 {
			tags = strings.Join(n.Tags, ", ")
		}
		entries[i] = fmt.Sprintf("NOTE %d:\nText: %s\nTags: %s", i+1, n.Text, tags)
	}

	return fmt.Sprintf(`Here are the player's combined notes:

%s

Generate a goal plan based ONLY on their real issues, but you may add expert reasoning from your experience as a challenger coach.`,
		strings.Join(entries, "\n\n"))
}

const summarizeSystem = "You are a League of Legends coach analyzing gameplay notes. Provide concise, actionable insights. Output JSON only."

func buildSummarizePrompt(notes []domain.Note) string {
	entries := make([]string, len(notes))
	for i, n := range notes {
		structured := n.Structured
		if structured == nil {
			// Legacy note: fall back to the heuristic parser.
			parsed := noteparse.Parse(n.Text)
			structured = &domain.StructuredNote{
				Matchup:      parsed.Matchup,
				Positive:     parsed.WhatWentWell,
				Improvements: parsed.WhatWentPoorly,
			}
		}

		matchup := structured.Matchup
		if matchup == "" && n.Draft != nil {
			matchup = n.Draft.Me.Champion
		}

		header := fmt.Sprintf("Note %d", i+1)
		if matchup != "" {
			header += fmt.Sprintf(" (%s)", matchup)
		}

		entries[i] = fmt.Sprintf("%s:\nPositives: %s\nImprovements: %s\n---",
			header, orNA(structured.Positive), orNA(structured.Improvements))
	}

	return fmt.Sprintf(`You are analyzing multiple League of Legends game notes. Provide a comprehensive summary that identifies patterns and key insights.

Notes to analyze:
%s

Please provide:
1. Common Positive Patterns: What gameplay aspects are consistently done well?
2. Common Areas for Improvement: What mistakes or weaknesses appear repeatedly?
3. Key Recurring Themes: What are the most important patterns across all notes?

Format your response as JSON:
{
  "positivePatterns": "Summary of what went well across games",
  "improvementAreas": "Summary of common mistakes and areas to improve",
  "keyThemes": "Key recurring themes and insights"
}`, strings.Join(entries, "\n\n"))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
