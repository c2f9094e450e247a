package domain

import "time"

// Game outcome values as detected from screenshots or set by the user.
const (
	OutcomeVictory = "victory"
	OutcomeDefeat  = "defeat"
	OutcomeUnknown = "unknown"
)

// Note represents a single journaled game entry
type Note struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Text         string          `json:"text,omitempty"`
	Structured   *StructuredNote `json:"structured,omitempty"`
	Draft        *Draft          `json:"draft,omitempty"`
	Tags         []string        `json:"tags"`
	Embedding    []float64       `json:"embedding,omitempty"`
	SummonerName string          `json:"summonerName,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// StructuredNote is the canonical post-game note shape. Legacy free-text
// notes are parsed into it; newer notes carry it directly.
type StructuredNote struct {
	Matchup      string `json:"matchup,omitempty"`
	Positive     string `json:"positive,omitempty"`
	Improvements string `json:"improvements,omitempty"`
	GameOutcome  string `json:"gameOutcome,omitempty"`
}

// Draft holds vision-derived data extracted from an end-of-game screenshot
type Draft struct {
	Me          DraftPlayer `json:"me"`
	Teams       DraftTeams  `json:"teams"`
	GameOutcome string      `json:"gameOutcome,omitempty"`
}

// DraftPlayer describes one player slot detected in a screenshot
type DraftPlayer struct {
	Summoner         string `json:"summoner,omitempty"`
	Champion         string `json:"champion,omitempty"`
	Role             string `json:"role,omitempty"`
	OpponentChampion string `json:"opponentChampion,omitempty"`
}

// DraftTeams splits detected players into allies and enemies
type DraftTeams struct {
	Allies  []DraftPlayer `json:"allies"`
	Enemies []DraftPlayer `json:"enemies"`
}

// Goal is a single training goal chosen by the user
type Goal struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GoalPlan is the user's current goal selection, one per user
type GoalPlan struct {
	UserID         string    `json:"userId"`
	MainGoal       Goal      `json:"mainGoal"`
	SecondaryGoals []Goal    `json:"secondaryGoals"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Summary aggregates patterns across a set of notes
type Summary struct {
	PositivePatterns string `json:"positivePatterns"`
	ImprovementAreas string `json:"improvementAreas"`
	KeyThemes        string `json:"keyThemes"`
}
