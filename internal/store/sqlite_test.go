package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftnotes/riftnotes/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "riftnotes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndListNotes(t *testing.T) {
	s := testStore(t)

	first, err := s.AddNote(&domain.Note{
		UserID: "user-1",
		Text:   "Ahri vs Zed\nWhat went well: good cs",
		Structured: &domain.StructuredNote{
			Matchup:     "Ahri vs Zed",
			Positive:    "good cs",
			GameOutcome: domain.OutcomeVictory,
		},
		Tags:         []string{"laning", "cs"},
		Embedding:    []float64{0.1, 0.2},
		SummonerName: "player1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	_, err = s.AddNote(&domain.Note{UserID: "user-1", Text: "second note"})
	require.NoError(t, err)

	// Another user's note must stay invisible.
	_, err = s.AddNote(&domain.Note{UserID: "user-2", Text: "not yours"})
	require.NoError(t, err)

	notes, err := s.ListNotes("user-1", 20, 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)

	// Newest first.
	assert.Equal(t, "second note", notes[0].Text)
	got := notes[1]
	assert.Equal(t, first.ID, got.ID)
	require.NotNil(t, got.Structured)
	assert.Equal(t, "Ahri vs Zed", got.Structured.Matchup)
	assert.Equal(t, []string{"laning", "cs"}, got.Tags)
	assert.Equal(t, []float64{0.1, 0.2}, got.Embedding)
	assert.Nil(t, got.Draft)
}

func TestAddNoteRequiresOwner(t *testing.T) {
	s := testStore(t)
	_, err := s.AddNote(&domain.Note{Text: "orphan"})
	assert.Error(t, err)
}

func TestGetNotesByIDsScopedToUser(t *testing.T) {
	s := testStore(t)

	mine, err := s.AddNote(&domain.Note{UserID: "user-1", Text: "mine"})
	require.NoError(t, err)
	theirs, err := s.AddNote(&domain.Note{UserID: "user-2", Text: "theirs"})
	require.NoError(t, err)

	notes, err := s.GetNotesByIDs("user-1", []string{mine.ID, theirs.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, mine.ID, notes[0].ID)

	notes, err = s.GetNotesByIDs("user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestFindSimilar(t *testing.T) {
	s := testStore(t)

	a, err := s.AddNote(&domain.Note{UserID: "u", Text: "a", Embedding: []float64{1, 0}})
	require.NoError(t, err)
	b, err := s.AddNote(&domain.Note{UserID: "u", Text: "b", Embedding: []float64{0.9, 0.1}})
	require.NoError(t, err)
	_, err = s.AddNote(&domain.Note{UserID: "u", Text: "c", Embedding: []float64{0, 1}})
	require.NoError(t, err)
	_, err = s.AddNote(&domain.Note{UserID: "u", Text: "no embedding"})
	require.NoError(t, err)

	similar, err := s.FindSimilar("u", []float64{1, 0}, 2, a.ID)
	require.NoError(t, err)
	require.Len(t, similar, 2)
	assert.Equal(t, b.ID, similar[0].Note.ID)
	assert.Greater(t, similar[0].Score, similar[1].Score)
}

func TestGoalPlanUpsert(t *testing.T) {
	s := testStore(t)

	now := time.Now()
	main := domain.Goal{Title: "freeze waves", Source: "recommended", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.SaveGoalPlan("user-1", main, []domain.Goal{{Title: "roam more"}}))

	plan, err := s.GetGoalPlan("user-1")
	require.NoError(t, err)
	assert.Equal(t, "freeze waves", plan.MainGoal.Title)
	require.Len(t, plan.SecondaryGoals, 1)
	firstCreated := plan.CreatedAt

	// Replacing wholesale keeps the original creation time.
	require.NoError(t, s.SaveGoalPlan("user-1", domain.Goal{Title: "perfect cs"}, nil))

	plan, err = s.GetGoalPlan("user-1")
	require.NoError(t, err)
	assert.Equal(t, "perfect cs", plan.MainGoal.Title)
	assert.Empty(t, plan.SecondaryGoals)
	assert.Equal(t, firstCreated.Unix(), plan.CreatedAt.Unix())
	assert.False(t, plan.UpdatedAt.Before(plan.CreatedAt))
}

func TestGetGoalPlanNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetGoalPlan("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
