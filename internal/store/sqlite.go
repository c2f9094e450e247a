// Package store persists notes and goal plans in sqlite. Nested
// shapes (structured fields, drafts, tags, embeddings) are stored as
// JSON columns; every read and write is scoped to one user.
package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/riftnotes/riftnotes/internal/domain"
	"github.com/riftnotes/riftnotes/internal/llm"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = errors.New("not found")

// Store handles database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// AddNote inserts a note, assigning its id and creation time. The
// caller must have set UserID; ownership is immutable afterwards.
func (s *Store) AddNote(n *domain.Note) (*domain.Note, error) {
	if n.UserID == "" {
		return nil, fmt.Errorf("note owner is required")
	}

	saved := *n
	saved.ID = uuid.New().String()
	saved.CreatedAt = time.Now()
	if saved.Tags == nil {
		saved.Tags = []string{}
	}

	structured, err := marshalNullable(saved.Structured != nil, saved.Structured)
	if err != nil {
		return nil, fmt.Errorf("marshal structured: %w", err)
	}
	draft, err := marshalNullable(saved.Draft != nil, saved.Draft)
	if err != nil {
		return nil, fmt.Errorf("marshal draft: %w", err)
	}
	tags, err := json.Marshal(saved.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	embedding, err := marshalNullable(len(saved.Embedding) > 0, saved.Embedding)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO notes (id, user_id, text, structured, draft, tags, embedding, summoner_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.UserID, saved.Text, structured, draft, string(tags), embedding, saved.SummonerName, saved.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	return &saved, nil
}

const noteColumns = "id, user_id, text, structured, draft, tags, embedding, summoner_name, created_at"

// ListNotes returns a user's notes, newest first
func (s *Store) ListNotes(userID string, limit, offset int) ([]domain.Note, error) {
	rows, err := s.db.Query(
		"SELECT "+noteColumns+" FROM notes WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// RecentNotes returns the user's n most recent notes
func (s *Store) RecentNotes(userID string, n int) ([]domain.Note, error) {
	return s.ListNotes(userID, n, 0)
}

// GetNotesByIDs returns the subset of ids that exist and belong to the
// user. Unknown or foreign ids are silently skipped.
func (s *Store) GetNotesByIDs(userID string, ids []string) ([]domain.Note, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, userID)

	rows, err := s.db.Query(
		"SELECT "+noteColumns+" FROM notes WHERE id IN ("+placeholders+") AND user_id = ? ORDER BY created_at DESC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("get notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// SimilarNote pairs a note with its similarity to a query vector
type SimilarNote struct {
	Note  domain.Note `json:"note"`
	Score float64     `json:"score"`
}

// FindSimilar ranks the user's embedded notes by cosine similarity to
// the given vector and returns the top k, excluding excludeID.
func (s *Store) FindSimilar(userID string, vector []float64, k int, excludeID string) ([]SimilarNote, error) {
	rows, err := s.db.Query(
		"SELECT "+noteColumns+" FROM notes WHERE user_id = ? AND embedding IS NOT NULL AND id != ?",
		userID, excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("find similar: %w", err)
	}
	defer rows.Close()

	notes, err := scanNotes(rows)
	if err != nil {
		return nil, err
	}

	similar := make([]SimilarNote, 0, len(notes))
	for _, n := range notes {
		if len(n.Embedding) == 0 {
			continue
		}
		similar = append(similar, SimilarNote{Note: n, Score: llm.CosineSimilarity(vector, n.Embedding)})
	}

	sort.Slice(similar, func(i, j int) bool { return similar[i].Score > similar[j].Score })
	if len(similar) > k {
		similar = similar[:k]
	}

	return similar, nil
}

// SaveGoalPlan upserts the user's single goal plan. The creation time
// is set on first insert and preserved by later saves; everything else
// is overwritten (last write wins).
func (s *Store) SaveGoalPlan(userID string, main domain.Goal, secondary []domain.Goal) error {
	if secondary == nil {
		secondary = []domain.Goal{}
	}

	mainJSON, err := json.Marshal(main)
	if err != nil {
		return fmt.Errorf("marshal main goal: %w", err)
	}
	secondaryJSON, err := json.Marshal(secondary)
	if err != nil {
		return fmt.Errorf("marshal secondary goals: %w", err)
	}

	now := time.Now()
	_, err = s.db.Exec(
		`INSERT INTO goal_plans (user_id, main_goal, secondary_goals, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   main_goal = excluded.main_goal,
		   secondary_goals = excluded.secondary_goals,
		   updated_at = excluded.updated_at`,
		userID, string(mainJSON), string(secondaryJSON), now, now,
	)
	if err != nil {
		return fmt.Errorf("save goal plan: %w", err)
	}

	return nil
}

// GetGoalPlan returns the user's current goal plan
func (s *Store) GetGoalPlan(userID string) (*domain.GoalPlan, error) {
	var (
		plan          domain.GoalPlan
		mainJSON      string
		secondaryJSON string
	)

	err := s.db.QueryRow(
		"SELECT user_id, main_goal, secondary_goals, created_at, updated_at FROM goal_plans WHERE user_id = ?",
		userID,
	).Scan(&plan.UserID, &mainJSON, &secondaryJSON, &plan.CreatedAt, &plan.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal plan: %w", err)
	}

	if err := json.Unmarshal([]byte(mainJSON), &plan.MainGoal); err != nil {
		return nil, fmt.Errorf("unmarshal main goal: %w", err)
	}
	if err := json.Unmarshal([]byte(secondaryJSON), &plan.SecondaryGoals); err != nil {
		return nil, fmt.Errorf("unmarshal secondary goals: %w", err)
	}

	return &plan, nil
}

func scanNotes(rows *sql.Rows) ([]domain.Note, error) {
	var notes []domain.Note
	for rows.Next() {
		var (
			n          domain.Note
			structured sql.NullString
			draft      sql.NullString
			tags       string
			embedding  sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Text, &structured, &draft, &tags, &embedding, &n.SummonerName, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}

		if structured.Valid {
			n.Structured = &domain.StructuredNote{}
			if err := json.Unmarshal([]byte(structured.String), n.Structured); err != nil {
				return nil, fmt.Errorf("unmarshal structured: %w", err)
			}
		}
		if draft.Valid {
			n.Draft = &domain.Draft{}
			if err := json.Unmarshal([]byte(draft.String), n.Draft); err != nil {
				return nil, fmt.Errorf("unmarshal draft: %w", err)
			}
		}
		if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		if embedding.Valid {
			if err := json.Unmarshal([]byte(embedding.String), &n.Embedding); err != nil {
				return nil, fmt.Errorf("unmarshal embedding: %w", err)
			}
		}

		notes = append(notes, n)
	}

	return notes, rows.Err()
}

func marshalNullable(present bool, v any) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
