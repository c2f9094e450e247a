package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riftnotes/riftnotes/internal/domain"
	"github.com/riftnotes/riftnotes/internal/goals"
	"github.com/riftnotes/riftnotes/internal/noteparse"
	"github.com/riftnotes/riftnotes/internal/store"
)

const (
	maxUserIDLength = 100
	recentNoteCount = 20
	similarNoteCap  = 5
	maxImageBytes   = 10 << 20
)

// --- auth ---

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := strings.TrimSpace(req.UserID)
	switch {
	case userID == "":
		writeError(w, http.StatusBadRequest, "UserId is required")
		return
	case len(userID) > maxUserIDLength:
		writeError(w, http.StatusBadRequest, "UserId must be 100 characters or less")
		return
	}

	s.sessions.Set(w, userID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "userId": userID})
}

func (s *Server) checkAuth(w http.ResponseWriter, r *http.Request) {
	var userID any
	if id := s.sessions.Peek(r); id != "" {
		userID = id
	}
	writeJSON(w, http.StatusOK, map[string]any{"userId": userID})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// --- notes ---

// CreateNoteRequest carries either legacy text, structured fields, or
// both. At least one must be present.
type CreateNoteRequest struct {
	Text         string                 `json:"text"`
	Structured   *domain.StructuredNote `json:"structured"`
	Draft        *domain.Draft          `json:"draft"`
	SummonerName string                 `json:"summonerName"`
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.requireCoach(w) {
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	structured, err := noteparse.Normalize(noteparse.Input{Text: req.Text, Structured: req.Structured})
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	// Structured-only notes get a synthesized text body so tagging,
	// embeddings and legacy consumers keep working.
	text := req.Text
	if strings.TrimSpace(text) == "" {
		text = noteparse.Render(structured)
	}

	tagged, err := s.coach.Autotag(r.Context(), text, req.Draft)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	vector, err := s.coach.Embed(r.Context(), text)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	// Ranked against existing notes before this one is saved, so the
	// note never matches itself.
	similar, err := s.store.FindSimilar(userID, vector, similarNoteCap, "")
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	saved, err := s.store.AddNote(&domain.Note{
		UserID:       userID,
		Text:         text,
		Structured:   &structured,
		Draft:        req.Draft,
		Tags:         tagged.Tags,
		Embedding:    vector,
		SummonerName: req.SummonerName,
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok":      true,
		"id":      saved.ID,
		"tags":    saved.Tags,
		"similar": similar,
	})
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	notes, err := s.store.ListNotes(userID, limit, offset)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "notes": notes})
}

func (s *Server) summarizeNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.requireCoach(w) {
		return
	}

	var req struct {
		NoteIDs []string `json:"noteIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NoteIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Note IDs array is required")
		return
	}

	notes, err := s.store.GetNotesByIDs(userID, req.NoteIDs)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if len(notes) == 0 {
		writeError(w, http.StatusNotFound, "No notes found")
		return
	}

	summary, err := s.coach.Summarize(r.Context(), notes)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"summary":       summary,
		"notesAnalyzed": len(notes),
	})
}

// --- AI helpers ---

func (s *Server) autotag(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	if !s.requireCoach(w) {
		return
	}

	var req struct {
		Text  string        `json:"text"`
		Draft *domain.Draft `json:"draft"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	result, err := s.coach.Autotag(r.Context(), req.Text, req.Draft)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) embedding(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	if !s.requireCoach(w) {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	vector, err := s.coach.Embed(r.Context(), req.Text)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"vector": vector})
}

func (s *Server) draftFromImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	if !s.requireCoach(w) {
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	summonerName := r.FormValue("summonerName")
	file, _, err := r.FormFile("image")
	if err != nil || summonerName == "" {
		writeError(w, http.StatusBadRequest, "Image and summonerName are required")
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	draft, err := s.coach.DraftFromScreenshot(r.Context(), base64.StdEncoding.EncodeToString(imageBytes), summonerName)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

// --- goals ---

func (s *Server) generateGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.requireCoach(w) {
		return
	}

	notes, err := s.store.RecentNotes(userID, recentNoteCount)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if len(notes) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"goals":   []any{},
			"message": "No notes found for this user",
		})
		return
	}

	plan, err := s.coach.GenerateGoals(r.Context(), notes)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) saveGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var sel goals.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := goals.ValidateSelection(&sel); err != nil {
		s.writeFailure(w, err)
		return
	}

	now := time.Now()
	main := domain.Goal{
		Title:       sel.MainGoal.Title,
		Description: sel.MainGoal.Description,
		Source:      sel.MainGoal.Source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	secondary := make([]domain.Goal, len(sel.SecondaryGoals))
	for i, g := range sel.SecondaryGoals {
		secondary[i] = domain.Goal{
			Title:       g.Title,
			Description: g.Description,
			Source:      goals.SourceRecommended,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	if err := s.store.SaveGoalPlan(userID, main, secondary); err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) getGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	plan, err := s.store.GetGoalPlan(userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no goals saved yet")
		return
	}
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}
