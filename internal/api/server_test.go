package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftnotes/riftnotes/internal/coach"
	"github.com/riftnotes/riftnotes/internal/llm"
	"github.com/riftnotes/riftnotes/internal/session"
	"github.com/riftnotes/riftnotes/internal/store"
)

const fakePlan = `{
	"improvementAreas": ["laning"],
	"recommendedGoals": [{"goal": "freeze", "reasoning": "dies pushed up"}],
	"suggestions": [{"goal": "trade", "suggestion": "on cooldowns"}],
	"longTermGoals": ["climb"],
	"skillPlan": {"laning": [], "midgame": [], "macro": [], "mechanics": []}
}`

// fakeModel answers each route by recognizing the prompt it carries.
func fakeModel(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		if strings.HasSuffix(r.URL.Path, "/embeddings") {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"embedding": []float64{0.5, 0.5}}},
			})
			return
		}

		var content string
		switch {
		case strings.Contains(r.URL.Path, "/vision/"):
			content = `{"me":{"champion":"Ahri","role":"mid"},"teams":{"allies":[],"enemies":[]},"gameOutcome":"defeat"}`
		case strings.Contains(string(body), "CHALLENGER-LEVEL"):
			content = fakePlan
		case strings.Contains(string(body), "analyzing multiple League"):
			content = `{"positivePatterns":"p","improvementAreas":"i","keyThemes":"k"}`
		default:
			content = `{"tags":["laning","ahri-mid"],"explanations":{"laning":"lane talk"}}`
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	model := fakeModel(t)
	t.Cleanup(model.Close)

	mc, err := llm.New(llm.Config{
		Endpoint:         model.URL,
		APIKey:           "test-key",
		APIVersion:       "2024-02-15-preview",
		ChatDeployment:   "chat",
		EmbedDeployment:  "embed",
		VisionDeployment: "vision",
	})
	require.NoError(t, err)

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	server := New(st, coach.New(mc), session.New("rift_user", false), zerolog.Nop(), "")
	api := httptest.NewServer(server.Handler())
	t.Cleanup(api.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{srv: api, client: &http.Client{Jar: jar}}
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := e.client.Post(e.srv.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func (e *testEnv) login(t *testing.T, userID string) {
	t.Helper()
	resp, _ := e.postJSON(t, "/api/auth/login", map[string]string{"userId": userID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginValidation(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.postJSON(t, "/api/auth/login", map[string]string{"userId": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.postJSON(t, "/api/auth/login", map[string]string{"userId": strings.Repeat("x", 101)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.postJSON(t, "/api/auth/login", map[string]string{"userId": "  summoner1  "})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "summoner1", body["userId"])
}

func TestAuthCheckAndLogout(t *testing.T) {
	env := newEnv(t)

	_, body := env.get(t, "/api/auth/check")
	assert.Nil(t, body["userId"])

	env.login(t, "summoner1")
	_, body = env.get(t, "/api/auth/check")
	assert.Equal(t, "summoner1", body["userId"])

	resp, _ := env.postJSON(t, "/api/auth/logout", map[string]string{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = env.get(t, "/api/auth/check")
	assert.Nil(t, body["userId"])
}

func TestRoutesRequireSession(t *testing.T) {
	env := newEnv(t)

	for _, probe := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/notes"},
		{http.MethodPost, "/api/notes"},
		{http.MethodPost, "/api/goals"},
		{http.MethodPost, "/api/goals/save"},
		{http.MethodGet, "/api/goals/save"},
		{http.MethodPost, "/api/autotag"},
	} {
		req, err := http.NewRequest(probe.method, env.srv.URL+probe.path, strings.NewReader("{}"))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := env.client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", probe.method, probe.path)
	}
}

func TestCreateAndListNotes(t *testing.T) {
	env := newEnv(t)
	env.login(t, "summoner1")

	resp, body := env.postJSON(t, "/api/notes", map[string]any{
		"text": "Ahri vs Zed\nWhat went well: good cs\nWhat went poorly: died early",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, []any{"laning", "ahri-mid"}, body["tags"])

	_, body = env.get(t, "/api/notes")
	notes := body["notes"].([]any)
	require.Len(t, notes, 1)

	note := notes[0].(map[string]any)
	structured := note["structured"].(map[string]any)
	assert.Equal(t, "Ahri vs Zed", structured["matchup"])
	assert.Equal(t, "good cs", structured["positive"])
	assert.Equal(t, "died early", structured["improvements"])
}

func TestCreateNoteStructuredOnly(t *testing.T) {
	env := newEnv(t)
	env.login(t, "summoner1")

	resp, _ := env.postJSON(t, "/api/notes", map[string]any{
		"structured": map[string]any{
			"matchup":     "Lux vs Orianna",
			"positive":    "good poke",
			"gameOutcome": "victory",
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body := env.get(t, "/api/notes")
	notes := body["notes"].([]any)
	require.Len(t, notes, 1)

	// Text body was synthesized from the structured fields.
	note := notes[0].(map[string]any)
	assert.Contains(t, note["text"], "Lux vs Orianna")
	assert.Contains(t, note["text"], "What went well: good poke")
}

func TestCreateNoteRequiresContent(t *testing.T) {
	env := newEnv(t)
	env.login(t, "summoner1")

	resp, body := env.postJSON(t, "/api/notes", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request", body["error"])
	assert.NotEmpty(t, body["issues"])
}

func TestAutotagEndpoint(t *testing.T) {
	env := newEnv(t)
	env.login(t, "summoner1")

	resp, _ := env.postJSON(t, "/api/autotag", map[string]any{"text": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.postJSON(t, "/api/autotag", map[string]any{"text": "lost lane to zed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"laning", "ahri-mid"}, body["tags"])
}

func TestEmbeddingEndpoint(t *testing.T) {
	env := newEnv(t)
	env.login(t, "summoner1")

	resp, body := env.postJSON(t, "/api/embedding", map[string]any{"text": "some note"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{0.5, 0.5}, body["vector"])
}

func TestDraftEndpoint(t *testing.T) {
	env := newEnv(t)
	env.login(t, "summoner1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "endgame.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("summonerName", "summoner1"))
	require.NoError(t, mw.Close())

	resp, err := env.client.Post(env.srv.URL+"/api/draft", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	body := decodeBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := body["me"].(map[string]any)
	assert.Equal(t, "Ahri", me["champion"])
	assert.Equal(t, "defeat", body["gameOutcome"])
}

func TestGenerateGoals(t *testing.T) {
	env := newEnv(t)
	env.login(t, "summoner1")

	// No notes yet: a friendly message, not an error.
	resp, body := env.postJSON(t, "/api/goals", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "No notes found for this user", body["message"])

	_, _ = env.postJSON(t, "/api/notes", map[string]any{"text": "Ahri vs Zed\nWhat went poorly: died early"})

	resp, body = env.postJSON(t, "/api/goals", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"laning"}, body["improvementAreas"])
	assert.Contains(t, body, "skillPlan")
}

func TestSaveAndReadGoals(t *testing.T) {
	env := newEnv(t)
	env.login(t, "summoner1")

	resp, _ := env.get(t, "/api/goals/save")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := env.postJSON(t, "/api/goals/save", map[string]any{
		"mainGoal": map[string]any{"title": "", "source": "recommended"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["issues"])

	resp, body = env.postJSON(t, "/api/goals/save", map[string]any{
		"mainGoal": map[string]any{"title": "Freeze waves", "source": "custom"},
		"secondaryGoals": []map[string]any{
			{"title": "Roam after shove"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, body = env.get(t, "/api/goals/save")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	main := body["mainGoal"].(map[string]any)
	assert.Equal(t, "Freeze waves", main["title"])
	secondary := body["secondaryGoals"].([]any)
	require.Len(t, secondary, 1)
	assert.Equal(t, "recommended", secondary[0].(map[string]any)["source"])
}

func TestSummarizeNotes(t *testing.T) {
	env := newEnv(t)
	env.login(t, "summoner1")

	resp, _ := env.postJSON(t, "/api/notes/summarize", map[string]any{"noteIds": []string{"missing"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, created := env.postJSON(t, "/api/notes", map[string]any{"text": "Ahri vs Zed\nWhat went well: cs"})
	noteID := created["id"].(string)

	resp, body := env.postJSON(t, "/api/notes/summarize", map[string]any{"noteIds": []string{noteID}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["notesAnalyzed"])

	summary := body["summary"].(map[string]any)
	assert.Equal(t, "p", summary["positivePatterns"])
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	resp, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
