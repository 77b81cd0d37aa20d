// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/transformer-toolbox/internal/catalog"
	"github.com/pdiddy/transformer-toolbox/internal/ollama"
	"github.com/pdiddy/transformer-toolbox/internal/session"
	"github.com/pdiddy/transformer-toolbox/pkg/types"
)

// --- stubs ---

type stubGenerator struct {
	mu         sync.Mutex
	generateFn func(model, systemPrompt, text string) (string, error)
	models     []string
	modelsErr  error
	connected  bool
	calls      int
	lastModel  string
	lastSystem string
	lastText   string
}

func (g *stubGenerator) Generate(_ context.Context, model, systemPrompt, text string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.lastModel, g.lastSystem, g.lastText = model, systemPrompt, text
	fn := g.generateFn
	g.mu.Unlock()
	if fn == nil {
		return text, nil // echo
	}
	return fn(model, systemPrompt, text)
}

func (g *stubGenerator) ListModels(context.Context) ([]string, error) {
	return g.models, g.modelsErr
}

func (g *stubGenerator) Ping(context.Context) bool { return g.connected }

func (g *stubGenerator) setGenerateFn(fn func(model, systemPrompt, text string) (string, error)) {
	g.mu.Lock()
	g.generateFn = fn
	g.mu.Unlock()
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type memPrefs struct {
	mu      sync.Mutex
	p       types.Preference
	saveErr error
	saves   int
}

func (m *memPrefs) Load() types.Preference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p
}

func (m *memPrefs) Save(p types.Preference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.p = p
	m.saves++
	return nil
}

type memHistory struct {
	mu        sync.Mutex
	recs      []types.TransformationRecord
	recordErr error
}

func (h *memHistory) Record(rec types.TransformationRecord) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.recordErr != nil {
		return 0, h.recordErr
	}
	rec.ID = int64(len(h.recs) + 1)
	h.recs = append(h.recs, rec)
	return rec.ID, nil
}

func (h *memHistory) Recent(limit int) ([]types.TransformationRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := append([]types.TransformationRecord(nil), h.recs...)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- harness ---

type testEnv struct {
	srv     *Server
	router  *gin.Engine
	gen     *stubGenerator
	prefs   *memPrefs
	history *memHistory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Load()
	require.NoError(t, err)

	env := &testEnv{
		gen:     &stubGenerator{connected: true},
		prefs:   &memPrefs{p: types.DefaultPreference("")},
		history: &memHistory{},
	}
	env.srv, env.router = New(Options{
		Config:    types.ServerConfig{Port: 8741},
		ModelCfg:  types.ModelConfig{DefaultModel: "llama3"},
		Catalog:   cat,
		Generator: env.gen,
		Prefs:     env.prefs,
		History:   env.history,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// --- transform ---

func TestTransformScenario(t *testing.T) {
	// User selects "Summarize", pastes text, triggers transform; the stub
	// answers "A fox runs." and the session returns to Idle.
	env := newTestEnv(t)
	env.gen.generateFn = func(model, systemPrompt, text string) (string, error) {
		return "A fox runs.", nil
	}

	w := env.do(t, http.MethodPost, "/api/transform", TransformRequest{
		Text:      "The quick brown fox...",
		PromptIDs: []string{"summarize"},
		Model:     "llama3",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[TransformResponse](t, w)
	assert.Equal(t, "A fox runs.", resp.OutputText)
	assert.Equal(t, "llama3", resp.Model)
	assert.Empty(t, resp.Warning)
	assert.Contains(t, resp.SuggestedFilename, "A_fox_runs_")

	assert.Equal(t, session.StateIdle, env.srv.session.State())
}

func TestTransformEchoRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/transform", TransformRequest{
		Text:      "hello",
		PromptIDs: []string{"basic_cleanup"},
		Model:     "llama3",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[TransformResponse](t, w)
	assert.Equal(t, "hello", resp.OutputText)

	// The orchestration passed the catalog prompt as the system prompt and
	// the raw input as the user text.
	cleanup, err := catalog.Load()
	require.NoError(t, err)
	p, err := cleanup.Get("basic_cleanup")
	require.NoError(t, err)
	assert.Contains(t, env.gen.lastSystem, p.Prompt)
	assert.Equal(t, "hello", env.gen.lastText)
}

func TestTransformUpdatesPreferencesAndHistory(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/transform", TransformRequest{
		Text:      "some text",
		PromptIDs: []string{"summarize", "formal_tone"},
		Model:     "mistral:7b",
	})
	require.Equal(t, http.StatusOK, w.Code)

	p := env.prefs.Load()
	assert.Equal(t, "mistral:7b", p.Model)
	assert.Equal(t, []string{"summarize", "formal_tone"}, p.LastTransformations)

	recs, err := env.history.Recent(10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "some text", recs[0].InputText)
	assert.Equal(t, "mistral:7b", recs[0].Model)
}

func TestTransformEmptyInput(t *testing.T) {
	env := newTestEnv(t)

	for _, text := range []string{"", "   \n\t"} {
		w := env.do(t, http.MethodPost, "/api/transform", TransformRequest{Text: text})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, KindEmptyInput, decode[ErrorResponse](t, w).Error.Kind)
	}
	assert.Zero(t, env.gen.callCount())
}

func TestTransformUnknownPrompt(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/transform", TransformRequest{
		Text:      "hello",
		PromptIDs: []string{"no_such_prompt"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, KindUnknownTransformation, decode[ErrorResponse](t, w).Error.Kind)

	// The model was never contacted and the session is free.
	assert.Zero(t, env.gen.callCount())
	assert.Equal(t, session.StateIdle, env.srv.session.State())
}

func TestTransformServiceUnreachable(t *testing.T) {
	env := newTestEnv(t)
	env.gen.generateFn = func(model, systemPrompt, text string) (string, error) {
		return "", fmt.Errorf("%w: connection refused", ollama.ErrServiceUnreachable)
	}

	w := env.do(t, http.MethodPost, "/api/transform", TransformRequest{Text: "hello"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, KindServiceUnreachable, decode[ErrorResponse](t, w).Error.Kind)
	assert.Equal(t, session.StateIdle, env.srv.session.State())

	// The session stays usable: a later attempt succeeds.
	env.gen.generateFn = nil
	w = env.do(t, http.MethodPost, "/api/transform", TransformRequest{Text: "hello"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTransformModelNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.gen.generateFn = func(model, systemPrompt, text string) (string, error) {
		return "", fmt.Errorf("%w: %q", ollama.ErrModelNotFound, model)
	}

	w := env.do(t, http.MethodPost, "/api/transform", TransformRequest{Text: "hello", Model: "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, KindModelNotFound, decode[ErrorResponse](t, w).Error.Kind)
}

func TestTransformSingleFlight(t *testing.T) {
	env := newTestEnv(t)

	release := make(chan struct{})
	started := make(chan struct{})
	env.gen.setGenerateFn(func(model, systemPrompt, text string) (string, error) {
		close(started)
		<-release
		return "done", nil
	})

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		firstDone <- env.do(t, http.MethodPost, "/api/transform", TransformRequest{Text: "first"})
	}()

	<-started

	// Second submission while the first awaits the model: rejected, and the
	// model is not called again.
	env.gen.setGenerateFn(nil)
	w := env.do(t, http.MethodPost, "/api/transform", TransformRequest{Text: "second"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, KindRequestInFlight, decode[ErrorResponse](t, w).Error.Kind)
	assert.Equal(t, 1, env.gen.callCount())

	close(release)
	first := <-firstDone
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, session.StateIdle, env.srv.session.State())
}

func TestTransformPreferenceSaveFailureIsWarning(t *testing.T) {
	env := newTestEnv(t)
	env.prefs.saveErr = fmt.Errorf("disk full")

	w := env.do(t, http.MethodPost, "/api/transform", TransformRequest{Text: "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[TransformResponse](t, w)
	assert.Equal(t, "hello", resp.OutputText)
	assert.Contains(t, resp.Warning, "preferences")
}

func TestTransformHistoryFailureIsWarning(t *testing.T) {
	env := newTestEnv(t)
	env.history.recordErr = fmt.Errorf("database locked")

	w := env.do(t, http.MethodPost, "/api/transform", TransformRequest{Text: "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[TransformResponse](t, w).Warning, "history")
}

func TestTransformDefaultsModelFromPreferences(t *testing.T) {
	env := newTestEnv(t)
	env.prefs.p.Model = "phi3"

	w := env.do(t, http.MethodPost, "/api/transform", TransformRequest{Text: "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "phi3", env.gen.lastModel)
}
