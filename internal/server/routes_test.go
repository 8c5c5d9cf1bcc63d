package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"SymptomCheck_V0.1/internal/config"
	"SymptomCheck_V0.1/internal/llm"
	"SymptomCheck_V0.1/internal/symptom"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply string
	err   error
	calls atomic.Int32
	last  atomic.Value
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Generate(_ context.Context, req llm.Request) (string, error) {
	p.calls.Add(1)
	p.last.Store(req)
	return p.reply, p.err
}

const fluReply = `{"probable_conditions":["Flu","Common cold"],"recommended_next_steps":["Rest","Hydrate"],"safety_disclaimer":"Consult a doctor.","llm_reasoning_quality":"moderate"}`

func newTestServer(provider llm.Provider) *Server {
	cfg := config.Config{Port: 8080, AllowOrigins: []string{"*"}}
	if provider == nil {
		return New(cfg, symptom.NewAdapter(nil, "test-model"))
	}
	return New(cfg, symptom.NewAdapter(provider, "test-model"))
}

func postSymptoms(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/check_symptoms", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(rec, req)
	return rec
}

func TestCheckSymptomsRejectsEmptyInput(t *testing.T) {
	provider := &stubProvider{reply: fluReply}
	s := newTestServer(provider)

	for _, body := range []string{`{"symptoms": ""}`, `{}`, `{"symptoms": "   "}`} {
		rec := postSymptoms(t, s, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error": "Symptom text is required."}`, rec.Body.String())
	}
	assert.Zero(t, provider.calls.Load())
}

func TestCheckSymptomsRejectsMalformedBody(t *testing.T) {
	provider := &stubProvider{reply: fluReply}
	s := newTestServer(provider)

	rec := postSymptoms(t, s, `{"symptoms": 42}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Invalid request format"}`, rec.Body.String())
	assert.Zero(t, provider.calls.Load())
}

func TestCheckSymptomsRenamesReasoning(t *testing.T) {
	provider := &stubProvider{reply: fluReply}
	s := newTestServer(provider)

	rec := postSymptoms(t, s, `{"symptoms": "fever and cough"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"probable_conditions": ["Flu", "Common cold"],
		"recommended_next_steps": ["Rest", "Hydrate"],
		"safety_disclaimer": "Consult a doctor.",
		"reasoning": "moderate"
	}`, rec.Body.String())

	require.EqualValues(t, 1, provider.calls.Load())
	sent := provider.last.Load().(llm.Request)
	assert.Contains(t, sent.Prompt, "fever and cough")
	assert.Equal(t, "test-model", sent.Model)
}

func TestCheckSymptomsFallbackKeepsShape(t *testing.T) {
	cases := map[string]*Server{
		"unavailable": newTestServer(nil),
		"call failed": newTestServer(&stubProvider{err: errors.New("timeout")}),
		"bad reply":   newTestServer(&stubProvider{reply: "I think it's the flu"}),
		"empty reply": newTestServer(&stubProvider{reply: `{}`}),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			rec := postSymptoms(t, s, `{"symptoms": "dizzy"}`)
			require.Equal(t, http.StatusOK, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body, 4)
			assert.IsType(t, []any{}, body["probable_conditions"])
			assert.IsType(t, []any{}, body["recommended_next_steps"])
			assert.IsType(t, "", body["reasoning"])
			assert.NotEmpty(t, body["safety_disclaimer"])
		})
	}
}

func TestCheckSymptomsSetupErrorPayload(t *testing.T) {
	rec := postSymptoms(t, newTestServer(nil), `{"symptoms": "fever"}`)

	var body SymptomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Setup Error: LLM Client Not Available"}, body.ProbableConditions)
	assert.Equal(t, "Failed to connect to LLM.", body.Reasoning)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(&stubProvider{reply: fluReply})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestHealthReportsProvider(t *testing.T) {
	for _, tc := range []struct {
		provider llm.Provider
		name     string
		status   string
	}{
		{&stubProvider{}, "stub", "available"},
		{nil, "none", "unavailable"},
	} {
		rec := httptest.NewRecorder()
		newTestServer(tc.provider).RegisterRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Status   string `json:"status"`
			Provider struct {
				Name          string `json:"name"`
				Status        string `json:"status"`
				Model         string `json:"model"`
				SchemaVersion string `json:"schema_version"`
			} `json:"provider"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "online", body.Status)
		assert.Equal(t, tc.name, body.Provider.Name)
		assert.Equal(t, tc.status, body.Provider.Status)
		assert.Equal(t, "test-model", body.Provider.Model)
		assert.Equal(t, symptom.SchemaVersion, body.Provider.SchemaVersion)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/check_symptoms", nil)
	req.Header.Set(echo.HeaderOrigin, "http://127.0.0.1:5500")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()

	newTestServer(nil).RegisterRoutes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestSymptomSocketRoundTrip(t *testing.T) {
	provider := &stubProvider{reply: fluReply}
	s := newTestServer(provider)
	srv := httptest.NewServer(s.RegisterRoutes())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/check_symptoms"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(SymptomRequest{Symptoms: "fever and cough"}))
	var got SymptomResponse
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, []string{"Flu", "Common cold"}, got.ProbableConditions)
	assert.Equal(t, "moderate", got.Reasoning)

	require.NoError(t, conn.WriteJSON(SymptomRequest{Symptoms: ""}))
	var errBody map[string]string
	require.NoError(t, conn.ReadJSON(&errBody))
	assert.Equal(t, "Symptom text is required.", errBody["error"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	errBody = nil
	require.NoError(t, conn.ReadJSON(&errBody))
	assert.Equal(t, "Invalid request format", errBody["error"])

	assert.EqualValues(t, 1, provider.calls.Load())
	assert.Equal(t, 1, s.hub.Count())
}

func TestSymptomSocketChecksOrigin(t *testing.T) {
	cfg := config.Config{Port: 8080, AllowOrigins: []string{"https://app.example.com"}}
	s := New(cfg, symptom.NewAdapter(&stubProvider{reply: fluReply}, "test-model"))
	srv := httptest.NewServer(s.RegisterRoutes())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/check_symptoms"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"https://evil.example.com"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"https://app.example.com"}})
	require.NoError(t, err)
	conn.Close()
}

func TestHubCloseAllDisconnectsClients(t *testing.T) {
	s := newTestServer(&stubProvider{reply: fluReply})
	srv := httptest.NewServer(s.RegisterRoutes())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/check_symptoms", nil)
	require.NoError(t, err)
	defer conn.Close()

	// A round trip guarantees the server side has registered the connection.
	require.NoError(t, conn.WriteJSON(SymptomRequest{Symptoms: "cough"}))
	var got SymptomResponse
	require.NoError(t, conn.ReadJSON(&got))

	s.hub.CloseAll()

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Zero(t, s.hub.Count())
}
