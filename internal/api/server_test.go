package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"go.uber.org/goleak"

	"github.com/cloudwalk/assistant/internal/api"
	"github.com/cloudwalk/assistant/internal/chat"
	"github.com/cloudwalk/assistant/internal/config"
	"github.com/cloudwalk/assistant/internal/intent"
	"github.com/cloudwalk/assistant/internal/knowledge"
	"github.com/cloudwalk/assistant/internal/language"
	"github.com/cloudwalk/assistant/internal/log"
	"github.com/cloudwalk/assistant/internal/session"
	"github.com/cloudwalk/assistant/internal/testutil"
)

type serverFixture struct {
	server   *api.Server
	handler  http.Handler
	mock     *testutil.MockLLM
	sessions *session.Manager
	store    *knowledge.Store
}

func newServerFixture(t *testing.T, mutate func(*api.ServerConfig)) *serverFixture {
	t.Helper()

	g := genkit.Init(context.Background())
	mock := testutil.NewMockLLM("mock answer")
	mock.RegisterModel(g)

	store := knowledge.New(testutil.NewMemQuerier(), testutil.NewMockEmbedder(8), log.NewNop())
	sessions := session.NewManager("en", log.NewNop())

	detector := language.NewDetector("en")
	style, _ := config.Style("professional")
	assistant, err := chat.New(chat.Config{
		Genkit:     g,
		Knowledge:  store,
		Detector:   detector,
		Classifier: intent.NewClassifier(),
		Logger:     log.NewNop(),
		ModelName:  "mock/test-model",
		Brand:      config.Brand{Name: "CloudWalk"},
		Style:      style,
	})
	if err != nil {
		t.Fatalf("chat.New() error = %v", err)
	}

	cfg := api.ServerConfig{
		Logger:    log.NewNop(),
		Assistant: assistant,
		Sessions:  sessions,
		Knowledge: store,
		Detector:  detector,
		RateBurst: 100,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	srv, err := api.NewServer(cfg)
	if err != nil {
		t.Fatalf("api.NewServer() error = %v", err)
	}

	return &serverFixture{
		server:   srv,
		handler:  srv.Handler(),
		mock:     mock,
		sessions: sessions,
		store:    store,
	}
}

func (f *serverFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body == "" {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestNewServerValidation(t *testing.T) {
	if _, err := api.NewServer(api.ServerConfig{}); err == nil {
		t.Error("NewServer() with empty config succeeded, want error")
	}
}

func TestHealthEndpoints(t *testing.T) {
	f := newServerFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /ready status = %d, want 200", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["status"] != "ready" {
		t.Errorf("GET /ready body = %v", body)
	}
}

func TestRequestID(t *testing.T) {
	f := newServerFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/sessions/nope", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing generated X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/nope", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want client-supplied id echoed", got)
	}
}

func TestChatEndpoint(t *testing.T) {
	f := newServerFixture(t, nil)
	f.mock.AddResponse("fees", "Fees start at 0.75%.")

	rec := f.do(t, http.MethodPost, "/api/v1/chat", `{"message":"What are your fees?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/v1/chat status = %d, body %s", rec.Code, rec.Body.String())
	}

	type chatResp struct {
		SessionID string   `json:"session_id"`
		Response  string   `json:"response"`
		Language  string   `json:"language"`
		Intents   []string `json:"intents"`
	}
	first := decodeBody[chatResp](t, rec)
	if first.SessionID == "" {
		t.Fatal("chat response missing session_id")
	}
	if first.Response != "Fees start at 0.75%." {
		t.Errorf("chat response text = %q", first.Response)
	}
	if first.Language != "en" {
		t.Errorf("chat response language = %q, want en", first.Language)
	}

	// Second turn on the same session accumulates history.
	rec = f.do(t, http.MethodPost, "/api/v1/chat",
		`{"session_id":"`+first.SessionID+`","message":"thanks!"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("second POST /api/v1/chat status = %d", rec.Code)
	}

	conv, err := f.sessions.Get(first.SessionID)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", first.SessionID, err)
	}
	if got := len(conv.History()); got != 4 {
		t.Errorf("session history has %d messages after two turns, want 4", got)
	}
}

func TestChatEndpointErrors(t *testing.T) {
	f := newServerFixture(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid json",
			body:       `{"message":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "empty message",
			body:       `{"message":"  "}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "empty_message",
		},
		{
			name:       "unknown session",
			body:       `{"session_id":"nope","message":"hello"}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "session_not_found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/chat", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	f := newServerFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/sessions",
		`{"language":"pt-BR","profile":"new_merchant","product":"infinitepay"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/v1/sessions status = %d, body %s", rec.Code, rec.Body.String())
	}
	snap := decodeBody[session.Snapshot](t, rec)
	if snap.ID == "" {
		t.Fatal("created session missing id")
	}
	if snap.Language != "pt-BR" || snap.Profile != session.ProfileNewMerchant || snap.CurrentProduct != "infinitepay" {
		t.Errorf("created session = %+v", snap)
	}
	var greeted struct {
		Greeting string `json:"greeting"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &greeted); err != nil {
		t.Fatalf("decoding greeting: %v", err)
	}
	if greeted.Greeting == "" {
		t.Error("created session missing greeting")
	}

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+snap.ID, "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET session status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/api/v1/sessions/"+snap.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE session status = %d, want 204", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+snap.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted session status = %d, want 404", rec.Code)
	}
	rec = f.do(t, http.MethodDelete, "/api/v1/sessions/"+snap.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("DELETE deleted session status = %d, want 404", rec.Code)
	}
}

func TestSessionCreateInvalidProfile(t *testing.T) {
	f := newServerFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/sessions", `{"profile":"astronaut"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/sessions", `{"language":"fr"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported language status = %d, want 400", rec.Code)
	}
}

func TestKnowledgeEndpoints(t *testing.T) {
	f := newServerFixture(t, nil)

	body := `{"title":"JIM Overview","content":"JIM is an AI device.","category":"products","subcategory":"overview","language":"en","product":"jim"}`
	rec := f.do(t, http.MethodPost, "/api/v1/knowledge", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/v1/knowledge status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[map[string]string](t, rec)
	wantID := knowledge.ContentID("JIM Overview_JIM is an AI device.")
	if created["id"] != wantID {
		t.Errorf("created id = %q, want %q", created["id"], wantID)
	}

	// Same title and content comes back with the same id.
	rec = f.do(t, http.MethodPost, "/api/v1/knowledge", body)
	again := decodeBody[map[string]string](t, rec)
	if again["id"] != wantID {
		t.Errorf("repeated add id = %q, want %q", again["id"], wantID)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/knowledge/categories/products?language=en", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET categories status = %d", rec.Code)
	}
	var listed struct {
		Documents []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(listed.Documents) != 1 || listed.Documents[0].Title != "JIM Overview" {
		t.Errorf("listed documents = %+v", listed.Documents)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/knowledge/products/jim", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET product info status = %d", rec.Code)
	}
	var info struct {
		Product  string `json:"product"`
		Overview string `json:"overview"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decoding product info: %v", err)
	}
	if info.Product != "jim" || !strings.Contains(info.Overview, "JIM is an AI device.") {
		t.Errorf("product info = %+v", info)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/knowledge", `{"title":"","content":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST empty document status = %d, want 400", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	f := newServerFixture(t, func(cfg *api.ServerConfig) {
		cfg.RateRPS = 0.001
		cfg.RateBurst = 2
	})

	var last int
	for range 3 {
		rec := f.do(t, http.MethodGet, "/api/v1/sessions/none", "")
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newServerFixture(t, func(cfg *api.ServerConfig) {
		cfg.CORSOrigins = []string{"https://dashboard.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("Origin", "https://dashboard.example.com")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	// Unlisted origins get no CORS headers.
	req = httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin for unlisted origin = %q", got)
	}
}

func TestServerRunShutdown(t *testing.T) {
	f := newServerFixture(t, nil)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.server.Run(ctx, "127.0.0.1:0")
	}()

	// Give ListenAndServe a moment to bind before asking it to stop.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after context cancellation")
	}
}
