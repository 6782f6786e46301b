package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"docverify-portal/internal/policy/engine"
	"docverify-portal/internal/security"
	"docverify-portal/internal/telemetry"
)

type fixedSession string

func (s fixedSession) SessionID() string { return string(s) }

type logged struct {
	userID, action, resource, metadata string
}

type mockAuditLogger struct {
	mu      sync.Mutex
	entries []logged
}

func (m *mockAuditLogger) LogEvent(_ context.Context, userID, action, resource, metadata string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, logged{userID, action, resource, metadata})
}

type mockRecorder struct {
	mu     sync.Mutex
	routes []string
	status []int
}

func (m *mockRecorder) Record(_ context.Context, method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, method+" "+route)
	m.status = append(m.status, status)
}

type mockEmitter struct {
	events chan *telemetry.Event
}

func (m *mockEmitter) Emit(_ context.Context, e *telemetry.Event) error {
	m.events <- e
	return nil
}

type mockGuard struct {
	allow bool
	err   error
	got   engine.SessionInfo
	route string
}

func (g *mockGuard) Authorize(_ context.Context, route string, s engine.SessionInfo) (engine.Decision, error) {
	g.route, g.got = route, s
	if g.err != nil {
		return engine.Decision{}, g.err
	}
	return engine.Decision{Route: route, Allow: g.allow, Redirect: "/login", Known: true}, nil
}

func noContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusUnauthorized)
}

func newTokens(t *testing.T) *security.TokenProvider {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	return tokens
}

func TestSession_LiveToken(t *testing.T) {
	tokens := newTokens(t)
	token, _, err := tokens.Issue("sess-1", "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	var gotUser, gotSession string
	h := Session(tokens, fixedSession("sess-1"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = GetUserID(r.Context())
		gotSession, _ = GetSessionID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotUser != "a@x.com" || gotSession != "sess-1" {
		t.Errorf("identity = %q/%q", gotUser, gotSession)
	}
}

func TestSession_RejectsStaleOrBadTokens(t *testing.T) {
	tokens := newTokens(t)
	stale, _, _ := tokens.Issue("old-session", "a@x.com")
	tests := []struct {
		name, header string
		live         string
	}{
		{"no header", "", "sess-1"},
		{"not bearer", "Basic abc", "sess-1"},
		{"garbage", "Bearer nope", "sess-1"},
		{"stale session", "Bearer " + stale, "sess-1"},
		{"logged out", "Bearer " + stale, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Session(tokens, fixedSession(tt.live))(RequireSession(unauthorized)(http.HandlerFunc(noContent)))
			req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestExtractBearer_CaseInsensitive(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bEaReR  tok ")
	if got := extractBearer(req); got != "tok" {
		t.Errorf("extractBearer = %q, want %q", got, "tok")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:5", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "1.1.1.1:5", "10.0.0.3"},
		{"remote addr", nil, "192.168.1.9:4000", "192.168.1.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := ClientIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIPFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
	if got := ClientIPFromContext(context.Background()); got != "unknown" {
		t.Errorf("empty context = %q", got)
	}
}

func newAuditRouter(logger *mockAuditLogger, skip map[string]bool) *mux.Router {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-Test-User") != "" {
				req = req.WithContext(WithIdentity(req.Context(), req.Header.Get("X-Test-User"), "sess-1"))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Use(Audit(logger, skip))
	r.HandleFunc("/api/documents/{id}/resubmit", noContent).Methods(http.MethodPost)
	r.HandleFunc("/api/documents", noContent).Methods(http.MethodGet)
	r.HandleFunc("/api/logout", noContent).Methods(http.MethodPost)
	return r
}

func TestAudit(t *testing.T) {
	logger := &mockAuditLogger{}
	r := newAuditRouter(logger, map[string]bool{"POST /api/logout": true})

	send := func(method, path, user string) {
		req := httptest.NewRequest(method, path, nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	send(http.MethodPost, "/api/documents/3/resubmit", "a@x.com")
	send(http.MethodGet, "/api/documents", "a@x.com")
	send(http.MethodPost, "/api/logout", "a@x.com")
	send(http.MethodPost, "/api/documents/3/resubmit", "")

	if len(logger.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1: %+v", len(logger.entries), logger.entries)
	}
	e := logger.entries[0]
	if e.userID != "a@x.com" || e.action != "resubmitted" || e.resource != "document" {
		t.Errorf("entry = %+v", e)
	}
	if e.metadata != `{"status":204}` {
		t.Errorf("metadata = %q", e.metadata)
	}
}

func TestTelemetry(t *testing.T) {
	metrics := &mockRecorder{}
	em := &mockEmitter{events: make(chan *telemetry.Event, 4)}
	r := mux.NewRouter()
	r.Use(Telemetry(em, metrics, map[string]bool{"GET /api/skip": true}))
	r.HandleFunc("/api/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/skip", noContent).Methods(http.MethodGet)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/documents/9", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/skip", nil))

	if len(metrics.routes) != 2 || metrics.routes[0] != "GET /api/documents/{id}" || metrics.status[0] != http.StatusNotFound {
		t.Errorf("metrics = %v %v", metrics.routes, metrics.status)
	}
	select {
	case e := <-em.events:
		if e.Type != telemetry.EventHTTPRequest || e.Source != telemetry.SourceMiddleware {
			t.Errorf("event = %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event emitted")
	}
	select {
	case e := <-em.events:
		t.Errorf("skipped route emitted %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRouteGuard(t *testing.T) {
	pages := map[string]string{"/api/profile": engine.RouteProfile}
	info := func() engine.SessionInfo { return engine.SessionInfo{Authenticated: true, EmailVerified: true} }
	var denied bool
	var denyErr error
	deny := func(w http.ResponseWriter, r *http.Request, d engine.Decision, err error) {
		denied, denyErr = true, err
		w.WriteHeader(http.StatusForbidden)
	}

	build := func(g *mockGuard) *mux.Router {
		r := mux.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(WithIdentity(req.Context(), "a@x.com", "s")))
			})
		})
		r.Use(RouteGuard(g, info, pages, deny))
		r.HandleFunc("/api/profile", noContent).Methods(http.MethodPut)
		r.HandleFunc("/api/logout", noContent).Methods(http.MethodPost)
		return r
	}

	g := &mockGuard{allow: true}
	rec := httptest.NewRecorder()
	build(g).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/profile", nil))
	if rec.Code != http.StatusNoContent || g.route != engine.RouteProfile || !g.got.EmailVerified {
		t.Errorf("allowed: code=%d route=%q session=%+v", rec.Code, g.route, g.got)
	}

	g = &mockGuard{allow: false}
	rec = httptest.NewRecorder()
	build(g).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/profile", nil))
	if rec.Code != http.StatusForbidden || !denied {
		t.Errorf("denied: code=%d", rec.Code)
	}

	g = &mockGuard{err: errors.New("eval failed")}
	build(g).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/profile", nil))
	if denyErr == nil {
		t.Error("policy error not passed to deny")
	}

	g = &mockGuard{allow: false}
	rec = httptest.NewRecorder()
	build(g).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/logout", nil))
	if rec.Code != http.StatusNoContent || g.route != "" {
		t.Errorf("unmapped route checked: code=%d route=%q", rec.Code, g.route)
	}
}
