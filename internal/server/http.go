package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"docverify-portal/internal/audit"
	auditrepo "docverify-portal/internal/audit/repository"
	"docverify-portal/internal/policy/engine"
	"docverify-portal/internal/portal"
	"docverify-portal/internal/security"
	"docverify-portal/internal/server/middleware"
	"docverify-portal/internal/telemetry"
)

// HTTPDeps holds the collaborators of the portal HTTP API.
type HTTPDeps struct {
	Portal *portal.Service
	// Tokens validates Bearer session tokens. If nil, every protected route answers 401.
	Tokens *security.TokenProvider
	// Guard authorizes API routes as the pages they serve. If nil, routes are not checked.
	Guard engine.RouteGuard
	// Audit records mutating requests. If nil, requests are not audited.
	Audit audit.AuditLogger
	// AuditRepo backs GET /dev/audit. Only used when DevEndpoints is set.
	AuditRepo auditrepo.Repository
	// Metrics records request counts and latency. May be nil.
	Metrics middleware.RequestRecorder
	// Emitter receives http_request events. May be nil.
	Emitter telemetry.EventEmitter
	// DevEndpoints registers /dev routes (issued codes, reviewer decisions, audit log).
	// Set only outside production.
	DevEndpoints bool
}

// pageRoutes maps API templates to the page they act for; the route guard
// authorizes each request as that page.
var pageRoutes = map[string]string{
	"/api/onboarding":                    engine.RouteOnboarding,
	"/api/aadhaar/format":                engine.RouteOnboarding,
	"/api/verification":                  engine.RouteVerify,
	"/api/verification/{channel}/send":   engine.RouteVerify,
	"/api/verification/{channel}/verify": engine.RouteVerify,
	"/api/verification/complete":         engine.RouteVerify,
	"/api/documents":                     engine.RouteUpload,
	"/api/documents/summary":             engine.RouteVerified,
	"/api/documents/{id}":                engine.RouteUnderReview,
	"/api/documents/{id}/resubmit":       engine.RouteRejected,
	"/api/profile":                       engine.RouteProfile,
	"/api/profile/password":              engine.RouteProfile,
	"/api/profile/password/check":        engine.RouteProfile,
	"/api/profile/notifications":         engine.RouteProfile,
}

// auditSkip lists requests that are not audited by the middleware: logout is
// logged by the portal itself and the password check changes nothing.
var auditSkip = map[string]bool{
	"POST /api/logout":                 true,
	"POST /api/profile/password/check": true,
}

// telemetrySkip lists requests left out of the http_request event stream.
var telemetrySkip = map[string]bool{
	"GET /healthz": true,
}

// NewHTTPHandler returns the portal HTTP API.
func NewHTTPHandler(deps HTTPDeps) http.Handler {
	h := &handlers{portal: deps.Portal, auditRepo: deps.AuditRepo, guard: deps.Guard}

	r := mux.NewRouter()
	r.Use(middleware.ClientIP)
	r.Use(middleware.Session(deps.Tokens, deps.Portal.Store()))
	r.Use(middleware.Telemetry(deps.Emitter, deps.Metrics, telemetrySkip))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found", Category: "not_found"})
	})

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.HandleFunc("/api/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/api/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/api/session", h.session).Methods(http.MethodGet)
	r.HandleFunc("/api/routes/authorize", h.authorizeRoute).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequireSession(writeUnauthenticated))
	api.Use(middleware.RouteGuard(deps.Guard, deps.Portal.SessionInfo, pageRoutes, writeDenied))
	api.Use(middleware.Audit(deps.Audit, auditSkip))

	api.HandleFunc("/logout", h.logout).Methods(http.MethodPost)
	api.HandleFunc("/onboarding", h.onboard).Methods(http.MethodPost)
	api.HandleFunc("/aadhaar/format", h.formatAadhaar).Methods(http.MethodGet)
	api.HandleFunc("/documents", h.listDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents", h.submitDocuments).Methods(http.MethodPost)
	api.HandleFunc("/documents/summary", h.summary).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", h.getDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/resubmit", h.resubmit).Methods(http.MethodPost)
	api.HandleFunc("/verification", h.verificationState).Methods(http.MethodGet)
	api.HandleFunc("/verification/complete", h.completeVerification).Methods(http.MethodPost)
	api.HandleFunc("/verification/{channel}/send", h.sendCode).Methods(http.MethodPost)
	api.HandleFunc("/verification/{channel}/verify", h.verifyCode).Methods(http.MethodPost)
	api.HandleFunc("/profile", h.profile).Methods(http.MethodGet)
	api.HandleFunc("/profile", h.saveProfile).Methods(http.MethodPut)
	api.HandleFunc("/profile/password", h.changePassword).Methods(http.MethodPut)
	api.HandleFunc("/profile/password/check", h.checkPassword).Methods(http.MethodPost)
	api.HandleFunc("/profile/notifications", h.notifications).Methods(http.MethodGet)
	api.HandleFunc("/profile/notifications", h.saveNotifications).Methods(http.MethodPut)

	if deps.DevEndpoints {
		dev := r.PathPrefix("/dev").Subrouter()
		dev.HandleFunc("/verification/{channel}", h.devCode).Methods(http.MethodGet)
		dev.HandleFunc("/documents/{id}/review", h.review).Methods(http.MethodPost)
		dev.HandleFunc("/audit", h.devAudit).Methods(http.MethodGet)
	}
	return r
}
