package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	auditdomain "docverify-portal/internal/audit/domain"
	auditrepo "docverify-portal/internal/audit/repository"
	"docverify-portal/internal/devotp"
	docdomain "docverify-portal/internal/document/domain"
	"docverify-portal/internal/policy/engine"
	"docverify-portal/internal/portal"
	"docverify-portal/internal/server/middleware"
	"docverify-portal/internal/session"
	userdomain "docverify-portal/internal/user/domain"
	"docverify-portal/internal/validation"
	"docverify-portal/internal/verification"
)

const defaultAuditLimit = 100

type handlers struct {
	portal    *portal.Service
	auditRepo auditrepo.Repository
	guard     engine.RouteGuard
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var form validation.LoginForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.portal.Login(r.Context(), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var form validation.RegistrationForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.portal.Register(r.Context(), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	out, err := h.portal.Logout(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// session answers for the caller's token: the full snapshot with a live
// session, otherwise only the unauthenticated flag.
func (h *handlers) session(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionID(r.Context()); !ok {
		writeJSON(w, http.StatusOK, session.Snapshot{Documents: []docdomain.Document{}})
		return
	}
	writeJSON(w, http.StatusOK, h.portal.Session())
}

func (h *handlers) authorizeRoute(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Query().Get("path")
	if h.guard == nil {
		writeJSON(w, http.StatusOK, engine.Decision{Route: engine.NormalizeRoute(route), Allow: true, Known: true})
		return
	}
	var info engine.SessionInfo
	if _, ok := middleware.GetSessionID(r.Context()); ok {
		info = h.portal.SessionInfo()
	}
	d, err := h.guard.Authorize(r.Context(), route, info)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type onboardingRequest struct {
	AadhaarNumber string              `json:"aadhaarNumber"`
	File          validation.FileInfo `json:"file"`
}

func (h *handlers) onboard(w http.ResponseWriter, r *http.Request) {
	var req onboardingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.portal.Onboard(r.Context(), req.AadhaarNumber, req.File)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type aadhaarResponse struct {
	Formatted string `json:"formatted"`
	Valid     bool   `json:"valid"`
}

// formatAadhaar applies one keystroke to the Aadhaar field: ?current= is the
// field before the edit, ?input= the edited text.
func (h *handlers) formatAadhaar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	formatted := validation.AcceptAadhaarInput(q.Get("current"), q.Get("input"))
	writeJSON(w, http.StatusOK, aadhaarResponse{
		Formatted: formatted,
		Valid:     validation.ValidateAadhaar(formatted) == nil,
	})
}

type documentsResponse struct {
	Documents []docdomain.Document `json:"documents"`
}

func (h *handlers) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.portal.Documents(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentsResponse{Documents: docs})
}

func (h *handlers) submitDocuments(w http.ResponseWriter, r *http.Request) {
	var sub portal.Submission
	if err := decode(r, &sub); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.portal.SubmitDocuments(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.portal.Summary())
}

func (h *handlers) getDocument(w http.ResponseWriter, r *http.Request) {
	d, ok := h.portal.Store().Document(mux.Vars(r)["id"])
	if !ok {
		writeError(w, r, session.ErrDocumentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type resubmitRequest struct {
	File validation.FileInfo `json:"file"`
}

func (h *handlers) resubmit(w http.ResponseWriter, r *http.Request) {
	var req resubmitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.portal.Resubmit(r.Context(), mux.Vars(r)["id"], req.File)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handlers) verificationState(w http.ResponseWriter, r *http.Request) {
	st, err := h.portal.Verification()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func channelOf(r *http.Request) (verification.Channel, error) {
	return verification.ParseChannel(mux.Vars(r)["channel"])
}

func (h *handlers) sendCode(w http.ResponseWriter, r *http.Request) {
	ch, err := channelOf(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.portal.SendCode(r.Context(), ch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type verifyRequest struct {
	Code string `json:"code"`
}

func (h *handlers) verifyCode(w http.ResponseWriter, r *http.Request) {
	ch, err := channelOf(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req verifyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.portal.VerifyCode(r.Context(), ch, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) completeVerification(w http.ResponseWriter, r *http.Request) {
	out, err := h.portal.CompleteVerification(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type profileResponse struct {
	User          *userdomain.User               `json:"user"`
	Notifications portal.NotificationPreferences `json:"notifications"`
}

func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	u := h.portal.Store().User()
	if u == nil {
		writeError(w, r, portal.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{User: u, Notifications: h.portal.Notifications()})
}

func (h *handlers) saveProfile(w http.ResponseWriter, r *http.Request) {
	var form validation.ProfileForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.portal.SaveProfile(r.Context(), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) changePassword(w http.ResponseWriter, r *http.Request) {
	var form validation.PasswordChangeForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.portal.ChangePassword(r.Context(), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type passwordCheckRequest struct {
	Password string `json:"password"`
}

type passwordCheckResponse struct {
	Requirements []validation.Requirement `json:"requirements"`
}

func (h *handlers) checkPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordCheckRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, passwordCheckResponse{Requirements: validation.PasswordRequirements(req.Password)})
}

func (h *handlers) notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.portal.Notifications())
}

func (h *handlers) saveNotifications(w http.ResponseWriter, r *http.Request) {
	prefs := portal.DefaultNotificationPreferences()
	if err := decode(r, &prefs); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.portal.SaveNotifications(r.Context(), prefs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type devCodeResponse struct {
	devotp.Code
	Note string `json:"note"`
}

func (h *handlers) devCode(w http.ResponseWriter, r *http.Request) {
	ch, err := channelOf(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	code, ok := h.portal.DevCode(r.Context(), ch)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "No code issued", Category: "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, devCodeResponse{Code: code, Note: devotp.Note})
}

type reviewRequest struct {
	Decision docdomain.Decision `json:"decision"`
	Reason   string             `json:"reason"`
}

func (h *handlers) review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.portal.Review(r.Context(), mux.Vars(r)["id"], req.Decision, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type auditResponse struct {
	Entries []*auditdomain.AuditLog `json:"entries"`
}

func (h *handlers) devAudit(w http.ResponseWriter, r *http.Request) {
	if h.auditRepo == nil {
		writeJSON(w, http.StatusOK, auditResponse{Entries: []*auditdomain.AuditLog{}})
		return
	}
	limit := defaultAuditLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	entries, err := h.auditRepo.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auditResponse{Entries: entries})
}
