package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	docdomain "docverify-portal/internal/document/domain"
	"docverify-portal/internal/policy/engine"
	"docverify-portal/internal/portal"
	"docverify-portal/internal/session"
	"docverify-portal/internal/validation"
	"docverify-portal/internal/verification"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error    string `json:"error"`
	Category string `json:"category"`
	Redirect string `json:"redirect,omitempty"`
}

var errBadRequestBody = errors.New("request body is not valid JSON")

// classify maps err to an HTTP status, a category and the message shown to the user.
func classify(err error) (int, string, string) {
	var ve *validation.Error
	var ce *portal.CooldownError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, string(ve.Category), ve.Message
	case errors.As(err, &ce):
		return http.StatusTooManyRequests, "cooldown_active", ce.Error()
	case errors.Is(err, errBadRequestBody):
		return http.StatusBadRequest, "malformed_input", err.Error()
	case errors.Is(err, portal.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not_authenticated", "Please log in to continue"
	case errors.Is(err, session.ErrDocumentNotFound):
		return http.StatusNotFound, "not_found", "Document not found"
	case errors.Is(err, docdomain.ErrInvalidTransition), errors.Is(err, portal.ErrNotRejected):
		return http.StatusConflict, "conflict", err.Error()
	case errors.Is(err, docdomain.ErrReasonRequired):
		return http.StatusBadRequest, string(validation.CategoryMissingField), "Please give a rejection reason"
	case errors.Is(err, docdomain.ErrUnknownStatus), errors.Is(err, verification.ErrUnknownChannel):
		return http.StatusBadRequest, string(validation.CategoryMalformedInput), err.Error()
	case errors.Is(err, verification.ErrCodeMismatch):
		return http.StatusBadRequest, "invalid_code", "Invalid verification code"
	case errors.Is(err, verification.ErrCodeExpired):
		return http.StatusBadRequest, "invalid_code", "Verification code has expired, please resend"
	case errors.Is(err, verification.ErrNoPendingCode):
		return http.StatusBadRequest, "invalid_code", "Please request a code first"
	case errors.Is(err, verification.ErrCooldownActive):
		return http.StatusTooManyRequests, "cooldown_active", "Please wait before resending"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, "timeout", "Request cancelled"
	}
	return http.StatusInternalServerError, "internal", "Something went wrong"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, category, msg := classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("server: %s %s: %v", r.Method, r.URL.Path, err)
	}
	var ce *portal.CooldownError
	if errors.As(err, &ce) {
		w.Header().Set("Retry-After", strconv.Itoa(ce.Seconds))
	}
	writeJSON(w, status, errorBody{Error: msg, Category: category})
}

func writeUnauthenticated(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, portal.ErrNotAuthenticated)
}

func writeDenied(w http.ResponseWriter, r *http.Request, d engine.Decision, err error) {
	if err != nil {
		log.Printf("server: route policy: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Something went wrong", Category: "internal"})
		return
	}
	writeJSON(w, http.StatusForbidden, errorBody{
		Error:    "This page is not available",
		Category: "route_denied",
		Redirect: d.Redirect,
	})
}

func decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errBadRequestBody
	}
	return nil
}
