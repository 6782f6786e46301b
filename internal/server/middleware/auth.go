// Package middleware holds the HTTP middleware of the portal API: client IP,
// bearer session tokens, route policy, audit and telemetry.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"docverify-portal/internal/security"
)

const bearerPrefix = "bearer "

// SessionSource reports the id of the live session, or "" when logged out.
type SessionSource interface {
	SessionID() string
}

// Session validates the Bearer session token, when one is sent, and sets
// user_id and session_id in the request context. A token is accepted only
// while the session it names is the live one, so logout invalidates it.
// Requests without a valid token pass through without an identity.
func Session(tokens *security.TokenProvider, sessions SessionSource) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := authenticate(r, tokens, sessions); ok {
				r = r.WithContext(WithIdentity(r.Context(), claims.Subject, claims.SessionID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests that Session did not authenticate by calling onFail.
func RequireSession(onFail http.HandlerFunc) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetSessionID(r.Context()); !ok {
				onFail(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(r *http.Request, tokens *security.TokenProvider, sessions SessionSource) (*security.SessionClaims, bool) {
	token := extractBearer(r)
	if token == "" || tokens == nil {
		return nil, false
	}
	claims, err := tokens.Validate(token)
	if err != nil {
		return nil, false
	}
	if live := sessions.SessionID(); live == "" || live != claims.SessionID {
		return nil, false
	}
	return claims, true
}

// extractBearer returns the Bearer token from the Authorization header, or "" if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
