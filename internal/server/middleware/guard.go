package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"docverify-portal/internal/policy/engine"
)

// DenyFunc writes the response for a request the route policy refused. err is
// set when the policy could not be evaluated.
type DenyFunc func(w http.ResponseWriter, r *http.Request, d engine.Decision, err error)

// RouteGuard returns middleware that authorizes each API route as the page it
// serves. pages maps mux path templates to page routes; templates not in
// pages are not checked. info reports the current session.
func RouteGuard(guard engine.RouteGuard, info func() engine.SessionInfo, pages map[string]string, deny DenyFunc) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page, ok := pages[routeTemplate(r)]
			if !ok || guard == nil {
				next.ServeHTTP(w, r)
				return
			}
			var session engine.SessionInfo
			if _, authed := GetSessionID(r.Context()); authed {
				session = info()
			}
			d, err := guard.Authorize(r.Context(), page, session)
			if err != nil || !d.Allow {
				deny(w, r, d, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
