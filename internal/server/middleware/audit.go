package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"docverify-portal/internal/audit"
)

// Audit returns middleware that records an audit entry after each mutating
// request made with a session. skip holds "METHOD /template" keys not to
// audit (flows that log their own entry). LogEvent is best-effort.
func Audit(logger audit.AuditLogger, skip map[string]bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			if logger == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
				return
			}
			template := routeTemplate(r)
			if skip[r.Method+" "+template] {
				return
			}
			userID, _ := GetUserID(r.Context())
			if userID == "" {
				return
			}
			ar := audit.ParseRoute(r.Method, template)
			logger.LogEvent(r.Context(), userID, ar.Action, ar.Resource, fmt.Sprintf(`{"status":%d}`, rec.status))
		})
	}
}

// ClientIP returns middleware that stores the client IP (X-Forwarded-For,
// X-Real-IP, then the remote address) in the request context.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), clientIP(r))))
	})
}

func clientIP(r *http.Request) string {
	if s := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); s != "" {
		if i := strings.Index(s, ","); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		return s
	}
	if s := strings.TrimSpace(r.Header.Get("X-Real-IP")); s != "" {
		return s
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}

// routeTemplate returns the mux path template of the matched route, or the raw path.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
