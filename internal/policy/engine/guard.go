// Package engine decides which portal pages a session may open.
package engine

import (
	"context"
	"path"
	"strings"
)

// Page routes of the portal.
const (
	RouteRoot        = "/"
	RouteLogin       = "/login"
	RouteOnboarding  = "/onboarding"
	RouteVerify      = "/verify-contacts"
	RouteUpload      = "/dashboard/upload"
	RouteVerified    = "/dashboard/verified"
	RouteUnderReview = "/dashboard/under-review"
	RouteRejected    = "/dashboard/rejected"
	RouteProfile     = "/dashboard/profile"
)

// SessionInfo is the part of the session a routing decision may look at.
type SessionInfo struct {
	Authenticated bool `json:"authenticated"`
	EmailVerified bool `json:"email_verified"`
	PhoneVerified bool `json:"phone_verified"`
}

// Decision is the outcome for one route. When Allow is false and Redirect is
// set, the caller navigates there instead. Known is false for routes the portal does not serve.
type Decision struct {
	Route    string `json:"route"`
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
	Known    bool   `json:"known"`
}

// RouteGuard authorizes page routes.
type RouteGuard interface {
	Authorize(ctx context.Context, route string, session SessionInfo) (Decision, error)
}

// NormalizeRoute drops any query string and trailing slash, and cleans dot segments.
func NormalizeRoute(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if route == "" {
		return RouteRoot
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return path.Clean(route)
}
