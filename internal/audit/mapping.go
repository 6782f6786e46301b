package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// Overrides for routes with a domain-specific action.
var routeOverrides = map[string]ActionResource{
	"PUT /api/profile":                        {Action: "profile_updated", Resource: "user"},
	"PUT /api/profile/password":               {Action: "password_changed", Resource: "user"},
	"PUT /api/profile/notifications":          {Action: "notifications_updated", Resource: "user"},
	"POST /api/onboarding":                    {Action: "onboarded", Resource: "document"},
	"POST /api/documents/{id}/resubmit":       {Action: "resubmitted", Resource: "document"},
	"POST /api/verification/{channel}/verify": {Action: "contact_verified", Resource: "verification"},
	"POST /api/verification/{channel}/send":   {Action: "code_sent", Resource: "verification"},
	"POST /api/verification/complete":         {Action: "verification_completed", Resource: "verification"},
}

// ParseRoute returns action and resource for an HTTP method and mux path
// template such as "/api/documents/{id}/resubmit".
// Resource is the first path segment after /api, singularized. Action is the
// last literal segment when there is one beyond the resource, else a verb from the method.
func ParseRoute(method, template string) ActionResource {
	if ar, ok := routeOverrides[method+" "+template]; ok {
		return ar
	}
	var literals []string
	for _, seg := range strings.Split(strings.Trim(template, "/"), "/") {
		if seg == "" || seg == "api" || seg == "dev" || strings.HasPrefix(seg, "{") {
			continue
		}
		literals = append(literals, seg)
	}
	if len(literals) == 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	resource := singular(literals[0])
	if len(literals) > 1 {
		return ActionResource{Action: literals[len(literals)-1], Resource: resource}
	}
	hasParam := strings.Contains(template, "{")
	return ActionResource{Action: methodToAction(method, hasParam), Resource: resource}
}

func singular(s string) string {
	if strings.HasSuffix(s, "s") && len(s) > 1 {
		return s[:len(s)-1]
	}
	return s
}

func methodToAction(method string, hasParam bool) string {
	switch method {
	case http.MethodGet:
		if hasParam {
			return "get"
		}
		return "list"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
