package domain

import "time"

// Actions recorded explicitly by the portal flows. Request-level entries use
// the action derived from the route (see audit.ParseRoute).
const (
	ActionLogin    = "login"
	ActionRegister = "register"
	ActionLogout   = "logout"
	ActionReview   = "review_applied"
)

// AuditLog is one audit event. UserID is the session user's email.
type AuditLog struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId,omitempty"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
