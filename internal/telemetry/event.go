package telemetry

import "time"

// Event types emitted by the portal.
const (
	EventLogin             = "login"
	EventRegister          = "register"
	EventLogout            = "logout"
	EventDocumentAdded     = "document_added"
	EventDocumentResubmit  = "document_resubmitted"
	EventContactVerified   = "contact_verified"
	EventCodeSent          = "verification_code_sent"
	EventProfileUpdated    = "profile_updated"
	EventPasswordChanged   = "password_changed"
	EventNotificationsSave = "notifications_updated"
	EventReviewApplied     = "review_applied"
	EventHTTPRequest       = "http_request"
)

// Event sources.
const (
	SourcePortal     = "portal"
	SourceMiddleware = "http_middleware"
)

// Event is one domain event. Metadata is a JSON document.
type Event struct {
	Type      string
	SessionID string
	UserEmail string
	Source    string
	Metadata  []byte
	CreatedAt time.Time
}
