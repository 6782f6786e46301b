// Package portal implements the page flows of the document-verification
// portal. Each flow validates its form, applies the change to the session
// store, and records an audit entry and a telemetry event.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"docverify-portal/internal/audit"
	"docverify-portal/internal/devotp"
	"docverify-portal/internal/security"
	"docverify-portal/internal/session"
	"docverify-portal/internal/telemetry"
	"docverify-portal/internal/validation"
	"docverify-portal/internal/verification"
)

// DefaultUploadDelay is the simulated upload time of the onboarding and upload pages.
const DefaultUploadDelay = 2 * time.Second

// Sentinel errors; the HTTP layer maps them to status codes.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotRejected      = errors.New("only rejected documents can be resubmitted")
)

// Outcome is what a page shows after a successful action: a notification and
// optionally the route to navigate to.
type Outcome struct {
	Message string `json:"message"`
	Next    string `json:"next,omitempty"`
}

// Service runs the portal flows against one session store.
type Service struct {
	store    *session.Store
	checker  verification.Checker
	cooldown *verification.Cooldown
	devCodes devotp.Store
	tokens   *security.TokenProvider
	audit    audit.AuditLogger
	emitter  telemetry.EventEmitter
	files    validation.FilePolicy
	delay    time.Duration
	nowF     func() time.Time
	newID    func() string

	mu            sync.Mutex
	notifications NotificationPreferences
}

// Option configures a Service.
type Option func(*Service)

// WithChecker replaces the default StubChecker.
func WithChecker(c verification.Checker) Option {
	return func(s *Service) { s.checker = c }
}

// WithCooldown replaces the default 60 second resend cooldown.
func WithCooldown(c *verification.Cooldown) Option {
	return func(s *Service) { s.cooldown = c }
}

// WithDevCodes exposes issued codes for development; the store is cleared on logout.
func WithDevCodes(d devotp.Store) Option {
	return func(s *Service) { s.devCodes = d }
}

// WithTokens makes Login and Register return a signed session token.
func WithTokens(p *security.TokenProvider) Option {
	return func(s *Service) { s.tokens = p }
}

// WithAuditLogger records login, register and logout.
func WithAuditLogger(l audit.AuditLogger) Option {
	return func(s *Service) { s.audit = l }
}

// WithEmitter sends domain events asynchronously.
func WithEmitter(e telemetry.EventEmitter) Option {
	return func(s *Service) { s.emitter = e }
}

// WithFilePolicy replaces the default 5 MB file policy.
func WithFilePolicy(p validation.FilePolicy) Option {
	return func(s *Service) { s.files = p }
}

// WithUploadDelay sets the simulated upload time. Zero disables it.
func WithUploadDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

// NewService returns a Service over store.
func NewService(store *session.Store, opts ...Option) *Service {
	s := &Service{
		store:         store,
		checker:       verification.StubChecker{},
		cooldown:      verification.NewCooldown(verification.DefaultResendCooldown),
		files:         validation.DefaultFilePolicy(),
		delay:         DefaultUploadDelay,
		nowF:          time.Now,
		newID:         func() string { return uuid.New().String() },
		notifications: DefaultNotificationPreferences(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the session store the service mutates.
func (s *Service) Store() *session.Store {
	return s.store
}

func (s *Service) logEvent(ctx context.Context, userID, action, resource string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, userID, action, resource, "")
	}
}

func (s *Service) emit(ctx context.Context, eventType, sessionID, email string, meta map[string]string) {
	if s.emitter == nil {
		return
	}
	var raw []byte
	if len(meta) > 0 {
		raw, _ = json.Marshal(meta)
	}
	telemetry.EmitAsync(s.emitter, ctx, &telemetry.Event{
		Type:      eventType,
		SessionID: sessionID,
		UserEmail: email,
		Source:    telemetry.SourcePortal,
		Metadata:  raw,
		CreatedAt: s.nowF().UTC(),
	})
}

// emitForUser emits eventType for the current session user.
func (s *Service) emitForUser(ctx context.Context, eventType string, meta map[string]string) {
	var email string
	if u := s.store.User(); u != nil {
		email = u.Email
	}
	s.emit(ctx, eventType, s.store.SessionID(), email, meta)
}

func notAuthenticated(r session.Result) error {
	if r == session.RejectedNotAuthenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// simulateUpload waits the configured upload delay or until ctx is done.
func (s *Service) simulateUpload(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
