package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"docverify-portal/internal/audit/domain"
	auditrepo "docverify-portal/internal/audit/repository"
)

// AnonymousUserID is recorded for events that happen without a session user.
const AnonymousUserID = "_anonymous"

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// SessionExtractor returns the session id carried by the request context, or "".
type SessionExtractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
}

// Logger implements AuditLogger on top of an audit repository.
type Logger struct {
	repo      auditrepo.Repository
	ip        IPExtractor
	sessionID SessionExtractor
	nowF      func() time.Time
}

// NewLogger returns a Logger writing to repo. ip and sessionID may be nil.
func NewLogger(repo auditrepo.Repository, ip IPExtractor, sessionID SessionExtractor) *Logger {
	return &Logger{
		repo:      repo,
		ip:        ip,
		sessionID: sessionID,
		nowF:      func() time.Time { return time.Now().UTC() },
	}
}

// LogEvent writes one audit entry.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ip != nil {
		ip = l.ip(ctx)
	}
	var sid string
	if l.sessionID != nil {
		sid = l.sessionID(ctx)
	}
	if userID == "" {
		userID = AnonymousUserID
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		SessionID: sid,
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: l.nowF(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}
