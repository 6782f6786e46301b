package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"docverify-portal/internal/audit/domain"
)

// mockAuditRepo implements the audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	return m.entries, nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo,
		func(context.Context) string { return "192.168.1.1" },
		func(context.Context) string { return "session-1" },
	)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	logger.nowF = func() time.Time { return fixed }

	logger.LogEvent(context.Background(), "a@x.com", domain.ActionLogin, "session", "metadata")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.UserID != "a@x.com" {
		t.Errorf("user_id = %q, want %q", entry.UserID, "a@x.com")
	}
	if entry.SessionID != "session-1" {
		t.Errorf("session_id = %q, want %q", entry.SessionID, "session-1")
	}
	if entry.Action != domain.ActionLogin {
		t.Errorf("action = %q, want %q", entry.Action, domain.ActionLogin)
	}
	if entry.Resource != "session" {
		t.Errorf("resource = %q, want %q", entry.Resource, "session")
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", entry.IP, "192.168.1.1")
	}
	if entry.Metadata != "metadata" {
		t.Errorf("metadata = %q, want %q", entry.Metadata, "metadata")
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if !entry.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", entry.CreatedAt, fixed)
	}
}

func TestLogger_LogEvent_NilExtractors(t *testing.T) {
	repo := &mockAuditRepo{}
	NewLogger(repo, nil, nil).LogEvent(context.Background(), "", "action", "resource", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.IP != "unknown" {
		t.Errorf("ip = %q, want %q", e.IP, "unknown")
	}
	if e.UserID != AnonymousUserID {
		t.Errorf("user_id = %q, want %q", e.UserID, AnonymousUserID)
	}
	if e.SessionID != "" {
		t.Errorf("session_id = %q, want empty", e.SessionID)
	}
}

func TestLogger_LogEvent_RepositoryError(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("storage full")}
	NewLogger(repo, nil, nil).LogEvent(context.Background(), "u", "action", "resource", "")
}

func TestLogger_LogEvent_NilRepo(t *testing.T) {
	NewLogger(nil, nil, nil).LogEvent(context.Background(), "u", "action", "resource", "")
	var l *Logger
	l.LogEvent(context.Background(), "u", "action", "resource", "")
}
