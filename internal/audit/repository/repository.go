package repository

import (
	"context"

	"docverify-portal/internal/audit/domain"
)

// Repository stores audit events.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	// List returns up to limit of the newest events, oldest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}
