package repository

import (
	"context"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
)

type EmailLogRepository interface {
	Create(ctx context.Context, log *domain.EmailLog) (*domain.EmailLog, error)

	// ListPending returns every Pending entry in creation order,
	// optionally filtered by type ("" = all). There is deliberately no
	// claim token or row lock: overlapping mailer ticks may both see
	// the same entry, which yields at-least-once delivery.
	ListPending(ctx context.Context, typeFilter domain.EmailType) ([]*domain.EmailLog, error)

	// MarkSent and MarkFailed are terminal and idempotent — re-marking
	// an already-terminal entry is a no-op.
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}
