package repository

import (
	"context"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
)

// Usecases depend on interfaces, not the pgx implementations, so the
// DB can be swapped and tests can pass in fakes.
type UserRepository interface {
	// Register creates the user, its store (nil for customers) and the
	// verification email-log entry in a single transaction. If any
	// insert fails nothing persists.
	Register(ctx context.Context, user *domain.User, store *domain.Store, log *domain.EmailLog) (*domain.User, error)

	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// SetRefreshToken overwrites the stored refresh token. Passing nil
	// revokes it.
	SetRefreshToken(ctx context.Context, userID string, token *string) error

	MarkVerified(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// PromoteToOwner upgrades a customer to STORE_OWNER and creates the
	// store in the same transaction.
	PromoteToOwner(ctx context.Context, userID string, store *domain.Store) error
}
