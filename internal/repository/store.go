package repository

import (
	"context"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
)

type StoreRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Store, error)
	Update(ctx context.Context, s *domain.Store) (*domain.Store, error)
}
