package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const storeColumns = `id, user_id, name, description, logo, created_at, updated_at`

type StoreRepository struct {
	pool *pgxpool.Pool
}

func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

func (r *StoreRepository) FindByUserID(ctx context.Context, userID string) (*domain.Store, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE user_id = $1`, userID)
	return scanStore(row)
}

func (r *StoreRepository) Update(ctx context.Context, s *domain.Store) (*domain.Store, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE stores
		SET    name = $2, description = $3, logo = $4, updated_at = NOW()
		WHERE  id = $1
		RETURNING `+storeColumns,
		s.ID, s.Name, s.Description, s.Logo,
	)
	return scanStore(row)
}

func scanStore(row rowScanner) (*domain.Store, error) {
	var s domain.Store
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.Logo, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, fmt.Errorf("scan store: %w", err)
	}
	return &s, nil
}
