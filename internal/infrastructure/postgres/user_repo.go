package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, phone, address, role, password_hash,
	       refresh_token, verified_at, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Register creates the user, an optional store and the verification
// email-log entry in a single transaction — no partial state on failure.
func (r *UserRepository) Register(ctx context.Context, user *domain.User, store *domain.Store, log *domain.EmailLog) (*domain.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, address, role, password_hash, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		user.Name, user.Email, user.Phone, user.Address, user.Role, user.PasswordHash, user.VerifiedAt,
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			err = domain.ErrEmailTaken
		}
		return nil, err
	}

	if store != nil {
		if _, err = tx.Exec(ctx,
			`INSERT INTO stores (user_id, name) VALUES ($1, $2)`,
			created.ID, store.Name,
		); err != nil {
			return nil, fmt.Errorf("create store: %w", err)
		}
	}

	if log != nil {
		if _, err = tx.Exec(ctx,
			`INSERT INTO email_logs (user_id, email, type, status) VALUES ($1, $2, $3, $4)`,
			created.ID, created.Email, log.Type, domain.EmailPending,
		); err != nil {
			return nil, fmt.Errorf("enqueue email log: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, userID string, token *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`,
		userID, token)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET verified_at = NOW(), updated_at = NOW() WHERE id = $1`,
		userID)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// PromoteToOwner flips a customer to STORE_OWNER and creates the store
// atomically. Used by the OAuth flow when an existing customer signs in
// asking for a seller account.
func (r *UserRepository) PromoteToOwner(ctx context.Context, userID string, store *domain.Store) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`,
		userID, domain.RoleStoreOwner)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrUserNotFound
		return err
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO stores (user_id, name) VALUES ($1, $2)`,
		userID, store.Name,
	); err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.Role, &u.PasswordHash,
		&u.RefreshToken, &u.VerifiedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}
