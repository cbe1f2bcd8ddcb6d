package postgres

import (
	"context"
	"fmt"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

const emailLogColumns = `id, user_id, email, type, status, created_at, updated_at`

type EmailLogRepository struct {
	pool *pgxpool.Pool
}

func NewEmailLogRepository(pool *pgxpool.Pool) *EmailLogRepository {
	return &EmailLogRepository{pool: pool}
}

func (r *EmailLogRepository) Create(ctx context.Context, log *domain.EmailLog) (*domain.EmailLog, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO email_logs (user_id, email, type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+emailLogColumns,
		log.UserID, log.Email, log.Type, domain.EmailPending,
	)
	return scanEmailLog(row)
}

// ListPending intentionally takes no row locks: two overlapping mailer
// ticks may both read the same entry and both send it. A duplicate
// verification email is acceptable; lost mail is not.
func (r *EmailLogRepository) ListPending(ctx context.Context, typeFilter domain.EmailType) ([]*domain.EmailLog, error) {
	query := `SELECT ` + emailLogColumns + ` FROM email_logs WHERE status = $1`
	args := []any{domain.EmailPending}

	if typeFilter != "" {
		args = append(args, typeFilter)
		query += ` AND type = $2`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending email logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.EmailLog
	for rows.Next() {
		l, err := scanEmailLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *EmailLogRepository) MarkSent(ctx context.Context, id string) error {
	return r.markStatus(ctx, id, domain.EmailSent)
}

func (r *EmailLogRepository) MarkFailed(ctx context.Context, id string) error {
	return r.markStatus(ctx, id, domain.EmailFailed)
}

// markStatus only moves entries out of Pending, which makes re-marking
// an already-terminal entry a harmless no-op.
func (r *EmailLogRepository) markStatus(ctx context.Context, id string, status domain.EmailStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_logs SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		id, status, domain.EmailPending)
	if err != nil {
		return fmt.Errorf("mark email log %s: %w", status, err)
	}
	return nil
}

func scanEmailLog(row rowScanner) (*domain.EmailLog, error) {
	var l domain.EmailLog
	err := row.Scan(&l.ID, &l.UserID, &l.Email, &l.Type, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan email log: %w", err)
	}
	return &l, nil
}
