package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fieldsync/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pendingColumns = `id, type, payload, status, retry_count, last_error, next_attempt_at, created_at, updated_at`

// PendingActionRepo is the write-ahead queue of offline actions awaiting
// submission to the upstream API.
type PendingActionRepo struct {
	pool *pgxpool.Pool
}

func NewPendingActionRepo(pool *pgxpool.Pool) *PendingActionRepo {
	return &PendingActionRepo{pool: pool}
}

func (r *PendingActionRepo) Insert(ctx context.Context, a *models.PendingAction) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO pending_actions (type, payload, status, retry_count, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, a.Type, a.Payload, a.Status, a.RetryCount, a.NextAttemptAt).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *PendingActionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PendingAction, error) {
	var a models.PendingAction
	err := r.pool.QueryRow(ctx, `SELECT `+pendingColumns+` FROM pending_actions WHERE id = $1`, id).
		Scan(&a.ID, &a.Type, &a.Payload, &a.Status, &a.RetryCount, &a.LastError,
			&a.NextAttemptAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByStatus returns actions with the given status; empty means all.
func (r *PendingActionRepo) ListByStatus(ctx context.Context, status string) ([]models.PendingAction, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_actions`
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []models.PendingAction
	for rows.Next() {
		var a models.PendingAction
		if err := rows.Scan(&a.ID, &a.Type, &a.Payload, &a.Status, &a.RetryCount,
			&a.LastError, &a.NextAttemptAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// ListDue returns pending actions whose next attempt time has passed and
// whose retry budget is not exhausted.
func (r *PendingActionRepo) ListDue(ctx context.Context, maxRetries int, limit int) ([]models.PendingAction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+pendingColumns+` FROM pending_actions
		WHERE status = $1 AND retry_count < $2 AND next_attempt_at <= now()
		ORDER BY next_attempt_at LIMIT $3
	`, models.ActionStatusPending, maxRetries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []models.PendingAction
	for rows.Next() {
		var a models.PendingAction
		if err := rows.Scan(&a.ID, &a.Type, &a.Payload, &a.Status, &a.RetryCount,
			&a.LastError, &a.NextAttemptAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// ResetForRetry rewrites the payload and clears retry state so the
// scheduler picks the action up again.
func (r *PendingActionRepo) ResetForRetry(ctx context.Context, id uuid.UUID, payload json.RawMessage) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pending_actions
		SET payload = $1, status = $2, retry_count = 0, last_error = NULL,
		    next_attempt_at = now(), updated_at = now()
		WHERE id = $3
	`, payload, models.ActionStatusPending, id)
	return err
}

func (r *PendingActionRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pending_actions SET status = $1, last_error = NULL, updated_at = now() WHERE id = $2
	`, models.ActionStatusCompleted, id)
	return err
}

// MarkAttemptFailed bumps the retry count, records the error, and schedules
// the next attempt. Once the retry budget is exhausted the action is marked
// failed so the edit-and-retry screen can surface it.
func (r *PendingActionRepo) MarkAttemptFailed(ctx context.Context, id uuid.UUID, errMsg string, nextAttemptAt time.Time, maxRetries int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pending_actions
		SET retry_count = retry_count + 1,
		    last_error = $1,
		    next_attempt_at = $2,
		    status = CASE WHEN retry_count + 1 >= $3 THEN $4 ELSE status END,
		    updated_at = now()
		WHERE id = $5
	`, errMsg, nextAttemptAt, maxRetries, models.ActionStatusFailed, id)
	return err
}

func (r *PendingActionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM pending_actions WHERE id = $1`, id)
	return err
}
