package repositories

import (
	"context"
	"time"

	"github.com/fieldsync/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DownloadRepo struct {
	pool *pgxpool.Pool
}

func NewDownloadRepo(pool *pgxpool.Pool) *DownloadRepo {
	return &DownloadRepo{pool: pool}
}

func (r *DownloadRepo) Insert(ctx context.Context, d *models.DownloadEntry) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO downloads (file_id, file_name, status, progress)
		VALUES ($1, $2, $3, $4)
		RETURNING id, started_at
	`, d.FileID, d.FileName, d.Status, d.Progress).Scan(&d.ID, &d.StartedAt)
}

func (r *DownloadRepo) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE downloads SET progress = $1 WHERE id = $2
	`, progress, id)
	return err
}

func (r *DownloadRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) error {
	var finishedAt *time.Time
	if status == models.DownloadStatusCompleted || status == models.DownloadStatusFailed {
		now := time.Now()
		finishedAt = &now
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE downloads SET status = $1, error = $2, finished_at = $3 WHERE id = $4
	`, status, errMsg, finishedAt, id)
	return err
}

func (r *DownloadRepo) ListRecent(ctx context.Context, limit int) ([]models.DownloadEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_id, file_name, status, progress, error, started_at, finished_at
		FROM downloads ORDER BY started_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DownloadEntry
	for rows.Next() {
		var d models.DownloadEntry
		if err := rows.Scan(&d.ID, &d.FileID, &d.FileName, &d.Status, &d.Progress,
			&d.Error, &d.StartedAt, &d.FinishedAt); err != nil {
			return nil, err
		}
		entries = append(entries, d)
	}
	return entries, rows.Err()
}
