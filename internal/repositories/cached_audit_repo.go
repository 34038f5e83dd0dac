package repositories

import (
	"context"

	"github.com/fieldsync/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CachedAuditRepo mirrors upstream audit logs for offline fallback.
type CachedAuditRepo struct {
	pool *pgxpool.Pool
}

func NewCachedAuditRepo(pool *pgxpool.Pool) *CachedAuditRepo {
	return &CachedAuditRepo{pool: pool}
}

// UpsertMany overwrites cached rows by primary key.
func (r *CachedAuditRepo) UpsertMany(ctx context.Context, logs []models.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, l := range logs {
		batch.Queue(`
			INSERT INTO cached_audit_logs (id, action, actor_name, actor_role, resource_type, resource_name, details, ts)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				action = EXCLUDED.action,
				actor_name = EXCLUDED.actor_name,
				actor_role = EXCLUDED.actor_role,
				resource_type = EXCLUDED.resource_type,
				resource_name = EXCLUDED.resource_name,
				details = EXCLUDED.details,
				ts = EXCLUDED.ts
		`, l.ID, l.Action, l.ActorName, l.ActorRole, l.ResourceType, l.ResourceName, l.Details, l.Timestamp)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range logs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ListByResourceType returns cached logs matching the same filter a remote
// fetch would use. Empty resourceType means no filter.
func (r *CachedAuditRepo) ListByResourceType(ctx context.Context, resourceType string) ([]models.AuditLog, error) {
	query := `
		SELECT id, action, actor_name, actor_role, resource_type, resource_name, details, ts
		FROM cached_audit_logs
	`
	args := []any{}
	if resourceType != "" {
		query += " WHERE resource_type = $1"
		args = append(args, resourceType)
	}
	query += " ORDER BY ts DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.Action, &l.ActorName, &l.ActorRole,
			&l.ResourceType, &l.ResourceName, &l.Details, &l.Timestamp); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
