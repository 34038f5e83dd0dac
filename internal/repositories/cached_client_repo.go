package repositories

import (
	"context"

	"github.com/fieldsync/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `id, company_name, contact_name, contact_email, contact_phone,
	address, city, state, zip, status, project_count, created_at, updated_at`

// CachedClientRepo mirrors upstream client records for offline fallback.
type CachedClientRepo struct {
	pool *pgxpool.Pool
}

func NewCachedClientRepo(pool *pgxpool.Pool) *CachedClientRepo {
	return &CachedClientRepo{pool: pool}
}

const upsertClientSQL = `
	INSERT INTO cached_clients (id, company_name, contact_name, contact_email, contact_phone,
		address, city, state, zip, status, project_count, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO UPDATE SET
		company_name = EXCLUDED.company_name,
		contact_name = EXCLUDED.contact_name,
		contact_email = EXCLUDED.contact_email,
		contact_phone = EXCLUDED.contact_phone,
		address = EXCLUDED.address,
		city = EXCLUDED.city,
		state = EXCLUDED.state,
		zip = EXCLUDED.zip,
		status = EXCLUDED.status,
		project_count = EXCLUDED.project_count,
		created_at = EXCLUDED.created_at,
		updated_at = EXCLUDED.updated_at
`

func (r *CachedClientRepo) Upsert(ctx context.Context, c *models.Client) error {
	_, err := r.pool.Exec(ctx, upsertClientSQL,
		c.ID, c.CompanyName, c.ContactName, c.ContactEmail, c.ContactPhone,
		c.Address, c.City, c.State, c.Zip, c.Status, c.ProjectCount, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CachedClientRepo) UpsertMany(ctx context.Context, clients []models.Client) error {
	if len(clients) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range clients {
		batch.Queue(upsertClientSQL,
			c.ID, c.CompanyName, c.ContactName, c.ContactEmail, c.ContactPhone,
			c.Address, c.City, c.State, c.Zip, c.Status, c.ProjectCount, c.CreatedAt, c.UpdatedAt)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range clients {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *CachedClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var c models.Client
	err := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM cached_clients WHERE id = $1`, id).
		Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.ContactEmail, &c.ContactPhone,
			&c.Address, &c.City, &c.State, &c.Zip, &c.Status, &c.ProjectCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByStatus returns cached clients matching the same filter a remote
// fetch would use. Empty status means no filter.
func (r *CachedClientRepo) ListByStatus(ctx context.Context, status string) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM cached_clients`
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY company_name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.ContactEmail, &c.ContactPhone,
			&c.Address, &c.City, &c.State, &c.Zip, &c.Status, &c.ProjectCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *CachedClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cached_clients WHERE id = $1`, id)
	return err
}
