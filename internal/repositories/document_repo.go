package repositories

import (
	"context"
	"time"

	"github.com/fieldsync/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepo is the index over document blobs held on local disk.
type DocumentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

func (r *DocumentRepo) Upsert(ctx context.Context, e *models.DocumentCacheEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cached_documents (file_id, file_name, path, size_bytes, content_type, title, text_snippet, downloaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (file_id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			path = EXCLUDED.path,
			size_bytes = EXCLUDED.size_bytes,
			content_type = EXCLUDED.content_type,
			title = EXCLUDED.title,
			text_snippet = EXCLUDED.text_snippet,
			downloaded_at = EXCLUDED.downloaded_at
	`, e.FileID, e.FileName, e.Path, e.SizeBytes, e.ContentType, e.Title, e.TextSnippet, e.DownloadedAt)
	return err
}

func (r *DocumentRepo) GetByFileID(ctx context.Context, fileID string) (*models.DocumentCacheEntry, error) {
	var e models.DocumentCacheEntry
	err := r.pool.QueryRow(ctx, `
		SELECT file_id, file_name, path, size_bytes, content_type, title, text_snippet, downloaded_at
		FROM cached_documents WHERE file_id = $1
	`, fileID).Scan(&e.FileID, &e.FileName, &e.Path, &e.SizeBytes, &e.ContentType, &e.Title, &e.TextSnippet, &e.DownloadedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *DocumentRepo) List(ctx context.Context) ([]models.DocumentCacheEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT file_id, file_name, path, size_bytes, content_type, title, text_snippet, downloaded_at
		FROM cached_documents ORDER BY downloaded_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DocumentCacheEntry
	for rows.Next() {
		var e models.DocumentCacheEntry
		if err := rows.Scan(&e.FileID, &e.FileName, &e.Path, &e.SizeBytes, &e.ContentType,
			&e.Title, &e.TextSnippet, &e.DownloadedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *DocumentRepo) Stats(ctx context.Context) (models.CacheStats, error) {
	var s models.CacheStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM cached_documents
	`).Scan(&s.EntryCount, &s.TotalSizeBytes)
	return s, err
}

// DeleteOlderThan removes index rows downloaded before the cutoff and
// returns the blob paths so the caller can remove the files.
func (r *DocumentRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		DELETE FROM cached_documents WHERE downloaded_at < $1 RETURNING path
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPaths(rows)
}

// DeleteAll removes every index row and returns all blob paths.
func (r *DocumentRepo) DeleteAll(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `DELETE FROM cached_documents RETURNING path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPaths(rows)
}

func (r *DocumentRepo) Delete(ctx context.Context, fileID string) (string, error) {
	var path string
	err := r.pool.QueryRow(ctx, `
		DELETE FROM cached_documents WHERE file_id = $1 RETURNING path
	`, fileID).Scan(&path)
	return path, err
}

func scanPaths(rows pgx.Rows) ([]string, error) {
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
