package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fieldsync/backend/internal/docmeta"
	"github.com/fieldsync/backend/internal/events"
	"github.com/fieldsync/backend/internal/models"
	"github.com/fieldsync/backend/internal/prefs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type documentIndex interface {
	Upsert(ctx context.Context, e *models.DocumentCacheEntry) error
	GetByFileID(ctx context.Context, fileID string) (*models.DocumentCacheEntry, error)
	List(ctx context.Context) ([]models.DocumentCacheEntry, error)
	Stats(ctx context.Context) (models.CacheStats, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
	DeleteAll(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, fileID string) (string, error)
}

type downloadTracker interface {
	Insert(ctx context.Context, d *models.DownloadEntry) error
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) error
	ListRecent(ctx context.Context, limit int) ([]models.DownloadEntry, error)
}

type blobFetcher interface {
	DownloadDocument(ctx context.Context, fileID string, w io.Writer) (string, int64, error)
}

type settingsSource interface {
	Get(ctx context.Context) (prefs.CacheSettings, error)
}

// DocCacheService manages the on-disk document cache: blobs under a cache
// directory plus index rows in the database. Eviction is manual only,
// triggered by the purge/clear endpoints.
type DocCacheService struct {
	dir       string
	index     documentIndex
	downloads downloadTracker
	upstream  blobFetcher
	settings  settingsSource
	publisher events.Publisher
	log       *zap.Logger
}

func NewDocCacheService(
	dir string,
	index documentIndex,
	downloads downloadTracker,
	upstream blobFetcher,
	settings settingsSource,
	publisher events.Publisher,
	log *zap.Logger,
) *DocCacheService {
	return &DocCacheService{
		dir:       dir,
		index:     index,
		downloads: downloads,
		upstream:  upstream,
		settings:  settings,
		publisher: publisher,
		log:       log,
	}
}

// Download fetches a document blob from upstream into the cache directory,
// tracking progress in the downloads table and indexing the blob on success.
func (s *DocCacheService) Download(ctx context.Context, fileID, fileName string) (*models.DocumentCacheEntry, error) {
	if existing, err := s.index.GetByFileID(ctx, fileID); err == nil {
		if _, statErr := os.Stat(filepath.Join(s.dir, existing.Path)); statErr == nil {
			return existing, nil
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}

	entry := &models.DownloadEntry{
		FileID:   fileID,
		FileName: fileName,
		Status:   models.DownloadStatusPending,
	}
	if err := s.downloads.Insert(ctx, entry); err != nil {
		return nil, err
	}

	relPath := blobFileName(fileID, fileName)
	absPath := filepath.Join(s.dir, relPath)

	_ = s.downloads.UpdateStatus(ctx, entry.ID, models.DownloadStatusInProgress, nil)

	f, err := os.Create(absPath)
	if err != nil {
		return nil, s.failDownload(ctx, entry.ID, err)
	}

	contentType, size, err := s.upstream.DownloadDocument(ctx, fileID, f)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(absPath)
		return nil, s.failDownload(ctx, entry.ID, err)
	}

	_ = s.downloads.UpdateProgress(ctx, entry.ID, 100)
	_ = s.downloads.UpdateStatus(ctx, entry.ID, models.DownloadStatusCompleted, nil)

	doc := &models.DocumentCacheEntry{
		FileID:       fileID,
		FileName:     fileName,
		Path:         relPath,
		SizeBytes:    size,
		ContentType:  contentType,
		DownloadedAt: time.Now(),
	}
	s.attachMeta(doc, absPath)

	if err := s.index.Upsert(ctx, doc); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.StreamCache, events.Event{
			Type:    events.EventDownloadFinished,
			Payload: map[string]any{"file_id": fileID, "size_bytes": size},
		})
	}

	s.log.Info("document cached",
		zap.String("file_id", fileID),
		zap.Int64("size_bytes", size),
	)
	return doc, nil
}

func (s *DocCacheService) failDownload(ctx context.Context, id uuid.UUID, cause error) error {
	msg := cause.Error()
	_ = s.downloads.UpdateStatus(ctx, id, models.DownloadStatusFailed, &msg)
	return fmt.Errorf("download failed: %w", cause)
}

func (s *DocCacheService) attachMeta(doc *models.DocumentCacheEntry, absPath string) {
	if !docmeta.IsHTML(doc.ContentType) {
		return
	}
	f, err := os.Open(absPath)
	if err != nil {
		return
	}
	defer f.Close()

	meta := docmeta.Extract(f)
	if meta.Title != "" {
		doc.Title = &meta.Title
	}
	if meta.Snippet != "" {
		doc.TextSnippet = &meta.Snippet
	}
}

func (s *DocCacheService) List(ctx context.Context) ([]models.DocumentCacheEntry, error) {
	return s.index.List(ctx)
}

func (s *DocCacheService) Stats(ctx context.Context) (models.CacheStats, error) {
	return s.index.Stats(ctx)
}

func (s *DocCacheService) Downloads(ctx context.Context, limit int) ([]models.DownloadEntry, error) {
	return s.downloads.ListRecent(ctx, limit)
}

// PurgeExpired removes every cached document downloaded before
// now − maxAgeDays. Blob deletion is best-effort: the index row goes away
// regardless of file errors. Returns the number of entries removed.
func (s *DocCacheService) PurgeExpired(ctx context.Context) (int, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().AddDate(0, 0, -settings.MaxAgeDays)

	paths, err := s.index.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.removeBlobs(paths)

	s.log.Info("expired cache entries purged",
		zap.Int("removed", len(paths)),
		zap.Time("cutoff", cutoff),
	)
	return len(paths), nil
}

// Remove evicts a single cached document, row and blob.
func (s *DocCacheService) Remove(ctx context.Context, fileID string) error {
	path, err := s.index.Delete(ctx, fileID)
	if err != nil {
		return fmt.Errorf("document not in cache: %w", err)
	}
	s.removeBlobs([]string{path})
	s.log.Info("cached document removed", zap.String("file_id", fileID))
	return nil
}

// ClearAll removes every index row and every blob in the cache directory,
// including strays no longer referenced by the index.
func (s *DocCacheService) ClearAll(ctx context.Context) (int, error) {
	paths, err := s.index.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.removeBlobs(paths)

	if entries, err := os.ReadDir(s.dir); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				_ = os.Remove(filepath.Join(s.dir, e.Name()))
			}
		}
	}

	s.log.Info("document cache cleared", zap.Int("removed", len(paths)))
	return len(paths), nil
}

func (s *DocCacheService) removeBlobs(paths []string) {
	for _, p := range paths {
		if err := os.Remove(filepath.Join(s.dir, p)); err != nil && !os.IsNotExist(err) {
			s.log.Warn("blob removal failed", zap.String("path", p), zap.Error(err))
		}
	}
}

// blobFileName builds a collision-free on-disk name; the file id is unique
// upstream, the original name is kept only for the extension.
func blobFileName(fileID, fileName string) string {
	id := sanitize(fileID)
	ext := filepath.Ext(filepath.Base(fileName))
	return id + sanitize(ext)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		}
		return '_'
	}, s)
}
