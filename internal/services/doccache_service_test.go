package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fieldsync/backend/internal/models"
	"github.com/fieldsync/backend/internal/prefs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeIndex struct {
	entries []models.DocumentCacheEntry
}

func (f *fakeIndex) Upsert(_ context.Context, e *models.DocumentCacheEntry) error {
	for i, existing := range f.entries {
		if existing.FileID == e.FileID {
			f.entries[i] = *e
			return nil
		}
	}
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeIndex) GetByFileID(_ context.Context, fileID string) (*models.DocumentCacheEntry, error) {
	for _, e := range f.entries {
		if e.FileID == fileID {
			return &e, nil
		}
	}
	return nil, os.ErrNotExist
}

func (f *fakeIndex) List(context.Context) ([]models.DocumentCacheEntry, error) {
	return f.entries, nil
}

func (f *fakeIndex) Stats(context.Context) (models.CacheStats, error) {
	var s models.CacheStats
	for _, e := range f.entries {
		s.EntryCount++
		s.TotalSizeBytes += e.SizeBytes
	}
	return s, nil
}

func (f *fakeIndex) DeleteOlderThan(_ context.Context, cutoff time.Time) ([]string, error) {
	var kept []models.DocumentCacheEntry
	var paths []string
	for _, e := range f.entries {
		if e.DownloadedAt.Before(cutoff) {
			paths = append(paths, e.Path)
		} else {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	return paths, nil
}

func (f *fakeIndex) Delete(_ context.Context, fileID string) (string, error) {
	for i, e := range f.entries {
		if e.FileID == fileID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return e.Path, nil
		}
	}
	return "", os.ErrNotExist
}

func (f *fakeIndex) DeleteAll(context.Context) ([]string, error) {
	var paths []string
	for _, e := range f.entries {
		paths = append(paths, e.Path)
	}
	f.entries = nil
	return paths, nil
}

type fixedSettings struct{ s prefs.CacheSettings }

func (f fixedSettings) Get(context.Context) (prefs.CacheSettings, error) { return f.s, nil }

func writeBlob(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("blob"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPurgeExpiredRemovesOnlyEntriesPastCutoff(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	index := &fakeIndex{entries: []models.DocumentCacheEntry{
		{FileID: "old", Path: "old.pdf", DownloadedAt: now.AddDate(0, 0, -40)},
		{FileID: "edge", Path: "edge.pdf", DownloadedAt: now.AddDate(0, 0, -30).Add(time.Minute)},
		{FileID: "fresh", Path: "fresh.pdf", DownloadedAt: now.AddDate(0, 0, -1)},
	}}
	for _, e := range index.entries {
		writeBlob(t, dir, e.Path)
	}

	svc := NewDocCacheService(dir, index, nil, nil,
		fixedSettings{prefs.CacheSettings{MaxSizeMB: 500, MaxAgeDays: 30}}, nil, zap.NewNop())

	removed, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if len(index.entries) != 2 {
		t.Errorf("%d entries remain, want 2", len(index.entries))
	}
	if _, err := os.Stat(filepath.Join(dir, "old.pdf")); !os.IsNotExist(err) {
		t.Error("expired blob still on disk")
	}
	for _, name := range []string{"edge.pdf", "fresh.pdf"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("blob %s should remain: %v", name, err)
		}
	}
}

func TestPurgeExpiredIgnoresMissingBlobs(t *testing.T) {
	dir := t.TempDir()
	index := &fakeIndex{entries: []models.DocumentCacheEntry{
		{FileID: "gone", Path: "gone.pdf", DownloadedAt: time.Now().AddDate(0, 0, -90)},
	}}

	svc := NewDocCacheService(dir, index, nil, nil,
		fixedSettings{prefs.CacheSettings{MaxSizeMB: 500, MaxAgeDays: 30}}, nil, zap.NewNop())

	removed, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("file errors must be best-effort: %v", err)
	}
	if removed != 1 || len(index.entries) != 0 {
		t.Errorf("index row not removed despite missing blob")
	}
}

func TestClearAllLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	index := &fakeIndex{entries: []models.DocumentCacheEntry{
		{FileID: "a", Path: "a.pdf", DownloadedAt: time.Now()},
		{FileID: "b", Path: "b.pdf", DownloadedAt: time.Now()},
	}}
	writeBlob(t, dir, "a.pdf")
	writeBlob(t, dir, "b.pdf")
	writeBlob(t, dir, "stray.tmp")

	svc := NewDocCacheService(dir, index, nil, nil,
		fixedSettings{prefs.CacheSettings{MaxSizeMB: 500, MaxAgeDays: 30}}, nil, zap.NewNop())

	if _, err := svc.ClearAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(index.entries) != 0 {
		t.Errorf("%d index rows remain", len(index.entries))
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("%d blobs remain on disk", len(files))
	}
}

type fakeDownloads struct {
	statuses []string
	lastErr  *string
}

func (f *fakeDownloads) Insert(_ context.Context, d *models.DownloadEntry) error {
	d.ID = uuid.New()
	f.statuses = append(f.statuses, d.Status)
	return nil
}

func (f *fakeDownloads) UpdateProgress(_ context.Context, _ uuid.UUID, _ int) error { return nil }

func (f *fakeDownloads) UpdateStatus(_ context.Context, _ uuid.UUID, status string, errMsg *string) error {
	f.statuses = append(f.statuses, status)
	f.lastErr = errMsg
	return nil
}

func (f *fakeDownloads) ListRecent(context.Context, int) ([]models.DownloadEntry, error) {
	return nil, nil
}

type fakeBlob struct {
	content     string
	contentType string
	err         error
}

func (f *fakeBlob) DownloadDocument(_ context.Context, _ string, w io.Writer) (string, int64, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	n, _ := io.WriteString(w, f.content)
	return f.contentType, int64(n), nil
}

func TestDownloadCachesBlobAndIndexes(t *testing.T) {
	dir := t.TempDir()
	index := &fakeIndex{}
	downloads := &fakeDownloads{}
	blob := &fakeBlob{
		content:     "<html><head><title>RFI Response</title></head><body>Approved.</body></html>",
		contentType: "text/html; charset=utf-8",
	}

	svc := NewDocCacheService(dir, index, downloads, blob,
		fixedSettings{prefs.CacheSettings{MaxSizeMB: 500, MaxAgeDays: 30}}, nil, zap.NewNop())

	doc, err := svc.Download(context.Background(), "doc-77", "rfi-response.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.SizeBytes != int64(len(blob.content)) {
		t.Errorf("size = %d, want %d", doc.SizeBytes, len(blob.content))
	}
	if doc.Title == nil || *doc.Title != "RFI Response" {
		t.Errorf("html metadata not attached: %v", doc.Title)
	}
	if len(index.entries) != 1 {
		t.Fatalf("index rows = %d, want 1", len(index.entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, doc.Path))
	if err != nil {
		t.Fatalf("blob not on disk: %v", err)
	}
	if string(data) != blob.content {
		t.Error("blob content mismatch")
	}
	last := downloads.statuses[len(downloads.statuses)-1]
	if last != models.DownloadStatusCompleted {
		t.Errorf("final download status = %q", last)
	}
}

func TestDownloadFailureRemovesPartialBlob(t *testing.T) {
	dir := t.TempDir()
	index := &fakeIndex{}
	downloads := &fakeDownloads{}
	blob := &fakeBlob{err: errors.New("upstream unavailable: EOF")}

	svc := NewDocCacheService(dir, index, downloads, blob,
		fixedSettings{prefs.CacheSettings{MaxSizeMB: 500, MaxAgeDays: 30}}, nil, zap.NewNop())

	if _, err := svc.Download(context.Background(), "doc-78", "plan.pdf"); err == nil {
		t.Fatal("expected error")
	}

	if len(index.entries) != 0 {
		t.Error("failed download was indexed")
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 0 {
		t.Error("partial blob left on disk")
	}
	if downloads.lastErr == nil {
		t.Error("failure message not recorded on download entry")
	}
}

func TestDownloadReturnsExistingEntryWithoutRefetch(t *testing.T) {
	dir := t.TempDir()
	index := &fakeIndex{entries: []models.DocumentCacheEntry{
		{FileID: "doc-1", FileName: "plan.pdf", Path: "doc-1.pdf", SizeBytes: 4, DownloadedAt: time.Now()},
	}}
	writeBlob(t, dir, "doc-1.pdf")
	blob := &fakeBlob{err: errors.New("must not be called")}

	svc := NewDocCacheService(dir, index, &fakeDownloads{}, blob,
		fixedSettings{prefs.CacheSettings{MaxSizeMB: 500, MaxAgeDays: 30}}, nil, zap.NewNop())

	doc, err := svc.Download(context.Background(), "doc-1", "plan.pdf")
	if err != nil {
		t.Fatalf("cached document should be served without upstream: %v", err)
	}
	if doc.Path != "doc-1.pdf" {
		t.Errorf("got %q, want the existing entry", doc.Path)
	}
}

func TestRemoveEvictsRowAndBlob(t *testing.T) {
	dir := t.TempDir()
	index := &fakeIndex{entries: []models.DocumentCacheEntry{
		{FileID: "doc-1", Path: "doc-1.pdf", DownloadedAt: time.Now()},
		{FileID: "doc-2", Path: "doc-2.pdf", DownloadedAt: time.Now()},
	}}
	writeBlob(t, dir, "doc-1.pdf")
	writeBlob(t, dir, "doc-2.pdf")

	svc := NewDocCacheService(dir, index, nil, nil,
		fixedSettings{prefs.CacheSettings{MaxSizeMB: 500, MaxAgeDays: 30}}, nil, zap.NewNop())

	if err := svc.Remove(context.Background(), "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(index.entries) != 1 || index.entries[0].FileID != "doc-2" {
		t.Errorf("wrong entry removed: %v", index.entries)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc-1.pdf")); !os.IsNotExist(err) {
		t.Error("blob still on disk")
	}
	if _, err := os.Stat(filepath.Join(dir, "doc-2.pdf")); err != nil {
		t.Error("untouched blob removed")
	}

	if err := svc.Remove(context.Background(), "doc-1"); err == nil {
		t.Error("removing a missing document should error")
	}
}

func TestBlobFileName(t *testing.T) {
	tests := []struct {
		fileID   string
		fileName string
		expected string
	}{
		{"doc-123", "site plan.pdf", "doc-123.pdf"},
		{"doc/../evil", "a.png", "doc_.._evil.png"},
		{"d1", "noext", "d1"},
		{"d2", "../../etc/passwd", "d2"},
	}

	for _, tt := range tests {
		t.Run(tt.fileID, func(t *testing.T) {
			if got := blobFileName(tt.fileID, tt.fileName); got != tt.expected {
				t.Errorf("blobFileName(%q, %q) = %q, want %q", tt.fileID, tt.fileName, got, tt.expected)
			}
		})
	}
}
