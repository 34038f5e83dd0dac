package models

import "time"

// DocumentCacheEntry is an index row for a document blob held on local disk.
// The blob itself lives under the configured cache directory; Path is relative
// to that directory.
type DocumentCacheEntry struct {
	FileID       string    `json:"file_id"`
	FileName     string    `json:"file_name"`
	Path         string    `json:"path"`
	SizeBytes    int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type"`
	Title        *string   `json:"title,omitempty"`
	TextSnippet  *string   `json:"text_snippet,omitempty"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

type CacheStats struct {
	EntryCount     int   `json:"entry_count"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}
