package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fieldsync/backend/internal/models"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5000, zap.NewNop()), srv
}

func TestGetAuditLogsSendsAPIKeyAndFilter(t *testing.T) {
	var gotPath, gotKey, gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		gotQuery = r.URL.Query().Get("resource_type")
		json.NewEncoder(w).Encode([]models.AuditLog{{Action: "update", ResourceType: "daily_log"}})
	})

	logs, err := client.GetAuditLogs(context.Background(), "daily_log")
	if err != nil {
		t.Fatalf("GetAuditLogs: %v", err)
	}
	if gotPath != "/api/audit-logs" {
		t.Errorf("path = %q, want /api/audit-logs", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("X-API-Key = %q, want test-key", gotKey)
	}
	if gotQuery != "daily_log" {
		t.Errorf("resource_type = %q, want daily_log", gotQuery)
	}
	if len(logs) != 1 || logs[0].Action != "update" {
		t.Errorf("unexpected logs: %+v", logs)
	}
}

func TestGetClientsNon200IsError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := client.GetClients(context.Background(), ""); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestTransportErrorIsWrappedUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", 200, zap.NewNop())

	_, err := client.GetClients(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !strings.Contains(err.Error(), "upstream unavailable") {
		t.Errorf("error = %v, want wrapped as upstream unavailable", err)
	}
}

func TestUpdateDailyLogEscapesID(t *testing.T) {
	var gotPath, gotMethod string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	})

	err := client.UpdateDailyLog(context.Background(), models.DailyLogUpdatePayload{
		DailyLogID: "log/7",
		ProjectID:  "p1",
		LogDate:    "2026-08-30",
	})
	if err != nil {
		t.Fatalf("UpdateDailyLog: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}
	if gotPath != "/api/daily-logs/log%2F7" {
		t.Errorf("path = %q, want escaped id", gotPath)
	}
}

func TestDownloadDocumentStreamsBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("pdf-bytes"))
	})

	var buf bytes.Buffer
	ct, n, err := client.DownloadDocument(context.Background(), "doc-1", &buf)
	if err != nil {
		t.Fatalf("DownloadDocument: %v", err)
	}
	if ct != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", ct)
	}
	if n != int64(len("pdf-bytes")) || buf.String() != "pdf-bytes" {
		t.Errorf("got %d bytes %q", n, buf.String())
	}
}
