package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fieldsync/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeAuditUpstream struct {
	logs []models.AuditLog
	err  error
}

func (f *fakeAuditUpstream) GetAuditLogs(_ context.Context, resourceType string) ([]models.AuditLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	if resourceType == "" {
		return f.logs, nil
	}
	var out []models.AuditLog
	for _, l := range f.logs {
		if l.ResourceType == resourceType {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeAuditCache struct {
	rows map[uuid.UUID]models.AuditLog
}

func (f *fakeAuditCache) UpsertMany(_ context.Context, logs []models.AuditLog) error {
	if f.rows == nil {
		f.rows = map[uuid.UUID]models.AuditLog{}
	}
	for _, l := range logs {
		f.rows[l.ID] = l
	}
	return nil
}

func (f *fakeAuditCache) ListByResourceType(_ context.Context, resourceType string) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for _, l := range f.rows {
		if resourceType == "" || l.ResourceType == resourceType {
			out = append(out, l)
		}
	}
	return out, nil
}

func auditLog(resourceType string) models.AuditLog {
	return models.AuditLog{
		ID:           uuid.New(),
		Action:       "updated",
		ActorName:    "J. Alvarez",
		ActorRole:    "foreman",
		ResourceType: resourceType,
		ResourceName: "Daily Log #12",
		Timestamp:    time.Now(),
	}
}

func TestAuditListOnlineRefreshesCache(t *testing.T) {
	remote := auditLog("daily_log")
	upstream := &fakeAuditUpstream{logs: []models.AuditLog{remote}}
	cache := &fakeAuditCache{rows: map[uuid.UUID]models.AuditLog{}}
	svc := NewAuditService(upstream, cache, zap.NewNop())

	logs, offline, err := svc.List(context.Background(), "daily_log")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offline {
		t.Error("offline flag set on successful fetch")
	}
	if len(logs) != 1 || logs[0].ID != remote.ID {
		t.Errorf("got %v, want remote result", logs)
	}
	if _, ok := cache.rows[remote.ID]; !ok {
		t.Error("cache not refreshed on success")
	}
}

func TestAuditListOfflineFallsBackPerFilter(t *testing.T) {
	cachedDaily := auditLog("daily_log")
	cachedClient := auditLog("client")
	upstream := &fakeAuditUpstream{err: errors.New("upstream unavailable: dial tcp")}
	cache := &fakeAuditCache{rows: map[uuid.UUID]models.AuditLog{
		cachedDaily.ID:  cachedDaily,
		cachedClient.ID: cachedClient,
	}}
	svc := NewAuditService(upstream, cache, zap.NewNop())

	logs, offline, err := svc.List(context.Background(), "daily_log")
	if err != nil {
		t.Fatalf("error should be suppressed on cache hit: %v", err)
	}
	if !offline {
		t.Error("offline flag not set on fallback")
	}
	if len(logs) != 1 || logs[0].ID != cachedDaily.ID {
		t.Errorf("fallback did not honor the resource-type filter: %v", logs)
	}
}

func TestAuditListOfflineEmptyCacheSurfacesError(t *testing.T) {
	fetchErr := errors.New("upstream unavailable: dial tcp")
	svc := NewAuditService(&fakeAuditUpstream{err: fetchErr}, &fakeAuditCache{}, zap.NewNop())

	logs, offline, err := svc.List(context.Background(), "daily_log")
	if !errors.Is(err, fetchErr) {
		t.Fatalf("got %v, want the fetch error", err)
	}
	if offline {
		t.Error("offline flag set with empty cache")
	}
	if len(logs) != 0 {
		t.Errorf("got %v, want empty", logs)
	}
}
