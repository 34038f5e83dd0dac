package services

import (
	"context"

	"github.com/fieldsync/backend/internal/fallback"
	"github.com/fieldsync/backend/internal/models"
	"go.uber.org/zap"
)

type auditFetcher interface {
	GetAuditLogs(ctx context.Context, resourceType string) ([]models.AuditLog, error)
}

type auditCache interface {
	UpsertMany(ctx context.Context, logs []models.AuditLog) error
	ListByResourceType(ctx context.Context, resourceType string) ([]models.AuditLog, error)
}

type AuditService struct {
	upstream auditFetcher
	cache    auditCache
	log      *zap.Logger
}

func NewAuditService(upstream auditFetcher, cache auditCache, log *zap.Logger) *AuditService {
	return &AuditService{upstream: upstream, cache: cache, log: log}
}

// List fetches audit logs for the given resource-type filter, falling back
// to the local cache when the upstream is unreachable. The bool result is
// the offline flag.
func (s *AuditService) List(ctx context.Context, resourceType string) ([]models.AuditLog, bool, error) {
	out, err := fallback.Load(ctx,
		func(ctx context.Context) ([]models.AuditLog, error) {
			return s.upstream.GetAuditLogs(ctx, resourceType)
		},
		func(ctx context.Context) ([]models.AuditLog, bool, error) {
			cached, err := s.cache.ListByResourceType(ctx, resourceType)
			return cached, len(cached) > 0, err
		},
		func(ctx context.Context, logs []models.AuditLog) error {
			if err := s.cache.UpsertMany(ctx, logs); err != nil {
				s.log.Warn("audit cache write failed", zap.Error(err))
				return err
			}
			return nil
		},
	)
	return out.Data, out.Offline, err
}

// Refresh warms the cache with an unfiltered fetch. Used by the worker.
func (s *AuditService) Refresh(ctx context.Context) error {
	logs, err := s.upstream.GetAuditLogs(ctx, "")
	if err != nil {
		return err
	}
	return s.cache.UpsertMany(ctx, logs)
}
