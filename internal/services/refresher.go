package services

import (
	"context"

	"go.uber.org/zap"
)

// CacheRefresher periodically warms the fallback cache so a device going
// offline has recent data to fall back on.
type CacheRefresher struct {
	audit   *AuditService
	clients *ClientService
	log     *zap.Logger
}

func NewCacheRefresher(audit *AuditService, clients *ClientService, log *zap.Logger) *CacheRefresher {
	return &CacheRefresher{audit: audit, clients: clients, log: log}
}

func (r *CacheRefresher) Sweep(ctx context.Context) {
	if err := r.audit.Refresh(ctx); err != nil {
		r.log.Warn("audit cache refresh failed", zap.Error(err))
	}
	if err := r.clients.Refresh(ctx); err != nil {
		r.log.Warn("client cache refresh failed", zap.Error(err))
	}
}
