package services

import (
	"context"
	"fmt"

	"github.com/fieldsync/backend/internal/fallback"
	"github.com/fieldsync/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type clientAPI interface {
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	GetClients(ctx context.Context, status string) ([]models.Client, error)
	CreateClient(ctx context.Context, client *models.Client) (*models.Client, error)
	UpdateClient(ctx context.Context, client *models.Client) (*models.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

type clientCache interface {
	Upsert(ctx context.Context, c *models.Client) error
	UpsertMany(ctx context.Context, clients []models.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListByStatus(ctx context.Context, status string) ([]models.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ClientService struct {
	upstream clientAPI
	cache    clientCache
	log      *zap.Logger
}

func NewClientService(upstream clientAPI, cache clientCache, log *zap.Logger) *ClientService {
	return &ClientService{upstream: upstream, cache: cache, log: log}
}

// Get loads one client with cache fallback. The bool result is the offline flag.
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*models.Client, bool, error) {
	out, err := fallback.Load(ctx,
		func(ctx context.Context) (*models.Client, error) {
			return s.upstream.GetClient(ctx, id)
		},
		func(ctx context.Context) (*models.Client, bool, error) {
			cached, err := s.cache.GetByID(ctx, id)
			if err != nil {
				return nil, false, err
			}
			return cached, true, nil
		},
		func(ctx context.Context, c *models.Client) error {
			return s.cache.Upsert(ctx, c)
		},
	)
	return out.Data, out.Offline, err
}

// List loads clients for the given status filter with cache fallback.
func (s *ClientService) List(ctx context.Context, status string) ([]models.Client, bool, error) {
	if status != "" && !models.IsValidClientStatus(status) {
		return nil, false, fmt.Errorf("invalid client status %q", status)
	}

	out, err := fallback.Load(ctx,
		func(ctx context.Context) ([]models.Client, error) {
			return s.upstream.GetClients(ctx, status)
		},
		func(ctx context.Context) ([]models.Client, bool, error) {
			cached, err := s.cache.ListByStatus(ctx, status)
			return cached, len(cached) > 0, err
		},
		func(ctx context.Context, clients []models.Client) error {
			return s.cache.UpsertMany(ctx, clients)
		},
	)
	return out.Data, out.Offline, err
}

// Writes go straight upstream; the cache only mirrors confirmed state.

func (s *ClientService) Create(ctx context.Context, c *models.Client) (*models.Client, error) {
	if c.CompanyName == "" {
		return nil, fmt.Errorf("company_name is required")
	}
	if c.Status == "" {
		c.Status = models.ClientStatusActive
	}
	if !models.IsValidClientStatus(c.Status) {
		return nil, fmt.Errorf("invalid client status %q", c.Status)
	}

	created, err := s.upstream.CreateClient(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Upsert(ctx, created); err != nil {
		s.log.Warn("client cache write failed", zap.Error(err))
	}
	return created, nil
}

func (s *ClientService) Update(ctx context.Context, c *models.Client) (*models.Client, error) {
	if c.Status != "" && !models.IsValidClientStatus(c.Status) {
		return nil, fmt.Errorf("invalid client status %q", c.Status)
	}

	updated, err := s.upstream.UpdateClient(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Upsert(ctx, updated); err != nil {
		s.log.Warn("client cache write failed", zap.Error(err))
	}
	return updated, nil
}

func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.upstream.DeleteClient(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("client cache delete failed", zap.Error(err))
	}
	return nil
}

// Refresh warms the cache with an unfiltered fetch. Used by the worker.
func (s *ClientService) Refresh(ctx context.Context) error {
	clients, err := s.upstream.GetClients(ctx, "")
	if err != nil {
		return err
	}
	return s.cache.UpsertMany(ctx, clients)
}
