package handlers

import (
	"github.com/fieldsync/backend/internal/http/dto"
	"github.com/fieldsync/backend/internal/models"
	"github.com/fieldsync/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CacheHandler struct {
	docCache *services.DocCacheService
	log      *zap.Logger
}

func NewCacheHandler(docCache *services.DocCacheService, log *zap.Logger) *CacheHandler {
	return &CacheHandler{docCache: docCache, log: log}
}

func (h *CacheHandler) ListDocuments(c *fiber.Ctx) error {
	entries, err := h.docCache.List(c.Context())
	if err != nil {
		h.log.Error("cache list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if entries == nil {
		entries = []models.DocumentCacheEntry{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *CacheHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.docCache.Stats(c.Context())
	if err != nil {
		h.log.Error("cache stats failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stats})
}

func (h *CacheHandler) ListDownloads(c *fiber.Ctx) error {
	entries, err := h.docCache.Downloads(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		h.log.Error("download list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if entries == nil {
		entries = []models.DownloadEntry{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *CacheHandler) DownloadDocument(c *fiber.Ctx) error {
	fileID := c.Params("fileId")
	if fileID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "file id is required"})
	}

	var req dto.DownloadDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.FileName == "" {
		req.FileName = fileID
	}

	entry, err := h.docCache.Download(c.Context(), fileID, req.FileName)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: entry})
}

func (h *CacheHandler) RemoveDocument(c *fiber.Ctx) error {
	fileID := c.Params("fileId")
	if fileID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "file id is required"})
	}

	if err := h.docCache.Remove(c.Context(), fileID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "document not in cache"})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

// PurgeExpired and ClearAll are the two manual eviction policies. Nothing
// evicts automatically.

func (h *CacheHandler) PurgeExpired(c *fiber.Ctx) error {
	removed, err := h.docCache.PurgeExpired(c.Context())
	if err != nil {
		h.log.Error("purge expired failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.PurgeResponse{OK: true, Removed: removed})
}

func (h *CacheHandler) ClearAll(c *fiber.Ctx) error {
	removed, err := h.docCache.ClearAll(c.Context())
	if err != nil {
		h.log.Error("cache clear failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.PurgeResponse{OK: true, Removed: removed})
}
