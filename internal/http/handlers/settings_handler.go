package handlers

import (
	"github.com/fieldsync/backend/internal/http/dto"
	"github.com/fieldsync/backend/internal/prefs"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SettingsHandler struct {
	prefs *prefs.Store
	log   *zap.Logger
}

func NewSettingsHandler(prefsStore *prefs.Store, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{prefs: prefsStore, log: log}
}

func (h *SettingsHandler) GetCacheSettings(c *fiber.Ctx) error {
	settings, err := h.prefs.Get(c.Context())
	if err != nil {
		h.log.Error("settings read failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: settings})
}

func (h *SettingsHandler) UpdateCacheSettings(c *fiber.Ctx) error {
	var req dto.UpdateCacheSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	settings := prefs.CacheSettings{MaxSizeMB: req.MaxSizeMB, MaxAgeDays: req.MaxAgeDays}
	if err := prefs.ValidateCacheSettings(settings); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	if err := h.prefs.Set(c.Context(), settings); err != nil {
		h.log.Error("settings write failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: settings})
}
