package handlers

import (
	"github.com/fieldsync/backend/internal/http/dto"
	"github.com/fieldsync/backend/internal/models"
	"github.com/fieldsync/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuditHandler struct {
	auditService *services.AuditService
	log          *zap.Logger
}

func NewAuditHandler(auditService *services.AuditService, log *zap.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, log: log}
}

// ListAuditLogs serves the audit-log screen. The response carries the
// offline flag so the client can badge cached data.
func (h *AuditHandler) ListAuditLogs(c *fiber.Ctx) error {
	resourceType := c.Query("resource_type")

	logs, offline, err := h.auditService.List(c.Context(), resourceType)
	if err != nil {
		h.log.Warn("audit log load failed", zap.String("resource_type", resourceType), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	if logs == nil {
		logs = []models.AuditLog{}
	}
	return c.JSON(dto.ListResponse{OK: true, Offline: offline, Data: logs})
}
