package handlers

import (
	"errors"

	"github.com/fieldsync/backend/internal/http/dto"
	"github.com/fieldsync/backend/internal/middleware"
	"github.com/fieldsync/backend/internal/models"
	"github.com/fieldsync/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PendingHandler struct {
	pendingService *services.PendingActionService
	log            *zap.Logger
}

func NewPendingHandler(pendingService *services.PendingActionService, log *zap.Logger) *PendingHandler {
	return &PendingHandler{pendingService: pendingService, log: log}
}

func (h *PendingHandler) ListPendingActions(c *fiber.Ctx) error {
	actions, err := h.pendingService.List(c.Context(), c.Query("status"))
	if err != nil {
		h.log.Error("pending action list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if actions == nil {
		actions = []models.PendingAction{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: actions})
}

// QueuePendingAction accepts a daily-log update from a device that could
// not reach the upstream directly.
func (h *PendingHandler) QueuePendingAction(c *fiber.Ctx) error {
	var req dto.QueueDailyLogUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	action, err := h.pendingService.QueueDailyLogUpdate(c.Context(), models.DailyLogUpdatePayload{
		DailyLogID:  req.DailyLogID,
		ProjectID:   req.ProjectID,
		LogDate:     req.LogDate,
		Notes:       req.Notes,
		Weather:     req.Weather,
		CrewCount:   req.CrewCount,
		HoursWorked: req.HoursWorked,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	h.log.Info("action queued by device",
		zap.String("device_id", middleware.GetDeviceID(c).String()),
		zap.String("action_id", action.ID.String()),
	)
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: action})
}

// GetPendingAction serves the edit form: the action row plus its decoded
// daily-log payload.
func (h *PendingHandler) GetPendingAction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid action id"})
	}

	action, payload, err := h.pendingService.GetDailyLogUpdate(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "pending action not found"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"action":  action,
		"payload": payload,
	}})
}

func (h *PendingHandler) RetryPendingAction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid action id"})
	}

	var req dto.RetryPendingActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	edits := services.DailyLogEdits{
		Notes:       req.Notes,
		Weather:     req.Weather,
		CrewCount:   req.CrewCount,
		HoursWorked: req.HoursWorked,
	}

	if err := h.pendingService.RetryDailyLogUpdate(c.Context(), id, edits); err != nil {
		if errors.Is(err, services.ErrActionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "pending action not found"})
		}
		h.log.Error("pending action retry failed", zap.String("action_id", id.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *PendingHandler) DiscardPendingAction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid action id"})
	}

	if err := h.pendingService.Discard(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrActionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "pending action not found"})
		}
		h.log.Error("pending action discard failed", zap.String("action_id", id.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}
