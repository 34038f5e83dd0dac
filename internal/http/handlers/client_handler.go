package handlers

import (
	"github.com/fieldsync/backend/internal/http/dto"
	"github.com/fieldsync/backend/internal/models"
	"github.com/fieldsync/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientService *services.ClientService
	log           *zap.Logger
}

func NewClientHandler(clientService *services.ClientService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{clientService: clientService, log: log}
}

func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	status := c.Query("status")

	clients, offline, err := h.clientService.List(c.Context(), status)
	if err != nil {
		h.log.Warn("client list load failed", zap.String("status", status), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	if clients == nil {
		clients = []models.Client{}
	}
	return c.JSON(dto.ListResponse{OK: true, Offline: offline, Data: clients})
}

func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid client id"})
	}

	client, offline, err := h.clientService.Get(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "client not found"})
	}

	return c.JSON(dto.ListResponse{OK: true, Offline: offline, Data: client})
}

func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var req dto.CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	if req.CompanyName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "company_name is required"})
	}

	client := &models.Client{
		CompanyName:  req.CompanyName,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Zip:          req.Zip,
		Status:       req.Status,
	}

	created, err := h.clientService.Create(c.Context(), client)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: created})
}

func (h *ClientHandler) UpdateClient(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid client id"})
	}

	var req dto.UpdateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	client := &models.Client{
		ID:           id,
		CompanyName:  req.CompanyName,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Zip:          req.Zip,
		Status:       req.Status,
	}

	updated, err := h.clientService.Update(c.Context(), client)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: updated})
}

func (h *ClientHandler) DeleteClient(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid client id"})
	}

	if err := h.clientService.Delete(c.Context(), id); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}
