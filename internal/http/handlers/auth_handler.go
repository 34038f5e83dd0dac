package handlers

import (
	"github.com/fieldsync/backend/internal/auth"
	"github.com/fieldsync/backend/internal/config"
	"github.com/fieldsync/backend/internal/http/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthHandler struct {
	cfg *config.Config
	log *zap.Logger
}

func NewAuthHandler(cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, log: log}
}

// DeviceAuth exchanges a pre-shared device key for a JWT. Device identity
// is minted per session; the gateway does not track device inventory.
func (h *AuthHandler) DeviceAuth(c *fiber.Ctx) error {
	var req dto.AuthDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	if !h.cfg.IsKnownDeviceKey(req.DeviceKey) {
		h.log.Debug("device auth rejected")
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown device key"})
	}

	deviceID := uuid.New()
	token, err := auth.GenerateJWT(h.cfg.JWTSecret, deviceID, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to generate jwt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(dto.AuthResponse{Token: token, DeviceID: deviceID.String()})
}
