package handlers

import (
	"bytes"

	"guarantee-tracker/internal/core/services"
	"guarantee-tracker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SyncHandler receives desktop pushes
type SyncHandler struct {
	syncService *services.SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(syncService *services.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// Sync handles a desktop push
// @Summary Desktop sync
// @Description Replace guarantees and bank limits, add new users, in one transaction
// @Tags Sync
// @Accept json
// @Produce json
// @Param X-API-Key header string true "Sync API key"
// @Param body body services.SyncPayload true "Flat column maps per table"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /sync [post]
func (h *SyncHandler) Sync(c *fiber.Ctx) error {
	payload, err := services.DecodeSyncPayload(bytes.NewReader(c.Body()))
	if err != nil {
		return response.Failure(c, fiber.StatusBadRequest, "Invalid sync payload", err)
	}

	result, err := h.syncService.Sync(c.UserContext(), payload)
	if err != nil {
		return response.Failure(c, fiber.StatusInternalServerError, "Sync failed", err)
	}

	return response.Success(c, "Sync completed successfully", result)
}
