package handlers

import (
	"errors"
	"log"

	"guarantee-tracker/internal/core/domain"
	"guarantee-tracker/internal/core/services"
	"guarantee-tracker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BankLimitHandler handles bank limit settings
type BankLimitHandler struct {
	bankLimitService *services.BankLimitService
}

// NewBankLimitHandler creates a new bank limit handler
func NewBankLimitHandler(bankLimitService *services.BankLimitService) *BankLimitHandler {
	return &BankLimitHandler{bankLimitService: bankLimitService}
}

// List handles listing bank limits
// @Summary List bank limits
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /settings/bank-limits [get]
func (h *BankLimitHandler) List(c *fiber.Ctx) error {
	limits, err := h.bankLimitService.List(c.UserContext())
	if err != nil {
		return response.InternalServerError(c, "Failed to list bank limits")
	}

	return response.Success(c, "Bank limits retrieved successfully", limits)
}

// Upsert handles setting the limit of a bank
// @Summary Set bank limit
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpsertBankLimitInput true "Bank limit"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /settings/bank-limits [put]
func (h *BankLimitHandler) Upsert(c *fiber.Ctx) error {
	var input services.UpsertBankLimitInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	limit, err := h.bankLimitService.Upsert(c.UserContext(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyBankName), errors.Is(err, domain.ErrNegativeLimit):
			return response.BadRequest(c, err.Error())
		default:
			log.Printf("❌ Bank limit upsert failed: %v", err)
			return response.InternalServerError(c, "Failed to save bank limit")
		}
	}

	return response.Success(c, "Bank limit saved successfully", limit)
}

// Delete handles removing a bank limit
// @Summary Delete bank limit
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bank limit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /settings/bank-limits/{id} [delete]
func (h *BankLimitHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid bank limit ID")
	}

	if err := h.bankLimitService.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, domain.ErrBankLimitNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to delete bank limit")
	}

	return response.Success(c, "Bank limit deleted successfully", nil)
}
