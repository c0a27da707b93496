package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"guarantee-tracker/internal/core/domain"
	"guarantee-tracker/internal/core/services"
	"guarantee-tracker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// GuaranteeHandler handles guarantee endpoints
type GuaranteeHandler struct {
	guaranteeService *services.GuaranteeService
}

// NewGuaranteeHandler creates a new guarantee handler
func NewGuaranteeHandler(guaranteeService *services.GuaranteeService) *GuaranteeHandler {
	return &GuaranteeHandler{guaranteeService: guaranteeService}
}

// List handles the guarantee table view
// @Summary List guarantees
// @Description Search and filter guarantees. Search terms separated by * are OR-ed.
// @Tags Guarantees
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search terms separated by *"
// @Param status query string false "Display status"
// @Param bank query string false "Bank"
// @Param department query string false "Department"
// @Param cash query string false "1 for cash only, 0 for non-cash only"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Items per page" default(50)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /guarantees [get]
func (h *GuaranteeHandler) List(c *fiber.Ctx) error {
	cash, err := parseOptionalBool(c.Query("cash"))
	if err != nil {
		return response.BadRequest(c, "cash must be 0 or 1")
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	out, err := h.guaranteeService.List(c.UserContext(), &services.ListGuaranteesInput{
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		Bank:       c.Query("bank"),
		Department: c.Query("department"),
		Cash:       cash,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		log.Printf("❌ List guarantees failed: %v", err)
		return response.InternalServerError(c, "Failed to list guarantees")
	}

	return response.Success(c, "Guarantees retrieved successfully", out)
}

// Get handles fetching one guarantee
// @Summary Get guarantee
// @Tags Guarantees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Guarantee ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /guarantees/{id} [get]
func (h *GuaranteeHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid guarantee ID")
	}

	g, err := h.guaranteeService.GetByID(c.UserContext(), id)
	if err != nil {
		return guaranteeError(c, err)
	}

	return response.Success(c, "Guarantee retrieved successfully", g)
}

// Create handles creating a guarantee
// @Summary Create guarantee
// @Tags Guarantees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.GuaranteeInput true "Guarantee"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /guarantees [post]
func (h *GuaranteeHandler) Create(c *fiber.Ctx) error {
	var input services.GuaranteeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	g, err := h.guaranteeService.Create(c.UserContext(), &input)
	if err != nil {
		return guaranteeError(c, err)
	}

	return response.Created(c, "Guarantee created successfully", g)
}

// Update handles replacing a guarantee
// @Summary Update guarantee
// @Tags Guarantees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Guarantee ID"
// @Param body body services.GuaranteeInput true "Guarantee"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /guarantees/{id} [put]
func (h *GuaranteeHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid guarantee ID")
	}

	var input services.GuaranteeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	g, err := h.guaranteeService.Update(c.UserContext(), id, &input)
	if err != nil {
		return guaranteeError(c, err)
	}

	return response.Success(c, "Guarantee updated successfully", g)
}

// Delete handles deleting a guarantee
// @Summary Delete guarantee
// @Tags Guarantees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Guarantee ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /guarantees/{id} [delete]
func (h *GuaranteeHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid guarantee ID")
	}

	if err := h.guaranteeService.Delete(c.UserContext(), id); err != nil {
		return guaranteeError(c, err)
	}

	return response.Success(c, "Guarantee deleted successfully", nil)
}

// Bulk handles bulk actions over selected guarantees
// @Summary Bulk action
// @Description delete, mark_file or clear_status over many guarantees
// @Tags Guarantees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BulkActionInput true "Action and IDs"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /guarantees/bulk [post]
func (h *GuaranteeHandler) Bulk(c *fiber.Ctx) error {
	var input services.BulkActionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	affected, err := h.guaranteeService.BulkAction(c.UserContext(), &input)
	if err != nil {
		return guaranteeError(c, err)
	}

	return response.Success(c, "Bulk action applied", fiber.Map{
		"action":   input.Action,
		"affected": affected,
	})
}

// Attachments lists the files attached to a guarantee
// @Summary List attachments
// @Tags Guarantees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Guarantee ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /guarantees/{id}/attachments [get]
func (h *GuaranteeHandler) Attachments(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid guarantee ID")
	}

	attachments, err := h.guaranteeService.Attachments(c.UserContext(), id)
	if err != nil {
		return guaranteeError(c, err)
	}

	return response.Success(c, "Attachments retrieved successfully", attachments)
}

// guaranteeError maps guarantee errors to responses
func guaranteeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrGuaranteeNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrDuplicateGNo):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrEmptyGNo),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidBulkAction),
		errors.Is(err, domain.ErrEmptySelection):
		return response.BadRequest(c, err.Error())
	default:
		log.Printf("❌ Guarantee operation failed: %v", err)
		return response.InternalServerError(c, "Failed to process guarantee")
	}
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func parseOptionalBool(s string) (*bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
