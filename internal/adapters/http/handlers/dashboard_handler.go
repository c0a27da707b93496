package handlers

import (
	"errors"
	"log"
	"net/url"

	"guarantee-tracker/internal/core/domain"
	"guarantee-tracker/internal/core/services"
	"guarantee-tracker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard and report endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
	bankLimitService *services.BankLimitService
	reportService    *services.ReportService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	dashboardService *services.DashboardService,
	bankLimitService *services.BankLimitService,
	reportService *services.ReportService,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		bankLimitService: bankLimitService,
		reportService:    reportService,
	}
}

// GetDashboard returns dashboard data
// @Summary Dashboard
// @Description Status, bank and department breakdowns of the active guarantees
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetDashboard(c.UserContext())
	if err != nil {
		log.Printf("❌ Dashboard failed: %v", err)
		return response.InternalServerError(c, "Failed to get dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}

// GetBankLimitReport returns bank limit utilisation
// @Summary Bank limit report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reports/bank-limits [get]
func (h *DashboardHandler) GetBankLimitReport(c *fiber.Ctx) error {
	report, err := h.bankLimitService.Report(c.UserContext())
	if err != nil {
		log.Printf("❌ Bank limit report failed: %v", err)
		return response.InternalServerError(c, "Failed to build bank limit report")
	}

	return response.Success(c, "Bank limit report retrieved successfully", report)
}

// ListDepartments returns the departments that have guarantees
// @Summary List departments
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reports/departments [get]
func (h *DashboardHandler) ListDepartments(c *fiber.Ctx) error {
	depts, err := h.reportService.Departments(c.UserContext())
	if err != nil {
		log.Printf("❌ List departments failed: %v", err)
		return response.InternalServerError(c, "Failed to list departments")
	}
	if depts == nil {
		depts = []string{}
	}

	return response.Success(c, "Departments retrieved successfully", depts)
}

// GetDepartmentStatement returns the open guarantees of a department grouped by bank
// @Summary Department statement
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param name path string true "Department name"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /reports/departments/{name} [get]
func (h *DashboardHandler) GetDepartmentStatement(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return response.BadRequest(c, "Invalid department name")
	}

	st, err := h.reportService.DepartmentStatement(c.UserContext(), name)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Department name is required")
		}
		log.Printf("❌ Department statement failed: %v", err)
		return response.InternalServerError(c, "Failed to build department statement")
	}

	return response.Success(c, "Department statement retrieved successfully", st)
}
