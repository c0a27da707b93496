package handlers

import (
	"errors"
	"log"
	"strconv"

	"guarantee-tracker/internal/adapters/http/middleware"
	"guarantee-tracker/internal/core/services"
	"guarantee-tracker/internal/pkg/pagination"
	"guarantee-tracker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SetUserRoleRequest represents set user role request
type SetUserRoleRequest struct {
	Role string `json:"role"`
}

// SetUserActiveRequest represents set user active request
type SetUserActiveRequest struct {
	Active bool `json:"active"`
}

// ResetPasswordRequest represents an admin password reset
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ChangePasswordRequest represents change password request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ListUsers handles listing all users (Admin only)
// @Summary List all users
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(50)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /settings/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	result, err := h.userService.ListUsers(c.UserContext(), pagination.GetParams(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", result)
}

// ListPending handles listing users waiting for approval (Admin only)
// @Summary List pending users
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /settings/users/pending [get]
func (h *UserHandler) ListPending(c *fiber.Ctx) error {
	users, err := h.userService.ListPending(c.UserContext())
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending users")
	}

	return response.Success(c, "Pending users retrieved successfully", users)
}

// Approve handles approving a pending user (Admin only)
// @Summary Approve user
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /settings/users/{id}/approve [post]
func (h *UserHandler) Approve(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.Approve(c.UserContext(), id)
	if err != nil {
		return userError(c, err)
	}

	return response.Success(c, "User approved successfully", user)
}

// SetUserRole handles setting user role (Admin only)
// @Summary Set user role
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetUserRoleRequest true "Role data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /settings/users/{id}/role [put]
func (h *UserHandler) SetUserRole(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}
	adminID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req SetUserRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.SetRole(c.UserContext(), id, adminID, req.Role)
	if err != nil {
		return userError(c, err)
	}

	return response.Success(c, "User role updated successfully", user)
}

// SetUserActive handles enabling or disabling a user (Admin only)
// @Summary Set user active flag
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetUserActiveRequest true "Active flag"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /settings/users/{id}/active [put]
func (h *UserHandler) SetUserActive(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}
	adminID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req SetUserActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.SetActive(c.UserContext(), id, adminID, req.Active)
	if err != nil {
		return userError(c, err)
	}

	return response.Success(c, "User updated successfully", user)
}

// ResetPassword handles an admin password reset
// @Summary Reset user password
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body ResetPasswordRequest true "New password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /settings/users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.ResetPassword(c.UserContext(), id, req.NewPassword); err != nil {
		return userError(c, err)
	}

	return response.Success(c, "Password reset successfully", nil)
}

// DeleteUser handles deleting a user (Admin only)
// @Summary Delete user
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /settings/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}
	adminID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.userService.DeleteUser(c.UserContext(), id, adminID); err != nil {
		return userError(c, err)
	}

	return response.Success(c, "User deleted successfully", nil)
}

// ChangePassword handles changing own password
// @Summary Change password
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Password data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.OldPassword == "" {
		return response.BadRequest(c, "Old password is required")
	}
	if req.NewPassword == "" {
		return response.BadRequest(c, "New password is required")
	}

	err := h.userService.ChangePassword(c.UserContext(), id, &services.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return userError(c, err)
	}

	return response.Success(c, "Password changed successfully", nil)
}

// userError maps user service errors to responses
func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, services.ErrCannotDeleteSelf),
		errors.Is(err, services.ErrCannotChangeOwnRole),
		errors.Is(err, services.ErrCannotDisableSelf),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrOldPasswordWrong):
		return response.BadRequest(c, err.Error())
	default:
		log.Printf("❌ User operation failed: %v", err)
		return response.InternalServerError(c, "Failed to process user")
	}
}

func userID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
