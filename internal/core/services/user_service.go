package services

import (
	"context"
	"errors"
	"log"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/adapters/persistence/repositories"
	"guarantee-tracker/internal/core/domain"
	"guarantee-tracker/internal/pkg/pagination"
	"guarantee-tracker/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrOldPasswordWrong    = errors.New("old password is incorrect")
	ErrCannotDeleteSelf    = errors.New("cannot delete your own account")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
	ErrCannotDisableSelf   = errors.New("cannot deactivate your own account")
	ErrInvalidRole         = errors.New("invalid role")
)

// UserService handles user management business logic
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users []*models.UserResponse `json:"users"`
	Meta  *pagination.Meta       `json:"meta"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, params *pagination.Params) (*ListUsersOutput, error) {
	users, total, err := s.userRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	return &ListUsersOutput{
		Users: toResponses(users),
		Meta:  pagination.GetMeta(params, total),
	}, nil
}

// ListPending lists users waiting for approval
func (s *UserService) ListPending(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := s.userRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(users), nil
}

// Approve lets a pending user log in
func (s *UserService) Approve(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsApproved = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User approved: %s", user.Username)
	return user.ToResponse(), nil
}

// SetRole changes the role of another user
func (s *UserService) SetRole(ctx context.Context, id, adminID uint, role string) (*models.UserResponse, error) {
	if id == adminID {
		return nil, ErrCannotChangeOwnRole
	}
	if !domain.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User %s role set to %s", user.Username, role)
	return user.ToResponse(), nil
}

// SetActive enables or disables another user. Disabling revokes its sessions.
func (s *UserService) SetActive(ctx context.Context, id, adminID uint, active bool) (*models.UserResponse, error) {
	if id == adminID && !active {
		return nil, ErrCannotDisableSelf
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Active = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if !active {
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, id); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ User %s active=%v", user.Username, active)
	return user.ToResponse(), nil
}

// ResetPassword sets a new password for a user and ends its sessions
func (s *UserService) ResetPassword(ctx context.Context, id uint, newPassword string) error {
	if !password.ValidatePassword(newPassword) {
		return ErrWeakPassword
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ Password reset for user: %s", user.Username)
	return s.refreshTokenRepo.RevokeAllByUserID(ctx, id)
}

// DeleteUser removes a user and its sessions
func (s *UserService) DeleteUser(ctx context.Context, id, adminID uint) error {
	if id == adminID {
		return ErrCannotDeleteSelf
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ User deleted: %s", user.Username)
	return nil
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// ChangePassword changes user's password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}

	if !password.Verify(input.OldPassword, user.PasswordHash) {
		return ErrOldPasswordWrong
	}
	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashed
	return s.userRepo.Update(ctx, user)
}

func (s *UserService) get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func toResponses(users []*models.User) []*models.UserResponse {
	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out
}
