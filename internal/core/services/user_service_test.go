package services

import (
	"context"
	"errors"
	"testing"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/pkg/pagination"
	"guarantee-tracker/internal/pkg/password"
)

func TestUserServiceGuardsSelf(t *testing.T) {
	_, users, _ := newAuthFixture(t)
	ctx := context.Background()

	if err := users.DeleteUser(ctx, 1, 1); !errors.Is(err, ErrCannotDeleteSelf) {
		t.Errorf("self delete err = %v", err)
	}
	if _, err := users.SetRole(ctx, 1, 1, "user"); !errors.Is(err, ErrCannotChangeOwnRole) {
		t.Errorf("self role err = %v", err)
	}
	if _, err := users.SetActive(ctx, 1, 1, false); !errors.Is(err, ErrCannotDisableSelf) {
		t.Errorf("self disable err = %v", err)
	}
	if _, err := users.SetRole(ctx, 2, 1, "owner"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("invalid role err = %v", err)
	}
	if _, err := users.Approve(ctx, 42); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user err = %v", err)
	}
}

func TestUserServiceManage(t *testing.T) {
	auth, users, _ := newAuthFixture(t)
	ctx := context.Background()

	for _, name := range []string{"sara", "omar"} {
		if _, err := auth.Register(ctx, &RegisterInput{Username: name, Password: "password1"}); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}

	pending, err := users.ListPending(ctx)
	if err != nil || len(pending) != 2 {
		t.Fatalf("ListPending = %d, %v", len(pending), err)
	}

	var sara, omar *models.UserResponse
	for _, u := range pending {
		if u.Username == "sara" {
			sara = u
		} else {
			omar = u
		}
	}
	if _, err := users.Approve(ctx, sara.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	promoted, err := users.SetRole(ctx, sara.ID, 999, "admin")
	if err != nil || promoted.Role != "admin" {
		t.Fatalf("SetRole = %+v, %v", promoted, err)
	}

	if err := users.ResetPassword(ctx, sara.ID, "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak reset err = %v", err)
	}
	if err := users.ResetPassword(ctx, sara.ID, "new-password"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := auth.Login(ctx, &LoginInput{Username: sara.Username, Password: "new-password"}); err != nil {
		t.Errorf("Login after reset: %v", err)
	}

	out, err := users.ListUsers(ctx, pagination.NewParams(1, 10))
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(out.Users) != 2 || out.Meta.Total != 2 {
		t.Errorf("ListUsers = %d users, meta %+v", len(out.Users), out.Meta)
	}

	if err := users.DeleteUser(ctx, omar.ID, sara.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := users.GetProfile(ctx, omar.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("deleted user profile err = %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	_, users, db := newAuthFixture(t)
	ctx := context.Background()

	hash, _ := password.Hash("password1")
	user := &models.User{Username: "omar", PasswordHash: hash, Role: "user", Active: true, IsApproved: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name  string
		input ChangePasswordInput
		want  error
	}{
		{"wrong old password", ChangePasswordInput{OldPassword: "nope", NewPassword: "password2"}, ErrOldPasswordWrong},
		{"weak new password", ChangePasswordInput{OldPassword: "password1", NewPassword: "p"}, ErrWeakPassword},
		{"ok", ChangePasswordInput{OldPassword: "password1", NewPassword: "password2"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := users.ChangePassword(ctx, user.ID, &tt.input); !errors.Is(err, tt.want) {
				t.Errorf("ChangePassword err = %v, want %v", err, tt.want)
			}
		})
	}
}
