package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"guarantee-tracker/internal/config"
	"guarantee-tracker/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func TestSyncAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		want       int
	}{
		{"match", "k1", "k1", http.StatusOK},
		{"mismatch", "k1", "k2", http.StatusUnauthorized},
		{"missing header", "k1", "", http.StatusUnauthorized},
		{"sync disabled", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			cfg := &config.Config{Sync: config.SyncConfig{APIKey: tt.configured}}
			app.Post("/sync", SyncAPIKey(cfg), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/sync", nil)
			if tt.sent != "" {
				req.Header.Set("X-API-Key", tt.sent)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAuthAndRoleMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "secret"}}
	app := fiber.New()
	app.Get("/me", AuthMiddleware(cfg), func(c *fiber.Ctx) error {
		id, ok := UserID(c)
		if !ok || id != 7 {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/admin", AuthMiddleware(cfg), AdminOnly(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	userToken, err := jwt.GenerateAccessToken(7, "sara", "user", "secret", 15)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	adminToken, _ := jwt.GenerateAccessToken(1, "admin", "admin", "secret", 15)
	foreignToken, _ := jwt.GenerateAccessToken(7, "sara", "user", "other-secret", 15)

	tests := []struct {
		name   string
		path   string
		token  string
		cookie bool
		want   int
	}{
		{"no token", "/me", "", false, http.StatusUnauthorized},
		{"bearer", "/me", userToken, false, http.StatusOK},
		{"cookie", "/me", userToken, true, http.StatusOK},
		{"wrong secret", "/me", foreignToken, false, http.StatusUnauthorized},
		{"user on admin route", "/admin", userToken, false, http.StatusForbidden},
		{"admin on admin route", "/admin", adminToken, false, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			switch {
			case tt.token == "":
			case tt.cookie:
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.token})
			default:
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/docs", CacheControl(10*time.Minute), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/api", NoStore(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	tests := map[string]string{
		"/docs": "public, max-age=600",
		"/api":  "no-store",
	}
	for path, want := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		if got := resp.Header.Get("Cache-Control"); got != want {
			t.Errorf("%s Cache-Control = %q, want %q", path, got, want)
		}
	}
}
