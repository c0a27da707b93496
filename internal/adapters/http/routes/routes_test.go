package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"guarantee-tracker/internal/adapters/http/middleware"
	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/config"
	"guarantee-tracker/internal/pkg/password"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const syncKey = "desk-key"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	password.Cost = bcrypt.MinCost
	t.Cleanup(func() { password.Cost = password.DefaultCost })

	db, err := config.Open(sqlite.Open(":memory:"), false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Sync:  config.SyncConfig{APIKey: syncKey},
		Admin: config.AdminConfig{Username: "admin", Password: "admin-pass-1"},
	}
	if err := config.NewSeeder(db, cfg).Run(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	Setup(app, db, NewServices(db, cfg), cfg)
	return app, db
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func login(t *testing.T, app *fiber.App, username, pass string) string {
	t.Helper()
	status, env := do(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": username, "password": pass}, nil)
	if status != http.StatusOK {
		t.Fatalf("login %s = %d %s", username, status, env.Error)
	}
	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.AccessToken == "" {
		t.Fatalf("login payload: %s", env.Data)
	}
	return data.AccessToken
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Checks["database"] != "healthy" || body.Checks["driver"] != "sqlite" {
		t.Errorf("checks = %v", body.Checks)
	}
}

func TestSyncRequiresAPIKey(t *testing.T) {
	app, _ := newTestApp(t)
	payload := map[string]interface{}{
		"guarantees": []map[string]interface{}{
			{"id": 1, "g_no": "LG-1", "amount": 100, "bank": "برقان"},
			{"id": 2, "g_no": "LG-2", "amount": "2,000", "cash_flag": "1"},
		},
	}

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"valid key", map[string]string{"X-API-Key": syncKey}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, http.MethodPost, "/api/sync", payload, tt.headers)
			if status != tt.want {
				t.Errorf("status = %d (%s), want %d", status, env.Error, tt.want)
			}
		})
	}

	status, env := do(t, app, http.MethodPost, "/api/sync", map[string]interface{}{
		"guarantees": []map[string]interface{}{{"g_no": "X", "amount": "abc"}},
	}, map[string]string{"X-API-Key": syncKey})
	if status != http.StatusInternalServerError || env.Error == "" {
		t.Errorf("bad row = %d %q", status, env.Error)
	}
}

func TestGuaranteeRoutes(t *testing.T) {
	app, _ := newTestApp(t)

	if status, _ := do(t, app, http.MethodGet, "/api/v1/guarantees", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("anonymous list = %d, want 401", status)
	}

	auth := bearer(login(t, app, "admin", "admin-pass-1"))
	input := map[string]interface{}{"g_no": "LG-1", "bank": "برقان", "amount": 500, "end_date": "2099-01-01"}

	status, env := do(t, app, http.MethodPost, "/api/v1/guarantees", input, auth)
	if status != http.StatusCreated {
		t.Fatalf("create = %d %s", status, env.Error)
	}
	var created models.Guarantee
	if err := json.Unmarshal(env.Data, &created); err != nil || created.ID == 0 {
		t.Fatalf("created payload: %s", env.Data)
	}

	if status, _ := do(t, app, http.MethodPost, "/api/v1/guarantees", input, auth); status != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", status)
	}
	bad := map[string]interface{}{"g_no": "LG-2", "end_date": "tomorrow"}
	if status, _ := do(t, app, http.MethodPost, "/api/v1/guarantees", bad, auth); status != http.StatusBadRequest {
		t.Errorf("invalid date = %d, want 400", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/api/v1/guarantees/999", nil, auth); status != http.StatusNotFound {
		t.Errorf("missing guarantee = %d, want 404", status)
	}

	status, env = do(t, app, http.MethodGet, "/api/v1/dashboard", nil, auth)
	if status != http.StatusOK {
		t.Fatalf("dashboard = %d %s", status, env.Error)
	}
	var dash struct {
		NetActiveCount int `json:"net_active_count"`
	}
	json.Unmarshal(env.Data, &dash)
	if dash.NetActiveCount != 1 {
		t.Errorf("net_active_count = %d, want 1", dash.NetActiveCount)
	}

	if status, _ := do(t, app, http.MethodGet, "/api/v1/reports/bank-limits", nil, auth); status != http.StatusOK {
		t.Errorf("bank limit report = %d", status)
	}
}

func TestSettingsRequireAdmin(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"username": "sara", "password": "password1"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("register = %d", status)
	}
	if status, _ := do(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "sara", "password": "password1"}, nil); status != http.StatusForbidden {
		t.Errorf("pending login = %d, want 403", status)
	}

	admin := bearer(login(t, app, "admin", "admin-pass-1"))
	status, env := do(t, app, http.MethodGet, "/api/v1/settings/users/pending", nil, admin)
	if status != http.StatusOK {
		t.Fatalf("pending = %d %s", status, env.Error)
	}
	var pending []models.UserResponse
	if err := json.Unmarshal(env.Data, &pending); err != nil || len(pending) != 1 {
		t.Fatalf("pending payload: %s", env.Data)
	}

	path := "/api/v1/settings/users/" + strconv.FormatUint(uint64(pending[0].ID), 10) + "/approve"
	if status, _ := do(t, app, http.MethodPost, path, nil, admin); status != http.StatusOK {
		t.Fatalf("approve = %d", status)
	}

	user := bearer(login(t, app, "sara", "password1"))
	if status, _ := do(t, app, http.MethodGet, "/api/v1/settings/users", nil, user); status != http.StatusForbidden {
		t.Errorf("non-admin settings = %d, want 403", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/api/v1/auth/me", nil, user); status != http.StatusOK {
		t.Errorf("me = %d", status)
	}
}
