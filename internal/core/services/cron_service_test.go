package services

import (
	"context"
	"testing"
	"time"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/adapters/persistence/repositories"
	"guarantee-tracker/internal/config"
)

func TestCronServiceStart(t *testing.T) {
	auth, _, db := newAuthFixture(t)
	dashboard := NewDashboardService(repositories.NewGuaranteeRepository(db))

	bad := NewCronService(dashboard, auth, config.DigestConfig{Enabled: true, Schedule: "every morning"})
	if err := bad.Start(); err == nil {
		t.Error("Start should reject an invalid digest schedule")
	}

	good := NewCronService(dashboard, auth, config.DigestConfig{Enabled: true, Schedule: "30 8 * * *"})
	if err := good.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n := len(good.cron.Entries()); n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}
	good.Stop()
}

func TestCronServicePurgeTokens(t *testing.T) {
	auth, _, db := newAuthFixture(t)
	ctx := context.Background()

	tokens := repositories.NewRefreshTokenRepository(db)
	for _, expires := range []time.Time{time.Now().Add(-time.Hour), time.Now().Add(time.Hour)} {
		if err := tokens.Create(ctx, &models.RefreshToken{UserID: 1, TokenHash: expires.String(), ExpiresAt: expires}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	svc := NewCronService(NewDashboardService(repositories.NewGuaranteeRepository(db)), auth, config.DigestConfig{})
	svc.purgeTokens()
	svc.ExpiryDigest()

	var left int64
	db.Model(&models.RefreshToken{}).Count(&left)
	if left != 1 {
		t.Errorf("tokens left = %d, want 1", left)
	}
}
