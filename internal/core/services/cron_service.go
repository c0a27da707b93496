package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"guarantee-tracker/internal/config"

	"github.com/robfig/cron/v3"
)

// tokenPurgeSchedule runs the refresh token cleanup daily at 03:00
const tokenPurgeSchedule = "0 3 * * *"

// jobTimeout bounds one run of a background job
const jobTimeout = 2 * time.Minute

// CronService runs the scheduled background jobs
type CronService struct {
	cron      *cron.Cron
	dashboard *DashboardService
	auth      *AuthService
	digest    config.DigestConfig
}

// NewCronService creates a new cron service
func NewCronService(dashboard *DashboardService, auth *AuthService, digest config.DigestConfig) *CronService {
	return &CronService{
		cron:      cron.New(),
		dashboard: dashboard,
		auth:      auth,
		digest:    digest,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(tokenPurgeSchedule, s.purgeTokens); err != nil {
		return fmt.Errorf("token purge job: %w", err)
	}

	if s.digest.Enabled {
		if _, err := s.cron.AddFunc(s.digest.Schedule, s.ExpiryDigest); err != nil {
			return fmt.Errorf("expiry digest job %q: %w", s.digest.Schedule, err)
		}
		log.Printf("⏰ Expiry digest scheduled: %s", s.digest.Schedule)
	}

	s.cron.Start()
	log.Println("🚀 CronService started")
	return nil
}

// Stop waits for running jobs and stops the scheduler
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 CronService stopped")
}

// ExpiryDigest logs the guarantees that need attention today
func (s *CronService) ExpiryDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	data, err := s.dashboard.GetDashboard(ctx)
	if err != nil {
		log.Printf("❌ Expiry digest failed: %v", err)
		return
	}

	log.Printf("📋 Expiry digest %s: %d near expiry (%.3f), %d pending confirmation (%.3f)",
		data.AsOf,
		data.NearExpiry.Count, data.NearExpiry.Amount,
		data.PendingConfirmation.Count, data.PendingConfirmation.Amount,
	)
}

func (s *CronService) purgeTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.auth.PurgeExpiredTokens(ctx)
	if err != nil {
		log.Printf("❌ Refresh token purge failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("✅ Purged %d expired refresh tokens", n)
	}
}
