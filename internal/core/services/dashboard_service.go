package services

import (
	"context"
	"time"

	"guarantee-tracker/internal/adapters/persistence/repositories"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	guaranteeRepo repositories.GuaranteeRepository
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(guaranteeRepo repositories.GuaranteeRepository) *DashboardService {
	return &DashboardService{
		guaranteeRepo: guaranteeRepo,
		now:           time.Now,
	}
}

// GetDashboard returns dashboard statistics over every stored guarantee
func (s *DashboardService) GetDashboard(ctx context.Context) (*DashboardData, error) {
	rows, err := s.guaranteeRepo.List(ctx, repositories.GuaranteeFilter{})
	if err != nil {
		return nil, err
	}
	return BuildDashboard(rows, s.now()), nil
}
