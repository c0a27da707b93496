package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/adapters/persistence/repositories"
	"guarantee-tracker/internal/core/domain"

	"github.com/shopspring/decimal"
)

// TotalLabel names the summary row of a report
const TotalLabel = "الإجمالي"

// BankUsage is the utilisation of one bank's limit
type BankUsage struct {
	Bank         string  `json:"bank"`
	Count        int     `json:"count"`
	Limit        float64 `json:"limit"`
	Existing     float64 `json:"existing"`
	Unregistered float64 `json:"unregistered"`
	Total        float64 `json:"total"`
	Remaining    float64 `json:"remaining"`
	UsagePercent float64 `json:"usage_percent"`
}

// BankUsageReport is the bank limit report
type BankUsageReport struct {
	AsOf    string      `json:"as_of"`
	Banks   []BankUsage `json:"banks"`
	Summary BankUsage   `json:"summary"`
}

type usageAcc struct {
	count        int
	limit        decimal.Decimal
	existing     decimal.Decimal
	unregistered decimal.Decimal
}

func (a *usageAcc) usage(bank string) BankUsage {
	total := a.existing.Add(a.unregistered)
	remaining := a.limit.Sub(total)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	usage := 0.0
	if a.limit.IsPositive() {
		usage = percent(total, a.limit)
	}
	return BankUsage{
		Bank:         bank,
		Count:        a.count,
		Limit:        a.limit.InexactFloat64(),
		Existing:     a.existing.InexactFloat64(),
		Unregistered: a.unregistered.InexactFloat64(),
		Total:        total.InexactFloat64(),
		Remaining:    remaining.InexactFloat64(),
		UsagePercent: usage,
	}
}

// countsTowardLimit reports whether a display status consumes bank limit
func countsTowardLimit(status string) bool {
	switch status {
	case domain.StatusActive, domain.StatusNearExpiry, domain.StatusPendingConfirmation, domain.StatusUnregistered:
		return true
	}
	return false
}

// ComputeBankUsage computes per-bank utilisation over the non-cash rows
// that still consume limit, joined with every configured limit. Banks are
// sorted by total desc then name.
func ComputeBankUsage(rows []*models.Guarantee, limits []*models.BankLimit, today time.Time) []BankUsage {
	accs := make(map[string]*usageAcc)
	get := func(bank string) *usageAcc {
		acc, ok := accs[bank]
		if !ok {
			acc = &usageAcc{}
			accs[bank] = acc
		}
		return acc
	}

	for _, row := range rows {
		if row.CashFlag {
			continue
		}
		status := domain.ClassifyStatus(row.UserStatus, row.EndDate, today)
		if !countsTowardLimit(status) {
			continue
		}

		acc := get(groupKey(domain.NormalizeBank(row.GNo, row.Bank)))
		acc.count++
		amount := decimal.NewFromFloat(row.AmountValue())
		if status == domain.StatusUnregistered {
			acc.unregistered = acc.unregistered.Add(amount)
		} else {
			acc.existing = acc.existing.Add(amount)
		}
	}

	for _, l := range limits {
		name := domain.NormalizeBankName(l.BankName)
		if name == "" {
			continue
		}
		acc := get(name)
		acc.limit = acc.limit.Add(decimal.NewFromFloat(l.LimitAmount))
	}

	out := make([]BankUsage, 0, len(accs))
	for bank, acc := range accs {
		out = append(out, acc.usage(bank))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Bank < out[j].Bank
	})
	return out
}

// SummarizeBankUsage folds bank rows into one total row
func SummarizeBankUsage(banks []BankUsage) BankUsage {
	acc := usageAcc{}
	for _, b := range banks {
		acc.count += b.Count
		acc.limit = acc.limit.Add(decimal.NewFromFloat(b.Limit))
		acc.existing = acc.existing.Add(decimal.NewFromFloat(b.Existing))
		acc.unregistered = acc.unregistered.Add(decimal.NewFromFloat(b.Unregistered))
	}
	return acc.usage(TotalLabel)
}

// BankLimitService manages bank limits and the utilisation report
type BankLimitService struct {
	limitRepo     repositories.BankLimitRepository
	guaranteeRepo repositories.GuaranteeRepository
	now           func() time.Time
}

// NewBankLimitService creates a new bank limit service
func NewBankLimitService(limitRepo repositories.BankLimitRepository, guaranteeRepo repositories.GuaranteeRepository) *BankLimitService {
	return &BankLimitService{
		limitRepo:     limitRepo,
		guaranteeRepo: guaranteeRepo,
		now:           time.Now,
	}
}

// UpsertBankLimitInput sets the limit of one bank
type UpsertBankLimitInput struct {
	BankName    string  `json:"bank_name"`
	LimitAmount float64 `json:"limit_amount"`
}

// List lists configured limits
func (s *BankLimitService) List(ctx context.Context) ([]*models.BankLimit, error) {
	return s.limitRepo.List(ctx)
}

// Upsert creates or updates a bank limit
func (s *BankLimitService) Upsert(ctx context.Context, input *UpsertBankLimitInput) (*models.BankLimit, error) {
	name := strings.TrimSpace(input.BankName)
	if name == "" {
		return nil, domain.ErrEmptyBankName
	}
	if input.LimitAmount < 0 {
		return nil, domain.ErrNegativeLimit
	}

	limit, err := s.limitRepo.Upsert(ctx, name, input.LimitAmount)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Bank limit set: %s = %.3f", limit.BankName, limit.LimitAmount)
	return limit, nil
}

// Delete removes a bank limit
func (s *BankLimitService) Delete(ctx context.Context, id uint) error {
	if err := s.limitRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ Bank limit deleted: %d", id)
	return nil
}

// Report builds the bank limit utilisation report
func (s *BankLimitService) Report(ctx context.Context) (*BankUsageReport, error) {
	rows, err := s.guaranteeRepo.List(ctx, repositories.GuaranteeFilter{})
	if err != nil {
		return nil, err
	}
	limits, err := s.limitRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now()
	banks := ComputeBankUsage(rows, limits, today)
	return &BankUsageReport{
		AsOf:    today.Format(domain.DateLayout),
		Banks:   banks,
		Summary: SummarizeBankUsage(banks),
	}, nil
}
