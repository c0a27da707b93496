package services

import (
	"context"
	"strings"
	"time"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/adapters/persistence/repositories"
	"guarantee-tracker/internal/core/domain"

	"github.com/shopspring/decimal"
)

// finalKeywords mark a user status as closed for department statements.
// Matching is done on letter-normalized text.
var finalKeywords = normalizeAll(
	"افراج", "إفراج", "مردود", "ملغى", "ملغي", "إلغاء", "الغاء",
	"مصادر", "مصادرة", "انتهاء الغرض", "منتهي",
)

func normalizeAll(words ...string) []string {
	out := make([]string, 0, len(words))
	seen := make(map[string]bool)
	for _, w := range words {
		n := domain.NormalizeArabic(w)
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// IsFinalStatus reports whether a user status closes a guarantee
func IsFinalStatus(userStatus string) bool {
	norm := domain.NormalizeArabic(strings.TrimSpace(userStatus))
	if norm == "" {
		return false
	}
	for _, k := range finalKeywords {
		if strings.Contains(norm, k) {
			return true
		}
	}
	return false
}

// StatementLine is one guarantee of a department statement
type StatementLine struct {
	GNo         string  `json:"g_no"`
	GType       string  `json:"g_type"`
	Amount      float64 `json:"amount"`
	Beneficiary string  `json:"beneficiary"`
	ProjectName string  `json:"project_name"`
	EndDate     string  `json:"end_date"`
	CashFlag    bool    `json:"cash_flag"`
}

// StatementBank groups the statement lines of one bank
type StatementBank struct {
	Bank  string          `json:"bank"`
	Lines []StatementLine `json:"lines"`
	Total float64         `json:"total"`
}

// DepartmentStatement lists the open guarantees of a department by bank
type DepartmentStatement struct {
	Department string          `json:"department"`
	AsOf       string          `json:"as_of"`
	Banks      []StatementBank `json:"banks"`
	Count      int             `json:"count"`
	GrandTotal float64         `json:"grand_total"`
}

// BuildStatement groups the open rows by bank. Banks keep first-seen order.
func BuildStatement(department string, rows []*models.Guarantee, today time.Time) *DepartmentStatement {
	st := &DepartmentStatement{
		Department: department,
		AsOf:       today.Format(domain.DateLayout),
		Banks:      []StatementBank{},
	}

	index := make(map[string]int)
	totals := []decimal.Decimal{}
	grand := decimal.Zero

	for _, row := range rows {
		if IsFinalStatus(row.UserStatus) {
			continue
		}

		bank := groupKey(row.Bank)
		i, ok := index[bank]
		if !ok {
			i = len(st.Banks)
			index[bank] = i
			st.Banks = append(st.Banks, StatementBank{Bank: bank, Lines: []StatementLine{}})
			totals = append(totals, decimal.Zero)
		}

		amount := decimal.NewFromFloat(row.AmountValue())
		totals[i] = totals[i].Add(amount)
		grand = grand.Add(amount)
		st.Count++
		st.Banks[i].Lines = append(st.Banks[i].Lines, StatementLine{
			GNo:         row.GNo,
			GType:       row.GType,
			Amount:      row.AmountValue(),
			Beneficiary: row.Beneficiary,
			ProjectName: row.ProjectName,
			EndDate:     row.EndDate,
			CashFlag:    bool(row.CashFlag),
		})
	}

	for i := range st.Banks {
		st.Banks[i].Total = totals[i].InexactFloat64()
	}
	st.GrandTotal = grand.InexactFloat64()
	return st
}

// ReportService builds the department reports
type ReportService struct {
	guaranteeRepo repositories.GuaranteeRepository
	now           func() time.Time
}

// NewReportService creates a new report service
func NewReportService(guaranteeRepo repositories.GuaranteeRepository) *ReportService {
	return &ReportService{
		guaranteeRepo: guaranteeRepo,
		now:           time.Now,
	}
}

// Departments lists the distinct non-empty departments
func (s *ReportService) Departments(ctx context.Context) ([]string, error) {
	return s.guaranteeRepo.Departments(ctx)
}

// DepartmentStatement builds the open-guarantee statement of one department
func (s *ReportService) DepartmentStatement(ctx context.Context, department string) (*DepartmentStatement, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, domain.ErrInvalidInput
	}

	rows, err := s.guaranteeRepo.ListByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}
	return BuildStatement(department, rows, s.now()), nil
}
