package services

import (
	"context"
	"log"
	"strings"
	"time"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/adapters/persistence/repositories"
	"guarantee-tracker/internal/core/domain"
	"guarantee-tracker/internal/pkg/pagination"
)

// GuaranteeService handles guarantee CRUD and the table view
type GuaranteeService struct {
	guaranteeRepo repositories.GuaranteeRepository
	now           func() time.Time
}

// NewGuaranteeService creates a new guarantee service
func NewGuaranteeService(guaranteeRepo repositories.GuaranteeRepository) *GuaranteeService {
	return &GuaranteeService{
		guaranteeRepo: guaranteeRepo,
		now:           time.Now,
	}
}

// GuaranteeInput carries the editable columns of a guarantee
type GuaranteeInput struct {
	GNo             string      `json:"g_no"`
	Department      string      `json:"department"`
	Bank            string      `json:"bank"`
	GType           string      `json:"g_type"`
	Amount          *float64    `json:"amount"`
	InsuranceAmount *float64    `json:"insurance_amount"`
	Percent         *float64    `json:"percent"`
	Beneficiary     string      `json:"beneficiary"`
	Requester       string      `json:"requester"`
	ProjectName     string      `json:"project_name"`
	IssueDate       string      `json:"issue_date"`
	EndDate         string      `json:"end_date"`
	UserStatus      string      `json:"user_status"`
	CashFlag        models.Flag `json:"cash_flag"`
	Attachment      string      `json:"attachment"`
	DeliveryStatus  string      `json:"delivery_status"`
	RecipientName   string      `json:"recipient_name"`
	Notes           string      `json:"notes"`
	EntryNumber     string      `json:"entry_number"`
}

func (in *GuaranteeInput) validate() error {
	in.GNo = strings.TrimSpace(in.GNo)
	if in.GNo == "" {
		return domain.ErrEmptyGNo
	}
	for _, d := range []*string{&in.IssueDate, &in.EndDate} {
		*d = strings.TrimSpace(*d)
		if *d == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, *d); err != nil {
			return domain.ErrInvalidDate
		}
	}
	return nil
}

func (in *GuaranteeInput) applyTo(g *models.Guarantee) {
	g.GNo = in.GNo
	g.Department = strings.TrimSpace(in.Department)
	g.Bank = strings.TrimSpace(in.Bank)
	g.GType = in.GType
	g.Amount = in.Amount
	g.InsuranceAmount = in.InsuranceAmount
	g.Percent = in.Percent
	g.Beneficiary = in.Beneficiary
	g.Requester = in.Requester
	g.ProjectName = in.ProjectName
	g.IssueDate = in.IssueDate
	g.EndDate = in.EndDate
	g.UserStatus = strings.TrimSpace(in.UserStatus)
	g.CashFlag = in.CashFlag
	g.Attachment = in.Attachment
	g.DeliveryStatus = in.DeliveryStatus
	g.RecipientName = in.RecipientName
	g.Notes = in.Notes
	g.EntryNumber = in.EntryNumber
}

// ListGuaranteesInput represents the table view query
type ListGuaranteesInput struct {
	Search     string
	Status     string
	Bank       string
	Department string
	Cash       *bool
	Page       int
	Limit      int
}

// ListGuaranteesOutput represents one page of the table view
type ListGuaranteesOutput struct {
	Guarantees []*models.Guarantee `json:"guarantees"`
	Meta       *pagination.Meta    `json:"meta"`
}

// List returns one page of guarantees, each carrying its display status.
// Status filters on the display status.
func (s *GuaranteeService) List(ctx context.Context, input *ListGuaranteesInput) (*ListGuaranteesOutput, error) {
	rows, err := s.guaranteeRepo.List(ctx, repositories.GuaranteeFilter{
		Search:     input.Search,
		Bank:       input.Bank,
		Department: input.Department,
		Cash:       input.Cash,
	})
	if err != nil {
		return nil, err
	}

	today := s.now()
	status := strings.TrimSpace(input.Status)
	filtered := make([]*models.Guarantee, 0, len(rows))
	for _, g := range rows {
		g.DisplayStatus = domain.ClassifyStatus(g.UserStatus, g.EndDate, today)
		if status != "" && g.DisplayStatus != status {
			continue
		}
		filtered = append(filtered, g)
	}

	params := pagination.NewParams(input.Page, input.Limit)
	start, end := params.Window(len(filtered))

	return &ListGuaranteesOutput{
		Guarantees: filtered[start:end],
		Meta:       pagination.GetMeta(params, int64(len(filtered))),
	}, nil
}

// GetByID gets a guarantee by ID
func (s *GuaranteeService) GetByID(ctx context.Context, id uint) (*models.Guarantee, error) {
	g, err := s.guaranteeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g.DisplayStatus = domain.ClassifyStatus(g.UserStatus, g.EndDate, s.now())
	return g, nil
}

// Create creates a new guarantee
func (s *GuaranteeService) Create(ctx context.Context, input *GuaranteeInput) (*models.Guarantee, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	exists, err := s.guaranteeRepo.ExistsByGNo(ctx, input.GNo, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateGNo
	}

	g := &models.Guarantee{}
	input.applyTo(g)
	if err := s.guaranteeRepo.Create(ctx, g); err != nil {
		return nil, err
	}

	g.DisplayStatus = domain.ClassifyStatus(g.UserStatus, g.EndDate, s.now())
	log.Printf("✅ Guarantee created: %s (ID: %d)", g.GNo, g.ID)
	return g, nil
}

// Update replaces the editable columns of a guarantee
func (s *GuaranteeService) Update(ctx context.Context, id uint, input *GuaranteeInput) (*models.Guarantee, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	g, err := s.guaranteeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.GNo != g.GNo {
		exists, err := s.guaranteeRepo.ExistsByGNo(ctx, input.GNo, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateGNo
		}
	}

	input.applyTo(g)
	if err := s.guaranteeRepo.Update(ctx, g); err != nil {
		return nil, err
	}

	g.DisplayStatus = domain.ClassifyStatus(g.UserStatus, g.EndDate, s.now())
	log.Printf("✅ Guarantee updated: %s (ID: %d)", g.GNo, g.ID)
	return g, nil
}

// Delete deletes a guarantee with its attachments
func (s *GuaranteeService) Delete(ctx context.Context, id uint) error {
	if err := s.guaranteeRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("✅ Guarantee deleted: %d", id)
	return nil
}

// BulkActionInput selects guarantees for a bulk action
type BulkActionInput struct {
	Action domain.BulkAction `json:"action"`
	IDs    []uint            `json:"ids"`
}

// BulkAction applies one action to many guarantees
func (s *GuaranteeService) BulkAction(ctx context.Context, input *BulkActionInput) (int64, error) {
	if !input.Action.Valid() {
		return 0, domain.ErrInvalidBulkAction
	}
	if len(input.IDs) == 0 {
		return 0, domain.ErrEmptySelection
	}

	affected, err := s.guaranteeRepo.ApplyBulkAction(ctx, input.Action, input.IDs)
	if err != nil {
		return 0, err
	}

	log.Printf("✅ Bulk %s applied to %d guarantees", input.Action, affected)
	return affected, nil
}

// Attachments lists the attachments of a guarantee
func (s *GuaranteeService) Attachments(ctx context.Context, id uint) ([]*models.Attachment, error) {
	g, err := s.guaranteeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.guaranteeRepo.Attachments(ctx, g.GNo)
}
