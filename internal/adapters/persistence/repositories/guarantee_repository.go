package repositories

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/core/domain"

	"gorm.io/gorm"
)

// searchColumns are matched with LIKE for every search term
var searchColumns = []string{"g_no", "beneficiary", "requester", "project_name", "notes", "entry_number"}

// guaranteeRepository implements GuaranteeRepository interface
type guaranteeRepository struct {
	db *gorm.DB
}

// NewGuaranteeRepository creates a new guarantee repository
func NewGuaranteeRepository(db *gorm.DB) GuaranteeRepository {
	return &guaranteeRepository{db: db}
}

// Create inserts a guarantee. A g_no collision yields domain.ErrDuplicateGNo.
func (r *guaranteeRepository) Create(ctx context.Context, g *models.Guarantee) error {
	return translate(r.db.WithContext(ctx).Create(g).Error)
}

// GetByID gets a guarantee by ID
func (r *guaranteeRepository) GetByID(ctx context.Context, id uint) (*models.Guarantee, error) {
	var g models.Guarantee
	if err := r.db.WithContext(ctx).First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGuaranteeNotFound
		}
		return nil, err
	}
	return &g, nil
}

// Update saves every column of the guarantee
func (r *guaranteeRepository) Update(ctx context.Context, g *models.Guarantee) error {
	return translate(r.db.WithContext(ctx).Save(g).Error)
}

// Delete removes a guarantee together with its attachments
func (r *guaranteeRepository) Delete(ctx context.Context, id uint) error {
	affected, err := r.deleteByIDs(ctx, []uint{id})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrGuaranteeNotFound
	}
	return nil
}

// ExistsByGNo checks whether another guarantee already uses gNo
func (r *guaranteeRepository) ExistsByGNo(ctx context.Context, gNo string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Guarantee{}).Where("g_no = ?", gNo)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// List returns the guarantees matching filter, newest first
func (r *guaranteeRepository) List(ctx context.Context, filter GuaranteeFilter) ([]*models.Guarantee, error) {
	q := r.db.WithContext(ctx).Model(&models.Guarantee{})

	q = r.applySearch(q, filter.Search)
	if bank := strings.TrimSpace(filter.Bank); bank != "" {
		q = q.Where("bank = ?", bank)
	}
	if dept := strings.TrimSpace(filter.Department); dept != "" {
		q = q.Where("department = ?", dept)
	}
	if filter.Cash != nil {
		if *filter.Cash {
			q = q.Where("cash_flag = ?", 1)
		} else {
			q = q.Where("COALESCE(cash_flag, 0) = ?", 0)
		}
	}

	var rows []*models.Guarantee
	err := q.Order("id DESC").Find(&rows).Error
	return rows, err
}

// ListByDepartment returns every guarantee of one department
func (r *guaranteeRepository) ListByDepartment(ctx context.Context, department string) ([]*models.Guarantee, error) {
	var rows []*models.Guarantee
	err := r.db.WithContext(ctx).
		Where("department = ?", department).
		Order("bank ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// Departments lists distinct non-empty department names
func (r *guaranteeRepository) Departments(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.Guarantee{}).
		Where("department IS NOT NULL AND department <> ''").
		Distinct("department").
		Order("department ASC").
		Pluck("department", &names).Error
	return names, err
}

// Count counts all guarantees
func (r *guaranteeRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Guarantee{}).Count(&total).Error
	return total, err
}

// ApplyBulkAction runs action over ids and reports the affected rows
func (r *guaranteeRepository) ApplyBulkAction(ctx context.Context, action domain.BulkAction, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.ErrEmptySelection
	}

	var column, value string
	switch action {
	case domain.BulkDelete:
		return r.deleteByIDs(ctx, ids)
	case domain.BulkMarkFile:
		column, value = "delivery_status", domain.FiledMarker
	case domain.BulkClearStatus:
		column, value = "user_status", ""
	default:
		return 0, domain.ErrInvalidBulkAction
	}

	result := r.db.WithContext(ctx).
		Model(&models.Guarantee{}).
		Where("id IN ?", ids).
		Update(column, value)
	return result.RowsAffected, result.Error
}

// Attachments lists the files attached to a guarantee number
func (r *guaranteeRepository) Attachments(ctx context.Context, gNo string) ([]*models.Attachment, error) {
	var rows []*models.Attachment
	err := r.db.WithContext(ctx).Where("g_no = ?", gNo).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *guaranteeRepository) deleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gNos []string
		if err := tx.Model(&models.Guarantee{}).Where("id IN ?", ids).Pluck("g_no", &gNos).Error; err != nil {
			return err
		}
		if len(gNos) > 0 {
			if err := tx.Where("g_no IN ?", gNos).Delete(&models.Attachment{}).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id IN ?", ids).Delete(&models.Guarantee{})
		affected = result.RowsAffected
		return result.Error
	})
	return affected, err
}

// applySearch ORs the search terms together. Each term matches the text
// columns by substring and, when numeric, the amount columns exactly.
func (r *guaranteeRepository) applySearch(q *gorm.DB, search string) *gorm.DB {
	terms := SplitSearchTerms(search)
	if len(terms) == 0 {
		return q
	}

	op := "LIKE"
	if r.db.Dialector.Name() == "postgres" {
		op = "ILIKE"
	}

	var clauses []string
	var args []interface{}
	for _, term := range terms {
		like := "%" + term + "%"
		parts := make([]string, 0, len(searchColumns)+2)
		for _, col := range searchColumns {
			parts = append(parts, col+" "+op+" ?")
			args = append(args, like)
		}
		if amount, ok := ParseSearchAmount(term); ok {
			parts = append(parts, "amount = ?", "insurance_amount = ?")
			args = append(args, amount, amount)
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}

	return q.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// SplitSearchTerms splits a search on '*' into trimmed non-empty terms.
func SplitSearchTerms(search string) []string {
	var terms []string
	for _, t := range strings.Split(search, "*") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// ParseSearchAmount reads a term as a number, tolerating Arabic digits
// and thousands separators.
func ParseSearchAmount(term string) (float64, bool) {
	s := domain.TranslateDigits(term)
	s = strings.NewReplacer(",", "", "٬", "", "٫", ".").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateGNo
	}
	return err
}
