package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/adapters/persistence/repositories"
	"guarantee-tracker/internal/core/domain"
	"guarantee-tracker/internal/pkg/password"

	"github.com/google/uuid"
)

// Row is one flat column map as sent by the desktop client
type Row map[string]interface{}

// SyncPayload is the desktop push. An absent key leaves its table alone.
type SyncPayload struct {
	Guarantees []Row `json:"guarantees"`
	Users      []Row `json:"users"`
	BankLimits []Row `json:"bank_limits"`
}

// SyncResult reports a completed sync
type SyncResult struct {
	SyncID            string    `json:"sync_id"`
	SyncedAt          time.Time `json:"synced_at"`
	GuaranteesSkipped int       `json:"guarantees_skipped"`
	// SkippedRows holds the payload indexes of guarantees sent without a number
	SkippedRows []int `json:"skipped_rows,omitempty"`

	repositories.SyncCounts
}

// SyncService merges desktop pushes into the store
type SyncService struct {
	syncRepo repositories.SyncRepository
}

// NewSyncService creates a new sync service
func NewSyncService(syncRepo repositories.SyncRepository) *SyncService {
	return &SyncService{syncRepo: syncRepo}
}

// DecodeSyncPayload reads a push body. Numbers stay json.Number so large ids
// are kept exact.
func DecodeSyncPayload(r io.Reader) (*SyncPayload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var payload SyncPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Sync decodes the payload and applies it in one transaction
func (s *SyncService) Sync(ctx context.Context, payload *SyncPayload) (*SyncResult, error) {
	syncID := uuid.New().String()
	batch := &repositories.SyncBatch{}
	var skipped []int

	if payload.Guarantees != nil {
		batch.Guarantees = make([]*models.Guarantee, 0, len(payload.Guarantees))
		for i, row := range payload.Guarantees {
			g, err := decodeGuarantee(row)
			if err != nil {
				return nil, fmt.Errorf("guarantee row %d: %w", i, err)
			}
			if g == nil {
				skipped = append(skipped, i)
				continue
			}
			batch.Guarantees = append(batch.Guarantees, g)
		}
	}

	if payload.Users != nil {
		batch.Users = make([]*models.User, 0, len(payload.Users))
		for _, row := range payload.Users {
			u, err := decodeUser(row)
			if err != nil {
				return nil, err
			}
			if u != nil {
				batch.Users = append(batch.Users, u)
			}
		}
	}

	if payload.BankLimits != nil {
		limits, err := decodeBankLimits(payload.BankLimits)
		if err != nil {
			return nil, err
		}
		batch.BankLimits = limits
	}

	counts, err := s.syncRepo.Apply(ctx, batch)
	if err != nil {
		log.Printf("❌ Sync %s failed: %v", syncID, err)
		return nil, err
	}

	if len(skipped) > 0 {
		log.Printf("⚠️ Sync %s skipped %d guarantees without a number, rows %v", syncID, len(skipped), skipped)
	}
	log.Printf("✅ Sync %s: %d guarantees, %d new users, %d bank limits",
		syncID, counts.Guarantees, counts.UsersAdded, counts.BankLimits)

	return &SyncResult{
		SyncID:            syncID,
		SyncedAt:          time.Now(),
		GuaranteesSkipped: len(skipped),
		SkippedRows:       skipped,
		SyncCounts:        *counts,
	}, nil
}

// decodeGuarantee maps a desktop row onto the model. Rows without a
// guarantee number return nil.
func decodeGuarantee(row Row) (*models.Guarantee, error) {
	gNo := strings.TrimSpace(row.str("g_no"))
	if gNo == "" {
		return nil, nil
	}

	id, err := row.id()
	if err != nil {
		return nil, err
	}
	cash, err := row.flag("cash_flag")
	if err != nil {
		return nil, err
	}

	g := &models.Guarantee{
		ID:             id,
		Department:     row.str("department"),
		Bank:           row.str("bank"),
		GNo:            gNo,
		GType:          row.str("g_type"),
		Beneficiary:    row.str("beneficiary"),
		Requester:      row.str("requester"),
		ProjectName:    row.str("project_name"),
		IssueDate:      row.str("issue_date"),
		EndDate:        row.str("end_date"),
		UserStatus:     row.str("user_status"),
		CashFlag:       cash,
		Attachment:     row.str("attachment"),
		DeliveryStatus: row.str("delivery_status"),
		RecipientName:  row.str("recipient_name"),
		Notes:          row.str("notes"),
		EntryNumber:    row.str("entry_number"),
	}
	for col, dst := range map[string]**float64{
		"amount":           &g.Amount,
		"insurance_amount": &g.InsuranceAmount,
		"percent":          &g.Percent,
	} {
		if *dst, err = row.float(col); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// decodeUser maps a desktop user row. The password hash is kept as sent;
// rows without a username return nil.
func decodeUser(row Row) (*models.User, error) {
	username := strings.TrimSpace(row.str("username"))
	if username == "" {
		return nil, nil
	}

	hash := row.str("password_hash")
	if hash == "" {
		hash = row.str("pass_hash")
	}
	if hash != "" && !password.IsHash(hash) && !password.IsLegacyHash(hash) {
		log.Printf("⚠️ Synced user %s has an unrecognised password hash and cannot log in", username)
	}

	role := strings.TrimSpace(row.str("role"))
	if !domain.IsValidRole(role) {
		role = string(domain.RoleUser)
	}

	active := models.Flag(true)
	if v, ok := row["active"]; ok && v != nil {
		f, err := row.flag("active")
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", username, err)
		}
		active = f
	}
	approved, err := row.flag("is_approved")
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", username, err)
	}

	u := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Active:       bool(active),
		IsApproved:   bool(approved),
	}
	if email := strings.TrimSpace(row.str("email")); email != "" {
		u.Email = &email
	}
	return u, nil
}

// decodeBankLimits keeps the last row per bank name. A missing amount is
// stored as zero, an unreadable one fails the push.
func decodeBankLimits(rows []Row) ([]*models.BankLimit, error) {
	index := make(map[string]int)
	out := make([]*models.BankLimit, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.str("bank_name"))
		if name == "" {
			continue
		}
		v, err := row.float("limit_amount")
		if err != nil {
			return nil, fmt.Errorf("bank limit %s: %w", name, err)
		}
		amount := 0.0
		if v != nil {
			amount = *v
		}
		if i, ok := index[name]; ok {
			out[i].LimitAmount = amount
			continue
		}
		index[name] = len(out)
		out = append(out, &models.BankLimit{BankName: name, LimitAmount: amount})
	}
	return out, nil
}

func (r Row) str(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func (r Row) float(col string) (*float64, error) {
	var f float64
	switch v := r[col].(type) {
	case nil:
		return nil, nil
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", col, err)
		}
		f = n
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid number %q", col, v)
		}
		f = n
	default:
		return nil, fmt.Errorf("%s: unsupported value %T", col, v)
	}
	return &f, nil
}

func (r Row) flag(col string) (models.Flag, error) {
	v := r[col]
	if n, ok := v.(json.Number); ok {
		v = n.String()
	}
	f, err := models.ParseFlag(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", col, err)
	}
	return f, nil
}

// id returns the row id, zero when absent or null
func (r Row) id() (uint, error) {
	if n, ok := r["id"].(json.Number); ok {
		if id, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return uint(id), nil
		}
	}
	v, err := r.float("id")
	if err != nil || v == nil {
		return 0, err
	}
	if *v < 0 || *v != float64(uint(*v)) {
		return 0, fmt.Errorf("id: invalid value %v", *v)
	}
	return uint(*v), nil
}
