package services

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/adapters/persistence/repositories"
)

func TestDecodeGuarantee(t *testing.T) {
	g, err := decodeGuarantee(Row{
		"id":        float64(12),
		"g_no":      " LG-1 ",
		"amount":    "1,250.5",
		"percent":   json.Number("10"),
		"cash_flag": "1",
		"bank":      "برقان",
		"notes":     nil,
	})
	if err != nil {
		t.Fatalf("decodeGuarantee: %v", err)
	}
	if g.ID != 12 || g.GNo != "LG-1" || g.Bank != "برقان" || !bool(g.CashFlag) {
		t.Errorf("decoded = %+v", g)
	}
	if g.Amount == nil || *g.Amount != 1250.5 {
		t.Errorf("Amount = %v", g.Amount)
	}
	if g.Percent == nil || *g.Percent != 10 {
		t.Errorf("Percent = %v", g.Percent)
	}
	if g.InsuranceAmount != nil {
		t.Errorf("InsuranceAmount = %v, want nil", *g.InsuranceAmount)
	}

	if g, err := decodeGuarantee(Row{"g_no": "  "}); err != nil || g != nil {
		t.Errorf("row without number = %v, %v", g, err)
	}

	bad := []Row{
		{"g_no": "X", "amount": "abc"},
		{"g_no": "X", "id": float64(-1)},
		{"g_no": "X", "id": 1.5},
		{"g_no": "X", "cash_flag": "maybe"},
		{"g_no": "X", "amount": []interface{}{1}},
	}
	for _, row := range bad {
		if _, err := decodeGuarantee(row); err == nil {
			t.Errorf("decodeGuarantee(%v) should fail", row)
		}
	}
}

func TestDecodeUser(t *testing.T) {
	tests := []struct {
		name         string
		row          Row
		wantNil      bool
		wantRole     string
		wantActive   bool
		wantApproved bool
		wantHash     string
	}{
		{
			name:       "defaults",
			row:        Row{"username": "sara", "password_hash": "h1"},
			wantRole:   "user",
			wantActive: true,
			wantHash:   "h1",
		},
		{
			name:         "legacy column and flags",
			row:          Row{"username": "omar", "pass_hash": "h2", "role": "admin", "active": float64(0), "is_approved": float64(1)},
			wantRole:     "admin",
			wantApproved: true,
			wantHash:     "h2",
		},
		{
			name:       "unknown role",
			row:        Row{"username": "ali", "role": "superuser", "active": nil},
			wantRole:   "user",
			wantActive: true,
		},
		{
			name:    "no username",
			row:     Row{"username": " "},
			wantNil: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := decodeUser(tt.row)
			if err != nil {
				t.Fatalf("decodeUser: %v", err)
			}
			if tt.wantNil {
				if u != nil {
					t.Errorf("decodeUser = %+v, want nil", u)
				}
				return
			}
			if u.Role != tt.wantRole || u.Active != tt.wantActive || u.IsApproved != tt.wantApproved || u.PasswordHash != tt.wantHash {
				t.Errorf("decodeUser = %+v", u)
			}
		})
	}
}

func TestDecodeBankLimits(t *testing.T) {
	limits, err := decodeBankLimits([]Row{
		{"bank_name": "برقان", "limit_amount": float64(10)},
		{"bank_name": "", "limit_amount": float64(99)},
		{"bank_name": "الخليج"},
		{"bank_name": "برقان", "limit_amount": "20"},
	})
	if err != nil {
		t.Fatalf("decodeBankLimits: %v", err)
	}
	if len(limits) != 2 {
		t.Fatalf("limits = %+v", limits)
	}
	if limits[0].BankName != "برقان" || limits[0].LimitAmount != 20 {
		t.Errorf("first = %+v", limits[0])
	}
	if limits[1].LimitAmount != 0 {
		t.Errorf("missing amount = %v, want 0", limits[1].LimitAmount)
	}

	bad := []Row{
		{"bank_name": "برقان", "limit_amount": "abc"},
		{"bank_name": "الخليج", "limit_amount": map[string]interface{}{}},
	}
	for _, row := range bad {
		if _, err := decodeBankLimits([]Row{row}); err == nil {
			t.Errorf("decodeBankLimits(%v) should fail", row)
		}
	}
}

func TestDecodeSyncPayload(t *testing.T) {
	payload, err := DecodeSyncPayload(strings.NewReader(`{
		"guarantees": [{"id": 9007199254740993, "g_no": "LG-9", "amount": 1500.25, "cash_flag": 1}],
		"users": [{"username": "sara", "active": 0, "is_approved": 1}]
	}`))
	if err != nil {
		t.Fatalf("DecodeSyncPayload: %v", err)
	}
	if payload.BankLimits != nil {
		t.Errorf("BankLimits = %v, want nil for an absent key", payload.BankLimits)
	}

	g, err := decodeGuarantee(payload.Guarantees[0])
	if err != nil {
		t.Fatalf("decodeGuarantee: %v", err)
	}
	if uint64(g.ID) != 9007199254740993 {
		t.Errorf("ID = %d, want 9007199254740993", g.ID)
	}
	if !bool(g.CashFlag) || g.Amount == nil || *g.Amount != 1500.25 {
		t.Errorf("decoded = %+v", g)
	}

	u, err := decodeUser(payload.Users[0])
	if err != nil {
		t.Fatalf("decodeUser: %v", err)
	}
	if u.Active || !u.IsApproved {
		t.Errorf("flags = active %v approved %v", u.Active, u.IsApproved)
	}

	if _, err := DecodeSyncPayload(strings.NewReader(`{"guarantees": {}}`)); err == nil {
		t.Error("DecodeSyncPayload should reject a non-array table")
	}
}

func TestSyncServiceSync(t *testing.T) {
	db := newTestDB(t)
	svc := NewSyncService(repositories.NewSyncRepository(db))
	ctx := context.Background()

	payload, err := DecodeSyncPayload(strings.NewReader(`{
		"guarantees": [
			{"id": 1, "g_no": "LG-1", "amount": 100, "cash_flag": 0},
			{"id": 2, "g_no": "", "amount": 5}
		],
		"users": [{"username": "sara", "password_hash": "h"}]
	}`))
	if err != nil {
		t.Fatalf("DecodeSyncPayload: %v", err)
	}

	result, err := svc.Sync(ctx, payload)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.SyncID == "" || result.Guarantees != 1 || result.GuaranteesSkipped != 1 || result.UsersAdded != 1 {
		t.Errorf("result = %+v", result)
	}
	if !reflect.DeepEqual(result.SkippedRows, []int{1}) {
		t.Errorf("SkippedRows = %v, want [1]", result.SkippedRows)
	}

	var limits int64
	db.Model(&models.BankLimit{}).Count(&limits)
	if limits != 0 {
		t.Errorf("absent bank_limits key touched the table: %d rows", limits)
	}

	// a failing row aborts the whole push
	bad := &SyncPayload{Guarantees: []Row{{"g_no": "LG-2", "amount": "x"}}}
	if _, err := svc.Sync(ctx, bad); err == nil {
		t.Fatal("Sync with an invalid amount should fail")
	}
	var count int64
	db.Model(&models.Guarantee{}).Count(&count)
	if count != 1 {
		t.Errorf("guarantees = %d after failed sync, want 1", count)
	}

	// an unreadable limit keeps the configured ceilings
	if err := db.Create(&models.BankLimit{BankName: "برقان", LimitAmount: 50000}).Error; err != nil {
		t.Fatalf("seed limit: %v", err)
	}
	badLimit := &SyncPayload{
		Guarantees: []Row{{"g_no": "LG-3", "amount": float64(1)}},
		BankLimits: []Row{{"bank_name": "برقان", "limit_amount": "abc"}},
	}
	if _, err := svc.Sync(ctx, badLimit); err == nil {
		t.Fatal("Sync with an invalid limit should fail")
	}
	var limit models.BankLimit
	if err := db.Where("bank_name = ?", "برقان").First(&limit).Error; err != nil {
		t.Fatalf("limit lookup: %v", err)
	}
	if limit.LimitAmount != 50000 {
		t.Errorf("limit = %v after failed sync, want 50000", limit.LimitAmount)
	}
	db.Model(&models.Guarantee{}).Count(&count)
	if count != 1 {
		t.Errorf("guarantees = %d after failed limit sync, want 1", count)
	}
}
