package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/adapters/persistence/repositories"
	"guarantee-tracker/internal/core/domain"
)

func TestComputeBankUsage(t *testing.T) {
	rows := []*models.Guarantee{
		{GNo: "X1", Bank: "Kuwait Finance House", Amount: amount(40000)},
		{GNo: "X2", Bank: "بيت التمويل", Amount: amount(10000), UserStatus: domain.StatusUnregistered},
		{GNo: "X3", Bank: "KFH", Amount: amount(99999), CashFlag: true},
		{GNo: "X4", Bank: "KFH", Amount: amount(5000), UserStatus: domain.StatusReturned},
		{GNo: "X5", Bank: "برقان", Amount: amount(70000), EndDate: "2024-05-01"},
	}
	limits := []*models.BankLimit{
		{BankName: "بيت التمويل", LimitAmount: 60000},
		{BankName: "kfh", LimitAmount: 40000},
		{BankName: "الخليج", LimitAmount: 25000},
		{BankName: "  ", LimitAmount: 1},
	}

	banks := ComputeBankUsage(rows, limits, testToday)
	if len(banks) != 3 {
		t.Fatalf("banks = %+v, want three", banks)
	}

	// sorted by total desc
	if banks[0].Bank != domain.BankBurgan || banks[1].Bank != domain.BankKFH || banks[2].Bank != domain.BankGulf {
		t.Fatalf("order = %q, %q, %q", banks[0].Bank, banks[1].Bank, banks[2].Bank)
	}

	kfh := banks[1]
	want := BankUsage{
		Bank:         domain.BankKFH,
		Count:        2,
		Limit:        100000,
		Existing:     40000,
		Unregistered: 10000,
		Total:        50000,
		Remaining:    50000,
		UsagePercent: 50,
	}
	if kfh != want {
		t.Errorf("KFH usage = %+v, want %+v", kfh, want)
	}

	burgan := banks[0]
	if burgan.Limit != 0 || burgan.UsagePercent != 0 || burgan.Remaining != 0 {
		t.Errorf("bank without limit = %+v", burgan)
	}

	gulf := banks[2]
	if gulf.Total != 0 || gulf.Remaining != 25000 {
		t.Errorf("unused limit = %+v", gulf)
	}

	sum := SummarizeBankUsage(banks)
	if sum.Bank != TotalLabel || sum.Total != 120000 || sum.Limit != 125000 || sum.Count != 3 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestComputeBankUsageOverLimit(t *testing.T) {
	rows := []*models.Guarantee{{GNo: "X1", Bank: "Gulf Bank", Amount: amount(150)}}
	limits := []*models.BankLimit{{BankName: "الخليج", LimitAmount: 100}}

	banks := ComputeBankUsage(rows, limits, testToday)
	if len(banks) != 1 {
		t.Fatalf("banks = %+v", banks)
	}
	if banks[0].Remaining != 0 || banks[0].UsagePercent != 150 {
		t.Errorf("over limit = %+v", banks[0])
	}
}

func TestBankLimitServiceUpsertValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewBankLimitService(repositories.NewBankLimitRepository(db), repositories.NewGuaranteeRepository(db))
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, &UpsertBankLimitInput{BankName: " "}); !errors.Is(err, domain.ErrEmptyBankName) {
		t.Errorf("empty name err = %v", err)
	}
	if _, err := svc.Upsert(ctx, &UpsertBankLimitInput{BankName: "برقان", LimitAmount: -1}); !errors.Is(err, domain.ErrNegativeLimit) {
		t.Errorf("negative limit err = %v", err)
	}

	first, err := svc.Upsert(ctx, &UpsertBankLimitInput{BankName: "برقان", LimitAmount: 10})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second, err := svc.Upsert(ctx, &UpsertBankLimitInput{BankName: "برقان", LimitAmount: 20})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if first.ID != second.ID || second.LimitAmount != 20 {
		t.Errorf("upsert created a new row: %+v then %+v", first, second)
	}
}

func TestBankLimitServiceReport(t *testing.T) {
	db := newTestDB(t)
	guarantees := repositories.NewGuaranteeRepository(db)
	limits := repositories.NewBankLimitRepository(db)
	svc := NewBankLimitService(limits, guarantees)
	svc.now = func() time.Time { return testToday }
	ctx := context.Background()

	if err := guarantees.Create(ctx, &models.Guarantee{GNo: "X1", Bank: "برقان", Amount: amount(30)}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := limits.Upsert(ctx, "برقان", 120); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	report, err := svc.Report(ctx)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.AsOf != "2024-06-01" || len(report.Banks) != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Summary.UsagePercent != 25 || report.Summary.Remaining != 90 {
		t.Errorf("summary = %+v", report.Summary)
	}
}
