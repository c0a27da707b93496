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

func TestIsFinalStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"", false},
		{"ساري", false},
		{"تم الإفراج", true},
		{"تم الافراج عنه", true},
		{"مردود للبنك", true},
		{"ملغى", true},
		{"الغاء", true},
		{"مصادرة", true},
		{"انتهاء الغرض", true},
		{"منتهي", true},
		{"قيد المراجعة", false},
	}
	for _, tt := range tests {
		if got := IsFinalStatus(tt.status); got != tt.want {
			t.Errorf("IsFinalStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestBuildStatement(t *testing.T) {
	rows := []*models.Guarantee{
		{GNo: "A1", Bank: "برقان", Amount: amount(100)},
		{GNo: "A2", Bank: "الخليج", Amount: amount(50), CashFlag: true},
		{GNo: "A3", Bank: "برقان", Amount: amount(25.5)},
		{GNo: "A4", Bank: "برقان", Amount: amount(999), UserStatus: "تم الإفراج"},
		{GNo: "A5", Bank: "", Amount: nil},
	}

	st := BuildStatement("المشاريع", rows, testToday)
	if st.Department != "المشاريع" || st.AsOf != "2024-06-01" {
		t.Errorf("header = %q %q", st.Department, st.AsOf)
	}
	if st.Count != 4 || st.GrandTotal != 175.5 {
		t.Errorf("Count = %d, GrandTotal = %v; want 4, 175.5", st.Count, st.GrandTotal)
	}
	if len(st.Banks) != 3 {
		t.Fatalf("banks = %+v", st.Banks)
	}

	wantOrder := []string{"برقان", "الخليج", domain.Unspecified}
	for i, b := range st.Banks {
		if b.Bank != wantOrder[i] {
			t.Errorf("bank %d = %q, want %q", i, b.Bank, wantOrder[i])
		}
	}
	if st.Banks[0].Total != 125.5 || len(st.Banks[0].Lines) != 2 {
		t.Errorf("first bank = %+v", st.Banks[0])
	}
	if !st.Banks[1].Lines[0].CashFlag {
		t.Error("cash flag lost on statement line")
	}
}

func TestReportServiceDepartmentStatement(t *testing.T) {
	db := newTestDB(t)
	guarantees := repositories.NewGuaranteeRepository(db)
	svc := NewReportService(guarantees)
	svc.now = func() time.Time { return testToday }
	ctx := context.Background()

	for _, g := range []*models.Guarantee{
		{GNo: "D1", Department: "المشاريع", Bank: "برقان", Amount: amount(10)},
		{GNo: "D2", Department: "المشتريات", Bank: "برقان", Amount: amount(20)},
	} {
		if err := guarantees.Create(ctx, g); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if _, err := svc.DepartmentStatement(ctx, "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("blank department err = %v", err)
	}

	st, err := svc.DepartmentStatement(ctx, " المشاريع ")
	if err != nil {
		t.Fatalf("DepartmentStatement: %v", err)
	}
	if st.Count != 1 || st.GrandTotal != 10 {
		t.Errorf("statement = %+v", st)
	}

	names, err := svc.Departments(ctx)
	if err != nil || len(names) != 2 {
		t.Errorf("Departments = %v, %v", names, err)
	}
}
