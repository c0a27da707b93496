package services

import (
	"testing"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/core/domain"
)

func TestBuildDashboard(t *testing.T) {
	rows := []*models.Guarantee{
		{GNo: "X1", Bank: "بنك أ", Department: "المشاريع", Amount: amount(300), EndDate: "2025-01-01"},
		{GNo: "X2", Bank: "بنك ب", Department: "المشاريع", Amount: amount(100), EndDate: "2024-06-10"},
		{GNo: "X3", Bank: "بنك أ", Department: "", Amount: amount(100), EndDate: "2024-05-01"},
		{GNo: "X4", Bank: "بنك ج", Department: "المالية", Amount: amount(1000), CashFlag: true, EndDate: "2024-06-05"},
		{GNo: "X5", Bank: "بنك أ", Amount: amount(5000), UserStatus: domain.StatusReturned},
		{GNo: "X6", Bank: "بنك ب", Amount: amount(7000), UserStatus: domain.StatusExpired},
	}

	data := BuildDashboard(rows, testToday)

	if data.AsOf != "2024-06-01" {
		t.Errorf("AsOf = %q", data.AsOf)
	}
	if data.TotalCount != 6 || data.NetActiveCount != 4 {
		t.Errorf("TotalCount = %d, NetActiveCount = %d; want 6, 4", data.TotalCount, data.NetActiveCount)
	}
	if data.NetTotalAmount != 1500 {
		t.Errorf("NetTotalAmount = %v, want 1500", data.NetTotalAmount)
	}

	// cash row X4 stays out of the bank and department breakdowns
	if len(data.BankStats) != 2 {
		t.Fatalf("BankStats = %+v, want two banks", data.BankStats)
	}
	top := data.BankStats[0]
	if top.Bank != "بنك أ" || top.Amount != 400 || top.Count != 2 {
		t.Errorf("top bank = %+v", top)
	}
	if top.Percent != 80 || top.PercentRelative != 100 {
		t.Errorf("top bank percents = %v, %v; want 80, 100", top.Percent, top.PercentRelative)
	}
	if data.BankStats[1].PercentRelative != 25 {
		t.Errorf("second bank relative = %v, want 25", data.BankStats[1].PercentRelative)
	}

	depts := map[string]DepartmentStat{}
	for _, d := range data.DepartmentStats {
		depts[d.Department] = d
	}
	if _, ok := depts["المالية"]; ok {
		t.Error("cash-only department should not be listed")
	}
	if d := depts[domain.Unspecified]; d.Count != 1 {
		t.Errorf("unspecified department = %+v", d)
	}
	if d := depts["المشاريع"]; d.Count != 2 || d.Amount != 400 {
		t.Errorf("projects department = %+v", d)
	}

	if data.NearExpiry.Count != 2 || data.NearExpiry.CashCount != 1 || data.NearExpiry.NonCashAmount != 100 {
		t.Errorf("NearExpiry = %+v", data.NearExpiry)
	}
	if data.PendingConfirmation.Count != 1 || data.PendingConfirmation.Amount != 100 {
		t.Errorf("PendingConfirmation = %+v", data.PendingConfirmation)
	}

	statuses := map[string]StatusStat{}
	for _, s := range data.StatusStats {
		statuses[s.Status] = s
	}
	if _, ok := statuses[domain.StatusReturned]; ok {
		t.Error("terminal statuses should not appear in the breakdown")
	}
	if s := statuses[domain.StatusNearExpiry]; s.Amount != 1100 {
		t.Errorf("near expiry slice = %+v", s)
	}
}

func TestBuildDashboardEmpty(t *testing.T) {
	data := BuildDashboard(nil, testToday)
	if data.TotalCount != 0 || len(data.BankStats) != 0 || len(data.TopBanks) != 0 {
		t.Errorf("empty dashboard = %+v", data)
	}
	if data.StatusStats == nil || data.DepartmentStats == nil {
		t.Error("empty breakdowns should be non-nil slices")
	}
}

func TestBuildDashboardTopBanks(t *testing.T) {
	var rows []*models.Guarantee
	for i, bank := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		rows = append(rows, &models.Guarantee{GNo: bank, Bank: bank, Amount: amount(float64(100 * (i + 1)))})
	}
	data := BuildDashboard(rows, testToday)
	if len(data.BankStats) != 7 || len(data.TopBanks) != topBankCount {
		t.Fatalf("banks = %d, top = %d", len(data.BankStats), len(data.TopBanks))
	}
	if data.TopBanks[0].Bank != "G" {
		t.Errorf("largest bank = %q, want G", data.TopBanks[0].Bank)
	}
}
