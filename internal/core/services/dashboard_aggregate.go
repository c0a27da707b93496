package services

import (
	"sort"
	"strings"
	"time"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/core/domain"

	"github.com/shopspring/decimal"
)

// topBankCount is the number of banks shown on the dashboard chart
const topBankCount = 5

// DashboardData is the dashboard payload
type DashboardData struct {
	AsOf                string           `json:"as_of"`
	TotalCount          int              `json:"total_count"`
	NetActiveCount      int              `json:"net_active_count"`
	NetTotalAmount      float64          `json:"net_total_amount"`
	StatusStats         []StatusStat     `json:"status_stats"`
	BankStats           []BankStat       `json:"bank_stats"`
	TopBanks            []BankStat       `json:"top_banks"`
	DepartmentStats     []DepartmentStat `json:"department_stats"`
	NearExpiry          Rollup           `json:"near_expiry"`
	PendingConfirmation Rollup           `json:"pending_confirmation"`
}

// StatusStat is one slice of the status breakdown
type StatusStat struct {
	Status  string  `json:"name"`
	Count   int     `json:"count"`
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

// BankStat is one bank of the non-cash breakdown
type BankStat struct {
	Bank            string  `json:"name"`
	Count           int     `json:"count"`
	Amount          float64 `json:"amount"`
	Percent         float64 `json:"percent"`
	PercentRelative float64 `json:"percent_relative"`
}

// DepartmentStat is one department of the non-cash breakdown
type DepartmentStat struct {
	Department   string  `json:"name"`
	Count        int     `json:"count"`
	Amount       float64 `json:"amount"`
	PercentCount float64 `json:"percent_count"`
}

// Rollup counts one display status, split by cash flag
type Rollup struct {
	Count         int     `json:"count"`
	Amount        float64 `json:"amount"`
	CashCount     int     `json:"cash_count"`
	CashAmount    float64 `json:"cash_amount"`
	NonCashCount  int     `json:"non_cash_count"`
	NonCashAmount float64 `json:"non_cash_amount"`
}

type bucket struct {
	key    string
	count  int
	amount decimal.Decimal
}

// tally accumulates buckets keyed by name, remembering first-seen order
type tally struct {
	index   map[string]int
	buckets []*bucket
}

func newTally() *tally {
	return &tally{index: make(map[string]int)}
}

func (t *tally) add(key string, amount decimal.Decimal) {
	i, ok := t.index[key]
	if !ok {
		i = len(t.buckets)
		t.index[key] = i
		t.buckets = append(t.buckets, &bucket{key: key, amount: decimal.Zero})
	}
	t.buckets[i].count++
	t.buckets[i].amount = t.buckets[i].amount.Add(amount)
}

// sorted returns buckets by amount desc, then key asc
func (t *tally) sorted() []*bucket {
	out := append([]*bucket(nil), t.buckets...)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].amount.Cmp(out[j].amount); c != 0 {
			return c > 0
		}
		return out[i].key < out[j].key
	})
	return out
}

type rollupAcc struct {
	cashCount, nonCashCount   int
	cashAmount, nonCashAmount decimal.Decimal
}

func (r *rollupAcc) add(cash bool, amount decimal.Decimal) {
	if cash {
		r.cashCount++
		r.cashAmount = r.cashAmount.Add(amount)
		return
	}
	r.nonCashCount++
	r.nonCashAmount = r.nonCashAmount.Add(amount)
}

func (r *rollupAcc) result() Rollup {
	return Rollup{
		Count:         r.cashCount + r.nonCashCount,
		Amount:        r.cashAmount.Add(r.nonCashAmount).InexactFloat64(),
		CashCount:     r.cashCount,
		CashAmount:    r.cashAmount.InexactFloat64(),
		NonCashCount:  r.nonCashCount,
		NonCashAmount: r.nonCashAmount.InexactFloat64(),
	}
}

// BuildDashboard aggregates the guarantee rows as of today.
// Terminal rows only count toward TotalCount. Cash rows are part of the
// status breakdown and rollups but never of the bank or department totals.
func BuildDashboard(rows []*models.Guarantee, today time.Time) *DashboardData {
	data := &DashboardData{
		AsOf:            today.Format(domain.DateLayout),
		TotalCount:      len(rows),
		StatusStats:     []StatusStat{},
		BankStats:       []BankStat{},
		TopBanks:        []BankStat{},
		DepartmentStats: []DepartmentStat{},
	}

	statuses, banks, depts := newTally(), newTally(), newTally()
	near, pending := rollupAcc{}, rollupAcc{}
	netTotal := decimal.Zero

	for _, row := range rows {
		if domain.IsTerminalStatus(row.UserStatus) {
			continue
		}

		status := domain.ClassifyStatus(row.UserStatus, row.EndDate, today)
		amount := decimal.NewFromFloat(row.AmountValue())
		cash := bool(row.CashFlag)

		data.NetActiveCount++
		netTotal = netTotal.Add(amount)
		statuses.add(groupKey(status), amount)

		switch status {
		case domain.StatusNearExpiry:
			near.add(cash, amount)
		case domain.StatusPendingConfirmation:
			pending.add(cash, amount)
		}

		if cash {
			continue
		}
		banks.add(groupKey(row.Bank), amount)
		depts.add(groupKey(row.Department), amount)
	}

	data.NetTotalAmount = netTotal.InexactFloat64()
	data.NearExpiry = near.result()
	data.PendingConfirmation = pending.result()

	statusTotal := floorOne(netTotal)
	for _, b := range statuses.sorted() {
		data.StatusStats = append(data.StatusStats, StatusStat{
			Status:  b.key,
			Count:   b.count,
			Amount:  b.amount.InexactFloat64(),
			Percent: percent(b.amount, statusTotal),
		})
	}

	bankRows := banks.sorted()
	nonCashTotal := decimal.Zero
	nonCashCount := 0
	for _, b := range bankRows {
		nonCashTotal = nonCashTotal.Add(b.amount)
		nonCashCount += b.count
	}
	bankTotal := floorOne(nonCashTotal)
	maxBank := decimal.NewFromInt(1)
	if len(bankRows) > 0 {
		maxBank = floorOne(bankRows[0].amount)
	}
	for _, b := range bankRows {
		data.BankStats = append(data.BankStats, BankStat{
			Bank:            b.key,
			Count:           b.count,
			Amount:          b.amount.InexactFloat64(),
			Percent:         percent(b.amount, bankTotal),
			PercentRelative: percent(b.amount, maxBank),
		})
	}
	data.TopBanks = data.BankStats
	if len(data.TopBanks) > topBankCount {
		data.TopBanks = data.BankStats[:topBankCount]
	}

	countTotal := nonCashCount
	if countTotal == 0 {
		countTotal = 1
	}
	for _, b := range depts.sorted() {
		data.DepartmentStats = append(data.DepartmentStats, DepartmentStat{
			Department:   b.key,
			Count:        b.count,
			Amount:       b.amount.InexactFloat64(),
			PercentCount: float64(b.count) / float64(countTotal) * 100,
		})
	}

	return data
}

// groupKey trims a grouping value, labelling empty ones as unspecified
func groupKey(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return domain.Unspecified
	}
	return s
}

// floorOne replaces a zero denominator with one
func floorOne(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.NewFromInt(1)
	}
	return d
}

func percent(part, total decimal.Decimal) float64 {
	return part.Mul(decimal.NewFromInt(100)).Div(total).InexactFloat64()
}
