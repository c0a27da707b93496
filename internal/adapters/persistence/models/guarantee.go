package models

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// ============================================================
// Guarantee Store Tables
// ============================================================

// Guarantee represents guarantees table. Column names match the desktop
// client so sync payloads can be inserted without mapping.
type Guarantee struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	Department      string   `gorm:"column:department" json:"department"`
	Bank            string   `gorm:"column:bank" json:"bank"`
	GNo             string   `gorm:"column:g_no;size:191;uniqueIndex;not null" json:"g_no"`
	GType           string   `gorm:"column:g_type" json:"g_type"`
	Amount          *float64 `gorm:"column:amount" json:"amount"`
	InsuranceAmount *float64 `gorm:"column:insurance_amount" json:"insurance_amount"`
	Percent         *float64 `gorm:"column:percent" json:"percent"`
	Beneficiary     string   `gorm:"column:beneficiary" json:"beneficiary"`
	Requester       string   `gorm:"column:requester" json:"requester"`
	ProjectName     string   `gorm:"column:project_name" json:"project_name"`
	IssueDate       string   `gorm:"column:issue_date;size:32" json:"issue_date"`
	EndDate         string   `gorm:"column:end_date;size:32" json:"end_date"`
	UserStatus      string   `gorm:"column:user_status" json:"user_status"`
	CashFlag        Flag     `gorm:"column:cash_flag;type:integer;not null;default:0" json:"cash_flag"`
	Attachment      string   `gorm:"column:attachment" json:"attachment"`
	DeliveryStatus  string   `gorm:"column:delivery_status" json:"delivery_status"`
	RecipientName   string   `gorm:"column:recipient_name" json:"recipient_name"`
	Notes           string   `gorm:"column:notes" json:"notes"`
	EntryNumber     string   `gorm:"column:entry_number" json:"entry_number"`

	// DisplayStatus is derived on read and never stored
	DisplayStatus string `gorm:"-" json:"display_status"`
}

func (Guarantee) TableName() string {
	return "guarantees"
}

// AmountValue returns the amount, treating NULL as zero
func (g *Guarantee) AmountValue() float64 {
	if g.Amount == nil {
		return 0
	}
	return *g.Amount
}

// GuaranteeColumns is the fixed column order used for bulk inserts.
var GuaranteeColumns = []string{
	"id", "department", "bank", "g_no", "g_type", "amount", "insurance_amount",
	"percent", "beneficiary", "requester", "project_name", "issue_date",
	"end_date", "user_status", "cash_flag", "attachment", "delivery_status",
	"recipient_name", "notes", "entry_number",
}

// Attachment represents attachments table
type Attachment struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	GNo   string `gorm:"column:g_no;size:191;index" json:"g_no"`
	Path  string `gorm:"column:path" json:"path"`
	Notes string `gorm:"column:notes" json:"notes"`
}

func (Attachment) TableName() string {
	return "attachments"
}

// BankLimit represents bank_limits table
type BankLimit struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	BankName    string  `gorm:"column:bank_name;size:191;uniqueIndex;not null" json:"bank_name"`
	LimitAmount float64 `gorm:"column:limit_amount;not null;default:0" json:"limit_amount"`
}

func (BankLimit) TableName() string {
	return "bank_limits"
}

// Loan represents loans table. Only the schema is kept server side.
type Loan struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	LoanType       string   `gorm:"column:loan_type" json:"loan_type"`
	Principal      *float64 `gorm:"column:principal" json:"principal"`
	Outstanding    *float64 `gorm:"column:outstanding" json:"outstanding"`
	StartDate      string   `gorm:"column:start_date;size:32" json:"start_date"`
	EndDate        string   `gorm:"column:end_date;size:32" json:"end_date"`
	DurationDays   *int     `gorm:"column:duration_days" json:"duration_days"`
	RatePercent    *float64 `gorm:"column:rate_percent" json:"rate_percent"`
	CyborPercent   *float64 `gorm:"column:cybor_percent" json:"cybor_percent"`
	TotalPercent   *float64 `gorm:"column:total_percent" json:"total_percent"`
	PeriodInterest *float64 `gorm:"column:period_interest" json:"period_interest"`
	TotalDue       *float64 `gorm:"column:total_due" json:"total_due"`
	Sector         string   `gorm:"column:sector" json:"sector"`
}

func (Loan) TableName() string {
	return "loans"
}

// Flag is a boolean persisted as an INTEGER 0/1 column. It decodes the
// loose encodings the desktop client produces: 0/1, true/false, "1", null.
type Flag bool

// ParseFlag interprets a loosely typed value as a flag
func ParseFlag(v interface{}) (Flag, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return Flag(x), nil
	case Flag:
		return x, nil
	case int:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case []byte:
		return parseFlagString(string(x))
	case string:
		return parseFlagString(x)
	default:
		return false, fmt.Errorf("unsupported flag value %T", v)
	}
}

func parseFlagString(s string) (Flag, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "0", "false", "no", "null":
		return false, nil
	case "1", "true", "yes":
		return true, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0, nil
	}
	return false, fmt.Errorf("invalid flag value %q", s)
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 1 && data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		v, err := parseFlagString(unquoted)
		*f = v
		return err
	}
	v, err := parseFlagString(string(data))
	*f = v
	return err
}

// MarshalJSON writes the flag as 0 or 1
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// Scan implements sql.Scanner
func (f *Flag) Scan(value interface{}) error {
	v, err := ParseFlag(value)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Value implements driver.Valuer
func (f Flag) Value() (driver.Value, error) {
	if f {
		return int64(1), nil
	}
	return int64(0), nil
}
