package domain

import (
	"strings"
	"time"
)

// Raw status markers as stored by the desktop client, plus the derived labels.
const (
	StatusActive              = "ساري"
	StatusExpired             = "منتهي"
	StatusReturned            = "مردود"
	StatusPendingConfirmation = "انتهى في انتظار التأكيد"
	StatusUnregistered        = "ضمان غير مسجل"
	StatusNearExpiry          = "قارب على الانتهاء"
)

// NearExpiryDays is the inclusive window, in days, in which an active guarantee is flagged.
const NearExpiryDays = 30

// DateLayout is the only accepted end_date format.
const DateLayout = "2006-01-02"

// IsTerminalStatus reports whether the raw status closes the guarantee for good.
func IsTerminalStatus(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == StatusExpired || s == StatusReturned
}

// ClassifyStatus derives the display status of a guarantee.
//
// Terminal markers are returned unchanged. Empty and active rows are
// reclassified from the number of calendar days left until endDate:
// 0..NearExpiryDays is near-expiry, a negative count is pending
// confirmation. A missing or unparseable endDate leaves the row active.
// Every other status is passed through trimmed.
func ClassifyStatus(raw, endDate string, today time.Time) string {
	s := strings.TrimSpace(raw)

	switch {
	case s == StatusExpired || s == StatusReturned:
		return s
	case s == "" || s == StatusActive:
		days, ok := DaysLeft(endDate, today)
		if !ok {
			return StatusActive
		}
		if days < 0 {
			return StatusPendingConfirmation
		}
		if days <= NearExpiryDays {
			return StatusNearExpiry
		}
		return StatusActive
	default:
		return s
	}
}

// DaysLeft returns the whole calendar days between today and endDate.
// ok is false when endDate is not a YYYY-MM-DD date.
func DaysLeft(endDate string, today time.Time) (days int, ok bool) {
	end, err := time.Parse(DateLayout, strings.TrimSpace(endDate))
	if err != nil {
		return 0, false
	}
	return int(end.Sub(calendarDay(today)).Hours() / 24), true
}

// calendarDay maps t to midnight UTC of its own calendar date.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
