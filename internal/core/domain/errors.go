package domain

import "errors"

// Common domain errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Guarantee errors
var (
	ErrGuaranteeNotFound = errors.New("guarantee not found")
	ErrDuplicateGNo      = errors.New("guarantee number already exists")
	ErrEmptyGNo          = errors.New("guarantee number is required")
	ErrInvalidBulkAction = errors.New("invalid bulk action")
	ErrEmptySelection    = errors.New("no guarantees selected")
	ErrInvalidDate       = errors.New("dates must use the YYYY-MM-DD format")
)

// Bank limit errors
var (
	ErrBankLimitNotFound = errors.New("bank limit not found")
	ErrEmptyBankName     = errors.New("bank name is required")
	ErrNegativeLimit     = errors.New("limit amount cannot be negative")
)
