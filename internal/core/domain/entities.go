package domain

// Role represents user role in the system
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValidRole reports whether r is a role the system knows about
func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

// BulkAction is an operation applied to a selection of guarantees
type BulkAction string

const (
	BulkDelete      BulkAction = "delete"
	BulkMarkFile    BulkAction = "mark_file"
	BulkClearStatus BulkAction = "clear_status"
)

// Valid reports whether the action is supported
func (a BulkAction) Valid() bool {
	switch a {
	case BulkDelete, BulkMarkFile, BulkClearStatus:
		return true
	}
	return false
}

// FiledMarker is written to delivery_status when a guarantee is archived to the paper file.
const FiledMarker = "في الملف"

// Unspecified labels rows whose grouping key (bank, department) is empty.
const Unspecified = "غير محدد"
