package domain

import "time"

// UserRole gates admin-only operations (budget edits, approval transitions).
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleMember UserRole = "MEMBER"
)

// User represents an application user who creates purchase orders and edits
// transactions.
type User struct {
	UserID       string   `json:"userID"`
	Username     string   `json:"username"`
	Name         string   `json:"name"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
