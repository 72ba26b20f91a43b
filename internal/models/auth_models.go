package models

import "time"

// Global role names. Per-store manager/staff rank lives on StoreStaffAssignment;
// these decide the broad shape of what a principal can reach at all.
const (
	RoleOwner  = "Owner"
	RoleStaff  = "Staff"
	RoleMember = "Member"
)

// User represents a login account in the system
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Email        *string   `json:"email,omitempty" db:"email"`
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	RoleID       *int64    `json:"role_id,omitempty" db:"role_id"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	Role         *Role     `json:"role,omitempty"` // For joining with Role
}

// Role represents a global user role (Owner, Staff, Member)
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// RoleName returns the user's role name, or empty when no role is joined.
func (u *User) RoleName() string {
	if u.Role != nil {
		return u.Role.Name
	}
	return ""
}

// Principal is the resolved identity a request acts as. It is built by the
// auth middleware from JWT claims and consumed by the access service.
type Principal struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// IsOwner reports whether the principal holds the global owner role.
func (p Principal) IsOwner() bool {
	return p.Role == RoleOwner
}
