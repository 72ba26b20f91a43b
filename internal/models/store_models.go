package models

import "time"

// StaffRole defines the per-store rank of a staff assignment.
type StaffRole string

const (
	StaffRoleManager StaffRole = "manager"
	StaffRoleStaff   StaffRole = "staff"
)

// IsValidStaffRole checks if the provided role string is a valid StaffRole.
func IsValidStaffRole(role string) bool {
	switch StaffRole(role) {
	case StaffRoleManager, StaffRoleStaff:
		return true
	default:
		return false
	}
}

// Store represents a physical gym location.
type Store struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	Address   *string   `json:"address,omitempty" db:"address"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	QRToken   string    `json:"qr_token" db:"qr_token"` // Opaque token encoded in the store's check-in QR code
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StoreStaffAssignment links a user to a store with a per-store role.
// At most one assignment exists per (user, store); deactivation keeps the row.
type StoreStaffAssignment struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id" binding:"required"`
	StoreID   int64     `json:"store_id" db:"store_id" binding:"required"`
	Role      StaffRole `json:"role" db:"role"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	User      *User     `json:"user,omitempty"`  // For joining with User details
	Store     *Store    `json:"store,omitempty"` // For joining with Store details
}

// Trainer represents a trainer employed at a store. Reservations derive
// their store through the trainer.
type Trainer struct {
	ID        int64     `json:"id" db:"id"`
	StoreID   int64     `json:"store_id" db:"store_id" binding:"required"`
	FullName  string    `json:"full_name" db:"full_name" binding:"required"`
	Specialty *string   `json:"specialty,omitempty" db:"specialty"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
