package models

import "time"

// MemberStatus defines the type for member statuses
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusSuspended MemberStatus = "suspended"
	MemberStatusCancelled MemberStatus = "cancelled"
)

// IsValidMemberStatus checks if the provided status string is a valid MemberStatus.
func IsValidMemberStatus(status string) bool {
	switch MemberStatus(status) {
	case MemberStatusActive, MemberStatusSuspended, MemberStatusCancelled:
		return true
	default:
		return false
	}
}

// Plan represents a billing plan a member can subscribe to.
// SessionsPerMonth = 0 means the plan is unlimited.
type Plan struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name" binding:"required"`
	SessionsPerMonth int       `json:"sessions_per_month" db:"sessions_per_month"`
	Price            float64   `json:"price" db:"price"`
	Description      *string   `json:"description,omitempty" db:"description"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// IsUnlimited reports whether the plan places no session quota on reservations.
func (p *Plan) IsUnlimited() bool {
	return p.SessionsPerMonth == 0
}

// Member represents a gym member belonging to a store.
type Member struct {
	ID                int64        `json:"id" db:"id"`
	StoreID           int64        `json:"store_id" db:"store_id" binding:"required"`
	MemberNumber      string       `json:"member_number" db:"member_number"`
	FullName          string       `json:"full_name" db:"full_name" binding:"required"`
	PhoneNumber       *string      `json:"phone_number,omitempty" db:"phone_number"`
	Email             *string      `json:"email,omitempty" db:"email"`
	Status            MemberStatus `json:"status" db:"status"`
	PlanID            *int64       `json:"plan_id,omitempty" db:"plan_id"`
	RemainingSessions int          `json:"remaining_sessions" db:"remaining_sessions"`
	ExpiresAt         *time.Time   `json:"expires_at,omitempty" db:"expires_at"`
	Notes             *string      `json:"notes,omitempty" db:"notes"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
	Plan              *Plan        `json:"plan,omitempty"` // For joining with Plan details
}

// MemberFilters defines the available filters for querying members.
type MemberFilters struct {
	StoreID  *int64  `form:"store_id"`
	Status   *string `form:"status"`
	Search   *string `form:"search"` // Matches name, phone or member number
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
