package models

import "time"

// ReservationStatus defines the type for reservation statuses
type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// IsValidReservationStatus checks if the provided status string is a valid ReservationStatus.
func IsValidReservationStatus(status string) bool {
	switch ReservationStatus(status) {
	case ReservationStatusConfirmed, ReservationStatusCompleted,
		ReservationStatusCancelled, ReservationStatusNoShow:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are permitted from the status.
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationStatusCompleted, ReservationStatusCancelled, ReservationStatusNoShow:
		return true
	default:
		return false
	}
}

// CanTransitionReservation is the single place that decides whether a
// reservation status change is legal. Reservations start confirmed and move
// exactly once into a terminal state: completed, cancelled or no_show.
func CanTransitionReservation(from, to ReservationStatus) bool {
	if from.IsTerminal() {
		return false
	}
	switch to {
	case ReservationStatusCompleted:
		return true
	case ReservationStatusCancelled, ReservationStatusNoShow:
		return from == ReservationStatusConfirmed
	default:
		return false
	}
}

// Reservation represents a booked training slot. The store is derived
// through the trainer. Date uses layout 2006-01-02, times use 15:04.
type Reservation struct {
	ID           int64             `json:"id" db:"id"`
	MemberID     int64             `json:"member_id" db:"member_id" binding:"required"`
	TrainerID    int64             `json:"trainer_id" db:"trainer_id" binding:"required"`
	StoreID      int64             `json:"store_id" db:"store_id"` // Denormalized from the trainer at creation
	Date         string            `json:"date" db:"date" binding:"required"`
	StartTime    string            `json:"start_time" db:"start_time" binding:"required"`
	EndTime      string            `json:"end_time" db:"end_time" binding:"required"`
	Status       ReservationStatus `json:"status" db:"status"`
	Notes        *string           `json:"notes,omitempty" db:"notes"`
	CancelReason *string           `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
	Member       *Member           `json:"member,omitempty"`  // For joining with Member details
	Trainer      *Trainer          `json:"trainer,omitempty"` // For joining with Trainer details
}

// ReservationFilters defines the available filters for querying reservations.
type ReservationFilters struct {
	MemberID  *int64  `form:"member_id"`
	TrainerID *int64  `form:"trainer_id"`
	StoreID   *int64  `form:"store_id"`
	Status    *string `form:"status"`
	DateFrom  *string `form:"date_from"` // 2006-01-02
	DateTo    *string `form:"date_to"`   // 2006-01-02
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}
