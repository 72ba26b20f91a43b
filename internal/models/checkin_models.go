package models

import (
	"fmt"
	"time"
)

// CheckInMethod defines how a check-in was produced.
type CheckInMethod string

const (
	CheckInMethodManual CheckInMethod = "manual"
	CheckInMethodSelf   CheckInMethod = "self"
	CheckInMethodQR     CheckInMethod = "qr"
)

// IsValidCheckInMethod checks if the provided method string is a valid CheckInMethod.
func IsValidCheckInMethod(method string) bool {
	switch CheckInMethod(method) {
	case CheckInMethodManual, CheckInMethodSelf, CheckInMethodQR:
		return true
	default:
		return false
	}
}

// LongStayThreshold is how long a member may be present before the
// record is flagged as a long stay on reads.
const LongStayThreshold = 3 * time.Hour

// CheckInRecord represents one presence span of a member at a store.
// A record with CheckedOutAt = nil is open; at most one open record
// exists per (member, store) at any time.
type CheckInRecord struct {
	ID           int64         `json:"id" db:"id"`
	MemberID     int64         `json:"member_id" db:"member_id" binding:"required"`
	StoreID      int64         `json:"store_id" db:"store_id" binding:"required"`
	Method       CheckInMethod `json:"method" db:"method"`
	CheckedInAt  time.Time     `json:"checked_in_at" db:"checked_in_at"`
	CheckedOutAt *time.Time    `json:"checked_out_at,omitempty" db:"checked_out_at"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	Member       *Member       `json:"member,omitempty"` // For joining with Member details
}

// IsOpen reports whether the member is still checked in on this record.
func (r *CheckInRecord) IsOpen() bool {
	return r.CheckedOutAt == nil
}

// Elapsed returns how long the presence span has lasted so far. Closed
// records measure check-in to check-out; open records measure up to now.
func (r *CheckInRecord) Elapsed(now time.Time) time.Duration {
	if r.CheckedOutAt != nil {
		return r.CheckedOutAt.Sub(r.CheckedInAt)
	}
	return now.Sub(r.CheckedInAt)
}

// CheckInAlerts carries the advisory flags computed for a check-in on
// every read. They are never persisted and never block the member.
type CheckInAlerts struct {
	Expired   bool `json:"expired"`
	Suspended bool `json:"suspended"`
	LongStay  bool `json:"long_stay"`
}

// CheckInView is a CheckInRecord decorated with derived read-side data.
type CheckInView struct {
	CheckInRecord
	Duration string        `json:"duration"`
	Alerts   CheckInAlerts `json:"alerts"`
}

// FormatDuration renders a duration as whole hours plus remainder minutes,
// e.g. "2h 05m" or "45m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}
