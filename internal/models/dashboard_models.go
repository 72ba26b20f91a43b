package models

import "time"

// DashboardCounts holds the headline numbers for one store's dashboard.
type DashboardCounts struct {
	TodayReservations int     `json:"today_reservations"`
	TodayCheckIns     int     `json:"today_check_ins"`
	CurrentlyPresent  int     `json:"currently_present"`
	TotalMembers      int     `json:"total_members"`
	ActiveMembers     int     `json:"active_members"`
	MonthToDateSales  float64 `json:"month_to_date_sales"`
	NewMembersMonth   int     `json:"new_members_month"`
}

// MemberAlerts are the advisory membership flags attached to dashboard
// reservation rows. LongStay never applies here, so a smaller shape than
// CheckInAlerts keeps the payload honest.
type MemberAlerts struct {
	Expired   bool `json:"expired"`
	Suspended bool `json:"suspended"`
}

// ReservationView is a reservation decorated with member alert flags.
type ReservationView struct {
	Reservation
	Alerts MemberAlerts `json:"alerts"`
}

// ExpiringMember is a member whose membership ends inside the forward window.
type ExpiringMember struct {
	Member
	DaysLeft int `json:"days_left"`
}

// DashboardSummary is the full per-store read model. Every field is
// recomputed relative to "now" at request time; nothing is cached.
type DashboardSummary struct {
	StoreID             int64             `json:"store_id"`
	GeneratedAt         time.Time         `json:"generated_at"`
	Counts              DashboardCounts   `json:"counts"`
	TodayReservations   []ReservationView `json:"today_reservations"`
	CurrentlyPresent    []CheckInView     `json:"currently_present"`
	ExpiringMembers     []ExpiringMember  `json:"expiring_members"`
	RecentCancellations []Reservation     `json:"recent_cancellations"`
}
