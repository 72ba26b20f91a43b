package models

import "time"

// SalesType defines the type for sales record categories
type SalesType string

const (
	SalesTypeMembership SalesType = "membership"
	SalesTypeShop       SalesType = "shop"
	SalesTypeEvent      SalesType = "event"
	SalesTypeOther      SalesType = "other"
)

// IsValidSalesType checks if the provided type string is a valid SalesType.
func IsValidSalesType(salesType string) bool {
	switch SalesType(salesType) {
	case SalesTypeMembership, SalesTypeShop, SalesTypeEvent, SalesTypeOther:
		return true
	default:
		return false
	}
}

// SalesRecord is an immutable, append-only revenue row. The core never
// mutates these; they are only aggregated for dashboard reads and, with
// manager rights, deleted to correct entry mistakes.
type SalesRecord struct {
	ID        int64     `json:"id" db:"id"`
	StoreID   int64     `json:"store_id" db:"store_id" binding:"required"`
	Date      string    `json:"date" db:"date" binding:"required"` // 2006-01-02
	Type      SalesType `json:"type" db:"type"`
	Amount    float64   `json:"amount" db:"amount"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SalesFilters defines the available filters for querying sales records.
type SalesFilters struct {
	StoreID  *int64  `form:"store_id"`
	Type     *string `form:"type"`
	DateFrom *string `form:"date_from"` // 2006-01-02
	DateTo   *string `form:"date_to"`   // 2006-01-02
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
