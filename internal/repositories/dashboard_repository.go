package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
)

// DashboardRepository holds the count and window queries used by the
// dashboard read model. Each query runs on its own connection; the
// aggregate is deliberately not one transaction (best-effort snapshot).
type DashboardRepository interface {
	CountReservationsForDay(storeID int64, date string) (int, error)
	CountCheckInsBetween(storeID int64, from, to time.Time) (int, error)
	CountOpenCheckIns(storeID int64) (int, error)
	CountMembers(storeID int64) (total int, active int, err error)
	CountNewMembersSince(storeID int64, since time.Time) (int, error)
	GetExpiringMembers(storeID int64, from, to time.Time) ([]models.Member, error)
}

type dashboardRepository struct {
	db *sql.DB
}

// NewDashboardRepository creates a new instance of DashboardRepository.
func NewDashboardRepository(db *sql.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) scanCount(query string, args ...interface{}) (int, error) {
	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *dashboardRepository) CountReservationsForDay(storeID int64, date string) (int, error) {
	return r.scanCount(`SELECT COUNT(*) FROM reservations WHERE store_id = $1 AND date = $2`, storeID, date)
}

func (r *dashboardRepository) CountCheckInsBetween(storeID int64, from, to time.Time) (int, error) {
	return r.scanCount(`SELECT COUNT(*) FROM check_ins
	                    WHERE store_id = $1 AND checked_in_at >= $2 AND checked_in_at < $3`,
		storeID, from, to)
}

func (r *dashboardRepository) CountOpenCheckIns(storeID int64) (int, error) {
	return r.scanCount(`SELECT COUNT(*) FROM check_ins WHERE store_id = $1 AND checked_out_at IS NULL`, storeID)
}

func (r *dashboardRepository) CountMembers(storeID int64) (int, int, error) {
	var total, active int
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'active') FROM members WHERE store_id = $1`
	if err := r.db.QueryRow(query, storeID).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("%w: counting members for store %d: %v", ErrDatabaseError, storeID, err)
	}
	return total, active, nil
}

func (r *dashboardRepository) CountNewMembersSince(storeID int64, since time.Time) (int, error) {
	return r.scanCount(`SELECT COUNT(*) FROM members WHERE store_id = $1 AND created_at >= $2`, storeID, since)
}

// GetExpiringMembers returns members whose expires_at falls inside
// [from, to], sorted ascending by expiry.
func (r *dashboardRepository) GetExpiringMembers(storeID int64, from, to time.Time) ([]models.Member, error) {
	query := `SELECT id, store_id, member_number, full_name, phone_number, status, remaining_sessions, expires_at
	          FROM members
	          WHERE store_id = $1 AND expires_at IS NOT NULL AND expires_at >= $2 AND expires_at <= $3
	          ORDER BY expires_at ASC`

	rows, err := r.db.Query(query, storeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: querying expiring members: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var member models.Member
		var phone sql.NullString
		var expiresAt sql.NullTime
		err := rows.Scan(&member.ID, &member.StoreID, &member.MemberNumber, &member.FullName,
			&phone, &member.Status, &member.RemainingSessions, &expiresAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning expiring member: %v", ErrDatabaseError, err)
		}
		if phone.Valid {
			member.PhoneNumber = &phone.String
		}
		if expiresAt.Valid {
			member.ExpiresAt = &expiresAt.Time
		}
		members = append(members, member)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating expiring member rows: %v", ErrDatabaseError, err)
	}
	return members, nil
}
