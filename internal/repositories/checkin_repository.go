package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
)

// CheckInRepository defines the interface for check-in ledger database operations.
// The open-record invariant (at most one row with checked_out_at IS NULL per
// member and store) is backed by a partial unique index, so concurrent
// inserts cannot both succeed; the loser sees ErrDuplicateKey.
type CheckInRepository interface {
	// WithTransaction runs fn atomically; the self-service toggle's
	// read-then-decide-then-write sequence goes through it.
	WithTransaction(fn func(tx *sql.Tx) error) error
	CreateCheckIn(executor SQLExecutor, record *models.CheckInRecord) (*models.CheckInRecord, error)
	GetCheckInByID(id int64) (*models.CheckInRecord, error)
	FindOpenCheckIn(executor SQLExecutor, memberID, storeID int64, forUpdate bool) (*models.CheckInRecord, error)
	CloseCheckIn(executor SQLExecutor, id int64, checkedOutAt time.Time) (*models.CheckInRecord, error)
	GetOpenCheckIns(storeID int64) ([]models.CheckInRecord, error)
	GetCheckInsForDay(storeID int64, dayStart, dayEnd time.Time) ([]models.CheckInRecord, error)
}

type checkInRepository struct {
	db *sql.DB
}

// NewCheckInRepository creates a new instance of CheckInRepository.
func NewCheckInRepository(db *sql.DB) CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) WithTransaction(fn func(tx *sql.Tx) error) error {
	return WithTx(r.db, fn)
}

const selectCheckInFields = `
	ci.id, ci.member_id, ci.store_id, ci.method, ci.checked_in_at, ci.checked_out_at, ci.created_at,
	m.id, m.store_id, m.member_number, m.full_name, m.phone_number, m.status, m.remaining_sessions, m.expires_at
`

const checkInJoins = `
	FROM check_ins ci
	JOIN members m ON ci.member_id = m.id
`

// scanCheckInRow scans a check-in row joined with its member.
func scanCheckInRow(row scanner) (*models.CheckInRecord, error) {
	var record models.CheckInRecord
	var member models.Member
	var checkedOutAt sql.NullTime
	var memberPhone sql.NullString
	var memberExpiresAt sql.NullTime

	err := row.Scan(
		&record.ID, &record.MemberID, &record.StoreID, &record.Method,
		&record.CheckedInAt, &checkedOutAt, &record.CreatedAt,
		&member.ID, &member.StoreID, &member.MemberNumber, &member.FullName,
		&memberPhone, &member.Status, &member.RemainingSessions, &memberExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning check-in with member: %v", ErrDatabaseError, err)
	}

	if checkedOutAt.Valid {
		record.CheckedOutAt = &checkedOutAt.Time
	}
	if memberPhone.Valid {
		member.PhoneNumber = &memberPhone.String
	}
	if memberExpiresAt.Valid {
		member.ExpiresAt = &memberExpiresAt.Time
	}
	record.Member = &member
	return &record, nil
}

// CreateCheckIn inserts a new open check-in. A second open record for the
// same (member, store) trips the partial unique index and is surfaced as
// ErrDuplicateKey for the service to translate.
func (r *checkInRepository) CreateCheckIn(executor SQLExecutor, record *models.CheckInRecord) (*models.CheckInRecord, error) {
	query := `INSERT INTO check_ins (member_id, store_id, method, checked_in_at, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`

	currentTime := time.Now()
	if record.CheckedInAt.IsZero() {
		record.CheckedInAt = currentTime
	}
	record.CreatedAt = currentTime

	err := executor.QueryRow(query,
		record.MemberID, record.StoreID, record.Method, record.CheckedInAt, record.CreatedAt,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return nil, mapPqError(err, "creating check-in")
	}
	return record, nil
}

func (r *checkInRepository) GetCheckInByID(id int64) (*models.CheckInRecord, error) {
	query := "SELECT " + selectCheckInFields + checkInJoins + " WHERE ci.id = $1"
	return scanCheckInRow(r.db.QueryRow(query, id))
}

// FindOpenCheckIn returns the open record for (member, store), or ErrNotFound.
// With forUpdate the row is locked for the lifetime of the surrounding
// transaction, which the self-service toggle relies on for its
// check-then-act sequence.
func (r *checkInRepository) FindOpenCheckIn(executor SQLExecutor, memberID, storeID int64, forUpdate bool) (*models.CheckInRecord, error) {
	query := `SELECT ci.id, ci.member_id, ci.store_id, ci.method, ci.checked_in_at, ci.checked_out_at, ci.created_at
	          FROM check_ins ci
	          WHERE ci.member_id = $1 AND ci.store_id = $2 AND ci.checked_out_at IS NULL`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var record models.CheckInRecord
	var checkedOutAt sql.NullTime
	err := executor.QueryRow(query, memberID, storeID).Scan(
		&record.ID, &record.MemberID, &record.StoreID, &record.Method,
		&record.CheckedInAt, &checkedOutAt, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding open check-in for member %d store %d: %v", ErrDatabaseError, memberID, storeID, err)
	}
	if checkedOutAt.Valid {
		record.CheckedOutAt = &checkedOutAt.Time
	}
	return &record, nil
}

// CloseCheckIn stamps checked_out_at on an open record. The checked_out_at
// IS NULL guard makes the close idempotence-safe: a second close finds no
// row and returns ErrNotFound.
func (r *checkInRepository) CloseCheckIn(executor SQLExecutor, id int64, checkedOutAt time.Time) (*models.CheckInRecord, error) {
	query := `UPDATE check_ins SET checked_out_at = $1
	          WHERE id = $2 AND checked_out_at IS NULL
	          RETURNING id, member_id, store_id, method, checked_in_at, checked_out_at, created_at`

	var record models.CheckInRecord
	var closedAt sql.NullTime
	err := executor.QueryRow(query, checkedOutAt, id).Scan(
		&record.ID, &record.MemberID, &record.StoreID, &record.Method,
		&record.CheckedInAt, &closedAt, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: closing check-in ID %d: %v", ErrDatabaseError, id, err)
	}
	if closedAt.Valid {
		record.CheckedOutAt = &closedAt.Time
	}
	return &record, nil
}

// GetOpenCheckIns returns all open records for a store, newest first.
func (r *checkInRepository) GetOpenCheckIns(storeID int64) ([]models.CheckInRecord, error) {
	query := "SELECT " + selectCheckInFields + checkInJoins +
		" WHERE ci.store_id = $1 AND ci.checked_out_at IS NULL ORDER BY ci.checked_in_at DESC"
	return r.queryCheckIns(query, storeID)
}

// GetCheckInsForDay returns every record (open or closed) whose check-in
// falls inside [dayStart, dayEnd), newest first.
func (r *checkInRepository) GetCheckInsForDay(storeID int64, dayStart, dayEnd time.Time) ([]models.CheckInRecord, error) {
	query := "SELECT " + selectCheckInFields + checkInJoins +
		" WHERE ci.store_id = $1 AND ci.checked_in_at >= $2 AND ci.checked_in_at < $3 ORDER BY ci.checked_in_at DESC"
	return r.queryCheckIns(query, storeID, dayStart, dayEnd)
}

func (r *checkInRepository) queryCheckIns(query string, args ...interface{}) ([]models.CheckInRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying check-ins: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	records := []models.CheckInRecord{}
	for rows.Next() {
		record, scanErr := scanCheckInRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *record)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating check-in rows: %v", ErrDatabaseError, err)
	}
	return records, nil
}
