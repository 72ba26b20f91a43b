package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_crm_backend/internal/models"
)

// ReservationRepository defines the interface for reservation database operations.
// The no-duplicate-slot invariant (one confirmed reservation per member, date
// and start time) is backed by a partial unique index.
type ReservationRepository interface {
	// WithTransaction runs fn atomically; the quota decrement and the
	// reservation insert share one transaction through it.
	WithTransaction(fn func(tx *sql.Tx) error) error
	CreateReservation(executor SQLExecutor, reservation *models.Reservation) (*models.Reservation, error)
	GetReservationByID(id int64) (*models.Reservation, error)
	GetReservations(filters models.ReservationFilters) ([]models.Reservation, int, error)
	UpdateReservationStatus(executor SQLExecutor, id int64, from, to models.ReservationStatus, cancelReason, notes *string) (*models.Reservation, error)
	GetReservationsForDay(storeID int64, date string) ([]models.Reservation, error)
	GetRecentTerminations(storeID int64, since time.Time) ([]models.Reservation, error)
}

type reservationRepository struct {
	db *sql.DB
}

// NewReservationRepository creates a new instance of ReservationRepository.
func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) WithTransaction(fn func(tx *sql.Tx) error) error {
	return WithTx(r.db, fn)
}

const selectReservationFields = `
	r.id, r.member_id, r.trainer_id, r.store_id, to_char(r.date, 'YYYY-MM-DD'),
	to_char(r.start_time, 'HH24:MI'), to_char(r.end_time, 'HH24:MI'),
	r.status, r.notes, r.cancel_reason, r.created_at, r.updated_at,
	m.id, m.store_id, m.member_number, m.full_name, m.status, m.remaining_sessions, m.expires_at,
	t.id, t.store_id, t.full_name, t.is_active
`

const reservationJoins = `
	FROM reservations r
	JOIN members m ON r.member_id = m.id
	JOIN trainers t ON r.trainer_id = t.id
`

// scanReservationRow scans a reservation row joined with member and trainer.
// isList adds the COUNT(*) OVER() column used by paginated queries.
func scanReservationRow(row scanner, isList bool) (*models.Reservation, int, error) {
	var reservation models.Reservation
	var member models.Member
	var trainer models.Trainer
	var notes, cancelReason sql.NullString
	var memberExpiresAt sql.NullTime
	var totalCount int

	scanDest := []interface{}{
		&reservation.ID, &reservation.MemberID, &reservation.TrainerID, &reservation.StoreID,
		&reservation.Date, &reservation.StartTime, &reservation.EndTime,
		&reservation.Status, &notes, &cancelReason, &reservation.CreatedAt, &reservation.UpdatedAt,
		&member.ID, &member.StoreID, &member.MemberNumber, &member.FullName,
		&member.Status, &member.RemainingSessions, &memberExpiresAt,
		&trainer.ID, &trainer.StoreID, &trainer.FullName, &trainer.IsActive,
	}
	if isList {
		scanDest = append(scanDest, &totalCount)
	}

	if err := row.Scan(scanDest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("%w: scanning reservation with details: %v", ErrDatabaseError, err)
	}

	if notes.Valid {
		reservation.Notes = &notes.String
	}
	if cancelReason.Valid {
		reservation.CancelReason = &cancelReason.String
	}
	if memberExpiresAt.Valid {
		member.ExpiresAt = &memberExpiresAt.Time
	}
	reservation.Member = &member
	reservation.Trainer = &trainer
	return &reservation, totalCount, nil
}

// CreateReservation inserts a reservation in confirmed state. A concurrent
// insert for the same (member, date, start_time) trips the partial unique
// index and comes back as ErrDuplicateKey.
func (r *reservationRepository) CreateReservation(executor SQLExecutor, reservation *models.Reservation) (*models.Reservation, error) {
	query := `INSERT INTO reservations
	            (member_id, trainer_id, store_id, date, start_time, end_time, status, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	reservation.CreatedAt = currentTime
	reservation.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		reservation.MemberID, reservation.TrainerID, reservation.StoreID,
		reservation.Date, reservation.StartTime, reservation.EndTime,
		reservation.Status, reservation.Notes, reservation.CreatedAt, reservation.UpdatedAt,
	).Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt)
	if err != nil {
		return nil, mapPqError(err, "creating reservation")
	}
	return reservation, nil
}

func (r *reservationRepository) GetReservationByID(id int64) (*models.Reservation, error) {
	query := "SELECT " + selectReservationFields + reservationJoins + " WHERE r.id = $1"
	reservation, _, err := scanReservationRow(r.db.QueryRow(query, id), false)
	return reservation, err
}

func (r *reservationRepository) GetReservations(filters models.ReservationFilters) ([]models.Reservation, int, error) {
	reservations := []models.Reservation{}
	var totalCount int

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectReservationFields + ", COUNT(*) OVER() as total_count " + reservationJoins)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.MemberID != nil {
		conditions = append(conditions, fmt.Sprintf("r.member_id = $%d", argCount))
		args = append(args, *filters.MemberID)
		argCount++
	}
	if filters.TrainerID != nil {
		conditions = append(conditions, fmt.Sprintf("r.trainer_id = $%d", argCount))
		args = append(args, *filters.TrainerID)
		argCount++
	}
	if filters.StoreID != nil {
		conditions = append(conditions, fmt.Sprintf("r.store_id = $%d", argCount))
		args = append(args, *filters.StoreID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("r.date >= $%d", argCount))
		args = append(args, *filters.DateFrom)
		argCount++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("r.date <= $%d", argCount))
		args = append(args, *filters.DateTo)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY r.date DESC, r.start_time DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying reservations: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		reservation, scannedTotalCount, scanErr := scanReservationRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		reservations = append(reservations, *reservation)
		totalCount = scannedTotalCount
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating reservation rows: %v", ErrDatabaseError, err)
	}
	if len(reservations) == 0 {
		totalCount = 0
	}
	return reservations, totalCount, nil
}

// UpdateReservationStatus moves a reservation from one status to another.
// Transition legality is decided by the service via
// models.CanTransitionReservation; the status = from guard makes the write
// a compare-and-set so a concurrent transition loses cleanly with
// ErrNotFound instead of clobbering a terminal state.
func (r *reservationRepository) UpdateReservationStatus(executor SQLExecutor, id int64, from, to models.ReservationStatus, cancelReason, notes *string) (*models.Reservation, error) {
	query := `UPDATE reservations SET
	            status = $1,
	            cancel_reason = COALESCE($2, cancel_reason),
	            notes = COALESCE($3, notes),
	            updated_at = $4
	          WHERE id = $5 AND status = $6
	          RETURNING id`

	var updatedID int64
	err := executor.QueryRow(query, to, cancelReason, notes, time.Now(), id, from).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating reservation ID %d status: %v", ErrDatabaseError, id, err)
	}
	return r.GetReservationByID(updatedID)
}

// GetReservationsForDay returns a store's reservations on one date,
// ordered by start time.
func (r *reservationRepository) GetReservationsForDay(storeID int64, date string) ([]models.Reservation, error) {
	query := "SELECT " + selectReservationFields + reservationJoins +
		" WHERE r.store_id = $1 AND r.date = $2 ORDER BY r.start_time ASC"
	return r.queryReservations(query, storeID, date)
}

// GetRecentTerminations returns reservations moved to cancelled or no_show
// since the given instant, newest first. updated_at is stamped by the status
// transition, so the window tracks when the termination happened, not the
// booked slot date.
func (r *reservationRepository) GetRecentTerminations(storeID int64, since time.Time) ([]models.Reservation, error) {
	query := "SELECT " + selectReservationFields + reservationJoins +
		` WHERE r.store_id = $1 AND r.status IN ('cancelled', 'no_show') AND r.updated_at >= $2
		  ORDER BY r.updated_at DESC`
	return r.queryReservations(query, storeID, since)
}

func (r *reservationRepository) queryReservations(query string, args ...interface{}) ([]models.Reservation, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying reservations: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	reservations := []models.Reservation{}
	for rows.Next() {
		reservation, _, scanErr := scanReservationRow(rows, false)
		if scanErr != nil {
			return nil, scanErr
		}
		reservations = append(reservations, *reservation)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating reservation rows: %v", ErrDatabaseError, err)
	}
	return reservations, nil
}
