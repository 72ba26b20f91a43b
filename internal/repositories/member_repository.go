package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_crm_backend/internal/models"
)

// MemberRepository defines the interface for member-related database operations.
type MemberRepository interface {
	CreateMember(executor SQLExecutor, member *models.Member) (int64, error)
	GetMemberByID(id int64) (*models.Member, error)
	GetMembers(filters models.MemberFilters) ([]models.Member, int, error)
	UpdateMember(executor SQLExecutor, member *models.Member) error
	DeleteMember(executor SQLExecutor, id int64) error
	// ConsumeSession is the quota compare-and-decrement. It only touches the
	// row when remaining_sessions > 0 and reports whether it did, so two
	// concurrent bookings can never both draw the last session.
	ConsumeSession(executor SQLExecutor, memberID int64) (bool, error)
}

type memberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new instance of MemberRepository.
func NewMemberRepository(db *sql.DB) MemberRepository {
	return &memberRepository{db: db}
}

const selectMemberFields = `
	m.id, m.store_id, m.member_number, m.full_name, m.phone_number, m.email, m.status,
	m.plan_id, m.remaining_sessions, m.expires_at, m.notes, m.created_at, m.updated_at,
	p.id, p.name, p.sessions_per_month, p.price
`

const memberJoins = `
	FROM members m
	LEFT JOIN plans p ON m.plan_id = p.id
`

// scanMemberRow scans a member row with its optional plan join.
func scanMemberRow(row scanner, isList bool) (*models.Member, int, error) {
	var member models.Member
	var phone, email, notes sql.NullString
	var planID sql.NullInt64
	var expiresAt sql.NullTime
	var planJoinedID sql.NullInt64
	var planName sql.NullString
	var planSessions sql.NullInt32
	var planPrice sql.NullFloat64
	var totalCount int

	scanDest := []interface{}{
		&member.ID, &member.StoreID, &member.MemberNumber, &member.FullName,
		&phone, &email, &member.Status, &planID, &member.RemainingSessions,
		&expiresAt, &notes, &member.CreatedAt, &member.UpdatedAt,
		&planJoinedID, &planName, &planSessions, &planPrice,
	}
	if isList {
		scanDest = append(scanDest, &totalCount)
	}

	if err := row.Scan(scanDest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("%w: scanning member with plan: %v", ErrDatabaseError, err)
	}

	if phone.Valid {
		member.PhoneNumber = &phone.String
	}
	if email.Valid {
		member.Email = &email.String
	}
	if notes.Valid {
		member.Notes = &notes.String
	}
	if expiresAt.Valid {
		member.ExpiresAt = &expiresAt.Time
	}
	if planID.Valid {
		member.PlanID = &planID.Int64
		if planJoinedID.Valid {
			member.Plan = &models.Plan{
				ID:               planJoinedID.Int64,
				Name:             planName.String,
				SessionsPerMonth: int(planSessions.Int32),
				Price:            planPrice.Float64,
			}
		}
	}
	return &member, totalCount, nil
}

func (r *memberRepository) CreateMember(executor SQLExecutor, member *models.Member) (int64, error) {
	query := `INSERT INTO members
	            (store_id, member_number, full_name, phone_number, email, status, plan_id, remaining_sessions, expires_at, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`

	currentTime := time.Now()
	member.CreatedAt = currentTime
	member.UpdatedAt = currentTime
	if member.Status == "" {
		member.Status = models.MemberStatusActive
	}

	var expiresAt sql.NullTime
	if member.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *member.ExpiresAt, Valid: true}
	}

	err := executor.QueryRow(query,
		member.StoreID, member.MemberNumber, member.FullName, member.PhoneNumber, member.Email,
		member.Status, member.PlanID, member.RemainingSessions, expiresAt, member.Notes,
		member.CreatedAt, member.UpdatedAt,
	).Scan(&member.ID)
	if err != nil {
		return 0, mapPqError(err, "creating member")
	}
	return member.ID, nil
}

func (r *memberRepository) GetMemberByID(id int64) (*models.Member, error) {
	query := "SELECT " + selectMemberFields + memberJoins + " WHERE m.id = $1"
	member, _, err := scanMemberRow(r.db.QueryRow(query, id), false)
	return member, err
}

// GetMembers lists members with pagination; Search matches name, phone
// number or member number.
func (r *memberRepository) GetMembers(filters models.MemberFilters) ([]models.Member, int, error) {
	members := []models.Member{}
	var totalCount int

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectMemberFields + ", COUNT(*) OVER() as total_count " + memberJoins)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.StoreID != nil {
		conditions = append(conditions, fmt.Sprintf("m.store_id = $%d", argCount))
		args = append(args, *filters.StoreID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("m.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.Search != nil && strings.TrimSpace(*filters.Search) != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(m.full_name ILIKE $%d OR m.phone_number ILIKE $%d OR m.member_number ILIKE $%d)",
			argCount, argCount, argCount))
		args = append(args, "%"+strings.TrimSpace(*filters.Search)+"%")
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY m.full_name ASC")

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
		return nil, 0, fmt.Errorf("%w: querying members: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		member, scannedTotalCount, scanErr := scanMemberRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		members = append(members, *member)
		totalCount = scannedTotalCount
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating member rows: %v", ErrDatabaseError, err)
	}
	if len(members) == 0 {
		totalCount = 0
	}
	return members, totalCount, nil
}

func (r *memberRepository) UpdateMember(executor SQLExecutor, member *models.Member) error {
	query := `UPDATE members SET
	            member_number = $1, full_name = $2, phone_number = $3, email = $4, status = $5,
	            plan_id = $6, remaining_sessions = $7, expires_at = $8, notes = $9, updated_at = $10
	          WHERE id = $11
	          RETURNING updated_at`

	member.UpdatedAt = time.Now()

	var expiresAt sql.NullTime
	if member.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *member.ExpiresAt, Valid: true}
	}

	err := executor.QueryRow(query,
		member.MemberNumber, member.FullName, member.PhoneNumber, member.Email, member.Status,
		member.PlanID, member.RemainingSessions, expiresAt, member.Notes, member.UpdatedAt, member.ID,
	).Scan(&member.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return mapPqError(err, fmt.Sprintf("updating member ID %d", member.ID))
	}
	return nil
}

func (r *memberRepository) DeleteMember(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting member ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeSession atomically decrements remaining_sessions when positive.
// Returns false when the quota is already exhausted (no row touched).
func (r *memberRepository) ConsumeSession(executor SQLExecutor, memberID int64) (bool, error) {
	query := `UPDATE members
	          SET remaining_sessions = remaining_sessions - 1, updated_at = $1
	          WHERE id = $2 AND remaining_sessions > 0`

	result, err := executor.Exec(query, time.Now(), memberID)
	if err != nil {
		return false, fmt.Errorf("%w: consuming session for member ID %d: %v", ErrDatabaseError, memberID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: consuming session for member ID %d: %v", ErrDatabaseError, memberID, err)
	}
	return rowsAffected == 1, nil
}
