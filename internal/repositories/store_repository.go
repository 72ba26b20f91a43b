package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
)

// StoreRepository defines the interface for store and staff-roster database
// operations. Staff assignments are unique per (user, store); deactivation
// flips is_active and never deletes the row.
type StoreRepository interface {
	CreateStore(executor SQLExecutor, store *models.Store) (int64, error)
	GetStoreByID(id int64) (*models.Store, error)
	GetStoreByQRToken(token string) (*models.Store, error)
	GetStores(activeOnly bool) ([]models.Store, error)
	GetStoreIDs(activeOnly bool) ([]int64, error)
	UpdateStore(executor SQLExecutor, store *models.Store) error

	UpsertStaffAssignment(executor SQLExecutor, assignment *models.StoreStaffAssignment) (*models.StoreStaffAssignment, error)
	DeactivateStaffAssignment(executor SQLExecutor, userID, storeID int64) error
	GetStaffAssignments(storeID int64) ([]models.StoreStaffAssignment, error)
	GetActiveAssignment(userID, storeID int64) (*models.StoreStaffAssignment, error)
	GetActiveStoreIDsForUser(userID int64) ([]int64, error)
}

type storeRepository struct {
	db *sql.DB
}

// NewStoreRepository creates a new instance of StoreRepository.
func NewStoreRepository(db *sql.DB) StoreRepository {
	return &storeRepository{db: db}
}

func scanStore(row scanner) (*models.Store, error) {
	var store models.Store
	var address sql.NullString
	err := row.Scan(&store.ID, &store.Name, &address, &store.IsActive, &store.QRToken,
		&store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning store: %v", ErrDatabaseError, err)
	}
	if address.Valid {
		store.Address = &address.String
	}
	return &store, nil
}

const selectStoreFields = `id, name, address, is_active, qr_token, created_at, updated_at`

func (r *storeRepository) CreateStore(executor SQLExecutor, store *models.Store) (int64, error) {
	query := `INSERT INTO stores (name, address, is_active, qr_token, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	currentTime := time.Now()
	store.CreatedAt = currentTime
	store.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		store.Name, store.Address, store.IsActive, store.QRToken, store.CreatedAt, store.UpdatedAt,
	).Scan(&store.ID)
	if err != nil {
		return 0, mapPqError(err, "creating store")
	}
	return store.ID, nil
}

func (r *storeRepository) GetStoreByID(id int64) (*models.Store, error) {
	query := "SELECT " + selectStoreFields + " FROM stores WHERE id = $1"
	return scanStore(r.db.QueryRow(query, id))
}

func (r *storeRepository) GetStoreByQRToken(token string) (*models.Store, error) {
	query := "SELECT " + selectStoreFields + " FROM stores WHERE qr_token = $1"
	return scanStore(r.db.QueryRow(query, token))
}

func (r *storeRepository) GetStores(activeOnly bool) ([]models.Store, error) {
	query := "SELECT " + selectStoreFields + " FROM stores"
	if activeOnly {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying stores: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	stores := []models.Store{}
	for rows.Next() {
		store, scanErr := scanStore(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		stores = append(stores, *store)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating store rows: %v", ErrDatabaseError, err)
	}
	return stores, nil
}

func (r *storeRepository) GetStoreIDs(activeOnly bool) ([]int64, error) {
	query := "SELECT id FROM stores"
	if activeOnly {
		query += " WHERE is_active = true"
	}
	return r.queryIDs(query)
}

func (r *storeRepository) UpdateStore(executor SQLExecutor, store *models.Store) error {
	query := `UPDATE stores SET name = $1, address = $2, is_active = $3, updated_at = $4
	          WHERE id = $5
	          RETURNING updated_at`

	store.UpdatedAt = time.Now()
	err := executor.QueryRow(query, store.Name, store.Address, store.IsActive, store.UpdatedAt, store.ID).
		Scan(&store.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return mapPqError(err, fmt.Sprintf("updating store ID %d", store.ID))
	}
	return nil
}

// UpsertStaffAssignment creates or reactivates the single assignment row for
// (user, store). The unique constraint makes a racing second insert land on
// the ON CONFLICT path instead of producing a duplicate.
func (r *storeRepository) UpsertStaffAssignment(executor SQLExecutor, assignment *models.StoreStaffAssignment) (*models.StoreStaffAssignment, error) {
	query := `INSERT INTO store_staff_assignments (user_id, store_id, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, true, $4, $4)
	          ON CONFLICT (user_id, store_id)
	          DO UPDATE SET role = EXCLUDED.role, is_active = true, updated_at = EXCLUDED.updated_at
	          RETURNING id, user_id, store_id, role, is_active, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query,
		assignment.UserID, assignment.StoreID, assignment.Role, currentTime,
	).Scan(&assignment.ID, &assignment.UserID, &assignment.StoreID, &assignment.Role,
		&assignment.IsActive, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		return nil, mapPqError(err, "upserting staff assignment")
	}
	return assignment, nil
}

// DeactivateStaffAssignment keeps the row for history and only clears the flag.
func (r *storeRepository) DeactivateStaffAssignment(executor SQLExecutor, userID, storeID int64) error {
	query := `UPDATE store_staff_assignments SET is_active = false, updated_at = $1
	          WHERE user_id = $2 AND store_id = $3 AND is_active = true`

	result, err := executor.Exec(query, time.Now(), userID, storeID)
	if err != nil {
		return fmt.Errorf("%w: deactivating staff assignment: %v", ErrDatabaseError, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStaffAssignments returns the full roster for a store, active and
// historical, joined with user details.
func (r *storeRepository) GetStaffAssignments(storeID int64) ([]models.StoreStaffAssignment, error) {
	query := `SELECT a.id, a.user_id, a.store_id, a.role, a.is_active, a.created_at, a.updated_at,
	                 u.id, u.username, u.full_name, u.is_active
	          FROM store_staff_assignments a
	          JOIN users u ON a.user_id = u.id
	          WHERE a.store_id = $1
	          ORDER BY a.is_active DESC, u.username ASC`

	rows, err := r.db.Query(query, storeID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying staff assignments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	assignments := []models.StoreStaffAssignment{}
	for rows.Next() {
		var assignment models.StoreStaffAssignment
		var user models.User
		var fullName sql.NullString
		err := rows.Scan(&assignment.ID, &assignment.UserID, &assignment.StoreID, &assignment.Role,
			&assignment.IsActive, &assignment.CreatedAt, &assignment.UpdatedAt,
			&user.ID, &user.Username, &fullName, &user.IsActive)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning staff assignment: %v", ErrDatabaseError, err)
		}
		if fullName.Valid {
			user.FullName = &fullName.String
		}
		assignment.User = &user
		assignments = append(assignments, assignment)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating staff assignment rows: %v", ErrDatabaseError, err)
	}
	return assignments, nil
}

func (r *storeRepository) GetActiveAssignment(userID, storeID int64) (*models.StoreStaffAssignment, error) {
	query := `SELECT id, user_id, store_id, role, is_active, created_at, updated_at
	          FROM store_staff_assignments
	          WHERE user_id = $1 AND store_id = $2 AND is_active = true`

	var assignment models.StoreStaffAssignment
	err := r.db.QueryRow(query, userID, storeID).Scan(
		&assignment.ID, &assignment.UserID, &assignment.StoreID, &assignment.Role,
		&assignment.IsActive, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting active assignment for user %d store %d: %v", ErrDatabaseError, userID, storeID, err)
	}
	return &assignment, nil
}

// GetActiveStoreIDsForUser is the scope query for manager/staff principals:
// the stores where the user holds an active assignment.
func (r *storeRepository) GetActiveStoreIDsForUser(userID int64) ([]int64, error) {
	query := `SELECT store_id FROM store_staff_assignments WHERE user_id = $1 AND is_active = true`
	return r.queryIDs(query, userID)
}

func (r *storeRepository) queryIDs(query string, args ...interface{}) ([]int64, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying ids: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning id: %v", ErrDatabaseError, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating id rows: %v", ErrDatabaseError, err)
	}
	return ids, nil
}
