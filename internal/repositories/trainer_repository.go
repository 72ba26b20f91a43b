package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
)

// TrainerRepository defines the interface for trainer-related database operations.
type TrainerRepository interface {
	CreateTrainer(executor SQLExecutor, trainer *models.Trainer) (int64, error)
	GetTrainerByID(id int64) (*models.Trainer, error)
	GetTrainersByStore(storeID int64, activeOnly bool) ([]models.Trainer, error)
	UpdateTrainer(executor SQLExecutor, trainer *models.Trainer) error
}

type trainerRepository struct {
	db *sql.DB
}

// NewTrainerRepository creates a new instance of TrainerRepository.
func NewTrainerRepository(db *sql.DB) TrainerRepository {
	return &trainerRepository{db: db}
}

func scanTrainer(row scanner) (*models.Trainer, error) {
	var trainer models.Trainer
	var specialty sql.NullString
	err := row.Scan(&trainer.ID, &trainer.StoreID, &trainer.FullName, &specialty,
		&trainer.IsActive, &trainer.CreatedAt, &trainer.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning trainer: %v", ErrDatabaseError, err)
	}
	if specialty.Valid {
		trainer.Specialty = &specialty.String
	}
	return &trainer, nil
}

func (r *trainerRepository) CreateTrainer(executor SQLExecutor, trainer *models.Trainer) (int64, error) {
	query := `INSERT INTO trainers (store_id, full_name, specialty, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	currentTime := time.Now()
	trainer.CreatedAt = currentTime
	trainer.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		trainer.StoreID, trainer.FullName, trainer.Specialty, trainer.IsActive,
		trainer.CreatedAt, trainer.UpdatedAt,
	).Scan(&trainer.ID)
	if err != nil {
		return 0, mapPqError(err, "creating trainer")
	}
	return trainer.ID, nil
}

func (r *trainerRepository) GetTrainerByID(id int64) (*models.Trainer, error) {
	query := `SELECT id, store_id, full_name, specialty, is_active, created_at, updated_at
	          FROM trainers WHERE id = $1`
	return scanTrainer(r.db.QueryRow(query, id))
}

func (r *trainerRepository) GetTrainersByStore(storeID int64, activeOnly bool) ([]models.Trainer, error) {
	query := `SELECT id, store_id, full_name, specialty, is_active, created_at, updated_at
	          FROM trainers WHERE store_id = $1`
	if activeOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY full_name ASC"

	rows, err := r.db.Query(query, storeID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying trainers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	trainers := []models.Trainer{}
	for rows.Next() {
		trainer, scanErr := scanTrainer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		trainers = append(trainers, *trainer)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating trainer rows: %v", ErrDatabaseError, err)
	}
	return trainers, nil
}

func (r *trainerRepository) UpdateTrainer(executor SQLExecutor, trainer *models.Trainer) error {
	query := `UPDATE trainers SET full_name = $1, specialty = $2, is_active = $3, updated_at = $4
	          WHERE id = $5
	          RETURNING updated_at`

	trainer.UpdatedAt = time.Now()
	err := executor.QueryRow(query, trainer.FullName, trainer.Specialty, trainer.IsActive,
		trainer.UpdatedAt, trainer.ID).Scan(&trainer.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: updating trainer ID %d: %v", ErrDatabaseError, trainer.ID, err)
	}
	return nil
}
