package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
)

// PlanRepository defines the interface for billing plan database operations.
type PlanRepository interface {
	CreatePlan(executor SQLExecutor, plan *models.Plan) (int64, error)
	GetPlanByID(id int64) (*models.Plan, error)
	GetPlans() ([]models.Plan, error)
	UpdatePlan(executor SQLExecutor, plan *models.Plan) error
}

type planRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new instance of PlanRepository.
func NewPlanRepository(db *sql.DB) PlanRepository {
	return &planRepository{db: db}
}

func scanPlan(row scanner) (*models.Plan, error) {
	var plan models.Plan
	var description sql.NullString
	err := row.Scan(&plan.ID, &plan.Name, &plan.SessionsPerMonth, &plan.Price,
		&description, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning plan: %v", ErrDatabaseError, err)
	}
	if description.Valid {
		plan.Description = &description.String
	}
	return &plan, nil
}

func (r *planRepository) CreatePlan(executor SQLExecutor, plan *models.Plan) (int64, error) {
	query := `INSERT INTO plans (name, sessions_per_month, price, description, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	currentTime := time.Now()
	plan.CreatedAt = currentTime
	plan.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		plan.Name, plan.SessionsPerMonth, plan.Price, plan.Description,
		plan.CreatedAt, plan.UpdatedAt,
	).Scan(&plan.ID)
	if err != nil {
		return 0, mapPqError(err, "creating plan")
	}
	return plan.ID, nil
}

func (r *planRepository) GetPlanByID(id int64) (*models.Plan, error) {
	query := `SELECT id, name, sessions_per_month, price, description, created_at, updated_at
	          FROM plans WHERE id = $1`
	return scanPlan(r.db.QueryRow(query, id))
}

func (r *planRepository) GetPlans() ([]models.Plan, error) {
	query := `SELECT id, name, sessions_per_month, price, description, created_at, updated_at
	          FROM plans ORDER BY price ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying plans: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	plans := []models.Plan{}
	for rows.Next() {
		plan, scanErr := scanPlan(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		plans = append(plans, *plan)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating plan rows: %v", ErrDatabaseError, err)
	}
	return plans, nil
}

func (r *planRepository) UpdatePlan(executor SQLExecutor, plan *models.Plan) error {
	query := `UPDATE plans SET name = $1, sessions_per_month = $2, price = $3, description = $4, updated_at = $5
	          WHERE id = $6
	          RETURNING updated_at`

	plan.UpdatedAt = time.Now()
	err := executor.QueryRow(query, plan.Name, plan.SessionsPerMonth, plan.Price,
		plan.Description, plan.UpdatedAt, plan.ID).Scan(&plan.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return mapPqError(err, fmt.Sprintf("updating plan ID %d", plan.ID))
	}
	return nil
}
