package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

var (
	ErrPlanNameExists = errors.New("plan name already exists")
	ErrPlanValidation = errors.New("plan data validation error")
)

// CreatePlanRequest DTO. SessionsPerMonth of zero means unlimited.
type CreatePlanRequest struct {
	Name             string  `json:"name" binding:"required"`
	SessionsPerMonth int     `json:"sessions_per_month"`
	Price            float64 `json:"price"`
	Description      *string `json:"description"`
}

type UpdatePlanRequest struct {
	Name             *string  `json:"name"`
	SessionsPerMonth *int     `json:"sessions_per_month"`
	Price            *float64 `json:"price"`
	Description      *string  `json:"description"`
}

type PlanService interface {
	CreatePlan(req CreatePlanRequest) (*models.Plan, error)
	GetPlanByID(planID int64) (*models.Plan, error)
	GetPlans() ([]models.Plan, error)
	UpdatePlan(planID int64, req UpdatePlanRequest) (*models.Plan, error)
}

type planService struct {
	planRepo repositories.PlanRepository
	db       *sql.DB
}

// NewPlanService creates a new instance of PlanService.
func NewPlanService(planRepo repositories.PlanRepository, db *sql.DB) PlanService {
	return &planService{planRepo: planRepo, db: db}
}

func (s *planService) CreatePlan(req CreatePlanRequest) (*models.Plan, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrPlanValidation)
	}
	if req.SessionsPerMonth < 0 {
		return nil, fmt.Errorf("%w: sessions per month cannot be negative", ErrPlanValidation)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrPlanValidation)
	}

	plan := models.Plan{
		Name:             strings.TrimSpace(req.Name),
		SessionsPerMonth: req.SessionsPerMonth,
		Price:            req.Price,
		Description:      req.Description,
	}
	planID, err := s.planRepo.CreatePlan(s.db, &plan)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrPlanNameExists
		}
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return s.planRepo.GetPlanByID(planID)
}

func (s *planService) GetPlanByID(planID int64) (*models.Plan, error) {
	plan, err := s.planRepo.GetPlanByID(planID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to retrieve plan: %w", err)
	}
	return plan, nil
}

func (s *planService) GetPlans() ([]models.Plan, error) {
	plans, err := s.planRepo.GetPlans()
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

func (s *planService) UpdatePlan(planID int64, req UpdatePlanRequest) (*models.Plan, error) {
	plan, err := s.planRepo.GetPlanByID(planID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to retrieve plan for update: %w", err)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrPlanValidation)
		}
		plan.Name = strings.TrimSpace(*req.Name)
	}
	if req.SessionsPerMonth != nil {
		if *req.SessionsPerMonth < 0 {
			return nil, fmt.Errorf("%w: sessions per month cannot be negative", ErrPlanValidation)
		}
		plan.SessionsPerMonth = *req.SessionsPerMonth
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrPlanValidation)
		}
		plan.Price = *req.Price
	}
	if req.Description != nil {
		plan.Description = req.Description
	}

	if err := s.planRepo.UpdatePlan(s.db, plan); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrPlanNameExists
		}
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return s.planRepo.GetPlanByID(planID)
}
