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
	ErrTrainerNotFound   = errors.New("trainer not found")
	ErrTrainerValidation = errors.New("trainer data validation error")
)

// CreateTrainerRequest DTO
type CreateTrainerRequest struct {
	StoreID   int64   `json:"store_id" binding:"required"`
	FullName  string  `json:"full_name" binding:"required"`
	Specialty *string `json:"specialty"`
}

type UpdateTrainerRequest struct {
	FullName  *string `json:"full_name"`
	Specialty *string `json:"specialty"`
	IsActive  *bool   `json:"is_active"`
}

type TrainerService interface {
	CreateTrainer(req CreateTrainerRequest) (*models.Trainer, error)
	GetTrainerByID(trainerID int64) (*models.Trainer, error)
	GetTrainersByStore(storeID int64, activeOnly bool) ([]models.Trainer, error)
	UpdateTrainer(trainerID int64, req UpdateTrainerRequest) (*models.Trainer, error)
}

type trainerService struct {
	trainerRepo repositories.TrainerRepository
	storeRepo   repositories.StoreRepository
	db          *sql.DB
}

// NewTrainerService creates a new instance of TrainerService.
func NewTrainerService(trainerRepo repositories.TrainerRepository, storeRepo repositories.StoreRepository, db *sql.DB) TrainerService {
	return &trainerService{
		trainerRepo: trainerRepo,
		storeRepo:   storeRepo,
		db:          db,
	}
}

func (s *trainerService) CreateTrainer(req CreateTrainerRequest) (*models.Trainer, error) {
	if strings.TrimSpace(req.FullName) == "" {
		return nil, fmt.Errorf("%w: full name cannot be empty", ErrTrainerValidation)
	}
	if _, err := s.storeRepo.GetStoreByID(req.StoreID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to verify store: %w", err)
	}

	trainer := models.Trainer{
		StoreID:   req.StoreID,
		FullName:  strings.TrimSpace(req.FullName),
		Specialty: req.Specialty,
		IsActive:  true,
	}
	trainerID, err := s.trainerRepo.CreateTrainer(s.db, &trainer)
	if err != nil {
		return nil, fmt.Errorf("failed to create trainer: %w", err)
	}
	return s.trainerRepo.GetTrainerByID(trainerID)
}

func (s *trainerService) GetTrainerByID(trainerID int64) (*models.Trainer, error) {
	trainer, err := s.trainerRepo.GetTrainerByID(trainerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, fmt.Errorf("failed to retrieve trainer: %w", err)
	}
	return trainer, nil
}

func (s *trainerService) GetTrainersByStore(storeID int64, activeOnly bool) ([]models.Trainer, error) {
	trainers, err := s.trainerRepo.GetTrainersByStore(storeID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainers: %w", err)
	}
	return trainers, nil
}

func (s *trainerService) UpdateTrainer(trainerID int64, req UpdateTrainerRequest) (*models.Trainer, error) {
	trainer, err := s.trainerRepo.GetTrainerByID(trainerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, fmt.Errorf("failed to retrieve trainer for update: %w", err)
	}

	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty", ErrTrainerValidation)
		}
		trainer.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Specialty != nil {
		trainer.Specialty = req.Specialty
	}
	if req.IsActive != nil {
		trainer.IsActive = *req.IsActive
	}

	if err := s.trainerRepo.UpdateTrainer(s.db, trainer); err != nil {
		return nil, fmt.Errorf("failed to update trainer: %w", err)
	}
	return s.trainerRepo.GetTrainerByID(trainerID)
}
