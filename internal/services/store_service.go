package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

var (
	ErrStoreNotFound      = errors.New("store not found")
	ErrStoreNameExists    = errors.New("store name already exists")
	ErrStoreValidation    = errors.New("store data validation error")
	ErrAssignmentNotFound = errors.New("staff assignment not found")
	ErrStaffUserNotFound  = errors.New("user for staff assignment not found")
)

// CreateStoreRequest DTO
type CreateStoreRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
}

type UpdateStoreRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"is_active"`
}

// AssignStaffRequest DTO. Re-assigning an existing pair reactivates it with
// the new role.
type AssignStaffRequest struct {
	UserID  int64  `json:"user_id" binding:"required"`
	StoreID int64  `json:"store_id" binding:"required"`
	Role    string `json:"role" binding:"required"`
}

type StoreService interface {
	CreateStore(req CreateStoreRequest) (*models.Store, error)
	GetStoreByID(storeID int64) (*models.Store, error)
	GetStores(activeOnly bool) ([]models.Store, error)
	UpdateStore(storeID int64, req UpdateStoreRequest) (*models.Store, error)
	RotateQRToken(storeID int64) (*models.Store, error)

	AssignStaff(req AssignStaffRequest) (*models.StoreStaffAssignment, error)
	RemoveStaff(userID, storeID int64) error
	GetStaffRoster(storeID int64) ([]models.StoreStaffAssignment, error)
}

type storeService struct {
	storeRepo repositories.StoreRepository
	authRepo  repositories.AuthRepository
	db        *sql.DB
}

// NewStoreService creates a new instance of StoreService.
func NewStoreService(storeRepo repositories.StoreRepository, authRepo repositories.AuthRepository, db *sql.DB) StoreService {
	return &storeService{
		storeRepo: storeRepo,
		authRepo:  authRepo,
		db:        db,
	}
}

func (s *storeService) CreateStore(req CreateStoreRequest) (*models.Store, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrStoreValidation)
	}

	store := models.Store{
		Name:     strings.TrimSpace(req.Name),
		Address:  req.Address,
		IsActive: true,
		QRToken:  uuid.NewString(),
	}
	storeID, err := s.storeRepo.CreateStore(s.db, &store)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrStoreNameExists
		}
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return s.storeRepo.GetStoreByID(storeID)
}

func (s *storeService) GetStoreByID(storeID int64) (*models.Store, error) {
	store, err := s.storeRepo.GetStoreByID(storeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to retrieve store: %w", err)
	}
	return store, nil
}

func (s *storeService) GetStores(activeOnly bool) ([]models.Store, error) {
	stores, err := s.storeRepo.GetStores(activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

func (s *storeService) UpdateStore(storeID int64, req UpdateStoreRequest) (*models.Store, error) {
	store, err := s.storeRepo.GetStoreByID(storeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to retrieve store for update: %w", err)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrStoreValidation)
		}
		store.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		store.Address = req.Address
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := s.storeRepo.UpdateStore(s.db, store); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrStoreNameExists
		}
		return nil, fmt.Errorf("failed to update store: %w", err)
	}
	return s.storeRepo.GetStoreByID(storeID)
}

// RotateQRToken replaces the store's QR token. Printed codes carrying the old
// token stop resolving immediately.
func (s *storeService) RotateQRToken(storeID int64) (*models.Store, error) {
	store, err := s.storeRepo.GetStoreByID(storeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to retrieve store: %w", err)
	}

	store.QRToken = uuid.NewString()
	if err := s.storeRepo.UpdateStore(s.db, store); err != nil {
		return nil, fmt.Errorf("failed to rotate QR token: %w", err)
	}
	return s.storeRepo.GetStoreByID(storeID)
}

func (s *storeService) AssignStaff(req AssignStaffRequest) (*models.StoreStaffAssignment, error) {
	if !models.IsValidStaffRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role '%s'", ErrStoreValidation, req.Role)
	}

	if _, err := s.authRepo.FindUserByID(req.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffUserNotFound
		}
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}
	if _, err := s.storeRepo.GetStoreByID(req.StoreID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to verify store: %w", err)
	}

	assignment := models.StoreStaffAssignment{
		UserID:  req.UserID,
		StoreID: req.StoreID,
		Role:    models.StaffRole(req.Role),
	}
	result, err := s.storeRepo.UpsertStaffAssignment(s.db, &assignment)
	if err != nil {
		return nil, fmt.Errorf("failed to assign staff: %w", err)
	}
	return result, nil
}

// RemoveStaff deactivates the assignment. The row is kept so historical
// records keep their attribution.
func (s *storeService) RemoveStaff(userID, storeID int64) error {
	err := s.storeRepo.DeactivateStaffAssignment(s.db, userID, storeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to remove staff assignment: %w", err)
	}
	return nil
}

func (s *storeService) GetStaffRoster(storeID int64) ([]models.StoreStaffAssignment, error) {
	if _, err := s.storeRepo.GetStoreByID(storeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to verify store: %w", err)
	}
	roster, err := s.storeRepo.GetStaffAssignments(storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff roster: %w", err)
	}
	return roster, nil
}
