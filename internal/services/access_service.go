package services

import (
	"errors"
	"fmt"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

// --- Custom Service Errors for Access ---
var (
	ErrForbidden = errors.New("principal is not authorized for this store")
)

// AccessService is the single place store-level authorization is decided.
// Every scoped request resolves here before touching the ledger or the
// reservation lifecycle; a failed check rejects the whole request.
type AccessService interface {
	// ResolveAccessibleStores returns the stores the principal may act on:
	// owners see every store, staff see their active assignments, members
	// see none (they are only authorized for self-service on their own record).
	ResolveAccessibleStores(principal models.Principal) ([]int64, error)
	// AssertStoreAccess fails with ErrForbidden unless the principal may act
	// on the store.
	AssertStoreAccess(principal models.Principal, storeID int64) error
	// AssertStoreManager is the stricter check for store-configuration
	// mutations (staff roster, sales deletion): owner, or an active manager
	// assignment on that specific store.
	AssertStoreManager(principal models.Principal, storeID int64) error
}

type accessService struct {
	storeRepo repositories.StoreRepository
}

// NewAccessService creates a new instance of AccessService.
func NewAccessService(storeRepo repositories.StoreRepository) AccessService {
	return &accessService{storeRepo: storeRepo}
}

func (s *accessService) ResolveAccessibleStores(principal models.Principal) ([]int64, error) {
	switch principal.Role {
	case models.RoleOwner:
		ids, err := s.storeRepo.GetStoreIDs(false)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve owner store scope: %w", err)
		}
		return ids, nil
	case models.RoleStaff:
		ids, err := s.storeRepo.GetActiveStoreIDsForUser(principal.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve staff store scope: %w", err)
		}
		return ids, nil
	default:
		// Members and unknown roles are never store-scoped.
		return []int64{}, nil
	}
}

func (s *accessService) AssertStoreAccess(principal models.Principal, storeID int64) error {
	if principal.IsOwner() {
		return nil
	}
	if principal.Role != models.RoleStaff {
		return ErrForbidden
	}
	_, err := s.storeRepo.GetActiveAssignment(principal.UserID, storeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("failed to check store access: %w", err)
	}
	return nil
}

func (s *accessService) AssertStoreManager(principal models.Principal, storeID int64) error {
	if principal.IsOwner() {
		return nil
	}
	if principal.Role != models.RoleStaff {
		return ErrForbidden
	}
	assignment, err := s.storeRepo.GetActiveAssignment(principal.UserID, storeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("failed to check store manager access: %w", err)
	}
	if assignment.Role != models.StaffRoleManager {
		return ErrForbidden
	}
	return nil
}
