package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

// --- Custom Service Errors for Self-Service Check-In ---
var (
	ErrStationStoreNotFound = errors.New("self check-in station store not found")
)

// Toggle actions returned to the member-facing screen.
const (
	ToggleActionCheckIn  = "checkin"
	ToggleActionCheckOut = "checkout"
)

// ToggleResult is what the self-service station renders after a scan.
type ToggleResult struct {
	Action    string                `json:"action"`
	Record    *models.CheckInRecord `json:"record"`
	Member    *models.Member        `json:"member"`
	Timestamp time.Time             `json:"timestamp"`
}

// SelfCheckInService converts the ledger's strict two-operation contract
// into the single toggle a member sees at the door: scan while absent checks
// in, scan while present checks out.
type SelfCheckInService interface {
	// Toggle runs the check-then-act sequence as one transaction so two
	// concurrent scans cannot both observe "absent" and both check in.
	Toggle(memberID, storeID int64) (*ToggleResult, error)
	// ResolveStationStore maps a QR token to its store, falling back to the
	// deployment's default store when no token is supplied.
	ResolveStationStore(qrToken string, defaultStoreID int64) (*models.Store, error)
}

type selfCheckInService struct {
	checkInRepo repositories.CheckInRepository
	memberRepo  repositories.MemberRepository
	storeRepo   repositories.StoreRepository
}

// NewSelfCheckInService creates a new instance of SelfCheckInService.
func NewSelfCheckInService(
	cr repositories.CheckInRepository,
	mr repositories.MemberRepository,
	sr repositories.StoreRepository,
) SelfCheckInService {
	return &selfCheckInService{checkInRepo: cr, memberRepo: mr, storeRepo: sr}
}

func (s *selfCheckInService) ResolveStationStore(qrToken string, defaultStoreID int64) (*models.Store, error) {
	var store *models.Store
	var err error
	if qrToken != "" {
		store, err = s.storeRepo.GetStoreByQRToken(qrToken)
	} else {
		store, err = s.storeRepo.GetStoreByID(defaultStoreID)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStationStoreNotFound
		}
		return nil, fmt.Errorf("failed to resolve station store: %w", err)
	}
	return store, nil
}

func (s *selfCheckInService) Toggle(memberID, storeID int64) (*ToggleResult, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrMemberForCheckInNotFound, memberID)
		}
		return nil, fmt.Errorf("failed to validate member for self check-in: %w", err)
	}

	now := time.Now()
	result := &ToggleResult{Member: member, Timestamp: now}

	// One transaction around the whole decision. FOR UPDATE pins the open
	// record while we close it; for the absent case the partial unique
	// index breaks the tie between two concurrent first scans.
	err = s.checkInRepo.WithTransaction(func(tx *sql.Tx) error {
		open, findErr := s.checkInRepo.FindOpenCheckIn(tx, memberID, storeID, true)
		if findErr != nil && !errors.Is(findErr, repositories.ErrNotFound) {
			return fmt.Errorf("failed to query open check-in: %w", findErr)
		}

		if open != nil {
			closed, closeErr := s.checkInRepo.CloseCheckIn(tx, open.ID, now)
			if closeErr != nil {
				return fmt.Errorf("failed to close check-in: %w", closeErr)
			}
			result.Action = ToggleActionCheckOut
			result.Record = closed
			return nil
		}

		record := &models.CheckInRecord{
			MemberID:    memberID,
			StoreID:     storeID,
			Method:      models.CheckInMethodSelf,
			CheckedInAt: now,
		}
		created, createErr := s.checkInRepo.CreateCheckIn(tx, record)
		if createErr != nil {
			if errors.Is(createErr, repositories.ErrDuplicateKey) {
				return ErrAlreadyCheckedIn
			}
			return fmt.Errorf("failed to create check-in: %w", createErr)
		}
		result.Action = ToggleActionCheckIn
		result.Record = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
