package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

// --- Custom Service Errors for the Check-In Ledger ---
var (
	ErrAlreadyCheckedIn         = errors.New("member is already checked in at this store")
	ErrNotCheckedIn             = errors.New("check-in record does not exist or is already closed")
	ErrCheckInNotFound          = errors.New("check-in record not found")
	ErrMemberForCheckInNotFound = errors.New("member specified for check-in not found")
)

// CheckInStatus is the polling payload for a store's check-in screen.
type CheckInStatus struct {
	CurrentlyIn  []models.CheckInView `json:"currently_in"`
	TodayHistory []models.CheckInView `json:"today_history"`
}

// CheckInService is the presence state machine: absent -> present (CheckIn),
// present -> absent (CheckOut), nothing else. A re-entrant check-in is an
// error, never a silent checkout; the self-service flow is the layer that
// decides which operation to call.
type CheckInService interface {
	CheckIn(memberID, storeID int64, method models.CheckInMethod) (*models.CheckInRecord, error)
	GetCheckIn(checkInID int64) (*models.CheckInRecord, error)
	CheckOut(checkInID int64) (*models.CheckInRecord, error)
	CurrentlyPresent(storeID int64) ([]models.CheckInView, error)
	StatusBoard(storeID int64) (*CheckInStatus, error)
}

type checkInService struct {
	checkInRepo repositories.CheckInRepository
	memberRepo  repositories.MemberRepository
	db          *sql.DB
}

// NewCheckInService creates a new instance of CheckInService.
func NewCheckInService(cr repositories.CheckInRepository, mr repositories.MemberRepository, db *sql.DB) CheckInService {
	return &checkInService{checkInRepo: cr, memberRepo: mr, db: db}
}

// alertsFor computes the advisory flags for a record. They are derived on
// every read and never persisted; an expired or suspended member is flagged
// but not forced out.
func alertsFor(record *models.CheckInRecord, now time.Time) models.CheckInAlerts {
	var alerts models.CheckInAlerts
	if record.Member != nil {
		alerts.Expired = record.Member.ExpiresAt != nil && record.Member.ExpiresAt.Before(now)
		alerts.Suspended = record.Member.Status != models.MemberStatusActive
	}
	alerts.LongStay = record.IsOpen() && record.Elapsed(now) > models.LongStayThreshold
	return alerts
}

func toCheckInView(record models.CheckInRecord, now time.Time) models.CheckInView {
	return models.CheckInView{
		CheckInRecord: record,
		Duration:      models.FormatDuration(record.Elapsed(now)),
		Alerts:        alertsFor(&record, now),
	}
}

func (s *checkInService) CheckIn(memberID, storeID int64, method models.CheckInMethod) (*models.CheckInRecord, error) {
	if _, err := s.memberRepo.GetMemberByID(memberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrMemberForCheckInNotFound, memberID)
		}
		return nil, fmt.Errorf("failed to validate member for check-in: %w", err)
	}

	record := &models.CheckInRecord{
		MemberID:    memberID,
		StoreID:     storeID,
		Method:      method,
		CheckedInAt: time.Now(),
	}

	// The partial unique index on open records is the real guard: when two
	// check-ins race, exactly one insert succeeds and the other surfaces
	// here as a duplicate.
	created, err := s.checkInRepo.CreateCheckIn(s.db, record)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("failed to create check-in: %w", err)
	}
	return created, nil
}

func (s *checkInService) GetCheckIn(checkInID int64) (*models.CheckInRecord, error) {
	record, err := s.checkInRepo.GetCheckInByID(checkInID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCheckInNotFound
		}
		return nil, fmt.Errorf("failed to retrieve check-in: %w", err)
	}
	return record, nil
}

func (s *checkInService) CheckOut(checkInID int64) (*models.CheckInRecord, error) {
	closed, err := s.checkInRepo.CloseCheckIn(s.db, checkInID, time.Now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Either the id never existed or the record is already closed;
			// both violate the open-record precondition the same way.
			return nil, ErrNotCheckedIn
		}
		return nil, fmt.Errorf("failed to close check-in: %w", err)
	}
	return closed, nil
}

func (s *checkInService) CurrentlyPresent(storeID int64) ([]models.CheckInView, error) {
	records, err := s.checkInRepo.GetOpenCheckIns(storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open check-ins: %w", err)
	}
	now := time.Now()
	views := make([]models.CheckInView, 0, len(records))
	for _, record := range records {
		views = append(views, toCheckInView(record, now))
	}
	return views, nil
}

func (s *checkInService) StatusBoard(storeID int64) (*CheckInStatus, error) {
	currentlyIn, err := s.CurrentlyPresent(storeID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	history, err := s.checkInRepo.GetCheckInsForDay(storeID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list today's check-ins: %w", err)
	}

	todayHistory := make([]models.CheckInView, 0, len(history))
	for _, record := range history {
		todayHistory = append(todayHistory, toCheckInView(record, now))
	}
	return &CheckInStatus{CurrentlyIn: currentlyIn, TodayHistory: todayHistory}, nil
}
