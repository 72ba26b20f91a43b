package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

// --- Custom Service Errors for Reservations ---
var (
	ErrReservationNotFound           = errors.New("reservation not found")
	ErrMemberNotActive               = errors.New("member is not active")
	ErrDuplicateSlot                 = errors.New("member already has a confirmed reservation at this time")
	ErrNoSessionsRemaining           = errors.New("member has no remaining sessions on their plan")
	ErrInvalidTransition             = errors.New("reservation status transition is not allowed")
	ErrInvalidReservationTime        = errors.New("invalid reservation time")
	ErrMemberForReservationNotFound  = errors.New("member specified for reservation not found")
	ErrTrainerForReservationNotFound = errors.New("trainer specified for reservation not found")
)

// --- Reservation DTOs ---
type CreateReservationRequest struct {
	MemberID  int64   `json:"member_id" binding:"required"`
	TrainerID int64   `json:"trainer_id" binding:"required"`
	Date      string  `json:"date" binding:"required"`       // 2006-01-02
	StartTime string  `json:"start_time" binding:"required"` // 15:04
	EndTime   string  `json:"end_time" binding:"required"`   // 15:04
	Notes     *string `json:"notes"`
}

// ReservationService owns slot booking and the one-way status lifecycle.
// Creation and quota consumption are a single transaction; cancellation
// never refunds the consumed session (stated business policy, not a gap).
type ReservationService interface {
	CreateReservation(req CreateReservationRequest) (*models.Reservation, error)
	GetReservationByID(id int64) (*models.Reservation, error)
	GetReservations(filters models.ReservationFilters) ([]models.Reservation, int, error)
	CancelReservation(id int64, reason *string) (*models.Reservation, error)
	MarkCompleted(id int64) (*models.Reservation, error)
	MarkNoShow(id int64) (*models.Reservation, error)
	Transition(id int64, target models.ReservationStatus, notes *string) (*models.Reservation, error)
}

type reservationService struct {
	reservationRepo repositories.ReservationRepository
	memberRepo      repositories.MemberRepository
	trainerRepo     repositories.TrainerRepository
	db              *sql.DB
}

// NewReservationService creates a new instance of ReservationService.
func NewReservationService(
	rr repositories.ReservationRepository,
	mr repositories.MemberRepository,
	tr repositories.TrainerRepository,
	db *sql.DB,
) ReservationService {
	return &reservationService{
		reservationRepo: rr,
		memberRepo:      mr,
		trainerRepo:     tr,
		db:              db,
	}
}

// validateSlotTimes checks the date and time formats and slot ordering.
func validateSlotTimes(date, startTime, endTime string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: date must use YYYY-MM-DD", ErrInvalidReservationTime)
	}
	start, err := time.Parse("15:04", startTime)
	if err != nil {
		return fmt.Errorf("%w: start_time must use HH:MM", ErrInvalidReservationTime)
	}
	end, err := time.Parse("15:04", endTime)
	if err != nil {
		return fmt.Errorf("%w: end_time must use HH:MM", ErrInvalidReservationTime)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidReservationTime)
	}
	return nil
}

func (s *reservationService) CreateReservation(req CreateReservationRequest) (*models.Reservation, error) {
	if err := validateSlotTimes(req.Date, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetMemberByID(req.MemberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrMemberForReservationNotFound, req.MemberID)
		}
		return nil, fmt.Errorf("failed to validate member for reservation: %w", err)
	}
	if member.Status != models.MemberStatusActive {
		return nil, ErrMemberNotActive
	}

	trainer, err := s.trainerRepo.GetTrainerByID(req.TrainerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrTrainerForReservationNotFound, req.TrainerID)
		}
		return nil, fmt.Errorf("failed to validate trainer for reservation: %w", err)
	}

	// A plan with sessions_per_month = 0 means unlimited. Members without a
	// plan run on their quota counter like any limited plan.
	unlimited := member.Plan != nil && member.Plan.IsUnlimited()

	reservation := &models.Reservation{
		MemberID:  req.MemberID,
		TrainerID: req.TrainerID,
		StoreID:   trainer.StoreID, // The store is derived through the trainer.
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.ReservationStatusConfirmed,
		Notes:     req.Notes,
	}

	// Quota decrement and insert succeed or fail together. The conditional
	// UPDATE is the compare-and-decrement: two racing bookings cannot both
	// draw the last session, and a duplicate-slot rollback restores the
	// session untouched.
	err = s.reservationRepo.WithTransaction(func(tx *sql.Tx) error {
		if !unlimited {
			consumed, consumeErr := s.memberRepo.ConsumeSession(tx, req.MemberID)
			if consumeErr != nil {
				return fmt.Errorf("failed to consume session: %w", consumeErr)
			}
			if !consumed {
				return ErrNoSessionsRemaining
			}
		}
		if _, createErr := s.reservationRepo.CreateReservation(tx, reservation); createErr != nil {
			if errors.Is(createErr, repositories.ErrDuplicateKey) {
				return ErrDuplicateSlot
			}
			return fmt.Errorf("failed to create reservation: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reservationRepo.GetReservationByID(reservation.ID)
}

func (s *reservationService) GetReservationByID(id int64) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetReservationByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation by ID: %w", err)
	}
	return reservation, nil
}

func (s *reservationService) GetReservations(filters models.ReservationFilters) ([]models.Reservation, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}
	reservations, totalCount, err := s.reservationRepo.GetReservations(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get reservations: %w", err)
	}
	return reservations, totalCount, nil
}

// Transition moves a reservation into target after validating the change in
// one place. A terminal reservation rejects everything with ErrInvalidTransition.
func (s *reservationService) Transition(id int64, target models.ReservationStatus, notes *string) (*models.Reservation, error) {
	if !models.IsValidReservationStatus(string(target)) {
		return nil, fmt.Errorf("%w: unknown status '%s'", ErrInvalidTransition, target)
	}

	reservation, err := s.GetReservationByID(id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionReservation(reservation.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reservation.Status, target)
	}

	var cancelReason *string
	if target == models.ReservationStatusCancelled && notes != nil && strings.TrimSpace(*notes) != "" {
		cancelReason = notes
	}

	updated, err := s.reservationRepo.UpdateReservationStatus(s.db, id, reservation.Status, target, cancelReason, notes)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// The compare-and-set missed: someone else moved the status
			// between our read and the write.
			return nil, fmt.Errorf("%w: reservation changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}
	return updated, nil
}

func (s *reservationService) CancelReservation(id int64, reason *string) (*models.Reservation, error) {
	return s.Transition(id, models.ReservationStatusCancelled, reason)
}

func (s *reservationService) MarkCompleted(id int64) (*models.Reservation, error) {
	return s.Transition(id, models.ReservationStatusCompleted, nil)
}

func (s *reservationService) MarkNoShow(id int64) (*models.Reservation, error) {
	return s.Transition(id, models.ReservationStatusNoShow, nil)
}
