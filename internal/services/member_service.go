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

var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrMemberNumberExists = errors.New("member number already exists")
	ErrMemberValidation   = errors.New("member data validation error")
	ErrPlanNotFound       = errors.New("membership plan not found")
	ErrMemberInUse        = errors.New("member cannot be deleted as they are referenced in other records")
)

// CreateMemberRequest DTO
type CreateMemberRequest struct {
	StoreID      int64   `json:"store_id" binding:"required"`
	MemberNumber string  `json:"member_number" binding:"required"`
	FullName     string  `json:"full_name" binding:"required"`
	PhoneNumber  *string `json:"phone_number"`
	Email        *string `json:"email"`
	PlanID       *int64  `json:"plan_id"`
	ExpiresAt    *string `json:"expires_at"` // Format YYYY-MM-DD
	Notes        *string `json:"notes"`
}

// UpdateMemberRequest DTO. Nil fields are left untouched.
type UpdateMemberRequest struct {
	FullName          *string `json:"full_name"`
	PhoneNumber       *string `json:"phone_number"`
	Email             *string `json:"email"`
	Status            *string `json:"status"`
	PlanID            *int64  `json:"plan_id"`
	RemainingSessions *int    `json:"remaining_sessions"`
	ExpiresAt         *string `json:"expires_at"` // Format YYYY-MM-DD
	Notes             *string `json:"notes"`
}

type MemberService interface {
	CreateMember(req CreateMemberRequest) (*models.Member, error)
	GetMemberByID(memberID int64) (*models.Member, error)
	GetMembers(filters models.MemberFilters) ([]models.Member, int, error)
	UpdateMember(memberID int64, req UpdateMemberRequest) (*models.Member, error)
	DeleteMember(memberID int64) error
}

type memberService struct {
	memberRepo repositories.MemberRepository
	planRepo   repositories.PlanRepository
	db         *sql.DB
}

// NewMemberService creates a new instance of MemberService.
func NewMemberService(memberRepo repositories.MemberRepository, planRepo repositories.PlanRepository, db *sql.DB) MemberService {
	return &memberService{
		memberRepo: memberRepo,
		planRepo:   planRepo,
		db:         db,
	}
}

func parseExpiry(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, fmt.Errorf("%w: expires_at must be YYYY-MM-DD", ErrMemberValidation)
	}
	return &t, nil
}

// resolvePlan loads the plan and reports the initial session allowance a new
// membership on it starts with.
func (s *memberService) resolvePlan(planID *int64) (*models.Plan, int, error) {
	if planID == nil {
		return nil, 0, nil
	}
	plan, err := s.planRepo.GetPlanByID(*planID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, 0, ErrPlanNotFound
		}
		return nil, 0, fmt.Errorf("failed to load plan: %w", err)
	}
	return plan, plan.SessionsPerMonth, nil
}

func (s *memberService) CreateMember(req CreateMemberRequest) (*models.Member, error) {
	if strings.TrimSpace(req.FullName) == "" {
		return nil, fmt.Errorf("%w: full name cannot be empty", ErrMemberValidation)
	}
	if strings.TrimSpace(req.MemberNumber) == "" {
		return nil, fmt.Errorf("%w: member number cannot be empty", ErrMemberValidation)
	}

	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		return nil, err
	}

	_, initialSessions, err := s.resolvePlan(req.PlanID)
	if err != nil {
		return nil, err
	}

	member := models.Member{
		StoreID:           req.StoreID,
		MemberNumber:      strings.TrimSpace(req.MemberNumber),
		FullName:          strings.TrimSpace(req.FullName),
		PhoneNumber:       req.PhoneNumber,
		Email:             req.Email,
		Status:            models.MemberStatusActive,
		PlanID:            req.PlanID,
		RemainingSessions: initialSessions,
		ExpiresAt:         expiresAt,
		Notes:             req.Notes,
	}

	memberID, err := s.memberRepo.CreateMember(s.db, &member)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrMemberNumberExists
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	created, fetchErr := s.memberRepo.GetMemberByID(memberID)
	if fetchErr != nil {
		member.ID = memberID
		return &member, fmt.Errorf("member created but failed to retrieve full details: %w", fetchErr)
	}
	return created, nil
}

func (s *memberService) GetMemberByID(memberID int64) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to retrieve member: %w", err)
	}
	return member, nil
}

func (s *memberService) GetMembers(filters models.MemberFilters) ([]models.Member, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.Status != nil && !models.IsValidMemberStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status '%s'", ErrMemberValidation, *filters.Status)
	}
	members, total, err := s.memberRepo.GetMembers(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return members, total, nil
}

func (s *memberService) UpdateMember(memberID int64, req UpdateMemberRequest) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to retrieve member for update: %w", err)
	}

	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty", ErrMemberValidation)
		}
		member.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.PhoneNumber != nil {
		member.PhoneNumber = req.PhoneNumber
	}
	if req.Email != nil {
		member.Email = req.Email
	}
	if req.Status != nil {
		if !models.IsValidMemberStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown status '%s'", ErrMemberValidation, *req.Status)
		}
		member.Status = models.MemberStatus(*req.Status)
	}
	if req.PlanID != nil {
		// Switching plans resets the allowance to the new plan's monthly quota
		// unless the caller pins remaining_sessions explicitly.
		_, sessions, planErr := s.resolvePlan(req.PlanID)
		if planErr != nil {
			return nil, planErr
		}
		member.PlanID = req.PlanID
		if req.RemainingSessions == nil {
			member.RemainingSessions = sessions
		}
	}
	if req.RemainingSessions != nil {
		if *req.RemainingSessions < 0 {
			return nil, fmt.Errorf("%w: remaining sessions cannot be negative", ErrMemberValidation)
		}
		member.RemainingSessions = *req.RemainingSessions
	}
	if req.ExpiresAt != nil {
		expiresAt, parseErr := parseExpiry(req.ExpiresAt)
		if parseErr != nil {
			return nil, parseErr
		}
		member.ExpiresAt = expiresAt
	}
	if req.Notes != nil {
		member.Notes = req.Notes
	}

	if err := s.memberRepo.UpdateMember(s.db, member); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return s.memberRepo.GetMemberByID(memberID)
}

func (s *memberService) DeleteMember(memberID int64) error {
	err := s.memberRepo.DeleteMember(s.db, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMemberNotFound
		}
		if strings.Contains(err.Error(), "foreign key constraint") {
			return ErrMemberInUse
		}
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}
