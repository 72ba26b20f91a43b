package services

import (
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

// expiryWindow is how far forward the dashboard looks for ending memberships.
const expiryWindow = 30 * 24 * time.Hour

// terminationLookbackDays bounds the recent cancellations / no-shows list.
const terminationLookbackDays = 7

// DashboardService assembles the per-store read model. Every call recomputes
// from "now"; the independent reads are intentionally not one transaction,
// so two reads moments apart may disagree. That is acceptable here.
type DashboardService interface {
	GetStoreSummary(storeID int64) (*models.DashboardSummary, error)
}

type dashboardService struct {
	dashboardRepo   repositories.DashboardRepository
	checkInRepo     repositories.CheckInRepository
	reservationRepo repositories.ReservationRepository
	salesRepo       repositories.SalesRepository
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(
	dr repositories.DashboardRepository,
	cr repositories.CheckInRepository,
	rr repositories.ReservationRepository,
	sr repositories.SalesRepository,
) DashboardService {
	return &dashboardService{
		dashboardRepo:   dr,
		checkInRepo:     cr,
		reservationRepo: rr,
		salesRepo:       sr,
	}
}

func memberAlertsFor(member *models.Member, now time.Time) models.MemberAlerts {
	if member == nil {
		return models.MemberAlerts{}
	}
	return models.MemberAlerts{
		Expired:   member.ExpiresAt != nil && member.ExpiresAt.Before(now),
		Suspended: member.Status != models.MemberStatusActive,
	}
}

func (s *dashboardService) GetStoreSummary(storeID int64) (*models.DashboardSummary, error) {
	now := time.Now()
	today := now.Format("2006-01-02")
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	summary := &models.DashboardSummary{StoreID: storeID, GeneratedAt: now}

	var err error
	if summary.Counts.TodayReservations, err = s.dashboardRepo.CountReservationsForDay(storeID, today); err != nil {
		return nil, fmt.Errorf("failed to count today's reservations: %w", err)
	}
	if summary.Counts.TodayCheckIns, err = s.dashboardRepo.CountCheckInsBetween(storeID, dayStart, dayStart.AddDate(0, 0, 1)); err != nil {
		return nil, fmt.Errorf("failed to count today's check-ins: %w", err)
	}
	if summary.Counts.CurrentlyPresent, err = s.dashboardRepo.CountOpenCheckIns(storeID); err != nil {
		return nil, fmt.Errorf("failed to count open check-ins: %w", err)
	}
	if summary.Counts.TotalMembers, summary.Counts.ActiveMembers, err = s.dashboardRepo.CountMembers(storeID); err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	if summary.Counts.NewMembersMonth, err = s.dashboardRepo.CountNewMembersSince(storeID, monthStart); err != nil {
		return nil, fmt.Errorf("failed to count new members: %w", err)
	}
	if summary.Counts.MonthToDateSales, err = s.salesRepo.SumSales(storeID, monthStart.Format("2006-01-02"), today); err != nil {
		return nil, fmt.Errorf("failed to sum month-to-date sales: %w", err)
	}

	todayReservations, err := s.reservationRepo.GetReservationsForDay(storeID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's reservations: %w", err)
	}
	summary.TodayReservations = make([]models.ReservationView, 0, len(todayReservations))
	for _, reservation := range todayReservations {
		summary.TodayReservations = append(summary.TodayReservations, models.ReservationView{
			Reservation: reservation,
			Alerts:      memberAlertsFor(reservation.Member, now),
		})
	}

	present, err := s.checkInRepo.GetOpenCheckIns(storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open check-ins: %w", err)
	}
	summary.CurrentlyPresent = make([]models.CheckInView, 0, len(present))
	for _, record := range present {
		summary.CurrentlyPresent = append(summary.CurrentlyPresent, toCheckInView(record, now))
	}

	expiring, err := s.dashboardRepo.GetExpiringMembers(storeID, now, now.Add(expiryWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring members: %w", err)
	}
	summary.ExpiringMembers = make([]models.ExpiringMember, 0, len(expiring))
	for _, member := range expiring {
		daysLeft := 0
		if member.ExpiresAt != nil {
			daysLeft = int(member.ExpiresAt.Sub(now).Hours() / 24)
		}
		summary.ExpiringMembers = append(summary.ExpiringMembers, models.ExpiringMember{
			Member:   member,
			DaysLeft: daysLeft,
		})
	}

	terminations, err := s.reservationRepo.GetRecentTerminations(storeID, now.AddDate(0, 0, -terminationLookbackDays))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent cancellations: %w", err)
	}
	summary.RecentCancellations = terminations

	return summary, nil
}
