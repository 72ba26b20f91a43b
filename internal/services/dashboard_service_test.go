package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

// stubDashboardRepo returns canned counts; the aggregation logic under test
// lives in the service, not in the counting SQL.
type stubDashboardRepo struct {
	reservations int
	checkIns     int
	present      int
	total        int
	active       int
	newMembers   int
	expiring     []models.Member
}

func (s *stubDashboardRepo) CountReservationsForDay(int64, string) (int, error) {
	return s.reservations, nil
}

func (s *stubDashboardRepo) CountCheckInsBetween(int64, time.Time, time.Time) (int, error) {
	return s.checkIns, nil
}

func (s *stubDashboardRepo) CountOpenCheckIns(int64) (int, error) {
	return s.present, nil
}

func (s *stubDashboardRepo) CountMembers(int64) (int, int, error) {
	return s.total, s.active, nil
}

func (s *stubDashboardRepo) CountNewMembersSince(int64, time.Time) (int, error) {
	return s.newMembers, nil
}

func (s *stubDashboardRepo) GetExpiringMembers(int64, time.Time, time.Time) ([]models.Member, error) {
	return s.expiring, nil
}

type stubSalesRepo struct {
	sum float64
}

func (s *stubSalesRepo) CreateSalesRecord(repositories.SQLExecutor, *models.SalesRecord) (int64, error) {
	return 0, nil
}

func (s *stubSalesRepo) GetSalesRecords(models.SalesFilters) ([]models.SalesRecord, int, error) {
	return nil, 0, nil
}

func (s *stubSalesRepo) DeleteSalesRecord(repositories.SQLExecutor, int64) error {
	return nil
}

func (s *stubSalesRepo) SumSales(int64, string, string) (float64, error) {
	return s.sum, nil
}

func TestGetStoreSummary(t *testing.T) {
	soon := time.Now().Add(10 * 24 * time.Hour)
	dashboardRepo := &stubDashboardRepo{
		reservations: 4,
		checkIns:     9,
		present:      3,
		total:        120,
		active:       101,
		newMembers:   6,
		expiring: []models.Member{
			{ID: 1, FullName: "Aida", Status: models.MemberStatusActive, ExpiresAt: &soon},
		},
	}

	checkInRepo := newFakeCheckInRepo()
	_, err := checkInRepo.CreateCheckIn(nil, &models.CheckInRecord{
		MemberID:    1,
		StoreID:     1,
		Method:      models.CheckInMethodManual,
		CheckedInAt: time.Now().Add(-20 * time.Minute),
	})
	require.NoError(t, err)

	reservationRepo := newFakeReservationRepo()
	today := time.Now().Format("2006-01-02")
	_, err = reservationRepo.CreateReservation(nil, &models.Reservation{
		MemberID:  1,
		TrainerID: 1,
		StoreID:   1,
		Date:      today,
		StartTime: "10:00",
		EndTime:   "11:00",
		Status:    models.ReservationStatusConfirmed,
		Member:    &models.Member{ID: 1, FullName: "Aida", Status: models.MemberStatusSuspended},
	})
	require.NoError(t, err)

	svc := NewDashboardService(dashboardRepo, checkInRepo, reservationRepo, &stubSalesRepo{sum: 1500.50})

	summary, err := svc.GetStoreSummary(1)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Counts.TodayReservations)
	assert.Equal(t, 9, summary.Counts.TodayCheckIns)
	assert.Equal(t, 3, summary.Counts.CurrentlyPresent)
	assert.Equal(t, 120, summary.Counts.TotalMembers)
	assert.Equal(t, 101, summary.Counts.ActiveMembers)
	assert.Equal(t, 6, summary.Counts.NewMembersMonth)
	assert.Equal(t, 1500.50, summary.Counts.MonthToDateSales)

	require.Len(t, summary.TodayReservations, 1)
	assert.True(t, summary.TodayReservations[0].Alerts.Suspended)

	require.Len(t, summary.CurrentlyPresent, 1)
	assert.NotEmpty(t, summary.CurrentlyPresent[0].Duration)

	require.Len(t, summary.ExpiringMembers, 1)
	assert.Equal(t, 9, summary.ExpiringMembers[0].DaysLeft)

	assert.NotNil(t, summary.RecentCancellations)
}

func TestRecentCancellationsWindow(t *testing.T) {
	reservationRepo := newFakeReservationRepo()
	member := &models.Member{ID: 1, FullName: "Aida", Status: models.MemberStatusActive}
	book := func(date string) *models.Reservation {
		reservation, err := reservationRepo.CreateReservation(nil, &models.Reservation{
			MemberID:  1,
			TrainerID: 1,
			StoreID:   1,
			Date:      date,
			StartTime: "10:00",
			EndTime:   "11:00",
			Status:    models.ReservationStatusConfirmed,
			Member:    member,
		})
		require.NoError(t, err)
		return reservation
	}

	// Slot ten days back, cancelled just now.
	oldSlot := book(time.Now().AddDate(0, 0, -10).Format("2006-01-02"))
	_, err := reservationRepo.UpdateReservationStatus(nil, oldSlot.ID,
		models.ReservationStatusConfirmed, models.ReservationStatusCancelled, nil, nil)
	require.NoError(t, err)

	// Future slot, but the cancellation itself is weeks old.
	staleSlot := book(time.Now().AddDate(0, 0, 5).Format("2006-01-02"))
	_, err = reservationRepo.UpdateReservationStatus(nil, staleSlot.ID,
		models.ReservationStatusConfirmed, models.ReservationStatusNoShow, nil, nil)
	require.NoError(t, err)
	reservationRepo.reservations[staleSlot.ID].UpdatedAt = time.Now().AddDate(0, 0, -21)

	svc := NewDashboardService(&stubDashboardRepo{}, newFakeCheckInRepo(), reservationRepo, &stubSalesRepo{})

	summary, err := svc.GetStoreSummary(1)
	require.NoError(t, err)

	require.Len(t, summary.RecentCancellations, 1)
	assert.Equal(t, oldSlot.ID, summary.RecentCancellations[0].ID)
}
