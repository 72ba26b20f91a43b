package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_crm_backend/internal/models"
)

func newCheckInFixture() (*fakeCheckInRepo, *fakeMemberRepo, CheckInService) {
	checkInRepo := newFakeCheckInRepo()
	memberRepo := newFakeMemberRepo()
	svc := NewCheckInService(checkInRepo, memberRepo, nil)
	return checkInRepo, memberRepo, svc
}

func TestCheckIn(t *testing.T) {
	t.Run("creates an open record", func(t *testing.T) {
		_, memberRepo, svc := newCheckInFixture()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive})

		record, err := svc.CheckIn(member.ID, 1, models.CheckInMethodManual)
		require.NoError(t, err)
		assert.Equal(t, member.ID, record.MemberID)
		assert.Equal(t, int64(1), record.StoreID)
		assert.Equal(t, models.CheckInMethodManual, record.Method)
		assert.True(t, record.IsOpen())
	})

	t.Run("rejects a second check-in at the same store", func(t *testing.T) {
		_, memberRepo, svc := newCheckInFixture()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive})

		_, err := svc.CheckIn(member.ID, 1, models.CheckInMethodManual)
		require.NoError(t, err)

		_, err = svc.CheckIn(member.ID, 1, models.CheckInMethodManual)
		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	})

	t.Run("allows open check-ins at different stores", func(t *testing.T) {
		_, memberRepo, svc := newCheckInFixture()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive})

		_, err := svc.CheckIn(member.ID, 1, models.CheckInMethodManual)
		require.NoError(t, err)

		_, err = svc.CheckIn(member.ID, 2, models.CheckInMethodManual)
		assert.NoError(t, err)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, _, svc := newCheckInFixture()

		_, err := svc.CheckIn(99, 1, models.CheckInMethodManual)
		assert.ErrorIs(t, err, ErrMemberForCheckInNotFound)
	})

	t.Run("expired member can still check in", func(t *testing.T) {
		_, memberRepo, svc := newCheckInFixture()
		expired := time.Now().Add(-24 * time.Hour)
		member := memberRepo.add(&models.Member{
			FullName:  "Aida",
			StoreID:   1,
			Status:    models.MemberStatusActive,
			ExpiresAt: &expired,
		})

		_, err := svc.CheckIn(member.ID, 1, models.CheckInMethodManual)
		assert.NoError(t, err)
	})
}

func TestCheckOut(t *testing.T) {
	t.Run("closes the record", func(t *testing.T) {
		_, memberRepo, svc := newCheckInFixture()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive})
		record, err := svc.CheckIn(member.ID, 1, models.CheckInMethodManual)
		require.NoError(t, err)

		closed, err := svc.CheckOut(record.ID)
		require.NoError(t, err)
		assert.False(t, closed.IsOpen())
		require.NotNil(t, closed.CheckedOutAt)
		assert.False(t, closed.CheckedOutAt.Before(closed.CheckedInAt))
	})

	t.Run("already closed record", func(t *testing.T) {
		_, memberRepo, svc := newCheckInFixture()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive})
		record, err := svc.CheckIn(member.ID, 1, models.CheckInMethodManual)
		require.NoError(t, err)

		_, err = svc.CheckOut(record.ID)
		require.NoError(t, err)

		_, err = svc.CheckOut(record.ID)
		assert.ErrorIs(t, err, ErrNotCheckedIn)
	})

	t.Run("unknown record", func(t *testing.T) {
		_, _, svc := newCheckInFixture()

		_, err := svc.CheckOut(42)
		assert.ErrorIs(t, err, ErrNotCheckedIn)
	})
}

func TestGetCheckIn(t *testing.T) {
	t.Run("returns the record", func(t *testing.T) {
		_, memberRepo, svc := newCheckInFixture()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive})
		record, err := svc.CheckIn(member.ID, 1, models.CheckInMethodManual)
		require.NoError(t, err)

		fetched, err := svc.GetCheckIn(record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.ID, fetched.ID)
		assert.Equal(t, int64(1), fetched.StoreID)
	})

	t.Run("unknown record", func(t *testing.T) {
		_, _, svc := newCheckInFixture()

		_, err := svc.GetCheckIn(42)
		assert.ErrorIs(t, err, ErrCheckInNotFound)
	})
}

func TestStatusBoard(t *testing.T) {
	t.Run("splits open records from today's history", func(t *testing.T) {
		checkInRepo, memberRepo, svc := newCheckInFixture()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive})
		other := memberRepo.add(&models.Member{FullName: "Bek", StoreID: 1, Status: models.MemberStatusActive})

		open, err := svc.CheckIn(member.ID, 1, models.CheckInMethodManual)
		require.NoError(t, err)
		closed, err := svc.CheckIn(other.ID, 1, models.CheckInMethodQR)
		require.NoError(t, err)
		_, err = svc.CheckOut(closed.ID)
		require.NoError(t, err)

		// A visit at another store must not leak onto this store's board.
		_, err = checkInRepo.CreateCheckIn(nil, &models.CheckInRecord{
			MemberID:    member.ID,
			StoreID:     2,
			Method:      models.CheckInMethodManual,
			CheckedInAt: time.Now(),
		})
		require.NoError(t, err)

		board, err := svc.StatusBoard(1)
		require.NoError(t, err)
		require.Len(t, board.CurrentlyIn, 1)
		assert.Equal(t, open.ID, board.CurrentlyIn[0].ID)
		assert.Len(t, board.TodayHistory, 2)
	})

	t.Run("flags expired and suspended members without hiding them", func(t *testing.T) {
		checkInRepo, _, svc := newCheckInFixture()
		expired := time.Now().Add(-48 * time.Hour)
		record := &models.CheckInRecord{
			MemberID:    1,
			StoreID:     1,
			Method:      models.CheckInMethodSelf,
			CheckedInAt: time.Now().Add(-10 * time.Minute),
		}
		created, err := checkInRepo.CreateCheckIn(nil, record)
		require.NoError(t, err)
		checkInRepo.records[created.ID].Member = &models.Member{
			ID:        1,
			FullName:  "Aida",
			Status:    models.MemberStatusSuspended,
			ExpiresAt: &expired,
		}

		present, err := svc.CurrentlyPresent(1)
		require.NoError(t, err)
		require.Len(t, present, 1)
		assert.True(t, present[0].Alerts.Expired)
		assert.True(t, present[0].Alerts.Suspended)
		assert.False(t, present[0].Alerts.LongStay)
	})

	t.Run("flags long stays", func(t *testing.T) {
		checkInRepo, _, svc := newCheckInFixture()
		_, err := checkInRepo.CreateCheckIn(nil, &models.CheckInRecord{
			MemberID:    1,
			StoreID:     1,
			Method:      models.CheckInMethodManual,
			CheckedInAt: time.Now().Add(-(models.LongStayThreshold + time.Minute)),
		})
		require.NoError(t, err)

		present, err := svc.CurrentlyPresent(1)
		require.NoError(t, err)
		require.Len(t, present, 1)
		assert.True(t, present[0].Alerts.LongStay)
	})
}
