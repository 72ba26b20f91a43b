package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_crm_backend/internal/models"
)

func newReservationFixture() (*fakeReservationRepo, *fakeMemberRepo, *fakeTrainerRepo, ReservationService) {
	reservationRepo := newFakeReservationRepo()
	memberRepo := newFakeMemberRepo()
	trainerRepo := newFakeTrainerRepo()
	svc := NewReservationService(reservationRepo, memberRepo, trainerRepo, nil)
	return reservationRepo, memberRepo, trainerRepo, svc
}

func limitedPlan() *models.Plan {
	return &models.Plan{ID: 1, Name: "Basic", SessionsPerMonth: 8}
}

func unlimitedPlan() *models.Plan {
	return &models.Plan{ID: 2, Name: "Premium", SessionsPerMonth: 0}
}

func slotRequest(memberID, trainerID int64, startTime string) CreateReservationRequest {
	return CreateReservationRequest{
		MemberID:  memberID,
		TrainerID: trainerID,
		Date:      "2026-09-01",
		StartTime: startTime,
		EndTime:   "11:00",
	}
}

func TestCreateReservation(t *testing.T) {
	t.Run("books a confirmed slot and consumes a session", func(t *testing.T) {
		_, memberRepo, trainerRepo, svc := newReservationFixture()
		planID := int64(1)
		member := memberRepo.add(&models.Member{
			FullName:          "Aida",
			StoreID:           1,
			Status:            models.MemberStatusActive,
			PlanID:            &planID,
			Plan:              limitedPlan(),
			RemainingSessions: 2,
		})
		trainer := trainerRepo.add(&models.Trainer{FullName: "Coach", StoreID: 3, IsActive: true})

		reservation, err := svc.CreateReservation(slotRequest(member.ID, trainer.ID, "10:00"))
		require.NoError(t, err)
		assert.Equal(t, models.ReservationStatusConfirmed, reservation.Status)
		assert.Equal(t, trainer.StoreID, reservation.StoreID)

		stored, err := memberRepo.GetMemberByID(member.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.RemainingSessions)
	})

	t.Run("last session then quota exhausted", func(t *testing.T) {
		_, memberRepo, trainerRepo, svc := newReservationFixture()
		planID := int64(1)
		member := memberRepo.add(&models.Member{
			FullName:          "Aida",
			StoreID:           1,
			Status:            models.MemberStatusActive,
			PlanID:            &planID,
			Plan:              limitedPlan(),
			RemainingSessions: 1,
		})
		trainer := trainerRepo.add(&models.Trainer{FullName: "Coach", StoreID: 1, IsActive: true})

		_, err := svc.CreateReservation(slotRequest(member.ID, trainer.ID, "10:00"))
		require.NoError(t, err)

		_, err = svc.CreateReservation(slotRequest(member.ID, trainer.ID, "12:00"))
		assert.ErrorIs(t, err, ErrNoSessionsRemaining)
	})

	t.Run("unlimited plan never draws from the counter", func(t *testing.T) {
		_, memberRepo, trainerRepo, svc := newReservationFixture()
		planID := int64(2)
		member := memberRepo.add(&models.Member{
			FullName:          "Aida",
			StoreID:           1,
			Status:            models.MemberStatusActive,
			PlanID:            &planID,
			Plan:              unlimitedPlan(),
			RemainingSessions: 0,
		})
		trainer := trainerRepo.add(&models.Trainer{FullName: "Coach", StoreID: 1, IsActive: true})

		_, err := svc.CreateReservation(slotRequest(member.ID, trainer.ID, "10:00"))
		require.NoError(t, err)

		stored, err := memberRepo.GetMemberByID(member.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.RemainingSessions)
	})

	t.Run("member without a plan is quota limited", func(t *testing.T) {
		_, memberRepo, trainerRepo, svc := newReservationFixture()
		member := memberRepo.add(&models.Member{
			FullName:          "Aida",
			StoreID:           1,
			Status:            models.MemberStatusActive,
			RemainingSessions: 0,
		})
		trainer := trainerRepo.add(&models.Trainer{FullName: "Coach", StoreID: 1, IsActive: true})

		_, err := svc.CreateReservation(slotRequest(member.ID, trainer.ID, "10:00"))
		assert.ErrorIs(t, err, ErrNoSessionsRemaining)
	})

	t.Run("suspended member", func(t *testing.T) {
		_, memberRepo, trainerRepo, svc := newReservationFixture()
		member := memberRepo.add(&models.Member{
			FullName:          "Aida",
			StoreID:           1,
			Status:            models.MemberStatusSuspended,
			RemainingSessions: 5,
		})
		trainer := trainerRepo.add(&models.Trainer{FullName: "Coach", StoreID: 1, IsActive: true})

		_, err := svc.CreateReservation(slotRequest(member.ID, trainer.ID, "10:00"))
		assert.ErrorIs(t, err, ErrMemberNotActive)
	})

	t.Run("duplicate confirmed slot", func(t *testing.T) {
		_, memberRepo, trainerRepo, svc := newReservationFixture()
		planID := int64(1)
		member := memberRepo.add(&models.Member{
			FullName:          "Aida",
			StoreID:           1,
			Status:            models.MemberStatusActive,
			PlanID:            &planID,
			Plan:              limitedPlan(),
			RemainingSessions: 5,
		})
		trainer := trainerRepo.add(&models.Trainer{FullName: "Coach", StoreID: 1, IsActive: true})

		_, err := svc.CreateReservation(slotRequest(member.ID, trainer.ID, "10:00"))
		require.NoError(t, err)

		_, err = svc.CreateReservation(slotRequest(member.ID, trainer.ID, "10:00"))
		assert.ErrorIs(t, err, ErrDuplicateSlot)
	})

	t.Run("unknown member and trainer", func(t *testing.T) {
		_, memberRepo, _, svc := newReservationFixture()

		_, err := svc.CreateReservation(slotRequest(99, 1, "10:00"))
		assert.ErrorIs(t, err, ErrMemberForReservationNotFound)

		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive, RemainingSessions: 1})
		_, err = svc.CreateReservation(slotRequest(member.ID, 99, "10:00"))
		assert.ErrorIs(t, err, ErrTrainerForReservationNotFound)
	})

	t.Run("invalid times", func(t *testing.T) {
		_, memberRepo, trainerRepo, svc := newReservationFixture()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive, RemainingSessions: 1})
		trainer := trainerRepo.add(&models.Trainer{FullName: "Coach", StoreID: 1, IsActive: true})

		cases := []CreateReservationRequest{
			{MemberID: member.ID, TrainerID: trainer.ID, Date: "01-09-2026", StartTime: "10:00", EndTime: "11:00"},
			{MemberID: member.ID, TrainerID: trainer.ID, Date: "2026-09-01", StartTime: "25:00", EndTime: "11:00"},
			{MemberID: member.ID, TrainerID: trainer.ID, Date: "2026-09-01", StartTime: "11:00", EndTime: "10:00"},
			{MemberID: member.ID, TrainerID: trainer.ID, Date: "2026-09-01", StartTime: "10:00", EndTime: "10:00"},
		}
		for _, req := range cases {
			_, err := svc.CreateReservation(req)
			assert.ErrorIs(t, err, ErrInvalidReservationTime)
		}
	})
}

func TestTransition(t *testing.T) {
	book := func(t *testing.T, svc ReservationService, memberRepo *fakeMemberRepo, trainerRepo *fakeTrainerRepo) *models.Reservation {
		t.Helper()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive, RemainingSessions: 5})
		trainer := trainerRepo.add(&models.Trainer{FullName: "Coach", StoreID: 1, IsActive: true})
		reservation, err := svc.CreateReservation(slotRequest(member.ID, trainer.ID, "10:00"))
		require.NoError(t, err)
		return reservation
	}

	t.Run("confirmed to completed", func(t *testing.T) {
		_, memberRepo, trainerRepo, svc := newReservationFixture()
		reservation := book(t, svc, memberRepo, trainerRepo)

		updated, err := svc.MarkCompleted(reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReservationStatusCompleted, updated.Status)
	})

	t.Run("cancellation keeps the reason but not the quota", func(t *testing.T) {
		_, memberRepo, trainerRepo, svc := newReservationFixture()
		reservation := book(t, svc, memberRepo, trainerRepo)
		reason := "member called in sick"

		updated, err := svc.CancelReservation(reservation.ID, &reason)
		require.NoError(t, err)
		assert.Equal(t, models.ReservationStatusCancelled, updated.Status)
		require.NotNil(t, updated.CancelReason)
		assert.Equal(t, reason, *updated.CancelReason)

		// No refund on cancellation.
		stored, err := memberRepo.GetMemberByID(reservation.MemberID)
		require.NoError(t, err)
		assert.Equal(t, 4, stored.RemainingSessions)
	})

	t.Run("terminal states reject further transitions", func(t *testing.T) {
		_, memberRepo, trainerRepo, svc := newReservationFixture()
		reservation := book(t, svc, memberRepo, trainerRepo)

		_, err := svc.CancelReservation(reservation.ID, nil)
		require.NoError(t, err)

		_, err = svc.MarkCompleted(reservation.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = svc.MarkNoShow(reservation.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, memberRepo, trainerRepo, svc := newReservationFixture()
		reservation := book(t, svc, memberRepo, trainerRepo)

		_, err := svc.Transition(reservation.ID, models.ReservationStatus("archived"), nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		_, _, _, svc := newReservationFixture()

		_, err := svc.MarkCompleted(404)
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})
}
