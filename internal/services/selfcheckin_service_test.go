package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_crm_backend/internal/models"
)

func newSelfCheckInFixture() (*fakeCheckInRepo, *fakeMemberRepo, *fakeStoreRepo, SelfCheckInService) {
	checkInRepo := newFakeCheckInRepo()
	memberRepo := newFakeMemberRepo()
	storeRepo := newFakeStoreRepo()
	svc := NewSelfCheckInService(checkInRepo, memberRepo, storeRepo)
	return checkInRepo, memberRepo, storeRepo, svc
}

func TestToggle(t *testing.T) {
	t.Run("alternates between check-in and check-out", func(t *testing.T) {
		_, memberRepo, _, svc := newSelfCheckInFixture()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive})

		first, err := svc.Toggle(member.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, ToggleActionCheckIn, first.Action)
		assert.Equal(t, models.CheckInMethodSelf, first.Record.Method)
		assert.True(t, first.Record.IsOpen())

		second, err := svc.Toggle(member.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, ToggleActionCheckOut, second.Action)
		assert.Equal(t, first.Record.ID, second.Record.ID)
		assert.False(t, second.Record.IsOpen())

		third, err := svc.Toggle(member.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, ToggleActionCheckIn, third.Action)
		assert.NotEqual(t, first.Record.ID, third.Record.ID)
	})

	t.Run("toggles per store independently", func(t *testing.T) {
		_, memberRepo, _, svc := newSelfCheckInFixture()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive})

		first, err := svc.Toggle(member.ID, 1)
		require.NoError(t, err)
		require.Equal(t, ToggleActionCheckIn, first.Action)

		// An open visit at store 1 does not turn the store 2 scan into a checkout.
		second, err := svc.Toggle(member.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, ToggleActionCheckIn, second.Action)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, _, _, svc := newSelfCheckInFixture()

		_, err := svc.Toggle(99, 1)
		assert.ErrorIs(t, err, ErrMemberForCheckInNotFound)
	})
}

func TestResolveStationStore(t *testing.T) {
	t.Run("resolves by QR token", func(t *testing.T) {
		_, _, storeRepo, svc := newSelfCheckInFixture()
		storeRepo.add(&models.Store{Name: "Downtown", IsActive: true, QRToken: "tok-downtown"})
		want := storeRepo.add(&models.Store{Name: "Uptown", IsActive: true, QRToken: "tok-uptown"})

		store, err := svc.ResolveStationStore("tok-uptown", 0)
		require.NoError(t, err)
		assert.Equal(t, want.ID, store.ID)
	})

	t.Run("falls back to the default store", func(t *testing.T) {
		_, _, storeRepo, svc := newSelfCheckInFixture()
		want := storeRepo.add(&models.Store{Name: "Downtown", IsActive: true, QRToken: "tok-downtown"})

		store, err := svc.ResolveStationStore("", want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.ID, store.ID)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, _, _, svc := newSelfCheckInFixture()

		_, err := svc.ResolveStationStore("no-such-token", 0)
		assert.ErrorIs(t, err, ErrStationStoreNotFound)
	})
}
