package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_crm_backend/internal/models"
)

func newAccessFixture() (*fakeStoreRepo, AccessService) {
	storeRepo := newFakeStoreRepo()
	storeRepo.add(&models.Store{Name: "Downtown", IsActive: true, QRToken: "tok-1"})
	storeRepo.add(&models.Store{Name: "Uptown", IsActive: true, QRToken: "tok-2"})
	storeRepo.add(&models.Store{Name: "Closed", IsActive: false, QRToken: "tok-3"})
	return storeRepo, NewAccessService(storeRepo)
}

func TestResolveAccessibleStores(t *testing.T) {
	t.Run("owner sees every store", func(t *testing.T) {
		_, svc := newAccessFixture()

		ids, err := svc.ResolveAccessibleStores(models.Principal{UserID: 1, Role: models.RoleOwner})
		require.NoError(t, err)
		assert.Len(t, ids, 3)
	})

	t.Run("staff see their active assignments", func(t *testing.T) {
		storeRepo, svc := newAccessFixture()
		storeRepo.assign(7, 1, models.StaffRoleStaff, true)
		storeRepo.assign(7, 2, models.StaffRoleManager, false)

		ids, err := svc.ResolveAccessibleStores(models.Principal{UserID: 7, Role: models.RoleStaff})
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, ids)
	})

	t.Run("members are never store scoped", func(t *testing.T) {
		_, svc := newAccessFixture()

		ids, err := svc.ResolveAccessibleStores(models.Principal{UserID: 5, Role: models.RoleMember})
		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.NotNil(t, ids)
	})
}

func TestAssertStoreAccess(t *testing.T) {
	t.Run("owner passes everywhere", func(t *testing.T) {
		_, svc := newAccessFixture()

		assert.NoError(t, svc.AssertStoreAccess(models.Principal{UserID: 1, Role: models.RoleOwner}, 2))
	})

	t.Run("staff pass only on assigned stores", func(t *testing.T) {
		storeRepo, svc := newAccessFixture()
		storeRepo.assign(7, 1, models.StaffRoleStaff, true)
		principal := models.Principal{UserID: 7, Role: models.RoleStaff}

		assert.NoError(t, svc.AssertStoreAccess(principal, 1))
		assert.ErrorIs(t, svc.AssertStoreAccess(principal, 2), ErrForbidden)
	})

	t.Run("deactivated assignment no longer grants access", func(t *testing.T) {
		storeRepo, svc := newAccessFixture()
		storeRepo.assign(7, 1, models.StaffRoleStaff, false)

		err := svc.AssertStoreAccess(models.Principal{UserID: 7, Role: models.RoleStaff}, 1)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("member role is rejected", func(t *testing.T) {
		_, svc := newAccessFixture()

		err := svc.AssertStoreAccess(models.Principal{UserID: 5, Role: models.RoleMember}, 1)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAssertStoreManager(t *testing.T) {
	t.Run("owner passes", func(t *testing.T) {
		_, svc := newAccessFixture()

		assert.NoError(t, svc.AssertStoreManager(models.Principal{UserID: 1, Role: models.RoleOwner}, 1))
	})

	t.Run("manager assignment passes, plain staff does not", func(t *testing.T) {
		storeRepo, svc := newAccessFixture()
		storeRepo.assign(7, 1, models.StaffRoleManager, true)
		storeRepo.assign(8, 1, models.StaffRoleStaff, true)

		assert.NoError(t, svc.AssertStoreManager(models.Principal{UserID: 7, Role: models.RoleStaff}, 1))
		assert.ErrorIs(t, svc.AssertStoreManager(models.Principal{UserID: 8, Role: models.RoleStaff}, 1), ErrForbidden)
	})

	t.Run("manager rank does not carry to other stores", func(t *testing.T) {
		storeRepo, svc := newAccessFixture()
		storeRepo.assign(7, 1, models.StaffRoleManager, true)

		err := svc.AssertStoreManager(models.Principal{UserID: 7, Role: models.RoleStaff}, 2)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
