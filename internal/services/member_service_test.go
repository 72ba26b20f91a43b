package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_crm_backend/internal/models"
)

func newMemberFixture() (*fakeMemberRepo, *fakePlanRepo, MemberService) {
	memberRepo := newFakeMemberRepo()
	planRepo := newFakePlanRepo()
	svc := NewMemberService(memberRepo, planRepo, nil)
	return memberRepo, planRepo, svc
}

func TestCreateMember(t *testing.T) {
	t.Run("starts active with the plan's allowance", func(t *testing.T) {
		_, planRepo, svc := newMemberFixture()
		plan := planRepo.add(&models.Plan{Name: "Basic", SessionsPerMonth: 8})

		member, err := svc.CreateMember(CreateMemberRequest{
			StoreID:      1,
			MemberNumber: "M-001",
			FullName:     "Aida",
			PlanID:       &plan.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, models.MemberStatusActive, member.Status)
		assert.Equal(t, 8, member.RemainingSessions)
	})

	t.Run("no plan means zero starting sessions", func(t *testing.T) {
		_, _, svc := newMemberFixture()

		member, err := svc.CreateMember(CreateMemberRequest{
			StoreID:      1,
			MemberNumber: "M-002",
			FullName:     "Bek",
		})
		require.NoError(t, err)
		assert.Nil(t, member.PlanID)
		assert.Equal(t, 0, member.RemainingSessions)
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, _, svc := newMemberFixture()
		planID := int64(42)

		_, err := svc.CreateMember(CreateMemberRequest{
			StoreID:      1,
			MemberNumber: "M-003",
			FullName:     "Aida",
			PlanID:       &planID,
		})
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		_, _, svc := newMemberFixture()

		_, err := svc.CreateMember(CreateMemberRequest{StoreID: 1, MemberNumber: "M-004", FullName: "  "})
		assert.ErrorIs(t, err, ErrMemberValidation)

		_, err = svc.CreateMember(CreateMemberRequest{StoreID: 1, MemberNumber: "", FullName: "Aida"})
		assert.ErrorIs(t, err, ErrMemberValidation)

		bad := "31-12-2026"
		_, err = svc.CreateMember(CreateMemberRequest{
			StoreID:      1,
			MemberNumber: "M-005",
			FullName:     "Aida",
			ExpiresAt:    &bad,
		})
		assert.ErrorIs(t, err, ErrMemberValidation)
	})
}

func TestUpdateMember(t *testing.T) {
	t.Run("nil fields are left untouched", func(t *testing.T) {
		memberRepo, _, svc := newMemberFixture()
		phone := "+77010000000"
		member := memberRepo.add(&models.Member{
			FullName:          "Aida",
			StoreID:           1,
			Status:            models.MemberStatusActive,
			PhoneNumber:       &phone,
			RemainingSessions: 3,
		})

		name := "Aida K."
		updated, err := svc.UpdateMember(member.ID, UpdateMemberRequest{FullName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Aida K.", updated.FullName)
		require.NotNil(t, updated.PhoneNumber)
		assert.Equal(t, phone, *updated.PhoneNumber)
		assert.Equal(t, 3, updated.RemainingSessions)
	})

	t.Run("plan switch resets the allowance", func(t *testing.T) {
		memberRepo, planRepo, svc := newMemberFixture()
		plan := planRepo.add(&models.Plan{Name: "Pro", SessionsPerMonth: 12})
		member := memberRepo.add(&models.Member{
			FullName:          "Aida",
			StoreID:           1,
			Status:            models.MemberStatusActive,
			RemainingSessions: 2,
		})

		updated, err := svc.UpdateMember(member.ID, UpdateMemberRequest{PlanID: &plan.ID})
		require.NoError(t, err)
		assert.Equal(t, 12, updated.RemainingSessions)
	})

	t.Run("pinned remaining sessions wins over the plan switch", func(t *testing.T) {
		memberRepo, planRepo, svc := newMemberFixture()
		plan := planRepo.add(&models.Plan{Name: "Pro", SessionsPerMonth: 12})
		member := memberRepo.add(&models.Member{
			FullName:          "Aida",
			StoreID:           1,
			Status:            models.MemberStatusActive,
			RemainingSessions: 2,
		})

		pinned := 5
		updated, err := svc.UpdateMember(member.ID, UpdateMemberRequest{PlanID: &plan.ID, RemainingSessions: &pinned})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.RemainingSessions)
	})

	t.Run("invalid status", func(t *testing.T) {
		memberRepo, _, svc := newMemberFixture()
		member := memberRepo.add(&models.Member{FullName: "Aida", StoreID: 1, Status: models.MemberStatusActive})

		bad := "frozen"
		_, err := svc.UpdateMember(member.ID, UpdateMemberRequest{Status: &bad})
		assert.ErrorIs(t, err, ErrMemberValidation)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, _, svc := newMemberFixture()
		name := "Aida"

		_, err := svc.UpdateMember(99, UpdateMemberRequest{FullName: &name})
		assert.ErrorIs(t, err, ErrMemberNotFound)
	})
}
