package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// MemberHandler holds the member and access services.
type MemberHandler struct {
	memberService services.MemberService
	accessService services.AccessService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(ms services.MemberService, as services.AccessService) *MemberHandler {
	return &MemberHandler{memberService: ms, accessService: as}
}

// CreateMember handles the creation of a new member.
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req services.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateMember: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	if !requireStoreAccess(c, h.accessService, req.StoreID) {
		return
	}

	member, err := h.memberService.CreateMember(req)
	if err != nil {
		utils.LogError(err, "CreateMember: Error from memberService.CreateMember")
		if errors.Is(err, services.ErrMemberNumberExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Member number already exists.", err.Error()))
		} else if errors.Is(err, services.ErrPlanNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Membership plan not found.", err.Error()))
		} else if errors.Is(err, services.ErrMemberValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, member)
}

// GetMembers handles fetching members with filters and pagination.
func (h *MemberHandler) GetMembers(c *gin.Context) {
	storeID, err := utils.StrToInt64(c.Query("store_id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "store_id query parameter is required.", ""))
		return
	}
	if !requireStoreAccess(c, h.accessService, storeID) {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filters := models.MemberFilters{
		StoreID:  &storeID,
		Status:   utils.NewNullString(c.Query("status")),
		Search:   utils.NewNullString(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	}

	members, totalCount, err := h.memberService.GetMembers(filters)
	if err != nil {
		utils.LogError(err, "GetMembers: Error from memberService.GetMembers")
		if errors.Is(err, services.ErrMemberValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch members.", "Internal error"))
		}
		return
	}
	if members == nil {
		members = []models.Member{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      members,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// loadMemberWithAccess fetches a member and verifies store scope. It writes
// the error response itself and returns nil when the caller should stop.
func (h *MemberHandler) loadMemberWithAccess(c *gin.Context) *models.Member {
	idStr := c.Param("id")
	memberID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid member ID format.", err.Error()))
		return nil
	}

	member, err := h.memberService.GetMemberByID(memberID)
	if err != nil {
		utils.LogError(err, "loadMemberWithAccess: Error for ID "+idStr)
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch member.", "Internal error"))
		}
		return nil
	}
	if !requireStoreAccess(c, h.accessService, member.StoreID) {
		return nil
	}
	return member
}

// GetMemberByID handles fetching a single member by ID.
func (h *MemberHandler) GetMemberByID(c *gin.Context) {
	member := h.loadMemberWithAccess(c)
	if member == nil {
		return
	}
	c.JSON(http.StatusOK, member)
}

// UpdateMember handles updating a member.
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	member := h.loadMemberWithAccess(c)
	if member == nil {
		return
	}

	var req services.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateMember: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	updated, err := h.memberService.UpdateMember(member.ID, req)
	if err != nil {
		utils.LogError(err, "UpdateMember: Error from memberService.UpdateMember")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found to update.", err.Error()))
		} else if errors.Is(err, services.ErrPlanNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Membership plan not found.", err.Error()))
		} else if errors.Is(err, services.ErrMemberValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteMember handles deleting a member.
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	member := h.loadMemberWithAccess(c)
	if member == nil {
		return
	}

	if err := h.memberService.DeleteMember(member.ID); err != nil {
		utils.LogError(err, "DeleteMember: Error from memberService.DeleteMember")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found to delete.", err.Error()))
		} else if errors.Is(err, services.ErrMemberInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Member cannot be deleted as they are referenced in other records.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member deleted successfully"})
}
