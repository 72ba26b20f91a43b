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

// CheckInHandler holds the check-in and access services.
type CheckInHandler struct {
	checkInService services.CheckInService
	accessService  services.AccessService
}

// NewCheckInHandler creates a new CheckInHandler.
func NewCheckInHandler(cs services.CheckInService, as services.AccessService) *CheckInHandler {
	return &CheckInHandler{checkInService: cs, accessService: as}
}

// CheckInRequest is the staff-side check-in payload.
type CheckInRequest struct {
	MemberID int64  `json:"member_id" binding:"required"`
	StoreID  int64  `json:"store_id" binding:"required"`
	Method   string `json:"method"` // defaults to manual
}

// CheckIn opens a presence record for a member.
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CheckIn: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	if !requireStoreAccess(c, h.accessService, req.StoreID) {
		return
	}

	method := models.CheckInMethodManual
	if req.Method != "" {
		if !models.IsValidCheckInMethod(req.Method) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Unknown check-in method: "+req.Method, ""))
			return
		}
		method = models.CheckInMethod(req.Method)
	}

	record, err := h.checkInService.CheckIn(req.MemberID, req.StoreID, method)
	if err != nil {
		utils.LogError(err, "CheckIn: Error from checkInService.CheckIn")
		if errors.Is(err, services.ErrAlreadyCheckedIn) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Member is already checked in at this store.", err.Error()))
		} else if errors.Is(err, services.ErrMemberForCheckInNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to check member in.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, record)
}

// CheckOut closes an open presence record.
func (h *CheckInHandler) CheckOut(c *gin.Context) {
	idStr := c.Param("id")
	checkInID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid check-in ID format.", err.Error()))
		return
	}

	// The record's store decides the scope, so it is loaded before closing.
	existing, err := h.checkInService.GetCheckIn(checkInID)
	if err != nil {
		if errors.Is(err, services.ErrCheckInNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Check-in record not found.", err.Error()))
		} else {
			utils.LogError(err, "CheckOut: Error fetching check-in for ID "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch check-in record.", "Internal error"))
		}
		return
	}
	if !requireStoreAccess(c, h.accessService, existing.StoreID) {
		return
	}

	record, err := h.checkInService.CheckOut(checkInID)
	if err != nil {
		utils.LogError(err, "CheckOut: Error from checkInService.CheckOut for ID "+idStr)
		if errors.Is(err, services.ErrNotCheckedIn) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Check-in record is already closed.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to check member out.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetStatusBoard returns who is currently in plus today's closed visits for
// one store.
func (h *CheckInHandler) GetStatusBoard(c *gin.Context) {
	storeID, err := utils.StrToInt64(c.Query("store_id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "store_id query parameter is required.", ""))
		return
	}
	if !requireStoreAccess(c, h.accessService, storeID) {
		return
	}

	status, err := h.checkInService.StatusBoard(storeID)
	if err != nil {
		utils.LogError(err, "GetStatusBoard: Error from checkInService.StatusBoard")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch check-in status.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, status)
}
