package handlers

import (
	"errors"
	"net/http"

	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SelfCheckInHandler serves the kiosk toggle endpoint. The kiosk identifies
// its store through the QR token, so these routes sit outside the staff
// authentication group.
type SelfCheckInHandler struct {
	selfCheckInService services.SelfCheckInService
	defaultStoreID     int64
}

// NewSelfCheckInHandler creates a new SelfCheckInHandler.
func NewSelfCheckInHandler(scs services.SelfCheckInService, defaultStoreID int64) *SelfCheckInHandler {
	return &SelfCheckInHandler{selfCheckInService: scs, defaultStoreID: defaultStoreID}
}

// ToggleRequest is the kiosk payload: who is scanning and where.
type ToggleRequest struct {
	MemberID int64  `json:"member_id" binding:"required"`
	QRToken  string `json:"qr_token"` // empty means the single-store default
}

// Toggle flips the member's presence at the station's store.
func (h *SelfCheckInHandler) Toggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Toggle: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	store, err := h.selfCheckInService.ResolveStationStore(req.QRToken, h.defaultStoreID)
	if err != nil {
		utils.LogError(err, "Toggle: Error resolving station store")
		if errors.Is(err, services.ErrStationStoreNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Check-in station is not linked to a store.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to resolve check-in station.", "Internal error"))
		}
		return
	}

	result, err := h.selfCheckInService.Toggle(req.MemberID, store.ID)
	if err != nil {
		utils.LogError(err, "Toggle: Error from selfCheckInService.Toggle")
		switch {
		case errors.Is(err, services.ErrMemberForCheckInNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		case errors.Is(err, services.ErrAlreadyCheckedIn):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Member is already checked in.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to toggle check-in.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
