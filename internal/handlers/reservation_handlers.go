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

// ReservationHandler holds the reservation and access services.
type ReservationHandler struct {
	reservationService services.ReservationService
	trainerService     services.TrainerService
	accessService      services.AccessService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(rs services.ReservationService, ts services.TrainerService, as services.AccessService) *ReservationHandler {
	return &ReservationHandler{reservationService: rs, trainerService: ts, accessService: as}
}

// TransitionRequest moves a reservation along its lifecycle.
type TransitionRequest struct {
	Status string `json:"status" binding:"required"` // completed, cancelled or no_show
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// CreateReservation books a training slot.
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req services.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateReservation: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	// The booking's store is the trainer's store, so the scope check runs
	// against that before anything is written.
	trainer, err := h.trainerService.GetTrainerByID(req.TrainerID)
	if err != nil {
		if errors.Is(err, services.ErrTrainerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Trainer not found.", err.Error()))
		} else {
			utils.LogError(err, "CreateReservation: Error fetching trainer")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch trainer.", "Internal error"))
		}
		return
	}
	if !requireStoreAccess(c, h.accessService, trainer.StoreID) {
		return
	}

	reservation, err := h.reservationService.CreateReservation(req)
	if err != nil {
		utils.LogError(err, "CreateReservation: Error from reservationService.CreateReservation")
		switch {
		case errors.Is(err, services.ErrMemberForReservationNotFound),
			errors.Is(err, services.ErrTrainerForReservationNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member or trainer not found.", err.Error()))
		case errors.Is(err, services.ErrMemberNotActive):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Member is not active.", err.Error()))
		case errors.Is(err, services.ErrNoSessionsRemaining):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Member has no remaining sessions.", err.Error()))
		case errors.Is(err, services.ErrDuplicateSlot):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Member already has a confirmed reservation at this time.", err.Error()))
		case errors.Is(err, services.ErrInvalidReservationTime):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid reservation time: "+err.Error(), err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create reservation.", "Internal error"))
		}
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

// GetReservations lists reservations with filters and pagination.
func (h *ReservationHandler) GetReservations(c *gin.Context) {
	var filters models.ReservationFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters: "+err.Error(), err.Error()))
		return
	}
	if filters.StoreID != nil && !requireStoreAccess(c, h.accessService, *filters.StoreID) {
		return
	}

	reservations, totalCount, err := h.reservationService.GetReservations(filters)
	if err != nil {
		utils.LogError(err, "GetReservations: Error from reservationService.GetReservations")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch reservations.", "Internal error"))
		return
	}
	if reservations == nil {
		reservations = []models.Reservation{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      reservations,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetReservationByID fetches a single reservation.
func (h *ReservationHandler) GetReservationByID(c *gin.Context) {
	idStr := c.Param("id")
	reservationID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid reservation ID format.", err.Error()))
		return
	}

	reservation, err := h.reservationService.GetReservationByID(reservationID)
	if err != nil {
		utils.LogError(err, "GetReservationByID: Error for ID "+idStr)
		if errors.Is(err, services.ErrReservationNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Reservation not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch reservation.", "Internal error"))
		}
		return
	}
	if !requireStoreAccess(c, h.accessService, reservation.StoreID) {
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// Transition applies a lifecycle change to a reservation.
func (h *ReservationHandler) Transition(c *gin.Context) {
	idStr := c.Param("id")
	reservationID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid reservation ID format.", err.Error()))
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Transition: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	target := models.ReservationStatus(req.Status)
	if !models.IsValidReservationStatus(req.Status) || target == models.ReservationStatusConfirmed {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Unknown target status: "+req.Status, ""))
		return
	}

	existing, err := h.reservationService.GetReservationByID(reservationID)
	if err != nil {
		if errors.Is(err, services.ErrReservationNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Reservation not found.", err.Error()))
		} else {
			utils.LogError(err, "Transition: Error fetching reservation for ID "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch reservation.", "Internal error"))
		}
		return
	}
	if !requireStoreAccess(c, h.accessService, existing.StoreID) {
		return
	}

	var reservation *models.Reservation
	if target == models.ReservationStatusCancelled {
		reservation, err = h.reservationService.CancelReservation(reservationID, utils.NewNullString(req.Reason))
	} else {
		reservation, err = h.reservationService.Transition(reservationID, target, utils.NewNullString(req.Notes))
	}
	if err != nil {
		utils.LogError(err, "Transition: Error from reservationService for ID "+idStr)
		switch {
		case errors.Is(err, services.ErrReservationNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Reservation not found.", err.Error()))
		case errors.Is(err, services.ErrInvalidTransition):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Reservation status transition is not allowed.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update reservation.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, reservation)
}
