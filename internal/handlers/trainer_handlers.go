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

// TrainerHandler holds the trainer and access services.
type TrainerHandler struct {
	trainerService services.TrainerService
	accessService  services.AccessService
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(ts services.TrainerService, as services.AccessService) *TrainerHandler {
	return &TrainerHandler{trainerService: ts, accessService: as}
}

// CreateTrainer handles the creation of a new trainer.
func (h *TrainerHandler) CreateTrainer(c *gin.Context) {
	var req services.CreateTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateTrainer: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	if !requireStoreAccess(c, h.accessService, req.StoreID) {
		return
	}

	trainer, err := h.trainerService.CreateTrainer(req)
	if err != nil {
		utils.LogError(err, "CreateTrainer: Error from trainerService.CreateTrainer")
		if errors.Is(err, services.ErrStoreNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Store not found.", err.Error()))
		} else if errors.Is(err, services.ErrTrainerValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create trainer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, trainer)
}

// GetTrainers lists trainers for a store.
func (h *TrainerHandler) GetTrainers(c *gin.Context) {
	storeID, err := utils.StrToInt64(c.Query("store_id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "store_id query parameter is required.", ""))
		return
	}
	if !requireStoreAccess(c, h.accessService, storeID) {
		return
	}
	activeOnly := c.DefaultQuery("active_only", "true") == "true"

	trainers, err := h.trainerService.GetTrainersByStore(storeID, activeOnly)
	if err != nil {
		utils.LogError(err, "GetTrainers: Error from trainerService.GetTrainersByStore")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch trainers.", "Internal error"))
		return
	}
	if trainers == nil {
		trainers = []models.Trainer{}
	}
	c.JSON(http.StatusOK, gin.H{"data": trainers})
}

// GetTrainerByID handles fetching a single trainer by ID.
func (h *TrainerHandler) GetTrainerByID(c *gin.Context) {
	idStr := c.Param("id")
	trainerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid trainer ID format.", err.Error()))
		return
	}

	trainer, err := h.trainerService.GetTrainerByID(trainerID)
	if err != nil {
		utils.LogError(err, "GetTrainerByID: Error for ID "+idStr)
		if errors.Is(err, services.ErrTrainerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Trainer not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch trainer.", "Internal error"))
		}
		return
	}
	if !requireStoreAccess(c, h.accessService, trainer.StoreID) {
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// UpdateTrainer handles updating a trainer.
func (h *TrainerHandler) UpdateTrainer(c *gin.Context) {
	idStr := c.Param("id")
	trainerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid trainer ID format.", err.Error()))
		return
	}

	existing, err := h.trainerService.GetTrainerByID(trainerID)
	if err != nil {
		if errors.Is(err, services.ErrTrainerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Trainer not found to update.", err.Error()))
		} else {
			utils.LogError(err, "UpdateTrainer: Error fetching trainer for ID "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch trainer.", "Internal error"))
		}
		return
	}
	if !requireStoreAccess(c, h.accessService, existing.StoreID) {
		return
	}

	var req services.UpdateTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateTrainer: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	trainer, err := h.trainerService.UpdateTrainer(trainerID, req)
	if err != nil {
		utils.LogError(err, "UpdateTrainer: Error from trainerService.UpdateTrainer")
		if errors.Is(err, services.ErrTrainerValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update trainer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, trainer)
}
