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

// StoreHandler holds the store and access services.
type StoreHandler struct {
	storeService  services.StoreService
	accessService services.AccessService
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(ss services.StoreService, as services.AccessService) *StoreHandler {
	return &StoreHandler{storeService: ss, accessService: as}
}

// CreateStore handles the creation of a new store. Owner-only via routing.
func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req services.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateStore: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	store, err := h.storeService.CreateStore(req)
	if err != nil {
		utils.LogError(err, "CreateStore: Error from storeService.CreateStore")
		if errors.Is(err, services.ErrStoreNameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Store name already exists.", err.Error()))
		} else if errors.Is(err, services.ErrStoreValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create store.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, store)
}

// GetStores handles listing stores. Staff see shapes of every store here;
// scoped data access is enforced on the store-scoped endpoints instead.
func (h *StoreHandler) GetStores(c *gin.Context) {
	activeOnly := c.DefaultQuery("active_only", "false") == "true"

	stores, err := h.storeService.GetStores(activeOnly)
	if err != nil {
		utils.LogError(err, "GetStores: Error from storeService.GetStores")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch stores.", "Internal error"))
		return
	}
	if stores == nil {
		stores = []models.Store{}
	}
	c.JSON(http.StatusOK, gin.H{"data": stores})
}

func parseStoreID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	storeID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid store ID format.", err.Error()))
		return 0, false
	}
	return storeID, true
}

// GetStoreByID handles fetching a single store by ID.
func (h *StoreHandler) GetStoreByID(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}
	if !requireStoreAccess(c, h.accessService, storeID) {
		return
	}

	store, err := h.storeService.GetStoreByID(storeID)
	if err != nil {
		utils.LogError(err, "GetStoreByID: Error from storeService.GetStoreByID")
		if errors.Is(err, services.ErrStoreNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Store not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch store.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, store)
}

// UpdateStore handles updating a store. Owner-only via routing.
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	var req services.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateStore: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	store, err := h.storeService.UpdateStore(storeID, req)
	if err != nil {
		utils.LogError(err, "UpdateStore: Error from storeService.UpdateStore")
		if errors.Is(err, services.ErrStoreNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Store not found to update.", err.Error()))
		} else if errors.Is(err, services.ErrStoreNameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Store name already exists.", err.Error()))
		} else if errors.Is(err, services.ErrStoreValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update store.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, store)
}

// RotateQRToken replaces the store's self check-in QR token. Manager or
// owner only.
func (h *StoreHandler) RotateQRToken(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}
	if !requireStoreManager(c, h.accessService, storeID) {
		return
	}

	store, err := h.storeService.RotateQRToken(storeID)
	if err != nil {
		utils.LogError(err, "RotateQRToken: Error from storeService.RotateQRToken")
		if errors.Is(err, services.ErrStoreNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Store not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to rotate QR token.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, store)
}

// AssignStaff creates or reactivates a staff assignment. Manager or owner
// only.
func (h *StoreHandler) AssignStaff(c *gin.Context) {
	var req services.AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AssignStaff: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	if !requireStoreManager(c, h.accessService, req.StoreID) {
		return
	}

	assignment, err := h.storeService.AssignStaff(req)
	if err != nil {
		utils.LogError(err, "AssignStaff: Error from storeService.AssignStaff")
		if errors.Is(err, services.ErrStaffUserNotFound) || errors.Is(err, services.ErrStoreNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User or store not found.", err.Error()))
		} else if errors.Is(err, services.ErrStoreValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to assign staff.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// RemoveStaff deactivates a staff assignment. Manager or owner only.
func (h *StoreHandler) RemoveStaff(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid user ID format.", err.Error()))
		return
	}
	if !requireStoreManager(c, h.accessService, storeID) {
		return
	}

	if err := h.storeService.RemoveStaff(userID, storeID); err != nil {
		utils.LogError(err, "RemoveStaff: Error from storeService.RemoveStaff")
		if errors.Is(err, services.ErrAssignmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff assignment not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to remove staff assignment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff assignment deactivated"})
}

// GetStaffRoster lists staff assignments for a store.
func (h *StoreHandler) GetStaffRoster(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}
	if !requireStoreAccess(c, h.accessService, storeID) {
		return
	}

	roster, err := h.storeService.GetStaffRoster(storeID)
	if err != nil {
		utils.LogError(err, "GetStaffRoster: Error from storeService.GetStaffRoster")
		if errors.Is(err, services.ErrStoreNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Store not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch staff roster.", "Internal error"))
		}
		return
	}
	if roster == nil {
		roster = []models.StoreStaffAssignment{}
	}
	c.JSON(http.StatusOK, gin.H{"data": roster})
}
