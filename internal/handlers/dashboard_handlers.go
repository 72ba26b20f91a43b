package handlers

import (
	"net/http"

	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DashboardHandler holds the dashboard and access services.
type DashboardHandler struct {
	dashboardService services.DashboardService
	accessService    services.AccessService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(ds services.DashboardService, as services.AccessService) *DashboardHandler {
	return &DashboardHandler{dashboardService: ds, accessService: as}
}

// GetStoreSummary returns the operational snapshot for one store.
func (h *DashboardHandler) GetStoreSummary(c *gin.Context) {
	storeID, err := utils.StrToInt64(c.Query("store_id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "store_id query parameter is required.", ""))
		return
	}
	if !requireStoreAccess(c, h.accessService, storeID) {
		return
	}

	summary, err := h.dashboardService.GetStoreSummary(storeID)
	if err != nil {
		utils.LogError(err, "GetStoreSummary: Error from dashboardService.GetStoreSummary")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build dashboard summary.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetAccessibleStores lists the store IDs the caller may act on. Frontends
// use this to populate the store switcher.
func (h *DashboardHandler) GetAccessibleStores(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	storeIDs, err := h.accessService.ResolveAccessibleStores(principal)
	if err != nil {
		utils.LogError(err, "GetAccessibleStores: Error from accessService.ResolveAccessibleStores")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to resolve accessible stores.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"store_ids": storeIDs})
}
