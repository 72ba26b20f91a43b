package handlers

import (
	"errors"
	"net/http"

	"gym_crm_backend/internal/middleware"
	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// requirePrincipal extracts the caller or writes a 401.
func requirePrincipal(c *gin.Context) (models.Principal, bool) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
		return models.Principal{}, false
	}
	return principal, true
}

// requireStoreAccess runs the store scope check and writes the response on
// failure. Handlers call this before acting on any store-scoped resource.
func requireStoreAccess(c *gin.Context, accessService services.AccessService, storeID int64) bool {
	principal, ok := requirePrincipal(c)
	if !ok {
		return false
	}
	if err := accessService.AssertStoreAccess(principal, storeID); err != nil {
		respondAccessError(c, err)
		return false
	}
	return true
}

// requireStoreManager is the stricter variant for store-configuration
// mutations.
func requireStoreManager(c *gin.Context, accessService services.AccessService, storeID int64) bool {
	principal, ok := requirePrincipal(c)
	if !ok {
		return false
	}
	if err := accessService.AssertStoreManager(principal, storeID); err != nil {
		respondAccessError(c, err)
		return false
	}
	return true
}

func respondAccessError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrForbidden) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have access to this store.", err.Error()))
		return
	}
	utils.LogError(err, "respondAccessError: Error resolving store access")
	utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to resolve store access.", "Internal error"))
}
