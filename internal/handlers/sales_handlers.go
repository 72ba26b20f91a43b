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

// SalesHandler holds the sales and access services.
type SalesHandler struct {
	salesService  services.SalesService
	accessService services.AccessService
}

// NewSalesHandler creates a new SalesHandler.
func NewSalesHandler(ss services.SalesService, as services.AccessService) *SalesHandler {
	return &SalesHandler{salesService: ss, accessService: as}
}

// CreateSalesRecord appends a daily sales entry for a store.
func (h *SalesHandler) CreateSalesRecord(c *gin.Context) {
	var req services.CreateSalesRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateSalesRecord: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	if !requireStoreAccess(c, h.accessService, req.StoreID) {
		return
	}

	record, err := h.salesService.CreateSalesRecord(req)
	if err != nil {
		utils.LogError(err, "CreateSalesRecord: Error from salesService.CreateSalesRecord")
		if errors.Is(err, services.ErrSalesValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create sales record.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetSalesRecords lists sales entries with filters and pagination.
func (h *SalesHandler) GetSalesRecords(c *gin.Context) {
	var filters models.SalesFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters: "+err.Error(), err.Error()))
		return
	}
	if filters.StoreID == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "store_id query parameter is required.", ""))
		return
	}
	if !requireStoreAccess(c, h.accessService, *filters.StoreID) {
		return
	}

	records, totalCount, err := h.salesService.GetSalesRecords(filters)
	if err != nil {
		utils.LogError(err, "GetSalesRecords: Error from salesService.GetSalesRecords")
		if errors.Is(err, services.ErrSalesValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch sales records.", "Internal error"))
		}
		return
	}
	if records == nil {
		records = []models.SalesRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      records,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetSalesSummary totals a store's sales over a date range.
func (h *SalesHandler) GetSalesSummary(c *gin.Context) {
	storeID, err := utils.StrToInt64(c.Query("store_id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "store_id query parameter is required.", ""))
		return
	}
	if !requireStoreAccess(c, h.accessService, storeID) {
		return
	}

	dateFrom := c.Query("date_from")
	dateTo := c.Query("date_to")

	summary, err := h.salesService.GetSalesSummary(storeID, dateFrom, dateTo)
	if err != nil {
		utils.LogError(err, "GetSalesSummary: Error from salesService.GetSalesSummary")
		if errors.Is(err, services.ErrSalesValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to summarize sales.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteSalesRecord removes a sales entry. Manager or owner only; the store
// is resolved from the query because the record's store is needed for the
// scope check before deletion.
func (h *SalesHandler) DeleteSalesRecord(c *gin.Context) {
	idStr := c.Param("id")
	recordID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid sales record ID format.", err.Error()))
		return
	}
	storeID, err := utils.StrToInt64(c.Query("store_id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "store_id query parameter is required.", ""))
		return
	}
	if !requireStoreManager(c, h.accessService, storeID) {
		return
	}

	if err := h.salesService.DeleteSalesRecord(recordID); err != nil {
		utils.LogError(err, "DeleteSalesRecord: Error from salesService.DeleteSalesRecord for ID "+idStr)
		if errors.Is(err, services.ErrSalesRecordNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Sales record not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete sales record.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sales record deleted successfully"})
}
