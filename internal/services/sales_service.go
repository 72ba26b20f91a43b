package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

var (
	ErrSalesRecordNotFound = errors.New("sales record not found")
	ErrSalesValidation     = errors.New("sales data validation error")
)

// CreateSalesRecordRequest DTO
type CreateSalesRecordRequest struct {
	StoreID int64   `json:"store_id" binding:"required"`
	Date    string  `json:"date" binding:"required"` // Format YYYY-MM-DD
	Type    string  `json:"type" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
	Notes   *string `json:"notes"`
}

// SalesSummary aggregates records over a date range for one store.
type SalesSummary struct {
	StoreID  int64   `json:"store_id"`
	DateFrom string  `json:"date_from"`
	DateTo   string  `json:"date_to"`
	Total    float64 `json:"total"`
}

type SalesService interface {
	CreateSalesRecord(req CreateSalesRecordRequest) (*models.SalesRecord, error)
	GetSalesRecords(filters models.SalesFilters) ([]models.SalesRecord, int, error)
	DeleteSalesRecord(recordID int64) error
	GetSalesSummary(storeID int64, dateFrom, dateTo string) (*SalesSummary, error)
}

type salesService struct {
	salesRepo repositories.SalesRepository
	db        *sql.DB
}

// NewSalesService creates a new instance of SalesService.
func NewSalesService(salesRepo repositories.SalesRepository, db *sql.DB) SalesService {
	return &salesService{salesRepo: salesRepo, db: db}
}

func validateSalesDate(value string) error {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrSalesValidation)
	}
	return nil
}

func (s *salesService) CreateSalesRecord(req CreateSalesRecordRequest) (*models.SalesRecord, error) {
	if err := validateSalesDate(req.Date); err != nil {
		return nil, err
	}
	if !models.IsValidSalesType(req.Type) {
		return nil, fmt.Errorf("%w: unknown type '%s'", ErrSalesValidation, req.Type)
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("%w: amount cannot be negative", ErrSalesValidation)
	}

	record := models.SalesRecord{
		StoreID: req.StoreID,
		Date:    req.Date,
		Type:    models.SalesType(req.Type),
		Amount:  req.Amount,
		Notes:   req.Notes,
	}
	recordID, err := s.salesRepo.CreateSalesRecord(s.db, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to create sales record: %w", err)
	}
	record.ID = recordID
	return &record, nil
}

func (s *salesService) GetSalesRecords(filters models.SalesFilters) ([]models.SalesRecord, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.Type != nil && !models.IsValidSalesType(*filters.Type) {
		return nil, 0, fmt.Errorf("%w: unknown type '%s'", ErrSalesValidation, *filters.Type)
	}
	records, total, err := s.salesRepo.GetSalesRecords(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales records: %w", err)
	}
	return records, total, nil
}

func (s *salesService) DeleteSalesRecord(recordID int64) error {
	err := s.salesRepo.DeleteSalesRecord(s.db, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSalesRecordNotFound
		}
		return fmt.Errorf("failed to delete sales record: %w", err)
	}
	return nil
}

func (s *salesService) GetSalesSummary(storeID int64, dateFrom, dateTo string) (*SalesSummary, error) {
	if err := validateSalesDate(dateFrom); err != nil {
		return nil, err
	}
	if err := validateSalesDate(dateTo); err != nil {
		return nil, err
	}
	total, err := s.salesRepo.SumSales(storeID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sales: %w", err)
	}
	return &SalesSummary{
		StoreID:  storeID,
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Total:    total,
	}, nil
}
