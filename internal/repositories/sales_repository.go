package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gym_crm_backend/internal/models"
)

// SalesRepository defines the interface for sales record database operations.
// Rows are append-only: there is no update path, only insert, read and a
// manager-gated delete for entry mistakes.
type SalesRepository interface {
	CreateSalesRecord(executor SQLExecutor, record *models.SalesRecord) (int64, error)
	GetSalesRecords(filters models.SalesFilters) ([]models.SalesRecord, int, error)
	DeleteSalesRecord(executor SQLExecutor, id int64) error
	SumSales(storeID int64, dateFrom, dateTo string) (float64, error)
}

type salesRepository struct {
	db *sql.DB
}

// NewSalesRepository creates a new instance of SalesRepository.
func NewSalesRepository(db *sql.DB) SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) CreateSalesRecord(executor SQLExecutor, record *models.SalesRecord) (int64, error) {
	query := `INSERT INTO sales_records (store_id, date, type, amount, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	record.CreatedAt = time.Now()
	err := executor.QueryRow(query,
		record.StoreID, record.Date, record.Type, record.Amount, record.Notes, record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return 0, mapPqError(err, "creating sales record")
	}
	return record.ID, nil
}

func (r *salesRepository) GetSalesRecords(filters models.SalesFilters) ([]models.SalesRecord, int, error) {
	records := []models.SalesRecord{}
	var totalCount int

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, store_id, to_char(date, 'YYYY-MM-DD'), type, amount, notes, created_at,
	                                 COUNT(*) OVER() as total_count
	                          FROM sales_records`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.StoreID != nil {
		conditions = append(conditions, fmt.Sprintf("store_id = $%d", argCount))
		args = append(args, *filters.StoreID)
		argCount++
	}
	if filters.Type != nil && *filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argCount))
		args = append(args, *filters.DateFrom)
		argCount++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argCount))
		args = append(args, *filters.DateTo)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY date DESC, id DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying sales records: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var record models.SalesRecord
		var notes sql.NullString
		err := rows.Scan(&record.ID, &record.StoreID, &record.Date, &record.Type,
			&record.Amount, &notes, &record.CreatedAt, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning sales record: %v", ErrDatabaseError, err)
		}
		if notes.Valid {
			record.Notes = &notes.String
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating sales record rows: %v", ErrDatabaseError, err)
	}
	if len(records) == 0 {
		totalCount = 0
	}
	return records, totalCount, nil
}

func (r *salesRepository) DeleteSalesRecord(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM sales_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting sales record ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SumSales totals a store's sales over an inclusive date range.
func (r *salesRepository) SumSales(storeID int64, dateFrom, dateTo string) (float64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM sales_records
	          WHERE store_id = $1 AND date >= $2 AND date <= $3`

	var total float64
	err := r.db.QueryRow(query, storeID, dateFrom, dateTo).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing sales for store %d: %v", ErrDatabaseError, storeID, err)
	}
	return total, nil
}
