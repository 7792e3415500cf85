package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/andresuchdata/shopmetrics/internal/repository/postgres"
	"github.com/lib/pq"
)

type PerformanceRepository interface {
	GetRecords(ctx context.Context, filter domain.PerformanceFilter) ([]domain.UnifiedPerformanceRecord, int, error)
	GetSummary(ctx context.Context, date string) (*domain.PerformanceSummary, error)
	GetAvailableDates(ctx context.Context, limit int) ([]time.Time, error)
	DeleteDate(ctx context.Context, date string) (int64, error)
}

type performanceRepository struct {
	db *postgres.DB
}

func NewPerformanceRepository(db *postgres.DB) PerformanceRepository {
	return &performanceRepository{db: db}
}

func (r *performanceRepository) GetAvailableDates(ctx context.Context, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT DISTINCT date
		FROM product_performance
		ORDER BY date DESC
		LIMIT $1
	`

	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query, limit); err != nil {
		return nil, fmt.Errorf("error getting available dates: %w", err)
	}

	return dates, nil
}

func buildFilterConditions(filter domain.PerformanceFilter) ([]string, []interface{}) {
	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("date = $%d::date", argCounter))
		args = append(args, filter.Date)
		argCounter++
	}

	if filter.Urgency != "" {
		conditions = append(conditions, fmt.Sprintf("reorder_urgency = $%d", argCounter))
		args = append(args, filter.Urgency)
		argCounter++
	}

	// Catalog feeds carry mixed-case categories and SKUs; records keep the
	// raw values, so these filters compare case-insensitively.
	if len(filter.Categories) > 0 {
		conditions = append(conditions, fmt.Sprintf("LOWER(category) = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(lowerAll(filter.Categories)))
		argCounter++
	}

	if len(filter.SKUs) > 0 {
		conditions = append(conditions, fmt.Sprintf("LOWER(sku) = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(lowerAll(filter.SKUs)))
		argCounter++
	}

	return conditions, args
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

func (r *performanceRepository) GetRecords(ctx context.Context, filter domain.PerformanceFilter) ([]domain.UnifiedPerformanceRecord, int, error) {
	countQuery := `
        SELECT COUNT(*)
        FROM product_performance
        WHERE 1=1
    `

	query := `
        SELECT *
        FROM product_performance
        WHERE 1=1
    `

	conditions, args := buildFilterConditions(filter)
	if len(conditions) > 0 {
		whereClause := " AND " + strings.Join(conditions, " AND ")
		query += whereClause
		countQuery += whereClause
	}

	// Get total count
	var total int
	err := r.db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting performance records: %w", err)
	}

	// Priority order mirrors the engine output ordering
	query += `
        ORDER BY
            CASE reorder_urgency
                WHEN 'URGENT' THEN 0
                WHEN 'HIGH' THEN 1
                WHEN 'MEDIUM' THEN 2
                ELSE 3
            END,
            revenue_30d DESC,
            days_of_stock_remaining ASC,
            product_id ASC
    `

	// Add pagination
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		argCounter := len(args) + 1
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.PageSize, offset)
	}

	var records []domain.UnifiedPerformanceRecord
	err = r.db.SelectContext(ctx, &records, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting performance records: %w", err)
	}

	return records, total, nil
}

// DeleteDate removes an entire output partition, for pulling a bad run
// before its corrected rerun lands.
func (r *performanceRepository) DeleteDate(ctx context.Context, date string) (int64, error) {
	var deleted int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM product_performance WHERE date = $1::date", date)
		if err != nil {
			return fmt.Errorf("error deleting performance rows: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

func (r *performanceRepository) GetSummary(ctx context.Context, date string) (*domain.PerformanceSummary, error) {
	summary := &domain.PerformanceSummary{Date: date}

	totalsQuery := `
        SELECT
            COUNT(*),
            COALESCE(SUM(total_marketing_spend), 0),
            COALESCE(SUM(revenue_30d), 0),
            COALESCE(SUM(revenue_at_risk), 0)
        FROM product_performance
        WHERE date = $1::date
    `
	err := r.db.QueryRowxContext(ctx, totalsQuery, date).Scan(
		&summary.TotalProducts, &summary.TotalSpend,
		&summary.TotalRevenue, &summary.RevenueAtRisk,
	)
	if err != nil {
		return nil, fmt.Errorf("error getting summary totals: %w", err)
	}

	urgencyQuery := `
        SELECT reorder_urgency, COUNT(*) as count
        FROM product_performance
        WHERE date = $1::date
        GROUP BY reorder_urgency
    `
	if err := r.db.SelectContext(ctx, &summary.ByUrgency, urgencyQuery, date); err != nil {
		return nil, fmt.Errorf("error getting urgency summary: %w", err)
	}

	riskQuery := `
        SELECT overstock_risk, COUNT(*) as count
        FROM product_performance
        WHERE date = $1::date
        GROUP BY overstock_risk
    `
	if err := r.db.SelectContext(ctx, &summary.ByRisk, riskQuery, date); err != nil {
		return nil, fmt.Errorf("error getting overstock summary: %w", err)
	}

	classQuery := `
        SELECT abc_classification, COUNT(*) as count,
               COALESCE(SUM(revenue_30d), 0) as revenue
        FROM product_performance
        WHERE date = $1::date
        GROUP BY abc_classification
        ORDER BY abc_classification
    `
	if err := r.db.SelectContext(ctx, &summary.ByClass, classQuery, date); err != nil {
		return nil, fmt.Errorf("error getting class summary: %w", err)
	}

	return summary, nil
}
