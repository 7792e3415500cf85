package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/rs/zerolog/log"
)

// RecordWriter persists the daily unified output. Writes are
// replace-on-rerun: the whole date partition is deleted and reinserted in
// one transaction, so a rerun for the same date can never leave stale rows
// behind or be observed half-written.
type RecordWriter struct {
	db *sql.DB
}

// NewRecordWriter creates a new record writer
func NewRecordWriter(db *sql.DB) *RecordWriter {
	return &RecordWriter{db: db}
}

const insertRecordQuery = `
	INSERT INTO product_performance (
		date, product_id, sku, product_name, category, product_status,
		on_hand, committed, available, unit_cost, selling_price,
		units_90d, revenue_30d, orders_30d, unique_customers_30d,
		avg_unit_price, avg_daily_sales,
		facebook_spend, facebook_impressions, facebook_clicks,
		facebook_attributed_revenue, facebook_attributed_units,
		facebook_revenue_7d, facebook_units_7d, facebook_roas,
		klaviyo_recipients, klaviyo_opens, klaviyo_clicks, klaviyo_open_rate,
		klaviyo_attributed_revenue, klaviyo_attributed_units,
		klaviyo_revenue_3d, klaviyo_units_3d,
		total_marketing_spend, total_attributed_revenue, overall_roas,
		cost_per_acquisition,
		profit_margin_pct, profit_per_unit, inventory_value,
		days_of_stock_remaining, revenue_at_risk, recommended_order_quantity,
		monthly_revenue_rank, seasonality_factor,
		reorder_point, reorder_quantity, min_stock_level, max_stock_level,
		lead_time_days, safety_stock_days,
		reorder_urgency, overstock_risk, abc_classification, demand_level,
		inventory_data_status, marketing_data_status, exported_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12, $13, $14, $15,
		$16, $17,
		$18, $19, $20,
		$21, $22,
		$23, $24, $25,
		$26, $27, $28, $29,
		$30, $31,
		$32, $33,
		$34, $35, $36,
		$37,
		$38, $39, $40,
		$41, $42, $43,
		$44, $45,
		$46, $47, $48, $49,
		$50, $51,
		$52, $53, $54, $55,
		$56, $57, $58
	)`

// ReplaceDay atomically swaps the output rows for a date.
func (w *RecordWriter) ReplaceDay(ctx context.Context, date time.Time, records []domain.UnifiedPerformanceRecord) error {
	start := time.Now()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = func() error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM product_performance WHERE date = $1", date)
		if err != nil {
			return fmt.Errorf("failed to clear existing rows: %w", err)
		}
		deleted, _ := res.RowsAffected()

		stmt, err := tx.PrepareContext(ctx, insertRecordQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i := range records {
			r := &records[i]
			_, err := stmt.ExecContext(ctx,
				r.Date, r.ProductID, r.SKU, r.Name, r.Category, r.Status,
				r.OnHand, r.Committed, r.Available, r.UnitCost, r.SellingPrice,
				r.Units90d, r.Revenue30d, r.Orders30d, r.UniqueCustomers30d,
				r.AvgUnitPrice, r.AvgDailySales,
				r.FacebookSpend, r.FacebookImpressions, r.FacebookClicks,
				r.FacebookAttributedRevenue, r.FacebookAttributedUnits,
				r.FacebookRevenue7d, r.FacebookUnits7d, r.FacebookROAS,
				r.KlaviyoRecipients, r.KlaviyoOpens, r.KlaviyoClicks, r.KlaviyoOpenRate,
				r.KlaviyoAttributedRevenue, r.KlaviyoAttributedUnits,
				r.KlaviyoRevenue3d, r.KlaviyoUnits3d,
				r.TotalMarketingSpend, r.TotalAttributedRevenue, r.OverallROAS,
				r.CostPerAcquisition,
				r.ProfitMarginPct, r.ProfitPerUnit, r.InventoryValue,
				r.DaysOfStockRemaining, r.RevenueAtRisk, r.RecommendedOrderQty,
				r.MonthlyRevenueRank, r.SeasonalityFactor,
				r.ReorderPoint, r.ReorderQuantity, r.MinStockLevel, r.MaxStockLevel,
				r.LeadTimeDays, r.SafetyStockDays,
				r.ReorderUrgency, r.OverstockRisk, r.ABCClassification, r.DemandLevel,
				r.InventoryDataStatus, r.MarketingDataStatus, r.ExportedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert record for product %s: %w", r.ProductID, err)
			}
		}

		log.Info().
			Str("date", date.Format("2006-01-02")).
			Int64("deleted", deleted).
			Int("inserted", len(records)).
			Msg("Replaced daily performance rows")
		return nil
	}()
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Int("records", len(records)).
		Msg("Daily write committed")
	return nil
}
