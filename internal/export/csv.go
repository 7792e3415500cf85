package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/andresuchdata/shopmetrics/internal/engine"
)

// recordHeaders is the fixed column order of the daily export. Downstream
// spreadsheet consumers key on position, so new columns append only.
var recordHeaders = []string{
	"date", "product_id", "sku", "product_name", "category", "product_status",
	"on_hand", "committed", "available", "unit_cost", "selling_price",
	"units_90d", "revenue_30d", "orders_30d", "unique_customers_30d",
	"avg_unit_price", "avg_daily_sales",
	"facebook_spend", "facebook_impressions", "facebook_clicks",
	"facebook_attributed_revenue", "facebook_attributed_units",
	"facebook_revenue_7d", "facebook_units_7d", "facebook_roas",
	"klaviyo_recipients", "klaviyo_opens", "klaviyo_clicks", "klaviyo_open_rate",
	"klaviyo_attributed_revenue", "klaviyo_attributed_units",
	"klaviyo_revenue_3d", "klaviyo_units_3d",
	"total_marketing_spend", "total_attributed_revenue", "overall_roas",
	"cost_per_acquisition",
	"profit_margin_pct", "profit_per_unit", "inventory_value",
	"days_of_stock_remaining", "revenue_at_risk", "recommended_order_quantity",
	"monthly_revenue_rank", "seasonality_factor",
	"reorder_point", "reorder_quantity", "min_stock_level", "max_stock_level",
	"lead_time_days", "safety_stock_days",
	"reorder_urgency", "overstock_risk", "abc_classification", "demand_level",
	"inventory_data_status", "marketing_data_status", "exported_at",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func recordRow(r *domain.UnifiedPerformanceRecord) []string {
	return []string{
		r.Date.Format("2006-01-02"), r.ProductID, r.SKU, r.Name, r.Category, r.Status,
		formatFloat(r.OnHand), formatFloat(r.Committed), formatFloat(r.Available),
		formatFloat(r.UnitCost), formatFloat(r.SellingPrice),
		formatFloat(r.Units90d), formatFloat(r.Revenue30d),
		strconv.Itoa(r.Orders30d), strconv.Itoa(r.UniqueCustomers30d),
		formatFloat(r.AvgUnitPrice), formatFloat(r.AvgDailySales),
		formatFloat(r.FacebookSpend), formatFloat(r.FacebookImpressions), formatFloat(r.FacebookClicks),
		formatFloat(r.FacebookAttributedRevenue), formatFloat(r.FacebookAttributedUnits),
		formatFloat(r.FacebookRevenue7d), formatFloat(r.FacebookUnits7d), formatFloat(r.FacebookROAS),
		formatFloat(r.KlaviyoRecipients), formatFloat(r.KlaviyoOpens), formatFloat(r.KlaviyoClicks),
		formatFloat(r.KlaviyoOpenRate),
		formatFloat(r.KlaviyoAttributedRevenue), formatFloat(r.KlaviyoAttributedUnits),
		formatFloat(r.KlaviyoRevenue3d), formatFloat(r.KlaviyoUnits3d),
		formatFloat(r.TotalMarketingSpend), formatFloat(r.TotalAttributedRevenue), formatFloat(r.OverallROAS),
		formatFloat(r.CostPerAcquisition),
		formatFloat(r.ProfitMarginPct), formatFloat(r.ProfitPerUnit), formatFloat(r.InventoryValue),
		formatFloat(r.DaysOfStockRemaining), formatFloat(r.RevenueAtRisk), formatFloat(r.RecommendedOrderQty),
		formatFloat(r.MonthlyRevenueRank), formatFloat(r.SeasonalityFactor),
		formatFloat(r.ReorderPoint), formatFloat(r.ReorderQuantity),
		formatFloat(r.MinStockLevel), formatFloat(r.MaxStockLevel),
		formatFloat(r.LeadTimeDays), formatFloat(r.SafetyStockDays),
		r.ReorderUrgency, r.OverstockRisk, r.ABCClassification, r.DemandLevel,
		r.InventoryDataStatus, r.MarketingDataStatus,
		r.ExportedAt.Format(time.RFC3339),
	}
}

// WriteRecordsCSV writes the unified records to path in priority order.
func WriteRecordsCSV(path string, records []domain.UnifiedPerformanceRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(recordHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range records {
		if err := writer.Write(recordRow(&records[i])); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteQualityCSV writes the data-quality violations collected during a run.
func WriteQualityCSV(path string, report *engine.QualityReport) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create quality report file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"source", "kind", "product_id", "value", "detail"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if report != nil {
		for _, v := range report.Violations {
			row := []string{v.Source, v.Kind, v.ProductID, formatFloat(v.Value), v.Detail}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write violation: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportDay writes the daily record export and quality report into outputDir
// and returns the two paths.
func ExportDay(outputDir string, result *engine.Result) (string, string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output dir: %w", err)
	}

	prefix := result.Date.Format("20060102")
	recordsPath := filepath.Join(outputDir, fmt.Sprintf("%s_product_performance.csv", prefix))
	qualityPath := filepath.Join(outputDir, fmt.Sprintf("%s_quality_report.csv", prefix))

	if err := WriteRecordsCSV(recordsPath, result.Records); err != nil {
		return "", "", err
	}
	if err := WriteQualityCSV(qualityPath, result.Quality); err != nil {
		return "", "", err
	}

	return recordsPath, qualityPath, nil
}
