package domain

import "time"

// Product is a catalog entry from the commerce platform. It is the canonical
// join key for every other source.
type Product struct {
	ProductID string    `json:"product_id" db:"product_id"`
	SKU       string    `json:"sku" db:"sku"`
	Name      string    `json:"name" db:"product_name"`
	Category  string    `json:"category" db:"category"`
	Status    string    `json:"status" db:"product_status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// InventoryLevel is one variant-level inventory row from the commerce
// platform snapshot. A product can have several variants, each with its own
// inventory item; the engine rolls them up per product.
type InventoryLevel struct {
	ProductID    string  `json:"product_id"`
	VariantID    string  `json:"variant_id"`
	OnHand       float64 `json:"on_hand"`
	Committed    float64 `json:"committed"`
	UnitCost     float64 `json:"unit_cost"`
	SellingPrice float64 `json:"selling_price"`
}

// InventorySnapshot is the per-product rollup of InventoryLevel rows.
type InventorySnapshot struct {
	ProductID    string  `json:"product_id"`
	OnHand       float64 `json:"on_hand"`
	Committed    float64 `json:"committed"`
	Available    float64 `json:"available"`
	UnitCost     float64 `json:"unit_cost"`
	SellingPrice float64 `json:"selling_price"`
}

// OrderLineFact is one normalized order line from the commerce platform.
type OrderLineFact struct {
	OrderID         string    `json:"order_id"`
	ProductID       string    `json:"product_id"`
	SKU             string    `json:"sku"`
	CustomerID      string    `json:"customer_id"`
	Date            time.Time `json:"date"`
	Quantity        float64   `json:"quantity"`
	UnitPrice       float64   `json:"unit_price"`
	Discount        float64   `json:"discount"`
	Cancelled       bool      `json:"cancelled"`
	FinancialStatus string    `json:"financial_status"`
}

// AdFact is one day of product-level spend/results from the ads platform.
type AdFact struct {
	Date          time.Time `json:"date"`
	ProductID     string    `json:"product_id"`
	Campaign      string    `json:"campaign"`
	Spend         float64   `json:"spend"`
	Impressions   float64   `json:"impressions"`
	Clicks        float64   `json:"clicks"`
	Purchases     float64   `json:"purchases"`
	PurchaseValue float64   `json:"purchase_value"`
	// 7-day click attribution variant of the default window
	PurchaseValue7d float64 `json:"purchase_value_7d"`
	Purchases7d     float64 `json:"purchases_7d"`
}

// EmailFact is one day of product-level send/results from the email platform.
type EmailFact struct {
	Date              time.Time `json:"date"`
	ProductID         string    `json:"product_id"`
	Campaign          string    `json:"campaign"`
	Recipients        float64   `json:"recipients"`
	Opens             float64   `json:"opens"`
	Clicks            float64   `json:"clicks"`
	AttributedRevenue float64   `json:"attributed_revenue"`
	AttributedUnits   float64   `json:"attributed_units"`
	// 3-day attribution variant of the default window
	AttributedRevenue3d float64 `json:"attributed_revenue_3d"`
	AttributedUnits3d   float64 `json:"attributed_units_3d"`
}

// SalesAggregate is the per-product rollup of order-line facts over the two
// lookback windows. The windows are computed independently (90d volume vs
// 30d revenue) and must not be derived from one another.
type SalesAggregate struct {
	ProductID         string  `json:"product_id"`
	UnitsVolumeWindow float64 `json:"units_90d"`
	RevenueWindow     float64 `json:"revenue_30d"`
	OrdersWindow      int     `json:"orders_30d"`
	UniqueCustomers   int     `json:"unique_customers_30d"`
	AvgUnitPrice      float64 `json:"avg_unit_price"`
	AvgDailySales     float64 `json:"avg_daily_sales"`
}

// ChannelAttribution is the per-product marketing rollup for one channel.
// Reach is impressions for ads and recipients for email; Engagements is
// clicks for ads and opens for email.
type ChannelAttribution struct {
	ProductID         string  `json:"product_id"`
	Channel           string  `json:"channel"`
	Spend             float64 `json:"spend"`
	Reach             float64 `json:"reach"`
	Engagements       float64 `json:"engagements"`
	Clicks            float64 `json:"clicks"`
	AttributedRevenue float64 `json:"attributed_revenue"`
	AttributedUnits   float64 `json:"attributed_units"`
	SecondaryRevenue  float64 `json:"secondary_revenue"`
	SecondaryUnits    float64 `json:"secondary_units"`
}

// Data source status values stamped onto each output record.
const (
	DataStatusOK         = "ok"
	InventoryDataMissing = "inventory_data_missing"
	MarketingDataMissing = "marketing_data_missing"
	CategoryUnknown      = "unknown"
)

// Reorder urgency tiers, most severe first.
const (
	UrgencyUrgent = "URGENT"
	UrgencyHigh   = "HIGH"
	UrgencyMedium = "MEDIUM"
	UrgencyLow    = "LOW"
)

// Overstock risk tiers.
const (
	OverstockHigh   = "HIGH"
	OverstockMedium = "MEDIUM"
	OverstockLow    = "LOW"
)

// Demand levels.
const (
	DemandHigh   = "high"
	DemandMedium = "medium"
	DemandLow    = "low"
)

// DaysOfStockUnbounded is the sentinel for products with no recent sales
// velocity; the stock on hand effectively never runs out.
const DaysOfStockUnbounded = 999

// UnifiedPerformanceRecord is the single persisted artifact of the engine:
// one wide row per (date, product), fully recomputed and replaced on rerun.
type UnifiedPerformanceRecord struct {
	Date      time.Time `json:"date" db:"date"`
	ProductID string    `json:"product_id" db:"product_id"`
	SKU       string    `json:"sku" db:"sku"`
	Name      string    `json:"product_name" db:"product_name"`
	Category  string    `json:"category" db:"category"`
	Status    string    `json:"product_status" db:"product_status"`

	// Inventory snapshot
	OnHand       float64 `json:"on_hand" db:"on_hand"`
	Committed    float64 `json:"committed" db:"committed"`
	Available    float64 `json:"available" db:"available"`
	UnitCost     float64 `json:"unit_cost" db:"unit_cost"`
	SellingPrice float64 `json:"selling_price" db:"selling_price"`

	// Sales windows
	Units90d           float64 `json:"units_90d" db:"units_90d"`
	Revenue30d         float64 `json:"revenue_30d" db:"revenue_30d"`
	Orders30d          int     `json:"orders_30d" db:"orders_30d"`
	UniqueCustomers30d int     `json:"unique_customers_30d" db:"unique_customers_30d"`
	AvgUnitPrice       float64 `json:"avg_unit_price" db:"avg_unit_price"`
	AvgDailySales      float64 `json:"avg_daily_sales" db:"avg_daily_sales"`

	// Advertising channel
	FacebookSpend             float64 `json:"facebook_spend" db:"facebook_spend"`
	FacebookImpressions       float64 `json:"facebook_impressions" db:"facebook_impressions"`
	FacebookClicks            float64 `json:"facebook_clicks" db:"facebook_clicks"`
	FacebookAttributedRevenue float64 `json:"facebook_attributed_revenue" db:"facebook_attributed_revenue"`
	FacebookAttributedUnits   float64 `json:"facebook_attributed_units" db:"facebook_attributed_units"`
	FacebookRevenue7d         float64 `json:"facebook_revenue_7d" db:"facebook_revenue_7d"`
	FacebookUnits7d           float64 `json:"facebook_units_7d" db:"facebook_units_7d"`
	FacebookROAS              float64 `json:"facebook_roas" db:"facebook_roas"`

	// Email channel
	KlaviyoRecipients        float64 `json:"klaviyo_recipients" db:"klaviyo_recipients"`
	KlaviyoOpens             float64 `json:"klaviyo_opens" db:"klaviyo_opens"`
	KlaviyoClicks            float64 `json:"klaviyo_clicks" db:"klaviyo_clicks"`
	KlaviyoOpenRate          float64 `json:"klaviyo_open_rate" db:"klaviyo_open_rate"`
	KlaviyoAttributedRevenue float64 `json:"klaviyo_attributed_revenue" db:"klaviyo_attributed_revenue"`
	KlaviyoAttributedUnits   float64 `json:"klaviyo_attributed_units" db:"klaviyo_attributed_units"`
	KlaviyoRevenue3d         float64 `json:"klaviyo_revenue_3d" db:"klaviyo_revenue_3d"`
	KlaviyoUnits3d           float64 `json:"klaviyo_units_3d" db:"klaviyo_units_3d"`

	// Cross-channel derived metrics
	TotalMarketingSpend    float64 `json:"total_marketing_spend" db:"total_marketing_spend"`
	TotalAttributedRevenue float64 `json:"total_attributed_revenue" db:"total_attributed_revenue"`
	OverallROAS            float64 `json:"overall_roas" db:"overall_roas"`
	CostPerAcquisition     float64 `json:"cost_per_acquisition" db:"cost_per_acquisition"`

	// Financial / inventory-health metrics
	ProfitMarginPct      float64 `json:"profit_margin_pct" db:"profit_margin_pct"`
	ProfitPerUnit        float64 `json:"profit_per_unit" db:"profit_per_unit"`
	InventoryValue       float64 `json:"inventory_value" db:"inventory_value"`
	DaysOfStockRemaining float64 `json:"days_of_stock_remaining" db:"days_of_stock_remaining"`
	RevenueAtRisk        float64 `json:"revenue_at_risk" db:"revenue_at_risk"`
	RecommendedOrderQty  float64 `json:"recommended_order_quantity" db:"recommended_order_quantity"`
	MonthlyRevenueRank   float64 `json:"monthly_revenue_rank" db:"monthly_revenue_rank"`
	SeasonalityFactor    float64 `json:"seasonality_factor" db:"seasonality_factor"`

	// Policy inputs applied to this record
	ReorderPoint    float64 `json:"reorder_point" db:"reorder_point"`
	ReorderQuantity float64 `json:"reorder_quantity" db:"reorder_quantity"`
	MinStockLevel   float64 `json:"min_stock_level" db:"min_stock_level"`
	MaxStockLevel   float64 `json:"max_stock_level" db:"max_stock_level"`
	LeadTimeDays    float64 `json:"lead_time_days" db:"lead_time_days"`
	SafetyStockDays float64 `json:"safety_stock_days" db:"safety_stock_days"`

	// Classifications
	ReorderUrgency    string `json:"reorder_urgency" db:"reorder_urgency"`
	OverstockRisk     string `json:"overstock_risk" db:"overstock_risk"`
	ABCClassification string `json:"abc_classification" db:"abc_classification"`
	DemandLevel       string `json:"demand_level" db:"demand_level"`

	// Data-quality flags
	InventoryDataStatus string `json:"inventory_data_status" db:"inventory_data_status"`
	MarketingDataStatus string `json:"marketing_data_status" db:"marketing_data_status"`

	ExportedAt time.Time `json:"exported_at" db:"exported_at"`
}

// PerformanceFilter narrows read queries over the daily output.
type PerformanceFilter struct {
	Date       string   `json:"date"`
	Urgency    string   `json:"urgency"`
	Categories []string `json:"categories"`
	SKUs       []string `json:"skus"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

// UrgencySummary is one bucket of the daily summary.
type UrgencySummary struct {
	Urgency string `json:"urgency" db:"reorder_urgency"`
	Count   int    `json:"count" db:"count"`
}

// RiskSummary is one overstock-risk bucket of the daily summary.
type RiskSummary struct {
	Risk  string `json:"risk" db:"overstock_risk"`
	Count int    `json:"count" db:"count"`
}

// ClassSummary is one ABC bucket of the daily summary.
type ClassSummary struct {
	Class   string  `json:"class" db:"abc_classification"`
	Count   int     `json:"count" db:"count"`
	Revenue float64 `json:"revenue" db:"revenue"`
}

// PerformanceSummary aggregates the daily output for dashboard consumers.
type PerformanceSummary struct {
	Date          string           `json:"date"`
	TotalProducts int              `json:"total_products"`
	TotalSpend    float64          `json:"total_spend"`
	TotalRevenue  float64          `json:"total_revenue"`
	RevenueAtRisk float64          `json:"revenue_at_risk"`
	ByUrgency     []UrgencySummary `json:"by_urgency"`
	ByRisk        []RiskSummary    `json:"by_risk"`
	ByClass       []ClassSummary   `json:"by_class"`
}
