package engine

import (
	"math"

	"github.com/andresuchdata/shopmetrics/internal/domain"
)

// Calculator derives the financial and inventory-health metrics for one
// product and applies the rule classifier. It is pure and stateless per
// record, so the builder can fan products out across goroutines freely.
type Calculator struct {
	policies *domain.PolicySet
	cfg      Config
}

// NewCalculator creates a calculator bound to a validated policy set.
func NewCalculator(policies *domain.PolicySet, cfg Config) *Calculator {
	return &Calculator{policies: policies, cfg: cfg}
}

// RecordInputs is the joined view of one product across every source,
// assembled by the builder. Missing sources arrive zero-valued with their
// Has flag unset.
type RecordInputs struct {
	Product      domain.Product
	Inventory    domain.InventorySnapshot
	HasInventory bool
	Sales        domain.SalesAggregate
	Ads          domain.ChannelAttribution
	Email        domain.ChannelAttribution
	HasMarketing bool
	RevenueRank  float64
	Month        int
}

// Calculate computes every derived metric and classification for a product.
// Every ratio is defined at a zero denominator: margin and ROAS collapse to
// 0, days of stock to the unbounded sentinel. Nothing here can divide by
// zero or produce NaN.
func (c *Calculator) Calculate(in RecordInputs) domain.UnifiedPerformanceRecord {
	inv := in.Inventory
	sales := in.Sales
	policy := c.policies.Lookup(in.Product.Category)
	seasonality := c.policies.SeasonalityFor(in.Month)

	rec := domain.UnifiedPerformanceRecord{
		ProductID: in.Product.ProductID,
		SKU:       in.Product.SKU,
		Name:      in.Product.Name,
		Category:  in.Product.Category,
		Status:    in.Product.Status,

		OnHand:       inv.OnHand,
		Committed:    inv.Committed,
		Available:    inv.Available,
		UnitCost:     inv.UnitCost,
		SellingPrice: inv.SellingPrice,

		Units90d:           sales.UnitsVolumeWindow,
		Revenue30d:         sales.RevenueWindow,
		Orders30d:          sales.OrdersWindow,
		UniqueCustomers30d: sales.UniqueCustomers,
		AvgUnitPrice:       sales.AvgUnitPrice,
		AvgDailySales:      sales.AvgDailySales,

		FacebookSpend:             in.Ads.Spend,
		FacebookImpressions:       in.Ads.Reach,
		FacebookClicks:            in.Ads.Clicks,
		FacebookAttributedRevenue: in.Ads.AttributedRevenue,
		FacebookAttributedUnits:   in.Ads.AttributedUnits,
		FacebookRevenue7d:         in.Ads.SecondaryRevenue,
		FacebookUnits7d:           in.Ads.SecondaryUnits,

		KlaviyoRecipients:        in.Email.Reach,
		KlaviyoOpens:             in.Email.Engagements,
		KlaviyoClicks:            in.Email.Clicks,
		KlaviyoAttributedRevenue: in.Email.AttributedRevenue,
		KlaviyoAttributedUnits:   in.Email.AttributedUnits,
		KlaviyoRevenue3d:         in.Email.SecondaryRevenue,
		KlaviyoUnits3d:           in.Email.SecondaryUnits,

		MonthlyRevenueRank: in.RevenueRank,
		SeasonalityFactor:  seasonality,

		ReorderPoint:    policy.ReorderPoint,
		ReorderQuantity: policy.ReorderQuantity,
		MinStockLevel:   policy.MinStockLevel,
		MaxStockLevel:   policy.MaxStockLevel,
		LeadTimeDays:    policy.LeadTimeDays,
		SafetyStockDays: float64(c.cfg.SafetyStockDays),
	}

	// 1. Unit economics. Margin is 0 by definition when the price is 0;
	// profit per unit still reflects the sunk cost.
	price, cost := inv.SellingPrice, inv.UnitCost
	if price > 0 {
		rec.ProfitMarginPct = roundFloat((price-cost)/price*100, 2)
	}
	rec.ProfitPerUnit = roundFloat(price-cost, 2)
	rec.InventoryValue = roundFloat(inv.OnHand*cost, 2)

	// 2. Stock runway.
	if sales.AvgDailySales > 0 {
		rec.DaysOfStockRemaining = roundFloat(inv.Available/sales.AvgDailySales, 1)
	} else {
		rec.DaysOfStockRemaining = domain.DaysOfStockUnbounded
	}

	// 3. Marketing efficiency across channels.
	rec.TotalMarketingSpend = roundFloat(in.Ads.Spend+in.Email.Spend, 2)
	rec.TotalAttributedRevenue = roundFloat(in.Ads.AttributedRevenue+in.Email.AttributedRevenue, 2)
	if rec.TotalMarketingSpend > 0 {
		rec.OverallROAS = roundFloat(rec.TotalAttributedRevenue/rec.TotalMarketingSpend, 2)
	}
	if in.Ads.Spend > 0 {
		rec.FacebookROAS = roundFloat(in.Ads.AttributedRevenue/in.Ads.Spend, 2)
	}
	if units := in.Ads.AttributedUnits + in.Email.AttributedUnits; units > 0 {
		rec.CostPerAcquisition = roundFloat(rec.TotalMarketingSpend/units, 2)
	}
	if in.Email.Reach > 0 {
		rec.KlaviyoOpenRate = roundFloat(in.Email.Engagements/in.Email.Reach*100, 2)
	}

	// 4. Stockout exposure inside the replenishment lead time.
	if rec.DaysOfStockRemaining < policy.LeadTimeDays {
		rec.RevenueAtRisk = roundFloat((policy.LeadTimeDays-rec.DaysOfStockRemaining)*sales.AvgDailySales*price, 2)
	}

	// 5. Demand over lead time plus safety buffer, seasonally scaled, net
	// of what is already on hand.
	demand := sales.AvgDailySales * (policy.LeadTimeDays*seasonality + float64(c.cfg.SafetyStockDays))
	rec.RecommendedOrderQty = math.Max(0, math.Round(demand-inv.Available))

	// 6. Classifications.
	rec.ReorderUrgency = ClassifyUrgency(inv.Available, policy.ReorderPoint)
	rec.OverstockRisk = ClassifyOverstock(inv.Available, policy.MaxStockLevel)
	rec.ABCClassification = ClassifyABC(in.RevenueRank)
	rec.DemandLevel = ClassifyDemand(sales.UnitsVolumeWindow, c.policies.Demand)

	// 7. Data-quality flags for the joins that actually matched.
	if in.HasInventory {
		rec.InventoryDataStatus = domain.DataStatusOK
	} else {
		rec.InventoryDataStatus = domain.InventoryDataMissing
	}
	if in.HasMarketing {
		rec.MarketingDataStatus = domain.DataStatusOK
	} else {
		rec.MarketingDataStatus = domain.MarketingDataMissing
	}

	return rec
}
