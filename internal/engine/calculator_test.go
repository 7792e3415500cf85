package engine

import (
	"math"
	"testing"

	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicies() *domain.PolicySet {
	seasonality := make(map[int]float64, 12)
	for m := 1; m <= 12; m++ {
		seasonality[m] = 1.0
	}
	seasonality[11] = 1.4

	return &domain.PolicySet{
		Default: &domain.CategoryPolicy{
			ReorderPoint:    20,
			ReorderQuantity: 50,
			MinStockLevel:   10,
			MaxStockLevel:   200,
			LeadTimeDays:    14,
		},
		Categories: map[string]domain.CategoryPolicy{
			"skincare": {
				ReorderPoint:    40,
				ReorderQuantity: 120,
				MinStockLevel:   20,
				MaxStockLevel:   400,
				LeadTimeDays:    21,
			},
		},
		Seasonality: seasonality,
		Demand:      domain.DemandThresholds{HighMinUnits: 100, MediumMinUnits: 30},
	}
}

func testCalculator(t *testing.T) *Calculator {
	t.Helper()
	policies := testPolicies()
	require.NoError(t, policies.Validate())
	return NewCalculator(policies, DefaultConfig())
}

func TestCalculateZeroPriceProducesFiniteMargin(t *testing.T) {
	calc := testCalculator(t)

	rec := calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p1", Category: "skincare"},
		Inventory:    domain.InventorySnapshot{ProductID: "p1", OnHand: 10, Available: 10, UnitCost: 4, SellingPrice: 0},
		HasInventory: true,
		Month:        6,
	})

	assert.Equal(t, 0.0, rec.ProfitMarginPct)
	assert.Equal(t, -4.0, rec.ProfitPerUnit)
	assert.False(t, math.IsNaN(rec.OverallROAS))
	assert.False(t, math.IsInf(rec.ProfitMarginPct, 0))
}

func TestCalculateMarginAndInventoryValue(t *testing.T) {
	calc := testCalculator(t)

	rec := calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p1", Category: "unlisted"},
		Inventory:    domain.InventorySnapshot{ProductID: "p1", OnHand: 50, Available: 45, UnitCost: 6, SellingPrice: 10},
		HasInventory: true,
		Month:        6,
	})

	assert.Equal(t, 40.0, rec.ProfitMarginPct)
	assert.Equal(t, 4.0, rec.ProfitPerUnit)
	assert.Equal(t, 300.0, rec.InventoryValue)
	// Unlisted categories fall back to the default policy.
	assert.Equal(t, 20.0, rec.ReorderPoint)
}

func TestCalculateDaysOfStockSentinel(t *testing.T) {
	calc := testCalculator(t)

	rec := calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p1"},
		Inventory:    domain.InventorySnapshot{ProductID: "p1", OnHand: 100, Available: 100},
		HasInventory: true,
		Month:        6,
	})

	assert.Equal(t, float64(domain.DaysOfStockUnbounded), rec.DaysOfStockRemaining)
	assert.Equal(t, 0.0, rec.RevenueAtRisk)
}

func TestCalculateDaysOfStock(t *testing.T) {
	calc := testCalculator(t)

	rec := calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p1"},
		Inventory:    domain.InventorySnapshot{ProductID: "p1", OnHand: 60, Available: 60},
		HasInventory: true,
		Sales:        domain.SalesAggregate{ProductID: "p1", AvgDailySales: 4},
		Month:        6,
	})

	assert.Equal(t, 15.0, rec.DaysOfStockRemaining)
}

func TestCalculateMarketingEfficiency(t *testing.T) {
	calc := testCalculator(t)

	rec := calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p1"},
		Ads:          domain.ChannelAttribution{Spend: 200, AttributedRevenue: 800, AttributedUnits: 16, Reach: 10000, Clicks: 300},
		Email:        domain.ChannelAttribution{Reach: 1000, Engagements: 450, AttributedRevenue: 200, AttributedUnits: 4},
		HasMarketing: true,
		Month:        6,
	})

	assert.Equal(t, 200.0, rec.TotalMarketingSpend)
	assert.Equal(t, 1000.0, rec.TotalAttributedRevenue)
	assert.Equal(t, 5.0, rec.OverallROAS)
	assert.Equal(t, 4.0, rec.FacebookROAS)
	assert.Equal(t, 10.0, rec.CostPerAcquisition)
	assert.Equal(t, 45.0, rec.KlaviyoOpenRate)
}

func TestCalculateZeroSpendZeroROAS(t *testing.T) {
	calc := testCalculator(t)

	rec := calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p1"},
		Email:        domain.ChannelAttribution{Reach: 500, AttributedRevenue: 150, AttributedUnits: 3},
		HasMarketing: true,
		Month:        6,
	})

	assert.Equal(t, 0.0, rec.TotalMarketingSpend)
	assert.Equal(t, 0.0, rec.OverallROAS)
	assert.Equal(t, 0.0, rec.FacebookROAS)
	assert.Equal(t, 150.0, rec.TotalAttributedRevenue)
}

func TestCalculateRevenueAtRisk(t *testing.T) {
	calc := testCalculator(t)

	// 20 units at 4/day = 5 days of stock, under the default 14 day lead time.
	rec := calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p1"},
		Inventory:    domain.InventorySnapshot{ProductID: "p1", OnHand: 20, Available: 20, SellingPrice: 25},
		HasInventory: true,
		Sales:        domain.SalesAggregate{ProductID: "p1", AvgDailySales: 4},
		Month:        6,
	})

	assert.Equal(t, 5.0, rec.DaysOfStockRemaining)
	assert.Equal(t, (14.0-5.0)*4*25, rec.RevenueAtRisk)
}

func TestCalculateRecommendedOrderQty(t *testing.T) {
	calc := testCalculator(t)

	// Default policy: lead 14, seasonality 1.4 in November, safety 7 days.
	rec := calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p1"},
		Inventory:    domain.InventorySnapshot{ProductID: "p1", OnHand: 10, Available: 10},
		HasInventory: true,
		Sales:        domain.SalesAggregate{ProductID: "p1", AvgDailySales: 3},
		Month:        11,
	})

	expected := math.Round(3*(14*1.4+7) - 10)
	assert.Equal(t, expected, rec.RecommendedOrderQty)
	assert.Equal(t, 1.4, rec.SeasonalityFactor)
}

func TestCalculateRecommendedOrderQtyNeverNegative(t *testing.T) {
	calc := testCalculator(t)

	rec := calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p1"},
		Inventory:    domain.InventorySnapshot{ProductID: "p1", OnHand: 5000, Available: 5000},
		HasInventory: true,
		Sales:        domain.SalesAggregate{ProductID: "p1", AvgDailySales: 1},
		Month:        6,
	})

	assert.Equal(t, 0.0, rec.RecommendedOrderQty)
}

func TestCalculateUrgencyClassification(t *testing.T) {
	calc := testCalculator(t)

	urgent := calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p1"},
		Inventory:    domain.InventorySnapshot{ProductID: "p1", Available: 5},
		HasInventory: true,
		Month:        6,
	})
	assert.Equal(t, domain.UrgencyUrgent, urgent.ReorderUrgency)

	low := calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p2"},
		Inventory:    domain.InventorySnapshot{ProductID: "p2", Available: 150},
		HasInventory: true,
		Month:        6,
	})
	assert.Equal(t, domain.UrgencyLow, low.ReorderUrgency)
}

func TestCalculateDataStatuses(t *testing.T) {
	calc := testCalculator(t)

	rec := calc.Calculate(RecordInputs{
		Product: domain.Product{ProductID: "p1"},
		Sales:   domain.SalesAggregate{ProductID: "p1", RevenueWindow: 500, OrdersWindow: 5},
		Month:   6,
	})

	assert.Equal(t, domain.InventoryDataMissing, rec.InventoryDataStatus)
	assert.Equal(t, domain.MarketingDataMissing, rec.MarketingDataStatus)

	rec = calc.Calculate(RecordInputs{
		Product:      domain.Product{ProductID: "p1"},
		HasInventory: true,
		HasMarketing: true,
		Month:        6,
	})

	assert.Equal(t, domain.DataStatusOK, rec.InventoryDataStatus)
	assert.Equal(t, domain.DataStatusOK, rec.MarketingDataStatus)
}
