package engine

import (
	"testing"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/stretchr/testify/assert"
)

var aggNow = time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return aggNow.AddDate(0, 0, -n)
}

func TestAggregateSalesIndependentWindows(t *testing.T) {
	orders := []domain.OrderLineFact{
		// Inside both windows.
		{OrderID: "o1", ProductID: "p1", CustomerID: "c1", Date: daysAgo(5), Quantity: 2, UnitPrice: 10},
		// Inside the 90d volume window only.
		{OrderID: "o2", ProductID: "p1", CustomerID: "c2", Date: daysAgo(60), Quantity: 3, UnitPrice: 10},
		// Outside both.
		{OrderID: "o3", ProductID: "p1", CustomerID: "c3", Date: daysAgo(120), Quantity: 100, UnitPrice: 10},
	}

	aggs := AggregateSales(orders, aggNow, DefaultConfig())
	agg := aggs["p1"]

	assert.Equal(t, 5.0, agg.UnitsVolumeWindow)
	assert.Equal(t, 20.0, agg.RevenueWindow)
	assert.Equal(t, 1, agg.OrdersWindow)
	assert.Equal(t, 1, agg.UniqueCustomers)
}

func TestAggregateSalesDiscountAndAvgPrice(t *testing.T) {
	orders := []domain.OrderLineFact{
		{OrderID: "o1", ProductID: "p1", CustomerID: "c1", Date: daysAgo(3), Quantity: 4, UnitPrice: 25, Discount: 10},
	}

	agg := AggregateSales(orders, aggNow, DefaultConfig())["p1"]

	assert.Equal(t, 90.0, agg.RevenueWindow)
	assert.Equal(t, 22.5, agg.AvgUnitPrice)
}

func TestAggregateSalesDistinctOrdersAndCustomers(t *testing.T) {
	orders := []domain.OrderLineFact{
		{OrderID: "o1", ProductID: "p1", CustomerID: "c1", Date: daysAgo(1), Quantity: 1, UnitPrice: 10},
		{OrderID: "o1", ProductID: "p1", CustomerID: "c1", Date: daysAgo(1), Quantity: 2, UnitPrice: 10},
		{OrderID: "o2", ProductID: "p1", CustomerID: "c1", Date: daysAgo(2), Quantity: 1, UnitPrice: 10},
	}

	agg := AggregateSales(orders, aggNow, DefaultConfig())["p1"]

	// Two lines of the same order count once; the repeat customer counts once.
	assert.Equal(t, 2, agg.OrdersWindow)
	assert.Equal(t, 1, agg.UniqueCustomers)
	assert.Equal(t, 4.0, agg.UnitsVolumeWindow)
}

func TestAggregateSalesAvgDailySales(t *testing.T) {
	orders := []domain.OrderLineFact{
		{OrderID: "o1", ProductID: "p1", CustomerID: "c1", Date: daysAgo(10), Quantity: 45, UnitPrice: 10},
	}

	agg := AggregateSales(orders, aggNow, DefaultConfig())["p1"]

	assert.Equal(t, 0.5, agg.AvgDailySales)
}

func TestAggregateSalesWindowBoundary(t *testing.T) {
	cfg := DefaultConfig()
	orders := []domain.OrderLineFact{
		// Exactly at the window start is included, exactly at now is not.
		{OrderID: "o1", ProductID: "p1", Date: daysAgo(cfg.RevenueWindowDays), Quantity: 1, UnitPrice: 10},
		{OrderID: "o2", ProductID: "p1", Date: aggNow, Quantity: 1, UnitPrice: 10},
	}

	agg := AggregateSales(orders, aggNow, cfg)["p1"]
	assert.Equal(t, 10.0, agg.RevenueWindow)
}

func TestAggregateAds(t *testing.T) {
	ads := []domain.AdFact{
		{ProductID: "p1", Date: daysAgo(2), Spend: 50, Impressions: 1000, Clicks: 30, Purchases: 4, PurchaseValue: 200, PurchaseValue7d: 260, Purchases7d: 5},
		{ProductID: "p1", Date: daysAgo(10), Spend: 25, Impressions: 500, Clicks: 10, Purchases: 1, PurchaseValue: 50},
		{ProductID: "p1", Date: daysAgo(45), Spend: 999, PurchaseValue: 999},
	}

	attr := AggregateAds(ads, aggNow, DefaultConfig())["p1"]

	assert.Equal(t, "facebook", attr.Channel)
	assert.Equal(t, 75.0, attr.Spend)
	assert.Equal(t, 1500.0, attr.Reach)
	assert.Equal(t, 40.0, attr.Clicks)
	assert.Equal(t, 250.0, attr.AttributedRevenue)
	assert.Equal(t, 5.0, attr.AttributedUnits)
	assert.Equal(t, 260.0, attr.SecondaryRevenue)
}

func TestAggregateEmailCarriesNoSpend(t *testing.T) {
	sends := []domain.EmailFact{
		{ProductID: "p1", Date: daysAgo(1), Recipients: 2000, Opens: 800, Clicks: 120, AttributedRevenue: 300, AttributedUnits: 6, AttributedRevenue3d: 350, AttributedUnits3d: 7},
	}

	attr := AggregateEmail(sends, aggNow, DefaultConfig())["p1"]

	assert.Equal(t, "klaviyo", attr.Channel)
	assert.Equal(t, 0.0, attr.Spend)
	assert.Equal(t, 2000.0, attr.Reach)
	assert.Equal(t, 800.0, attr.Engagements)
	assert.Equal(t, 300.0, attr.AttributedRevenue)
	assert.Equal(t, 350.0, attr.SecondaryRevenue)
}
