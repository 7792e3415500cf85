package engine

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFacts(date time.Time) Facts {
	return Facts{
		Catalog: []domain.Product{
			{ProductID: "p-low", SKU: "SKU-LOW", Name: "Low stock serum", Category: "skincare", Status: "active"},
			{ProductID: "p-ok", SKU: "SKU-OK", Name: "Healthy moisturizer", Category: "skincare", Status: "active"},
			{ProductID: "p-dead", SKU: "SKU-DEAD", Name: "No activity", Category: "apparel", Status: "active"},
			{ProductID: "p-gone", SKU: "SKU-GONE", Name: "Archived", Category: "apparel", Status: "archived"},
		},
		Inventory: []domain.InventoryLevel{
			{ProductID: "p-low", VariantID: "v1", OnHand: 10, Committed: 2, UnitCost: 5, SellingPrice: 20},
			{ProductID: "p-ok", VariantID: "v1", OnHand: 300, Committed: 10, UnitCost: 8, SellingPrice: 15},
		},
		Orders: []domain.OrderLineFact{
			{OrderID: "o1", ProductID: "p-low", SKU: "SKU-LOW", CustomerID: "c1", Date: date.AddDate(0, 0, -3), Quantity: 5, UnitPrice: 20, FinancialStatus: "paid"},
			{OrderID: "o2", ProductID: "p-ok", SKU: "SKU-OK", CustomerID: "c2", Date: date.AddDate(0, 0, -4), Quantity: 2, UnitPrice: 15, FinancialStatus: "paid"},
			// Orphan: sold but missing from the catalog feed.
			{OrderID: "o3", ProductID: "p-orphan", SKU: "SKU-X", CustomerID: "c3", Date: date.AddDate(0, 0, -2), Quantity: 1, UnitPrice: 40, FinancialStatus: "paid"},
		},
		Ads: []domain.AdFact{
			{ProductID: "p-low", Date: date.AddDate(0, 0, -1), Campaign: "ads-1", Spend: 30, Impressions: 5000, Clicks: 150, Purchases: 3, PurchaseValue: 120},
		},
		Email: []domain.EmailFact{
			{ProductID: "p-ok", Date: date.AddDate(0, 0, -1), Campaign: "email-1", Recipients: 1000, Opens: 300, AttributedRevenue: 45, AttributedUnits: 2},
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(DefaultConfig(), testPolicies())
	require.NoError(t, err)
	return eng
}

func TestEngineRejectsInvalidConfiguration(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.Error(t, err)

	broken := testPolicies()
	broken.Default = nil
	_, err = New(DefaultConfig(), broken)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.RevenueWindowDays = 0
	_, err = New(cfg, testPolicies())
	assert.Error(t, err)
}

func TestEngineRunProducesOneRecordPerActiveProduct(t *testing.T) {
	eng := newTestEngine(t)
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	result, err := eng.Run(context.Background(), date, testFacts(date))
	require.NoError(t, err)

	byID := make(map[string]domain.UnifiedPerformanceRecord)
	for _, rec := range result.Records {
		assert.Equal(t, date, rec.Date)
		byID[rec.ProductID] = rec
	}

	// Active products with activity plus the orphan; the idle and archived
	// products never reach the output.
	assert.Contains(t, byID, "p-low")
	assert.Contains(t, byID, "p-ok")
	assert.Contains(t, byID, "p-orphan")
	assert.NotContains(t, byID, "p-dead")
	assert.NotContains(t, byID, "p-gone")
}

func TestEngineRunJoinsAllSources(t *testing.T) {
	eng := newTestEngine(t)
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	result, err := eng.Run(context.Background(), date, testFacts(date))
	require.NoError(t, err)

	var low domain.UnifiedPerformanceRecord
	for _, rec := range result.Records {
		if rec.ProductID == "p-low" {
			low = rec
		}
	}

	assert.Equal(t, 8.0, low.Available)
	assert.Equal(t, 100.0, low.Revenue30d)
	assert.Equal(t, 30.0, low.FacebookSpend)
	assert.Equal(t, 120.0, low.FacebookAttributedRevenue)
	assert.Equal(t, 4.0, low.FacebookROAS)
	assert.Equal(t, domain.DataStatusOK, low.InventoryDataStatus)
	assert.Equal(t, domain.DataStatusOK, low.MarketingDataStatus)
	// 8 available against a skincare reorder point of 40.
	assert.Equal(t, domain.UrgencyUrgent, low.ReorderUrgency)
}

func TestEngineRunFlagsOrphanProduct(t *testing.T) {
	eng := newTestEngine(t)
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	result, err := eng.Run(context.Background(), date, testFacts(date))
	require.NoError(t, err)

	var orphan domain.UnifiedPerformanceRecord
	for _, rec := range result.Records {
		if rec.ProductID == "p-orphan" {
			orphan = rec
		}
	}

	assert.Equal(t, "missing", orphan.SKU)
	assert.Equal(t, domain.CategoryUnknown, orphan.Category)
	assert.Equal(t, domain.InventoryDataMissing, orphan.InventoryDataStatus)
	assert.Equal(t, domain.MarketingDataMissing, orphan.MarketingDataStatus)
	assert.Equal(t, 40.0, orphan.Revenue30d)
	// Unknown categories classify under the default policy.
	assert.Equal(t, 20.0, orphan.ReorderPoint)
}

func TestEngineRunOrdering(t *testing.T) {
	eng := newTestEngine(t)
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	result, err := eng.Run(context.Background(), date, testFacts(date))
	require.NoError(t, err)
	require.NotEmpty(t, result.Records)

	for i := 1; i < len(result.Records); i++ {
		prev, cur := result.Records[i-1], result.Records[i]
		prevSev, curSev := urgencySeverity[prev.ReorderUrgency], urgencySeverity[cur.ReorderUrgency]
		assert.LessOrEqual(t, prevSev, curSev)
		if prevSev == curSev {
			assert.GreaterOrEqual(t, prev.Revenue30d, cur.Revenue30d)
		}
	}
}

func TestEngineRunIsIdempotent(t *testing.T) {
	eng := newTestEngine(t)
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	facts := testFacts(date)

	first, err := eng.Run(context.Background(), date, facts)
	require.NoError(t, err)
	second, err := eng.Run(context.Background(), date, facts)
	require.NoError(t, err)

	require.Equal(t, len(first.Records), len(second.Records))
	for i := range first.Records {
		a, b := first.Records[i], second.Records[i]
		a.ExportedAt, b.ExportedAt = time.Time{}, time.Time{}
		assert.Equal(t, a, b)
	}
	assert.Equal(t, first.Quality.Count(), second.Quality.Count())
}

func TestEngineRunCollectsViolations(t *testing.T) {
	eng := newTestEngine(t)
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	facts := testFacts(date)
	facts.Ads = append(facts.Ads, domain.AdFact{
		ProductID: "p-low", Date: date.AddDate(0, 0, -1), Campaign: "broken", Spend: -10,
	})
	facts.Inventory = append(facts.Inventory, domain.InventoryLevel{
		ProductID: "p-solo", VariantID: "v9", OnHand: 1, Committed: 50,
	})

	result, err := eng.Run(context.Background(), date, facts)
	require.NoError(t, err)

	counts := result.Quality.CountsBySource()
	assert.Equal(t, 1, counts["ads"])
	assert.Equal(t, 1, counts["inventory"])

	// The violating ad row is excluded from spend sums.
	for _, rec := range result.Records {
		if rec.ProductID == "p-low" {
			assert.Equal(t, 30.0, rec.FacebookSpend)
		}
	}
}
