package feeds

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFeed(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadCatalogTolerantColumns(t *testing.T) {
	// Header casing and separators should not matter.
	path := writeFeed(t, t.TempDir(), "catalog.csv",
		"Product ID,SKU,Name,Category,Status\n"+
			"p1,SKU-1,Serum,Skincare,active\n"+
			"p2,SKU-2,Cream,Skincare,archived\n")

	products, err := ReadCatalog(path)
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ProductID)
	assert.Equal(t, "SKU-1", products[0].SKU)
	assert.Equal(t, "Skincare", products[0].Category)
	assert.Equal(t, "archived", products[1].Status)
}

func TestReadOrderLinesCoercesMalformedNumbers(t *testing.T) {
	path := writeFeed(t, t.TempDir(), "orders.csv",
		"order_id,product_id,sku,customer_id,date,quantity,unit_price,discount,cancelled,financial_status\n"+
			"o1,p1,s1,c1,2026-08-25,2,19.99,0,false,paid\n"+
			"o2,p1,s1,c2,2026-08-26,abc,xyz,,true,paid\n")

	lines, err := ReadOrderLines(path)
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.Equal(t, 2.0, lines[0].Quantity)
	assert.Equal(t, 19.99, lines[0].UnitPrice)
	assert.False(t, lines[0].Cancelled)

	// Malformed numerics coerce to zero instead of dropping the row.
	assert.Equal(t, 0.0, lines[1].Quantity)
	assert.Equal(t, 0.0, lines[1].UnitPrice)
	assert.True(t, lines[1].Cancelled)
}

func TestReadAdFacts(t *testing.T) {
	path := writeFeed(t, t.TempDir(), "ads.csv",
		"date,product_id,campaign,spend,impressions,clicks,purchases,purchase_value,purchase_value_7d,purchases_7d\n"+
			"2026-08-29,p1,summer,12.50,1000,30,2,80,95,3\n")

	ads, err := ReadAdFacts(path)
	require.NoError(t, err)

	require.Len(t, ads, 1)
	assert.Equal(t, 12.5, ads[0].Spend)
	assert.Equal(t, 95.0, ads[0].PurchaseValue7d)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), ads[0].Date)
}

func TestReadInventoryAlternateHeaders(t *testing.T) {
	path := writeFeed(t, t.TempDir(), "inventory.csv",
		"product_id,variant_id,on_hand_quantity,committed_quantity,cost,price\n"+
			"p1,v1,\"1,250\",10,4.5,12\n")

	levels, err := ReadInventory(path)
	require.NoError(t, err)

	require.Len(t, levels, 1)
	// Thousands separators are stripped before parsing.
	assert.Equal(t, 1250.0, levels[0].OnHand)
	assert.Equal(t, 4.5, levels[0].UnitCost)
}

func TestLoadFactsDatePrefixedFiles(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	writeFeed(t, dir, "20260830_catalog.csv",
		"product_id,sku,name,category,status\np1,SKU-1,Serum,skincare,active\n")
	writeFeed(t, dir, "20260830_orders.csv",
		"order_id,product_id,sku,customer_id,date,quantity,unit_price,discount,cancelled,financial_status\n"+
			"o1,p1,SKU-1,c1,2026-08-28,1,10,0,false,paid\n")

	facts, err := LoadFacts(dir, date)
	require.NoError(t, err)

	assert.Len(t, facts.Catalog, 1)
	assert.Len(t, facts.Orders, 1)
	// Missing optional feeds come back empty, not as errors.
	assert.Empty(t, facts.Inventory)
	assert.Empty(t, facts.Ads)
	assert.Empty(t, facts.Email)
}

func TestLoadFactsRequiresCatalog(t *testing.T) {
	_, err := LoadFacts(t.TempDir(), time.Now())
	assert.Error(t, err)
}
