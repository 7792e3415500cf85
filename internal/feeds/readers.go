package feeds

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/andresuchdata/shopmetrics/internal/engine"
)

// Feed readers parse the flat fact CSVs dropped by the upstream extractors.
// Parsing is deliberately tolerant: numeric fields that fail to parse
// coerce to 0 so every catalog product stays computable downstream, and
// column lookup is insensitive to case, spacing and separators.

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

type csvTable struct {
	header []string
	rows   [][]string
	index  map[string]int
}

func readCSV(path string) (*csvTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeColumnName(h)] = i
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		rows = append(rows, record)
	}

	return &csvTable{header: header, rows: rows, index: index}, nil
}

func (t *csvTable) col(names ...string) int {
	for _, name := range names {
		if i, ok := t.index[normalizeColumnName(name)]; ok {
			return i
		}
	}
	return -1
}

func get(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseFloat(record []string, idx int) float64 {
	v := get(record, idx)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", "")
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func parseBool(record []string, idx int) bool {
	switch strings.ToLower(get(record, idx)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func parseDate(record []string, idx int) time.Time {
	v := get(record, idx)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "20060102"} {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// ReadCatalog parses the product catalog feed.
func ReadCatalog(path string) ([]domain.Product, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	idxID := t.col("product_id", "id")
	idxSKU := t.col("sku")
	idxName := t.col("name", "title", "product name")
	idxCategory := t.col("category", "product_type")
	idxStatus := t.col("status")
	idxCreated := t.col("created_at")
	idxUpdated := t.col("updated_at")

	out := make([]domain.Product, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, domain.Product{
			ProductID: get(r, idxID),
			SKU:       get(r, idxSKU),
			Name:      get(r, idxName),
			Category:  get(r, idxCategory),
			Status:    get(r, idxStatus),
			CreatedAt: parseDate(r, idxCreated),
			UpdatedAt: parseDate(r, idxUpdated),
		})
	}
	return out, nil
}

// ReadInventory parses the variant-level inventory snapshot feed.
func ReadInventory(path string) ([]domain.InventoryLevel, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	idxProduct := t.col("product_id")
	idxVariant := t.col("variant_id")
	idxOnHand := t.col("on_hand", "on_hand_quantity", "available_quantity")
	idxCommitted := t.col("committed", "committed_quantity")
	idxCost := t.col("unit_cost", "cost")
	idxPrice := t.col("selling_price", "price")

	out := make([]domain.InventoryLevel, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, domain.InventoryLevel{
			ProductID:    get(r, idxProduct),
			VariantID:    get(r, idxVariant),
			OnHand:       parseFloat(r, idxOnHand),
			Committed:    parseFloat(r, idxCommitted),
			UnitCost:     parseFloat(r, idxCost),
			SellingPrice: parseFloat(r, idxPrice),
		})
	}
	return out, nil
}

// ReadOrderLines parses the order-line fact feed.
func ReadOrderLines(path string) ([]domain.OrderLineFact, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	idxOrder := t.col("order_id")
	idxProduct := t.col("product_id")
	idxSKU := t.col("sku")
	idxCustomer := t.col("customer_id")
	idxDate := t.col("date", "created_at")
	idxQty := t.col("quantity", "qty")
	idxPrice := t.col("unit_price", "price")
	idxDiscount := t.col("discount", "total_discount")
	idxCancelled := t.col("cancelled", "cancelled_flag")
	idxFinStatus := t.col("financial_status")

	out := make([]domain.OrderLineFact, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, domain.OrderLineFact{
			OrderID:         get(r, idxOrder),
			ProductID:       get(r, idxProduct),
			SKU:             get(r, idxSKU),
			CustomerID:      get(r, idxCustomer),
			Date:            parseDate(r, idxDate),
			Quantity:        parseFloat(r, idxQty),
			UnitPrice:       parseFloat(r, idxPrice),
			Discount:        parseFloat(r, idxDiscount),
			Cancelled:       parseBool(r, idxCancelled),
			FinancialStatus: get(r, idxFinStatus),
		})
	}
	return out, nil
}

// ReadAdFacts parses the advertising fact feed.
func ReadAdFacts(path string) ([]domain.AdFact, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	idxDate := t.col("date")
	idxProduct := t.col("product_id")
	idxCampaign := t.col("campaign", "campaign_name")
	idxSpend := t.col("spend")
	idxImpr := t.col("impressions")
	idxClicks := t.col("clicks")
	idxPurchases := t.col("purchases")
	idxValue := t.col("purchase_value")
	idxValue7d := t.col("purchase_value_7d")
	idxPurch7d := t.col("purchases_7d")

	out := make([]domain.AdFact, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, domain.AdFact{
			Date:            parseDate(r, idxDate),
			ProductID:       get(r, idxProduct),
			Campaign:        get(r, idxCampaign),
			Spend:           parseFloat(r, idxSpend),
			Impressions:     parseFloat(r, idxImpr),
			Clicks:          parseFloat(r, idxClicks),
			Purchases:       parseFloat(r, idxPurchases),
			PurchaseValue:   parseFloat(r, idxValue),
			PurchaseValue7d: parseFloat(r, idxValue7d),
			Purchases7d:     parseFloat(r, idxPurch7d),
		})
	}
	return out, nil
}

// ReadEmailFacts parses the email fact feed.
func ReadEmailFacts(path string) ([]domain.EmailFact, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	idxDate := t.col("date")
	idxProduct := t.col("product_id")
	idxCampaign := t.col("campaign", "flow", "campaign_name")
	idxRecipients := t.col("recipients")
	idxOpens := t.col("opens")
	idxClicks := t.col("clicks")
	idxRevenue := t.col("attributed_revenue")
	idxUnits := t.col("attributed_units")
	idxRevenue3d := t.col("attributed_revenue_3d")
	idxUnits3d := t.col("attributed_units_3d")

	out := make([]domain.EmailFact, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, domain.EmailFact{
			Date:                parseDate(r, idxDate),
			ProductID:           get(r, idxProduct),
			Campaign:            get(r, idxCampaign),
			Recipients:          parseFloat(r, idxRecipients),
			Opens:               parseFloat(r, idxOpens),
			Clicks:              parseFloat(r, idxClicks),
			AttributedRevenue:   parseFloat(r, idxRevenue),
			AttributedUnits:     parseFloat(r, idxUnits),
			AttributedRevenue3d: parseFloat(r, idxRevenue3d),
			AttributedUnits3d:   parseFloat(r, idxUnits3d),
		})
	}
	return out, nil
}

// LoadFacts reads every fact feed for a snapshot date from dataDir.
// Feeds are dropped as <YYYYMMDD>_<source>.csv; a missing marketing or
// inventory feed is not an error (the builder fills and flags it), but a
// missing catalog feed aborts since the catalog anchors every join.
func LoadFacts(dataDir string, date time.Time) (engine.Facts, error) {
	prefix := date.Format("20060102")
	pathFor := func(source string) string {
		dated := filepath.Join(dataDir, fmt.Sprintf("%s_%s.csv", prefix, source))
		if _, err := os.Stat(dated); err == nil {
			return dated
		}
		return filepath.Join(dataDir, source+".csv")
	}

	var facts engine.Facts
	var err error

	catalogPath := pathFor("catalog")
	if facts.Catalog, err = ReadCatalog(catalogPath); err != nil {
		return facts, fmt.Errorf("catalog feed %s: %w", catalogPath, err)
	}

	if facts.Inventory, err = readOptional(pathFor("inventory"), ReadInventory); err != nil {
		return facts, err
	}
	if facts.Orders, err = readOptional(pathFor("orders"), ReadOrderLines); err != nil {
		return facts, err
	}
	if facts.Ads, err = readOptional(pathFor("ads"), ReadAdFacts); err != nil {
		return facts, err
	}
	if facts.Email, err = readOptional(pathFor("email"), ReadEmailFacts); err != nil {
		return facts, err
	}

	return facts, nil
}

func readOptional[T any](path string, read func(string) ([]T, error)) ([]T, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	rows, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", path, err)
	}
	return rows, nil
}
