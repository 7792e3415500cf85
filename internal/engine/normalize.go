package engine

import (
	"sort"
	"strings"

	"github.com/andresuchdata/shopmetrics/internal/domain"
)

// Fact normalizers: per-source adapters that filter raw feed rows down to
// the valid set and surface data-quality violations. Each normalizer is a
// pure transform over its own source and owns its own quality report, so
// the five sources can be normalized concurrently without shared state.

// NormalizeCatalog keeps only active catalog entries with a usable key.
func NormalizeCatalog(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.ProductID == "" || strings.TrimSpace(p.SKU) == "" {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(p.Status), "active") {
			continue
		}
		out = append(out, p)
	}
	return out
}

// NormalizeOrders keeps paid, non-cancelled order lines keyed by product.
// Lines with negative quantity or a negative net amount are violations:
// recorded, excluded from sums, never silently corrected.
func NormalizeOrders(lines []domain.OrderLineFact, q *QualityReport) []domain.OrderLineFact {
	out := make([]domain.OrderLineFact, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || strings.TrimSpace(l.SKU) == "" {
			continue
		}
		if l.Cancelled {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(l.FinancialStatus), "paid") {
			continue
		}
		if l.Quantity < 0 {
			q.Add("orders", ViolationNegativeQuantity, l.ProductID, l.Quantity,
				"order %s has negative quantity", l.OrderID)
			continue
		}
		if l.Quantity*l.UnitPrice-l.Discount < 0 {
			q.Add("orders", ViolationNegativeRevenue, l.ProductID, l.Quantity*l.UnitPrice-l.Discount,
				"order %s nets below zero after discount", l.OrderID)
			continue
		}
		out = append(out, l)
	}
	return out
}

// NormalizeAds keeps ad facts with a product key, excluding rows whose
// spend or purchase value is negative or whose clicks exceed impressions.
func NormalizeAds(ads []domain.AdFact, q *QualityReport) []domain.AdFact {
	out := make([]domain.AdFact, 0, len(ads))
	for _, a := range ads {
		if a.ProductID == "" {
			continue
		}
		if a.Spend < 0 {
			q.Add("ads", ViolationNegativeSpend, a.ProductID, a.Spend,
				"campaign %s reported negative spend", a.Campaign)
			continue
		}
		if a.PurchaseValue < 0 {
			q.Add("ads", ViolationNegativeRevenue, a.ProductID, a.PurchaseValue,
				"campaign %s reported negative purchase value", a.Campaign)
			continue
		}
		if a.Impressions > 0 && a.Clicks > a.Impressions {
			q.Add("ads", ViolationClickOverflow, a.ProductID, a.Clicks,
				"campaign %s has %v clicks over %v impressions", a.Campaign, a.Clicks, a.Impressions)
			continue
		}
		out = append(out, a)
	}
	return out
}

// NormalizeEmail keeps email facts with a product key, excluding rows with
// negative attributed revenue or an implied open rate above 100%.
func NormalizeEmail(sends []domain.EmailFact, q *QualityReport) []domain.EmailFact {
	out := make([]domain.EmailFact, 0, len(sends))
	for _, e := range sends {
		if e.ProductID == "" {
			continue
		}
		if e.AttributedRevenue < 0 {
			q.Add("email", ViolationNegativeRevenue, e.ProductID, e.AttributedRevenue,
				"campaign %s reported negative attributed revenue", e.Campaign)
			continue
		}
		if e.Opens > e.Recipients {
			q.Add("email", ViolationOpenRateOverflow, e.ProductID, e.Opens,
				"campaign %s has %v opens over %v recipients", e.Campaign, e.Opens, e.Recipients)
			continue
		}
		out = append(out, e)
	}
	return out
}

// RollupInventory collapses variant-level inventory rows onto the product
// key. On-hand and committed sum across variants; unit cost and selling
// price are weighted by on-hand so a large variant dominates the blend.
// A negative available quantity is a data-quality violation, not an input
// the engine clamps silently: the row is flagged and available floors at
// zero so downstream math stays sane.
func RollupInventory(levels []domain.InventoryLevel, q *QualityReport) map[string]domain.InventorySnapshot {
	type rollup struct {
		onHand    float64
		committed float64
		costSum   float64
		priceSum  float64
		weight    float64
		costAcc   float64
		priceAcc  float64
		variants  float64
	}

	acc := make(map[string]*rollup)
	order := make([]string, 0)
	for _, lv := range levels {
		if lv.ProductID == "" {
			continue
		}
		if lv.OnHand < 0 || lv.Committed < 0 {
			q.Add("inventory", ViolationNegativeInventory, lv.ProductID, lv.OnHand,
				"variant %s has negative quantities", lv.VariantID)
			continue
		}
		r, ok := acc[lv.ProductID]
		if !ok {
			r = &rollup{}
			acc[lv.ProductID] = r
			order = append(order, lv.ProductID)
		}
		r.onHand += lv.OnHand
		r.committed += lv.Committed
		r.costSum += lv.UnitCost * lv.OnHand
		r.priceSum += lv.SellingPrice * lv.OnHand
		r.weight += lv.OnHand
		r.costAcc += lv.UnitCost
		r.priceAcc += lv.SellingPrice
		r.variants++
	}

	sort.Strings(order)
	out := make(map[string]domain.InventorySnapshot, len(acc))
	for _, id := range order {
		r := acc[id]
		snap := domain.InventorySnapshot{
			ProductID: id,
			OnHand:    r.onHand,
			Committed: r.committed,
			Available: r.onHand - r.committed,
		}
		if r.weight > 0 {
			snap.UnitCost = roundFloat(r.costSum/r.weight, 4)
			snap.SellingPrice = roundFloat(r.priceSum/r.weight, 4)
		} else if r.variants > 0 {
			snap.UnitCost = roundFloat(r.costAcc/r.variants, 4)
			snap.SellingPrice = roundFloat(r.priceAcc/r.variants, 4)
		}
		if snap.Available < 0 {
			q.Add("inventory", ViolationOverCommitted, id, snap.Available,
				"committed %v exceeds on-hand %v", snap.Committed, snap.OnHand)
			snap.Available = 0
		}
		out[id] = snap
	}
	return out
}
