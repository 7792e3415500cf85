package engine

import "github.com/andresuchdata/shopmetrics/internal/domain"

// Rule classifier: stateless threshold functions over the derived metrics.
// All thresholds arrive via the injected policy set; nothing here is
// derived from the data.

// ClassifyUrgency grades how close available stock is to the reorder point.
// The tiers are evaluated strictly in order, first match wins, which makes
// severity monotonic in falling stock.
func ClassifyUrgency(available, reorderPoint float64) string {
	switch {
	case available <= reorderPoint:
		return domain.UrgencyUrgent
	case available <= 1.5*reorderPoint:
		return domain.UrgencyHigh
	case available <= 2*reorderPoint:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// ClassifyOverstock grades excess stock against the category ceiling.
func ClassifyOverstock(available, maxStockLevel float64) string {
	switch {
	case available > maxStockLevel:
		return domain.OverstockHigh
	case available > 0.8*maxStockLevel:
		return domain.OverstockMedium
	default:
		return domain.OverstockLow
	}
}

// ClassifyABC tiers a product by its revenue percentile rank: the top 20th
// percentile is A, up to the 50th is B, the rest C.
func ClassifyABC(revenueRank float64) string {
	switch {
	case revenueRank <= 20:
		return "A"
	case revenueRank <= 50:
		return "B"
	default:
		return "C"
	}
}

// ClassifyDemand buckets long-window unit volume against the configured
// category-independent thresholds.
func ClassifyDemand(units float64, t domain.DemandThresholds) string {
	switch {
	case units >= t.HighMinUnits:
		return domain.DemandHigh
	case units >= t.MediumMinUnits:
		return domain.DemandMedium
	default:
		return domain.DemandLow
	}
}
