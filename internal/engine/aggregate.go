package engine

import (
	"time"

	"github.com/andresuchdata/shopmetrics/internal/domain"
)

// Windowed aggregators: rolling sums over fixed lookback windows, grouped
// by product. The volume and revenue windows are computed in separate
// passes over the full normalized fact set; slicing one pre-aggregated
// result would silently apply the wrong boundary to one of the metrics.

func inWindow(ts, now time.Time, days int) bool {
	start := now.AddDate(0, 0, -days)
	return !ts.Before(start) && ts.Before(now)
}

// AggregateSales rolls normalized order lines up per product over the two
// lookback windows. A product absent from the facts simply has no entry;
// the builder left-joins against the full catalog and fills zeros.
func AggregateSales(orders []domain.OrderLineFact, now time.Time, cfg Config) map[string]domain.SalesAggregate {
	out := make(map[string]domain.SalesAggregate)

	// Pass 1: unit volume over the long window.
	for _, l := range orders {
		if !inWindow(l.Date, now, cfg.VolumeWindowDays) {
			continue
		}
		agg := out[l.ProductID]
		agg.ProductID = l.ProductID
		agg.UnitsVolumeWindow += l.Quantity
		out[l.ProductID] = agg
	}

	// Pass 2: revenue, orders and customers over the short window.
	ordersSeen := make(map[string]map[string]struct{})
	customersSeen := make(map[string]map[string]struct{})
	unitsShort := make(map[string]float64)
	for _, l := range orders {
		if !inWindow(l.Date, now, cfg.RevenueWindowDays) {
			continue
		}
		agg := out[l.ProductID]
		agg.ProductID = l.ProductID
		agg.RevenueWindow += l.Quantity*l.UnitPrice - l.Discount
		unitsShort[l.ProductID] += l.Quantity

		if ordersSeen[l.ProductID] == nil {
			ordersSeen[l.ProductID] = make(map[string]struct{})
		}
		if _, ok := ordersSeen[l.ProductID][l.OrderID]; !ok {
			ordersSeen[l.ProductID][l.OrderID] = struct{}{}
			agg.OrdersWindow++
		}
		if l.CustomerID != "" {
			if customersSeen[l.ProductID] == nil {
				customersSeen[l.ProductID] = make(map[string]struct{})
			}
			if _, ok := customersSeen[l.ProductID][l.CustomerID]; !ok {
				customersSeen[l.ProductID][l.CustomerID] = struct{}{}
				agg.UniqueCustomers++
			}
		}
		out[l.ProductID] = agg
	}

	for id, agg := range out {
		agg.RevenueWindow = roundFloat(agg.RevenueWindow, 2)
		if units := unitsShort[id]; units > 0 {
			agg.AvgUnitPrice = roundFloat(agg.RevenueWindow/units, 2)
		}
		if cfg.VolumeWindowDays > 0 {
			agg.AvgDailySales = roundFloat(agg.UnitsVolumeWindow/float64(cfg.VolumeWindowDays), 4)
		}
		out[id] = agg
	}

	return out
}

// AggregateAds rolls ad facts up per product over the revenue window.
func AggregateAds(ads []domain.AdFact, now time.Time, cfg Config) map[string]domain.ChannelAttribution {
	out := make(map[string]domain.ChannelAttribution)
	for _, a := range ads {
		if !inWindow(a.Date, now, cfg.RevenueWindowDays) {
			continue
		}
		attr := out[a.ProductID]
		attr.ProductID = a.ProductID
		attr.Channel = "facebook"
		attr.Spend += a.Spend
		attr.Reach += a.Impressions
		attr.Engagements += a.Clicks
		attr.Clicks += a.Clicks
		attr.AttributedRevenue += a.PurchaseValue
		attr.AttributedUnits += a.Purchases
		attr.SecondaryRevenue += a.PurchaseValue7d
		attr.SecondaryUnits += a.Purchases7d
		out[a.ProductID] = attr
	}
	for id, attr := range out {
		attr.Spend = roundFloat(attr.Spend, 2)
		attr.AttributedRevenue = roundFloat(attr.AttributedRevenue, 2)
		attr.SecondaryRevenue = roundFloat(attr.SecondaryRevenue, 2)
		out[id] = attr
	}
	return out
}

// AggregateEmail rolls email facts up per product over the revenue window.
// Email sends carry no spend column; the channel contributes attributed
// revenue only.
func AggregateEmail(sends []domain.EmailFact, now time.Time, cfg Config) map[string]domain.ChannelAttribution {
	out := make(map[string]domain.ChannelAttribution)
	for _, e := range sends {
		if !inWindow(e.Date, now, cfg.RevenueWindowDays) {
			continue
		}
		attr := out[e.ProductID]
		attr.ProductID = e.ProductID
		attr.Channel = "klaviyo"
		attr.Reach += e.Recipients
		attr.Engagements += e.Opens
		attr.Clicks += e.Clicks
		attr.AttributedRevenue += e.AttributedRevenue
		attr.AttributedUnits += e.AttributedUnits
		attr.SecondaryRevenue += e.AttributedRevenue3d
		attr.SecondaryUnits += e.AttributedUnits3d
		out[e.ProductID] = attr
	}
	for id, attr := range out {
		attr.AttributedRevenue = roundFloat(attr.AttributedRevenue, 2)
		attr.SecondaryRevenue = roundFloat(attr.SecondaryRevenue, 2)
		out[id] = attr
	}
	return out
}
