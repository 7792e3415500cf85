package engine

import (
	"context"
	"sort"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Unified record builder: the left-outer join of the full product universe
// against every per-product rollup, with sentinel fills for sources that
// did not match and a final priority ordering.

type joinedSources struct {
	inventory map[string]domain.InventorySnapshot
	sales     map[string]domain.SalesAggregate
	ads       map[string]domain.ChannelAttribution
	email     map[string]domain.ChannelAttribution
	ranks     map[string]float64
}

// buildUniverse returns the set of products the run will evaluate: the
// active catalog plus any product that shows up in sales, marketing or
// inventory without a catalog match. Off-catalog products get explicit
// sentinel attributes rather than nulls and are later flagged through the
// data-quality statuses.
func buildUniverse(catalog []domain.Product, j joinedSources) []domain.Product {
	universe := make([]domain.Product, 0, len(catalog))
	seen := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		universe = append(universe, p)
		seen[p.ProductID] = struct{}{}
	}

	var orphans []string
	addOrphan := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		orphans = append(orphans, id)
	}
	for id := range j.sales {
		addOrphan(id)
	}
	for id := range j.ads {
		addOrphan(id)
	}
	for id := range j.email {
		addOrphan(id)
	}
	for id := range j.inventory {
		addOrphan(id)
	}

	sort.Strings(orphans)
	for _, id := range orphans {
		universe = append(universe, domain.Product{
			ProductID: id,
			SKU:       "missing",
			Name:      "missing",
			Category:  domain.CategoryUnknown,
			Status:    domain.CategoryUnknown,
		})
	}
	return universe
}

// buildRecords fans the per-product calculation out across worker
// goroutines. Each worker owns a disjoint index range of the universe and
// writes into its own slots, so the stage needs no locking and the output
// order is deterministic regardless of scheduling.
func buildRecords(ctx context.Context, calc *Calculator, universe []domain.Product, j joinedSources, date time.Time, workers int) ([]domain.UnifiedPerformanceRecord, error) {
	if workers < 1 {
		workers = 1
	}

	records := make([]domain.UnifiedPerformanceRecord, len(universe))
	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(universe) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(universe) {
			break
		}
		end := start + chunk
		if end > len(universe) {
			end = len(universe)
		}

		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				p := universe[i]
				inv, hasInv := j.inventory[p.ProductID]
				ads, hasAds := j.ads[p.ProductID]
				email, hasEmail := j.email[p.ProductID]

				rec := calc.Calculate(RecordInputs{
					Product:      p,
					Inventory:    inv,
					HasInventory: hasInv,
					Sales:        j.sales[p.ProductID],
					Ads:          ads,
					Email:        email,
					HasMarketing: hasAds || hasEmail,
					RevenueRank:  j.ranks[p.ProductID],
					Month:        int(date.Month()),
				})
				rec.Date = date
				records[i] = rec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// hasActivity decides whether a record earns a row in the daily output:
// stock on hand, short-window sales, or marketing activity. Everything
// else is catalog dead weight the downstream consumers never act on.
func hasActivity(rec domain.UnifiedPerformanceRecord) bool {
	return rec.OnHand > 0 ||
		rec.Revenue30d > 0 ||
		rec.Orders30d > 0 ||
		rec.TotalMarketingSpend > 0 ||
		rec.TotalAttributedRevenue > 0
}

// sortByPriority orders the output as a ready-to-act queue: urgency tier
// first, then revenue descending, then the shortest stock runway.
func sortByPriority(records []domain.UnifiedPerformanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if urgencySeverity[a.ReorderUrgency] != urgencySeverity[b.ReorderUrgency] {
			return urgencySeverity[a.ReorderUrgency] < urgencySeverity[b.ReorderUrgency]
		}
		if a.Revenue30d != b.Revenue30d {
			return a.Revenue30d > b.Revenue30d
		}
		if a.DaysOfStockRemaining != b.DaysOfStockRemaining {
			return a.DaysOfStockRemaining < b.DaysOfStockRemaining
		}
		return a.ProductID < b.ProductID
	})
}
