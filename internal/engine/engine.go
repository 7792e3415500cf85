package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/andresuchdata/shopmetrics/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Engine runs the daily aggregation-and-classification batch: normalize
// each source, roll up the lookback windows, rank revenue, derive metrics,
// classify, and assemble the unified records in priority order. Every
// stage is a pure function over the run's fact snapshot; re-running the
// same date on the same inputs yields identical rows modulo the export
// timestamp.
type Engine struct {
	cfg      Config
	policies *domain.PolicySet
	calc     *Calculator
}

// New creates an engine from a validated policy set. Policy validation is
// the caller's startup gate; an invalid set must abort before any output
// is produced.
func New(cfg Config, policies *domain.PolicySet) (*Engine, error) {
	if policies == nil {
		return nil, fmt.Errorf("engine: policy set is required")
	}
	if err := policies.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if cfg.VolumeWindowDays <= 0 || cfg.RevenueWindowDays <= 0 {
		return nil, fmt.Errorf("engine: window lengths must be positive (volume=%d revenue=%d)",
			cfg.VolumeWindowDays, cfg.RevenueWindowDays)
	}
	return &Engine{
		cfg:      cfg,
		policies: policies,
		calc:     NewCalculator(policies, cfg),
	}, nil
}

// Name identifies the engine in run tracking.
func (e *Engine) Name() string {
	return "product_performance"
}

// Run executes the full pipeline for one date over the given fact
// snapshot. The returned records are fully recomputed; persisting them is
// the caller's replace-on-rerun responsibility.
func (e *Engine) Run(ctx context.Context, date time.Time, facts Facts) (*Result, error) {
	log := logger.WithComponent("engine")
	start := time.Now()

	// Stage 1: per-source normalization, one goroutine per source. Each
	// normalizer owns its own quality report; they merge after the wait.
	var (
		catalog   []domain.Product
		orders    []domain.OrderLineFact
		ads       []domain.AdFact
		email     []domain.EmailFact
		inventory map[string]domain.InventorySnapshot

		ordersQ = NewQualityReport()
		adsQ    = NewQualityReport()
		emailQ  = NewQualityReport()
		invQ    = NewQualityReport()
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		catalog = NormalizeCatalog(facts.Catalog)
		return gctx.Err()
	})
	g.Go(func() error {
		orders = NormalizeOrders(facts.Orders, ordersQ)
		return gctx.Err()
	})
	g.Go(func() error {
		ads = NormalizeAds(facts.Ads, adsQ)
		return gctx.Err()
	})
	g.Go(func() error {
		email = NormalizeEmail(facts.Email, emailQ)
		return gctx.Err()
	})
	g.Go(func() error {
		inventory = RollupInventory(facts.Inventory, invQ)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	quality := NewQualityReport()
	quality.Merge(ordersQ)
	quality.Merge(adsQ)
	quality.Merge(emailQ)
	quality.Merge(invQ)

	log.Debug().
		Int("catalog", len(catalog)).
		Int("orders", len(orders)).
		Int("ads", len(ads)).
		Int("email", len(email)).
		Int("inventory", len(inventory)).
		Int("violations", quality.Count()).
		Msg("sources normalized")

	// Stage 2: windowed rollups. The volume and revenue windows run as
	// independent passes inside AggregateSales.
	joins := joinedSources{
		inventory: inventory,
		sales:     AggregateSales(orders, date, e.cfg),
		ads:       AggregateAds(ads, date, e.cfg),
		email:     AggregateEmail(email, date, e.cfg),
	}

	// Stage 3: percentile rank over the whole universe, missing revenue
	// treated as zero so every product has a defined rank.
	universe := buildUniverse(catalog, joins)
	revenue := make(map[string]float64, len(universe))
	for _, p := range universe {
		revenue[p.ProductID] = joins.sales[p.ProductID].RevenueWindow
	}
	joins.ranks = RevenueRanks(revenue)

	// Stages 4+5: metric derivation and classification, partitioned
	// across workers.
	records, err := buildRecords(ctx, e.calc, universe, joins, date, e.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("engine: record build failed: %w", err)
	}

	// Stage 6: drop inactive catalog dead weight, order by business
	// priority, stamp the export time.
	kept := records[:0]
	for _, rec := range records {
		if hasActivity(rec) {
			kept = append(kept, rec)
		}
	}
	sortByPriority(kept)

	exportedAt := time.Now().UTC()
	for i := range kept {
		kept[i].ExportedAt = exportedAt
	}

	log.Info().
		Str("date", date.Format("2006-01-02")).
		Int("products", len(universe)).
		Int("records", len(kept)).
		Int("violations", quality.Count()).
		Dur("elapsed", time.Since(start)).
		Msg("run completed")

	return &Result{
		Date:    date,
		Records: kept,
		Quality: quality,
	}, nil
}
