package engine

import (
	"time"

	"github.com/andresuchdata/shopmetrics/internal/domain"
)

// Facts is the immutable per-run snapshot of all upstream fact tables.
// Extraction is out of scope; feeds land as flat, already-deduplicated rows.
type Facts struct {
	Catalog   []domain.Product
	Inventory []domain.InventoryLevel
	Orders    []domain.OrderLineFact
	Ads       []domain.AdFact
	Email     []domain.EmailFact
}

// Config holds the tunable parameters of a run. Everything here is injected
// so deployments can retune without touching engine logic.
type Config struct {
	VolumeWindowDays  int
	RevenueWindowDays int
	SafetyStockDays   int
	Workers           int
}

// DefaultConfig returns the standard 90/30 window configuration.
func DefaultConfig() Config {
	return Config{
		VolumeWindowDays:  90,
		RevenueWindowDays: 30,
		SafetyStockDays:   7,
		Workers:           4,
	}
}

// Result is the output of one engine run: the unified records in priority
// order plus the data-quality report collected along the way.
type Result struct {
	Date    time.Time
	Records []domain.UnifiedPerformanceRecord
	Quality *QualityReport
}

// RunStatus tracks the lifecycle of a daily engine run.
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// Run is the persisted record of a single engine execution for a date.
// Re-running for the same date updates the same row; output replacement is
// handled by the record writer, not here.
type Run struct {
	ID           int64
	EngineName   string
	Date         time.Time
	Status       RunStatus
	TotalRecords int
	Violations   int
	StartedAt    time.Time
	CompletedAt  *time.Time
	ErrorMessage string
}

// NewRunAttempt returns the run row to record for an execution. When a
// previous run exists for the same engine and date it is reset and reused,
// keeping one row per (engine, date); otherwise a fresh row is started.
func NewRunAttempt(prev *Run, engineName string, date, startedAt time.Time) *Run {
	if prev == nil {
		return &Run{
			EngineName: engineName,
			Date:       date,
			Status:     RunProcessing,
			StartedAt:  startedAt,
		}
	}

	prev.Status = RunProcessing
	prev.StartedAt = startedAt
	prev.CompletedAt = nil
	prev.ErrorMessage = ""
	prev.TotalRecords = 0
	prev.Violations = 0
	return prev
}
