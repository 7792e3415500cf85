package engine

import "fmt"

// Violation kinds recorded by the normalizers. Violating rows are excluded
// from aggregate sums but never dropped silently: each one lands in the
// run's quality report.
const (
	ViolationNegativeSpend     = "negative_spend"
	ViolationNegativeRevenue   = "negative_revenue"
	ViolationNegativeQuantity  = "negative_quantity"
	ViolationNegativeInventory = "negative_inventory"
	ViolationOverCommitted     = "committed_exceeds_on_hand"
	ViolationOpenRateOverflow  = "opens_exceed_recipients"
	ViolationClickOverflow     = "clicks_exceed_impressions"
)

// Violation is one data-quality anomaly tied to a source row.
type Violation struct {
	Source    string  `json:"source"`
	Kind      string  `json:"kind"`
	ProductID string  `json:"product_id"`
	Value     float64 `json:"value"`
	Detail    string  `json:"detail"`
}

// QualityReport collects violations for one run. Normalizers each build
// their own report on a single goroutine; Merge combines them afterwards,
// so no locking is needed.
type QualityReport struct {
	Violations []Violation
}

func NewQualityReport() *QualityReport {
	return &QualityReport{}
}

func (r *QualityReport) Add(source, kind, productID string, value float64, format string, args ...interface{}) {
	r.Violations = append(r.Violations, Violation{
		Source:    source,
		Kind:      kind,
		ProductID: productID,
		Value:     value,
		Detail:    fmt.Sprintf(format, args...),
	})
}

// Merge appends another report's violations into this one.
func (r *QualityReport) Merge(other *QualityReport) {
	if other == nil {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// Count returns the total violation tally.
func (r *QualityReport) Count() int {
	return len(r.Violations)
}

// CountsBySource breaks the tally down per upstream feed.
func (r *QualityReport) CountsBySource() map[string]int {
	counts := make(map[string]int)
	for _, v := range r.Violations {
		counts[v.Source]++
	}
	return counts
}
