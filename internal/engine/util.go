package engine

import "math"

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// urgencySeverity orders the urgency tiers for the output sort; lower is
// more urgent.
var urgencySeverity = map[string]int{
	"URGENT": 0,
	"HIGH":   1,
	"MEDIUM": 2,
	"LOW":    3,
}
