package engine

import "sort"

// RevenueRanks computes a percentile rank of short-window revenue across
// the full product universe. Rank 0 is the highest earner, 100 the lowest.
// Ordering is deterministic: revenue descending with product_id as the
// secondary sort key, and exact revenue ties share the rank of the first
// product in the tie group.
func RevenueRanks(revenue map[string]float64) map[string]float64 {
	n := len(revenue)
	ranks := make(map[string]float64, n)
	if n == 0 {
		return ranks
	}

	ids := make([]string, 0, n)
	for id := range revenue {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ri, rj := revenue[ids[i]], revenue[ids[j]]
		if ri != rj {
			return ri > rj
		}
		return ids[i] < ids[j]
	})

	if n == 1 {
		ranks[ids[0]] = 0
		return ranks
	}

	groupStart := 0
	for i, id := range ids {
		if revenue[id] != revenue[ids[groupStart]] {
			groupStart = i
		}
		ranks[id] = roundFloat(100*float64(groupStart)/float64(n-1), 2)
	}
	return ranks
}
