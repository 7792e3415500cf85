package repository

import (
	"testing"

	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilterConditionsEmpty(t *testing.T) {
	conditions, args := buildFilterConditions(domain.PerformanceFilter{})

	assert.Empty(t, conditions)
	assert.Empty(t, args)
}

func TestBuildFilterConditionsDateAndUrgency(t *testing.T) {
	conditions, args := buildFilterConditions(domain.PerformanceFilter{
		Date:    "2026-08-30",
		Urgency: "URGENT",
	})

	require.Len(t, conditions, 2)
	assert.Equal(t, "date = $1::date", conditions[0])
	assert.Equal(t, "reorder_urgency = $2", conditions[1])
	assert.Equal(t, []interface{}{"2026-08-30", "URGENT"}, args)
}

// Categories and SKUs persist exactly as the catalog feed spells them, so
// the generated conditions must match regardless of the caller's casing.
func TestBuildFilterConditionsCaseInsensitive(t *testing.T) {
	conditions, args := buildFilterConditions(domain.PerformanceFilter{
		Categories: []string{"Skincare", "APPAREL"},
		SKUs:       []string{"SKU-001"},
	})

	require.Len(t, conditions, 2)
	assert.Equal(t, "LOWER(category) = ANY($1::text[])", conditions[0])
	assert.Equal(t, "LOWER(sku) = ANY($2::text[])", conditions[1])

	require.Len(t, args, 2)
	assert.Equal(t, pq.Array([]string{"skincare", "apparel"}), args[0])
	assert.Equal(t, pq.Array([]string{"sku-001"}), args[1])
}

func TestBuildFilterConditionsArgNumbering(t *testing.T) {
	conditions, args := buildFilterConditions(domain.PerformanceFilter{
		Date:       "2026-08-30",
		Urgency:    "HIGH",
		Categories: []string{"skincare"},
		SKUs:       []string{"sku-1", "sku-2"},
	})

	require.Len(t, conditions, 4)
	assert.Equal(t, "LOWER(category) = ANY($3::text[])", conditions[2])
	assert.Equal(t, "LOWER(sku) = ANY($4::text[])", conditions[3])
	assert.Len(t, args, 4)
}
