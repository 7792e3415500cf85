package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPolicySet() *PolicySet {
	seasonality := make(map[int]float64, 12)
	for m := 1; m <= 12; m++ {
		seasonality[m] = 1.0
	}
	return &PolicySet{
		Default: &CategoryPolicy{
			ReorderPoint:    20,
			ReorderQuantity: 50,
			MinStockLevel:   10,
			MaxStockLevel:   200,
			LeadTimeDays:    14,
		},
		Categories: map[string]CategoryPolicy{
			"skincare": {ReorderPoint: 40, ReorderQuantity: 100, MinStockLevel: 20, MaxStockLevel: 400, LeadTimeDays: 21},
		},
		Seasonality: seasonality,
		Demand:      DemandThresholds{HighMinUnits: 100, MediumMinUnits: 30},
	}
}

func TestPolicySetValidate(t *testing.T) {
	assert.NoError(t, validPolicySet().Validate())
}

func TestPolicySetValidateRequiresDefault(t *testing.T) {
	ps := validPolicySet()
	ps.Default = nil
	assert.Error(t, ps.Validate())
}

func TestPolicySetValidateRequiresAllMonths(t *testing.T) {
	ps := validPolicySet()
	delete(ps.Seasonality, 7)
	assert.Error(t, ps.Validate())

	ps = validPolicySet()
	ps.Seasonality[3] = 0
	assert.Error(t, ps.Validate())
}

func TestPolicySetValidateRejectsBadPolicies(t *testing.T) {
	ps := validPolicySet()
	ps.Categories["broken"] = CategoryPolicy{ReorderPoint: 10, MaxStockLevel: 0, LeadTimeDays: 14}
	assert.Error(t, ps.Validate())

	ps = validPolicySet()
	ps.Categories["broken"] = CategoryPolicy{ReorderPoint: 10, MinStockLevel: 50, MaxStockLevel: 20, LeadTimeDays: 14}
	assert.Error(t, ps.Validate())

	ps = validPolicySet()
	ps.Demand = DemandThresholds{HighMinUnits: 30, MediumMinUnits: 30}
	assert.Error(t, ps.Validate())
}

func TestPolicyLookupFallsBackToDefault(t *testing.T) {
	ps := validPolicySet()

	assert.Equal(t, 40.0, ps.Lookup("skincare").ReorderPoint)
	assert.Equal(t, 40.0, ps.Lookup("  SkinCare ").ReorderPoint)
	assert.Equal(t, 20.0, ps.Lookup("unknown").ReorderPoint)
	assert.Equal(t, 20.0, ps.Lookup("").ReorderPoint)
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "skincare", NormalizeCategory(" Skincare "))
	assert.Equal(t, "", NormalizeCategory("   "))
}

func TestLoadPolicyFile(t *testing.T) {
	content := `
default:
  reorder_point: 20
  reorder_quantity: 50
  min_stock_level: 10
  max_stock_level: 200
  lead_time_days: 14
categories:
  Skincare:
    reorder_point: 40
    reorder_quantity: 100
    min_stock_level: 20
    max_stock_level: 400
    lead_time_days: 21
seasonality:
  1: 1.0
  2: 1.0
  3: 1.0
  4: 1.0
  5: 1.0
  6: 1.0
  7: 1.0
  8: 1.0
  9: 1.0
  10: 1.0
  11: 1.4
  12: 1.5
demand:
  high_min_units: 100
  medium_min_units: 30
`
	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	ps, err := LoadPolicyFile(path)
	require.NoError(t, err)

	// Category keys are normalized on load.
	assert.Equal(t, 40.0, ps.Lookup("skincare").ReorderPoint)
	assert.Equal(t, 1.4, ps.SeasonalityFor(11))
	assert.Equal(t, 100.0, ps.Demand.HighMinUnits)
}

func TestLoadPolicyFileRejectsIncomplete(t *testing.T) {
	content := `
default:
  reorder_point: 20
  reorder_quantity: 50
  min_stock_level: 10
  max_stock_level: 200
  lead_time_days: 14
seasonality:
  1: 1.0
demand:
  high_min_units: 100
  medium_min_units: 30
`
	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadPolicyFile(path)
	assert.Error(t, err)
}
