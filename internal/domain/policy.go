package domain

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// CategoryPolicy holds the replenishment parameters for one product category.
// Policies are deployment configuration loaded at startup, never derived from
// the data.
type CategoryPolicy struct {
	ReorderPoint    float64 `mapstructure:"reorder_point" json:"reorder_point"`
	ReorderQuantity float64 `mapstructure:"reorder_quantity" json:"reorder_quantity"`
	MinStockLevel   float64 `mapstructure:"min_stock_level" json:"min_stock_level"`
	MaxStockLevel   float64 `mapstructure:"max_stock_level" json:"max_stock_level"`
	LeadTimeDays    float64 `mapstructure:"lead_time_days" json:"lead_time_days"`
}

// DemandThresholds sets the category-independent unit-volume cutoffs for the
// demand level classification.
type DemandThresholds struct {
	HighMinUnits   float64 `mapstructure:"high_min_units" json:"high_min_units"`
	MediumMinUnits float64 `mapstructure:"medium_min_units" json:"medium_min_units"`
}

// PolicySet is the full classification configuration: category policies with a
// mandatory default, the month-keyed seasonality table, and demand thresholds.
type PolicySet struct {
	Default     *CategoryPolicy           `mapstructure:"default" json:"default"`
	Categories  map[string]CategoryPolicy `mapstructure:"categories" json:"categories"`
	Seasonality map[int]float64           `mapstructure:"seasonality" json:"seasonality"`
	Demand      DemandThresholds          `mapstructure:"demand" json:"demand"`
}

// NormalizeCategory maps a raw catalog category onto the policy lookup key.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// Lookup resolves the policy for a category, falling back to the default.
func (ps *PolicySet) Lookup(category string) CategoryPolicy {
	if p, ok := ps.Categories[NormalizeCategory(category)]; ok {
		return p
	}
	return *ps.Default
}

// SeasonalityFor returns the multiplicative demand factor for a calendar
// month (1-12).
func (ps *PolicySet) SeasonalityFor(month int) float64 {
	return ps.Seasonality[month]
}

// Validate fails fast on configuration that would produce inconsistent
// recommendations mid-run: a missing default policy or an incomplete
// seasonality table aborts before any output is written.
func (ps *PolicySet) Validate() error {
	if ps.Default == nil {
		return fmt.Errorf("policy set: default category policy is required")
	}
	if err := validatePolicy("default", *ps.Default); err != nil {
		return err
	}
	for name, p := range ps.Categories {
		if err := validatePolicy(name, p); err != nil {
			return err
		}
	}
	for month := 1; month <= 12; month++ {
		factor, ok := ps.Seasonality[month]
		if !ok {
			return fmt.Errorf("policy set: seasonality table missing month %d", month)
		}
		if factor <= 0 {
			return fmt.Errorf("policy set: seasonality factor for month %d must be positive, got %v", month, factor)
		}
	}
	if ps.Demand.HighMinUnits <= ps.Demand.MediumMinUnits {
		return fmt.Errorf("policy set: demand high_min_units (%v) must exceed medium_min_units (%v)",
			ps.Demand.HighMinUnits, ps.Demand.MediumMinUnits)
	}
	return nil
}

func validatePolicy(name string, p CategoryPolicy) error {
	if p.ReorderPoint < 0 || p.ReorderQuantity < 0 || p.MinStockLevel < 0 {
		return fmt.Errorf("policy %q: negative stock parameters", name)
	}
	if p.MaxStockLevel <= 0 {
		return fmt.Errorf("policy %q: max_stock_level must be positive", name)
	}
	if p.MaxStockLevel < p.MinStockLevel {
		return fmt.Errorf("policy %q: max_stock_level below min_stock_level", name)
	}
	if p.LeadTimeDays <= 0 {
		return fmt.Errorf("policy %q: lead_time_days must be positive", name)
	}
	return nil
}

// LoadPolicyFile reads and validates a policy YAML file. Category keys are
// normalized on load so lookups are case- and whitespace-insensitive.
func LoadPolicyFile(path string) (*PolicySet, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}

	var ps PolicySet
	if err := v.Unmarshal(&ps); err != nil {
		return nil, fmt.Errorf("failed to decode policy file %s: %w", path, err)
	}

	normalized := make(map[string]CategoryPolicy, len(ps.Categories))
	for name, p := range ps.Categories {
		normalized[NormalizeCategory(name)] = p
	}
	ps.Categories = normalized

	if err := ps.Validate(); err != nil {
		return nil, err
	}

	return &ps, nil
}
