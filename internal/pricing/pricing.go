// Package pricing computes per-record shipping prices from package weight
// and the selected service tier. Two formula families exist in the product's
// history; both are supported and selected by configuration. The canonical
// default is the per-ounce formula used by the billing backend.
package pricing

import (
	"fmt"
	"math"

	"shipcore/pkg/domain"
)

// Formula selects the price computation family.
type Formula string

// Supported pricing formulas.
const (
	// FormulaPerOunce prices as base + total_ounces * per-unit rate.
	FormulaPerOunce Formula = "per_ounce"
	// FormulaPerPound prices as base + decimal_pounds * per-unit rate.
	FormulaPerPound Formula = "per_pound"
)

// DefaultLabelFee is the flat per-label surcharge added at checkout,
// independent of carrier price.
const DefaultLabelFee = 0.50

// Rate holds the constants for one service tier. PerUnit is applied to
// total ounces or decimal pounds depending on the table's formula.
type Rate struct {
	Base    float64 `yaml:"base"`
	PerUnit float64 `yaml:"per_unit"`
}

// Table is a complete pricing configuration: formula selection, per-service
// rates, and the label fee.
type Table struct {
	Formula  Formula                     `yaml:"formula"`
	LabelFee float64                     `yaml:"label_fee"`
	Services map[domain.ServiceTier]Rate `yaml:"services"`
}

// DefaultTable returns the canonical per-ounce rates used by the billing
// system of record.
func DefaultTable() Table {
	return Table{
		Formula:  FormulaPerOunce,
		LabelFee: DefaultLabelFee,
		Services: map[domain.ServiceTier]Rate{
			domain.ServicePriority: {Base: 5.00, PerUnit: 0.10},
			domain.ServiceGround:   {Base: 2.50, PerUnit: 0.05},
		},
	}
}

// PerPoundTable returns the flat per-pound rates from the original
// estimator, kept available as a configuration option.
func PerPoundTable() Table {
	return Table{
		Formula:  FormulaPerPound,
		LabelFee: DefaultLabelFee,
		Services: map[domain.ServiceTier]Rate{
			domain.ServicePriority: {Base: 4.99, PerUnit: 0.50},
			domain.ServiceGround:   {Base: 2.99, PerUnit: 0.25},
		},
	}
}

// Price computes the shipping price for a package under the given service,
// rounded half-up to 2 decimal places. Inputs are never mutated; callers
// recompute whenever weight or service changes.
func (t Table) Price(pkg domain.Package, service domain.ServiceTier) (float64, error) {
	rate, ok := t.Services[service]
	if !ok {
		return 0, fmt.Errorf("no rate configured for service %q", service)
	}
	switch t.Formula {
	case FormulaPerPound:
		return Round2(rate.Base + pkg.WeightPounds()*rate.PerUnit), nil
	case FormulaPerOunce, "":
		return Round2(rate.Base + pkg.TotalOunces()*rate.PerUnit), nil
	default:
		return 0, fmt.Errorf("unknown pricing formula %q", t.Formula)
	}
}

// Round2 rounds a non-negative amount half-up to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
