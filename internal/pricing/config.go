package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"shipcore/pkg/domain"
)

// Environment variables:
//
//	SHIPCORE_PRICING_FORMULA: per_ounce|per_pound (default per_ounce)
//	SHIPCORE_PRICING_CONFIG: path to a YAML rate table overriding built-ins
func loadEnv() (Table, error) {
	var table Table
	switch Formula(os.Getenv("SHIPCORE_PRICING_FORMULA")) {
	case FormulaPerPound:
		table = PerPoundTable()
	case FormulaPerOunce, "":
		table = DefaultTable()
	default:
		return Table{}, fmt.Errorf("unknown SHIPCORE_PRICING_FORMULA %q", os.Getenv("SHIPCORE_PRICING_FORMULA"))
	}
	if path := os.Getenv("SHIPCORE_PRICING_CONFIG"); path != "" {
		return LoadFile(path, table)
	}
	return table, nil
}

// OpenTable resolves the active pricing table from the environment,
// falling back to the canonical per-ounce defaults.
func OpenTable() (Table, error) {
	return loadEnv()
}

// fileConfig mirrors the YAML rate-table layout. Only the fields present in
// the file override the base table.
type fileConfig struct {
	Formula  Formula                     `yaml:"formula"`
	LabelFee *float64                    `yaml:"label_fee"`
	Services map[domain.ServiceTier]Rate `yaml:"services"`
}

// LoadFile overlays a YAML rate table on top of base. Unknown service tiers
// in the file are rejected.
func LoadFile(path string, base Table) (Table, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return Table{}, fmt.Errorf("read pricing config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Table{}, fmt.Errorf("parse pricing config: %w", err)
	}

	out := base
	if cfg.Formula != "" {
		if cfg.Formula != FormulaPerOunce && cfg.Formula != FormulaPerPound {
			return Table{}, fmt.Errorf("unknown pricing formula %q in %s", cfg.Formula, path)
		}
		out.Formula = cfg.Formula
	}
	if cfg.LabelFee != nil {
		out.LabelFee = *cfg.LabelFee
	}
	if len(cfg.Services) > 0 {
		services := make(map[domain.ServiceTier]Rate, len(out.Services))
		for tier, rate := range out.Services {
			services[tier] = rate
		}
		for tier, rate := range cfg.Services {
			if !domain.ValidServiceTier(tier) {
				return Table{}, fmt.Errorf("unknown service tier %q in %s", tier, path)
			}
			services[tier] = rate
		}
		out.Services = services
	}
	return out, nil
}
