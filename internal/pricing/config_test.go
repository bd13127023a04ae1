package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"shipcore/pkg/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileOverlaysBase(t *testing.T) {
	path := writeConfig(t, `
label_fee: 0.75
services:
  priority:
    base: 6.00
    per_unit: 0.20
`)
	table, err := LoadFile(path, DefaultTable())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if table.LabelFee != 0.75 {
		t.Fatalf("label fee = %v, want 0.75", table.LabelFee)
	}
	if got := table.Services[domain.ServicePriority]; got != (Rate{Base: 6.00, PerUnit: 0.20}) {
		t.Fatalf("priority rate = %+v", got)
	}
	// Tiers absent from the file keep the base rates.
	if got := table.Services[domain.ServiceGround]; got != (Rate{Base: 2.50, PerUnit: 0.05}) {
		t.Fatalf("ground rate = %+v", got)
	}
	if table.Formula != FormulaPerOunce {
		t.Fatalf("formula = %q, want base formula preserved", table.Formula)
	}
}

func TestLoadFileDoesNotMutateBase(t *testing.T) {
	base := DefaultTable()
	path := writeConfig(t, "services:\n  ground:\n    base: 9.99\n    per_unit: 1.00\n")
	if _, err := LoadFile(path, base); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := base.Services[domain.ServiceGround]; got != (Rate{Base: 2.50, PerUnit: 0.05}) {
		t.Fatalf("base table mutated: %+v", got)
	}
}

func TestLoadFileFormulaOverride(t *testing.T) {
	path := writeConfig(t, "formula: per_pound\n")
	table, err := LoadFile(path, DefaultTable())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if table.Formula != FormulaPerPound {
		t.Fatalf("formula = %q", table.Formula)
	}
}

func TestLoadFileRejectsUnknownFormula(t *testing.T) {
	path := writeConfig(t, "formula: per_gram\n")
	if _, err := LoadFile(path, DefaultTable()); err == nil {
		t.Fatal("expected error for unknown formula")
	}
}

func TestLoadFileRejectsUnknownServiceTier(t *testing.T) {
	path := writeConfig(t, "services:\n  overnight:\n    base: 20.00\n    per_unit: 1.00\n")
	if _, err := LoadFile(path, DefaultTable()); err == nil {
		t.Fatal("expected error for unknown service tier")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), DefaultTable()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOpenTableDefaults(t *testing.T) {
	t.Setenv("SHIPCORE_PRICING_FORMULA", "")
	t.Setenv("SHIPCORE_PRICING_CONFIG", "")
	table, err := OpenTable()
	if err != nil {
		t.Fatalf("OpenTable: %v", err)
	}
	if table.Formula != FormulaPerOunce || table.LabelFee != DefaultLabelFee {
		t.Fatalf("table = %+v", table)
	}
}

func TestOpenTablePerPound(t *testing.T) {
	t.Setenv("SHIPCORE_PRICING_FORMULA", "per_pound")
	t.Setenv("SHIPCORE_PRICING_CONFIG", "")
	table, err := OpenTable()
	if err != nil {
		t.Fatalf("OpenTable: %v", err)
	}
	if table.Formula != FormulaPerPound {
		t.Fatalf("formula = %q", table.Formula)
	}
}

func TestOpenTableUnknownFormula(t *testing.T) {
	t.Setenv("SHIPCORE_PRICING_FORMULA", "per_gram")
	if _, err := OpenTable(); err == nil {
		t.Fatal("expected error for unknown formula env")
	}
}

func TestOpenTableWithConfigFile(t *testing.T) {
	path := writeConfig(t, "label_fee: 1.25\n")
	t.Setenv("SHIPCORE_PRICING_FORMULA", "")
	t.Setenv("SHIPCORE_PRICING_CONFIG", path)
	table, err := OpenTable()
	if err != nil {
		t.Fatalf("OpenTable: %v", err)
	}
	if table.LabelFee != 1.25 {
		t.Fatalf("label fee = %v, want 1.25", table.LabelFee)
	}
}
