package pricing

import (
	"testing"

	"shipcore/pkg/domain"
)

var twoLbFourOz = domain.Package{WeightLbs: 2, WeightOz: 4}

func mustPrice(t *testing.T, table Table, pkg domain.Package, service domain.ServiceTier) float64 {
	t.Helper()
	price, err := table.Price(pkg, service)
	if err != nil {
		t.Fatalf("Price(%q): %v", service, err)
	}
	return price
}

func TestDefaultTablePerOunce(t *testing.T) {
	table := DefaultTable()
	// 2 lb 4 oz = 36 oz total.
	if got := mustPrice(t, table, twoLbFourOz, domain.ServicePriority); got != 8.60 {
		t.Fatalf("priority = %v, want 8.60", got)
	}
	if got := mustPrice(t, table, twoLbFourOz, domain.ServiceGround); got != 4.30 {
		t.Fatalf("ground = %v, want 4.30", got)
	}
}

func TestPerPoundTable(t *testing.T) {
	table := PerPoundTable()
	// 2 lb 4 oz = 2.25 decimal pounds.
	if got := mustPrice(t, table, twoLbFourOz, domain.ServicePriority); got != 6.12 {
		t.Fatalf("priority = %v, want 6.12", got)
	}
	if got := mustPrice(t, table, twoLbFourOz, domain.ServiceGround); got != 3.55 {
		t.Fatalf("ground = %v, want 3.55", got)
	}
}

func TestPriceZeroWeightIsBaseRate(t *testing.T) {
	if got := mustPrice(t, DefaultTable(), domain.Package{}, domain.ServiceGround); got != 2.50 {
		t.Fatalf("zero-weight ground = %v, want base 2.50", got)
	}
}

func TestPriceUnknownService(t *testing.T) {
	if _, err := DefaultTable().Price(twoLbFourOz, "overnight"); err == nil {
		t.Fatal("expected error for unconfigured service")
	}
}

func TestPriceUnknownFormula(t *testing.T) {
	table := DefaultTable()
	table.Formula = "per_gram"
	if _, err := table.Price(twoLbFourOz, domain.ServiceGround); err == nil {
		t.Fatal("expected error for unknown formula")
	}
}

func TestPriceEmptyFormulaDefaultsToPerOunce(t *testing.T) {
	table := DefaultTable()
	table.Formula = ""
	if got := mustPrice(t, table, twoLbFourOz, domain.ServicePriority); got != 8.60 {
		t.Fatalf("empty formula priority = %v, want 8.60", got)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{3.5525, 3.55},
		{6.126, 6.13},
		{2.0, 2.0},
		{0.005, 0.01},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
