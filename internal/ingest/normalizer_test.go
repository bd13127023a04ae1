package ingest

import (
	"strings"
	"testing"

	"shipcore/pkg/domain"
)

func TestNormalizeFixed(t *testing.T) {
	res, err := Decode(TemplateFixed, fixedCSV(fixedRow(nil)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	nr := Normalize(TemplateFixed, res.Rows[0])
	rec := nr.Record

	if !strings.HasPrefix(rec.ID, "SHP-") {
		t.Fatalf("record ID = %q, want SHP- prefix", rec.ID)
	}
	if rec.Seq != 1 {
		t.Fatalf("seq = %d, want 1", rec.Seq)
	}
	if rec.OrderNo != "ORD-100" {
		t.Fatalf("order no = %q", rec.OrderNo)
	}
	from := domain.Address{
		FirstName: "Ann", LastName: "Smith", AddressLine1: "1 Main St",
		City: "Austin", State: "TX", Zip: "78701", Phone: "5125550100",
	}
	if rec.ShipFrom != from {
		t.Fatalf("ship from = %+v, want %+v", rec.ShipFrom, from)
	}
	if rec.ShipTo.AddressLine2 != "Unit 4" {
		t.Fatalf("ship to address 2 = %q", rec.ShipTo.AddressLine2)
	}
	if rec.ShipTo.Phone != "3035550100" {
		t.Fatalf("ship to phone = %q", rec.ShipTo.Phone)
	}
	pkg := domain.Package{
		WeightLbs: 2, WeightOz: 4,
		LengthInches: 10, WidthInches: 6, HeightInches: 4,
		SKU: "SKU-1",
	}
	if rec.Package != pkg {
		t.Fatalf("package = %+v, want %+v", rec.Package, pkg)
	}
	if rec.Service != domain.ServiceGround {
		t.Fatalf("default service = %q, want ground", rec.Service)
	}
}

func TestNormalizeFixedDefaultsOrderNo(t *testing.T) {
	res, err := Decode(TemplateFixed, fixedCSV(fixedRow(map[int]string{colOrderNo: ""})))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	nr := Normalize(TemplateFixed, res.Rows[0])
	if nr.Record.OrderNo != "ORD-1" {
		t.Fatalf("defaulted order no = %q, want ORD-1", nr.Record.OrderNo)
	}
}

func TestNormalizeFixedNonNumericDefaultsToZero(t *testing.T) {
	res, err := Decode(TemplateFixed, fixedCSV(fixedRow(map[int]string{colWeightLbs: "heavy"})))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	nr := Normalize(TemplateFixed, res.Rows[0])
	if nr.Record.Package.WeightLbs != 0 {
		t.Fatalf("weight lbs = %v, want 0", nr.Record.Package.WeightLbs)
	}
	// The raw text survives for the validator to flag.
	if nr.rawWeightLbs != "heavy" {
		t.Fatalf("raw weight lbs = %q, want heavy", nr.rawWeightLbs)
	}
}

func TestNormalizeNamedSplitsFullName(t *testing.T) {
	res, err := Decode(TemplateNamed, namedCSV(
		"ORD-1,Mary Jane Watson,1 Main St,Austin,TX,78701,Cher,2 Oak Ave,Denver,CO,80202,2.25,10,6,4,mugs",
	))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	nr := Normalize(TemplateNamed, res.Rows[0])
	rec := nr.Record

	if rec.ShipFrom.FirstName != "Mary Jane" || rec.ShipFrom.LastName != "Watson" {
		t.Fatalf("from name split = %q / %q", rec.ShipFrom.FirstName, rec.ShipFrom.LastName)
	}
	// Single-word names land entirely in the first-name field.
	if rec.ShipTo.FirstName != "Cher" || rec.ShipTo.LastName != "" {
		t.Fatalf("to name split = %q / %q", rec.ShipTo.FirstName, rec.ShipTo.LastName)
	}
	if rec.Package.WeightLbs != 2.25 || rec.Package.WeightOz != 0 {
		t.Fatalf("named weight = %v lbs %v oz", rec.Package.WeightLbs, rec.Package.WeightOz)
	}
	if rec.Package.Description != "mugs" {
		t.Fatalf("description = %q", rec.Package.Description)
	}
	if rec.Service != domain.ServiceGround {
		t.Fatalf("default service = %q", rec.Service)
	}
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in, first, last string
	}{
		{"Ann Smith", "Ann", "Smith"},
		{"Mary Jane Watson", "Mary Jane", "Watson"},
		{"Cher", "Cher", ""},
		{"  Ann   Smith  ", "Ann", "Smith"},
		{"", "", ""},
	}
	for _, tc := range cases {
		first, last := splitName(tc.in)
		if first != tc.first || last != tc.last {
			t.Fatalf("splitName(%q) = %q / %q, want %q / %q", tc.in, first, last, tc.first, tc.last)
		}
	}
}

func TestNormalizeFixedTracksBothWeightFields(t *testing.T) {
	res, err := Decode(TemplateFixed, fixedCSV(fixedRow(map[int]string{colWeightLbs: "", colWeightOz: "12"})))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	nr := Normalize(TemplateFixed, res.Rows[0])
	if nr.rawWeightLbs != "" || nr.rawWeightOz != "12" {
		t.Fatalf("raw weight = %q / %q, want empty lbs and 12 oz", nr.rawWeightLbs, nr.rawWeightOz)
	}
}
