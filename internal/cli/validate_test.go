package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, name string, rows ...string) string {
	t.Helper()
	lines := append([]string{"header one", "header two"}, rows...)
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func csvRow(orderNo, toLast, toZip string) string {
	return strings.Join([]string{
		"Ann", "Smith", "1 Main St", "", "Austin", "78701", "TX",
		"Bob", toLast, "2 Oak Ave", "", "Denver", toZip, "CO",
		"1", "0", "10", "6", "4",
		"", "", orderNo, "",
	}, ",")
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SHIPCORE_PRICING_FORMULA", "")
	t.Setenv("SHIPCORE_PRICING_CONFIG", "")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	path := writeCSV(t, "orders.csv",
		csvRow("ORD-1", "Jones", "80202"),
		csvRow("ORD-2", "Jones", "80202"),
	)

	out, err := runCommand(t, "validate", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "records:  2 (2 valid, 0 invalid)") {
		t.Fatalf("output = %q", out)
	}
	// Two 16 oz ground records under the per-ounce defaults.
	if !strings.Contains(out, "estimate: 6.60 shipping + 1.00 label fees = 7.60") {
		t.Fatalf("output = %q", out)
	}
	if strings.Contains(out, "errors (") {
		t.Fatalf("unexpected error section: %q", out)
	}
}

func TestValidateCommandReportsRowErrors(t *testing.T) {
	path := writeCSV(t, "orders.csv",
		csvRow("ORD-1", "Jones", "80202"),
		csvRow("ORD-2", "", "nope"),
	)

	out, err := runCommand(t, "validate", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "records:  2 (1 valid, 1 invalid)") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "Row 2: Ship To Last Name is required") {
		t.Fatalf("output = %q", out)
	}
}

func TestValidateCommandRejectsNonCSV(t *testing.T) {
	path := writeCSV(t, "orders.txt", csvRow("ORD-1", "Jones", "80202"))
	if _, err := runCommand(t, "validate", path); err == nil {
		t.Fatal("non-CSV filename accepted")
	}
}

func TestValidateCommandMissingFile(t *testing.T) {
	if _, err := runCommand(t, "validate", filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("missing file accepted")
	}
}
