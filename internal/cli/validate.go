package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shipcore/internal/ingest"
	"shipcore/internal/pricing"
)

func newValidateCommand() *cobra.Command {
	var named bool
	cmd := &cobra.Command{
		Use:   "validate <file.csv>",
		Short: "Dry-run the ingest pipeline over a CSV file",
		Long:  "Decode, validate, and price a shipment CSV without persisting anything, then print the ingest report.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := ingest.TemplateFixed
			if named {
				mode = ingest.TemplateNamed
			}
			return runValidate(cmd, args[0], mode)
		},
	}
	cmd.Flags().BoolVar(&named, "named-headers", false, "treat the first row as column headers")
	return cmd
}

func runValidate(cmd *cobra.Command, path string, mode ingest.TemplateMode) error {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	pipeline := ingest.Pipeline{Mode: mode}
	records, report, err := pipeline.Run(path, data)
	if err != nil {
		return err
	}

	rates, err := pricing.OpenTable()
	if err != nil {
		return err
	}
	var shipping float64
	for _, rec := range records {
		price, err := rates.Price(rec.Package, rec.Service)
		if err != nil {
			return err
		}
		shipping += price
	}
	labelFees := float64(len(records)) * rates.LabelFee

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "records:  %d (%d valid, %d invalid)\n", report.Total, report.Valid, report.Invalid)
	fmt.Fprintf(out, "skipped:  %d malformed rows\n", report.Skipped)
	fmt.Fprintf(out, "estimate: %.2f shipping + %.2f label fees = %.2f\n",
		pricing.Round2(shipping), pricing.Round2(labelFees), pricing.Round2(shipping+labelFees))
	if report.ErrorCount > 0 {
		fmt.Fprintf(out, "errors (%d total):\n", report.ErrorCount)
		for _, msg := range report.ErrorPreview {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
		if remaining := report.ErrorCount - len(report.ErrorPreview); remaining > 0 {
			fmt.Fprintf(out, "  ... and %d more\n", remaining)
		}
	}
	return nil
}
