package core

import (
	"fmt"
	"strings"
	"time"

	"shipcore/pkg/domain"
)

// LabelFormat selects the page layout recorded with a purchase. Rendering is
// delegated to the carrier backend; the format travels with the manifest.
type LabelFormat string

const (
	LabelFormatPDF       LabelFormat = "pdf"
	LabelFormat4x6       LabelFormat = "pdf_4x6"
	DefaultLabelFormat               = LabelFormatPDF
)

// ValidLabelFormat reports whether f is a supported label format.
func ValidLabelFormat(f LabelFormat) bool {
	return f == LabelFormatPDF || f == LabelFormat4x6
}

// labelManifest renders the plain-text manifest stored alongside a purchased
// batch: one block per record with addresses, service, and price, preceded
// by a batch header.
func labelManifest(batch domain.Batch, records []domain.ShipmentRecord, total float64, purchasedAt time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "BATCH %s (%s)\n", batch.ID, batch.Name)
	fmt.Fprintf(&b, "FORMAT %s\n", batch.LabelFormat)
	fmt.Fprintf(&b, "PURCHASED %s\n", purchasedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "RECORDS %d TOTAL %.2f\n", len(records), total)
	for _, rec := range records {
		fmt.Fprintf(&b, "\n-- %s (%s)\n", rec.ID, rec.OrderNo)
		fmt.Fprintf(&b, "FROM %s, %s, %s, %s %s\n",
			rec.ShipFrom.FullName(), rec.ShipFrom.AddressLine1, rec.ShipFrom.City, rec.ShipFrom.State, rec.ShipFrom.Zip)
		fmt.Fprintf(&b, "TO   %s, %s, %s, %s %s\n",
			rec.ShipTo.FullName(), rec.ShipTo.AddressLine1, rec.ShipTo.City, rec.ShipTo.State, rec.ShipTo.Zip)
		fmt.Fprintf(&b, "PKG  %.1f lb %.1f oz  %s %.2f\n",
			rec.Package.WeightLbs, rec.Package.WeightOz, rec.Service, rec.Price)
	}
	return []byte(b.String())
}

// labelKey is the blob key of a batch's purchased label manifest.
func labelKey(batchID string) string {
	return fmt.Sprintf("batches/%s/labels.txt", batchID)
}

// sourceKey is the blob key of a batch's original uploaded CSV.
func sourceKey(batchID string) string {
	return fmt.Sprintf("batches/%s/source.csv", batchID)
}
