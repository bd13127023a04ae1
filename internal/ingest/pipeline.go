// Package ingest implements the shipment batch ingestion pipeline: CSV
// decoding, row normalization, and row-level validation. Decoding and
// validation are pure single-pass transforms over in-memory data; pricing
// and batch aggregation live in their own packages.
package ingest

import "shipcore/pkg/domain"

// errorPreviewLimit bounds the number of validation messages surfaced in a
// report regardless of batch size.
const errorPreviewLimit = 5

// Report summarizes one ingest run for the caller and the UI.
type Report struct {
	Total        int      `json:"total_records"`
	Valid        int      `json:"valid_records"`
	Invalid      int      `json:"invalid_records"`
	Skipped      int      `json:"skipped_rows"`
	ErrorCount   int      `json:"error_count"`
	ErrorPreview []string `json:"error_preview,omitempty"`
}

// Pipeline runs decode, normalize, and validate over one uploaded file.
type Pipeline struct {
	Mode TemplateMode
}

// Run processes raw file bytes into validated (but unpriced) shipment
// records. The filename extension is checked before any decoding; row
// validation errors never abort the run.
func (p Pipeline) Run(filename string, data []byte) ([]domain.ShipmentRecord, Report, error) {
	if err := CheckFilename(filename); err != nil {
		return nil, Report{}, err
	}

	decoded, err := Decode(p.mode(), data)
	if err != nil {
		return nil, Report{}, err
	}

	records := make([]domain.ShipmentRecord, 0, len(decoded.Rows))
	report := Report{Skipped: decoded.Skipped}
	var allErrors []string
	for _, row := range decoded.Rows {
		nr := Normalize(p.mode(), row)
		nr.Record.Validation = ValidateRow(nr)
		nr.Record.Status = ShipmentStatus(nr.Record)
		records = append(records, nr.Record)

		report.Total++
		if nr.Record.Validation.IsValid {
			report.Valid++
		} else {
			report.Invalid++
			allErrors = append(allErrors, nr.Record.Validation.Errors...)
		}
	}

	report.ErrorCount = len(allErrors)
	if len(allErrors) > errorPreviewLimit {
		report.ErrorPreview = allErrors[:errorPreviewLimit]
	} else {
		report.ErrorPreview = allErrors
	}
	return records, report, nil
}

func (p Pipeline) mode() TemplateMode {
	if p.Mode == "" {
		return TemplateFixed
	}
	return p.Mode
}
