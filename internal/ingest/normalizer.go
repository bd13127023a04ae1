package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"shipcore/pkg/domain"
)

// NormalizedRow pairs a not-yet-validated shipment record with the raw
// numeric field text the validator needs to distinguish "non-numeric" from
// "zero".
type NormalizedRow struct {
	Record domain.ShipmentRecord
	Row    int

	rawWeightLbs string
	rawWeightOz  string
	rawLength    string
	rawWidth     string
	rawHeight    string
}

// Normalize maps one raw row onto the shipment record shape. Missing numeric
// fields default to 0 and missing strings to "". The record ID is generated
// here; validity stays false until the validator runs.
func Normalize(mode TemplateMode, row RawRow) NormalizedRow {
	if mode == TemplateNamed {
		return normalizeNamed(row)
	}
	return normalizeFixed(row)
}

func normalizeFixed(row RawRow) NormalizedRow {
	rec := domain.ShipmentRecord{
		Seq:     row.Row,
		OrderNo: defaultOrderNo(row.Field(colOrderNo), row.Row),
		ShipFrom: domain.Address{
			FirstName:    row.Field(colFromFirstName),
			LastName:     row.Field(colFromLastName),
			AddressLine1: row.Field(colFromAddress1),
			AddressLine2: row.Field(colFromAddress2),
			City:         row.Field(colFromCity),
			State:        row.Field(colFromState),
			Zip:          row.Field(colFromZip),
			Phone:        row.Field(colPhone1),
		},
		ShipTo: domain.Address{
			FirstName:    row.Field(colToFirstName),
			LastName:     row.Field(colToLastName),
			AddressLine1: row.Field(colToAddress1),
			AddressLine2: row.Field(colToAddress2),
			City:         row.Field(colToCity),
			State:        row.Field(colToState),
			Zip:          row.Field(colToZip),
			Phone:        row.Field(colPhone2),
		},
		Package: domain.Package{
			WeightLbs:    parseNumber(row.Field(colWeightLbs)),
			WeightOz:     parseNumber(row.Field(colWeightOz)),
			LengthInches: parseNumber(row.Field(colLength)),
			WidthInches:  parseNumber(row.Field(colWidth)),
			HeightInches: parseNumber(row.Field(colHeight)),
			SKU:          row.Field(colSKU),
		},
		Service: domain.ServiceGround,
	}
	rec.ID = newRecordID()
	return NormalizedRow{
		Record:       rec,
		Row:          row.Row,
		rawWeightLbs: row.Field(colWeightLbs),
		rawWeightOz:  row.Field(colWeightOz),
		rawLength:    row.Field(colLength),
		rawWidth:     row.Field(colWidth),
		rawHeight:    row.Field(colHeight),
	}
}

func normalizeNamed(row RawRow) NormalizedRow {
	fromFirst, fromLast := splitName(row.Value(hdrFromName))
	toFirst, toLast := splitName(row.Value(hdrToName))
	rec := domain.ShipmentRecord{
		Seq:     row.Row,
		OrderNo: defaultOrderNo(row.Value(hdrOrderNumber), row.Row),
		ShipFrom: domain.Address{
			FirstName:    fromFirst,
			LastName:     fromLast,
			AddressLine1: row.Value(hdrFromAddress),
			City:         row.Value(hdrFromCity),
			State:        row.Value(hdrFromState),
			Zip:          row.Value(hdrFromZip),
		},
		ShipTo: domain.Address{
			FirstName:    toFirst,
			LastName:     toLast,
			AddressLine1: row.Value(hdrToAddress),
			City:         row.Value(hdrToCity),
			State:        row.Value(hdrToState),
			Zip:          row.Value(hdrToZip),
		},
		Package: domain.Package{
			WeightLbs:    parseNumber(row.Value(hdrWeight)),
			LengthInches: parseNumber(row.Value(hdrLength)),
			WidthInches:  parseNumber(row.Value(hdrWidth)),
			HeightInches: parseNumber(row.Value(hdrHeight)),
			Description:  row.Value(hdrDescription),
		},
		Service: domain.ServiceGround,
	}
	rec.ID = newRecordID()
	return NormalizedRow{
		Record:       rec,
		Row:          row.Row,
		rawWeightLbs: row.Value(hdrWeight),
		rawLength:    row.Value(hdrLength),
		rawWidth:     row.Value(hdrWidth),
		rawHeight:    row.Value(hdrHeight),
	}
}

func newRecordID() string {
	return "SHP-" + uuid.NewString()
}

// splitName divides a full name at the last space. A single-word name lands
// entirely in the first-name field.
func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if idx := strings.LastIndex(full, " "); idx > 0 {
		return strings.TrimSpace(full[:idx]), strings.TrimSpace(full[idx+1:])
	}
	return full, ""
}

func defaultOrderNo(orderNo string, row int) string {
	if orderNo != "" {
		return orderNo
	}
	return fmt.Sprintf("ORD-%d", row)
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
