package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"shipcore/pkg/domain"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// ValidateRow applies the field constraints to one normalized row and
// returns the validation outcome. Checks run in a fixed order so repeated
// validation of an unchanged row yields an identical error list. Validation
// never halts the batch; every decoded row is processed.
func ValidateRow(nr NormalizedRow) domain.Validation {
	v := validateAddresses(nr.Record, nr.Row)

	appendNumeric := func(raw, field string) {
		if raw == "" || !numeric(raw) {
			v.Errors = append(v.Errors, fmt.Sprintf("Row %d: %s must be a number", nr.Row, field))
		}
	}
	if !weightNumeric(nr.rawWeightLbs, nr.rawWeightOz) {
		v.Errors = append(v.Errors, fmt.Sprintf("Row %d: Weight must be a number", nr.Row))
	}
	appendNumeric(nr.rawLength, "Length")
	appendNumeric(nr.rawWidth, "Width")
	appendNumeric(nr.rawHeight, "Height")

	v.IsValid = len(v.Errors) == 0
	return v
}

// ValidateRecord re-runs the address constraints against an already-edited
// record, where numeric fields are structurally guaranteed. Used after
// single-record edits and bulk applies.
func ValidateRecord(rec domain.ShipmentRecord) domain.Validation {
	v := validateAddresses(rec, rec.Seq)
	v.IsValid = len(v.Errors) == 0
	return v
}

func validateAddresses(rec domain.ShipmentRecord, row int) domain.Validation {
	var v domain.Validation
	v.Errors = append(v.Errors, addressErrors(rec.ShipFrom, "Ship From", row)...)
	v.Errors = append(v.Errors, addressErrors(rec.ShipTo, "Ship To", row)...)
	v.Warnings = append(v.Warnings, phoneWarnings(rec.ShipFrom, "Ship From", row)...)
	v.Warnings = append(v.Warnings, phoneWarnings(rec.ShipTo, "Ship To", row)...)
	return v
}

func addressErrors(addr domain.Address, side string, row int) []string {
	var errs []string
	if addr.FirstName == "" {
		errs = append(errs, fmt.Sprintf("Row %d: %s First Name is required", row, side))
	}
	if addr.LastName == "" {
		errs = append(errs, fmt.Sprintf("Row %d: %s Last Name is required", row, side))
	}
	if addr.AddressLine1 == "" {
		errs = append(errs, fmt.Sprintf("Row %d: %s Address is required", row, side))
	}
	if addr.City == "" {
		errs = append(errs, fmt.Sprintf("Row %d: %s City is required", row, side))
	}
	if !ValidState(addr.State) {
		errs = append(errs, fmt.Sprintf("Row %d: Invalid %s State", row, side))
	}
	if !zipPattern.MatchString(addr.Zip) {
		errs = append(errs, fmt.Sprintf("Row %d: Invalid %s ZIP format", row, side))
	}
	return errs
}

// phoneWarnings flags phones that do not normalize to exactly 10 digits.
// Phones are lenient: stored as given, flagged but never invalidating.
func phoneWarnings(addr domain.Address, side string, row int) []string {
	if addr.Phone == "" {
		return nil
	}
	if len(NormalizePhone(addr.Phone)) != 10 {
		return []string{fmt.Sprintf("Row %d: %s phone is not 10 digits", row, side)}
	}
	return nil
}

// NormalizePhone strips every non-digit character from a phone field.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ShipmentStatus derives the record readiness state from its validation and
// weight: constraint violations take precedence, then zero total weight.
func ShipmentStatus(rec domain.ShipmentRecord) domain.ShipmentStatus {
	if !rec.Validation.IsValid {
		return domain.ShipmentError
	}
	if rec.Package.TotalOunces() == 0 {
		return domain.ShipmentIncomplete
	}
	return domain.ShipmentValid
}

func numeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// weightNumeric checks the pounds and ounces fields together: at least one
// must be present, and every populated field must parse. A numeric pounds
// field never masks malformed ounces text.
func weightNumeric(lbs, oz string) bool {
	if lbs == "" && oz == "" {
		return false
	}
	for _, s := range []string{lbs, oz} {
		if s != "" && !numeric(s) {
			return false
		}
	}
	return true
}
