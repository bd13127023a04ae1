// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by shipcore.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityBatch identifies an uploaded shipment batch.
	EntityBatch EntityType = "batch"
	// EntityShipment identifies one shipment record within a batch.
	EntityShipment EntityType = "shipment"
	// EntitySavedAddress identifies a reusable address resource.
	EntitySavedAddress EntityType = "saved_address"
	// EntitySavedPackage identifies a reusable package preset resource.
	EntitySavedPackage EntityType = "saved_package"
)

// ServiceTier enumerates the carrier speed options offered at checkout.
type ServiceTier string

// Canonical service tiers. Ground is the default applied at ingest time.
const (
	ServicePriority ServiceTier = "priority"
	ServiceGround   ServiceTier = "ground"
)

// ValidServiceTier reports whether tier is one of the offered services.
func ValidServiceTier(tier ServiceTier) bool {
	return tier == ServicePriority || tier == ServiceGround
}

// BatchStatus tracks a batch through the upload wizard lifecycle.
type BatchStatus string

// Batch lifecycle states. Purchased batches are immutable.
const (
	BatchUploaded         BatchStatus = "uploaded"
	BatchReviewed         BatchStatus = "reviewed"
	BatchShippingSelected BatchStatus = "shipping_selected"
	BatchPurchased        BatchStatus = "purchased"
	BatchFailed           BatchStatus = "failed"
)

// ShipmentStatus summarizes a record's readiness for label purchase.
type ShipmentStatus string

// Shipment readiness states derived from validation.
const (
	// ShipmentValid indicates the record passed all field constraints.
	ShipmentValid ShipmentStatus = "valid"
	// ShipmentIncomplete indicates a structurally fine record with zero weight.
	ShipmentIncomplete ShipmentStatus = "incomplete"
	// ShipmentError indicates one or more field constraint violations.
	ShipmentError ShipmentStatus = "error"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Action enumerates mutation kinds captured in Change records.
type Action string

// Mutation kinds recorded by transactions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Address is a ship-from or ship-to postal address. State is a two-letter
// US state or territory abbreviation; Zip is 5 digits or ZIP+4.
type Address struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip_code"`
	Phone        string `json:"phone,omitempty"`
}

// FullName joins the first and last name, omitting empty parts.
func (a Address) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// Package holds the physical parcel dimensions and weight. Weight is split
// into whole pounds plus ounces (0 <= oz < 16 in well-formed input).
type Package struct {
	LengthInches float64 `json:"length_inches"`
	WidthInches  float64 `json:"width_inches"`
	HeightInches float64 `json:"height_inches"`
	WeightLbs    float64 `json:"weight_lbs"`
	WeightOz     float64 `json:"weight_oz"`
	SKU          string  `json:"sku,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// TotalOunces returns the package weight as a single ounce quantity.
func (p Package) TotalOunces() float64 {
	return p.WeightLbs*16 + p.WeightOz
}

// WeightPounds returns the package weight as a single decimal pound quantity.
func (p Package) WeightPounds() float64 {
	return p.WeightLbs + p.WeightOz/16
}

// Validation carries the outcome of row validation for one shipment record.
// Errors are ordered as the checks ran; Warnings flag lenient fields (phone)
// that are stored even when malformed.
type Validation struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ShipmentRecord is one shipment's ship-from, ship-to, package, and
// service/price data. Seq preserves CSV row order within the batch.
type ShipmentRecord struct {
	Base
	BatchID    string         `json:"batch_id"`
	Seq        int            `json:"seq"`
	OrderNo    string         `json:"order_no"`
	ShipFrom   Address        `json:"ship_from"`
	ShipTo     Address        `json:"ship_to"`
	Package    Package        `json:"package"`
	Service    ServiceTier    `json:"shipping_service"`
	Price      float64        `json:"price"`
	Status     ShipmentStatus `json:"status"`
	Validation Validation     `json:"validation"`
}

// Batch is an ordered collection of shipment records created from one CSV
// upload and tracked as a unit through the wizard.
type Batch struct {
	Base
	Name        string      `json:"name"`
	Status      BatchStatus `json:"status"`
	LabelFormat string      `json:"label_format,omitempty"`
	TotalPrice  float64     `json:"total_price"`
}

// SavedAddress is a reusable address resource targeted by bulk
// change_address actions.
type SavedAddress struct {
	Base
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// SavedPackage is a reusable package preset targeted by bulk
// change_package actions.
type SavedPackage struct {
	Base
	Name    string  `json:"name"`
	Package Package `json:"package"`
}

// Change describes one mutation applied within a transaction.
type Change struct {
	Entity EntityType `json:"entity"`
	Action Action     `json:"action"`
	ID     string     `json:"id"`
}

// Violation reports a single rule outcome against an entity.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates rule violations produced during a transaction.
type Result struct {
	Violations []Violation
}

// Merge appends the other result's violations.
func (r *Result) Merge(other Result) {
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking reports whether any violation carries block severity.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return fmt.Sprintf("rule %s: %s", v.Rule, v.Message)
		}
	}
	return "rule violation"
}
