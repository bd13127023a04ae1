package ingest

// TemplateMode selects how raw CSV rows are mapped onto shipment records.
type TemplateMode string

// Template variants supported by the decoder and normalizer.
const (
	// TemplateFixed is the 23-column template distributed to customers:
	// ship-from block, ship-to block, weight, dimensions, phones, order
	// number, SKU. The first two rows are human-readable headers.
	TemplateFixed TemplateMode = "fixed"
	// TemplateNamed maps columns by the header names in the first row
	// ("Ship From Name", "Ship To ZIP", ...).
	TemplateNamed TemplateMode = "named"
)

// Fixed-position template column indexes. The column-order contract is
// declared once here and validated at decode time rather than trusted
// implicitly at every field access.
const (
	colFromFirstName = iota
	colFromLastName
	colFromAddress1
	colFromAddress2
	colFromCity
	colFromZip
	colFromState
	colToFirstName
	colToLastName
	colToAddress1
	colToAddress2
	colToCity
	colToZip
	colToState
	colWeightLbs
	colWeightOz
	colLength
	colWidth
	colHeight
	colPhone1
	colPhone2
	colOrderNo
	colSKU

	// fixedColumnCount is the minimum field count for a usable fixed row.
	fixedColumnCount = 23
)

// fixedHeaderRows is the number of leading template rows reserved for
// human-readable headers in the fixed template.
const fixedHeaderRows = 2

// maxDataRows caps one upload; larger files are rejected before ingest.
const maxDataRows = 500

// Named-template header names, matching the customer-facing column titles.
const (
	hdrFromName    = "Ship From Name"
	hdrFromAddress = "Ship From Address"
	hdrFromCity    = "Ship From City"
	hdrFromState   = "Ship From State"
	hdrFromZip     = "Ship From ZIP"
	hdrToName      = "Ship To Name"
	hdrToAddress   = "Ship To Address"
	hdrToCity      = "Ship To City"
	hdrToState     = "Ship To State"
	hdrToZip       = "Ship To ZIP"
	hdrWeight      = "Weight"
	hdrLength      = "Length"
	hdrWidth       = "Width"
	hdrHeight      = "Height"
	hdrDescription = "Description"
	hdrOrderNumber = "Order Number"
)
