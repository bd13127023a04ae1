package core

import "shipcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	ServiceTier        = domain.ServiceTier
	BatchStatus        = domain.BatchStatus
	ShipmentStatus     = domain.ShipmentStatus
	Severity           = domain.Severity
	Base               = domain.Base
	Address            = domain.Address
	Package            = domain.Package
	Validation         = domain.Validation
	ShipmentRecord     = domain.ShipmentRecord
	Batch              = domain.Batch
	SavedAddress       = domain.SavedAddress
	SavedPackage       = domain.SavedPackage
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityBatch        = domain.EntityBatch
	EntityShipment     = domain.EntityShipment
	EntitySavedAddress = domain.EntitySavedAddress
	EntitySavedPackage = domain.EntitySavedPackage
)

const (
	ServicePriority = domain.ServicePriority
	ServiceGround   = domain.ServiceGround
)

const (
	BatchUploaded         = domain.BatchUploaded
	BatchReviewed         = domain.BatchReviewed
	BatchShippingSelected = domain.BatchShippingSelected
	BatchPurchased        = domain.BatchPurchased
	BatchFailed           = domain.BatchFailed
)

const (
	ShipmentValid      = domain.ShipmentValid
	ShipmentIncomplete = domain.ShipmentIncomplete
	ShipmentError      = domain.ShipmentError
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
