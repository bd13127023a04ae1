package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateBatch(Batch) (Batch, error)
	UpdateBatch(id string, mutator func(*Batch) error) (Batch, error)
	DeleteBatch(id string) error
	CreateShipment(ShipmentRecord) (ShipmentRecord, error)
	UpdateShipment(id string, mutator func(*ShipmentRecord) error) (ShipmentRecord, error)
	DeleteShipment(id string) error
	CreateSavedAddress(SavedAddress) (SavedAddress, error)
	DeleteSavedAddress(id string) error
	CreateSavedPackage(SavedPackage) (SavedPackage, error)
	DeleteSavedPackage(id string) error
	FindBatch(id string) (Batch, bool)
	FindShipment(id string) (ShipmentRecord, bool)
	FindSavedAddress(id string) (SavedAddress, bool)
	FindSavedPackage(id string) (SavedPackage, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetBatch(id string) (Batch, bool)
	ListBatches() []Batch
	GetShipment(id string) (ShipmentRecord, bool)
	ListShipments(batchID string) []ShipmentRecord
	GetSavedAddress(id string) (SavedAddress, bool)
	ListSavedAddresses() []SavedAddress
	GetSavedPackage(id string) (SavedPackage, bool)
	ListSavedPackages() []SavedPackage
}
