package memory

import (
	"fmt"
	"time"

	"shipcore/pkg/domain"
)

// transaction mutates a private clone of the store state. Changes are
// recorded for rule evaluation; nothing is visible outside the
// transaction until commit.
type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

var _ Transaction = (*transaction)(nil)

func (t *transaction) record(entity domain.EntityType, action domain.Action, id string) {
	t.changes = append(t.changes, Change{Entity: entity, Action: action, ID: id})
}

// Snapshot returns a read-only view over the transaction's working state.
func (t *transaction) Snapshot() TransactionView {
	return newTransactionView(&t.state)
}

func (t *transaction) CreateBatch(b Batch) (Batch, error) {
	if b.ID == "" {
		b.ID = newID()
	}
	if _, exists := t.state.batches[b.ID]; exists {
		return Batch{}, fmt.Errorf("batch %s already exists", b.ID)
	}
	b.CreatedAt = t.now
	b.UpdatedAt = t.now
	if b.Status == "" {
		b.Status = domain.BatchUploaded
	}
	t.state.batches[b.ID] = b
	t.record(domain.EntityBatch, domain.ActionCreate, b.ID)
	return b, nil
}

func (t *transaction) UpdateBatch(id string, mutator func(*Batch) error) (Batch, error) {
	b, ok := t.state.batches[id]
	if !ok {
		return Batch{}, ErrNotFound{Entity: domain.EntityBatch, ID: id}
	}
	if err := mutator(&b); err != nil {
		return Batch{}, err
	}
	b.ID = id
	b.UpdatedAt = t.now
	t.state.batches[id] = b
	t.record(domain.EntityBatch, domain.ActionUpdate, id)
	return b, nil
}

func (t *transaction) DeleteBatch(id string) error {
	if _, ok := t.state.batches[id]; !ok {
		return ErrNotFound{Entity: domain.EntityBatch, ID: id}
	}
	for sid, rec := range t.state.shipments {
		if rec.BatchID == id {
			delete(t.state.shipments, sid)
			t.record(domain.EntityShipment, domain.ActionDelete, sid)
		}
	}
	delete(t.state.batches, id)
	t.record(domain.EntityBatch, domain.ActionDelete, id)
	return nil
}

func (t *transaction) CreateShipment(rec ShipmentRecord) (ShipmentRecord, error) {
	if rec.ID == "" {
		rec.ID = "SHP-" + newID()
	}
	if _, exists := t.state.shipments[rec.ID]; exists {
		return ShipmentRecord{}, fmt.Errorf("shipment %s already exists", rec.ID)
	}
	if _, ok := t.state.batches[rec.BatchID]; !ok {
		return ShipmentRecord{}, ErrNotFound{Entity: domain.EntityBatch, ID: rec.BatchID}
	}
	rec.CreatedAt = t.now
	rec.UpdatedAt = t.now
	t.state.shipments[rec.ID] = cloneShipment(rec)
	t.record(domain.EntityShipment, domain.ActionCreate, rec.ID)
	return rec, nil
}

func (t *transaction) UpdateShipment(id string, mutator func(*ShipmentRecord) error) (ShipmentRecord, error) {
	rec, ok := t.state.shipments[id]
	if !ok {
		return ShipmentRecord{}, ErrNotFound{Entity: domain.EntityShipment, ID: id}
	}
	working := cloneShipment(rec)
	if err := mutator(&working); err != nil {
		return ShipmentRecord{}, err
	}
	working.ID = id
	working.BatchID = rec.BatchID
	working.UpdatedAt = t.now
	t.state.shipments[id] = cloneShipment(working)
	t.record(domain.EntityShipment, domain.ActionUpdate, id)
	return working, nil
}

func (t *transaction) DeleteShipment(id string) error {
	if _, ok := t.state.shipments[id]; !ok {
		return ErrNotFound{Entity: domain.EntityShipment, ID: id}
	}
	delete(t.state.shipments, id)
	t.record(domain.EntityShipment, domain.ActionDelete, id)
	return nil
}

func (t *transaction) CreateSavedAddress(a SavedAddress) (SavedAddress, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	if _, exists := t.state.addresses[a.ID]; exists {
		return SavedAddress{}, fmt.Errorf("saved address %s already exists", a.ID)
	}
	a.CreatedAt = t.now
	a.UpdatedAt = t.now
	t.state.addresses[a.ID] = a
	t.record(domain.EntitySavedAddress, domain.ActionCreate, a.ID)
	return a, nil
}

func (t *transaction) DeleteSavedAddress(id string) error {
	if _, ok := t.state.addresses[id]; !ok {
		return ErrNotFound{Entity: domain.EntitySavedAddress, ID: id}
	}
	delete(t.state.addresses, id)
	t.record(domain.EntitySavedAddress, domain.ActionDelete, id)
	return nil
}

func (t *transaction) CreateSavedPackage(p SavedPackage) (SavedPackage, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if _, exists := t.state.packages[p.ID]; exists {
		return SavedPackage{}, fmt.Errorf("saved package %s already exists", p.ID)
	}
	p.CreatedAt = t.now
	p.UpdatedAt = t.now
	t.state.packages[p.ID] = p
	t.record(domain.EntitySavedPackage, domain.ActionCreate, p.ID)
	return p, nil
}

func (t *transaction) DeleteSavedPackage(id string) error {
	if _, ok := t.state.packages[id]; !ok {
		return ErrNotFound{Entity: domain.EntitySavedPackage, ID: id}
	}
	delete(t.state.packages, id)
	t.record(domain.EntitySavedPackage, domain.ActionDelete, id)
	return nil
}

func (t *transaction) FindBatch(id string) (Batch, bool) {
	b, ok := t.state.batches[id]
	return b, ok
}

func (t *transaction) FindShipment(id string) (ShipmentRecord, bool) {
	rec, ok := t.state.shipments[id]
	if !ok {
		return ShipmentRecord{}, false
	}
	return cloneShipment(rec), true
}

func (t *transaction) FindSavedAddress(id string) (SavedAddress, bool) {
	a, ok := t.state.addresses[id]
	return a, ok
}

func (t *transaction) FindSavedPackage(id string) (SavedPackage, bool) {
	p, ok := t.state.packages[id]
	return p, ok
}

// transactionView adapts a memoryState to the read-only rule view.
type transactionView struct {
	state *memoryState
}

var _ TransactionView = transactionView{}

func newTransactionView(state *memoryState) transactionView {
	return transactionView{state: state}
}

func (v transactionView) ListBatches() []Batch {
	out := make([]Batch, 0, len(v.state.batches))
	for _, b := range v.state.batches {
		out = append(out, b)
	}
	return out
}

func (v transactionView) ListShipments() []ShipmentRecord {
	return shipmentsInOrder(v.state, "")
}

func (v transactionView) ShipmentsInBatch(batchID string) []ShipmentRecord {
	return shipmentsInOrder(v.state, batchID)
}

func (v transactionView) FindBatch(id string) (Batch, bool) {
	b, ok := v.state.batches[id]
	return b, ok
}

func (v transactionView) FindShipment(id string) (ShipmentRecord, bool) {
	rec, ok := v.state.shipments[id]
	if !ok {
		return ShipmentRecord{}, false
	}
	return cloneShipment(rec), true
}

func (v transactionView) FindSavedAddress(id string) (SavedAddress, bool) {
	a, ok := v.state.addresses[id]
	return a, ok
}

func (v transactionView) FindSavedPackage(id string) (SavedPackage, bool) {
	p, ok := v.state.packages[id]
	return p, ok
}
