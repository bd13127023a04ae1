// Package memory provides an in-memory implementation of the core
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"shipcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the
// domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Batch aliases domain.Batch for in-memory persistence operations.
	Batch = domain.Batch
	// ShipmentRecord aliases domain.ShipmentRecord.
	ShipmentRecord = domain.ShipmentRecord
	// SavedAddress aliases domain.SavedAddress.
	SavedAddress = domain.SavedAddress
	// SavedPackage aliases domain.SavedPackage.
	SavedPackage = domain.SavedPackage
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	batches   map[string]Batch
	shipments map[string]ShipmentRecord
	addresses map[string]SavedAddress
	packages  map[string]SavedPackage
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Batches   map[string]Batch          `json:"batches"`
	Shipments map[string]ShipmentRecord `json:"shipments"`
	Addresses map[string]SavedAddress   `json:"addresses"`
	Packages  map[string]SavedPackage   `json:"packages"`
}

func newMemoryState() memoryState {
	return memoryState{
		batches:   make(map[string]Batch),
		shipments: make(map[string]ShipmentRecord),
		addresses: make(map[string]SavedAddress),
		packages:  make(map[string]SavedPackage),
	}
}

func cloneShipment(rec ShipmentRecord) ShipmentRecord {
	out := rec
	out.Validation.Errors = append([]string(nil), rec.Validation.Errors...)
	out.Validation.Warnings = append([]string(nil), rec.Validation.Warnings...)
	return out
}

func (s memoryState) clone() memoryState {
	out := newMemoryState()
	for k, v := range s.batches {
		out.batches[k] = v
	}
	for k, v := range s.shipments {
		out.shipments[k] = cloneShipment(v)
	}
	for k, v := range s.addresses {
		out.addresses[k] = v
	}
	for k, v := range s.packages {
		out.packages[k] = v
	}
	return out
}

func snapshotFromState(state memoryState) Snapshot {
	s := Snapshot{
		Batches:   make(map[string]Batch, len(state.batches)),
		Shipments: make(map[string]ShipmentRecord, len(state.shipments)),
		Addresses: make(map[string]SavedAddress, len(state.addresses)),
		Packages:  make(map[string]SavedPackage, len(state.packages)),
	}
	for k, v := range state.batches {
		s.Batches[k] = v
	}
	for k, v := range state.shipments {
		s.Shipments[k] = cloneShipment(v)
	}
	for k, v := range state.addresses {
		s.Addresses[k] = v
	}
	for k, v := range state.packages {
		s.Packages[k] = v
	}
	return s
}

func stateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Batches {
		state.batches[k] = v
	}
	for k, v := range s.Shipments {
		state.shipments[k] = cloneShipment(v)
	}
	for k, v := range s.Addresses {
		state.addresses[k] = v
	}
	for k, v := range s.Packages {
		state.packages[k] = v
	}
	// Drop shipments whose batch vanished from an older snapshot.
	for id, rec := range state.shipments {
		if _, ok := state.batches[rec.BatchID]; !ok {
			delete(state.shipments, id)
		}
	}
	return state
}

// Store is the transactional in-memory store backing every persistence
// driver. Durable drivers layer snapshot persistence on top of it.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(snapshot)
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SetNowFunc overrides the time provider; used by tests to pin timestamps.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The rules engine evaluates against the candidate state before
// commit; blocking violations abort the whole transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View runs fn against a read-only snapshot of the current state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	state := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&state))
}

// GetBatch returns the batch with the given ID.
func (s *Store) GetBatch(id string) (Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.batches[id]
	return b, ok
}

// ListBatches returns all batches, most recent first.
func (s *Store) ListBatches() []Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Batch, 0, len(s.state.batches))
	for _, b := range s.state.batches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// GetShipment returns the shipment record with the given ID.
func (s *Store) GetShipment(id string) (ShipmentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.state.shipments[id]
	if !ok {
		return ShipmentRecord{}, false
	}
	return cloneShipment(rec), true
}

// ListShipments returns the records of one batch in CSV row order. An empty
// batchID lists every record across batches.
func (s *Store) ListShipments(batchID string) []ShipmentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return shipmentsInOrder(&s.state, batchID)
}

// GetSavedAddress returns the saved address resource with the given ID.
func (s *Store) GetSavedAddress(id string) (SavedAddress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.addresses[id]
	return a, ok
}

// ListSavedAddresses returns all saved address resources sorted by name.
func (s *Store) ListSavedAddresses() []SavedAddress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SavedAddress, 0, len(s.state.addresses))
	for _, a := range s.state.addresses {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetSavedPackage returns the saved package preset with the given ID.
func (s *Store) GetSavedPackage(id string) (SavedPackage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.packages[id]
	return p, ok
}

// ListSavedPackages returns all saved package presets sorted by name.
func (s *Store) ListSavedPackages() []SavedPackage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SavedPackage, 0, len(s.state.packages))
	for _, p := range s.state.packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func shipmentsInOrder(state *memoryState, batchID string) []ShipmentRecord {
	out := make([]ShipmentRecord, 0, len(state.shipments))
	for _, rec := range state.shipments {
		if batchID != "" && rec.BatchID != batchID {
			continue
		}
		out = append(out, cloneShipment(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BatchID != out[j].BatchID {
			return out[i].BatchID < out[j].BatchID
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// ErrNotFound is returned when a transaction references a missing entity.
type ErrNotFound struct {
	Entity domain.EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
