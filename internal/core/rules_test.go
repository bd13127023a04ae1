package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"shipcore/internal/infra/persistence/memory"
	"shipcore/pkg/domain"
)

// fakeView is a hand-rolled RuleView over fixed slices.
type fakeView struct {
	batches   []Batch
	shipments []ShipmentRecord
}

func (v fakeView) ListBatches() []Batch { return v.batches }

func (v fakeView) ListShipments() []ShipmentRecord { return v.shipments }

func (v fakeView) ShipmentsInBatch(batchID string) []ShipmentRecord {
	var out []ShipmentRecord
	for _, rec := range v.shipments {
		if rec.BatchID == batchID {
			out = append(out, rec)
		}
	}
	return out
}

func (v fakeView) FindBatch(id string) (Batch, bool) {
	for _, b := range v.batches {
		if b.ID == id {
			return b, true
		}
	}
	return Batch{}, false
}

func (v fakeView) FindShipment(id string) (ShipmentRecord, bool) {
	for _, rec := range v.shipments {
		if rec.ID == id {
			return rec, true
		}
	}
	return ShipmentRecord{}, false
}

func (fakeView) FindSavedAddress(string) (SavedAddress, bool) { return SavedAddress{}, false }
func (fakeView) FindSavedPackage(string) (SavedPackage, bool) { return SavedPackage{}, false }

func shipmentsForBatch(batchID string, n int) []ShipmentRecord {
	out := make([]ShipmentRecord, n)
	for i := range out {
		out[i] = ShipmentRecord{BatchID: batchID, Seq: i + 1, Service: domain.ServiceGround}
		out[i].ID = fmt.Sprintf("SHP-%d", i+1)
	}
	return out
}

func TestBatchRowCapRule(t *testing.T) {
	rule := NewBatchRowCapRule()
	batch := Batch{}
	batch.ID = "b1"

	view := fakeView{batches: []Batch{batch}, shipments: shipmentsForBatch("b1", maxBatchRows)}
	res, err := rule.Evaluate(context.Background(), view, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("violations at cap = %+v", res.Violations)
	}

	view.shipments = shipmentsForBatch("b1", maxBatchRows+1)
	res, err = rule.Evaluate(context.Background(), view, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatal("over-cap batch not blocked")
	}
	if res.Violations[0].EntityID != "b1" {
		t.Fatalf("violation = %+v", res.Violations[0])
	}
}

func TestServiceTierRule(t *testing.T) {
	rule := NewServiceTierRule()
	batch := Batch{}
	batch.ID = "b1"
	rec := ShipmentRecord{BatchID: "b1", Service: "overnight"}
	rec.ID = "SHP-1"
	view := fakeView{batches: []Batch{batch}, shipments: []ShipmentRecord{rec}}
	changes := []domain.Change{{Entity: domain.EntityShipment, Action: domain.ActionCreate, ID: "SHP-1"}}

	res, err := rule.Evaluate(context.Background(), view, changes)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatal("unknown tier not blocked")
	}

	// Deletes of such records are always allowed.
	deletes := []domain.Change{{Entity: domain.EntityShipment, Action: domain.ActionDelete, ID: "SHP-1"}}
	res, err = rule.Evaluate(context.Background(), view, deletes)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.HasBlocking() {
		t.Fatal("delete blocked by tier rule")
	}
}

func TestBatchIntegrityRule(t *testing.T) {
	rule := NewBatchIntegrityRule()
	orphan := ShipmentRecord{BatchID: "gone"}
	orphan.ID = "SHP-1"
	bare := ShipmentRecord{}
	bare.ID = "SHP-2"
	view := fakeView{shipments: []ShipmentRecord{orphan, bare}}

	res, err := rule.Evaluate(context.Background(), view, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Violations) != 2 || !res.HasBlocking() {
		t.Fatalf("violations = %+v", res.Violations)
	}
}

func TestPurchaseLockRule(t *testing.T) {
	rule := NewPurchaseLockRule()
	batch := Batch{Status: BatchPurchased}
	batch.ID = "b1"
	rec := ShipmentRecord{BatchID: "b1", Service: domain.ServiceGround}
	rec.ID = "SHP-1"
	view := fakeView{batches: []Batch{batch}, shipments: []ShipmentRecord{rec}}

	updates := []domain.Change{{Entity: domain.EntityShipment, Action: domain.ActionUpdate, ID: "SHP-1"}}
	res, err := rule.Evaluate(context.Background(), view, updates)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatal("update inside purchased batch not blocked")
	}

	// Deletes pass through the rule itself; the service rejects them before
	// commit (see TestDeleteRecordRejectedAfterPurchase).
	deletes := []domain.Change{{Entity: domain.EntityShipment, Action: domain.ActionDelete, ID: "SHP-1"}}
	res, err = rule.Evaluate(context.Background(), view, deletes)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.HasBlocking() {
		t.Fatal("delete blocked by purchase lock")
	}
}

func TestDefaultEngineBlocksOverCapBatch(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		batch, err := tx.CreateBatch(Batch{Name: "huge"})
		if err != nil {
			return err
		}
		for i := 0; i < maxBatchRows+1; i++ {
			if _, err := tx.CreateShipment(ShipmentRecord{
				BatchID: batch.ID,
				Seq:     i + 1,
				Service: domain.ServiceGround,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("err = %v, want RuleViolationError", err)
	}
	if got := store.ListBatches(); len(got) != 0 {
		t.Fatalf("blocked batch committed: %d", len(got))
	}
}

func TestDefaultEngineBlocksUnknownTier(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		batch, err := tx.CreateBatch(Batch{Name: "b"})
		if err != nil {
			return err
		}
		_, err = tx.CreateShipment(ShipmentRecord{BatchID: batch.ID, Seq: 1, Service: "overnight"})
		return err
	})
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("err = %v, want RuleViolationError", err)
	}
}
