package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"shipcore/pkg/domain"
)

func newTestStore(t *testing.T, engine *RulesEngine) *Store {
	t.Helper()
	store := NewStore(engine)
	store.SetNowFunc(func() time.Time {
		return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	})
	return store
}

func createBatchWithShipments(t *testing.T, store *Store, name string, count int) (Batch, []ShipmentRecord) {
	t.Helper()
	var (
		batch Batch
		recs  []ShipmentRecord
	)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		batch, err = tx.CreateBatch(Batch{Name: name})
		if err != nil {
			return err
		}
		for i := 1; i <= count; i++ {
			rec, err := tx.CreateShipment(ShipmentRecord{
				BatchID: batch.ID,
				Seq:     i,
				OrderNo: fmt.Sprintf("ORD-%d", i),
				Service: domain.ServiceGround,
			})
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return batch, recs
}

func TestTransactionCommit(t *testing.T) {
	store := newTestStore(t, nil)
	batch, recs := createBatchWithShipments(t, store, "aug", 3)

	if batch.Status != domain.BatchUploaded {
		t.Fatalf("new batch status = %q, want uploaded", batch.Status)
	}
	got, ok := store.GetBatch(batch.ID)
	if !ok {
		t.Fatal("committed batch not found")
	}
	if got.Name != "aug" || got.CreatedAt.IsZero() {
		t.Fatalf("batch = %+v", got)
	}

	listed := store.ListShipments(batch.ID)
	if len(listed) != 3 {
		t.Fatalf("got %d shipments, want 3", len(listed))
	}
	for i, rec := range listed {
		if rec.Seq != i+1 {
			t.Fatalf("shipment %d out of order: seq=%d", i, rec.Seq)
		}
	}
	if listed[0].ID != recs[0].ID {
		t.Fatalf("listed[0].ID = %q, want %q", listed[0].ID, recs[0].ID)
	}
}

func TestTransactionRollbackOnError(t *testing.T) {
	store := newTestStore(t, nil)
	boom := errors.New("boom")

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreateBatch(Batch{Name: "doomed"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got := store.ListBatches(); len(got) != 0 {
		t.Fatalf("rolled-back batch visible: %d batches", len(got))
	}
}

func TestTransactionRollbackOnBlockingRule(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockEverything{})
	store := newTestStore(t, engine)

	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateBatch(Batch{Name: "blocked"})
		return err
	})
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("err = %v, want RuleViolationError", err)
	}
	if !res.HasBlocking() {
		t.Fatal("result should carry the blocking violation")
	}
	if got := store.ListBatches(); len(got) != 0 {
		t.Fatalf("blocked batch committed: %d batches", len(got))
	}
}

type blockEverything struct{}

func (blockEverything) Name() string { return "block_everything" }

func (blockEverything) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if len(changes) == 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule: "block_everything", Severity: domain.SeverityBlock, Message: "no",
	}}}, nil
}

func TestCreateShipmentRequiresBatch(t *testing.T) {
	store := newTestStore(t, nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateShipment(ShipmentRecord{BatchID: "missing"})
		return err
	})
	var nf ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if nf.Entity != domain.EntityBatch {
		t.Fatalf("not-found entity = %q, want batch", nf.Entity)
	}
}

func TestUpdateShipmentPreservesIdentity(t *testing.T) {
	store := newTestStore(t, nil)
	batch, recs := createBatchWithShipments(t, store, "aug", 1)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateShipment(recs[0].ID, func(rec *ShipmentRecord) error {
			rec.ID = "hijacked"
			rec.BatchID = "elsewhere"
			rec.Service = domain.ServicePriority
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, ok := store.GetShipment(recs[0].ID)
	if !ok {
		t.Fatal("updated shipment not found under original ID")
	}
	if got.BatchID != batch.ID {
		t.Fatalf("batch ID = %q, want %q", got.BatchID, batch.ID)
	}
	if got.Service != domain.ServicePriority {
		t.Fatalf("service = %q, want priority", got.Service)
	}
}

func TestDeleteBatchCascades(t *testing.T) {
	store := newTestStore(t, nil)
	batch, _ := createBatchWithShipments(t, store, "aug", 2)
	other, _ := createBatchWithShipments(t, store, "sep", 1)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		return tx.DeleteBatch(batch.ID)
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := store.ListShipments(batch.ID); len(got) != 0 {
		t.Fatalf("cascade left %d shipments", len(got))
	}
	if got := store.ListShipments(other.ID); len(got) != 1 {
		t.Fatalf("unrelated batch lost shipments: %d", len(got))
	}
}

func TestCloneIsolation(t *testing.T) {
	store := newTestStore(t, nil)
	_, recs := createBatchWithShipments(t, store, "aug", 1)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateShipment(recs[0].ID, func(rec *ShipmentRecord) error {
			rec.Validation = domain.Validation{Errors: []string{"original"}}
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := store.GetShipment(recs[0].ID)
	got.Validation.Errors[0] = "mutated by caller"

	again, _ := store.GetShipment(recs[0].ID)
	if again.Validation.Errors[0] != "original" {
		t.Fatal("caller mutation leaked into store state")
	}
}

func TestListBatchesOrder(t *testing.T) {
	store := NewStore(nil)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		offset := time.Duration(i) * time.Hour
		store.SetNowFunc(func() time.Time { return base.Add(offset) })
		if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
			_, err := tx.CreateBatch(Batch{Name: name})
			return err
		}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	batches := store.ListBatches()
	if len(batches) != 3 {
		t.Fatalf("got %d batches", len(batches))
	}
	if batches[0].Name != "third" || batches[2].Name != "first" {
		t.Fatalf("order = %s, %s, %s; want most recent first",
			batches[0].Name, batches[1].Name, batches[2].Name)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t, nil)
	batch, recs := createBatchWithShipments(t, store, "aug", 2)
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreateSavedAddress(SavedAddress{Name: "warehouse"}); err != nil {
			return err
		}
		_, err := tx.CreateSavedPackage(SavedPackage{Name: "small box"})
		return err
	}); err != nil {
		t.Fatalf("seed resources: %v", err)
	}

	restored := newTestStore(t, nil)
	restored.ImportState(store.ExportState())

	if _, ok := restored.GetBatch(batch.ID); !ok {
		t.Fatal("batch lost in round trip")
	}
	if got := restored.ListShipments(batch.ID); len(got) != 2 {
		t.Fatalf("got %d shipments after round trip", len(got))
	}
	if got := restored.ListSavedAddresses(); len(got) != 1 || got[0].Name != "warehouse" {
		t.Fatalf("saved addresses = %+v", got)
	}
	if got := restored.ListSavedPackages(); len(got) != 1 || got[0].Name != "small box" {
		t.Fatalf("saved packages = %+v", got)
	}
	if _, ok := restored.GetShipment(recs[0].ID); !ok {
		t.Fatal("shipment lost in round trip")
	}
}

func TestImportStateDropsOrphanedShipments(t *testing.T) {
	store := newTestStore(t, nil)
	batch, recs := createBatchWithShipments(t, store, "aug", 1)

	snap := store.ExportState()
	delete(snap.Batches, batch.ID)

	restored := newTestStore(t, nil)
	restored.ImportState(snap)
	if _, ok := restored.GetShipment(recs[0].ID); ok {
		t.Fatal("orphaned shipment survived import")
	}
}

func TestViewSeesCommittedState(t *testing.T) {
	store := newTestStore(t, nil)
	batch, _ := createBatchWithShipments(t, store, "aug", 2)

	err := store.View(context.Background(), func(view TransactionView) error {
		if got := view.ShipmentsInBatch(batch.ID); len(got) != 2 {
			return fmt.Errorf("view saw %d shipments", len(got))
		}
		if _, ok := view.FindBatch(batch.ID); !ok {
			return errors.New("view missing batch")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSavedResourceDelete(t *testing.T) {
	store := newTestStore(t, nil)
	var addr SavedAddress
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		addr, err = tx.CreateSavedAddress(SavedAddress{Name: "warehouse"})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		return tx.DeleteSavedAddress(addr.ID)
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.GetSavedAddress(addr.ID); ok {
		t.Fatal("deleted address still present")
	}

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		return tx.DeleteSavedAddress(addr.ID)
	})
	var nf ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("double delete err = %v, want ErrNotFound", err)
	}
}
