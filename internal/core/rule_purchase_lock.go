package core

import (
	"context"
	"fmt"

	"shipcore/pkg/domain"
)

// NewPurchaseLockRule returns the rule blocking shipment updates inside a
// batch that already reached the purchased state. Purchased batches are
// immutable: labels have been bought and the records must match them.
// Deletes cannot be caught here — the post-state view no longer resolves a
// deleted record's batch — so the service rejects them before commit with
// errShipmentLocked.
func NewPurchaseLockRule() domain.Rule {
	return purchaseLockRule{}
}

// errShipmentLocked reports an attempt to remove shipment records from a
// purchased batch.
func errShipmentLocked(batchID string) error {
	return domain.RuleViolationError{Result: domain.Result{Violations: []domain.Violation{{
		Rule:     "purchase_lock",
		Severity: domain.SeverityBlock,
		Message:  fmt.Sprintf("batch %s is purchased and its shipments cannot be removed", batchID),
		Entity:   domain.EntityBatch,
		EntityID: batchID,
	}}}}
}

type purchaseLockRule struct{}

func (purchaseLockRule) Name() string { return "purchase_lock" }

func (purchaseLockRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityShipment || change.Action == domain.ActionDelete {
			continue
		}
		rec, ok := view.FindShipment(change.ID)
		if !ok {
			continue
		}
		batch, ok := view.FindBatch(rec.BatchID)
		if !ok {
			continue
		}
		if batch.Status == domain.BatchPurchased && change.Action == domain.ActionUpdate {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "purchase_lock",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("shipment %s belongs to purchased batch %s and cannot change", rec.ID, batch.ID),
				Entity:   domain.EntityShipment,
				EntityID: rec.ID,
			})
		}
	}
	return res, nil
}
