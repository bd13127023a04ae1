package core

import (
	"context"
	"fmt"

	"shipcore/pkg/domain"
)

// NewBatchIntegrityRule returns the rule requiring every shipment record to
// reference an existing batch.
func NewBatchIntegrityRule() domain.Rule {
	return batchIntegrityRule{}
}

type batchIntegrityRule struct{}

func (batchIntegrityRule) Name() string { return "batch_integrity" }

func (batchIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, rec := range view.ListShipments() {
		if rec.BatchID == "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "batch_integrity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("shipment %s has no batch", rec.ID),
				Entity:   domain.EntityShipment,
				EntityID: rec.ID,
			})
			continue
		}
		if _, ok := view.FindBatch(rec.BatchID); !ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "batch_integrity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("shipment %s references missing batch %s", rec.ID, rec.BatchID),
				Entity:   domain.EntityShipment,
				EntityID: rec.ID,
			})
		}
	}
	return res, nil
}
