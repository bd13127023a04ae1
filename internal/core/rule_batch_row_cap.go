package core

import (
	"context"
	"fmt"

	"shipcore/pkg/domain"
)

// maxBatchRows caps the number of shipment records a single batch may hold.
const maxBatchRows = 500

// NewBatchRowCapRule returns the in-transaction rule enforcing the per-batch
// record cap.
func NewBatchRowCapRule() domain.Rule {
	return batchRowCapRule{}
}

type batchRowCapRule struct{}

func (batchRowCapRule) Name() string { return "batch_row_cap" }

func (batchRowCapRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	counts := make(map[string]int)
	for _, rec := range view.ListShipments() {
		counts[rec.BatchID]++
	}

	res := domain.Result{}
	for _, batch := range view.ListBatches() {
		count := counts[batch.ID]
		if count > maxBatchRows {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "batch_row_cap",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("batch %s (%s) exceeds the %d record limit: %d records", batch.Name, batch.ID, maxBatchRows, count),
				Entity:   domain.EntityBatch,
				EntityID: batch.ID,
			})
		}
	}
	return res, nil
}
