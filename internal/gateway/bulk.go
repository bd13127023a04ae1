package gateway

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// bulkParallelism bounds concurrent per-record requests during a bulk apply.
const bulkParallelism = 8

// BulkUpdateRequest names the action and the payload applied to every
// selected record. The backend exposes no batch endpoint for these, so the
// client issues one request per record.
type BulkUpdateRequest struct {
	Action string
	IDs    []string
	Patch  RecordPatch // ignored for delete
}

// BulkFailure records one record that could not be updated.
type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkReport tallies a bulk apply. Partial failure is expected: requests
// already issued are never rolled back.
type BulkReport struct {
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Failures  []BulkFailure `json:"failures,omitempty"`
}

// BulkUpdate fans the action out across the selected records with bounded
// parallelism and joins the outcomes. The context cancels requests not yet
// issued; completed updates stand.
func (c *Client) BulkUpdate(ctx context.Context, req BulkUpdateRequest) (BulkReport, error) {
	report := BulkReport{Requested: len(req.IDs)}
	if len(req.IDs) == 0 {
		return report, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkParallelism)
	for _, id := range req.IDs {
		g.Go(func() error {
			err := c.applyOne(ctx, req, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.Failures = append(report.Failures, BulkFailure{ID: id, Error: err.Error()})
			} else {
				report.Succeeded++
			}
			// Record failures are tallied, not propagated; only context
			// cancellation stops the fan-out.
			return ctx.Err()
		})
	}
	err := g.Wait()
	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].ID < report.Failures[j].ID })
	return report, err
}

func (c *Client) applyOne(ctx context.Context, req BulkUpdateRequest, id string) error {
	if req.Action == "delete" {
		return c.DeleteShipment(ctx, id)
	}
	return c.do(ctx, http.MethodPost, "/api/v1/records/"+id+"/actions", nil, struct {
		Action string      `json:"action"`
		Patch  RecordPatch `json:"patch"`
	}{Action: req.Action, Patch: req.Patch}, nil)
}
