// Package wizard drives the bulk-upload flow as an explicit state machine:
// upload -> review -> shipping -> purchase -> success. Steps only advance
// through the operations below; skipping ahead is not possible.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"shipcore/internal/core"
)

// Step is one stage of the upload flow.
type Step string

const (
	StepUpload   Step = "upload"
	StepReview   Step = "review"
	StepShipping Step = "shipping"
	StepPurchase Step = "purchase"
	StepSuccess  Step = "success"
)

// ErrDiscardDeclined is returned when leaving review would discard the
// batch and the confirm callback said no.
var ErrDiscardDeclined = errors.New("discard not confirmed")

// StepError reports an operation invoked at the wrong step.
type StepError struct {
	Step Step
	Op   string
}

func (e StepError) Error() string {
	return fmt.Sprintf("cannot %s at step %s", e.Op, e.Step)
}

// ConfirmFunc asks the user to confirm discarding an uploaded batch.
type ConfirmFunc func(batchID string) bool

// Wizard holds one user's progress through the flow. Not safe for
// concurrent use; each session owns its wizard.
type Wizard struct {
	svc      *core.Service
	step     Step
	batchID  string
	purchase core.PurchaseOutcome
	confirm  ConfirmFunc
}

// Option customizes a Wizard.
type Option func(*Wizard)

// WithConfirm sets the discard-confirmation callback. Without one, going
// back from review always fails.
func WithConfirm(fn ConfirmFunc) Option {
	return func(w *Wizard) { w.confirm = fn }
}

// New starts a wizard at the upload step.
func New(svc *core.Service, opts ...Option) *Wizard {
	w := &Wizard{
		svc:     svc,
		step:    StepUpload,
		confirm: func(string) bool { return false },
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Step returns the current stage.
func (w *Wizard) Step() Step { return w.step }

// BatchID returns the batch created by the upload step, if any.
func (w *Wizard) BatchID() string { return w.batchID }

// Outcome returns the purchase result once the flow reached success.
func (w *Wizard) Outcome() core.PurchaseOutcome { return w.purchase }

// Upload ingests the CSV and moves to review. The import itself tolerates
// invalid rows; they are fixed during review.
func (w *Wizard) Upload(ctx context.Context, req core.ImportRequest) (core.ImportResult, error) {
	if w.step != StepUpload {
		return core.ImportResult{}, StepError{Step: w.step, Op: "upload"}
	}
	out, _, err := w.svc.ImportCSV(ctx, req)
	if err != nil {
		return core.ImportResult{}, err
	}
	w.batchID = out.Batch.ID
	w.step = StepReview
	return out, nil
}

// CompleteReview marks the batch reviewed and moves to shipping selection.
func (w *Wizard) CompleteReview(ctx context.Context) error {
	if w.step != StepReview {
		return StepError{Step: w.step, Op: "complete review"}
	}
	// Re-entering review after Back leaves the batch already reviewed.
	if batch, ok := w.svc.BatchByID(ctx, w.batchID); !ok || batch.Status == core.BatchUploaded {
		if _, _, err := w.svc.MarkReviewed(ctx, w.batchID); err != nil {
			return err
		}
	}
	w.step = StepShipping
	return nil
}

// SelectShipping locks in the label format and moves to purchase.
func (w *Wizard) SelectShipping(ctx context.Context, format core.LabelFormat) error {
	if w.step != StepShipping {
		return StepError{Step: w.step, Op: "select shipping"}
	}
	if _, _, err := w.svc.SelectShipping(ctx, w.batchID, format); err != nil {
		return err
	}
	w.step = StepPurchase
	return nil
}

// Purchase buys the labels and finishes the flow. A failed purchase leaves
// the wizard at the purchase step so the user can fix records and retry.
func (w *Wizard) Purchase(ctx context.Context) (core.PurchaseOutcome, error) {
	if w.step != StepPurchase {
		return core.PurchaseOutcome{}, StepError{Step: w.step, Op: "purchase"}
	}
	out, _, err := w.svc.Purchase(ctx, w.batchID)
	if err != nil {
		return core.PurchaseOutcome{}, err
	}
	w.purchase = out
	w.step = StepSuccess
	return out, nil
}

// Back moves one step towards upload. Leaving review discards the uploaded
// batch and therefore requires confirmation; later steps keep the batch.
// Success is terminal.
func (w *Wizard) Back(ctx context.Context) error {
	switch w.step {
	case StepReview:
		if !w.confirm(w.batchID) {
			return ErrDiscardDeclined
		}
		if _, err := w.svc.DeleteBatch(ctx, w.batchID); err != nil {
			return err
		}
		w.batchID = ""
		w.step = StepUpload
		return nil
	case StepShipping:
		w.step = StepReview
		return nil
	case StepPurchase:
		w.step = StepShipping
		return nil
	default:
		return StepError{Step: w.step, Op: "go back"}
	}
}
