// Package core exposes the transactional service surface over shipment
// batches: CSV import, record listing and editing, bulk operations, batch
// lifecycle, and label purchase.
package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"shipcore/internal/blob"
	"shipcore/internal/ingest"
	"shipcore/internal/pricing"
	"shipcore/pkg/domain"
)

// Service errors surfaced to callers. The HTTP adapter maps these onto
// status codes.
var (
	// ErrAlreadyPurchased rejects a second purchase of the same batch.
	ErrAlreadyPurchased = errors.New("batch already purchased")
	// ErrBatchNotReady rejects purchase while records still fail validation.
	ErrBatchNotReady = errors.New("batch has records that are not ready")
	// ErrLabelsNotAvailable is returned when a batch has no label artifact.
	ErrLabelsNotAvailable = errors.New("labels not available for batch")
)

// InvalidTransitionError reports a batch lifecycle move outside the
// uploaded -> reviewed -> shipping_selected -> purchased|failed order.
type InvalidTransitionError struct {
	From BatchStatus
	To   BatchStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move batch from %s to %s", e.From, e.To)
}

// Logger is the minimal leveled logging surface the service emits to.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Option customizes a Service.
type Option func(*Service)

// WithBlobStore sets the blob store holding CSV sources and label manifests.
func WithBlobStore(b blob.Store) Option {
	return func(s *Service) { s.blobs = b }
}

// WithPricing overrides the active pricing table.
func WithPricing(t pricing.Table) Option {
	return func(s *Service) { s.rates = t }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source; used by tests.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// Service exposes higher-level transactional operations over the batch
// domain. It owns pricing and revalidation policy; persistence and rule
// evaluation live in the store.
type Service struct {
	store   PersistentStore
	blobs   blob.Store
	rates   pricing.Table
	metrics MetricsRecorder
	logger  Logger
	now     func() time.Time
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		blobs:   blob.NewMemory(),
		rates:   pricing.DefaultTable(),
		metrics: NoopMetricsRecorder{},
		logger:  noopLogger{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over an in-memory store with the
// given rules engine (nil selects the default policy set).
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(newMemoryStore(engine), opts...)
}

// Store returns the underlying persistence implementation.
func (s *Service) Store() PersistentStore { return s.store }

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
}

// ImportRequest describes one uploaded CSV file.
type ImportRequest struct {
	BatchName string
	Filename  string
	Data      []byte
	Mode      ingest.TemplateMode
}

// ImportResult carries the created batch, its records in row order, and the
// ingest report.
type ImportResult struct {
	Batch   Batch
	Records []ShipmentRecord
	Report  ingest.Report
}

// ImportCSV runs the ingest pipeline over an uploaded file, prices every
// record, and persists the batch and its records in one transaction. The
// original file bytes are retained in the blob store. Row-level validation
// failures never abort the import; file-format errors do.
func (s *Service) ImportCSV(ctx context.Context, req ImportRequest) (ImportResult, Result, error) {
	start := s.now()
	out, res, err := s.importCSV(ctx, req)
	s.observe(ctx, "import_csv", start, err)
	return out, res, err
}

func (s *Service) importCSV(ctx context.Context, req ImportRequest) (ImportResult, Result, error) {
	pipeline := ingest.Pipeline{Mode: req.Mode}
	records, report, err := pipeline.Run(req.Filename, req.Data)
	if err != nil {
		return ImportResult{}, Result{}, err
	}

	for i := range records {
		if err := s.reprice(&records[i]); err != nil {
			return ImportResult{}, Result{}, err
		}
	}

	name := req.BatchName
	if name == "" {
		name = req.Filename
	}

	var out ImportResult
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		batch, err := tx.CreateBatch(Batch{
			Name:        name,
			Status:      BatchUploaded,
			LabelFormat: string(DefaultLabelFormat),
		})
		if err != nil {
			return err
		}
		out.Batch = batch
		out.Records = out.Records[:0]
		for _, rec := range records {
			rec.BatchID = batch.ID
			created, err := tx.CreateShipment(rec)
			if err != nil {
				return err
			}
			out.Records = append(out.Records, created)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, res, err
	}
	out.Report = report

	if _, err := s.blobs.Put(ctx, sourceKey(out.Batch.ID), bytes.NewReader(req.Data), blob.PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"filename": req.Filename},
	}); err != nil {
		s.logger.Warn("retaining source csv failed", "batch", out.Batch.ID, "error", err)
	}
	s.logger.Info("batch imported",
		"batch", out.Batch.ID, "records", report.Total, "invalid", report.Invalid, "skipped", report.Skipped)
	return out, res, nil
}

// reprice recomputes the record price from current weight and service.
func (s *Service) reprice(rec *ShipmentRecord) error {
	price, err := s.rates.Price(rec.Package, rec.Service)
	if err != nil {
		return err
	}
	rec.Price = price
	return nil
}

// revalidate re-runs address validation, pricing, and status derivation on
// an edited record.
func (s *Service) revalidate(rec *ShipmentRecord) error {
	rec.Validation = ingest.ValidateRecord(*rec)
	rec.Status = ingest.ShipmentStatus(*rec)
	return s.reprice(rec)
}

// Batches lists all batches, most recent first.
func (s *Service) Batches(context.Context) []Batch {
	return s.store.ListBatches()
}

// BatchByID fetches one batch.
func (s *Service) BatchByID(_ context.Context, id string) (Batch, bool) {
	return s.store.GetBatch(id)
}

// DeleteBatch removes a batch, its records, and its blob artifacts.
func (s *Service) DeleteBatch(ctx context.Context, id string) (Result, error) {
	start := s.now()
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteBatch(id)
	})
	if err == nil {
		if _, derr := s.blobs.Delete(ctx, sourceKey(id)); derr != nil {
			s.logger.Warn("deleting source csv failed", "batch", id, "error", derr)
		}
		if _, derr := s.blobs.Delete(ctx, labelKey(id)); derr != nil {
			s.logger.Warn("deleting labels failed", "batch", id, "error", derr)
		}
	}
	s.observe(ctx, "delete_batch", start, err)
	return res, err
}

// SourceCSV streams back the originally uploaded file for a batch.
func (s *Service) SourceCSV(ctx context.Context, batchID string) (blob.Info, io.ReadCloser, error) {
	return s.blobs.Get(ctx, sourceKey(batchID))
}

// RecordSort enumerates the supported list orderings.
type RecordSort string

const (
	SortByRow     RecordSort = "row"
	SortByOrderNo RecordSort = "order_no"
	SortByPrice   RecordSort = "price"
	SortByStatus  RecordSort = "status"
)

// ListOptions filters and paginates a batch's records.
type ListOptions struct {
	Page     int // 1-based; defaults to 1
	PageSize int // defaults to 20, capped at 100
	Search   string
	Status   ShipmentStatus
	Service  ServiceTier
	Sort     RecordSort
	Desc     bool
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RecordPage is one page of records plus the page-number pagination header
// the UI consumes.
type RecordPage struct {
	Records     []ShipmentRecord `json:"records"`
	Count       int              `json:"count"`
	Current     int              `json:"current"`
	PageSize    int              `json:"page_size"`
	TotalPages  int              `json:"total_pages"`
	HasNext     bool             `json:"has_next"`
	HasPrevious bool             `json:"has_previous"`
}

// ListRecords returns one page of a batch's records after filtering,
// searching, and sorting. Requests past the last page return the last page.
func (s *Service) ListRecords(ctx context.Context, batchID string, opts ListOptions) (RecordPage, error) {
	if _, ok := s.store.GetBatch(batchID); !ok {
		return RecordPage{}, fmt.Errorf("batch %s not found", batchID)
	}
	records := s.store.ListShipments(batchID)
	records = filterRecords(records, opts)
	sortRecords(records, opts)
	return paginate(records, opts), nil
}

func filterRecords(records []ShipmentRecord, opts ListOptions) []ShipmentRecord {
	out := records[:0]
	needle := strings.ToLower(strings.TrimSpace(opts.Search))
	for _, rec := range records {
		if opts.Status != "" && rec.Status != opts.Status {
			continue
		}
		if opts.Service != "" && rec.Service != opts.Service {
			continue
		}
		if needle != "" && !matchesSearch(rec, needle) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// matchesSearch checks order number, recipient name, city, and SKU.
func matchesSearch(rec ShipmentRecord, needle string) bool {
	for _, hay := range []string{rec.OrderNo, rec.ShipTo.FullName(), rec.ShipTo.City, rec.Package.SKU} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func sortRecords(records []ShipmentRecord, opts ListOptions) {
	less := func(i, j int) bool { return records[i].Seq < records[j].Seq }
	switch opts.Sort {
	case SortByOrderNo:
		less = func(i, j int) bool { return records[i].OrderNo < records[j].OrderNo }
	case SortByPrice:
		less = func(i, j int) bool { return records[i].Price < records[j].Price }
	case SortByStatus:
		less = func(i, j int) bool { return records[i].Status < records[j].Status }
	}
	if opts.Desc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(records, less)
}

func paginate(records []ShipmentRecord, opts ListOptions) RecordPage {
	size := opts.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	total := (len(records) + size - 1) / size
	if total == 0 {
		total = 1
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	if page > total {
		page = total
	}
	lo := (page - 1) * size
	hi := lo + size
	if lo > len(records) {
		lo = len(records)
	}
	if hi > len(records) {
		hi = len(records)
	}
	return RecordPage{
		Records:     records[lo:hi],
		Count:       len(records),
		Current:     page,
		PageSize:    size,
		TotalPages:  total,
		HasNext:     page < total,
		HasPrevious: page > 1,
	}
}

// RecordByID fetches one shipment record.
func (s *Service) RecordByID(_ context.Context, id string) (ShipmentRecord, bool) {
	return s.store.GetShipment(id)
}

// UpdateRecord applies the mutator to a record, then re-runs validation,
// status derivation, and pricing before commit.
func (s *Service) UpdateRecord(ctx context.Context, id string, mutator func(*ShipmentRecord) error) (ShipmentRecord, Result, error) {
	start := s.now()
	var updated ShipmentRecord
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateShipment(id, func(rec *ShipmentRecord) error {
			if err := mutator(rec); err != nil {
				return err
			}
			return s.revalidate(rec)
		})
		return err
	})
	s.observe(ctx, "update_record", start, err)
	return updated, res, err
}

// DeleteRecord removes one record from its batch. Records in a purchased
// batch cannot be removed: the stored records must keep matching the label
// manifest and the batch total.
func (s *Service) DeleteRecord(ctx context.Context, id string) (Result, error) {
	start := s.now()
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if rec, ok := tx.FindShipment(id); ok {
			if batch, found := tx.FindBatch(rec.BatchID); found && batch.Status == BatchPurchased {
				return errShipmentLocked(batch.ID)
			}
		}
		return tx.DeleteShipment(id)
	})
	s.observe(ctx, "delete_record", start, err)
	return res, err
}

// BulkAction names a bulk operation over selected records.
type BulkAction string

const (
	BulkChangeAddress BulkAction = "change_address"
	BulkChangePackage BulkAction = "change_package"
	BulkChangeService BulkAction = "change_service"
	BulkDelete        BulkAction = "delete"
)

// AddressSide selects which end of the shipment a bulk address change hits.
type AddressSide string

const (
	SideFrom AddressSide = "from"
	SideTo   AddressSide = "to"
)

// BulkRequest selects records in one batch and the change to apply to all
// of them.
type BulkRequest struct {
	Action  BulkAction
	IDs     []string
	Side    AddressSide // change_address; defaults to from
	Address *Address    // change_address
	Package *Package    // change_package
	Service ServiceTier // change_service
}

// BulkOutcome reports how many records a bulk apply touched.
type BulkOutcome struct {
	Requested int `json:"requested"`
	Applied   int `json:"applied"`
}

// ApplyBulk applies one action to every selected record in a single
// transaction: either all records change or none do. Edited records are
// revalidated and repriced before commit.
func (s *Service) ApplyBulk(ctx context.Context, batchID string, req BulkRequest) (BulkOutcome, Result, error) {
	start := s.now()
	out, res, err := s.applyBulk(ctx, batchID, req)
	s.observe(ctx, "apply_bulk", start, err)
	return out, res, err
}

func (s *Service) applyBulk(ctx context.Context, batchID string, req BulkRequest) (BulkOutcome, Result, error) {
	mutator, err := s.bulkMutator(req)
	if err != nil {
		return BulkOutcome{}, Result{}, err
	}
	out := BulkOutcome{Requested: len(req.IDs)}
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if req.Action == BulkDelete {
			if batch, ok := tx.FindBatch(batchID); ok && batch.Status == BatchPurchased {
				return errShipmentLocked(batch.ID)
			}
		}
		for _, id := range req.IDs {
			rec, ok := tx.FindShipment(id)
			if !ok || rec.BatchID != batchID {
				return fmt.Errorf("record %s not in batch %s", id, batchID)
			}
			if req.Action == BulkDelete {
				if err := tx.DeleteShipment(id); err != nil {
					return err
				}
			} else {
				if _, err := tx.UpdateShipment(id, mutator); err != nil {
					return err
				}
			}
			out.Applied++
		}
		return nil
	})
	if err != nil {
		out.Applied = 0
	}
	return out, res, err
}

// bulkMutator builds the per-record mutator for a bulk action. Delete
// actions need no mutator.
func (s *Service) bulkMutator(req BulkRequest) (func(*ShipmentRecord) error, error) {
	apply := func(rec *ShipmentRecord) error { return nil }
	switch req.Action {
	case BulkChangeAddress:
		if req.Address == nil {
			return nil, fmt.Errorf("bulk %s requires an address", req.Action)
		}
		side := req.Side
		if side == "" {
			side = SideFrom
		}
		if side != SideFrom && side != SideTo {
			return nil, fmt.Errorf("unknown address side %q", side)
		}
		apply = func(rec *ShipmentRecord) error {
			if side == SideFrom {
				rec.ShipFrom = *req.Address
			} else {
				rec.ShipTo = *req.Address
			}
			return nil
		}
	case BulkChangePackage:
		if req.Package == nil {
			return nil, fmt.Errorf("bulk %s requires a package", req.Action)
		}
		apply = func(rec *ShipmentRecord) error {
			rec.Package = *req.Package
			return nil
		}
	case BulkChangeService:
		if !domain.ValidServiceTier(req.Service) {
			return nil, fmt.Errorf("unknown service tier %q", req.Service)
		}
		apply = func(rec *ShipmentRecord) error {
			rec.Service = req.Service
			return nil
		}
	case BulkDelete:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown bulk action %q", req.Action)
	}
	return func(rec *ShipmentRecord) error {
		if err := apply(rec); err != nil {
			return err
		}
		return s.revalidate(rec)
	}, nil
}

// RemoveRecords deletes the selected records from a batch in one
// transaction. Remaining records keep their relative row order.
func (s *Service) RemoveRecords(ctx context.Context, batchID string, ids []string) (int, Result, error) {
	out, res, err := s.ApplyBulk(ctx, batchID, BulkRequest{Action: BulkDelete, IDs: ids})
	return out.Applied, res, err
}

// BatchSummary aggregates one batch for review and checkout.
type BatchSummary struct {
	BatchID       string      `json:"batch_id"`
	Status        BatchStatus `json:"status"`
	Total         int         `json:"total_records"`
	Valid         int         `json:"valid_records"`
	Invalid       int         `json:"invalid_records"`
	Incomplete    int         `json:"incomplete_records"`
	ShippingTotal float64     `json:"shipping_total"`
	LabelFees     float64     `json:"label_fees"`
	GrandTotal    float64     `json:"grand_total"`
}

// Summary computes batch aggregates: per-status counts and the grand total
// of shipping prices plus one label fee per record.
func (s *Service) Summary(_ context.Context, batchID string) (BatchSummary, error) {
	batch, ok := s.store.GetBatch(batchID)
	if !ok {
		return BatchSummary{}, fmt.Errorf("batch %s not found", batchID)
	}
	records := s.store.ListShipments(batchID)
	sum := BatchSummary{BatchID: batchID, Status: batch.Status, Total: len(records)}
	for _, rec := range records {
		switch rec.Status {
		case ShipmentValid:
			sum.Valid++
		case ShipmentIncomplete:
			sum.Incomplete++
		default:
			sum.Invalid++
		}
		sum.ShippingTotal += rec.Price
	}
	sum.ShippingTotal = pricing.Round2(sum.ShippingTotal)
	sum.LabelFees = pricing.Round2(float64(len(records)) * s.rates.LabelFee)
	sum.GrandTotal = pricing.Round2(sum.ShippingTotal + sum.LabelFees)
	return sum, nil
}

// batchTransitions holds the allowed forward moves of the batch lifecycle.
var batchTransitions = map[BatchStatus][]BatchStatus{
	BatchUploaded:         {BatchReviewed},
	BatchReviewed:         {BatchShippingSelected},
	// Re-selecting shipping after stepping back in the wizard is allowed.
	BatchShippingSelected: {BatchShippingSelected, BatchPurchased, BatchFailed},
	BatchFailed:           {BatchShippingSelected},
}

func transitionAllowed(from, to BatchStatus) bool {
	for _, next := range batchTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AdvanceBatch moves a batch one step through its lifecycle.
func (s *Service) AdvanceBatch(ctx context.Context, batchID string, to BatchStatus) (Batch, Result, error) {
	start := s.now()
	var updated Batch
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateBatch(batchID, func(b *Batch) error {
			if !transitionAllowed(b.Status, to) {
				return InvalidTransitionError{From: b.Status, To: to}
			}
			b.Status = to
			return nil
		})
		return err
	})
	s.observe(ctx, "advance_batch", start, err)
	return updated, res, err
}

// MarkReviewed records that the user finished the review step.
func (s *Service) MarkReviewed(ctx context.Context, batchID string) (Batch, Result, error) {
	return s.AdvanceBatch(ctx, batchID, BatchReviewed)
}

// SelectShipping locks in service selection and the label format.
func (s *Service) SelectShipping(ctx context.Context, batchID string, format LabelFormat) (Batch, Result, error) {
	if format == "" {
		format = DefaultLabelFormat
	}
	if !ValidLabelFormat(format) {
		return Batch{}, Result{}, fmt.Errorf("unknown label format %q", format)
	}
	start := s.now()
	var updated Batch
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateBatch(batchID, func(b *Batch) error {
			if !transitionAllowed(b.Status, BatchShippingSelected) {
				return InvalidTransitionError{From: b.Status, To: BatchShippingSelected}
			}
			b.Status = BatchShippingSelected
			b.LabelFormat = string(format)
			return nil
		})
		return err
	})
	s.observe(ctx, "select_shipping", start, err)
	return updated, res, err
}

// PurchaseOutcome reports a completed label purchase.
type PurchaseOutcome struct {
	BatchID    string  `json:"batch_id"`
	Records    int     `json:"records"`
	GrandTotal float64 `json:"grand_total"`
	LabelKey   string  `json:"label_key"`
}

// Purchase buys labels for every record in the batch. The batch must have
// completed shipping selection; a purchased batch cannot be purchased
// again. Records failing validation fail the whole purchase and move the
// batch to the failed state. On success the label manifest is retained in
// the blob store and the batch becomes purchased with its final total.
func (s *Service) Purchase(ctx context.Context, batchID string) (PurchaseOutcome, Result, error) {
	start := s.now()
	out, res, err := s.purchase(ctx, batchID)
	s.observe(ctx, "purchase", start, err)
	return out, res, err
}

func (s *Service) purchase(ctx context.Context, batchID string) (PurchaseOutcome, Result, error) {
	batch, ok := s.store.GetBatch(batchID)
	if !ok {
		return PurchaseOutcome{}, Result{}, fmt.Errorf("batch %s not found", batchID)
	}
	if batch.Status == BatchPurchased {
		return PurchaseOutcome{}, Result{}, ErrAlreadyPurchased
	}
	if batch.Status != BatchShippingSelected {
		return PurchaseOutcome{}, Result{}, InvalidTransitionError{From: batch.Status, To: BatchPurchased}
	}

	records := s.store.ListShipments(batchID)
	for _, rec := range records {
		if rec.Status != ShipmentValid {
			_, _, ferr := s.failBatch(ctx, batchID)
			if ferr != nil {
				s.logger.Warn("marking batch failed", "batch", batchID, "error", ferr)
			}
			return PurchaseOutcome{}, Result{}, fmt.Errorf("%w: record %s is %s", ErrBatchNotReady, rec.ID, rec.Status)
		}
	}

	summary, err := s.Summary(ctx, batchID)
	if err != nil {
		return PurchaseOutcome{}, Result{}, err
	}

	purchasedAt := s.now()
	manifest := labelManifest(batch, records, summary.GrandTotal, purchasedAt)
	key := labelKey(batchID)
	if _, err := s.blobs.Put(ctx, key, bytes.NewReader(manifest), blob.PutOptions{ContentType: "text/plain"}); err != nil {
		return PurchaseOutcome{}, Result{}, fmt.Errorf("store labels: %w", err)
	}

	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateBatch(batchID, func(b *Batch) error {
			if b.Status == BatchPurchased {
				return ErrAlreadyPurchased
			}
			if !transitionAllowed(b.Status, BatchPurchased) {
				return InvalidTransitionError{From: b.Status, To: BatchPurchased}
			}
			b.Status = BatchPurchased
			b.TotalPrice = summary.GrandTotal
			return nil
		})
		return err
	})
	if err != nil {
		if _, derr := s.blobs.Delete(ctx, key); derr != nil {
			s.logger.Warn("removing orphaned labels", "batch", batchID, "error", derr)
		}
		return PurchaseOutcome{}, res, err
	}

	s.logger.Info("batch purchased", "batch", batchID, "records", len(records), "total", summary.GrandTotal)
	return PurchaseOutcome{
		BatchID:    batchID,
		Records:    len(records),
		GrandTotal: summary.GrandTotal,
		LabelKey:   key,
	}, res, nil
}

func (s *Service) failBatch(ctx context.Context, batchID string) (Batch, Result, error) {
	return s.AdvanceBatch(ctx, batchID, BatchFailed)
}

// Labels streams the purchased label manifest for a batch.
func (s *Service) Labels(ctx context.Context, batchID string) (blob.Info, io.ReadCloser, error) {
	batch, ok := s.store.GetBatch(batchID)
	if !ok {
		return blob.Info{}, nil, fmt.Errorf("batch %s not found", batchID)
	}
	if batch.Status != BatchPurchased {
		return blob.Info{}, nil, ErrLabelsNotAvailable
	}
	return s.blobs.Get(ctx, labelKey(batchID))
}

// CreateSavedAddress persists a reusable named address.
func (s *Service) CreateSavedAddress(ctx context.Context, a SavedAddress) (SavedAddress, Result, error) {
	var created SavedAddress
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateSavedAddress(a)
		return err
	})
	return created, res, err
}

// SavedAddresses lists all saved addresses by name.
func (s *Service) SavedAddresses(context.Context) []SavedAddress {
	return s.store.ListSavedAddresses()
}

// DeleteSavedAddress removes a saved address.
func (s *Service) DeleteSavedAddress(ctx context.Context, id string) (Result, error) {
	return s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteSavedAddress(id)
	})
}

// CreateSavedPackage persists a reusable package preset.
func (s *Service) CreateSavedPackage(ctx context.Context, p SavedPackage) (SavedPackage, Result, error) {
	var created SavedPackage
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateSavedPackage(p)
		return err
	})
	return created, res, err
}

// SavedPackages lists all package presets by name.
func (s *Service) SavedPackages(context.Context) []SavedPackage {
	return s.store.ListSavedPackages()
}

// DeleteSavedPackage removes a package preset.
func (s *Service) DeleteSavedPackage(ctx context.Context, id string) (Result, error) {
	return s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteSavedPackage(id)
	})
}
