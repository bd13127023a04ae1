// Package shipments provides HTTP access to the batch upload flow: CSV
// ingestion, record review and editing, bulk operations, and label purchase.
package shipments

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"shipcore/internal/core"
	"shipcore/internal/ingest"
	"shipcore/pkg/domain"
)

// maxUploadBytes caps one multipart CSV upload.
const maxUploadBytes = 8 << 20

// Handler routes the /api/v1 shipment endpoints onto the core service.
type Handler struct {
	Service *core.Service
	Logger  core.Logger
}

// NewHandler constructs a shipments HTTP handler.
func NewHandler(svc *core.Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "shipment service not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/api/v1/batches/upload":
		h.requireMethod(w, r, http.MethodPost, h.handleUpload)
	case path == "/api/v1/batches":
		h.requireMethod(w, r, http.MethodGet, h.handleListBatches)
	case strings.HasPrefix(path, "/api/v1/batches/"):
		h.handleBatch(w, r, strings.TrimPrefix(path, "/api/v1/batches/"))
	case strings.HasPrefix(path, "/api/v1/records/"):
		h.handleRecord(w, r, strings.TrimPrefix(path, "/api/v1/records/"))
	case path == "/api/v1/addresses":
		h.handleAddresses(w, r)
	case strings.HasPrefix(path, "/api/v1/addresses/"):
		h.handleAddress(w, r, strings.TrimPrefix(path, "/api/v1/addresses/"))
	case path == "/api/v1/packages":
		h.handlePackages(w, r)
	case strings.HasPrefix(path, "/api/v1/packages/"):
		h.handlePackage(w, r, strings.TrimPrefix(path, "/api/v1/packages/"))
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) requireMethod(w http.ResponseWriter, r *http.Request, method string, fn http.HandlerFunc) {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	fn(w, r)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload failed")
		return
	}

	mode := ingest.TemplateFixed
	if r.FormValue("template") == string(ingest.TemplateNamed) {
		mode = ingest.TemplateNamed
	}
	out, _, err := h.Service.ImportCSV(r.Context(), core.ImportRequest{
		BatchName: r.FormValue("name"),
		Filename:  header.Filename,
		Data:      data,
		Mode:      mode,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"batch":  out.Batch,
		"report": out.Report,
	})
}

func (h *Handler) handleListBatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"batches": h.Service.Batches(r.Context())})
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request, remainder string) {
	segments := strings.Split(remainder, "/")
	id := segments[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleGetBatch(w, r, id)
		case http.MethodDelete:
			h.handleDeleteBatch(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}
	if len(segments) != 2 {
		http.NotFound(w, r)
		return
	}

	switch segments[1] {
	case "records":
		h.requireMethod(w, r, http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
			h.handleListRecords(w, r, id)
		})
	case "summary":
		h.requireMethod(w, r, http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
			h.handleSummary(w, r, id)
		})
	case "review":
		h.requireMethod(w, r, http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
			h.handleReview(w, r, id)
		})
	case "shipping":
		h.requireMethod(w, r, http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
			h.handleShipping(w, r, id)
		})
	case "bulk":
		h.requireMethod(w, r, http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
			h.handleBulk(w, r, id)
		})
	case "purchase":
		h.requireMethod(w, r, http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
			h.handlePurchase(w, r, id)
		})
	case "labels":
		h.requireMethod(w, r, http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
			h.handleLabels(w, r, id)
		})
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleGetBatch(w http.ResponseWriter, r *http.Request, id string) {
	batch, ok := h.Service.BatchByID(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"batch": batch})
}

func (h *Handler) handleDeleteBatch(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.Service.DeleteBatch(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request, id string) {
	q := r.URL.Query()
	opts := core.ListOptions{
		Search:  q.Get("search"),
		Status:  core.ShipmentStatus(q.Get("status")),
		Service: core.ServiceTier(q.Get("service")),
		Sort:    core.RecordSort(q.Get("sort")),
		Desc:    q.Get("order") == "desc",
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = page
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
		opts.PageSize = size
	}
	pageOut, err := h.Service.ListRecords(r.Context(), id, opts)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageOut)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request, id string) {
	summary, err := h.Service.Summary(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request, id string) {
	batch, _, err := h.Service.MarkReviewed(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"batch": batch})
}

func (h *Handler) handleShipping(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		LabelFormat string `json:"label_format"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid shipping request payload")
		return
	}
	batch, _, err := h.Service.SelectShipping(r.Context(), id, core.LabelFormat(body.LabelFormat))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"batch": batch})
}

type bulkPayload struct {
	Action  string          `json:"action"`
	IDs     []string        `json:"ids"`
	Side    string          `json:"side,omitempty"`
	Address *domain.Address `json:"address,omitempty"`
	Package *domain.Package `json:"package,omitempty"`
	Service string          `json:"shipping_service,omitempty"`
}

func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request, id string) {
	var body bulkPayload
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid bulk request payload")
		return
	}
	out, _, err := h.Service.ApplyBulk(r.Context(), id, core.BulkRequest{
		Action:  core.BulkAction(body.Action),
		IDs:     body.IDs,
		Side:    core.AddressSide(body.Side),
		Address: body.Address,
		Package: body.Package,
		Service: domain.ServiceTier(body.Service),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request, id string) {
	out, _, err := h.Service.Purchase(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleLabels(w http.ResponseWriter, r *http.Request, id string) {
	info, body, err := h.Service.Labels(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	defer func() { _ = body.Close() }()
	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "labels-"+id+".txt"))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

type recordPatch struct {
	OrderNo  *string         `json:"order_no,omitempty"`
	ShipFrom *domain.Address `json:"ship_from,omitempty"`
	ShipTo   *domain.Address `json:"ship_to,omitempty"`
	Package  *domain.Package `json:"package,omitempty"`
	Service  *string         `json:"shipping_service,omitempty"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		rec, ok := h.Service.RecordByID(r.Context(), id)
		if !ok {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"record": rec})
	case http.MethodPatch:
		var patch recordPatch
		if err := decodeBody(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid record patch payload")
			return
		}
		rec, _, err := h.Service.UpdateRecord(r.Context(), id, func(rec *core.ShipmentRecord) error {
			applyPatch(rec, patch)
			return nil
		})
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"record": rec})
	case http.MethodDelete:
		if _, err := h.Service.DeleteRecord(r.Context(), id); err != nil {
			h.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func applyPatch(rec *core.ShipmentRecord, patch recordPatch) {
	if patch.OrderNo != nil {
		rec.OrderNo = *patch.OrderNo
	}
	if patch.ShipFrom != nil {
		rec.ShipFrom = *patch.ShipFrom
	}
	if patch.ShipTo != nil {
		rec.ShipTo = *patch.ShipTo
	}
	if patch.Package != nil {
		rec.Package = *patch.Package
	}
	if patch.Service != nil {
		rec.Service = domain.ServiceTier(*patch.Service)
	}
}

func (h *Handler) handleAddresses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"addresses": h.Service.SavedAddresses(r.Context())})
	case http.MethodPost:
		var body core.SavedAddress
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid address payload")
			return
		}
		created, _, err := h.Service.CreateSavedAddress(r.Context(), body)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"address": created})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleAddress(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, err := h.Service.DeleteSavedAddress(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePackages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"packages": h.Service.SavedPackages(r.Context())})
	case http.MethodPost:
		var body core.SavedPackage
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid package payload")
			return
		}
		created, _, err := h.Service.CreateSavedPackage(r.Context(), body)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"package": created})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handlePackage(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, err := h.Service.DeleteSavedPackage(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps core errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var ruleErr domain.RuleViolationError
	var transition core.InvalidTransitionError
	switch {
	case errors.As(err, &ruleErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "rule violations",
			"violations": ruleErr.Result.Violations,
		})
	case errors.Is(err, core.ErrAlreadyPurchased),
		errors.Is(err, core.ErrBatchNotReady),
		errors.Is(err, ingest.ErrNotCSV),
		errors.Is(err, ingest.ErrTooManyRows):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &transition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrLabelsNotAvailable):
		writeError(w, http.StatusNotFound, err.Error())
	case strings.Contains(err.Error(), "not found"), strings.Contains(err.Error(), "not in batch"):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		if h.Logger != nil {
			h.Logger.Error("request failed", "error", err)
		}
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request, out any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
