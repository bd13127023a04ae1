// Package gateway is the HTTP client for the external shipping backend. It
// mirrors the core service surface (list, patch, bulk, purchase) against the
// remote API using bearer-token credentials.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"shipcore/pkg/domain"
)

const defaultTimeout = 30 * time.Second

// APIError carries a non-2xx backend response.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Client talks to one backend account. Safe for concurrent use.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// New constructs a gateway client for the backend at baseURL authenticating
// with the bearer token.
func New(baseURL, token string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("gateway base URL required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway URL: %w", err)
	}
	c := &Client{
		baseURL: u,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path, _ = url.JoinPath(u.Path, path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// ListQuery filters and paginates a remote record listing.
type ListQuery struct {
	Page    int
	Search  string
	Sort    string
	Status  string
	Service string
}

// RecordList is one page of remote records with the backend's page-number
// pagination envelope.
type RecordList struct {
	Records     []domain.ShipmentRecord `json:"records"`
	Count       int                     `json:"count"`
	Current     int                     `json:"current"`
	HasNext     bool                    `json:"has_next"`
	HasPrevious bool                    `json:"has_previous"`
}

// ListShipments fetches one page of a batch's records from the backend.
func (c *Client) ListShipments(ctx context.Context, batchID string, q ListQuery) (RecordList, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	if q.Service != "" {
		query.Set("service", q.Service)
	}
	var out RecordList
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/batches/%s/records", batchID), query, nil, &out)
	return out, err
}

// RecordPatch is a partial update of one remote record. Nil fields are left
// unchanged by the backend.
type RecordPatch struct {
	ShipFrom *domain.Address    `json:"ship_from,omitempty"`
	ShipTo   *domain.Address    `json:"ship_to,omitempty"`
	Package  *domain.Package    `json:"package,omitempty"`
	Service  domain.ServiceTier `json:"shipping_service,omitempty"`
}

// PatchShipment updates one record; the backend revalidates and reprices.
func (c *Client) PatchShipment(ctx context.Context, id string, patch RecordPatch) (domain.ShipmentRecord, error) {
	var out domain.ShipmentRecord
	err := c.do(ctx, http.MethodPatch, "/api/v1/records/"+id, nil, patch, &out)
	return out, err
}

// DeleteShipment removes one record.
func (c *Client) DeleteShipment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/records/"+id, nil, nil, nil)
}

// PurchaseRequest submits a checkout with the chosen label format and the
// caller-computed total; the backend rejects totals that drifted.
type PurchaseRequest struct {
	LabelFormat string  `json:"label_format"`
	Total       float64 `json:"total"`
}

// Purchase buys labels for the whole batch and returns the label artifact.
func (c *Client) Purchase(ctx context.Context, batchID string, req PurchaseRequest) ([]byte, error) {
	u := *c.baseURL
	u.Path, _ = url.JoinPath(u.Path, fmt.Sprintf("/api/v1/batches/%s/purchase", batchID))

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}
