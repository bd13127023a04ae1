package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"shipcore/pkg/domain"
)

func TestBulkUpdate(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]string)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Action string      `json:"action"`
			Patch  RecordPatch `json:"patch"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1/records/"), "/actions")
		mu.Lock()
		seen[id] = body.Action
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	client, err := New(server.URL, "token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := client.BulkUpdate(context.Background(), BulkUpdateRequest{
		Action: "change_service",
		IDs:    []string{"SHP-1", "SHP-2", "SHP-3"},
		Patch:  RecordPatch{Service: domain.ServicePriority},
	})
	if err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}
	if report.Requested != 3 || report.Succeeded != 3 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	for _, id := range []string{"SHP-1", "SHP-2", "SHP-3"} {
		if seen[id] != "change_service" {
			t.Fatalf("record %s action = %q", id, seen[id])
		}
	}
}

func TestBulkUpdateDeleteUsesDeleteEndpoint(t *testing.T) {
	var mu sync.Mutex
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)
	client, err := New(server.URL, "token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := client.BulkUpdate(context.Background(), BulkUpdateRequest{
		Action: "delete",
		IDs:    []string{"SHP-1", "SHP-2"},
	})
	if err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}
	if report.Succeeded != 2 {
		t.Fatalf("report = %+v", report)
	}
	for _, m := range methods {
		if m != http.MethodDelete {
			t.Fatalf("method = %q, want DELETE", m)
		}
	}
}

func TestBulkUpdatePartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "SHP-2") {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"record locked"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	client, err := New(server.URL, "token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := client.BulkUpdate(context.Background(), BulkUpdateRequest{
		Action: "change_service",
		IDs:    []string{"SHP-1", "SHP-2", "SHP-3"},
		Patch:  RecordPatch{Service: domain.ServiceGround},
	})
	// Per-record failures are reported, not returned as an error.
	if err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}
	if report.Succeeded != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].ID != "SHP-2" {
		t.Fatalf("failures = %+v", report.Failures)
	}
	if !strings.Contains(report.Failures[0].Error, "record locked") {
		t.Fatalf("failure error = %q", report.Failures[0].Error)
	}
}

func TestBulkUpdateEmptySelection(t *testing.T) {
	client, err := New("http://backend.invalid", "token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := client.BulkUpdate(context.Background(), BulkUpdateRequest{Action: "delete"})
	if err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}
	if report.Requested != 0 || report.Succeeded != 0 {
		t.Fatalf("report = %+v", report)
	}
}

func TestBulkUpdateCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	client, err := New(server.URL, "token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.BulkUpdate(ctx, BulkUpdateRequest{Action: "delete", IDs: []string{"SHP-1"}})
	if err == nil {
		t.Fatal("cancelled context should surface an error")
	}
}
