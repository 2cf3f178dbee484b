package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/njnj03/homewatch/pkg/models"
)

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func writeEnvelope(w http.ResponseWriter, status int, respStatus string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"status": respStatus, "data": data})
}

func TestListAlertsDecodesEnvelope(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/alerts" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "active" {
			t.Errorf("status query = %q", got)
		}
		writeEnvelope(w, http.StatusOK, "success", models.AlertList{
			Alerts: []*models.Alert{{ID: "alert-1", Status: models.AlertStatusActive}},
			Total:  1,
		})
	})

	list, err := c.ListAlerts(context.Background(), models.ListAlertsParams{Status: models.AlertStatusActive})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.Total != 1 || len(list.Alerts) != 1 || list.Alerts[0].ID != "alert-1" {
		t.Fatalf("list = %+v", list)
	}
}

func TestErrorResponseCarriesDetail(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusConflict, "error", map[string]string{
			"message":    "cannot acknowledge alert in status \"resolved\"",
			"error_type": "conflict",
		})
	})

	_, err := c.AcknowledgeAlert(context.Background(), "alert-1", "")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("status code = %d", apiErr.StatusCode)
	}
	if apiErr.ErrorType != "conflict" {
		t.Errorf("error type = %q", apiErr.ErrorType)
	}
}

func TestErrorResponseWithoutDetailFallsBackToStatus(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetAlert(context.Background(), "alert-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status code = %d", apiErr.StatusCode)
	}
	if apiErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestTransitionSendsNotes(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q", r.Method)
		}
		if r.URL.Path != "/api/v1/alerts/alert-1/resolve" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req models.TransitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("body decode failed: %v", err)
		}
		if req.Notes != "handled" {
			t.Errorf("notes = %q", req.Notes)
		}
		writeEnvelope(w, http.StatusOK, "success", models.Alert{ID: "alert-1", Status: models.AlertStatusResolved})
	})

	alert, err := c.ResolveAlert(context.Background(), "alert-1", "handled")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if alert.Status != models.AlertStatusResolved {
		t.Errorf("status = %q", alert.Status)
	}
}

func TestDeleteModelAcceptsNoContent(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/v1/models/3" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeleteModel(context.Background(), 3); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}
