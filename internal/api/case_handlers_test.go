package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Laza-adina/drsp-vak/internal/models"
)

func newTestCaseHandlers(cases []models.Case) (*CaseHandlers, *fakeCaseStore) {
	store := &fakeCaseStore{cases: cases}
	return NewCaseHandlers(store, discardLogger()), store
}

func TestCreateCase(t *testing.T) {
	h, store := newTestCaseHandlers(nil)

	payload := map[string]interface{}{
		"disease_id":    "measles",
		"district_id":   "antsirabe1",
		"symptom_onset": "2024-03-10T00:00:00Z",
		"declared_at":   "2024-03-12T00:00:00Z",
		"status":        "suspected",
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/cases", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleCases(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(store.cases) != 1 {
		t.Fatalf("expected 1 stored case, got %d", len(store.cases))
	}
}

func TestCreateCaseValidation(t *testing.T) {
	h, store := newTestCaseHandlers(nil)

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{
			name: "missing disease",
			payload: map[string]interface{}{
				"district_id":   "antsirabe1",
				"symptom_onset": "2024-03-10T00:00:00Z",
				"declared_at":   "2024-03-12T00:00:00Z",
			},
		},
		{
			name: "declaration before onset",
			payload: map[string]interface{}{
				"disease_id":    "measles",
				"district_id":   "antsirabe1",
				"symptom_onset": "2024-03-12T00:00:00Z",
				"declared_at":   "2024-03-10T00:00:00Z",
			},
		},
		{
			name: "bad status",
			payload: map[string]interface{}{
				"disease_id":    "measles",
				"district_id":   "antsirabe1",
				"symptom_onset": "2024-03-10T00:00:00Z",
				"declared_at":   "2024-03-12T00:00:00Z",
				"status":        "cured",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.payload)
			req := httptest.NewRequest(http.MethodPost, "/api/cases", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			h.HandleCases(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}

	if len(store.cases) != 0 {
		t.Errorf("invalid payloads must not be stored, got %d cases", len(store.cases))
	}
}

func TestListCasesForwardsFilters(t *testing.T) {
	var stored []models.Case
	for i := 0; i < 3; i++ {
		stored = append(stored, models.Case{
			ID:         fmt.Sprintf("c%d", i),
			DiseaseID:  "measles",
			DistrictID: "antsirabe1",
		})
	}
	stored = append(stored, models.Case{ID: "other", DiseaseID: "plague", DistrictID: "betafo"})

	h, _ := newTestCaseHandlers(stored)

	req := httptest.NewRequest(http.MethodGet, "/api/cases?disease_id=measles&district_id=antsirabe1", nil)
	rec := httptest.NewRecorder()
	h.HandleCases(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("count = %d, want 3", resp.Count)
	}
}

func TestGetCaseNotFound(t *testing.T) {
	h, _ := newTestCaseHandlers(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/cases/missing", nil)
	rec := httptest.NewRecorder()
	h.HandleCaseByID(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateCaseStatus(t *testing.T) {
	h, store := newTestCaseHandlers([]models.Case{
		{ID: "c1", DiseaseID: "measles", DistrictID: "antsirabe1", Status: models.CaseStatusSuspected},
	})

	body := bytes.NewBufferString(`{"status": "confirmed"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/cases/c1/status", body)
	rec := httptest.NewRecorder()
	h.HandleCaseByID(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if store.cases[0].Status != models.CaseStatusConfirmed {
		t.Errorf("status = %s, want confirmed", store.cases[0].Status)
	}
}

func TestUpdateCaseStatusRejectsUnknown(t *testing.T) {
	h, _ := newTestCaseHandlers([]models.Case{{ID: "c1"}})

	body := bytes.NewBufferString(`{"status": "zombie"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/cases/c1/status", body)
	rec := httptest.NewRecorder()
	h.HandleCaseByID(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
