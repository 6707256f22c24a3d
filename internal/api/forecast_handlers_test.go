package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/database"
	"github.com/Laza-adina/drsp-vak/internal/forecast"
	"github.com/Laza-adina/drsp-vak/internal/models"
	"github.com/Laza-adina/drsp-vak/internal/risk"
)

type fakeCaseStore struct {
	cases []models.Case
}

func (s *fakeCaseStore) CreateCase(_ context.Context, c *models.Case) error {
	c.ID = "case-1"
	s.cases = append(s.cases, *c)
	return nil
}

func (s *fakeCaseStore) GetCase(_ context.Context, id string) (*models.Case, error) {
	for _, c := range s.cases {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, database.ErrCaseNotFound
}

func (s *fakeCaseStore) ListCases(_ context.Context, q models.CaseQuery) ([]models.Case, error) {
	out := []models.Case{}
	for _, c := range s.cases {
		if q.DiseaseID != "" && c.DiseaseID != q.DiseaseID {
			continue
		}
		if q.DistrictID != "" && c.DistrictID != q.DistrictID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeCaseStore) UpdateCaseStatus(_ context.Context, id string, status models.CaseStatus) error {
	for i := range s.cases {
		if s.cases[i].ID == id {
			s.cases[i].Status = status
			return nil
		}
	}
	return database.ErrCaseNotFound
}

type fakePredictionStore struct {
	saved []models.Prediction
}

func (s *fakePredictionStore) SavePredictions(_ context.Context, _, _ string, _ int, predictions []models.Prediction) error {
	s.saved = predictions
	return nil
}

func (s *fakePredictionStore) ListPredictions(_ context.Context, diseaseID, districtID string, horizonDays int) ([]models.Prediction, error) {
	out := []models.Prediction{}
	for _, p := range s.saved {
		if p.DiseaseID == diseaseID && p.DistrictID == districtID && p.HorizonDays == horizonDays {
			out = append(out, p)
		}
	}
	return out, nil
}

var testForecastNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// historyCases generates `perDay` cases per day for the `days` days
// ending yesterday.
func historyCases(days, perDay int) []models.Case {
	var cases []models.Case
	for d := 1; d <= days; d++ {
		for i := 0; i < perDay; i++ {
			cases = append(cases, models.Case{
				DiseaseID:    "measles",
				DistrictID:   "antsirabe1",
				SymptomOnset: testForecastNow.AddDate(0, 0, -d),
			})
		}
	}
	return cases
}

func newTestForecastHandlers(cases []models.Case, predictions *fakePredictionStore) *ForecastHandlers {
	h := NewForecastHandlers(
		&fakeCaseStore{cases: cases},
		fakeLookup{
			disease:  models.Disease{ID: "measles", Name: "Measles", AlertThreshold: 5, EpidemicThreshold: 10},
			district: models.District{ID: "antsirabe1", Name: "Antsirabe I", Population: 300000},
		},
		forecast.NewEngine(nil, discardLogger()),
		predictions,
		discardLogger(),
	)
	h.SetClock(func() time.Time { return testForecastNow })
	return h
}

func TestHandleForecast(t *testing.T) {
	predictions := &fakePredictionStore{}
	h := newTestForecastHandlers(historyCases(30, 2), predictions)

	req := httptest.NewRequest(http.MethodGet, "/api/forecast?disease_id=measles&district_id=antsirabe1&horizon_days=7", nil)
	rec := httptest.NewRecorder()
	h.HandleForecast(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		HorizonDays int              `json:"horizon_days"`
		Predictions []forecast.Point `json:"predictions"`
		Risk        risk.Narrative   `json:"risk"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Predictions) != 7 {
		t.Errorf("expected 7 predictions, got %d", len(resp.Predictions))
	}
	if resp.Risk.AlertLevel == "" {
		t.Error("expected risk narrative in response")
	}

	// A successful forecast persists one prediction row per day.
	if len(predictions.saved) != 7 {
		t.Errorf("expected 7 saved predictions, got %d", len(predictions.saved))
	}
	for _, p := range predictions.saved {
		if p.DiseaseID != "measles" || p.DistrictID != "antsirabe1" || p.HorizonDays != 7 {
			t.Errorf("bad prediction row: %+v", p)
		}
	}
}

func TestHandleForecastRequiresPair(t *testing.T) {
	h := newTestForecastHandlers(nil, &fakePredictionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/forecast?disease_id=measles", nil)
	rec := httptest.NewRecorder()
	h.HandleForecast(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleForecastRejectsBadHorizon(t *testing.T) {
	h := newTestForecastHandlers(historyCases(30, 2), &fakePredictionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/forecast?disease_id=measles&district_id=antsirabe1&horizon_days=10", nil)
	rec := httptest.NewRecorder()
	h.HandleForecast(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleForecastInsufficientHistory(t *testing.T) {
	h := newTestForecastHandlers(historyCases(3, 1), &fakePredictionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/forecast?disease_id=measles&district_id=antsirabe1&horizon_days=7&history_days=3", nil)
	rec := httptest.NewRecorder()
	h.HandleForecast(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlePredictionsReturnsLastRun(t *testing.T) {
	predictions := &fakePredictionStore{}
	h := newTestForecastHandlers(historyCases(30, 2), predictions)

	// Run a forecast first so the store has rows.
	req := httptest.NewRequest(http.MethodGet, "/api/forecast?disease_id=measles&district_id=antsirabe1&horizon_days=7", nil)
	h.HandleForecast(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/predictions?disease_id=measles&district_id=antsirabe1&horizon_days=7", nil)
	rec := httptest.NewRecorder()
	h.HandlePredictions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 7 {
		t.Errorf("count = %d, want 7", resp.Count)
	}
}
