package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/alerting"
	"github.com/Laza-adina/drsp-vak/internal/models"
)

type fakeAlertStore struct {
	alerts       map[string]*models.Alert
	lastQuery    models.AlertQuery
	savedActions map[string]string
}

func newFakeAlertStore(alerts ...*models.Alert) *fakeAlertStore {
	s := &fakeAlertStore{
		alerts:       map[string]*models.Alert{},
		savedActions: map[string]string{},
	}
	for _, a := range alerts {
		s.alerts[a.ID] = a
	}
	return s
}

func (s *fakeAlertStore) GetAlert(_ context.Context, id string) (*models.Alert, error) {
	a, ok := s.alerts[id]
	if !ok {
		return nil, alerting.ErrAlertNotFound
	}
	return a, nil
}

func (s *fakeAlertStore) ListAlerts(_ context.Context, q models.AlertQuery) ([]models.Alert, error) {
	s.lastQuery = q
	out := []models.Alert{}
	for _, a := range s.alerts {
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *fakeAlertStore) SetRecommendedActions(_ context.Context, id, actions string) error {
	if _, ok := s.alerts[id]; !ok {
		return alerting.ErrAlertNotFound
	}
	s.savedActions[id] = actions
	return nil
}

type fakeEvaluator struct {
	raised     []models.Alert
	lastWindow int
	resolveErr error
}

func (e *fakeEvaluator) EvaluateThresholds(_ context.Context, windowDays int) ([]models.Alert, error) {
	if windowDays < 1 {
		return nil, alerting.ErrInvalidWindow
	}
	e.lastWindow = windowDays
	return e.raised, nil
}

func (e *fakeEvaluator) Resolve(_ context.Context, alertID, actions string, date time.Time) (*models.Alert, error) {
	if e.resolveErr != nil {
		return nil, e.resolveErr
	}
	return &models.Alert{
		ID:             alertID,
		Status:         models.AlertStatusResolved,
		ActionsTaken:   actions,
		ResolutionDate: &date,
	}, nil
}

type fakeInterventionStore struct {
	created []models.Intervention
}

func (s *fakeInterventionStore) CreateIntervention(_ context.Context, iv *models.Intervention) error {
	iv.ID = fmt.Sprintf("iv-%d", len(s.created)+1)
	s.created = append(s.created, *iv)
	return nil
}

func (s *fakeInterventionStore) ListInterventionsForAlert(_ context.Context, alertID string) ([]models.Intervention, error) {
	out := []models.Intervention{}
	for _, iv := range s.created {
		if iv.AlertID == alertID {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (s *fakeInterventionStore) UpdateInterventionStatus(_ context.Context, id string, status models.InterventionStatus, _ *int) error {
	for i := range s.created {
		if s.created[i].ID == id {
			s.created[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("intervention not found")
}

type fakeLookup struct {
	disease  models.Disease
	district models.District
}

func (l fakeLookup) GetDisease(_ context.Context, _ string) (*models.Disease, error) {
	return &l.disease, nil
}

func (l fakeLookup) GetDistrict(_ context.Context, _ string) (*models.District, error) {
	return &l.district, nil
}

type fakeRecommender struct {
	actions []string
}

func (r fakeRecommender) RecommendActions(_ context.Context, _ models.Alert, _ models.Disease, _ models.District) ([]string, error) {
	return r.actions, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAlertHandlers(store *fakeAlertStore, engine *fakeEvaluator, interventions *fakeInterventionStore) *AlertHandlers {
	return NewAlertHandlers(
		store,
		engine,
		interventions,
		fakeLookup{
			disease:  models.Disease{ID: "measles", Name: "Measles", AlertThreshold: 5, EpidemicThreshold: 10},
			district: models.District{ID: "antsirabe1", Name: "Antsirabe I", Population: 300000},
		},
		fakeRecommender{actions: []string{"Investigate cluster", "Start vaccination"}},
		7,
		discardLogger(),
	)
}

func activeAlert(id string) *models.Alert {
	return &models.Alert{
		ID:         id,
		Severity:   models.SeverityAlert,
		Status:     models.AlertStatusActive,
		DiseaseID:  "measles",
		DistrictID: "antsirabe1",
		CaseCount:  8,
	}
}

func TestHandleAlertsFiltersByStatus(t *testing.T) {
	store := newFakeAlertStore(activeAlert("a1"), &models.Alert{ID: "a2", Status: models.AlertStatusResolved})
	h := newTestAlertHandlers(store, &fakeEvaluator{}, &fakeInterventionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/alerts?status=active", nil)
	rec := httptest.NewRecorder()
	h.HandleAlerts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Alerts []models.Alert `json:"alerts"`
		Count  int            `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 1 || resp.Alerts[0].ID != "a1" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if store.lastQuery.Status != models.AlertStatusActive {
		t.Errorf("status filter not forwarded: %+v", store.lastQuery)
	}
}

func TestHandleAlertsRejectsBadSeverity(t *testing.T) {
	h := newTestAlertHandlers(newFakeAlertStore(), &fakeEvaluator{}, &fakeInterventionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/alerts?severity=catastrophic", nil)
	rec := httptest.NewRecorder()
	h.HandleAlerts(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleEvaluate(t *testing.T) {
	engine := &fakeEvaluator{raised: []models.Alert{*activeAlert("a1")}}
	h := newTestAlertHandlers(newFakeAlertStore(), engine, &fakeInterventionStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/evaluate?window_days=14", nil)
	rec := httptest.NewRecorder()
	h.HandleEvaluate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if engine.lastWindow != 14 {
		t.Errorf("window = %d, want 14", engine.lastWindow)
	}
}

func TestHandleEvaluateRejectsBadWindow(t *testing.T) {
	h := newTestAlertHandlers(newFakeAlertStore(), &fakeEvaluator{}, &fakeInterventionStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/evaluate?window_days=-1", nil)
	rec := httptest.NewRecorder()
	h.HandleEvaluate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetAlertNotFound(t *testing.T) {
	h := newTestAlertHandlers(newFakeAlertStore(), &fakeEvaluator{}, &fakeInterventionStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/alerts/missing", nil)
	rec := httptest.NewRecorder()
	h.HandleAlertByID(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestResolveAlert(t *testing.T) {
	h := newTestAlertHandlers(newFakeAlertStore(activeAlert("a1")), &fakeEvaluator{}, &fakeInterventionStore{})

	body := bytes.NewBufferString(`{"actions_taken": "Vaccination campaign completed"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/alerts/a1/resolve", body)
	rec := httptest.NewRecorder()
	h.HandleAlertByID(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var alert models.Alert
	if err := json.NewDecoder(rec.Body).Decode(&alert); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if alert.Status != models.AlertStatusResolved {
		t.Errorf("status = %s, want resolved", alert.Status)
	}
	if alert.ActionsTaken != "Vaccination campaign completed" {
		t.Errorf("actions = %q", alert.ActionsTaken)
	}
}

func TestResolveAlertNotFound(t *testing.T) {
	engine := &fakeEvaluator{resolveErr: alerting.ErrAlertNotFound}
	h := newTestAlertHandlers(newFakeAlertStore(), engine, &fakeInterventionStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/missing/resolve", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	h.HandleAlertByID(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRecommendationsStoredOnAlert(t *testing.T) {
	store := newFakeAlertStore(activeAlert("a1"))
	h := newTestAlertHandlers(store, &fakeEvaluator{}, &fakeInterventionStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/a1/recommendations", nil)
	rec := httptest.NewRecorder()
	h.HandleAlertByID(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	saved := store.savedActions["a1"]
	if !strings.Contains(saved, "Investigate cluster") || !strings.Contains(saved, "Start vaccination") {
		t.Errorf("saved actions = %q", saved)
	}
}

func TestCreateInterventionInheritsAlertPair(t *testing.T) {
	interventions := &fakeInterventionStore{}
	h := newTestAlertHandlers(newFakeAlertStore(activeAlert("a1")), &fakeEvaluator{}, interventions)

	body := bytes.NewBufferString(`{"type": "vaccination", "title": "Ring vaccination"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/alerts/a1/interventions", body)
	rec := httptest.NewRecorder()
	h.HandleAlertByID(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(interventions.created) != 1 {
		t.Fatalf("expected 1 intervention, got %d", len(interventions.created))
	}
	iv := interventions.created[0]
	if iv.AlertID != "a1" || iv.DiseaseID != "measles" || iv.DistrictID != "antsirabe1" {
		t.Errorf("intervention did not inherit alert context: %+v", iv)
	}
}

func TestCreateInterventionRejectsBadType(t *testing.T) {
	h := newTestAlertHandlers(newFakeAlertStore(activeAlert("a1")), &fakeEvaluator{}, &fakeInterventionStore{})

	body := bytes.NewBufferString(`{"type": "prayer", "title": "x"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/alerts/a1/interventions", body)
	rec := httptest.NewRecorder()
	h.HandleAlertByID(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
