package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/alerting"
	"github.com/Laza-adina/drsp-vak/internal/database"
	"github.com/Laza-adina/drsp-vak/internal/models"
	"github.com/Laza-adina/drsp-vak/internal/recommend"
)

// AlertStore is the alert persistence surface the handlers need.
type AlertStore interface {
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	ListAlerts(ctx context.Context, q models.AlertQuery) ([]models.Alert, error)
	SetRecommendedActions(ctx context.Context, id, actions string) error
}

// ThresholdEvaluator runs threshold evaluation and alert resolution.
// Satisfied by alerting.Engine.
type ThresholdEvaluator interface {
	EvaluateThresholds(ctx context.Context, windowDays int) ([]models.Alert, error)
	Resolve(ctx context.Context, alertID, actions string, date time.Time) (*models.Alert, error)
}

// InterventionStore is the intervention persistence surface the
// handlers need.
type InterventionStore interface {
	CreateIntervention(ctx context.Context, iv *models.Intervention) error
	ListInterventionsForAlert(ctx context.Context, alertID string) ([]models.Intervention, error)
	UpdateInterventionStatus(ctx context.Context, id string, status models.InterventionStatus, effectiveness *int) error
}

// AlertLookup resolves the disease and district behind an alert, used
// to build recommendation context.
type AlertLookup interface {
	GetDisease(ctx context.Context, id string) (*models.Disease, error)
	GetDistrict(ctx context.Context, id string) (*models.District, error)
}

type alertLookup struct {
	diseases  DiseaseStore
	districts DistrictStore
}

func (l alertLookup) GetDisease(ctx context.Context, id string) (*models.Disease, error) {
	return l.diseases.GetDisease(ctx, id)
}

func (l alertLookup) GetDistrict(ctx context.Context, id string) (*models.District, error) {
	return l.districts.GetDistrict(ctx, id)
}

// NewAlertLookup adapts the catalog stores into an AlertLookup.
func NewAlertLookup(diseases DiseaseStore, districts DistrictStore) AlertLookup {
	return alertLookup{diseases: diseases, districts: districts}
}

// AlertHandlers serves the alert lifecycle endpoints.
type AlertHandlers struct {
	alerts        AlertStore
	engine        ThresholdEvaluator
	interventions InterventionStore
	lookup        AlertLookup
	recommender   recommend.Recommender
	windowDays    int
	logger        *slog.Logger
}

// NewAlertHandlers creates the alert endpoint handlers. windowDays is
// the rolling window used for on-demand threshold evaluation.
func NewAlertHandlers(
	alerts AlertStore,
	engine ThresholdEvaluator,
	interventions InterventionStore,
	lookup AlertLookup,
	recommender recommend.Recommender,
	windowDays int,
	logger *slog.Logger,
) *AlertHandlers {
	return &AlertHandlers{
		alerts:        alerts,
		engine:        engine,
		interventions: interventions,
		lookup:        lookup,
		recommender:   recommender,
		windowDays:    windowDays,
		logger:        logger,
	}
}

// HandleAlerts handles GET /api/alerts with optional filters.
func (h *AlertHandlers) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	q := models.AlertQuery{
		Status:     models.AlertStatus(r.URL.Query().Get("status")),
		DiseaseID:  r.URL.Query().Get("disease_id"),
		DistrictID: r.URL.Query().Get("district_id"),
		Limit:      queryInt(r, "limit", 100),
		Offset:     queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("severity"); raw != "" {
		severity, err := models.ParseSeverity(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid severity filter")
			return
		}
		q.Severity = severity
	}
	q.DateFrom = queryDate(r, "date_from")
	q.DateTo = queryDate(r, "date_to")

	alerts, err := h.alerts.ListAlerts(r.Context(), q)
	if err != nil {
		h.logger.Error("failed to list alerts", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// HandleEvaluate handles POST /api/alerts/evaluate, running a threshold
// sweep immediately instead of waiting for the scheduler.
func (h *AlertHandlers) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	windowDays := queryInt(r, "window_days", h.windowDays)

	alerts, err := h.engine.EvaluateThresholds(r.Context(), windowDays)
	if err != nil {
		if errors.Is(err, alerting.ErrInvalidWindow) {
			writeError(w, http.StatusBadRequest, "Window must be a positive number of days")
			return
		}
		h.logger.Error("threshold evaluation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Threshold evaluation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts":      alerts,
		"count":       len(alerts),
		"window_days": windowDays,
	})
}

// HandleAlertByID dispatches /api/alerts/{id} and its action routes:
// POST {id}/resolve, POST {id}/recommendations, GET and POST
// {id}/interventions.
func (h *AlertHandlers) HandleAlertByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/alerts/")
	if id == "" {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}

	switch {
	case hasSuffixAction(r.URL.Path, "/resolve"):
		h.resolveAlert(w, r, id)
	case hasSuffixAction(r.URL.Path, "/recommendations"):
		h.recommendActions(w, r, id)
	case hasSuffixAction(r.URL.Path, "/interventions"):
		h.handleInterventions(w, r, id)
	case r.Method == http.MethodGet:
		h.getAlert(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *AlertHandlers) getAlert(w http.ResponseWriter, r *http.Request, id string) {
	alert, err := h.alerts.GetAlert(r.Context(), id)
	if err != nil {
		if errors.Is(err, alerting.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.logger.Error("failed to get alert", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get alert")
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

func (h *AlertHandlers) resolveAlert(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		ActionsTaken string `json:"actions_taken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	alert, err := h.engine.Resolve(r.Context(), id, req.ActionsTaken, time.Now().UTC())
	if err != nil {
		if errors.Is(err, alerting.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.logger.Error("failed to resolve alert", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to resolve alert")
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

func (h *AlertHandlers) recommendActions(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	alert, err := h.alerts.GetAlert(r.Context(), id)
	if err != nil {
		if errors.Is(err, alerting.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.logger.Error("failed to get alert", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get alert")
		return
	}

	disease, err := h.lookup.GetDisease(r.Context(), alert.DiseaseID)
	if err != nil {
		h.logger.Error("failed to load disease for recommendations", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to build recommendation context")
		return
	}
	district, err := h.lookup.GetDistrict(r.Context(), alert.DistrictID)
	if err != nil {
		h.logger.Error("failed to load district for recommendations", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to build recommendation context")
		return
	}

	actions, err := h.recommender.RecommendActions(r.Context(), *alert, *disease, *district)
	if err != nil {
		h.logger.Error("recommendation generation failed", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate recommendations")
		return
	}

	joined := strings.Join(actions, "\n")
	if err := h.alerts.SetRecommendedActions(r.Context(), id, joined); err != nil {
		h.logger.Error("failed to store recommendations", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store recommendations")
		return
	}

	h.logger.Info("recommendations generated", "alert_id", id, "actions", len(actions))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alert_id": id,
		"actions":  actions,
	})
}

func (h *AlertHandlers) handleInterventions(w http.ResponseWriter, r *http.Request, alertID string) {
	switch r.Method {
	case http.MethodGet:
		interventions, err := h.interventions.ListInterventionsForAlert(r.Context(), alertID)
		if err != nil {
			h.logger.Error("failed to list interventions", "alert_id", alertID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list interventions")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"interventions": interventions,
			"count":         len(interventions),
		})
	case http.MethodPost:
		var iv models.Intervention
		if err := json.NewDecoder(r.Body).Decode(&iv); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		iv.AlertID = alertID

		// Inherit the pair from the alert so interventions always
		// reference a real outbreak context.
		alert, err := h.alerts.GetAlert(r.Context(), alertID)
		if err != nil {
			if errors.Is(err, alerting.ErrAlertNotFound) {
				writeError(w, http.StatusNotFound, "Alert not found")
				return
			}
			h.logger.Error("failed to get alert", "alert_id", alertID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get alert")
			return
		}
		iv.DiseaseID = alert.DiseaseID
		iv.DistrictID = alert.DistrictID

		if iv.Title == "" {
			writeError(w, http.StatusBadRequest, "Intervention title is required")
			return
		}
		switch iv.Type {
		case models.InterventionInvestigation, models.InterventionVaccination,
			models.InterventionDisinfection, models.InterventionAwareness,
			models.InterventionTreatment, models.InterventionQuarantine:
		default:
			writeError(w, http.StatusBadRequest, "Invalid intervention type")
			return
		}

		if err := h.interventions.CreateIntervention(r.Context(), &iv); err != nil {
			h.logger.Error("failed to create intervention", "alert_id", alertID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create intervention")
			return
		}

		writeJSON(w, http.StatusCreated, iv)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleInterventionStatus handles PUT /api/interventions/{id}/status.
func (h *AlertHandlers) HandleInterventionStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := pathID(r.URL.Path, "/api/interventions/")
	if id == "" {
		writeError(w, http.StatusNotFound, "Intervention not found")
		return
	}

	var req struct {
		Status             models.InterventionStatus `json:"status"`
		EffectivenessScore *int                      `json:"effectiveness_score,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Status {
	case models.InterventionPlanned, models.InterventionInProgress,
		models.InterventionCompleted, models.InterventionCancelled:
	default:
		writeError(w, http.StatusBadRequest, "Invalid intervention status")
		return
	}
	if req.EffectivenessScore != nil && (*req.EffectivenessScore < 1 || *req.EffectivenessScore > 5) {
		writeError(w, http.StatusBadRequest, "Effectiveness score must be between 1 and 5")
		return
	}

	if err := h.interventions.UpdateInterventionStatus(r.Context(), id, req.Status, req.EffectivenessScore); err != nil {
		if errors.Is(err, database.ErrInterventionNotFound) {
			writeError(w, http.StatusNotFound, "Intervention not found")
			return
		}
		h.logger.Error("failed to update intervention", "intervention_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update intervention")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  req.Status,
	})
}
