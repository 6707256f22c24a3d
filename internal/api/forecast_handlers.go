package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/forecast"
	"github.com/Laza-adina/drsp-vak/internal/models"
	"github.com/Laza-adina/drsp-vak/internal/risk"
	"github.com/Laza-adina/drsp-vak/internal/timeseries"
)

// defaultHistoryDays is how far back the forecast pulls case history
// when the caller does not narrow the range.
const defaultHistoryDays = 90

// PredictionStore persists forecast runs.
type PredictionStore interface {
	SavePredictions(ctx context.Context, diseaseID, districtID string, horizonDays int, predictions []models.Prediction) error
	ListPredictions(ctx context.Context, diseaseID, districtID string, horizonDays int) ([]models.Prediction, error)
}

// ForecastCollector counts forecast runs and failures. A nil collector
// disables instrumentation.
type ForecastCollector interface {
	ForecastRun(model string)
	ForecastFailed()
}

// ForecastHandlers serves forecast and risk assessment endpoints.
type ForecastHandlers struct {
	cases       CaseStore
	lookup      AlertLookup
	engine      *forecast.Engine
	predictions PredictionStore
	collector   ForecastCollector
	logger      *slog.Logger
	now         func() time.Time
}

// NewForecastHandlers creates the forecast endpoint handlers.
func NewForecastHandlers(
	cases CaseStore,
	lookup AlertLookup,
	engine *forecast.Engine,
	predictions PredictionStore,
	logger *slog.Logger,
) *ForecastHandlers {
	return &ForecastHandlers{
		cases:       cases,
		lookup:      lookup,
		engine:      engine,
		predictions: predictions,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock overrides the time source for tests.
func (h *ForecastHandlers) SetClock(now func() time.Time) { h.now = now }

// SetCollector attaches run/failure counters.
func (h *ForecastHandlers) SetCollector(c ForecastCollector) { h.collector = c }

// forecastResponse bundles the forecast output with its risk narrative.
type forecastResponse struct {
	DiseaseID   string                  `json:"disease_id"`
	DistrictID  string                  `json:"district_id"`
	HorizonDays int                     `json:"horizon_days"`
	Model       string                  `json:"model"`
	HistoryFit  []forecast.HistoryPoint `json:"history_fit"`
	Predictions []forecast.Point        `json:"predictions"`
	Metrics     forecast.Metrics        `json:"metrics"`
	Risk        risk.Narrative          `json:"risk"`
}

// HandleForecast handles GET /api/forecast. It aggregates the pair's
// case history into a daily series, fits the model, classifies the
// risk, and persists the prediction points.
func (h *ForecastHandlers) HandleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	diseaseID := r.URL.Query().Get("disease_id")
	districtID := r.URL.Query().Get("district_id")
	if diseaseID == "" || districtID == "" {
		writeError(w, http.StatusBadRequest, "disease_id and district_id are required")
		return
	}

	horizonDays := queryInt(r, "horizon_days", forecast.HorizonWeek)
	if err := ValidateHorizon(horizonDays); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	disease, err := h.lookup.GetDisease(r.Context(), diseaseID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Disease not found")
		return
	}
	district, err := h.lookup.GetDistrict(r.Context(), districtID)
	if err != nil {
		writeError(w, http.StatusNotFound, "District not found")
		return
	}

	series, err := h.buildSeries(r.Context(), diseaseID, districtID, queryInt(r, "history_days", defaultHistoryDays))
	if err != nil {
		h.logger.Error("failed to build case series",
			"disease_id", diseaseID,
			"district_id", districtID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Failed to load case history")
		return
	}

	result, err := h.engine.Forecast(series, horizonDays)
	if err != nil {
		if h.collector != nil {
			h.collector.ForecastFailed()
		}
		switch {
		case errors.Is(err, forecast.ErrInvalidHorizon):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, forecast.ErrInsufficientData):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("forecast failed",
				"disease_id", diseaseID,
				"district_id", districtID,
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "Forecast failed")
		}
		return
	}

	if h.collector != nil {
		h.collector.ForecastRun(result.Model)
	}

	narrative := risk.Classify(result.Predictions, result.Metrics, disease.Name, district.Name)

	if err := h.persist(r.Context(), diseaseID, districtID, horizonDays, result); err != nil {
		// A failed save must not cost the caller the forecast.
		h.logger.Error("failed to persist predictions",
			"disease_id", diseaseID,
			"district_id", districtID,
			"error", err,
		)
	}

	writeJSON(w, http.StatusOK, forecastResponse{
		DiseaseID:   diseaseID,
		DistrictID:  districtID,
		HorizonDays: horizonDays,
		Model:       result.Model,
		HistoryFit:  result.HistoryFit,
		Predictions: result.Predictions,
		Metrics:     result.Metrics,
		Risk:        narrative,
	})
}

// HandlePredictions handles GET /api/predictions, returning the last
// persisted forecast run for a pair.
func (h *ForecastHandlers) HandlePredictions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	diseaseID := r.URL.Query().Get("disease_id")
	districtID := r.URL.Query().Get("district_id")
	if diseaseID == "" || districtID == "" {
		writeError(w, http.StatusBadRequest, "disease_id and district_id are required")
		return
	}

	horizonDays := queryInt(r, "horizon_days", forecast.HorizonWeek)
	if err := ValidateHorizon(horizonDays); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	predictions, err := h.predictions.ListPredictions(r.Context(), diseaseID, districtID, horizonDays)
	if err != nil {
		h.logger.Error("failed to list predictions", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list predictions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

func (h *ForecastHandlers) buildSeries(ctx context.Context, diseaseID, districtID string, historyDays int) (timeseries.DailySeries, error) {
	if historyDays < 1 {
		historyDays = defaultHistoryDays
	}

	end := timeseries.Day(h.now())
	start := end.AddDate(0, 0, -(historyDays - 1))

	cases, err := h.cases.ListCases(ctx, models.CaseQuery{
		DiseaseID:  diseaseID,
		DistrictID: districtID,
		DateFrom:   &start,
		Limit:      100000,
	})
	if err != nil {
		return nil, err
	}

	return timeseries.Aggregate(cases, timeseries.BySymptomOnset, start, end)
}

func (h *ForecastHandlers) persist(ctx context.Context, diseaseID, districtID string, horizonDays int, result *forecast.Result) error {
	predictions := make([]models.Prediction, len(result.Predictions))
	for i, p := range result.Predictions {
		predictions[i] = models.Prediction{
			DiseaseID:       diseaseID,
			DistrictID:      districtID,
			Date:            p.Date,
			HorizonDays:     horizonDays,
			PredictedCases:  p.Predicted,
			LowerBound:      p.Lower,
			UpperBound:      p.Upper,
			ConfidenceScore: result.Metrics.ConfidenceScore,
			Model:           result.Model,
		}
	}
	return h.predictions.SavePredictions(ctx, diseaseID, districtID, horizonDays, predictions)
}
