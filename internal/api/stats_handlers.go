package api

import (
	"log/slog"
	"net/http"

	"github.com/Laza-adina/drsp-vak/internal/reporting"
)

// defaultOverviewWindowDays is the trailing window for the dashboard
// overview when the caller does not specify one.
const defaultOverviewWindowDays = 7

// StatsHandlers serves dashboard indicator endpoints.
type StatsHandlers struct {
	reporter *reporting.Reporter
	logger   *slog.Logger
}

// NewStatsHandlers creates the statistics endpoint handlers.
func NewStatsHandlers(reporter *reporting.Reporter, logger *slog.Logger) *StatsHandlers {
	return &StatsHandlers{reporter: reporter, logger: logger}
}

// HandleOverview handles GET /api/stats/overview.
func (h *StatsHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	windowDays := queryInt(r, "window_days", defaultOverviewWindowDays)
	if windowDays < 1 {
		writeError(w, http.StatusBadRequest, "window_days must be positive")
		return
	}

	overview, err := h.reporter.Overview(r.Context(), windowDays)
	if err != nil {
		h.logger.Error("failed to compute overview", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute overview")
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

// HandleDailyCurve handles GET /api/stats/daily-curve, returning the
// gap-free daily case counts for a (disease, district) pair.
func (h *StatsHandlers) HandleDailyCurve(w http.ResponseWriter, r *http.Request) {
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

	windowDays := queryInt(r, "window_days", 30)
	if windowDays < 1 {
		writeError(w, http.StatusBadRequest, "window_days must be positive")
		return
	}

	curve, err := h.reporter.DailyCurve(r.Context(), diseaseID, districtID, windowDays)
	if err != nil {
		h.logger.Error("failed to compute daily curve",
			"disease_id", diseaseID,
			"district_id", districtID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Failed to compute daily curve")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"disease_id":  diseaseID,
		"district_id": districtID,
		"window_days": windowDays,
		"curve":       curve,
		"total":       curve.Total(),
	})
}
