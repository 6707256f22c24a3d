package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Laza-adina/drsp-vak/internal/database"
	"github.com/Laza-adina/drsp-vak/internal/models"
)

// DiseaseStore is the disease catalog surface the handlers need.
type DiseaseStore interface {
	CreateDisease(ctx context.Context, d *models.Disease) error
	GetDisease(ctx context.Context, id string) (*models.Disease, error)
	ListDiseases(ctx context.Context) ([]models.Disease, error)
	UpdateThresholds(ctx context.Context, id string, alertThreshold, epidemicThreshold int) error
}

// DistrictStore is the geography catalog surface the handlers need.
type DistrictStore interface {
	GetDistrict(ctx context.Context, id string) (*models.District, error)
	ListDistricts(ctx context.Context) ([]models.District, error)
	CreateDistrict(ctx context.Context, d *models.District) error
	ListHealthCenters(ctx context.Context, districtID string) ([]models.HealthCenter, error)
	CreateHealthCenter(ctx context.Context, hc *models.HealthCenter) error
}

// CatalogHandlers serves the disease and geography reference data.
type CatalogHandlers struct {
	diseases  DiseaseStore
	districts DistrictStore
	logger    *slog.Logger
}

// NewCatalogHandlers creates the catalog endpoint handlers.
func NewCatalogHandlers(diseases DiseaseStore, districts DistrictStore, logger *slog.Logger) *CatalogHandlers {
	return &CatalogHandlers{diseases: diseases, districts: districts, logger: logger}
}

// HandleDiseases handles GET and POST /api/diseases.
func (h *CatalogHandlers) HandleDiseases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		diseases, err := h.diseases.ListDiseases(r.Context())
		if err != nil {
			h.logger.Error("failed to list diseases", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list diseases")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"diseases": diseases,
			"count":    len(diseases),
		})
	case http.MethodPost:
		var d models.Disease
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := ValidateDisease(&d); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.diseases.CreateDisease(r.Context(), &d); err != nil {
			h.logger.Error("failed to create disease", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create disease")
			return
		}
		h.logger.Info("disease registered", "disease_id", d.ID, "name", d.Name)
		writeJSON(w, http.StatusCreated, d)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleDiseaseByID handles GET /api/diseases/{id} and PUT
// /api/diseases/{id}/thresholds.
func (h *CatalogHandlers) HandleDiseaseByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/diseases/")
	if id == "" {
		writeError(w, http.StatusNotFound, "Disease not found")
		return
	}

	if r.Method == http.MethodPut && hasSuffixAction(r.URL.Path, "/thresholds") {
		h.updateThresholds(w, r, id)
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	d, err := h.diseases.GetDisease(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrDiseaseNotFound) {
			writeError(w, http.StatusNotFound, "Disease not found")
			return
		}
		h.logger.Error("failed to get disease", "disease_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get disease")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (h *CatalogHandlers) updateThresholds(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		AlertThreshold    int `json:"alert_threshold"`
		EpidemicThreshold int `json:"epidemic_threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AlertThreshold < 1 {
		writeError(w, http.StatusBadRequest, "Alert threshold must be at least 1")
		return
	}
	if req.EpidemicThreshold <= req.AlertThreshold {
		writeError(w, http.StatusBadRequest, "Epidemic threshold must be greater than alert threshold")
		return
	}

	if err := h.diseases.UpdateThresholds(r.Context(), id, req.AlertThreshold, req.EpidemicThreshold); err != nil {
		if errors.Is(err, database.ErrDiseaseNotFound) {
			writeError(w, http.StatusNotFound, "Disease not found")
			return
		}
		h.logger.Error("failed to update thresholds", "disease_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update thresholds")
		return
	}

	h.logger.Info("thresholds updated",
		"disease_id", id,
		"alert_threshold", req.AlertThreshold,
		"epidemic_threshold", req.EpidemicThreshold,
	)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":            true,
		"alert_threshold":    req.AlertThreshold,
		"epidemic_threshold": req.EpidemicThreshold,
	})
}

// HandleDistricts handles GET and POST /api/districts.
func (h *CatalogHandlers) HandleDistricts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		districts, err := h.districts.ListDistricts(r.Context())
		if err != nil {
			h.logger.Error("failed to list districts", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list districts")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"districts": districts,
			"count":     len(districts),
		})
	case http.MethodPost:
		var d models.District
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if d.Name == "" {
			writeError(w, http.StatusBadRequest, "District name is required")
			return
		}
		if d.Population < 0 {
			writeError(w, http.StatusBadRequest, "Population cannot be negative")
			return
		}
		if err := h.districts.CreateDistrict(r.Context(), &d); err != nil {
			h.logger.Error("failed to create district", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create district")
			return
		}
		writeJSON(w, http.StatusCreated, d)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleDistrictByID handles GET /api/districts/{id}.
func (h *CatalogHandlers) HandleDistrictByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := pathID(r.URL.Path, "/api/districts/")
	d, err := h.districts.GetDistrict(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrDistrictNotFound) {
			writeError(w, http.StatusNotFound, "District not found")
			return
		}
		h.logger.Error("failed to get district", "district_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get district")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// HandleHealthCenters handles GET and POST /api/health-centers. Listing
// accepts an optional district_id filter.
func (h *CatalogHandlers) HandleHealthCenters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		centers, err := h.districts.ListHealthCenters(r.Context(), r.URL.Query().Get("district_id"))
		if err != nil {
			h.logger.Error("failed to list health centers", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list health centers")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"health_centers": centers,
			"count":          len(centers),
		})
	case http.MethodPost:
		var hc models.HealthCenter
		if err := json.NewDecoder(r.Body).Decode(&hc); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if hc.Name == "" || hc.DistrictID == "" {
			writeError(w, http.StatusBadRequest, "Name and district are required")
			return
		}
		if err := h.districts.CreateHealthCenter(r.Context(), &hc); err != nil {
			h.logger.Error("failed to create health center", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create health center")
			return
		}
		writeJSON(w, http.StatusCreated, hc)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
