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

// CaseStore is the case persistence surface the handlers need.
type CaseStore interface {
	CreateCase(ctx context.Context, c *models.Case) error
	GetCase(ctx context.Context, id string) (*models.Case, error)
	ListCases(ctx context.Context, q models.CaseQuery) ([]models.Case, error)
	UpdateCaseStatus(ctx context.Context, id string, status models.CaseStatus) error
}

// CaseHandlers serves case declaration endpoints.
type CaseHandlers struct {
	cases  CaseStore
	logger *slog.Logger
}

// NewCaseHandlers creates the case endpoint handlers.
func NewCaseHandlers(cases CaseStore, logger *slog.Logger) *CaseHandlers {
	return &CaseHandlers{cases: cases, logger: logger}
}

// HandleCases handles GET and POST /api/cases.
func (h *CaseHandlers) HandleCases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listCases(w, r)
	case http.MethodPost:
		h.createCase(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleCaseByID handles GET /api/cases/{id} and PUT
// /api/cases/{id}/status.
func (h *CaseHandlers) HandleCaseByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/cases/")
	if id == "" {
		writeError(w, http.StatusNotFound, "Case not found")
		return
	}

	if r.Method == http.MethodPut && hasSuffixAction(r.URL.Path, "/status") {
		h.updateStatus(w, r, id)
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	c, err := h.cases.GetCase(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrCaseNotFound) {
			writeError(w, http.StatusNotFound, "Case not found")
			return
		}
		h.logger.Error("failed to get case", "case_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get case")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CaseHandlers) listCases(w http.ResponseWriter, r *http.Request) {
	cases, err := h.cases.ListCases(r.Context(), caseQueryFromRequest(r))
	if err != nil {
		h.logger.Error("failed to list cases", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list cases")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cases": cases,
		"count": len(cases),
	})
}

func (h *CaseHandlers) createCase(w http.ResponseWriter, r *http.Request) {
	var c models.Case
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ValidateCase(&c); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.cases.CreateCase(r.Context(), &c); err != nil {
		h.logger.Error("failed to create case", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create case")
		return
	}

	h.logger.Info("case declared",
		"case_id", c.ID,
		"case_number", c.CaseNumber,
		"disease_id", c.DiseaseID,
		"district_id", c.DistrictID,
	)

	writeJSON(w, http.StatusCreated, c)
}

func (h *CaseHandlers) updateStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status models.CaseStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Status {
	case models.CaseStatusSuspected, models.CaseStatusProbable, models.CaseStatusConfirmed,
		models.CaseStatusRecovered, models.CaseStatusDeceased:
	default:
		writeError(w, http.StatusBadRequest, "Invalid case status")
		return
	}

	if err := h.cases.UpdateCaseStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, database.ErrCaseNotFound) {
			writeError(w, http.StatusNotFound, "Case not found")
			return
		}
		h.logger.Error("failed to update case status", "case_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update case status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  req.Status,
	})
}
