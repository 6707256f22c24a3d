package api

import (
	"net/http"
	"strings"

	"github.com/Laza-adina/drsp-vak/internal/auth"
	"log/slog"
)

// RouterDeps bundles the handlers the router wires together.
type RouterDeps struct {
	Cases      *CaseHandlers
	Catalog    *CatalogHandlers
	Alerts     *AlertHandlers
	Forecasts  *ForecastHandlers
	Stats      *StatsHandlers
	AuthConfig auth.Config
	Logger     *slog.Logger
}

// SetupRoutes configures all API routes. Reads are public; case
// declaration, catalog mutation, alert actions and interventions
// require authentication.
func SetupRoutes(mux *http.ServeMux, deps RouterDeps) {
	authHandler := NewAuthHandler(deps.AuthConfig, deps.Logger)
	authMiddleware := auth.AuthMiddleware(deps.AuthConfig)

	requireAuth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authMiddleware(next).ServeHTTP(w, r)
		}
	}

	// Authentication routes
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/validate", requireAuth(authHandler.ValidateToken))

	// Case routes: listing and lookup are public, declaration and
	// status changes require auth.
	mux.HandleFunc("/api/cases", func(w http.ResponseWriter, r *http.Request) {
		if handleCORSPreflight(w, r, "GET, POST, OPTIONS") {
			return
		}
		if r.Method == http.MethodPost {
			requireAuth(deps.Cases.HandleCases)(w, r)
			return
		}
		deps.Cases.HandleCases(w, r)
	})
	mux.HandleFunc("/api/cases/", func(w http.ResponseWriter, r *http.Request) {
		if handleCORSPreflight(w, r, "GET, PUT, OPTIONS") {
			return
		}
		if r.Method == http.MethodPut {
			requireAuth(deps.Cases.HandleCaseByID)(w, r)
			return
		}
		deps.Cases.HandleCaseByID(w, r)
	})

	// Disease catalog routes
	mux.HandleFunc("/api/diseases", func(w http.ResponseWriter, r *http.Request) {
		if handleCORSPreflight(w, r, "GET, POST, OPTIONS") {
			return
		}
		if r.Method == http.MethodPost {
			requireAuth(deps.Catalog.HandleDiseases)(w, r)
			return
		}
		deps.Catalog.HandleDiseases(w, r)
	})
	mux.HandleFunc("/api/diseases/", func(w http.ResponseWriter, r *http.Request) {
		if handleCORSPreflight(w, r, "GET, PUT, OPTIONS") {
			return
		}
		if r.Method == http.MethodPut {
			requireAuth(deps.Catalog.HandleDiseaseByID)(w, r)
			return
		}
		deps.Catalog.HandleDiseaseByID(w, r)
	})

	// Geography routes
	mux.HandleFunc("/api/districts", func(w http.ResponseWriter, r *http.Request) {
		if handleCORSPreflight(w, r, "GET, POST, OPTIONS") {
			return
		}
		if r.Method == http.MethodPost {
			requireAuth(deps.Catalog.HandleDistricts)(w, r)
			return
		}
		deps.Catalog.HandleDistricts(w, r)
	})
	mux.HandleFunc("/api/districts/", deps.Catalog.HandleDistrictByID)
	mux.HandleFunc("/api/health-centers", func(w http.ResponseWriter, r *http.Request) {
		if handleCORSPreflight(w, r, "GET, POST, OPTIONS") {
			return
		}
		if r.Method == http.MethodPost {
			requireAuth(deps.Catalog.HandleHealthCenters)(w, r)
			return
		}
		deps.Catalog.HandleHealthCenters(w, r)
	})

	// Alert routes: listing and lookup are public, evaluation,
	// resolution, recommendations and interventions require auth.
	mux.HandleFunc("/api/alerts", deps.Alerts.HandleAlerts)
	mux.HandleFunc("/api/alerts/evaluate", func(w http.ResponseWriter, r *http.Request) {
		if handleCORSPreflight(w, r, "POST, OPTIONS") {
			return
		}
		requireAuth(deps.Alerts.HandleEvaluate)(w, r)
	})
	mux.HandleFunc("/api/alerts/", func(w http.ResponseWriter, r *http.Request) {
		if handleCORSPreflight(w, r, "GET, POST, OPTIONS") {
			return
		}
		if r.Method == http.MethodGet && !strings.HasSuffix(r.URL.Path, "/interventions") {
			deps.Alerts.HandleAlertByID(w, r)
			return
		}
		requireAuth(deps.Alerts.HandleAlertByID)(w, r)
	})
	mux.HandleFunc("/api/interventions/", func(w http.ResponseWriter, r *http.Request) {
		if handleCORSPreflight(w, r, "PUT, OPTIONS") {
			return
		}
		requireAuth(deps.Alerts.HandleInterventionStatus)(w, r)
	})

	// Forecast and statistics routes (public)
	mux.HandleFunc("/api/forecast", deps.Forecasts.HandleForecast)
	mux.HandleFunc("/api/predictions", deps.Forecasts.HandlePredictions)
	mux.HandleFunc("/api/stats/overview", deps.Stats.HandleOverview)
	mux.HandleFunc("/api/stats/daily-curve", deps.Stats.HandleDailyCurve)

	// CORS preflight fallback
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if handleCORSPreflight(w, r, "GET, POST, PUT, DELETE, OPTIONS") {
			return
		}
		http.NotFound(w, r)
	})
}

// handleCORSPreflight answers OPTIONS requests and reports whether the
// request was consumed.
func handleCORSPreflight(w http.ResponseWriter, r *http.Request, methods string) bool {
	if r.Method != http.MethodOptions {
		return false
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.WriteHeader(http.StatusOK)
	return true
}
