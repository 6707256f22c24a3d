package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Laza-adina/drsp-vak/internal/alerting"
	"github.com/Laza-adina/drsp-vak/internal/api"
	"github.com/Laza-adina/drsp-vak/internal/auth"
	"github.com/Laza-adina/drsp-vak/internal/config"
	"github.com/Laza-adina/drsp-vak/internal/database"
	"github.com/Laza-adina/drsp-vak/internal/forecast"
	"github.com/Laza-adina/drsp-vak/internal/logging"
	"github.com/Laza-adina/drsp-vak/internal/metrics"
	"github.com/Laza-adina/drsp-vak/internal/recommend"
	"github.com/Laza-adina/drsp-vak/internal/reporting"
	"github.com/Laza-adina/drsp-vak/internal/scheduler"
	"github.com/Laza-adina/drsp-vak/internal/server"
	"log/slog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting DRSP-VAK surveillance server")

	ctx := context.Background()

	logger.Info("connecting to database")
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.Database.URL
	dbCfg.MaxConnections = cfg.Database.MaxConnections
	dbCfg.MaxIdleConnections = cfg.Database.MaxIdleConnections
	dbCfg.ConnMaxLifetime = cfg.Database.ConnMaxLifetime

	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	if err := database.RunMigrations(db, "./migrations", logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	caseRepo := database.NewCaseRepository(db)
	diseaseRepo := database.NewDiseaseRepository(db)
	districtRepo := database.NewDistrictRepository(db)
	alertRepo := database.NewAlertRepository(db)
	predictionRepo := database.NewPredictionRepository(db)
	interventionRepo := database.NewInterventionRepository(db)

	// Metrics
	httpCollector, err := metrics.NewHTTPCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}
	engineCollector, err := metrics.NewEngineCollector(httpCollector.Registry())
	if err != nil {
		logger.Error("failed to init engine metrics", "error", err)
		os.Exit(1)
	}

	// Domain engines
	alertEngine := alerting.NewEngine(caseRepo, diseaseRepo, districtRepo, alertRepo, engineCollector, logger)

	forecastEngine := forecast.NewEngine(nil, logger)
	forecastEngine.SetMinHistoryDays(cfg.Forecast.MinHistoryDays)

	recommender := recommend.NewFromConfig(cfg.Recommend, logger)
	reporter := reporting.NewReporter(caseRepo, districtRepo, alertRepo, logger)

	// Background threshold evaluation
	alertScheduler := scheduler.NewAlertScheduler(alertEngine, cfg.Alerting.WindowDays, cfg.Alerting.EvaluateInterval, logger)
	go alertScheduler.Start(ctx)

	// HTTP surface
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.HealthCheck(r.Context(), db); err != nil {
			logger.Error("health check failed", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"service":  "drsp-vak",
			"status":   "ready",
			"version":  "0.1.0",
			"database": database.Stats(db),
		})
	})

	mux.Handle("/metrics", httpCollector.Handler())

	authConfig := auth.LoadConfigFromEnv()
	logger.Info("auth configured", "jwt_secret_set", authConfig.JWTSecret != "change-this-secret")

	lookup := api.NewAlertLookup(diseaseRepo, districtRepo)
	forecastHandlers := api.NewForecastHandlers(caseRepo, lookup, forecastEngine, predictionRepo, logger)
	forecastHandlers.SetCollector(engineCollector)

	logger.Info("setting up REST API")
	api.SetupRoutes(mux, api.RouterDeps{
		Cases:      api.NewCaseHandlers(caseRepo, logger),
		Catalog:    api.NewCatalogHandlers(diseaseRepo, districtRepo, logger),
		Alerts:     api.NewAlertHandlers(alertRepo, alertEngine, interventionRepo, lookup, recommender, cfg.Alerting.WindowDays, logger),
		Forecasts:  forecastHandlers,
		Stats:      api.NewStatsHandlers(reporter, logger),
		AuthConfig: authConfig,
		Logger:     logger,
	})

	srv := server.New(cfg.Server, logger, httpCollector.InstrumentHandler(mux))

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("DRSP-VAK started successfully")
	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	alertScheduler.Stop()
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
