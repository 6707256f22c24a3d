package alerting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/models"
	"github.com/Laza-adina/drsp-vak/internal/timeseries"
	"github.com/google/uuid"
)

var (
	// ErrAlertNotFound is returned when a resolution targets an alert
	// that does not exist.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrActiveAlertExists is returned by the alert store when a
	// concurrent evaluation already created an active alert for the
	// same (disease, district) pair.
	ErrActiveAlertExists = errors.New("active alert already exists for pair")

	// ErrInvalidWindow is returned for a non-positive window length.
	ErrInvalidWindow = errors.New("window must be a positive number of days")
)

// DefaultWindowDays is the rolling window the engine evaluates unless
// the caller requests otherwise.
const DefaultWindowDays = 7

// CaseStore lists case records for aggregation.
type CaseStore interface {
	ListCases(ctx context.Context, q models.CaseQuery) ([]models.Case, error)
}

// DiseaseStore resolves disease threshold configuration.
type DiseaseStore interface {
	GetDisease(ctx context.Context, id string) (*models.Disease, error)
}

// DistrictStore resolves district references.
type DistrictStore interface {
	GetDistrict(ctx context.Context, id string) (*models.District, error)
}

// AlertStore owns alert persistence. CreateAlert must enforce the
// at-most-one-active-alert-per-pair invariant and return
// ErrActiveAlertExists when it is violated by a concurrent run.
type AlertStore interface {
	GetActiveAlert(ctx context.Context, diseaseID, districtID string) (*models.Alert, error)
	CreateAlert(ctx context.Context, alert *models.Alert) error
	UpdateAlert(ctx context.Context, alert *models.Alert) error
	ResolveAlert(ctx context.Context, id, actions string, date time.Time) (*models.Alert, error)
}

// Collector receives engine outcome counts. Implementations must be
// safe for concurrent use; a nil Collector disables instrumentation.
type Collector interface {
	AlertCreated(severity models.Severity)
	AlertEscalated(severity models.Severity)
	PairSkipped()
}

// Engine evaluates per-disease epidemic thresholds against rolling
// case counts and maintains the canonical active alert per
// (disease, district) pair. Each invocation is synchronous and holds
// no state between runs; the pair invariant is enforced by the store.
type Engine struct {
	cases     CaseStore
	diseases  DiseaseStore
	districts DistrictStore
	alerts    AlertStore
	collector Collector
	logger    *slog.Logger
	now       func() time.Time
}

// NewEngine creates a threshold alert engine.
func NewEngine(cases CaseStore, diseases DiseaseStore, districts DistrictStore, alerts AlertStore, collector Collector, logger *slog.Logger) *Engine {
	return &Engine{
		cases:     cases,
		diseases:  diseases,
		districts: districts,
		alerts:    alerts,
		collector: collector,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the engine clock, for tests.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

type pairKey struct {
	diseaseID  string
	districtID string
}

// EvaluateThresholds computes the trailing windowDays case count for
// every (disease, district) pair with recent cases, classifies it
// against the disease thresholds, and creates or escalates alerts.
// It returns only the alerts created or escalated by this run: a
// second run with no new case data yields an empty result. Severity is
// never lowered and alerts are never closed here; only Resolve does
// that.
func (e *Engine) EvaluateThresholds(ctx context.Context, windowDays int) ([]models.Alert, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, windowDays)
	}

	today := timeseries.Day(e.now())
	from := today.AddDate(0, 0, -windowDays)

	cases, err := e.cases.ListCases(ctx, models.CaseQuery{DateFrom: &from})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent cases: %w", err)
	}

	counts := make(map[pairKey]int)
	for _, c := range cases {
		if c.DiseaseID == "" || c.DistrictID == "" {
			continue
		}
		counts[pairKey{c.DiseaseID, c.DistrictID}]++
	}

	// Deterministic pair order keeps runs reproducible in logs and
	// results.
	pairs := make([]pairKey, 0, len(counts))
	for k := range counts {
		pairs = append(pairs, k)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].diseaseID != pairs[j].diseaseID {
			return pairs[i].diseaseID < pairs[j].diseaseID
		}
		return pairs[i].districtID < pairs[j].districtID
	})

	var touched []models.Alert
	for _, pair := range pairs {
		alert, err := e.evaluatePair(ctx, pair, counts[pair], windowDays, today)
		if err != nil {
			return touched, err
		}
		if alert != nil {
			touched = append(touched, *alert)
		}
	}

	e.logger.Info("threshold evaluation completed",
		"window_days", windowDays,
		"pairs", len(pairs),
		"alerts_touched", len(touched),
	)

	return touched, nil
}

// evaluatePair handles one (disease, district) pair and returns the
// alert if it was created or escalated, nil otherwise.
func (e *Engine) evaluatePair(ctx context.Context, pair pairKey, count, windowDays int, today time.Time) (*models.Alert, error) {
	disease, err := e.diseases.GetDisease(ctx, pair.diseaseID)
	if err != nil || disease == nil {
		// Dangling references in upstream case data are skipped, not
		// fatal.
		e.logger.Warn("skipping pair with unresolvable disease",
			"disease_id", pair.diseaseID, "district_id", pair.districtID, "error", err)
		e.skipped()
		return nil, nil
	}

	district, err := e.districts.GetDistrict(ctx, pair.districtID)
	if err != nil || district == nil {
		e.logger.Warn("skipping pair with unresolvable district",
			"disease_id", pair.diseaseID, "district_id", pair.districtID, "error", err)
		e.skipped()
		return nil, nil
	}

	severity, threshold, alertType, triggered := classifySeverity(count, disease.AlertThreshold, disease.EpidemicThreshold)

	existing, err := e.alerts.GetActiveAlert(ctx, pair.diseaseID, pair.districtID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active alert for (%s, %s): %w", pair.diseaseID, pair.districtID, err)
	}

	if existing != nil {
		if triggered && severity.Exceeds(existing.Severity) {
			existing.Severity = severity
			existing.Type = alertType
			existing.CaseCount = count
			existing.TriggeredThreshold = threshold
			existing.Description = describeAlert(alertType, count, disease.Name, district.Name, windowDays, threshold)
			existing.UpdatedAt = e.now()
			if err := e.alerts.UpdateAlert(ctx, existing); err != nil {
				return nil, fmt.Errorf("failed to escalate alert %s: %w", existing.ID, err)
			}
			e.logger.Info("alert escalated",
				"alert_id", existing.ID,
				"disease", disease.Name,
				"district", district.Name,
				"severity", existing.Severity,
				"case_count", count,
			)
			if e.collector != nil {
				e.collector.AlertEscalated(severity)
			}
			return existing, nil
		}

		// Keep the stored count fresh for visibility, even when the
		// count declined. Severity and status never move here.
		if existing.CaseCount != count {
			existing.CaseCount = count
			existing.UpdatedAt = e.now()
			if err := e.alerts.UpdateAlert(ctx, existing); err != nil {
				return nil, fmt.Errorf("failed to refresh alert %s: %w", existing.ID, err)
			}
		}
		return nil, nil
	}

	if !triggered {
		return nil, nil
	}

	alert := &models.Alert{
		ID:                 uuid.New().String(),
		Type:               alertType,
		Severity:           severity,
		Status:             models.AlertStatusActive,
		DiseaseID:          pair.diseaseID,
		DistrictID:         pair.districtID,
		CaseCount:          count,
		TriggeredThreshold: threshold,
		DetectionDate:      today,
		Description:        describeAlert(alertType, count, disease.Name, district.Name, windowDays, threshold),
		CreatedAt:          e.now(),
		UpdatedAt:          e.now(),
	}

	if err := e.alerts.CreateAlert(ctx, alert); err != nil {
		if errors.Is(err, ErrActiveAlertExists) {
			// A concurrent evaluation won the race for this pair; the
			// invariant held, so this run simply moves on.
			e.logger.Warn("concurrent evaluation already created alert",
				"disease_id", pair.diseaseID, "district_id", pair.districtID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create alert for (%s, %s): %w", pair.diseaseID, pair.districtID, err)
	}

	e.logger.Info("alert created",
		"alert_id", alert.ID,
		"disease", disease.Name,
		"district", district.Name,
		"severity", alert.Severity,
		"case_count", count,
		"threshold", threshold,
	)
	if e.collector != nil {
		e.collector.AlertCreated(severity)
	}
	return alert, nil
}

// Resolve transitions an alert to resolved, stamping the resolution
// date and the actions taken. It is the only path that closes an
// alert; there is no re-opening, a later triggering count creates a
// fresh alert.
func (e *Engine) Resolve(ctx context.Context, alertID, actions string, date time.Time) (*models.Alert, error) {
	if date.IsZero() {
		date = timeseries.Day(e.now())
	}

	alert, err := e.alerts.ResolveAlert(ctx, alertID, actions, date)
	if err != nil {
		if errors.Is(err, ErrAlertNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve alert %s: %w", alertID, err)
	}

	e.logger.Info("alert resolved", "alert_id", alertID, "resolution_date", date.Format("2006-01-02"))
	return alert, nil
}

func (e *Engine) skipped() {
	if e.collector != nil {
		e.collector.PairSkipped()
	}
}

// warningFloor is the minimum count that opens a warning-level alert.
// The floor of 3 prevents spurious warnings for diseases configured
// with very low alert thresholds.
func warningFloor(alertThreshold int) int {
	floor := alertThreshold / 2
	if floor < 3 {
		floor = 3
	}
	return floor
}

// classifySeverity classifies a rolling count against the disease
// thresholds, highest threshold first. The configuration layer
// guarantees epidemicThreshold > alertThreshold.
func classifySeverity(count, alertThreshold, epidemicThreshold int) (models.Severity, int, string, bool) {
	switch {
	case count >= epidemicThreshold:
		return models.SeverityCritical, epidemicThreshold, "confirmed epidemic", true
	case count >= alertThreshold:
		return models.SeverityAlert, alertThreshold, "major cluster", true
	case count >= warningFloor(alertThreshold):
		return models.SeverityWarning, warningFloor(alertThreshold), "unusual increase", true
	default:
		return "", 0, "", false
	}
}

func describeAlert(alertType string, count int, disease, district string, windowDays, threshold int) string {
	return fmt.Sprintf("%s: %d cases of %s in %s over the last %d days (threshold: %d)",
		alertType, count, disease, district, windowDays, threshold)
}
