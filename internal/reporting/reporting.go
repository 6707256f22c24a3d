// Package reporting computes epidemiological indicators for dashboards:
// incidence rates, case fatality, and daily case curves.
package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/models"
	"github.com/Laza-adina/drsp-vak/internal/timeseries"
)

// CaseStore lists case records for indicator computation.
type CaseStore interface {
	ListCases(ctx context.Context, q models.CaseQuery) ([]models.Case, error)
}

// DistrictStore lists districts with their populations.
type DistrictStore interface {
	ListDistricts(ctx context.Context) ([]models.District, error)
}

// AlertStore lists alerts for the overview.
type AlertStore interface {
	ListAlerts(ctx context.Context, q models.AlertQuery) ([]models.Alert, error)
}

// DistrictIncidence is the per-district case load over the reporting
// window.
type DistrictIncidence struct {
	DistrictID       string  `json:"district_id"`
	DistrictName     string  `json:"district_name"`
	Cases            int     `json:"cases"`
	Population       int     `json:"population"`
	IncidencePer100k float64 `json:"incidence_per_100k"`
}

// Overview aggregates the surveillance picture over a trailing window.
type Overview struct {
	WindowDays        int                 `json:"window_days"`
	TotalCases        int                 `json:"total_cases"`
	ConfirmedCases    int                 `json:"confirmed_cases"`
	Deaths            int                 `json:"deaths"`
	CaseFatalityRate  float64             `json:"case_fatality_rate"`
	ActiveAlerts      int                 `json:"active_alerts"`
	CriticalAlerts    int                 `json:"critical_alerts"`
	DistrictBreakdown []DistrictIncidence `json:"district_breakdown"`
}

// Reporter computes indicators from the stores.
type Reporter struct {
	cases     CaseStore
	districts DistrictStore
	alerts    AlertStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewReporter creates a reporter.
func NewReporter(cases CaseStore, districts DistrictStore, alerts AlertStore, logger *slog.Logger) *Reporter {
	return &Reporter{
		cases:     cases,
		districts: districts,
		alerts:    alerts,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the reporter clock, for tests.
func (r *Reporter) SetClock(now func() time.Time) { r.now = now }

// Overview computes the surveillance overview for the trailing
// windowDays.
func (r *Reporter) Overview(ctx context.Context, windowDays int) (*Overview, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("window must be a positive number of days, got %d", windowDays)
	}

	from := timeseries.Day(r.now()).AddDate(0, 0, -windowDays)

	cases, err := r.cases.ListCases(ctx, models.CaseQuery{DateFrom: &from})
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	districts, err := r.districts.ListDistricts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list districts: %w", err)
	}

	alerts, err := r.alerts.ListAlerts(ctx, models.AlertQuery{Status: models.AlertStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	overview := &Overview{
		WindowDays: windowDays,
		TotalCases: len(cases),
	}

	byDistrict := make(map[string]int)
	for _, c := range cases {
		byDistrict[c.DistrictID]++
		switch c.Status {
		case models.CaseStatusConfirmed:
			overview.ConfirmedCases++
		case models.CaseStatusDeceased:
			overview.Deaths++
		}
	}

	overview.CaseFatalityRate = CaseFatalityRate(overview.Deaths, len(cases))

	for _, a := range alerts {
		overview.ActiveAlerts++
		if a.Severity == models.SeverityCritical {
			overview.CriticalAlerts++
		}
	}

	for _, d := range districts {
		count := byDistrict[d.ID]
		if count == 0 {
			continue
		}
		overview.DistrictBreakdown = append(overview.DistrictBreakdown, DistrictIncidence{
			DistrictID:       d.ID,
			DistrictName:     d.Name,
			Cases:            count,
			Population:       d.Population,
			IncidencePer100k: IncidenceRate(count, d.Population),
		})
	}
	sort.Slice(overview.DistrictBreakdown, func(i, j int) bool {
		return overview.DistrictBreakdown[i].Cases > overview.DistrictBreakdown[j].Cases
	})

	return overview, nil
}

// DailyCurve aggregates the daily case counts for a (disease, district)
// pair over the trailing windowDays, by symptom onset.
func (r *Reporter) DailyCurve(ctx context.Context, diseaseID, districtID string, windowDays int) (timeseries.DailySeries, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("window must be a positive number of days, got %d", windowDays)
	}

	end := timeseries.Day(r.now())
	start := end.AddDate(0, 0, -(windowDays - 1))

	cases, err := r.cases.ListCases(ctx, models.CaseQuery{
		DiseaseID:  diseaseID,
		DistrictID: districtID,
		DateFrom:   &start,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	return timeseries.Aggregate(cases, timeseries.BySymptomOnset, start, end)
}

// IncidenceRate is the case count per 100000 inhabitants. A missing
// population yields 0 rather than a division error.
func IncidenceRate(cases, population int) float64 {
	if population <= 0 {
		return 0
	}
	return float64(cases) / float64(population) * 100000
}

// CaseFatalityRate is the share of deceased cases in percent. An empty
// case set yields 0.
func CaseFatalityRate(deaths, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(deaths) / float64(total) * 100
}
