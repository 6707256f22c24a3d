package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Laza-adina/drsp-vak/internal/models"
)

// EngineCollector exposes Prometheus metrics for the threshold alert
// engine and the forecast engine. It satisfies the alerting engine's
// Collector interface.
type EngineCollector struct {
	alertsCreated   *prometheus.CounterVec
	alertsEscalated *prometheus.CounterVec
	pairsSkipped    prometheus.Counter
	forecastRuns    *prometheus.CounterVec
	forecastErrors  prometheus.Counter
}

// NewEngineCollector constructs the engine collector and registers its
// metrics on the given registerer.
func NewEngineCollector(registry prometheus.Registerer) (*EngineCollector, error) {
	alertsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "drspvak",
		Subsystem: "alerting",
		Name:      "alerts_created_total",
		Help:      "Total number of alerts created by threshold evaluation.",
	}, []string{"severity"})

	alertsEscalated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "drspvak",
		Subsystem: "alerting",
		Name:      "alerts_escalated_total",
		Help:      "Total number of alert severity escalations.",
	}, []string{"severity"})

	pairsSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "drspvak",
		Subsystem: "alerting",
		Name:      "pairs_skipped_total",
		Help:      "Total number of (disease, district) pairs skipped for unresolvable references.",
	})

	forecastRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "drspvak",
		Subsystem: "forecast",
		Name:      "runs_total",
		Help:      "Total number of forecast computations by model.",
	}, []string{"model"})

	forecastErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "drspvak",
		Subsystem: "forecast",
		Name:      "errors_total",
		Help:      "Total number of failed forecast computations.",
	})

	for _, c := range []prometheus.Collector{alertsCreated, alertsEscalated, pairsSkipped, forecastRuns, forecastErrors} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &EngineCollector{
		alertsCreated:   alertsCreated,
		alertsEscalated: alertsEscalated,
		pairsSkipped:    pairsSkipped,
		forecastRuns:    forecastRuns,
		forecastErrors:  forecastErrors,
	}, nil
}

// AlertCreated records a newly created alert.
func (c *EngineCollector) AlertCreated(severity models.Severity) {
	c.alertsCreated.WithLabelValues(string(severity)).Inc()
}

// AlertEscalated records an in-place severity escalation.
func (c *EngineCollector) AlertEscalated(severity models.Severity) {
	c.alertsEscalated.WithLabelValues(string(severity)).Inc()
}

// PairSkipped records a pair dropped for a dangling disease or district
// reference.
func (c *EngineCollector) PairSkipped() {
	c.pairsSkipped.Inc()
}

// ForecastRun records a completed forecast computation.
func (c *EngineCollector) ForecastRun(model string) {
	c.forecastRuns.WithLabelValues(model).Inc()
}

// ForecastFailed records a forecast computation that returned an error.
func (c *EngineCollector) ForecastFailed() {
	c.forecastErrors.Inc()
}
