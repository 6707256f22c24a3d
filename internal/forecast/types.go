package forecast

import (
	"errors"
	"time"
)

// Valid forecast horizons, in days. Callers must request one of these;
// out-of-set horizons are rejected, not clamped.
const (
	HorizonWeek      = 7
	HorizonFortnight = 14
	HorizonMonth     = 30
)

var (
	// ErrInsufficientData is returned when the supplied series spans
	// fewer days than the configured minimum history.
	ErrInsufficientData = errors.New("insufficient history for forecasting")

	// ErrInvalidHorizon is returned for horizons outside {7, 14, 30}.
	ErrInvalidHorizon = errors.New("horizon must be 7, 14 or 30 days")
)

// FitError wraps a model-fitting failure so callers can isolate one
// (disease, district) failure without aborting a batch run.
type FitError struct {
	Err error
}

func (e *FitError) Error() string { return "model fit failed: " + e.Err.Error() }

func (e *FitError) Unwrap() error { return e.Err }

// Trend is the qualitative direction of the projected incidence.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// HistoryPoint pairs an observed day with the model's fitted value.
type HistoryPoint struct {
	Date   time.Time `json:"date"`
	Actual int       `json:"actual"`
	Fitted float64   `json:"fitted"`
	Lower  float64   `json:"lower"`
	Upper  float64   `json:"upper"`
}

// Point is a forecast for a day beyond the historical range. All
// values are non-negative; the model's raw output is floored at zero
// before points are built.
type Point struct {
	Date      time.Time `json:"date"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
}

// Metrics summarizes forecast quality over the fitted historical range.
type Metrics struct {
	MAE   float64 `json:"mae"`
	RMSE  float64 `json:"rmse"`
	// MAPE uses |actual-fitted|/(actual+1): the +1 avoids division by
	// zero on zero-case days, at the cost of a downward bias versus
	// textbook MAPE. The confidence score is defined against this
	// smoothed variant, so it must not be "corrected".
	MAPE            float64 `json:"mape"`
	ConfidenceScore float64 `json:"confidence_score"` // clamp(1 - MAPE/100, 0, 1)
	Trend           Trend   `json:"trend"`
	HistoryDays     int     `json:"history_days"`
	HorizonDays     int     `json:"horizon_days"`
}

// Result is the full output of a forecast run.
type Result struct {
	HistoryFit  []HistoryPoint `json:"history_fit"`
	Predictions []Point        `json:"predictions"`
	Metrics     Metrics        `json:"metrics"`
	Model       string         `json:"model"`
}
