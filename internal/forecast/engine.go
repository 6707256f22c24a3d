package forecast

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Laza-adina/drsp-vak/internal/timeseries"
)

// DefaultMinHistoryDays is the minimum series length accepted by the
// engine unless configured otherwise.
const DefaultMinHistoryDays = 7

// Engine turns a dense daily case-count series into a bounded forecast
// with quality metrics. It is stateless and reentrant; model fitting is
// CPU-bound and runs synchronously in the calling goroutine.
type Engine struct {
	model          Model
	minHistoryDays int
	logger         *slog.Logger
}

// NewEngine creates a forecast engine with the given model strategy.
// A nil model selects the default additive decomposition.
func NewEngine(model Model, logger *slog.Logger) *Engine {
	if model == nil {
		model = NewAdditiveModel()
	}
	return &Engine{
		model:          model,
		minHistoryDays: DefaultMinHistoryDays,
		logger:         logger,
	}
}

// SetMinHistoryDays overrides the minimum accepted history length.
func (e *Engine) SetMinHistoryDays(days int) {
	if days > 0 {
		e.minHistoryDays = days
	}
}

// ValidHorizon reports whether the requested horizon is one of the
// supported values.
func ValidHorizon(days int) bool {
	return days == HorizonWeek || days == HorizonFortnight || days == HorizonMonth
}

// Forecast fits the model to the series and projects horizonDays into
// the future. All returned fitted and predicted values are floored at
// zero; the raw model output is not, and metrics are computed against
// the raw in-sample fit.
func (e *Engine) Forecast(series timeseries.DailySeries, horizonDays int) (*Result, error) {
	if !ValidHorizon(horizonDays) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizonDays)
	}
	if len(series) < e.minHistoryDays {
		return nil, fmt.Errorf("%w: %d days supplied, %d required",
			ErrInsufficientData, len(series), e.minHistoryDays)
	}

	y := series.Counts()
	fitted, err := e.model.Fit(y, series[0].Date.Weekday())
	if err != nil {
		return nil, &FitError{Err: err}
	}

	n := len(series)
	rawFit := fitted.FittedValues()

	historyFit := make([]HistoryPoint, n)
	for t := 0; t < n; t++ {
		_, lower, upper := fitted.Interval(t - (n - 1))
		historyFit[t] = HistoryPoint{
			Date:   series[t].Date,
			Actual: series[t].Count,
			Fitted: math.Max(0, rawFit[t]),
			Lower:  math.Max(0, lower),
			Upper:  math.Max(0, upper),
		}
	}

	lastDay := series.End()
	predictions := make([]Point, horizonDays)
	for h := 1; h <= horizonDays; h++ {
		value, lower, upper := fitted.Interval(h)
		predictions[h-1] = Point{
			Date:      lastDay.AddDate(0, 0, h),
			Predicted: math.Max(0, value),
			Lower:     math.Max(0, lower),
			Upper:     math.Max(0, upper),
		}
	}

	metrics := computeMetrics(y, rawFit)
	metrics.Trend = classifyTrend(predictions, series)
	metrics.HistoryDays = n
	metrics.HorizonDays = horizonDays

	e.logger.Debug("forecast computed",
		"history_days", n,
		"horizon_days", horizonDays,
		"mae", metrics.MAE,
		"mape", metrics.MAPE,
		"trend", metrics.Trend,
		"model", e.model.Name(),
	)

	return &Result{
		HistoryFit:  historyFit,
		Predictions: predictions,
		Metrics:     metrics,
		Model:       e.model.Name(),
	}, nil
}

// computeMetrics evaluates the raw in-sample fit against the actuals.
func computeMetrics(actual, fitted []float64) Metrics {
	n := float64(len(actual))

	var sumAbs, sumSq, sumPct float64
	for i := range actual {
		diff := actual[i] - fitted[i]
		sumAbs += math.Abs(diff)
		sumSq += diff * diff
		// +1 smoothing keeps zero-case days from blowing up the
		// percentage error.
		sumPct += math.Abs(diff) / (actual[i] + 1)
	}

	mae := sumAbs / n
	rmse := math.Sqrt(sumSq / n)
	mape := sumPct / n * 100

	confidence := 1 - mape/100
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	return Metrics{
		MAE:             mae,
		RMSE:            rmse,
		MAPE:            mape,
		ConfidenceScore: confidence,
	}
}

// classifyTrend compares the mean of the first week of predictions to
// the mean of the last week of actuals: a 20% swing either way leaves
// the stable band.
func classifyTrend(predictions []Point, series timeseries.DailySeries) Trend {
	if len(predictions) == 0 {
		return TrendStable
	}

	window := len(predictions)
	if window > 7 {
		window = 7
	}
	var sum float64
	for _, p := range predictions[:window] {
		sum += p.Predicted
	}
	forecastMean := sum / float64(window)
	historyMean := series.TailMean(7)

	switch {
	case forecastMean > historyMean*1.2:
		return TrendRising
	case forecastMean < historyMean*0.8:
		return TrendFalling
	default:
		return TrendStable
	}
}
