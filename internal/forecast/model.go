package forecast

import (
	"fmt"
	"math"
	"time"
)

// Model is a replaceable forecasting strategy: it fits a dense daily
// series and extrapolates it with uncertainty bounds. Implementations
// may emit negative raw values for sparse series; flooring is the
// engine's responsibility, not the model's.
type Model interface {
	// Name identifies the strategy in persisted results.
	Name() string

	// Fit trains on the historical values. weekday is the weekday of
	// the first observation, needed to phase the weekly component.
	Fit(y []float64, weekday time.Weekday) (FittedModel, error)
}

// FittedModel is a trained model ready to produce values.
type FittedModel interface {
	// FittedValues returns one raw in-sample value per historical day.
	FittedValues() []float64

	// Interval returns the raw prediction interval for step h, where
	// h <= 0 addresses historical days and h >= 1 future days.
	Interval(h int) (value, lower, upper float64)
}

// additiveModel decomposes a series into a linear trend plus a weekly
// seasonal component, with a residual-based 95% interval. Weekly
// seasonality is only estimated once two full cycles of history are
// available.
type additiveModel struct{}

// NewAdditiveModel returns the default trend + weekly-seasonality
// decomposition model.
func NewAdditiveModel() Model { return additiveModel{} }

func (additiveModel) Name() string { return "additive-weekly" }

const (
	intervalZ    = 1.96 // two-sided 95%
	weeklyPeriod = 7
)

type additiveFit struct {
	n         int
	slope     float64
	intercept float64
	seasonal  [weeklyPeriod]float64
	weekday   time.Weekday
	sigma     float64
	fitted    []float64
}

func (additiveModel) Fit(y []float64, weekday time.Weekday) (FittedModel, error) {
	n := len(y)
	if n == 0 {
		return nil, fmt.Errorf("empty series")
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite value at index %d", i)
		}
	}

	fit := &additiveFit{n: n, weekday: weekday}
	fit.slope, fit.intercept = linearTrend(y)

	// Weekly component: mean detrended residual per weekday, centered
	// so the component sums to roughly zero over a cycle.
	if n >= 2*weeklyPeriod {
		var sums, counts [weeklyPeriod]float64
		for t, v := range y {
			w := weekdayIndex(weekday, t)
			sums[w] += v - (fit.intercept + fit.slope*float64(t))
			counts[w]++
		}
		var mean float64
		for w := range sums {
			if counts[w] > 0 {
				fit.seasonal[w] = sums[w] / counts[w]
			}
			mean += fit.seasonal[w]
		}
		mean /= weeklyPeriod
		for w := range fit.seasonal {
			fit.seasonal[w] -= mean
		}
	}

	fit.fitted = make([]float64, n)
	var sumSq float64
	for t := range y {
		fit.fitted[t] = fit.at(t)
		e := y[t] - fit.fitted[t]
		sumSq += e * e
	}
	fit.sigma = math.Sqrt(sumSq / float64(n))
	if math.IsNaN(fit.sigma) || math.IsInf(fit.sigma, 0) {
		return nil, fmt.Errorf("residual variance did not converge")
	}

	return fit, nil
}

func (f *additiveFit) at(t int) float64 {
	return f.intercept + f.slope*float64(t) + f.seasonal[weekdayIndex(f.weekday, t)]
}

func (f *additiveFit) FittedValues() []float64 {
	out := make([]float64, len(f.fitted))
	copy(out, f.fitted)
	return out
}

func (f *additiveFit) Interval(h int) (float64, float64, float64) {
	t := f.n - 1 + h
	v := f.at(t)

	// The interval widens with forecast distance: uncertainty about
	// the trend compounds beyond the observed range.
	width := intervalZ * f.sigma
	if h > 0 {
		width *= math.Sqrt(1 + float64(h)/float64(f.n))
	}

	return v, v - width, v + width
}

// linearTrend fits an ordinary least-squares line over t = 0..n-1.
func linearTrend(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	if len(y) == 1 {
		return 0, y[0]
	}

	var sumT, sumY, sumTY, sumTT float64
	for t, v := range y {
		ft := float64(t)
		sumT += ft
		sumY += v
		sumTY += ft * v
		sumTT += ft * ft
	}

	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumTY - sumT*sumY) / denom
	intercept = (sumY - slope*sumT) / n
	return slope, intercept
}

func weekdayIndex(start time.Weekday, t int) int {
	return (int(start) + t) % weeklyPeriod
}
