// Package risk derives a qualitative narrative from a forecast. The
// classification is deterministic and total: it never fails, even on
// degenerate single-point or empty prediction lists.
package risk

import (
	"fmt"

	"github.com/Laza-adina/drsp-vak/internal/forecast"
)

// Level is the qualitative alert level of a forecast.
type Level string

const (
	LevelDanger    Level = "danger"
	LevelAttention Level = "attention"
	LevelNormal    Level = "normal"
)

// Reliability buckets the forecast confidence score.
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"   // confidence > 0.8
	ReliabilityMedium Reliability = "medium" // confidence > 0.6
	ReliabilityLow    Reliability = "low"
)

// Volatility describes the spread of the predicted values.
type Volatility string

const (
	VolatilityHigh     Volatility = "high"
	VolatilityModerate Volatility = "moderate"
	VolatilityLow      Volatility = "low"
)

// Stats summarizes the predicted values backing the classification.
type Stats struct {
	MeanPredicted    float64        `json:"mean_predicted"`
	MaxPredicted     float64        `json:"max_predicted"`
	MinPredicted     float64        `json:"min_predicted"`
	Trend            forecast.Trend `json:"trend"`
	Volatility       Volatility     `json:"volatility"`
	VariationPercent float64        `json:"variation_percent"`
}

// Narrative is the full risk assessment for a forecast.
type Narrative struct {
	AlertLevel      Level       `json:"alert_level"`
	Message         string      `json:"message"`
	Recommendations []string    `json:"recommendations"`
	Stats           Stats       `json:"stats"`
	Reliability     Reliability `json:"reliability"`
	ReliabilityNote string      `json:"reliability_note"`
	Confidence      float64     `json:"confidence"`
}

// Classify derives the risk narrative for a set of predictions and
// their metrics. diseaseName and districtName are only used in the
// human-readable message and may be empty.
func Classify(predictions []forecast.Point, metrics forecast.Metrics, diseaseName, districtName string) Narrative {
	stats := summarize(predictions)

	var level Level
	switch {
	case stats.MaxPredicted > 50 || (stats.Trend == forecast.TrendRising && stats.MeanPredicted > 30):
		level = LevelDanger
	case stats.MaxPredicted > 20 || stats.Trend == forecast.TrendRising:
		level = LevelAttention
	default:
		level = LevelNormal
	}

	narrative := Narrative{
		AlertLevel: level,
		Stats:      stats,
		Confidence: metrics.ConfidenceScore,
	}

	if diseaseName == "" {
		diseaseName = "the disease"
	}
	if districtName == "" {
		districtName = "the district"
	}

	switch level {
	case LevelDanger:
		narrative.Message = fmt.Sprintf("MAJOR ALERT: the model projects up to %d cases of %s in %s; a significant increase is expected in the coming days.",
			int(stats.MaxPredicted), diseaseName, districtName)
		narrative.Recommendations = []string{
			"Reinforce epidemiological surveillance immediately",
			"Prepare emergency vaccination or awareness campaigns",
			"Secure medical supplies and hospital bed capacity",
			"Notify regional and national health authorities",
			"Mobilize rapid-response teams",
		}
	case LevelAttention:
		narrative.Message = fmt.Sprintf("VIGILANCE REQUIRED: the model projects an average of %d cases of %s in %s (trend: %s).",
			int(stats.MeanPredicted), diseaseName, districtName, stats.Trend)
		narrative.Recommendations = []string{
			"Maintain active daily surveillance",
			"Plan preventive interventions if the increase is confirmed",
			"Brief local health centers on the situation",
			"Track actual versus predicted cases daily",
			"Prepare an escalation response plan",
		}
	default:
		narrative.Message = fmt.Sprintf("SITUATION STABLE: the model projects a controlled situation for %s in %s, around %d cases. No significant increase anticipated.",
			diseaseName, districtName, int(stats.MeanPredicted))
		narrative.Recommendations = []string{
			"Continue routine surveillance",
			"Maintain current preventive measures",
			"Reassess the situation in 7 days",
		}
	}

	switch {
	case metrics.ConfidenceScore > 0.8:
		narrative.Reliability = ReliabilityHigh
		narrative.ReliabilityNote = "The model has sufficient history and shows strong in-sample accuracy."
	case metrics.ConfidenceScore > 0.6:
		narrative.Reliability = ReliabilityMedium
		narrative.ReliabilityNote = "Predictions are indicative; compare against observed cases and adjust."
	default:
		narrative.Reliability = ReliabilityLow
		narrative.ReliabilityNote = "Historical data is limited; use these predictions with caution."
	}

	return narrative
}

// summarize computes the prediction-window statistics. The trend here
// compares the last predicted day to the first, independent of the
// engine's history-anchored trend, so a single point is stable by
// construction.
func summarize(predictions []forecast.Point) Stats {
	if len(predictions) == 0 {
		return Stats{Trend: forecast.TrendStable, Volatility: VolatilityLow}
	}

	stats := Stats{
		MinPredicted: predictions[0].Predicted,
		MaxPredicted: predictions[0].Predicted,
	}
	var sum float64
	for _, p := range predictions {
		sum += p.Predicted
		if p.Predicted > stats.MaxPredicted {
			stats.MaxPredicted = p.Predicted
		}
		if p.Predicted < stats.MinPredicted {
			stats.MinPredicted = p.Predicted
		}
	}
	stats.MeanPredicted = sum / float64(len(predictions))

	first := predictions[0].Predicted
	last := predictions[len(predictions)-1].Predicted
	switch {
	case last > first*1.2:
		stats.Trend = forecast.TrendRising
	case last < first*0.8:
		stats.Trend = forecast.TrendFalling
	default:
		stats.Trend = forecast.TrendStable
	}

	// (max-min)/(min+1): the +1 keeps all-zero windows finite.
	stats.VariationPercent = (stats.MaxPredicted - stats.MinPredicted) / (stats.MinPredicted + 1) * 100
	switch {
	case stats.VariationPercent > 50:
		stats.Volatility = VolatilityHigh
	case stats.VariationPercent > 20:
		stats.Volatility = VolatilityModerate
	default:
		stats.Volatility = VolatilityLow
	}

	return stats
}
