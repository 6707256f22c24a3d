package models

import "time"

// Prediction is a persisted forecast point for a (disease, district)
// pair, one row per forecast day of a forecast run.
type Prediction struct {
	ID              string    `json:"id"`
	DiseaseID       string    `json:"disease_id"`
	DistrictID      string    `json:"district_id"`
	Date            time.Time `json:"date"`         // predicted calendar day
	HorizonDays     int       `json:"horizon_days"` // 7, 14 or 30
	PredictedCases  float64   `json:"predicted_cases"`
	LowerBound      float64   `json:"lower_bound"`
	UpperBound      float64   `json:"upper_bound"`
	ConfidenceScore float64   `json:"confidence_score"` // 0-1, derived from MAPE
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
}
