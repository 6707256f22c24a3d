package api

import (
	"fmt"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/forecast"
	"github.com/Laza-adina/drsp-vak/internal/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateCase validates a case declaration payload.
func ValidateCase(c *models.Case) error {
	if c.DiseaseID == "" {
		return ValidationError{Field: "disease_id", Message: "Disease is required"}
	}
	if c.DistrictID == "" {
		return ValidationError{Field: "district_id", Message: "District is required"}
	}
	if c.SymptomOnset.IsZero() {
		return ValidationError{Field: "symptom_onset", Message: "Symptom onset date is required"}
	}
	if c.DeclaredAt.IsZero() {
		return ValidationError{Field: "declared_at", Message: "Declaration date is required"}
	}
	if c.SymptomOnset.After(time.Now().Add(24 * time.Hour)) {
		return ValidationError{Field: "symptom_onset", Message: "Symptom onset cannot be in the future"}
	}
	if c.DeclaredAt.Before(c.SymptomOnset) {
		return ValidationError{Field: "declared_at", Message: "Declaration cannot precede symptom onset"}
	}
	if c.Age != nil && (*c.Age < 0 || *c.Age > 130) {
		return ValidationError{Field: "age", Message: "Age must be between 0 and 130"}
	}

	if c.Status != "" {
		switch c.Status {
		case models.CaseStatusSuspected, models.CaseStatusProbable, models.CaseStatusConfirmed,
			models.CaseStatusRecovered, models.CaseStatusDeceased:
		default:
			return ValidationError{Field: "status", Message: "Invalid case status"}
		}
	}

	if c.Sex != "" {
		switch c.Sex {
		case models.SexMale, models.SexFemale, models.SexOther:
		default:
			return ValidationError{Field: "sex", Message: "Invalid sex value"}
		}
	}

	if (c.Latitude == nil) != (c.Longitude == nil) {
		return ValidationError{Field: "latitude", Message: "Latitude and longitude must be provided together"}
	}
	if c.Latitude != nil {
		if *c.Latitude < -90 || *c.Latitude > 90 {
			return ValidationError{Field: "latitude", Message: "Latitude must be between -90 and 90"}
		}
		if *c.Longitude < -180 || *c.Longitude > 180 {
			return ValidationError{Field: "longitude", Message: "Longitude must be between -180 and 180"}
		}
	}

	return nil
}

// ValidateDisease validates a disease catalog payload.
func ValidateDisease(d *models.Disease) error {
	if d.Name == "" {
		return ValidationError{Field: "name", Message: "Disease name is required"}
	}
	if d.AlertThreshold < 1 {
		return ValidationError{Field: "alert_threshold", Message: "Alert threshold must be at least 1"}
	}
	if d.EpidemicThreshold <= d.AlertThreshold {
		return ValidationError{Field: "epidemic_threshold", Message: "Epidemic threshold must be greater than alert threshold"}
	}
	if d.Priority < 0 || d.Priority > 5 {
		return ValidationError{Field: "priority", Message: "Priority must be between 0 and 5"}
	}

	return nil
}

// ValidateHorizon validates a forecast horizon request parameter.
func ValidateHorizon(horizonDays int) error {
	switch horizonDays {
	case forecast.HorizonWeek, forecast.HorizonFortnight, forecast.HorizonMonth:
		return nil
	default:
		return ValidationError{
			Field: "horizon_days",
			Message: fmt.Sprintf("Horizon must be %d, %d or %d days",
				forecast.HorizonWeek, forecast.HorizonFortnight, forecast.HorizonMonth),
		}
	}
}
