package models

import "time"

// InterventionType classifies field interventions.
type InterventionType string

const (
	InterventionInvestigation InterventionType = "investigation"
	InterventionVaccination   InterventionType = "vaccination"
	InterventionDisinfection  InterventionType = "disinfection"
	InterventionAwareness     InterventionType = "awareness"
	InterventionTreatment     InterventionType = "treatment"
	InterventionQuarantine    InterventionType = "quarantine"
)

// InterventionStatus represents the lifecycle state of an intervention.
type InterventionStatus string

const (
	InterventionPlanned    InterventionStatus = "planned"
	InterventionInProgress InterventionStatus = "in_progress"
	InterventionCompleted  InterventionStatus = "completed"
	InterventionCancelled  InterventionStatus = "cancelled"
)

// Intervention represents a field response to an alert or outbreak.
type Intervention struct {
	ID                 string             `json:"id"`
	AlertID            string             `json:"alert_id,omitempty"`
	DiseaseID          string             `json:"disease_id"`
	DistrictID         string             `json:"district_id"`
	Type               InterventionType   `json:"type"`
	Status             InterventionStatus `json:"status"`
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	StartDate          *time.Time         `json:"start_date,omitempty"`
	EndDate            *time.Time         `json:"end_date,omitempty"`
	EffectivenessScore *int               `json:"effectiveness_score,omitempty"` // 1-5 post-hoc rating
	CreatedAt          time.Time          `json:"created_at"`
}
