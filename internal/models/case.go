package models

import (
	"time"
)

// Case represents a single declared disease case.
type Case struct {
	ID             string     `json:"id"`
	CaseNumber     string     `json:"case_number"`
	PatientName    string     `json:"patient_name,omitempty"`
	DiseaseID      string     `json:"disease_id"`
	DistrictID     string     `json:"district_id"`
	HealthCenterID string     `json:"health_center_id"`
	SymptomOnset   time.Time  `json:"symptom_onset"` // primary date for epidemiological aggregation
	DeclaredAt     time.Time  `json:"declared_at"`   // administrative declaration date
	Age            *int       `json:"age,omitempty"`
	Sex            Sex        `json:"sex,omitempty"`
	Status         CaseStatus `json:"status"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	Observations   string     `json:"observations,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CaseStatus represents the diagnostic state of a case.
type CaseStatus string

const (
	CaseStatusSuspected CaseStatus = "suspected"
	CaseStatusProbable  CaseStatus = "probable"
	CaseStatusConfirmed CaseStatus = "confirmed"
	CaseStatusRecovered CaseStatus = "recovered"
	CaseStatusDeceased  CaseStatus = "deceased"
)

// Sex is the declared sex of the patient.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// CaseQuery holds optional filters for listing cases.
type CaseQuery struct {
	DiseaseID  string
	DistrictID string
	DateFrom   *time.Time
	DateTo     *time.Time
	Status     CaseStatus
	Limit      int
	Offset     int
}
