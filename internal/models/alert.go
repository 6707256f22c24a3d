package models

import (
	"fmt"
	"time"
)

// Severity represents the graded severity of an epidemic alert.
// Severities form a total order so that escalation decisions are a
// simple rank comparison rather than a string chain.
type Severity string

const (
	SeverityWarning  Severity = "warning"  // unusual increase, below alert threshold
	SeverityAlert    Severity = "alert"    // alert threshold crossed
	SeverityCritical Severity = "critical" // epidemic threshold crossed
)

// Rank returns the position of the severity in the escalation order.
// Unknown severities rank below every known one.
func (s Severity) Rank() int {
	switch s {
	case SeverityWarning:
		return 1
	case SeverityAlert:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// Exceeds reports whether s is strictly higher than other in the
// escalation order.
func (s Severity) Exceeds(other Severity) bool {
	return s.Rank() > other.Rank()
}

// ParseSeverity validates a severity string.
func ParseSeverity(raw string) (Severity, error) {
	switch Severity(raw) {
	case SeverityWarning, SeverityAlert, SeverityCritical:
		return Severity(raw), nil
	default:
		return "", fmt.Errorf("unknown severity: %q", raw)
	}
}

// AlertStatus represents the lifecycle state of an alert.
type AlertStatus string

const (
	AlertStatusActive        AlertStatus = "active"
	AlertStatusResolved      AlertStatus = "resolved"
	AlertStatusFalsePositive AlertStatus = "false_positive"
)

// Alert represents an epidemic alert for a (disease, district) pair.
// At most one active alert may exist per pair at any time; that
// invariant is enforced by the alert store, not by callers.
type Alert struct {
	ID                 string      `json:"id"`
	Type               string      `json:"type"` // short human label, e.g. "confirmed epidemic"
	Severity           Severity    `json:"severity"`
	Status             AlertStatus `json:"status"`
	DiseaseID          string      `json:"disease_id"`
	DistrictID         string      `json:"district_id"`
	CaseCount          int         `json:"case_count"`          // rolling-window count backing the severity
	TriggeredThreshold int         `json:"triggered_threshold"` // threshold value that was crossed
	DetectionDate      time.Time   `json:"detection_date"`
	ResolutionDate     *time.Time  `json:"resolution_date,omitempty"`
	Description        string      `json:"description"`
	RecommendedActions string      `json:"recommended_actions,omitempty"`
	ActionsTaken       string      `json:"actions_taken,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// AlertQuery holds optional filters for listing alerts.
type AlertQuery struct {
	Status     AlertStatus
	Severity   Severity
	DiseaseID  string
	DistrictID string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}
