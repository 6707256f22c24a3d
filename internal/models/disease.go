package models

import "fmt"

// Disease represents a disease under surveillance, including the
// per-disease epidemic thresholds used by the alert engine.
type Disease struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Code              string `json:"code,omitempty"`
	ICD10Code         string `json:"icd10_code,omitempty"`
	AlertThreshold    int    `json:"alert_threshold"`    // minimum 7-day case count to open an alert-level alert
	EpidemicThreshold int    `json:"epidemic_threshold"` // minimum 7-day case count to open a critical alert
	Priority          int    `json:"priority"`           // surveillance priority 1-5
	Description       string `json:"description,omitempty"`
	Active            bool   `json:"active"`
}

// Validate checks the configuration-time invariants on the thresholds.
func (d *Disease) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("disease name is required")
	}
	if d.AlertThreshold < 1 {
		return fmt.Errorf("alert threshold must be at least 1")
	}
	if d.EpidemicThreshold <= d.AlertThreshold {
		return fmt.Errorf("epidemic threshold (%d) must be greater than alert threshold (%d)",
			d.EpidemicThreshold, d.AlertThreshold)
	}
	return nil
}
