package models

// District represents an administrative health district.
type District struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Code       string   `json:"code,omitempty"`
	Region     string   `json:"region,omitempty"`
	Population int      `json:"population"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// HealthCenterType classifies health facilities by level of care.
type HealthCenterType string

const (
	HealthCenterCSB1     HealthCenterType = "csb1"
	HealthCenterCSB2     HealthCenterType = "csb2"
	HealthCenterCHD      HealthCenterType = "chd"
	HealthCenterCHU      HealthCenterType = "chu"
	HealthCenterHospital HealthCenterType = "hospital"
)

// HealthCenter represents a health facility reporting cases.
type HealthCenter struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Type       HealthCenterType `json:"type"`
	DistrictID string           `json:"district_id"`
	Latitude   *float64         `json:"latitude,omitempty"`
	Longitude  *float64         `json:"longitude,omitempty"`
}
