package api

import (
	"testing"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/models"
)

func validCase() models.Case {
	return models.Case{
		DiseaseID:    "measles",
		DistrictID:   "antsirabe1",
		SymptomOnset: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		DeclaredAt:   time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidateCase(t *testing.T) {
	if err := ValidateCase(ptrCase(validCase())); err != nil {
		t.Fatalf("valid case rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*models.Case)
		field  string
	}{
		{"missing disease", func(c *models.Case) { c.DiseaseID = "" }, "disease_id"},
		{"missing district", func(c *models.Case) { c.DistrictID = "" }, "district_id"},
		{"missing onset", func(c *models.Case) { c.SymptomOnset = time.Time{} }, "symptom_onset"},
		{"future onset", func(c *models.Case) {
			c.SymptomOnset = time.Now().AddDate(0, 0, 7)
			c.DeclaredAt = time.Now().AddDate(0, 0, 8)
		}, "symptom_onset"},
		{"declared before onset", func(c *models.Case) {
			c.DeclaredAt = c.SymptomOnset.AddDate(0, 0, -1)
		}, "declared_at"},
		{"negative age", func(c *models.Case) { c.Age = intPtr(-1) }, "age"},
		{"implausible age", func(c *models.Case) { c.Age = intPtr(200) }, "age"},
		{"bad status", func(c *models.Case) { c.Status = "cured" }, "status"},
		{"bad sex", func(c *models.Case) { c.Sex = "unknown" }, "sex"},
		{"latitude without longitude", func(c *models.Case) { c.Latitude = floatPtr(-19.8) }, "latitude"},
		{"latitude out of range", func(c *models.Case) {
			c.Latitude = floatPtr(99)
			c.Longitude = floatPtr(47)
		}, "latitude"},
		{"longitude out of range", func(c *models.Case) {
			c.Latitude = floatPtr(-19.8)
			c.Longitude = floatPtr(181)
		}, "longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCase()
			tt.mutate(&c)

			err := ValidateCase(&c)
			if err == nil {
				t.Fatal("expected validation error")
			}
			vErr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("field = %s, want %s", vErr.Field, tt.field)
			}
		})
	}
}

func TestValidateDisease(t *testing.T) {
	valid := models.Disease{Name: "Measles", AlertThreshold: 5, EpidemicThreshold: 10, Priority: 3}
	if err := ValidateDisease(&valid); err != nil {
		t.Fatalf("valid disease rejected: %v", err)
	}

	tests := []struct {
		name    string
		disease models.Disease
	}{
		{"missing name", models.Disease{AlertThreshold: 5, EpidemicThreshold: 10}},
		{"zero alert threshold", models.Disease{Name: "x", AlertThreshold: 0, EpidemicThreshold: 10}},
		{"epidemic below alert", models.Disease{Name: "x", AlertThreshold: 10, EpidemicThreshold: 5}},
		{"epidemic equals alert", models.Disease{Name: "x", AlertThreshold: 5, EpidemicThreshold: 5}},
		{"priority out of range", models.Disease{Name: "x", AlertThreshold: 5, EpidemicThreshold: 10, Priority: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateDisease(&tt.disease); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateHorizon(t *testing.T) {
	for _, days := range []int{7, 14, 30} {
		if err := ValidateHorizon(days); err != nil {
			t.Errorf("horizon %d rejected: %v", days, err)
		}
	}
	for _, days := range []int{0, -7, 10, 365} {
		if err := ValidateHorizon(days); err == nil {
			t.Errorf("horizon %d accepted", days)
		}
	}
}

func ptrCase(c models.Case) *models.Case { return &c }

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }
