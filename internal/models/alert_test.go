package models

import "testing"

func TestSeverityRank(t *testing.T) {
	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityWarning, 1},
		{SeverityAlert, 2},
		{SeverityCritical, 3},
		{Severity(""), 0},
		{Severity("panic"), 0},
	}

	for _, tt := range tests {
		if got := tt.severity.Rank(); got != tt.want {
			t.Errorf("Severity(%q).Rank() = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

func TestSeverityExceeds(t *testing.T) {
	tests := []struct {
		name  string
		s     Severity
		other Severity
		want  bool
	}{
		{"critical exceeds alert", SeverityCritical, SeverityAlert, true},
		{"critical exceeds warning", SeverityCritical, SeverityWarning, true},
		{"alert exceeds warning", SeverityAlert, SeverityWarning, true},
		{"equal severities do not exceed", SeverityAlert, SeverityAlert, false},
		{"lower does not exceed higher", SeverityWarning, SeverityCritical, false},
		{"known exceeds unknown", SeverityWarning, Severity("bogus"), true},
		{"unknown exceeds nothing", Severity("bogus"), SeverityWarning, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Exceeds(tt.other); got != tt.want {
				t.Errorf("%q.Exceeds(%q) = %v, want %v", tt.s, tt.other, got, tt.want)
			}
		})
	}
}

func TestParseSeverity(t *testing.T) {
	for _, valid := range []string{"warning", "alert", "critical"} {
		s, err := ParseSeverity(valid)
		if err != nil {
			t.Errorf("ParseSeverity(%q) returned error: %v", valid, err)
		}
		if string(s) != valid {
			t.Errorf("ParseSeverity(%q) = %q", valid, s)
		}
	}

	for _, invalid := range []string{"", "CRITICAL", "severe", "info"} {
		if _, err := ParseSeverity(invalid); err == nil {
			t.Errorf("ParseSeverity(%q) should fail", invalid)
		}
	}
}

func TestDiseaseValidate(t *testing.T) {
	tests := []struct {
		name    string
		disease Disease
		wantErr bool
	}{
		{"valid", Disease{Name: "Measles", AlertThreshold: 5, EpidemicThreshold: 10}, false},
		{"missing name", Disease{AlertThreshold: 5, EpidemicThreshold: 10}, true},
		{"zero alert threshold", Disease{Name: "Measles", AlertThreshold: 0, EpidemicThreshold: 10}, true},
		{"epidemic equals alert", Disease{Name: "Measles", AlertThreshold: 5, EpidemicThreshold: 5}, true},
		{"epidemic below alert", Disease{Name: "Measles", AlertThreshold: 10, EpidemicThreshold: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.disease.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
