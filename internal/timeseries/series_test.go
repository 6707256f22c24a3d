package timeseries

import (
	"testing"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func caseOn(onset string) models.Case {
	return models.Case{SymptomOnset: day(onset), DeclaredAt: day(onset).AddDate(0, 0, 1)}
}

func TestAggregateFillsMissingDaysWithZero(t *testing.T) {
	cases := []models.Case{
		caseOn("2024-03-01"),
		caseOn("2024-03-01"),
		caseOn("2024-03-04"),
	}

	series, err := Aggregate(cases, BySymptomOnset, day("2024-03-01"), day("2024-03-07"))
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	if len(series) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(series))
	}

	expected := []int{2, 0, 0, 1, 0, 0, 0}
	for i, want := range expected {
		if series[i].Count != want {
			t.Errorf("day %d: expected count %d, got %d", i, want, series[i].Count)
		}
	}

	zeros := 0
	for _, dc := range series {
		if dc.Count == 0 {
			zeros++
		}
	}
	if zeros != 5 {
		t.Errorf("expected 5 zero days (7 days, 2 distinct case days), got %d", zeros)
	}
}

func TestAggregateIgnoresCasesOutsideRange(t *testing.T) {
	cases := []models.Case{
		caseOn("2024-02-28"),
		caseOn("2024-03-02"),
		caseOn("2024-03-10"),
	}

	series, err := Aggregate(cases, BySymptomOnset, day("2024-03-01"), day("2024-03-05"))
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	if series.Total() != 1 {
		t.Errorf("expected total 1, got %d", series.Total())
	}
}

func TestAggregateDateSelector(t *testing.T) {
	c := models.Case{SymptomOnset: day("2024-03-01"), DeclaredAt: day("2024-03-03")}

	onset, err := Aggregate([]models.Case{c}, BySymptomOnset, day("2024-03-01"), day("2024-03-03"))
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	declared, err := Aggregate([]models.Case{c}, ByDeclaration, day("2024-03-01"), day("2024-03-03"))
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	if onset[0].Count != 1 || onset[2].Count != 0 {
		t.Errorf("onset selector bucketed wrong day: %+v", onset)
	}
	if declared[0].Count != 0 || declared[2].Count != 1 {
		t.Errorf("declaration selector bucketed wrong day: %+v", declared)
	}
}

func TestAggregateRejectsInvertedRange(t *testing.T) {
	_, err := Aggregate(nil, BySymptomOnset, day("2024-03-05"), day("2024-03-01"))
	if err == nil {
		t.Fatal("expected error for inverted range, got nil")
	}
}

func TestAggregateSingleDay(t *testing.T) {
	series, err := Aggregate([]models.Case{caseOn("2024-03-01")}, BySymptomOnset, day("2024-03-01"), day("2024-03-01"))
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(series) != 1 || series[0].Count != 1 {
		t.Fatalf("expected single entry with count 1, got %+v", series)
	}
}

func TestTailMean(t *testing.T) {
	series := DailySeries{
		{Date: day("2024-03-01"), Count: 1},
		{Date: day("2024-03-02"), Count: 2},
		{Date: day("2024-03-03"), Count: 3},
		{Date: day("2024-03-04"), Count: 4},
	}

	tests := []struct {
		name string
		n    int
		want float64
	}{
		{"last two", 2, 3.5},
		{"whole series", 4, 2.5},
		{"n larger than series", 10, 2.5},
		{"zero n", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := series.TailMean(tt.n); got != tt.want {
				t.Errorf("TailMean(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}

	if got := (DailySeries{}).TailMean(7); got != 0 {
		t.Errorf("TailMean on empty series = %v, want 0", got)
	}
}
