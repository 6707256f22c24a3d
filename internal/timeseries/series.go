package timeseries

import (
	"fmt"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/models"
)

// DayCount is a single day of a daily case-count series.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// DailySeries is a gap-free, date-ordered daily case-count series.
// Days with zero cases are explicit entries; both the alert engine and
// the forecaster rely on the series covering every calendar day of its
// range.
type DailySeries []DayCount

// DateSelector picks the date field a case is aggregated on.
type DateSelector func(models.Case) time.Time

// BySymptomOnset aggregates on the symptom-onset date, the primary
// epidemiological date.
func BySymptomOnset(c models.Case) time.Time { return c.SymptomOnset }

// ByDeclaration aggregates on the administrative declaration date.
func ByDeclaration(c models.Case) time.Time { return c.DeclaredAt }

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Aggregate buckets cases into a gap-free daily series over the closed
// range [start, end]. Each day's value is the count of cases whose
// selected date falls on that day; days without cases get an explicit
// zero. Cases dated outside the range are ignored.
func Aggregate(cases []models.Case, selectDate DateSelector, start, end time.Time) (DailySeries, error) {
	start = Day(start)
	end = Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	counts := make(map[time.Time]int)
	for _, c := range cases {
		day := Day(selectDate(c))
		if day.Before(start) || day.After(end) {
			continue
		}
		counts[day]++
	}

	days := int(end.Sub(start).Hours()/24) + 1
	series := make(DailySeries, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		series = append(series, DayCount{Date: d, Count: counts[d]})
	}

	return series, nil
}

// Counts returns the series values as a float slice, in date order.
func (s DailySeries) Counts() []float64 {
	out := make([]float64, len(s))
	for i, dc := range s {
		out[i] = float64(dc.Count)
	}
	return out
}

// Total returns the sum of all counts in the series.
func (s DailySeries) Total() int {
	total := 0
	for _, dc := range s {
		total += dc.Count
	}
	return total
}

// TailMean returns the mean of the last n values, or of the whole
// series when it is shorter than n. A zero-length series yields 0.
func (s DailySeries) TailMean(n int) float64 {
	if len(s) == 0 || n <= 0 {
		return 0
	}
	if n > len(s) {
		n = len(s)
	}
	sum := 0
	for _, dc := range s[len(s)-n:] {
		sum += dc.Count
	}
	return float64(sum) / float64(n)
}

// End returns the date of the last entry. The zero time is returned
// for an empty series.
func (s DailySeries) End() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Date
}
