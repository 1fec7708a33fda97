package analysis

import (
	"testing"
	"time"

	"github.com/palopendata/unify/internal/model"
)

func incident(date string, killed, injured float64) model.Record {
	return model.Record{
		ID:       date + "-x",
		Category: model.CategoryConflict,
		Date:     date,
		Payload:  map[string]any{"killed": killed, "injured": injured},
	}
}

func TestBucketKey(t *testing.T) {
	d := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		g    Granularity
		want string
	}{
		{GranularityDay, "2024-01-15"},
		{GranularityWeek, "2024-W03"},
		{GranularityMonth, "2024-01"},
		{GranularityQuarter, "2024-Q1"},
	}

	for _, tt := range tests {
		if got := BucketKey(d, tt.g); got != tt.want {
			t.Errorf("BucketKey(%s) = %s, want %s", tt.g, got, tt.want)
		}
	}
}

func TestAggregateTemporal(t *testing.T) {
	records := []model.Record{
		incident("2024-01-10", 2, 5),
		incident("2024-01-10", 1, 0),
		incident("2024-02-01", 0, 3),
		{ID: "bad", Date: "not-a-date"},
	}

	buckets := AggregateTemporal(records, GranularityMonth)
	if len(buckets) != 2 {
		t.Fatalf("buckets = %+v", buckets)
	}

	jan := buckets[0]
	if jan.Key != "2024-01" {
		t.Fatalf("buckets out of order: %+v", buckets)
	}
	if jan.Incidents != 2 || jan.Fatalities != 3 || jan.Injuries != 5 || jan.Casualties != 8 {
		t.Errorf("january = %+v", jan)
	}

	feb := buckets[1]
	if feb.Incidents != 1 || feb.Casualties != 3 {
		t.Errorf("february = %+v", feb)
	}
}

func TestPeriodOverPeriod(t *testing.T) {
	buckets := []TemporalBucket{
		{Key: "2024-01", Incidents: 10, Casualties: 20},
		{Key: "2024-02", Incidents: 15, Casualties: 10},
		{Key: "2024-03", Incidents: 0, Casualties: 0},
	}

	changes := PeriodOverPeriod(buckets)
	if len(changes) != 2 {
		t.Fatalf("changes = %+v", changes)
	}

	first := changes[0]
	if first.From != "2024-01" || first.To != "2024-02" {
		t.Errorf("first change span = %+v", first)
	}
	if first.IncidentDelta != 5 || !almostEqual(first.IncidentPct, 50) {
		t.Errorf("incident change = %+v", first)
	}
	if !almostEqual(first.CasualtyPct, -50) {
		t.Errorf("casualty pct = %v", first.CasualtyPct)
	}

	if PeriodOverPeriod(buckets[:1]) != nil {
		t.Error("one bucket has no period change")
	}
}

func TestRollingIncidents(t *testing.T) {
	buckets := []TemporalBucket{
		{Key: "d1", Incidents: 2},
		{Key: "d2", Incidents: 4},
		{Key: "d3", Incidents: 6},
		{Key: "d4", Incidents: 8},
	}

	points := RollingIncidents(buckets, 3)
	if len(points) != 4 {
		t.Fatalf("points = %+v", points)
	}

	// Prefix windows aggregate what exists so far
	if points[0].Sum != 2 || !almostEqual(points[0].Avg, 2) {
		t.Errorf("point 0 = %+v", points[0])
	}
	if points[1].Sum != 6 || !almostEqual(points[1].Avg, 3) {
		t.Errorf("point 1 = %+v", points[1])
	}
	// Full windows slide
	if points[2].Sum != 12 || !almostEqual(points[2].Avg, 4) {
		t.Errorf("point 2 = %+v", points[2])
	}
	if points[3].Sum != 18 || !almostEqual(points[3].Avg, 6) {
		t.Errorf("point 3 = %+v", points[3])
	}

	if RollingIncidents(buckets, 0) != nil {
		t.Error("zero window must yield nothing")
	}
}

func TestCompareBaseline(t *testing.T) {
	cutoff := time.Date(2023, 10, 7, 0, 0, 0, 0, time.UTC)

	records := make([]model.Record, 0, 40)
	for i := 0; i < 10; i++ {
		records = append(records, incident("2023-09-01", 1, 0))
	}
	for i := 0; i < 30; i++ {
		records = append(records, incident("2023-11-01", 2, 0))
	}

	cmp := CompareBaseline(records, cutoff)

	if cmp.IncidentsBefore != 10 || cmp.IncidentsAfter != 30 {
		t.Errorf("incidents = %d/%d", cmp.IncidentsBefore, cmp.IncidentsAfter)
	}
	if !almostEqual(cmp.IncidentPctChange, 200) {
		t.Errorf("incident pct = %v, want 200", cmp.IncidentPctChange)
	}
	if !almostEqual(cmp.CasualtyPctChange, 500) {
		t.Errorf("casualty pct = %v, want 500", cmp.CasualtyPctChange)
	}
}

func TestCompareBaseline_CutoffCountsAsAfter(t *testing.T) {
	cutoff := time.Date(2023, 10, 7, 0, 0, 0, 0, time.UTC)
	cmp := CompareBaseline([]model.Record{incident("2023-10-07", 1, 0)}, cutoff)
	if cmp.IncidentsBefore != 0 || cmp.IncidentsAfter != 1 {
		t.Errorf("cutoff-day record = %+v", cmp)
	}
}

func TestPctChange_ZeroBase(t *testing.T) {
	if got := pctChange(0, 10); got != 0 {
		t.Errorf("pctChange(0, 10) = %v, want 0", got)
	}
}
