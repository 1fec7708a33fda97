package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/palopendata/unify/internal/model"
)

// Granularity selects the temporal bucket width
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
)

// TemporalBucket accumulates one period of records
type TemporalBucket struct {
	Key        string  `json:"key"`
	Incidents  int     `json:"incidents"`
	Casualties float64 `json:"casualties"`
	Fatalities float64 `json:"fatalities"`
	Injuries   float64 `json:"injuries"`
}

// BucketKey renders the bucket key for a date at the given granularity.
// Keys sort chronologically as strings.
func BucketKey(t time.Time, g Granularity) string {
	switch g {
	case GranularityDay:
		return t.Format("2006-01-02")
	case GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GranularityMonth:
		return t.Format("2006-01")
	case GranularityQuarter:
		q := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", t.Year(), q)
	}
	return t.Format("2006-01-02")
}

// AggregateTemporal buckets records by period and accumulates incident and
// casualty counts. Records without a valid date are skipped. Buckets come
// back in chronological order.
func AggregateTemporal(records []model.Record, g Granularity) []TemporalBucket {
	byKey := make(map[string]*TemporalBucket)

	for i := range records {
		t, ok := records[i].ParsedDate()
		if !ok {
			continue
		}
		key := BucketKey(t, g)

		b, exists := byKey[key]
		if !exists {
			b = &TemporalBucket{Key: key}
			byKey[key] = b
		}

		b.Incidents++
		killed, _ := records[i].PayloadFloat("killed")
		injured, _ := records[i].PayloadFloat("injured")
		b.Fatalities += killed
		b.Injuries += injured
		b.Casualties += killed + injured
	}

	buckets := make([]TemporalBucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

// PeriodChange reports the movement between two chronologically adjacent buckets
type PeriodChange struct {
	From              string  `json:"from"`
	To                string  `json:"to"`
	IncidentDelta     int     `json:"incident_delta"`
	IncidentPct       float64 `json:"incident_pct"`
	CasualtyDelta     float64 `json:"casualty_delta"`
	CasualtyPct       float64 `json:"casualty_pct"`
}

// PeriodOverPeriod computes absolute and percentage change between adjacent
// buckets. Buckets must already be in chronological order.
func PeriodOverPeriod(buckets []TemporalBucket) []PeriodChange {
	if len(buckets) < 2 {
		return nil
	}

	changes := make([]PeriodChange, 0, len(buckets)-1)
	for i := 1; i < len(buckets); i++ {
		prev, cur := buckets[i-1], buckets[i]
		changes = append(changes, PeriodChange{
			From:          prev.Key,
			To:            cur.Key,
			IncidentDelta: cur.Incidents - prev.Incidents,
			IncidentPct:   pctChange(float64(prev.Incidents), float64(cur.Incidents)),
			CasualtyDelta: cur.Casualties - prev.Casualties,
			CasualtyPct:   pctChange(prev.Casualties, cur.Casualties),
		})
	}
	return changes
}

// RollingPoint is one position of a trailing-window aggregation
type RollingPoint struct {
	Key string  `json:"key"`
	Sum float64 `json:"sum"`
	Avg float64 `json:"avg"`
}

// RollingIncidents computes a trailing N-bucket sum and average of incident
// counts. The first window-1 positions aggregate the shorter prefix.
func RollingIncidents(buckets []TemporalBucket, window int) []RollingPoint {
	if window <= 0 || len(buckets) == 0 {
		return nil
	}

	points := make([]RollingPoint, 0, len(buckets))
	var sum float64
	for i := range buckets {
		sum += float64(buckets[i].Incidents)
		if i >= window {
			sum -= float64(buckets[i-window].Incidents)
		}
		span := i + 1
		if span > window {
			span = window
		}
		points = append(points, RollingPoint{
			Key: buckets[i].Key,
			Sum: sum,
			Avg: sum / float64(span),
		})
	}
	return points
}

// BaselineComparison reports the shift between the two halves of a dataset
// split at the cutoff date
type BaselineComparison struct {
	Cutoff            string  `json:"cutoff"`
	IncidentsBefore   int     `json:"incidents_before"`
	IncidentsAfter    int     `json:"incidents_after"`
	CasualtiesBefore  float64 `json:"casualties_before"`
	CasualtiesAfter   float64 `json:"casualties_after"`
	IncidentPctChange float64 `json:"incident_pct_change"`
	CasualtyPctChange float64 `json:"casualty_pct_change"`
}

// CompareBaseline splits records at the cutoff and reports the percentage
// change in incidents and casualties between the halves. Records dated
// exactly at the cutoff count as after.
func CompareBaseline(records []model.Record, cutoff time.Time) BaselineComparison {
	cmp := BaselineComparison{Cutoff: cutoff.Format("2006-01-02")}

	for i := range records {
		t, ok := records[i].ParsedDate()
		if !ok {
			continue
		}
		killed, _ := records[i].PayloadFloat("killed")
		injured, _ := records[i].PayloadFloat("injured")
		casualties := killed + injured

		if t.Before(cutoff) {
			cmp.IncidentsBefore++
			cmp.CasualtiesBefore += casualties
		} else {
			cmp.IncidentsAfter++
			cmp.CasualtiesAfter += casualties
		}
	}

	cmp.IncidentPctChange = pctChange(float64(cmp.IncidentsBefore), float64(cmp.IncidentsAfter))
	cmp.CasualtyPctChange = pctChange(cmp.CasualtiesBefore, cmp.CasualtiesAfter)
	return cmp
}

// pctChange is the percentage change from a to b; a zero base yields 0
// rather than infinity
func pctChange(a, b float64) float64 {
	if a == 0 {
		return 0
	}
	return (b - a) / a * 100
}
