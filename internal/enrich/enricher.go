package enrich

import (
	"time"

	"github.com/palopendata/unify/internal/model"
	"github.com/palopendata/unify/internal/quality"
	"github.com/palopendata/unify/internal/transform"
)

// DefaultBaseline is the reference date for before/after comparisons
var DefaultBaseline = time.Date(2023, 10, 7, 0, 0, 0, 0, time.UTC)

// escalationDays bounds the escalation phase after the baseline
const escalationDays = 90

// Enricher adds temporal context, spatial classification and quality scores
// to transformed records
type Enricher struct {
	baseline time.Time
	scorer   *quality.Scorer
}

// NewEnricher creates an enricher around the given scorer. A zero baseline
// falls back to the default.
func NewEnricher(scorer *quality.Scorer, baseline time.Time) *Enricher {
	if baseline.IsZero() {
		baseline = DefaultBaseline
	}
	return &Enricher{baseline: baseline, scorer: scorer}
}

// Enrich derives context for every record in place and returns the slice.
// Records whose date does not parse keep a nil temporal context; everything
// else about them is still enriched.
func (e *Enricher) Enrich(records []model.Record, meta model.SourceMeta) []model.Record {
	required := transform.RequiredFields[meta.Category]

	for i := range records {
		rec := &records[i]

		if rec.Location.Region == "" || rec.Location.Region == model.RegionUnknown {
			rec.Location.Region = transform.ClassifyRegion(rec.Location.Name, meta)
		}

		if t, ok := rec.ParsedDate(); ok {
			rec.TemporalContext = e.temporalContext(t)
		}

		rec.Quality = e.scorer.Score(rec, required)
		rec.UpdatedAt = time.Now().UTC()
	}

	return records
}

func (e *Enricher) temporalContext(date time.Time) *model.TemporalContext {
	days := int(date.Sub(e.baseline).Hours() / 24)

	period := "after"
	if days < 0 {
		period = "before"
	}

	phase := "ongoing"
	switch {
	case days < 0:
		phase = "pre-conflict"
	case days <= escalationDays:
		phase = "escalation"
	}

	return &model.TemporalContext{
		DaysSinceBaseline: days,
		BaselinePeriod:    period,
		ConflictPhase:     phase,
	}
}
