package enrich

import (
	"testing"
	"time"

	"github.com/palopendata/unify/internal/model"
	"github.com/palopendata/unify/internal/quality"
)

func enricherForTest() *Enricher {
	return NewEnricher(quality.NewScorer(0.6), time.Date(2023, 10, 7, 0, 0, 0, 0, time.UTC))
}

func TestEnrich_TemporalContext(t *testing.T) {
	e := enricherForTest()
	meta := model.SourceMeta{Source: "test", Category: model.CategoryConflict}

	records := []model.Record{
		{ID: "a", Date: "2023-10-17", Location: model.Location{Name: "Rafah", Region: model.RegionGaza}},
		{ID: "b", Date: "2023-01-01", Location: model.Location{Name: "Jenin", Region: model.RegionWestBank}},
		{ID: "c", Date: "2024-06-01", Location: model.Location{Name: "Rafah", Region: model.RegionGaza}},
		{ID: "d", Date: "bad-date", Location: model.Location{Name: "Rafah", Region: model.RegionGaza}},
	}

	out := e.Enrich(records, meta)

	tc := out[0].TemporalContext
	if tc == nil {
		t.Fatal("expected temporal context for a valid date")
	}
	if tc.DaysSinceBaseline != 10 {
		t.Errorf("days_since_baseline = %d, want 10", tc.DaysSinceBaseline)
	}
	if tc.BaselinePeriod != "after" || tc.ConflictPhase != "escalation" {
		t.Errorf("period/phase = %s/%s", tc.BaselinePeriod, tc.ConflictPhase)
	}

	if out[1].TemporalContext.BaselinePeriod != "before" || out[1].TemporalContext.ConflictPhase != "pre-conflict" {
		t.Errorf("pre-baseline record misclassified: %+v", out[1].TemporalContext)
	}
	if out[2].TemporalContext.ConflictPhase != "ongoing" {
		t.Errorf("phase = %s, want ongoing", out[2].TemporalContext.ConflictPhase)
	}

	// Invalid date: temporal enrichment skipped, quality still attached
	if out[3].TemporalContext != nil {
		t.Error("expected nil temporal context for an invalid date")
	}
	if out[3].Quality.Score == 0 {
		t.Error("expected quality scoring even without a parseable date")
	}
}

func TestEnrich_ReclassifiesUnknownRegion(t *testing.T) {
	e := enricherForTest()
	meta := model.SourceMeta{Source: "test", Category: model.CategoryConflict, Title: "West Bank incidents"}

	records := []model.Record{
		{ID: "a", Date: "2024-01-01", Location: model.Location{Name: "Somewhere"}},
	}

	out := e.Enrich(records, meta)
	if out[0].Location.Region != model.RegionWestBank {
		t.Errorf("region = %q, want metadata fallback to West Bank", out[0].Location.Region)
	}
}

func TestEnrich_QualityAlwaysBounded(t *testing.T) {
	e := enricherForTest()
	meta := model.SourceMeta{Source: "test", Category: model.CategoryConflict}

	records := []model.Record{
		{},
		{ID: "x", Date: "2050-01-01", Value: model.Float(-3)},
	}

	out := e.Enrich(records, meta)
	for i, rec := range out {
		q := rec.Quality
		if q.Score < 0 || q.Score > 1 {
			t.Errorf("record %d: score %v out of [0,1]", i, q.Score)
		}
	}
}
