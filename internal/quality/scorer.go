package quality

import (
	"fmt"
	"strings"
	"time"

	"github.com/palopendata/unify/internal/model"
)

// baseRequiredFields are checked for every category on top of the
// category-specific required-field table
var baseRequiredFields = []string{"id", "date"}

// Recognized official organizations earn the accuracy bonus. Multi-word
// names match by substring; short acronyms match whole tokens only, so
// "council" does not pass as UN.
var officialSubstrings = []string{
	"united nations",
	"world bank",
	"world health",
	"ocha",
	"unrwa",
	"unicef",
	"unhcr",
	"undp",
}

var officialTokens = map[string]bool{
	"un":  true,
	"who": true,
	"wfp": true,
}

// historicalCutoff is the date before which records get the accuracy
// deduction for predating systematic collection
var historicalCutoff = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultThreshold is the dataset pass/fail cutoff used when none is configured
const DefaultThreshold = 0.6

// Scorer computes per-record quality and dataset-level validation reports
type Scorer struct {
	threshold float64
	now       func() time.Time
}

// NewScorer creates a scorer with the given pass/fail threshold.
// A non-positive threshold falls back to the default.
func NewScorer(threshold float64) *Scorer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Scorer{threshold: threshold, now: time.Now}
}

// Score computes the quality assessment for one record. All components are
// bounded to [0,1].
func (s *Scorer) Score(rec *model.Record, required []string) model.Quality {
	completeness := s.completeness(rec, required)
	consistency := s.consistency(rec)
	accuracy := s.accuracy(rec)

	score := (completeness + consistency + accuracy) / 3

	return model.Quality{
		Score:        score,
		Completeness: completeness,
		Consistency:  consistency,
		Accuracy:     accuracy,
		Confidence:   score,
		Verified:     hasOfficialSource(rec),
	}
}

// completeness is the fraction of required fields present, counting the base
// {id, date} set plus the category-specific table
func (s *Scorer) completeness(rec *model.Record, required []string) float64 {
	total := len(baseRequiredFields) + len(required)
	if total == 0 {
		return 1
	}

	present := 0
	for _, f := range baseRequiredFields {
		if fieldPresent(rec, f) {
			present++
		}
	}
	for _, f := range required {
		if fieldPresent(rec, f) {
			present++
		}
	}

	return float64(present) / float64(total)
}

// consistency starts at 1.0 and subtracts for internal contradictions,
// floored at 0
func (s *Scorer) consistency(rec *model.Record) float64 {
	score := 1.0

	if rec.Date != "" {
		t, ok := rec.ParsedDate()
		if !ok {
			score -= 0.4
		} else if t.After(s.now()) {
			score -= 0.2
		}
	}

	if c := rec.Location.Coordinates; c != nil {
		if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
			score -= 0.4
		}
	}

	if v, ok := rec.NumericValue(); ok {
		if v < 0 {
			score -= 0.2
		}
		if v > 1e9 {
			score -= 0.1
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}

// accuracy starts at 1.0, rewards recognized official sources and penalizes
// records predating the collection cutoff; clamped to [0,1]
func (s *Scorer) accuracy(rec *model.Record) float64 {
	score := 1.0

	if hasOfficialSource(rec) {
		score += 0.1
	}
	if t, ok := rec.ParsedDate(); ok && t.Before(historicalCutoff) {
		score -= 0.1
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Validate aggregates per-record quality into a dataset-level report.
// Failures are reported in Errors/Warnings, never raised.
func (s *Scorer) Validate(records []model.Record, required []string) model.ValidationReport {
	report := model.ValidationReport{
		Errors:   []string{},
		Warnings: []string{},
	}

	if len(records) == 0 {
		report.Warnings = append(report.Warnings, "dataset is empty")
		return report
	}

	var sumScore, sumCompleteness, sumConsistency, sumAccuracy float64
	for i := range records {
		q := records[i].Quality
		if q == (model.Quality{}) {
			q = s.Score(&records[i], required)
		}

		sumScore += q.Score
		sumCompleteness += q.Completeness
		sumConsistency += q.Consistency
		sumAccuracy += q.Accuracy

		for _, f := range baseRequiredFields {
			if !fieldPresent(&records[i], f) {
				report.Warnings = append(report.Warnings, fmt.Sprintf("record %d: missing field %q", i, f))
			}
		}
		for _, f := range required {
			if !fieldPresent(&records[i], f) {
				report.Warnings = append(report.Warnings, fmt.Sprintf("record %d: missing field %q", i, f))
			}
		}
		if records[i].Date != "" {
			if _, ok := records[i].ParsedDate(); !ok {
				report.Errors = append(report.Errors, fmt.Sprintf("record %d: invalid date %q", i, records[i].Date))
			}
		}
	}

	n := float64(len(records))
	report.QualityScore = sumScore / n
	report.Completeness = sumCompleteness / n
	report.Consistency = sumConsistency / n
	report.Accuracy = sumAccuracy / n
	report.MeetsThreshold = report.QualityScore >= s.threshold

	return report
}

// fieldPresent checks a required-field name against the canonical schema
func fieldPresent(rec *model.Record, field string) bool {
	switch field {
	case "id":
		return rec.ID != ""
	case "date":
		return rec.Date != ""
	case "type":
		return rec.Type != ""
	case "location":
		return rec.Location.Name != "" && !strings.EqualFold(rec.Location.Name, "unknown")
	case "value":
		return rec.Value != nil
	case "unit":
		return rec.Unit != ""
	}
	// Remaining required fields live in the payload
	_, ok := rec.Payload[field]
	return ok
}

func hasOfficialSource(rec *model.Record) bool {
	for _, src := range rec.Sources {
		org := strings.ToLower(src.Organization + " " + src.Name)
		for _, official := range officialSubstrings {
			if strings.Contains(org, official) {
				return true
			}
		}
		for _, tok := range strings.Fields(org) {
			if officialTokens[tok] {
				return true
			}
		}
	}
	return false
}
