package transform

import (
	"github.com/palopendata/unify/internal/model"
)

// casualtyFields are carried into the payload under canonical names
var casualtyFields = []string{
	"killed",
	"injured",
	"children_killed",
	"women_killed",
	"men_killed",
	"children_injured",
	"women_injured",
}

// ConflictTransformer converts conflict-event records (incidents, strikes,
// casualty reports)
type ConflictTransformer struct {
	Base
}

// NewConflictTransformer creates a conflict transformer
func NewConflictTransformer() *ConflictTransformer {
	return &ConflictTransformer{Base: newBase(model.CategoryConflict)}
}

// Category returns the handled category
func (t *ConflictTransformer) Category() model.Category { return model.CategoryConflict }

// RequiredFields returns the completeness-scoring fields for conflict records
func (t *ConflictTransformer) RequiredFields() []string {
	return RequiredFields[model.CategoryConflict]
}

// Transform converts raw conflict records
func (t *ConflictTransformer) Transform(raw []map[string]any, meta model.SourceMeta) ([]model.Record, int) {
	records := make([]model.Record, 0, len(raw))
	skipped := 0

	for _, r := range raw {
		if r == nil {
			skipped++
			continue
		}
		rec := t.NewRecord(r, meta)
		m := ApplyFieldMap(r, meta.Source)

		for _, f := range casualtyFields {
			if v, ok := FloatField(m, f); ok {
				rec.Payload[f] = v
			}
		}
		if s := StringField(m, "subtype"); s != "" {
			rec.Payload["subtype"] = s
		}
		if s := StringField(m, "actor"); s != "" {
			rec.Payload["actor"] = s
		}

		inferDemographics(rec.Payload)

		// Incident magnitude defaults to the fatality count
		if rec.Value == nil {
			if killed, ok := rec.PayloadFloat("killed"); ok {
				rec.Value = model.Float(killed)
				rec.Unit = "persons"
			}
		}

		if !t.Keep(&rec) {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return records, skipped
}

// Keep applies the shared ghost filter; conflict records with a known
// incident type survive even when the casualty count is zero
func (t *ConflictTransformer) Keep(rec *model.Record) bool {
	if rec.Type != "" {
		return true
	}
	return baseKeep(rec)
}

// inferDemographics fills men_killed when a total and the child/women splits
// are reported but the men split is not. Floored at zero when the reported
// splits exceed the total.
func inferDemographics(payload map[string]any) {
	if _, ok := payload["men_killed"]; ok {
		return
	}
	killed, ok := floatAt(payload, "killed")
	if !ok {
		return
	}
	children, _ := floatAt(payload, "children_killed")
	women, _ := floatAt(payload, "women_killed")

	men := killed - children - women
	if men < 0 {
		men = 0
	}
	payload["men_killed"] = men
}

func floatAt(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
