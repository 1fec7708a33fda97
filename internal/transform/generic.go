package transform

import (
	"github.com/palopendata/unify/internal/model"
)

// payloadPassthrough lists canonical fields the generic transformer carries
// into the payload when present
var payloadPassthrough = []string{
	"subtype",
	"description",
	"status",
	"population",
	"households",
	"capacity",
	"killed",
	"injured",
}

// GenericTransformer handles every category without specialized conversion
// rules. Behavior differences between those categories live entirely in the
// RequiredFields table, not in code.
type GenericTransformer struct {
	Base
}

// NewGenericTransformer creates a transformer for a category
func NewGenericTransformer(cat model.Category) *GenericTransformer {
	return &GenericTransformer{Base: newBase(cat)}
}

// Category returns the handled category
func (t *GenericTransformer) Category() model.Category { return t.category }

// RequiredFields returns the completeness-scoring fields for the category
func (t *GenericTransformer) RequiredFields() []string {
	if f, ok := RequiredFields[t.category]; ok {
		return f
	}
	return []string{"location"}
}

// Transform converts raw records using only the shared canonical mapping
func (t *GenericTransformer) Transform(raw []map[string]any, meta model.SourceMeta) ([]model.Record, int) {
	records := make([]model.Record, 0, len(raw))
	skipped := 0

	for _, r := range raw {
		if r == nil {
			skipped++
			continue
		}
		rec := t.NewRecord(r, meta)
		m := ApplyFieldMap(r, meta.Source)

		for _, f := range payloadPassthrough {
			if v, ok := m[f]; ok && v != nil {
				rec.Payload[f] = v
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

// Keep applies the shared ghost filter
func (t *GenericTransformer) Keep(rec *model.Record) bool {
	return baseKeep(rec)
}
