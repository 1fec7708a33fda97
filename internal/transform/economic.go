package transform

import (
	"math"

	"github.com/palopendata/unify/internal/model"
)

// EconomicTransformer converts economic indicator records (GDP, unemployment,
// trade figures)
type EconomicTransformer struct {
	Base
}

// NewEconomicTransformer creates an economic transformer
func NewEconomicTransformer() *EconomicTransformer {
	return &EconomicTransformer{Base: newBase(model.CategoryEconomic)}
}

// Category returns the handled category
func (t *EconomicTransformer) Category() model.Category { return model.CategoryEconomic }

// RequiredFields returns the completeness-scoring fields for economic records
func (t *EconomicTransformer) RequiredFields() []string {
	return RequiredFields[model.CategoryEconomic]
}

// Transform converts raw economic records
func (t *EconomicTransformer) Transform(raw []map[string]any, meta model.SourceMeta) ([]model.Record, int) {
	records := make([]model.Record, 0, len(raw))
	skipped := 0

	for _, r := range raw {
		if r == nil {
			skipped++
			continue
		}
		rec := t.NewRecord(r, meta)
		m := ApplyFieldMap(r, meta.Source)

		if s := StringField(m, "currency"); s != "" {
			rec.Payload["currency"] = s
		}
		if s := StringField(m, "sector"); s != "" {
			rec.Payload["sector"] = s
		}
		if rec.Unit == "" && rec.Value != nil {
			rec.Unit = "units"
		}

		// Indicator series are territory-wide; default an unmatched
		// region to Palestine rather than Unknown
		if rec.Location.Region == model.RegionUnknown && rec.Value != nil {
			rec.Location.Region = model.RegionPalestine
		}

		if !t.Keep(&rec) {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return records, skipped
}

// Keep drops economic records without a usable numeric value; an indicator
// with no figure carries nothing downstream can aggregate
func (t *EconomicTransformer) Keep(rec *model.Record) bool {
	v, ok := rec.NumericValue()
	if !ok || math.IsNaN(v) {
		return false
	}
	return baseKeep(rec)
}
