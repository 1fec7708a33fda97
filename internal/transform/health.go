package transform

import (
	"strings"

	"github.com/palopendata/unify/internal/model"
)

// foreignCountries flags locations outside the covered territory. Regional
// health datasets routinely mix in neighboring countries; those rows are
// filtered before persistence.
var foreignCountries = []string{
	"lebanon",
	"syria",
	"jordan",
	"egypt",
	"iraq",
	"yemen",
	"libya",
	"sudan",
	"turkey",
	"tunisia",
}

// HealthTransformer converts health records (facility attacks, service
// disruption, epidemiology counts)
type HealthTransformer struct {
	Base
}

// NewHealthTransformer creates a health transformer
func NewHealthTransformer() *HealthTransformer {
	return &HealthTransformer{Base: newBase(model.CategoryHealth)}
}

// Category returns the handled category
func (t *HealthTransformer) Category() model.Category { return model.CategoryHealth }

// RequiredFields returns the completeness-scoring fields for health records
func (t *HealthTransformer) RequiredFields() []string {
	return RequiredFields[model.CategoryHealth]
}

// Transform converts raw health records
func (t *HealthTransformer) Transform(raw []map[string]any, meta model.SourceMeta) ([]model.Record, int) {
	records := make([]model.Record, 0, len(raw))
	skipped := 0

	for _, r := range raw {
		if r == nil {
			skipped++
			continue
		}
		rec := t.NewRecord(r, meta)
		m := ApplyFieldMap(r, meta.Source)

		if s := StringField(m, "facility_type"); s != "" {
			rec.Payload["facility_type"] = s
		}
		for _, f := range []string{"killed", "injured"} {
			if v, ok := FloatField(m, f); ok {
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

// Keep applies the shared ghost filter and additionally rejects records
// whose location points at an unrelated country
func (t *HealthTransformer) Keep(rec *model.Record) bool {
	name := strings.ToLower(rec.Location.Name)
	for _, country := range foreignCountries {
		if strings.Contains(name, country) {
			return false
		}
	}
	return baseKeep(rec)
}
