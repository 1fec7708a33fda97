package transform

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/palopendata/unify/internal/model"
)

// Transformer converts raw provider records of one category into canonical
// records. Implementations must never fail a whole batch: a raw record that
// cannot be converted is skipped and counted.
//
// Transform is the first stage of the per-dataset contract; enrichment
// (enrich.Enricher.Enrich) and validation (quality.Scorer.Validate) are
// separate stages the pipeline composes after it, in that order.
type Transformer interface {
	// Category returns the category this transformer handles
	Category() model.Category

	// Transform converts raw records into canonical records.
	// The second return value counts skipped raw records.
	Transform(raw []map[string]any, meta model.SourceMeta) ([]model.Record, int)

	// RequiredFields lists the category-specific fields completeness
	// scoring checks on top of the base {id, date} set
	RequiredFields() []string

	// Keep reports whether a transformed record survives the
	// category's ghost-record filter
	Keep(rec *model.Record) bool
}

// RequiredFields is the per-category required-field table. It is the
// extension point for completeness scoring: data, not subclass overrides,
// drives per-category behavior.
var RequiredFields = map[model.Category][]string{
	model.CategoryConflict:       {"type", "location"},
	model.CategoryEconomic:       {"value", "unit"},
	model.CategoryHealth:         {"value", "location"},
	model.CategoryEducation:      {"value", "location"},
	model.CategoryInfrastructure: {"type", "location"},
	model.CategoryHumanitarian:   {"value", "location"},
	model.CategoryRefugee:        {"value", "location"},
	model.CategoryLand:           {"location"},
	model.CategoryCulture:        {"type", "location"},
	model.CategoryWater:          {"value", "location"},
	model.CategoryHistorical:     {"type", "location"},
}

// Registry manages category transformers
type Registry struct {
	transformers map[model.Category]Transformer
}

// NewRegistry creates a registry with every built-in transformer registered
func NewRegistry() *Registry {
	r := &Registry{transformers: make(map[model.Category]Transformer)}

	r.Register(NewConflictTransformer())
	r.Register(NewEconomicTransformer())
	r.Register(NewHealthTransformer())

	// Remaining categories share the table-driven generic transformer
	for _, cat := range model.Categories {
		if _, ok := r.transformers[cat]; !ok {
			r.Register(NewGenericTransformer(cat))
		}
	}

	return r
}

// Register registers a transformer for its category
func (r *Registry) Register(t Transformer) {
	r.transformers[t.Category()] = t
}

// ForCategory returns the transformer for a category, falling back to a
// generic transformer for categories nobody registered
func (r *Registry) ForCategory(cat model.Category) Transformer {
	if t, ok := r.transformers[cat]; ok {
		return t
	}
	return NewGenericTransformer(cat)
}

// Base provides the conversion helpers shared by all transformers
type Base struct {
	category model.Category
	now      func() time.Time
}

func newBase(cat model.Category) Base {
	return Base{category: cat, now: time.Now}
}

// NewRecord builds the canonical skeleton for one raw record: field-map
// application, date normalization, location assembly, region classification
// and deterministic ID. Category-specific payload handling happens in the
// concrete transformer.
func (b *Base) NewRecord(raw map[string]any, meta model.SourceMeta) model.Record {
	m := ApplyFieldMap(raw, meta.Source)

	date := NormalizeDate(StringField(m, "date"))
	loc := b.buildLocation(m, meta)

	rec := model.Record{
		ID:       RecordID(date, loc.Name, raw),
		Type:     StringField(m, "type"),
		Category: b.category,
		Date:     date,
		Location: loc,
		Unit:     StringField(m, "unit"),
		Payload:  map[string]any{},
		Sources: []model.Source{{
			Name:         meta.Source,
			Organization: meta.Organization,
			FetchedAt:    b.now().UTC(),
		}},
		CreatedAt: b.now().UTC(),
		UpdatedAt: b.now().UTC(),
		Version:   1,
	}

	if v, ok := FloatField(m, "value"); ok {
		rec.Value = model.Float(v)
	}

	return rec
}

func (b *Base) buildLocation(m map[string]any, meta model.SourceMeta) model.Location {
	loc := model.Location{
		Name:   StringField(m, "location"),
		Admin1: StringField(m, "admin1"),
		Admin2: StringField(m, "admin2"),
		Admin3: StringField(m, "admin3"),
	}
	if loc.Name == "" {
		loc.Name = "Unknown"
	}

	lat, okLat := FloatField(m, "latitude")
	lon, okLon := FloatField(m, "longitude")
	if okLat && okLon && (lat != 0 || lon != 0) {
		loc.Coordinates = &model.Coordinates{Latitude: lat, Longitude: lon}
	}

	loc.Region = ClassifyRegion(loc.Name, meta)
	return loc
}

// baseKeep is the shared ghost filter: a record with no usable value and no
// known location carries no information and is dropped before persistence.
func baseKeep(rec *model.Record) bool {
	hasValue := false
	if v, ok := rec.NumericValue(); ok && !math.IsNaN(v) && v != 0 {
		hasValue = true
	}
	known := !strings.EqualFold(rec.Location.Name, "unknown") && rec.Location.Name != ""
	return hasValue || known
}

// StringField reads a field as a trimmed string
func StringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// FloatField reads a field as a number, tolerating string encodings
func FloatField(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// dateFormats are tried in order when normalizing provider dates
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02-01-2006",
	"02 January 2006",
	"January 2, 2006",
	"2006-01",
	"2006",
}

// NormalizeDate converts a provider date string to ISO YYYY-MM-DD.
// Unparseable input is returned unchanged so consistency scoring can see it.
func NormalizeDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
