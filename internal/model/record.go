package model

import "time"

// Category identifies the domain a canonical record belongs to
type Category string

const (
	CategoryConflict       Category = "conflict"
	CategoryEconomic       Category = "economic"
	CategoryHealth         Category = "health"
	CategoryEducation      Category = "education"
	CategoryInfrastructure Category = "infrastructure"
	CategoryHumanitarian   Category = "humanitarian"
	CategoryRefugee        Category = "refugee"
	CategoryLand           Category = "land"
	CategoryCulture        Category = "culture"
	CategoryWater          Category = "water"
	CategoryHistorical     Category = "historical"
)

// Categories lists every known category in registration order
var Categories = []Category{
	CategoryConflict,
	CategoryEconomic,
	CategoryHealth,
	CategoryEducation,
	CategoryInfrastructure,
	CategoryHumanitarian,
	CategoryRefugee,
	CategoryLand,
	CategoryCulture,
	CategoryWater,
	CategoryHistorical,
}

// Region is the closed set of territorial classifications
type Region string

const (
	RegionGaza      Region = "Gaza Strip"
	RegionWestBank  Region = "West Bank"
	RegionJerusalem Region = "East Jerusalem"
	RegionPalestine Region = "Palestine"
	RegionUnknown   Region = "Unknown"
)

// Record is the canonical schema every transformer must emit
type Record struct {
	ID       string   `json:"id"`
	Type     string   `json:"type,omitempty"`     // Category-specific subtype (e.g., "airstrike")
	Category Category `json:"category"`
	Date     string   `json:"date,omitempty"`     // ISO calendar date (YYYY-MM-DD)
	Location Location `json:"location"`

	Value *float64 `json:"value,omitempty"`
	Unit  string   `json:"unit,omitempty"`

	// Payload carries category-specific fields under canonical names
	// (e.g., killed, injured, children_killed for conflict records)
	Payload map[string]any `json:"payload,omitempty"`

	Quality Quality  `json:"quality"`
	Sources []Source `json:"sources"`

	TemporalContext *TemporalContext `json:"temporal_context,omitempty"`

	// RelatedData maps a category name to IDs of linked records in other
	// datasets. IDs only, payloads are never copied inline.
	RelatedData map[string][]string `json:"related_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// Location describes where a record happened
type Location struct {
	Name        string       `json:"name"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Admin1      string       `json:"admin1,omitempty"` // Governorate
	Admin2      string       `json:"admin2,omitempty"` // Municipality/district
	Admin3      string       `json:"admin3,omitempty"` // Locality
	Region      Region       `json:"region"`
}

// Coordinates is a WGS84 point
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Quality is the composite quality assessment of a record.
// All scores are in [0,1].
type Quality struct {
	Score        float64 `json:"score"`
	Completeness float64 `json:"completeness"`
	Consistency  float64 `json:"consistency"`
	Accuracy     float64 `json:"accuracy"`
	Confidence   float64 `json:"confidence"`
	Verified     bool    `json:"verified"`
}

// Source identifies a provider that contributed the record
type Source struct {
	Name         string    `json:"name"`
	Organization string    `json:"organization,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// TemporalContext places a record relative to the baseline date
type TemporalContext struct {
	DaysSinceBaseline int    `json:"days_since_baseline"`
	BaselinePeriod    string `json:"baseline_period"` // "before" or "after"
	ConflictPhase     string `json:"conflict_phase"`  // pre-conflict, escalation, ongoing
}

// NumericValue returns the record value, or NaN-safe zero and false when absent
func (r *Record) NumericValue() (float64, bool) {
	if r.Value == nil {
		return 0, false
	}
	return *r.Value, true
}

// PayloadFloat reads a numeric payload field, tolerating int and float encodings
func (r *Record) PayloadFloat(key string) (float64, bool) {
	if r.Payload == nil {
		return 0, false
	}
	switch v := r.Payload[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// ParsedDate parses the record date, reporting whether it is a valid calendar date
func (r *Record) ParsedDate() (time.Time, bool) {
	if r.Date == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Float is a convenience for building optional values
func Float(v float64) *float64 { return &v }
