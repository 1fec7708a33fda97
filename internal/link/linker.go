package link

import (
	"math"
	"strings"

	"github.com/palopendata/unify/internal/model"
)

// earthRadiusMeters for haversine distance
const earthRadiusMeters = 6_371_000

// Linker joins records across datasets by spatial or temporal proximity.
// Matches are attached to the primary record as ID lists under related_data;
// payloads are never copied inline.
type Linker struct {
	radiusMeters float64
	windowDays   int
}

// NewLinker creates a linker; non-positive parameters fall back to defaults
func NewLinker(cfg model.LinkerConfig) *Linker {
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = 1000
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}
	return &Linker{radiusMeters: cfg.RadiusMeters, windowDays: cfg.WindowDays}
}

// Link runs the category-specific joins for every primary record against
// the other categorized datasets. The "social" key groups whatever
// health/education records the caller wants year-joined to economic data.
func (l *Linker) Link(primary []model.Record, others map[string][]model.Record) []model.Record {
	for i := range primary {
		rec := &primary[i]

		switch rec.Category {
		case model.CategoryConflict:
			if infra, ok := others["infrastructure"]; ok {
				l.attach(rec, "infrastructure", l.byProximity(rec, infra))
			}
		case model.CategoryInfrastructure:
			if hum, ok := others["humanitarian"]; ok {
				l.attach(rec, "humanitarian", l.bySharedLocation(rec, hum))
			}
		case model.CategoryEconomic:
			if social, ok := others["social"]; ok {
				l.attach(rec, "social", l.byYear(rec, social))
			}
		}
	}
	return primary
}

func (l *Linker) attach(rec *model.Record, key string, ids []string) {
	if len(ids) == 0 {
		return
	}
	if rec.RelatedData == nil {
		rec.RelatedData = make(map[string][]string)
	}
	rec.RelatedData[key] = ids
}

// byProximity matches candidates within the haversine radius and date window
func (l *Linker) byProximity(rec *model.Record, candidates []model.Record) []string {
	if rec.Location.Coordinates == nil {
		return nil
	}

	var ids []string
	for i := range candidates {
		c := &candidates[i]
		if c.Location.Coordinates == nil {
			continue
		}
		if !l.withinWindow(rec, c) {
			continue
		}
		d := Haversine(
			rec.Location.Coordinates.Latitude, rec.Location.Coordinates.Longitude,
			c.Location.Coordinates.Latitude, c.Location.Coordinates.Longitude,
		)
		if d <= l.radiusMeters {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// bySharedLocation matches candidates with the same location name or
// governorate inside the date window
func (l *Linker) bySharedLocation(rec *model.Record, candidates []model.Record) []string {
	var ids []string
	for i := range candidates {
		c := &candidates[i]

		sameName := rec.Location.Name != "" && strings.EqualFold(rec.Location.Name, c.Location.Name)
		sameAdmin := rec.Location.Admin1 != "" && strings.EqualFold(rec.Location.Admin1, c.Location.Admin1)
		if !sameName && !sameAdmin {
			continue
		}
		if !l.withinWindow(rec, c) {
			continue
		}
		ids = append(ids, c.ID)
	}
	return ids
}

// byYear matches candidates from the same calendar year
func (l *Linker) byYear(rec *model.Record, candidates []model.Record) []string {
	t, ok := rec.ParsedDate()
	if !ok {
		return nil
	}

	var ids []string
	for i := range candidates {
		ct, ok := candidates[i].ParsedDate()
		if !ok {
			continue
		}
		if ct.Year() == t.Year() {
			ids = append(ids, candidates[i].ID)
		}
	}
	return ids
}

func (l *Linker) withinWindow(a, b *model.Record) bool {
	ta, okA := a.ParsedDate()
	tb, okB := b.ParsedDate()
	if !okA || !okB {
		return false
	}
	diff := ta.Sub(tb)
	if diff < 0 {
		diff = -diff
	}
	return diff.Hours() <= float64(l.windowDays)*24
}

// Haversine computes the great-circle distance between two WGS84 points in
// meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180

	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

