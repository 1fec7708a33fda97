package analysis

import (
	"sort"

	"github.com/palopendata/unify/internal/model"
)

// AreaStats accumulates incident and casualty figures for one area
type AreaStats struct {
	Name          string  `json:"name"`
	IncidentCount int     `json:"incident_count"`
	CasualtyTotal float64 `json:"casualty_total"`
	Fatalities    float64 `json:"fatalities"`
	Injuries      float64 `json:"injuries"`
}

// ByRegion groups records by their territorial region
func ByRegion(records []model.Record) []AreaStats {
	return aggregateSpatial(records, func(r *model.Record) string {
		return string(r.Location.Region)
	})
}

// ByGovernorate groups records by admin level 1; records without one land
// under "Unknown"
func ByGovernorate(records []model.Record) []AreaStats {
	return aggregateSpatial(records, func(r *model.Record) string {
		if r.Location.Admin1 == "" {
			return "Unknown"
		}
		return r.Location.Admin1
	})
}

func aggregateSpatial(records []model.Record, keyFn func(*model.Record) string) []AreaStats {
	byKey := make(map[string]*AreaStats)

	for i := range records {
		key := keyFn(&records[i])
		s, ok := byKey[key]
		if !ok {
			s = &AreaStats{Name: key}
			byKey[key] = s
		}

		s.IncidentCount++
		killed, _ := records[i].PayloadFloat("killed")
		injured, _ := records[i].PayloadFloat("injured")
		s.Fatalities += killed
		s.Injuries += injured
		s.CasualtyTotal += killed + injured
	}

	out := make([]AreaStats, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TopAreas ranks areas by the chosen metric descending and keeps the first n.
// Metrics: "incidents", "casualties", "fatalities", "injuries".
func TopAreas(areas []AreaStats, metric string, n int) []AreaStats {
	ranked := make([]AreaStats, len(areas))
	copy(ranked, areas)

	value := func(a *AreaStats) float64 {
		switch metric {
		case "casualties":
			return a.CasualtyTotal
		case "fatalities":
			return a.Fatalities
		case "injuries":
			return a.Injuries
		default:
			return float64(a.IncidentCount)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return value(&ranked[i]) > value(&ranked[j]) })

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
