package transform

import "strings"

// FieldMap maps raw provider field names to canonical names. Mapping happens
// once at the ingestion boundary so downstream logic only ever sees canonical
// names, instead of alias chains scattered through every consumer.
type FieldMap map[string]string

// defaultAliases covers the field spellings seen across providers. A
// source-specific map in sourceFieldMaps takes precedence where registered.
var defaultAliases = FieldMap{
	// dates
	"event_date":  "date",
	"report_date": "date",
	"timestamp":   "date",
	"day":         "date",

	// locations
	"location_name": "location",
	"place":         "location",
	"city":          "location",
	"town":          "location",
	"area":          "location",
	"site":          "location",
	"governorate":   "admin1",
	"district":      "admin2",
	"locality":      "admin3",
	"lat":           "latitude",
	"lon":           "longitude",
	"lng":           "longitude",
	"long":          "longitude",

	// measures
	"amount":    "value",
	"count":     "value",
	"total":     "value",
	"quantity":  "value",
	"indicator": "type",

	// casualties
	"fatalities":       "killed",
	"deaths":           "killed",
	"dead":             "killed",
	"wounded":          "injured",
	"injuries":         "injured",
	"child_fatalities": "children_killed",
	"women_fatalities": "women_killed",
	"men_fatalities":   "men_killed",

	// subtypes
	"event_type":    "type",
	"incident_type": "type",
	"sub_event":     "subtype",
}

// sourceFieldMaps holds overrides for providers whose schemas need more than
// alias folding. Keys are lowercase source names.
var sourceFieldMaps = map[string]FieldMap{
	"acled": {
		"event_date":       "date",
		"event_type":       "type",
		"sub_event_type":   "subtype",
		"admin1":           "admin1",
		"admin2":           "admin2",
		"location":         "location",
		"fatalities":       "killed",
		"notes":            "description",
		"actor1":           "actor",
		"geo_precision":    "precision",
	},
	"worldbank": {
		"date":           "date",
		"value":          "value",
		"indicator_name": "type",
		"country":        "location",
		"unit_of_measure": "unit",
	},
	"ochaopt": {
		"report_date":     "date",
		"killed_cum":      "killed",
		"injured_cum":     "injured",
		"killed_children": "children_killed",
		"killed_women":    "women_killed",
	},
	"whoemro": {
		"attack_date":  "date",
		"facility":     "location",
		"attack_type":  "type",
		"total_killed": "killed",
		"total_injured": "injured",
	},
	"unrwa": {
		"period":       "date",
		"camp":         "location",
		"registered":   "value",
		"shelter_name": "location",
	},
	"pcbs": {
		"year":      "date",
		"region":    "location",
		"indicator": "type",
		"figure":    "value",
	},
}

// ApplyFieldMap rewrites raw keys to canonical names. Source-specific
// mappings win over the default aliases; unmapped keys pass through
// lowercased. When an alias and its canonical name are both present, the
// canonical name wins.
func ApplyFieldMap(raw map[string]any, source string) map[string]any {
	srcMap := sourceFieldMaps[strings.ToLower(source)]

	out := make(map[string]any, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))

		canonical, mapped := "", false
		if srcMap != nil {
			canonical, mapped = srcMap[key]
		}
		if !mapped {
			canonical, mapped = defaultAliases[key]
		}
		if !mapped {
			canonical = key
		}

		if _, exists := out[canonical]; exists && canonical != key {
			continue // canonical name already present, alias loses
		}
		out[canonical] = v
	}

	// A raw canonical key always beats an alias that mapped onto it
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, isAlias := defaultAliases[key]; !isAlias {
			if _, inSrc := srcMap[key]; srcMap == nil || !inSrc {
				out[key] = v
			}
		}
	}

	return out
}
