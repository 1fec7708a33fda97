package transform

import (
	"strings"

	"github.com/palopendata/unify/internal/model"
)

// Curated place-name lists for region classification. Matching is by
// normalized substring, so "Khan Yunis Refugee Camp" matches "khan yunis".
var gazaPlaces = []string{
	"gaza",
	"khan yunis",
	"khan younis",
	"rafah",
	"deir al-balah",
	"deir al balah",
	"jabalia",
	"jabaliya",
	"beit lahia",
	"beit lahiya",
	"beit hanoun",
	"nuseirat",
	"bureij",
	"maghazi",
	"khuza'a",
	"abasan",
	"bani suheila",
	"shuja'iyya",
	"shujaiyya",
	"zeitoun",
	"al-shati",
	"shati camp",
}

var westBankPlaces = []string{
	"west bank",
	"ramallah",
	"nablus",
	"hebron",
	"al-khalil",
	"bethlehem",
	"jenin",
	"tulkarm",
	"tulkarem",
	"qalqilya",
	"qalqiliya",
	"salfit",
	"jericho",
	"tubas",
	"al-bireh",
	"beit jala",
	"beit sahour",
	"dura",
	"yatta",
	"halhul",
	"qabatiya",
	"sebastia",
	"huwara",
	"beita",
	"azzun",
}

var jerusalemKeywords = []string{
	"jerusalem",
	"al-quds",
	"al quds",
	"silwan",
	"sheikh jarrah",
	"issawiya",
}

var palestineKeywords = []string{
	"palestine",
	"palestinian",
	"opt",
	"occupied territories",
	"state of palestine",
}

// ClassifyRegion maps a free-text location to the closed region set.
// Order matters: specific territories before the generic Palestine match.
// When the location itself is uninformative, the source metadata title and
// description are scanned with the same keywords.
func ClassifyRegion(location string, meta model.SourceMeta) model.Region {
	if r := classifyText(location); r != model.RegionUnknown {
		return r
	}
	if r := classifyText(meta.Title); r != model.RegionUnknown {
		return r
	}
	if r := classifyText(meta.Description); r != model.RegionUnknown {
		return r
	}
	return model.RegionUnknown
}

func classifyText(s string) model.Region {
	norm := normalizeLocation(s)
	if norm == "" {
		return model.RegionUnknown
	}

	for _, place := range gazaPlaces {
		if strings.Contains(norm, place) {
			return model.RegionGaza
		}
	}
	for _, place := range westBankPlaces {
		if strings.Contains(norm, place) {
			return model.RegionWestBank
		}
	}
	for _, kw := range jerusalemKeywords {
		if strings.Contains(norm, kw) {
			return model.RegionJerusalem
		}
	}
	for _, kw := range palestineKeywords {
		if strings.Contains(norm, kw) {
			return model.RegionPalestine
		}
	}
	return model.RegionUnknown
}

// normalizeLocation trims, case-folds and strips separator artifacts so
// provider spellings like "Khan_Yunis -- Gaza" still match the lists.
func normalizeLocation(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "--", " ")
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
