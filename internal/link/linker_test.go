package link

import (
	"math"
	"testing"

	"github.com/palopendata/unify/internal/model"
)

func coordRecord(id string, cat model.Category, date string, lat, lon float64) model.Record {
	return model.Record{
		ID:       id,
		Category: cat,
		Date:     date,
		Location: model.Location{
			Coordinates: &model.Coordinates{Latitude: lat, Longitude: lon},
		},
	}
}

func TestHaversine(t *testing.T) {
	// Same point
	if d := Haversine(31.5, 34.45, 31.5, 34.45); d != 0 {
		t.Errorf("zero distance = %v", d)
	}

	// One degree of latitude is about 111 km
	d := Haversine(31.0, 34.45, 32.0, 34.45)
	if math.Abs(d-111_000) > 1_000 {
		t.Errorf("one degree latitude = %v m, want ~111000", d)
	}

	// Gaza City to Rafah is roughly 28 km
	d = Haversine(31.5017, 34.4668, 31.2889, 34.2516)
	if d < 25_000 || d > 35_000 {
		t.Errorf("gaza-rafah = %v m", d)
	}
}

func TestLink_ConflictToInfrastructureByProximity(t *testing.T) {
	l := NewLinker(model.LinkerConfig{RadiusMeters: 1000, WindowDays: 7})

	primary := []model.Record{
		coordRecord("strike-1", model.CategoryConflict, "2024-01-10", 31.5000, 34.4500),
	}
	infra := []model.Record{
		// ~150 m away, 2 days apart: matches
		coordRecord("hospital-near", model.CategoryInfrastructure, "2024-01-12", 31.5010, 34.4510),
		// ~11 km away: outside the radius
		coordRecord("school-far", model.CategoryInfrastructure, "2024-01-10", 31.6000, 34.4500),
		// nearby but a month later: outside the window
		coordRecord("clinic-late", model.CategoryInfrastructure, "2024-02-15", 31.5001, 34.4501),
	}

	linked := l.Link(primary, map[string][]model.Record{"infrastructure": infra})

	ids := linked[0].RelatedData["infrastructure"]
	if len(ids) != 1 || ids[0] != "hospital-near" {
		t.Errorf("related = %v, want [hospital-near]", ids)
	}
}

func TestLink_NoCoordinatesNoMatch(t *testing.T) {
	l := NewLinker(model.LinkerConfig{})

	primary := []model.Record{
		{ID: "strike-1", Category: model.CategoryConflict, Date: "2024-01-10"},
	}
	infra := []model.Record{
		coordRecord("hospital", model.CategoryInfrastructure, "2024-01-10", 31.5, 34.45),
	}

	linked := l.Link(primary, map[string][]model.Record{"infrastructure": infra})
	if linked[0].RelatedData != nil {
		t.Errorf("record without coordinates linked: %v", linked[0].RelatedData)
	}
}

func TestLink_InfrastructureToHumanitarianBySharedLocation(t *testing.T) {
	l := NewLinker(model.LinkerConfig{WindowDays: 7})

	primary := []model.Record{
		{
			ID:       "plant-1",
			Category: model.CategoryInfrastructure,
			Date:     "2024-03-01",
			Location: model.Location{Name: "Khan Yunis", Admin1: "Khan Yunis"},
		},
	}
	hum := []model.Record{
		{
			ID:       "aid-same-name",
			Category: model.CategoryHumanitarian,
			Date:     "2024-03-03",
			Location: model.Location{Name: "khan yunis"},
		},
		{
			ID:       "aid-same-admin",
			Category: model.CategoryHumanitarian,
			Date:     "2024-03-05",
			Location: model.Location{Name: "Bani Suheila", Admin1: "Khan Yunis"},
		},
		{
			ID:       "aid-elsewhere",
			Category: model.CategoryHumanitarian,
			Date:     "2024-03-03",
			Location: model.Location{Name: "Jenin", Admin1: "Jenin"},
		},
		{
			ID:       "aid-too-late",
			Category: model.CategoryHumanitarian,
			Date:     "2024-04-01",
			Location: model.Location{Name: "Khan Yunis"},
		},
	}

	linked := l.Link(primary, map[string][]model.Record{"humanitarian": hum})

	ids := linked[0].RelatedData["humanitarian"]
	if len(ids) != 2 {
		t.Fatalf("related = %v", ids)
	}
	if ids[0] != "aid-same-name" || ids[1] != "aid-same-admin" {
		t.Errorf("related = %v", ids)
	}
}

func TestLink_EconomicToSocialByYear(t *testing.T) {
	l := NewLinker(model.LinkerConfig{})

	primary := []model.Record{
		{ID: "gdp-2023", Category: model.CategoryEconomic, Date: "2023-12-31"},
	}
	social := []model.Record{
		{ID: "health-2023", Category: model.CategoryHealth, Date: "2023-01-15"},
		{ID: "edu-2023", Category: model.CategoryEducation, Date: "2023-06-01"},
		{ID: "health-2024", Category: model.CategoryHealth, Date: "2024-01-15"},
		{ID: "undated", Category: model.CategoryHealth, Date: "unknown"},
	}

	linked := l.Link(primary, map[string][]model.Record{"social": social})

	ids := linked[0].RelatedData["social"]
	if len(ids) != 2 || ids[0] != "health-2023" || ids[1] != "edu-2023" {
		t.Errorf("related = %v", ids)
	}
}

func TestLink_NoMatchesLeavesRelatedDataNil(t *testing.T) {
	l := NewLinker(model.LinkerConfig{})

	primary := []model.Record{
		{ID: "gdp-2020", Category: model.CategoryEconomic, Date: "2020-01-01"},
	}
	social := []model.Record{
		{ID: "health-2024", Category: model.CategoryHealth, Date: "2024-01-15"},
	}

	linked := l.Link(primary, map[string][]model.Record{"social": social})
	if linked[0].RelatedData != nil {
		t.Errorf("empty match set must not allocate related_data: %v", linked[0].RelatedData)
	}
}

func TestLink_MissingOtherCategory(t *testing.T) {
	l := NewLinker(model.LinkerConfig{})
	primary := []model.Record{
		coordRecord("strike-1", model.CategoryConflict, "2024-01-10", 31.5, 34.45),
	}
	linked := l.Link(primary, map[string][]model.Record{})
	if linked[0].RelatedData != nil {
		t.Errorf("no candidate dataset must mean no links: %v", linked[0].RelatedData)
	}
}
