package analysis

import (
	"time"

	"github.com/palopendata/unify/internal/model"
)

// Engine runs the full statistical analysis over one canonical dataset
type Engine struct {
	cfg model.AnalysisConfig
}

// NewEngine creates an analysis engine
func NewEngine(cfg model.AnalysisConfig) *Engine {
	if cfg.SeasonalLag <= 0 {
		cfg.SeasonalLag = 7
	}
	if cfg.ChangePointZ <= 0 {
		cfg.ChangePointZ = 2
	}
	if cfg.SmoothingAlpha <= 0 {
		cfg.SmoothingAlpha = DefaultSmoothingAlpha
	}
	if cfg.OutlierIQRMult <= 0 {
		cfg.OutlierIQRMult = 1.5
	}
	return &Engine{cfg: cfg}
}

// Report is the complete analysis output for one dataset
type Report struct {
	Category model.Category `json:"category"`
	Records  int            `json:"records"`

	Values *Summary `json:"values,omitempty"`

	Daily    []TemporalBucket `json:"daily,omitempty"`
	Monthly  []TemporalBucket `json:"monthly,omitempty"`
	Changes  []PeriodChange   `json:"changes,omitempty"`
	Rolling  []RollingPoint   `json:"rolling,omitempty"`
	Baseline *BaselineComparison `json:"baseline,omitempty"`

	Regions      []AreaStats `json:"regions,omitempty"`
	Governorates []AreaStats `json:"governorates,omitempty"`
	TopRegions   []AreaStats `json:"top_regions,omitempty"`

	Trend         Trend          `json:"trend"`
	Seasonality   Seasonality    `json:"seasonality"`
	Decomposition *Decomposition `json:"decomposition,omitempty"`
	Forecast      Forecast       `json:"forecast"`
	ForecastEWMA  Forecast       `json:"forecast_ewma"`
	ChangePoints  []ChangePoint  `json:"change_points,omitempty"`

	OutliersIQR []float64 `json:"outliers_iqr,omitempty"`
	OutliersZ   []float64 `json:"outliers_z,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Analyze computes the full report for a dataset. The time series analyzed
// is the daily incident count; descriptive statistics run over record values.
func (e *Engine) Analyze(records []model.Record, category model.Category, baseline time.Time) *Report {
	report := &Report{
		Category:    category,
		Records:     len(records),
		GeneratedAt: time.Now().UTC(),
	}
	if len(records) == 0 {
		return report
	}

	values := make([]float64, 0, len(records))
	for i := range records {
		if v, ok := records[i].NumericValue(); ok {
			values = append(values, v)
		}
	}
	if summary, err := Describe(values); err == nil {
		report.Values = summary
	}
	report.OutliersIQR = OutliersIQR(values, e.cfg.OutlierIQRMult)
	report.OutliersZ = OutliersZScore(values, 3)

	report.Daily = AggregateTemporal(records, GranularityDay)
	report.Monthly = AggregateTemporal(records, GranularityMonth)
	report.Changes = PeriodOverPeriod(report.Monthly)
	report.Rolling = RollingIncidents(report.Daily, e.cfg.SeasonalLag)
	if !baseline.IsZero() {
		cmp := CompareBaseline(records, baseline)
		report.Baseline = &cmp
	}

	report.Regions = ByRegion(records)
	report.Governorates = ByGovernorate(records)
	report.TopRegions = TopAreas(report.Regions, "incidents", 5)

	series := make([]float64, len(report.Daily))
	for i, b := range report.Daily {
		series[i] = float64(b.Incidents)
	}
	report.Trend = LinearTrend(series)
	report.Seasonality = DetectSeasonality(series, e.cfg.SeasonalLag)
	if report.Seasonality.Present {
		d := Decompose(series, report.Seasonality.Period)
		report.Decomposition = &d
	}
	report.Forecast = ForecastLinear(series, e.cfg.SeasonalLag)
	report.ForecastEWMA = ForecastEWMA(series, e.cfg.SeasonalLag, e.cfg.SmoothingAlpha)
	report.ChangePoints = ChangePoints(series, e.cfg.ChangePointZ)

	return report
}
