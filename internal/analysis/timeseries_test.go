package analysis

import (
	"math"
	"testing"
)

func TestLinearTrend(t *testing.T) {
	trend := LinearTrend([]float64{1, 2, 3, 4, 5, 6, 7})

	if !almostEqual(trend.Slope, 1) {
		t.Errorf("slope = %v, want 1", trend.Slope)
	}
	if !almostEqual(trend.Intercept, 1) {
		t.Errorf("intercept = %v, want 1", trend.Intercept)
	}
	if !almostEqual(trend.R2, 1) {
		t.Errorf("r2 = %v, want 1", trend.R2)
	}
	if trend.Direction != "increasing" {
		t.Errorf("direction = %s", trend.Direction)
	}
	if trend.Strength != "strong" {
		t.Errorf("strength = %s", trend.Strength)
	}
}

func TestLinearTrend_Decreasing(t *testing.T) {
	trend := LinearTrend([]float64{10, 8, 6, 4, 2})
	if trend.Direction != "decreasing" {
		t.Errorf("direction = %s", trend.Direction)
	}
	if !almostEqual(trend.Slope, -2) {
		t.Errorf("slope = %v", trend.Slope)
	}
}

func TestLinearTrend_Flat(t *testing.T) {
	trend := LinearTrend([]float64{5, 5, 5, 5, 5})
	if trend.Direction != "stable" {
		t.Errorf("direction = %s", trend.Direction)
	}
	if trend.Strength != "weak" {
		t.Errorf("strength = %s, constant series carries no fit", trend.Strength)
	}
}

func TestLinearTrend_TooShort(t *testing.T) {
	trend := LinearTrend([]float64{3})
	if trend.Direction != "stable" || trend.Strength != "weak" {
		t.Errorf("single point trend = %+v", trend)
	}
}

func TestAutocorrelation(t *testing.T) {
	periodic := []float64{0, 10, 0, 10, 0, 10, 0, 10}

	// At the true period the series correlates with itself: (n-lag)/n * 1
	if got := Autocorrelation(periodic, 2); !almostEqual(got, 0.75) {
		t.Errorf("lag 2 = %v, want 0.75", got)
	}
	// At half the period it anti-correlates
	if got := Autocorrelation(periodic, 1); got >= 0 {
		t.Errorf("lag 1 = %v, want negative", got)
	}

	if got := Autocorrelation(periodic, 0); got != 0 {
		t.Errorf("lag 0 = %v, want 0", got)
	}
	if got := Autocorrelation(periodic, len(periodic)); got != 0 {
		t.Errorf("lag >= n = %v, want 0", got)
	}
	if got := Autocorrelation([]float64{4, 4, 4, 4}, 2); got != 0 {
		t.Errorf("constant series = %v, want 0", got)
	}
}

func TestDetectSeasonality(t *testing.T) {
	periodic := []float64{0, 10, 0, 10, 0, 10, 0, 10}

	s := DetectSeasonality(periodic, 2)
	if !s.Present {
		t.Fatal("expected a season at the true lag")
	}
	if s.Period != 2 {
		t.Errorf("period = %d", s.Period)
	}

	flat := DetectSeasonality([]float64{4, 4, 4, 4, 4, 4}, 2)
	if flat.Present {
		t.Errorf("constant series reported a season: %+v", flat)
	}
	if flat.Period != 0 {
		t.Errorf("absent season must carry period 0, got %d", flat.Period)
	}
}

func TestDecompose(t *testing.T) {
	values := []float64{1, 3, 1, 3, 1, 3, 1, 3}
	d := Decompose(values, 2)

	if len(d.Trend) != len(values) || len(d.Seasonal) != len(values) || len(d.Residual) != len(values) {
		t.Fatalf("component lengths %d/%d/%d, want %d",
			len(d.Trend), len(d.Seasonal), len(d.Residual), len(values))
	}

	// The three components must reassemble the original series exactly
	for i, v := range values {
		if sum := d.Trend[i] + d.Seasonal[i] + d.Residual[i]; !almostEqual(sum, v) {
			t.Errorf("index %d: %v + %v + %v != %v", i, d.Trend[i], d.Seasonal[i], d.Residual[i], v)
		}
	}

	// The seasonal component repeats with the declared period
	for i := 0; i+2 < len(values); i++ {
		if d.Seasonal[i] != d.Seasonal[i+2] {
			t.Errorf("seasonal not periodic at %d: %v vs %v", i, d.Seasonal[i], d.Seasonal[i+2])
		}
	}
}

func TestDecompose_DegenerateInput(t *testing.T) {
	if d := Decompose(nil, 2); d.Trend != nil {
		t.Errorf("empty series: %+v", d)
	}
	if d := Decompose([]float64{1, 2}, 0); d.Trend != nil {
		t.Errorf("zero period: %+v", d)
	}
}

func TestForecastLinear(t *testing.T) {
	f := ForecastLinear([]float64{1, 2, 3, 4, 5}, 3)

	if f.Method != "linear" {
		t.Errorf("method = %s", f.Method)
	}
	if len(f.Values) != 3 {
		t.Fatalf("len = %d", len(f.Values))
	}
	want := []float64{6, 7, 8}
	for i, v := range f.Values {
		if !almostEqual(v, want[i]) {
			t.Errorf("value %d = %v, want %v", i, v, want[i])
		}
	}
	if !almostEqual(f.Confidence, 1) {
		t.Errorf("confidence = %v", f.Confidence)
	}
}

func TestForecastLinear_ClampedNonNegative(t *testing.T) {
	// Slope -2 crosses zero on the first projected step
	f := ForecastLinear([]float64{10, 8, 6, 4, 2}, 4)
	for i, v := range f.Values {
		if v < 0 {
			t.Errorf("value %d = %v, forecasts must not go negative", i, v)
		}
	}
	if f.Values[3] != 0 {
		t.Errorf("deep projection = %v, want clamped 0", f.Values[3])
	}
}

func TestForecastEWMA(t *testing.T) {
	f := ForecastEWMA([]float64{4, 4, 4, 4}, 3, 0.3)

	if f.Method != "exponential_smoothing" {
		t.Errorf("method = %s", f.Method)
	}
	for i, v := range f.Values {
		if !almostEqual(v, 4) {
			t.Errorf("value %d = %v, constant series must forecast itself", i, v)
		}
	}

	empty := ForecastEWMA(nil, 2, 0.3)
	if len(empty.Values) != 2 || empty.Values[0] != 0 || empty.Values[1] != 0 {
		t.Errorf("empty series forecast = %v", empty.Values)
	}

	// Out-of-range alpha falls back to the default instead of exploding
	fallback := ForecastEWMA([]float64{1, 2, 3}, 1, 7)
	if len(fallback.Values) != 1 || math.IsNaN(fallback.Values[0]) {
		t.Errorf("alpha fallback forecast = %v", fallback.Values)
	}
}

func TestChangePoints(t *testing.T) {
	base := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 100}

	points := ChangePoints(base, 2)
	if len(points) != 1 {
		t.Fatalf("points = %+v, want exactly the spike", points)
	}
	if points[0].Index != 9 || points[0].Type != "spike" {
		t.Errorf("point = %+v", points[0])
	}
	if points[0].ZScore <= 2 {
		t.Errorf("z = %v, should clear the threshold", points[0].ZScore)
	}
}

func TestChangePoints_Drop(t *testing.T) {
	values := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 10}
	points := ChangePoints(values, 2)
	if len(points) != 1 || points[0].Type != "drop" {
		t.Fatalf("points = %+v, want one drop", points)
	}
}

func TestChangePoints_QuietSeries(t *testing.T) {
	if points := ChangePoints([]float64{10, 11, 10, 12, 11, 10}, 2); points != nil {
		t.Errorf("quiet series flagged: %+v", points)
	}
	if points := ChangePoints([]float64{5, 5, 5, 5}, 2); points != nil {
		t.Errorf("constant series flagged: %+v", points)
	}
	if points := ChangePoints([]float64{7}, 2); points != nil {
		t.Errorf("single value flagged: %+v", points)
	}
}
