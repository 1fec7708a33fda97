package analysis

import (
	"math"
)

// Trend is a fitted linear trend over (index, value) pairs
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
	Direction string  `json:"direction"` // increasing, decreasing, stable
	Strength  string  `json:"strength"`  // strong, moderate, weak
}

// slopeEpsilon separates a real trend from noise around flat
const slopeEpsilon = 0.01

// LinearTrend fits ordinary least squares on (index, value) pairs
func LinearTrend(values []float64) Trend {
	data := CleanSeries(values)
	n := len(data)
	if n < 2 {
		return Trend{Direction: "stable", Strength: "weak"}
	}

	var sumX, sumY float64
	for i, v := range data {
		sumX += float64(i)
		sumY += v
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var ssXY, ssXX float64
	for i, v := range data {
		dx := float64(i) - meanX
		ssXY += dx * (v - meanY)
		ssXX += dx * dx
	}

	slope := ssXY / ssXX
	intercept := meanY - slope*meanX

	var ssRes, ssTot float64
	for i, v := range data {
		fit := intercept + slope*float64(i)
		ssRes += (v - fit) * (v - fit)
		ssTot += (v - meanY) * (v - meanY)
	}

	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	direction := "stable"
	if slope > slopeEpsilon {
		direction = "increasing"
	} else if slope < -slopeEpsilon {
		direction = "decreasing"
	}

	strength := "weak"
	if r2 > 0.7 {
		strength = "strong"
	} else if r2 > 0.4 {
		strength = "moderate"
	}

	return Trend{
		Slope:     slope,
		Intercept: intercept,
		R2:        r2,
		Direction: direction,
		Strength:  strength,
	}
}

// Autocorrelation computes the autocorrelation coefficient at the given lag
func Autocorrelation(values []float64, lag int) float64 {
	data := CleanSeries(values)
	n := len(data)
	if lag <= 0 || n <= lag {
		return 0
	}

	mean, _ := populationMoments(data)

	var num, den float64
	for i := 0; i < n; i++ {
		den += (data[i] - mean) * (data[i] - mean)
	}
	if den == 0 {
		return 0
	}
	for i := 0; i < n-lag; i++ {
		num += (data[i] - mean) * (data[i+lag] - mean)
	}
	return num / den
}

// Seasonality is the result of autocorrelation-based season detection
type Seasonality struct {
	Present         bool    `json:"present"`
	Period          int     `json:"period"`
	Autocorrelation float64 `json:"autocorrelation"`
}

// seasonalityCutoff is the |autocorrelation| above which a season is declared
const seasonalityCutoff = 0.3

// DetectSeasonality tests a candidate lag; the lag is reported as the period
// when the correlation clears the cutoff
func DetectSeasonality(values []float64, lag int) Seasonality {
	ac := Autocorrelation(values, lag)
	s := Seasonality{Autocorrelation: ac}
	if math.Abs(ac) > seasonalityCutoff {
		s.Present = true
		s.Period = lag
	}
	return s
}

// Decomposition splits a series into trend, seasonal and residual parts
type Decomposition struct {
	Trend    []float64 `json:"trend"`
	Seasonal []float64 `json:"seasonal"`
	Residual []float64 `json:"residual"`
}

// Decompose performs a moving-average decomposition: trend is a sliding
// average with window = period, seasonal is the average detrended residual
// at each position modulo the period tiled across the series, residual is
// what remains
func Decompose(values []float64, period int) Decomposition {
	data := CleanSeries(values)
	n := len(data)
	if n == 0 || period <= 0 {
		return Decomposition{}
	}

	trend := movingAverage(data, period)

	sums := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		detrended := data[i] - trend[i]
		sums[i%period] += detrended
		counts[i%period]++
	}

	pattern := make([]float64, period)
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] = sums[i] / float64(counts[i])
		}
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = pattern[i%period]
		residual[i] = data[i] - trend[i] - seasonal[i]
	}

	return Decomposition{Trend: trend, Seasonal: seasonal, Residual: residual}
}

// movingAverage computes a centered sliding average, clipping the window at
// the series edges
func movingAverage(data []float64, window int) []float64 {
	n := len(data)
	out := make([]float64, n)
	half := window / 2

	for i := 0; i < n; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > n-1 {
			hi = n - 1
		}

		var sum float64
		for j := lo; j <= hi; j++ {
			sum += data[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// Forecast is a projection of future values
type Forecast struct {
	Values     []float64 `json:"values"`
	Confidence float64   `json:"confidence"`
	Method     string    `json:"method"`
}

// ForecastLinear extrapolates the fitted trend, clamped to non-negative.
// Confidence is the fit's R².
func ForecastLinear(values []float64, periods int) Forecast {
	data := CleanSeries(values)
	trend := LinearTrend(data)

	out := make([]float64, 0, periods)
	for i := 0; i < periods; i++ {
		v := trend.Intercept + trend.Slope*float64(len(data)+i)
		if v < 0 {
			v = 0
		}
		out = append(out, v)
	}
	return Forecast{Values: out, Confidence: trend.R2, Method: "linear"}
}

// DefaultSmoothingAlpha is the exponential smoothing factor used when none
// is configured
const DefaultSmoothingAlpha = 0.3

// ForecastEWMA holds the last exponential moving average constant for all
// future periods
func ForecastEWMA(values []float64, periods int, alpha float64) Forecast {
	data := CleanSeries(values)
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultSmoothingAlpha
	}
	if len(data) == 0 {
		return Forecast{Values: make([]float64, periods), Method: "exponential_smoothing"}
	}

	ema := data[0]
	for _, v := range data[1:] {
		ema = alpha*v + (1-alpha)*ema
	}
	if ema < 0 {
		ema = 0
	}

	out := make([]float64, periods)
	for i := range out {
		out[i] = ema
	}
	return Forecast{Values: out, Confidence: 0.5, Method: "exponential_smoothing"}
}

// ChangePoint flags a sharp deviation in a series
type ChangePoint struct {
	Index  int     `json:"index"`
	Value  float64 `json:"value"`
	ZScore float64 `json:"z_score"`
	Type   string  `json:"type"` // spike or drop
}

// ChangePoints flags index i when the value's |z| exceeds the threshold and
// the jump from a neighboring value exceeds one standard deviation
func ChangePoints(values []float64, zThreshold float64) []ChangePoint {
	data := CleanSeries(values)
	n := len(data)
	if n < 2 {
		return nil
	}
	if zThreshold <= 0 {
		zThreshold = 2
	}

	mean, stdDev := populationMoments(data)
	if stdDev == 0 {
		return nil
	}

	var points []ChangePoint
	for i := 0; i < n; i++ {
		z := (data[i] - mean) / stdDev
		if math.Abs(z) <= zThreshold {
			continue
		}

		neighbor := i - 1
		if neighbor < 0 {
			neighbor = 1
		}
		if math.Abs(data[i]-data[neighbor]) <= stdDev {
			continue
		}

		kind := "spike"
		if data[i] < mean {
			kind = "drop"
		}
		points = append(points, ChangePoint{Index: i, Value: data[i], ZScore: z, Type: kind})
	}
	return points
}
