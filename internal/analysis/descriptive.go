package analysis

import (
	"errors"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// ErrEmptySeries is returned when no numeric values survive cleaning
var ErrEmptySeries = errors.New("empty numeric series")

// Summary holds descriptive statistics of one numeric series
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Mode     float64 `json:"mode"`
	Variance float64 `json:"variance"` // population (divide by N)
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q1       float64 `json:"q1"`
	Q2       float64 `json:"q2"`
	Q3       float64 `json:"q3"`
	IQR      float64 `json:"iqr"`
}

// CleanSeries drops NaN and infinite entries, keeping order
func CleanSeries(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Describe computes the full descriptive summary of a series.
// Non-numeric entries (NaN/Inf) are ignored.
func Describe(values []float64) (*Summary, error) {
	data := CleanSeries(values)
	if len(data) == 0 {
		return nil, ErrEmptySeries
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, err
	}
	variance, err := stats.PopulationVariance(data)
	if err != nil {
		return nil, err
	}
	stdDev, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return nil, err
	}
	minV, err := stats.Min(data)
	if err != nil {
		return nil, err
	}
	maxV, err := stats.Max(data)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Count:    len(data),
		Mean:     mean,
		Median:   median,
		Mode:     firstSeenMode(data),
		Variance: variance,
		StdDev:   stdDev,
		Min:      minV,
		Max:      maxV,
	}

	// Quartiles need at least two points to split around the median
	if len(data) >= 2 {
		quart, err := stats.Quartile(data)
		if err != nil {
			return nil, err
		}
		iqr, err := stats.InterQuartileRange(data)
		if err != nil {
			return nil, err
		}
		summary.Q1 = quart.Q1
		summary.Q2 = quart.Q2
		summary.Q3 = quart.Q3
		summary.IQR = iqr
	} else {
		summary.Q1 = data[0]
		summary.Q2 = data[0]
		summary.Q3 = data[0]
	}

	return summary, nil
}

// firstSeenMode returns the value with the highest frequency; ties resolve
// to the value seen first in the input. The library mode returns all modes
// sorted, which loses the first-seen order.
func firstSeenMode(data []float64) float64 {
	counts := make(map[float64]int, len(data))
	for _, v := range data {
		counts[v]++
	}

	best := data[0]
	bestCount := 0
	for _, v := range data {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

// Percentile computes the p-th percentile (0..100) by linear interpolation
// between adjacent order statistics
func Percentile(values []float64, p float64) (float64, error) {
	data := CleanSeries(values)
	if len(data) == 0 {
		return 0, ErrEmptySeries
	}
	if p < 0 || p > 100 {
		return 0, errors.New("percentile out of range")
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower], nil
	}

	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower]), nil
}

// OutliersIQR returns values outside [Q1 - mult*IQR, Q3 + mult*IQR]
func OutliersIQR(values []float64, multiplier float64) []float64 {
	data := CleanSeries(values)
	if len(data) < 4 {
		return nil
	}

	quart, err := stats.Quartile(data)
	if err != nil {
		return nil
	}
	iqr := quart.Q3 - quart.Q1
	low := quart.Q1 - multiplier*iqr
	high := quart.Q3 + multiplier*iqr

	var outliers []float64
	for _, v := range data {
		if v < low || v > high {
			outliers = append(outliers, v)
		}
	}
	return outliers
}

// OutliersZScore returns values whose |z| exceeds the threshold using
// population mean and standard deviation
func OutliersZScore(values []float64, threshold float64) []float64 {
	data := CleanSeries(values)
	if len(data) == 0 {
		return nil
	}

	mean, stdDev := populationMoments(data)
	if stdDev == 0 {
		return nil
	}

	var outliers []float64
	for _, v := range data {
		if math.Abs((v-mean)/stdDev) > threshold {
			outliers = append(outliers, v)
		}
	}
	return outliers
}

// populationMoments computes mean and population standard deviation
func populationMoments(data []float64) (mean, stdDev float64) {
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	var ss float64
	for _, v := range data {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(data)))
}
