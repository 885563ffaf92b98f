package stats

import (
	"math"
	"slices"
)

// Intervals returns the consecutive differences of the timestamps after sorting.
// The input slice is not modified.
func Intervals(timestamps []int64) []float64 {
	if len(timestamps) < 2 {
		return nil
	}
	sorted := sortedCopy(timestamps)
	out := make([]float64, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		out[i-1] = float64(sorted[i] - sorted[i-1])
	}
	return out
}

// Consistency scores how regular the click intervals are, from 0 to 100.
//
// The mean used for the coefficient of variation is the span divided by the
// interval count, and the variance uses the sample divisor (intervals - 1).
// Fewer than three timestamps, or a zero span, score 0.
func Consistency(timestamps []int64) int {
	n := len(timestamps)
	if n < 2 {
		return 0
	}
	sorted := sortedCopy(timestamps)
	numIntervals := n - 1
	if numIntervals < 2 {
		return 0
	}
	span := float64(sorted[n-1] - sorted[0])
	meanInterval := span / float64(numIntervals)
	if meanInterval <= 0 {
		return 0
	}

	var sumSqDiff float64
	for i := 1; i < n; i++ {
		d := float64(sorted[i]-sorted[i-1]) - meanInterval
		sumSqDiff += d * d
	}
	variance := sumSqDiff / float64(numIntervals-1)
	cv := math.Sqrt(variance) / meanInterval
	if math.IsNaN(cv) || math.IsInf(cv, 0) {
		return 0
	}
	score := int(math.Floor(100 / (1 + cv)))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// AverageInterval returns the arithmetic mean of the sorted consecutive
// differences in milliseconds, or 0 for fewer than two timestamps.
func AverageInterval(timestamps []int64) float64 {
	intervals := Intervals(timestamps)
	if len(intervals) == 0 {
		return 0
	}
	var sum float64
	for _, d := range intervals {
		sum += d
	}
	return sum / float64(len(intervals))
}

func sortedCopy(values []int64) []int64 {
	out := make([]int64, len(values))
	copy(out, values)
	slices.Sort(out)
	return out
}
