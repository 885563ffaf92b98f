package stats

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsistencyEvenClicks(t *testing.T) {
	ts := []int64{0, 1000, 2000, 3000}
	assert.Equal(t, 100, Consistency(ts))
	assert.InDelta(t, 1000.0, AverageInterval(ts), 1e-9)
}

func TestConsistencyKnownValues(t *testing.T) {
	cases := []struct {
		name string
		ts   []int64
		want int
	}{
		// intervals 100,200,300: mean 200, sample sd 100, cv 0.5
		{name: "cv half", ts: []int64{0, 100, 300, 600}, want: 66},
		// intervals 1000,2000: mean 1500, sample sd 707.1, cv 0.4714
		{name: "two intervals", ts: []int64{0, 1000, 3000}, want: 67},
		{name: "shifted epoch", ts: []int64{1708523400000, 1708523400100, 1708523400300, 1708523400600}, want: 66},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Consistency(tc.ts))
		})
	}
}

func TestConsistencyDegenerateInputs(t *testing.T) {
	assert.Equal(t, 0, Consistency(nil))
	assert.Equal(t, 0, Consistency([]int64{}))
	assert.Equal(t, 0, Consistency([]int64{42}))
	assert.Equal(t, 0, Consistency([]int64{0, 500}), "single interval has no sample variance")
	assert.Equal(t, 0, Consistency([]int64{7, 7, 7, 7}), "zero span")
}

func TestAverageIntervalDegenerateInputs(t *testing.T) {
	assert.Zero(t, AverageInterval(nil))
	assert.Zero(t, AverageInterval([]int64{42}))
	assert.InDelta(t, 500.0, AverageInterval([]int64{0, 500}), 1e-9)
	assert.Zero(t, AverageInterval([]int64{7, 7, 7}))
}

func TestStatisticsIgnoreInputOrder(t *testing.T) {
	ordered := []int64{0, 120, 250, 900, 1000, 1750}
	shuffled := []int64{900, 0, 1750, 250, 1000, 120}
	before := append([]int64(nil), shuffled...)

	assert.Equal(t, Consistency(ordered), Consistency(shuffled))
	assert.InDelta(t, AverageInterval(ordered), AverageInterval(shuffled), 1e-9)
	assert.Equal(t, before, shuffled, "input must not be reordered")
}

func TestAverageIntervalMatchesMeanOfDifferences(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		n := 2 + rnd.Intn(40)
		ts := make([]int64, n)
		for j := range ts {
			ts[j] = rnd.Int63n(1_000_000)
		}
		intervals := Intervals(ts)
		require.Len(t, intervals, n-1)
		var sum float64
		for _, d := range intervals {
			assert.GreaterOrEqual(t, d, 0.0)
			sum += d
		}
		assert.InDelta(t, sum/float64(n-1), AverageInterval(ts), 1e-6)
	}
}

func TestConsistencyStaysInRange(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		n := 3 + rnd.Intn(60)
		ts := make([]int64, n)
		var cur int64
		for j := range ts {
			cur += 1 + rnd.Int63n(5000)
			ts[j] = cur
		}
		score := Consistency(ts)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}

func TestIntervalsShortInput(t *testing.T) {
	assert.Nil(t, Intervals([]int64{1}))
	assert.Equal(t, []float64{5, 10}, Intervals([]int64{15, 0, 5}))
}
