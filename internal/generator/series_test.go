package generator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/skalibog/fundarb/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries(t *testing.T) {
	points := NewSeeded(3, 0).Series()
	require.Len(t, points, SeriesLength)

	for i, p := range points {
		assert.Equal(t, fmt.Sprintf("%d:00", i), p.Time)
		assert.GreaterOrEqual(t, p.Rate, seriesRateMin)
		assert.Less(t, p.Rate, seriesRateMax)
		assert.GreaterOrEqual(t, p.Volume, seriesVolumeMin)
		assert.Less(t, p.Volume, seriesVolumeMax)
	}
}

func TestJitterSeries(t *testing.T) {
	base := NewSeeded(3, 0).Series()
	rng := rand.New(rand.NewPCG(11, 12))
	longRate, shortRate := 0.0002, 0.0019

	out := JitterSeries(base, longRate, shortRate, DefaultJitterAmplitude, rng)
	require.Len(t, out, len(base))

	for i, p := range out {
		assert.Equal(t, base[i], p.ChartPoint)
		assert.InDelta(t, longRate, p.LongRate, DefaultJitterAmplitude)
		assert.InDelta(t, shortRate, p.ShortRate, DefaultJitterAmplitude)
		assert.InDelta(t, math.Abs(p.ShortRate-p.LongRate), p.ArbitrageProfit, 1e-15)
	}
}

func TestNewJitterRandReproducible(t *testing.T) {
	base := NewSeeded(5, 0).Series()

	a := JitterSeries(base, 0.0002, 0.0019, DefaultJitterAmplitude, NewJitterRand(42))
	b := JitterSeries(base, 0.0002, 0.0019, DefaultJitterAmplitude, NewJitterRand(42))
	c := JitterSeries(base, 0.0002, 0.0019, DefaultJitterAmplitude, NewJitterRand(43))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestJitterSeriesZeroAmplitude(t *testing.T) {
	base := []models.ChartPoint{{Time: "0:00"}, {Time: "1:00"}}
	out := JitterSeries(base, 0.001, 0.002, 0, rand.New(rand.NewPCG(1, 1)))

	for _, p := range out {
		assert.Equal(t, 0.001, p.LongRate)
		assert.Equal(t, 0.002, p.ShortRate)
		assert.InDelta(t, 0.001, p.ArbitrageProfit, 1e-15)
	}
}

func TestBaselineSeries(t *testing.T) {
	base := []models.ChartPoint{{Time: "0:00", Rate: -0.0004}, {Time: "1:00", Rate: 0.0007}}
	out := BaselineSeries(base)

	require.Len(t, out, 2)
	assert.Equal(t, -0.0004, out[0].LongRate)
	assert.InDelta(t, 0.0006, out[0].ShortRate, 1e-15)
	assert.Equal(t, baselineSpread, out[1].ArbitrageProfit)
}

func TestSummarize(t *testing.T) {
	values := []float64{0.001, -0.002, 0.0005, 0.0015, -0.0005, 0.0, 0.0008}
	s := Summarize(values)

	assert.InDelta(t, 0.0003285714, s.Avg, 1e-9)
	assert.InDelta(t, 0.0015, s.Max, 1e-15)
	assert.InDelta(t, -0.002, s.Min, 1e-15)
	require.Len(t, s.SMA, len(values)-smaPeriod+1)
	assert.InDelta(t, (0.001-0.002+0.0005+0.0015-0.0005+0.0)/6, s.SMA[0], 1e-12)
	assert.InDelta(t, (-0.002+0.0005+0.0015-0.0005+0.0+0.0008)/6, s.SMA[1], 1e-12)
}

func TestSummarizeEdgeCases(t *testing.T) {
	assert.Equal(t, SeriesSummary{}, Summarize(nil))

	one := Summarize([]float64{0.0042})
	assert.Equal(t, 0.0042, one.Avg)
	assert.Equal(t, 0.0042, one.Max)
	assert.Equal(t, 0.0042, one.Min)

	short := Summarize([]float64{1, 3, 2})
	assert.InDelta(t, 2.0, short.Avg, 1e-12)
	assert.Equal(t, 3.0, short.Max)
	assert.Equal(t, 1.0, short.Min)
	require.Len(t, short.SMA, 1)
	assert.InDelta(t, 2.0, short.SMA[0], 1e-12)
}

func TestRates(t *testing.T) {
	points := []models.ChartPoint{{Rate: 1}, {Rate: 2}}
	assert.Equal(t, []float64{1, 2}, Rates(points))
}
