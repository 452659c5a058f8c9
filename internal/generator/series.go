package generator

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/markcheno/go-talib"
	"github.com/skalibog/fundarb/pkg/models"
)

const (
	SeriesLength = 24

	// DefaultJitterAmplitude амплитуда шума рядов лонга и шорта
	DefaultJitterAmplitude = 0.0001

	// baselineSpread разница между рядами, когда пара не выбрана
	baselineSpread = 0.001

	seriesRateMin   = -0.001
	seriesRateMax   = 0.001
	seriesVolumeMin = 500.0
	seriesVolumeMax = 1500.0

	smaPeriod = 6

	jitterStream = 0x5851f42d4c957f2d
)

// Series создает 24 часовые точки "0:00".."23:00"
func (g *Generator) Series() []models.ChartPoint {
	points := make([]models.ChartPoint, SeriesLength)
	for i := range points {
		points[i] = models.ChartPoint{
			Time:   fmt.Sprintf("%d:00", i),
			Rate:   g.uniform(seriesRateMin, seriesRateMax),
			Volume: g.uniform(seriesVolumeMin, seriesVolumeMax),
		}
	}
	return points
}

// JitterSeries строит ряды лонга и шорта выбранной пары, добавляя к статичным
// ставкам независимый шум в [-amplitude, amplitude). Спред считается по
// зашумленным значениям, которые и показываются.
func JitterSeries(base []models.ChartPoint, longRate, shortRate, amplitude float64, rng *rand.Rand) []models.AugmentedPoint {
	out := make([]models.AugmentedPoint, len(base))
	for i, p := range base {
		long := longRate + noise(rng, amplitude)
		short := shortRate + noise(rng, amplitude)
		out[i] = models.AugmentedPoint{
			ChartPoint:      p,
			LongRate:        long,
			ShortRate:       short,
			ArbitrageProfit: math.Abs(short - long),
		}
	}
	return out
}

// BaselineSeries ряды для графика без выбранной пары
func BaselineSeries(base []models.ChartPoint) []models.AugmentedPoint {
	out := make([]models.AugmentedPoint, len(base))
	for i, p := range base {
		out[i] = models.AugmentedPoint{
			ChartPoint:      p,
			LongRate:        p.Rate,
			ShortRate:       p.Rate + baselineSpread,
			ArbitrageProfit: baselineSpread,
		}
	}
	return out
}

// NewJitterRand источник шума графиков для сида генератора.
// Поток не пересекается с потоком NewSeeded, поэтому графики не сдвигают наборы.
func NewJitterRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed^jitterStream, seed))
}

func noise(rng *rand.Rand, amplitude float64) float64 {
	if amplitude <= 0 {
		return 0
	}
	return rng.Float64()*2*amplitude - amplitude
}

// SeriesSummary статистика ряда для подвала графика
type SeriesSummary struct {
	Avg float64
	Max float64
	Min float64
	// SMA скользящее среднее без начального окна прогрева
	SMA []float64
}

// Summarize считает среднее, максимум, минимум и скользящее среднее ряда
func Summarize(values []float64) SeriesSummary {
	n := len(values)
	if n == 0 {
		return SeriesSummary{}
	}
	// talib.Max/Min требуют период не меньше 2
	if n == 1 {
		return SeriesSummary{Avg: values[0], Max: values[0], Min: values[0], SMA: []float64{values[0]}}
	}

	period := smaPeriod
	if n < period {
		period = n
	}

	return SeriesSummary{
		Avg: last(talib.Sma(values, n)),
		Max: last(talib.Max(values, n)),
		Min: last(talib.Min(values, n)),
		SMA: talib.Sma(values, period)[period-1:],
	}
}

// Rates извлекает ставки из точек графика
func Rates(points []models.ChartPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Rate
	}
	return out
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
