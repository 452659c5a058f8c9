// internal/generator/generator.go
package generator

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/skalibog/fundarb/pkg/models"
)

// Пороги классификации спреда. Фиксированная политика, не настраиваются
const (
	HighProfitThreshold   = 0.0015
	MediumProfitThreshold = 0.0008
	TrendUpThreshold      = 0.001

	DefaultBatchSize = 12
)

// Диапазоны синтетических данных
const (
	baseRateMin = -0.0015
	baseRateMax = 0.0015
	spreadMin   = 0.0005
	spreadMax   = 0.0025
	volumeMin   = 100.0
	volumeMax   = 1100.0
	changeMin   = -20.0
	changeMax   = 20.0
)

// Exchanges каталог бирж
var Exchanges = []string{
	"Binance", "Bybit", "OKX", "Bitget", "Gate.io", "Huobi", "GMX",
	"Hyperliquid", "Aevo", "dYdX", "Kraken", "BitMEX", "KuCoin", "Extended",
}

// Symbols каталог торговых пар
var Symbols = []string{"BTC-USDT", "ETH-USDT", "SOL-USDT", "AVAX-USDT", "ARB-USDT", "OP-USDT"}

// Generator создает синтетические арбитражные возможности.
// Не потокобезопасен: вызывающий сериализует доступ.
type Generator struct {
	rng       *rand.Rand
	batchSize int
}

// New создает генератор с заданным источником случайности
func New(rng *rand.Rand, batchSize int) *Generator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Generator{rng: rng, batchSize: batchSize}
}

// NewSeeded создает генератор с воспроизводимым PCG-источником
func NewSeeded(seed uint64, batchSize int) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), batchSize)
}

// BatchSize возвращает размер набора
func (g *Generator) BatchSize() int {
	return g.batchSize
}

// Generate создает новый набор возможностей
func (g *Generator) Generate() []models.ArbitrageOpportunity {
	out := make([]models.ArbitrageOpportunity, 0, g.batchSize)
	for i := 0; i < g.batchSize; i++ {
		out = append(out, g.opportunity(i))
	}
	return out
}

func (g *Generator) opportunity(i int) models.ArbitrageOpportunity {
	symbol := Symbols[g.rng.IntN(len(Symbols))]

	// Перестановка каталога гарантирует разные биржи без повторных попыток
	perm := g.rng.Perm(len(Exchanges))
	longExchange := Exchanges[perm[0]]
	shortExchange := Exchanges[perm[1]]

	baseRate := g.uniform(baseRateMin, baseRateMax)
	spread := g.uniform(spreadMin, spreadMax)

	longRate := baseRate
	shortRate := baseRate + spread
	profit := math.Abs(shortRate - longRate)

	volume := g.uniform(volumeMin, volumeMax)
	hours := g.rng.IntN(8) + 1
	minutes := g.rng.IntN(60)

	return models.ArbitrageOpportunity{
		ID:               fmt.Sprintf("%s-%s-%s-%d", longExchange, shortExchange, symbol, i),
		Symbol:           symbol,
		LongExchange:     longExchange,
		ShortExchange:    shortExchange,
		LongRate:         longRate,
		ShortRate:        shortRate,
		ArbitrageProfit:  profit,
		ProfitPercentage: profit * 100,
		Profitability:    Classify(profit),
		Trend:            TrendOf(profit),
		VolumeMillions:   volume,
		Volume:           models.FormatVolume(volume),
		NextFunding:      models.FormatNextFunding(hours, minutes),
		Change24h:        g.uniform(changeMin, changeMax),
	}
}

// Classify определяет категорию доходности по спреду
func Classify(profit float64) models.Profitability {
	switch {
	case profit > HighProfitThreshold:
		return models.ProfitabilityHigh
	case profit > MediumProfitThreshold:
		return models.ProfitabilityMedium
	default:
		return models.ProfitabilityLow
	}
}

// TrendOf определяет тренд по спреду
func TrendOf(profit float64) models.Trend {
	if profit > TrendUpThreshold {
		return models.TrendUp
	}
	return models.TrendNeutral
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
