package models

import (
	"time"
)

// Profitability категория доходности арбитражной пары
type Profitability string

const (
	ProfitabilityHigh   Profitability = "high"
	ProfitabilityMedium Profitability = "medium"
	ProfitabilityLow    Profitability = "low"
)

// Rank возвращает вес категории для сортировки (high=3, medium=2, low=1)
func (p Profitability) Rank() int {
	switch p {
	case ProfitabilityHigh:
		return 3
	case ProfitabilityMedium:
		return 2
	case ProfitabilityLow:
		return 1
	default:
		return 0
	}
}

// Trend направление изменения спреда
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// ArbitrageOpportunity представляет арбитражную пару: лонг на одной бирже, шорт на другой
type ArbitrageOpportunity struct {
	ID               string
	Symbol           string
	LongExchange     string
	ShortExchange    string
	LongRate         float64
	ShortRate        float64
	ArbitrageProfit  float64
	ProfitPercentage float64
	Profitability    Profitability
	Trend            Trend
	// VolumeMillions объем в миллионах долларов, Volume - его отображение
	VolumeMillions float64
	Volume         string
	NextFunding    string
	Change24h      float64
}

// ChartPoint представляет точку графика ставки финансирования
type ChartPoint struct {
	Time   string
	Rate   float64
	Volume float64
}

// AugmentedPoint точка графика с рядами лонга и шорта выбранной пары
type AugmentedPoint struct {
	ChartPoint
	LongRate        float64
	ShortRate       float64
	ArbitrageProfit float64
}

// Batch представляет один сгенерированный набор возможностей.
// После публикации набор не изменяется.
type Batch struct {
	ID            string
	Seq           uint64
	GeneratedAt   time.Time
	Opportunities []ArbitrageOpportunity
}

// Len возвращает количество возможностей в наборе
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Opportunities)
}

// Find ищет возможность по идентификатору
func (b *Batch) Find(id string) (ArbitrageOpportunity, bool) {
	if b == nil {
		return ArbitrageOpportunity{}, false
	}
	for _, o := range b.Opportunities {
		if o.ID == id {
			return o, true
		}
	}
	return ArbitrageOpportunity{}, false
}

// Stats агрегированная статистика по отфильтрованному списку
type Stats struct {
	TotalOpportunities int
	HighProfitCount    int
	BestCurrentAPY     float64
}
