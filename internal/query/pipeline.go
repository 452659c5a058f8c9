package query

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/skalibog/fundarb/pkg/models"
)

// FundingEventsPerYear три фандинга в сутки
const FundingEventsPerYear = 365 * 3

// Apply фильтрует и сортирует набор, затем считает статистику по результату.
// Входной срез не изменяется.
func Apply(batch []models.ArbitrageOpportunity, p Params) ([]models.ArbitrageOpportunity, models.Stats) {
	view := Sort(Filter(batch, p), p.SortBy)
	return view, Summarize(view)
}

// Filter возвращает новый срез записей, прошедших все условия
func Filter(batch []models.ArbitrageOpportunity, p Params) []models.ArbitrageOpportunity {
	search := strings.ToLower(p.Search)
	out := make([]models.ArbitrageOpportunity, 0, len(batch))
	for _, o := range batch {
		if matchesSearch(o, search) && matchesProfitability(o, p.Profitability) && matchesExchange(o, p.Exchange) {
			out = append(out, o)
		}
	}
	return out
}

func matchesSearch(o models.ArbitrageOpportunity, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.LongExchange), search) ||
		strings.Contains(strings.ToLower(o.ShortExchange), search) ||
		strings.Contains(strings.ToLower(o.Symbol), search)
}

func matchesProfitability(o models.ArbitrageOpportunity, f ProfitabilityFilter) bool {
	if !f.valid() || f == ProfitabilityAll {
		return true
	}
	return string(o.Profitability) == string(f)
}

func matchesExchange(o models.ArbitrageOpportunity, exchange string) bool {
	if exchange == "" || exchange == ExchangeAny {
		return true
	}
	return o.LongExchange == exchange || o.ShortExchange == exchange
}

// Sort возвращает отсортированную по убыванию копию.
// Сортировка стабильная, неизвестный ключ сохраняет исходный порядок.
func Sort(list []models.ArbitrageOpportunity, key SortKey) []models.ArbitrageOpportunity {
	out := slices.Clone(list)

	var compare func(a, b models.ArbitrageOpportunity) int
	switch key {
	case SortProfitability:
		compare = func(a, b models.ArbitrageOpportunity) int {
			if c := cmp.Compare(b.Profitability.Rank(), a.Profitability.Rank()); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		}
	case SortRate:
		compare = func(a, b models.ArbitrageOpportunity) int {
			return cmp.Compare(b.ArbitrageProfit, a.ArbitrageProfit)
		}
	case SortVolume:
		compare = func(a, b models.ArbitrageOpportunity) int {
			return cmp.Compare(b.VolumeMillions, a.VolumeMillions)
		}
	case SortChange:
		compare = func(a, b models.ArbitrageOpportunity) int {
			return cmp.Compare(math.Abs(b.Change24h), math.Abs(a.Change24h))
		}
	default:
		return out
	}

	slices.SortStableFunc(out, compare)
	return out
}

// Summarize считает статистику списка. Для пустого списка лучший APY равен 0
func Summarize(list []models.ArbitrageOpportunity) models.Stats {
	stats := models.Stats{TotalOpportunities: len(list)}
	if len(list) == 0 {
		return stats
	}

	best := 0.0
	for _, o := range list {
		if o.Profitability == models.ProfitabilityHigh {
			stats.HighProfitCount++
		}
		best = math.Max(best, o.ArbitrageProfit)
	}
	stats.BestCurrentAPY = APY(best)
	return stats
}

// APY годовая доходность спреда в процентах
func APY(spread float64) float64 {
	return spread * FundingEventsPerYear * 100
}
