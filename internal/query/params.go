package query

import (
	"github.com/skalibog/fundarb/pkg/models"
)

// ProfitabilityFilter фильтр по категории доходности
type ProfitabilityFilter string

const (
	ProfitabilityAll    ProfitabilityFilter = "all"
	ProfitabilityHigh                       = ProfitabilityFilter(models.ProfitabilityHigh)
	ProfitabilityMedium                     = ProfitabilityFilter(models.ProfitabilityMedium)
	ProfitabilityLow                        = ProfitabilityFilter(models.ProfitabilityLow)
)

// SortKey ключ сортировки
type SortKey string

const (
	SortProfitability SortKey = "profitability"
	SortRate          SortKey = "rate"
	SortVolume        SortKey = "volume"
	SortChange        SortKey = "change"
)

// ExchangeAny значение фильтра бирж "любая"
const ExchangeAny = "All"

// Params параметры фильтрации и сортировки, выбранные пользователем
type Params struct {
	Search        string
	Profitability ProfitabilityFilter
	Exchange      string
	SortBy        SortKey
}

// DefaultParams начальные параметры дашборда
func DefaultParams() Params {
	return Params{
		Profitability: ProfitabilityAll,
		Exchange:      ExchangeAny,
		SortBy:        SortProfitability,
	}
}

// Normalize заменяет нераспознанные значения фильтров на "без фильтра".
// Неизвестный ключ сортировки сохраняется: он дает исходный порядок.
func (p Params) Normalize(exchanges []string) Params {
	if !p.Profitability.valid() {
		p.Profitability = ProfitabilityAll
	}
	if p.Exchange != ExchangeAny && !contains(exchanges, p.Exchange) {
		p.Exchange = ExchangeAny
	}
	return p
}

func (f ProfitabilityFilter) valid() bool {
	switch f {
	case ProfitabilityAll, ProfitabilityHigh, ProfitabilityMedium, ProfitabilityLow:
		return true
	}
	return false
}

// Option значение для выбора в интерфейсе
type Option[T ~string] struct {
	Value T
	Label string
}

// ProfitabilityOptions варианты фильтра доходности
func ProfitabilityOptions() []Option[ProfitabilityFilter] {
	return []Option[ProfitabilityFilter]{
		{ProfitabilityAll, "Все"},
		{ProfitabilityHigh, "Высокая"},
		{ProfitabilityMedium, "Средняя"},
		{ProfitabilityLow, "Низкая"},
	}
}

// SortOptions варианты сортировки
func SortOptions() []Option[SortKey] {
	return []Option[SortKey]{
		{SortProfitability, "Доходность"},
		{SortRate, "Спред"},
		{SortVolume, "Объем"},
		{SortChange, "Изменение 24ч"},
	}
}

// ExchangeOptions варианты фильтра бирж: "All" и затем каталог
func ExchangeOptions(exchanges []string) []Option[string] {
	out := make([]Option[string], 0, len(exchanges)+1)
	out = append(out, Option[string]{ExchangeAny, "Все биржи"})
	for _, e := range exchanges {
		out = append(out, Option[string]{e, e})
	}
	return out
}

// Next возвращает значение, следующее за current (по кругу).
// Для неизвестного current возвращает первое значение.
func Next[T ~string](options []Option[T], current T) T {
	if len(options) == 0 {
		return current
	}
	for i, o := range options {
		if o.Value == current {
			return options[(i+1)%len(options)].Value
		}
	}
	return options[0].Value
}

// Label возвращает подпись значения или само значение
func Label[T ~string](options []Option[T], value T) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return string(value)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
