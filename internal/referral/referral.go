package referral

// Category тип площадки
type Category string

const (
	CategoryCEX     Category = "cex"
	CategoryDEX     Category = "dex"
	CategoryPremium Category = "premium"
)

// Platform рекомендуемая площадка с реферальной ссылкой
type Platform struct {
	Name        string
	URL         string
	Category    Category
	Bonus       string
	Description string
}

// Categories порядок секций
func Categories() []Category {
	return []Category{CategoryCEX, CategoryDEX, CategoryPremium}
}

// Title заголовок секции
func (c Category) Title() string {
	switch c {
	case CategoryCEX:
		return "Централизованные биржи"
	case CategoryDEX:
		return "Децентрализованные биржи"
	case CategoryPremium:
		return "Инструменты"
	default:
		return string(c)
	}
}

// Default каталог площадок по умолчанию
func Default() []Platform {
	return []Platform{
		{"Binance", "https://www.binance.com", CategoryCEX, "скидка 20% на комиссии", "Крупнейшая криптобиржа"},
		{"Bybit", "https://www.bybit.com", CategoryCEX, "бонус $30", "Деривативы и фьючерсы"},
		{"OKX", "https://www.okx.com", CategoryCEX, "скидка 40% на комиссии", "Продвинутая торговля и DeFi"},
		{"Bitget", "https://www.bitget.com", CategoryCEX, "бонус $100", "Копитрейдинг и фьючерсы"},
		{"Gate.io", "https://www.gate.io", CategoryCEX, "скидка 40% на комиссии", "Большой выбор альткоинов"},
		{"KuCoin", "https://www.kucoin.com", CategoryCEX, "скидка 20% на комиссии", "Спот и фьючерсы"},
		{"GMX", "https://gmx.io", CategoryDEX, "скидка на комиссии", "Децентрализованные бессрочные контракты"},
		{"Hyperliquid", "https://hyperliquid.xyz", CategoryDEX, "бонусные очки", "Высокопроизводительная DEX"},
		{"dYdX", "https://dydx.exchange", CategoryDEX, "скидка на комиссии", "Продвинутые деривативы"},
		{"TradingView", "https://www.tradingview.com", CategoryPremium, "30 дней бесплатно", "Профессиональный технический анализ"},
	}
}

// WithOverrides возвращает копию каталога с подмененными ссылками.
// Имена, которых нет в каталоге, игнорируются.
func WithOverrides(platforms []Platform, urls map[string]string) []Platform {
	out := make([]Platform, len(platforms))
	copy(out, platforms)
	for i := range out {
		if url, ok := urls[out[i].Name]; ok && url != "" {
			out[i].URL = url
		}
	}
	return out
}

// ByCategory отбирает площадки одной категории, сохраняя порядок
func ByCategory(platforms []Platform, c Category) []Platform {
	var out []Platform
	for _, p := range platforms {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// Find ищет площадку по имени
func Find(platforms []Platform, name string) (Platform, bool) {
	for _, p := range platforms {
		if p.Name == name {
			return p, true
		}
	}
	return Platform{}, false
}
