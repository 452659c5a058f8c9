package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/skalibog/fundarb/internal/generator"
	"github.com/skalibog/fundarb/internal/query"
	"github.com/skalibog/fundarb/internal/referral"
	"github.com/skalibog/fundarb/pkg/models"
)

// Стили UI
var (
	// Основные цвета
	primaryColor   = lipgloss.Color("#0077cc")
	secondaryColor = lipgloss.Color("#333333")
	errorColor     = lipgloss.Color("#cc3300")
	successColor   = lipgloss.Color("#33cc33")
	warningColor   = lipgloss.Color("#cccc00")
	accentColor    = lipgloss.Color("#00bcd4")
	mutedColor     = lipgloss.Color("#999999")

	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1)
	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffffff")).
				Background(secondaryColor).
				Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)
	statStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 2)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("#222222"))
	footerStyle   = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1)
)

const maxLogLines = 50

func (ui *TermUI) render() string {
	batch := ui.source.Current()
	list, stats := ui.view()
	if ui.selectedIndex >= len(list) {
		ui.selectedIndex = max(0, len(list)-1)
	}

	body := renderCardsSection(list, ui.selectedIndex, ui.selectedID)
	if ui.config.ShowCharts {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", ui.renderDetailSection())
	}

	parts := []string{
		renderHeader(batch, ui.source.Refreshing()),
		"",
		renderStats(stats),
		renderFilters(ui.params, ui.searching),
		body,
	}
	if ui.showReferrals {
		parts = append(parts, renderReferrals(ui.referrals))
	} else {
		parts = append(parts, mutedStyle.Render("  Рекомендуемые площадки скрыты (L - показать)"))
	}
	parts = append(parts,
		renderLogsSection(ui.logs, ui.config.LogLines),
		footerStyle.Render("Клавиши: ↑/↓ - навигация, Enter - график, / - поиск, P - доходность, E - биржа, S - сортировка, C - сброс, R - обновить, L - площадки, Q - выход"),
	)

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func renderHeader(batch *models.Batch, refreshing bool) string {
	title := titleStyle.Render("Арбитраж ставок финансирования")

	status := "Ожидание данных..."
	if batch != nil {
		status = fmt.Sprintf("Обновлено %s, набор #%d", batch.GeneratedAt.Format("15:04:05"), batch.Seq)
	}
	if refreshing {
		status = lipgloss.NewStyle().Foreground(warningColor).Render("⟳ Обновление данных...")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", mutedStyle.Render(status))
}

func renderStats(stats models.Stats) string {
	cell := func(label, value string, color lipgloss.Color) string {
		return statStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render(label),
			lipgloss.NewStyle().Bold(true).Foreground(color).Render(value),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Всего возможностей", fmt.Sprint(stats.TotalOpportunities), lipgloss.Color("#ffffff")),
		cell("Высокая доходность", fmt.Sprint(stats.HighProfitCount), successColor),
		cell("Лучший APY", models.FormatPercent(stats.BestCurrentAPY, 2), accentColor),
	)
}

func renderFilters(p query.Params, searching bool) string {
	search := p.Search
	if searching {
		search += "▏"
	}
	if search == "" {
		search = mutedStyle.Render("(нет)")
	}
	return fmt.Sprintf("  Поиск: %s  │  Доходность: %s  │  Биржа: %s  │  Сортировка: %s",
		search,
		query.Label(query.ProfitabilityOptions(), p.Profitability),
		query.Label(query.ExchangeOptions(nil), p.Exchange),
		query.Label(query.SortOptions(), p.SortBy),
	)
}

func renderCardsSection(list []models.ArbitrageOpportunity, selectedIndex int, selectedID string) string {
	header := sectionHeaderStyle.Render("ВОЗМОЖНОСТИ")
	content := strings.Builder{}

	if len(list) == 0 {
		content.WriteString("  Нет возможностей по выбранным фильтрам\n")
	}
	for i, o := range list {
		marker := "  "
		if o.ID == selectedID {
			marker = "★ "
		}
		line := fmt.Sprintf("%s%-10s %-11s → %-11s L %9s  S %9s  %s  %-8s %-7s %s",
			marker,
			o.Symbol,
			o.LongExchange,
			o.ShortExchange,
			models.FormatRate(o.LongRate, 4),
			models.FormatRate(o.ShortRate, 4),
			formatProfitability(o.Profitability),
			o.Volume,
			o.NextFunding,
			formatChange(o.Change24h, o.Trend),
		)
		if i == selectedIndex {
			line = selectedStyle.Render("> " + line[len(marker):])
		}
		content.WriteString(line + "\n")
	}

	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, content.String()))
}

func (ui *TermUI) renderDetailSection() string {
	o, ok := ui.selected()
	if !ok {
		return renderBaseline(ui.series)
	}

	points := ui.detailSeries(o)
	longs := make([]float64, len(points))
	shorts := make([]float64, len(points))
	spreads := make([]float64, len(points))
	for i, p := range points {
		longs[i] = p.LongRate
		shorts[i] = p.ShortRate
		spreads[i] = p.ArbitrageProfit
	}

	lines := []string{
		sectionHeaderStyle.Render(fmt.Sprintf("АНАЛИЗ %s", o.Symbol)),
		mutedStyle.Render(fmt.Sprintf("Лонг на %s, шорт на %s", o.LongExchange, o.ShortExchange)),
		"",
		fmt.Sprintf("Текущий профит: %s   Изменение 24ч: %s",
			lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(models.FormatPercent(o.ProfitPercentage, 4)),
			formatChange(o.Change24h, models.TrendNeutral)),
		fmt.Sprintf("Следующий фандинг через: %s   APY: %s", o.NextFunding, models.FormatPercent(query.APY(o.ArbitrageProfit), 2)),
		"",
		"Лонг  " + lipgloss.NewStyle().Foreground(successColor).Render(sparkline(longs)),
		"Шорт  " + lipgloss.NewStyle().Foreground(errorColor).Render(sparkline(shorts)),
		"Спред " + lipgloss.NewStyle().Foreground(accentColor).Render(sparkline(spreads)),
		"",
		fmt.Sprintf("Ставка лонга %s  Ставка шорта %s  Спред %s",
			models.FormatRate(o.LongRate, 4),
			models.FormatRate(o.ShortRate, 4),
			models.FormatRate(o.ArbitrageProfit, 4)),
	}
	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderBaseline(series []models.ChartPoint) string {
	summary := generator.Summarize(generator.Rates(series))
	lines := []string{
		sectionHeaderStyle.Render("СТАВКИ ЗА 24Ч"),
		mutedStyle.Render("Выберите возможность (Enter), чтобы увидеть детальный график"),
		"",
		"Ставка " + lipgloss.NewStyle().Foreground(accentColor).Render(sparkline(generator.Rates(series))),
		"SMA    " + mutedStyle.Render(sparkline(summary.SMA)),
		"",
		fmt.Sprintf("Средняя %s  Макс %s  Мин %s",
			models.FormatRate(summary.Avg, 4),
			lipgloss.NewStyle().Foreground(successColor).Render(models.FormatRate(summary.Max, 4)),
			lipgloss.NewStyle().Foreground(errorColor).Render(models.FormatRate(summary.Min, 4))),
	}
	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderReferrals(platforms []referral.Platform) string {
	content := strings.Builder{}
	for _, c := range referral.Categories() {
		group := referral.ByCategory(platforms, c)
		if len(group) == 0 {
			continue
		}
		content.WriteString(lipgloss.NewStyle().Bold(true).Render(c.Title()) + "\n")
		for _, p := range group {
			content.WriteString(fmt.Sprintf("  %-12s %-28s %s\n    %s\n",
				p.Name,
				lipgloss.NewStyle().Foreground(successColor).Render(p.Bonus),
				mutedStyle.Render(p.Description),
				p.URL))
		}
	}
	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		sectionHeaderStyle.Render("РЕКОМЕНДУЕМЫЕ ПЛОЩАДКИ"),
		content.String(),
	))
}

func renderLogsSection(logs []string, limit int) string {
	header := sectionHeaderStyle.Render("ЛОГИ")
	content := strings.Builder{}

	if limit <= 0 {
		limit = 6
	}
	start := 0
	if len(logs) > limit {
		start = len(logs) - limit
	}

	for _, log := range logs[start:] {
		// Выделение по уровню логирования
		switch {
		case strings.Contains(log, "[ERROR]"), strings.Contains(log, "[FATAL]"):
			log = lipgloss.NewStyle().Foreground(errorColor).Render(log)
		case strings.Contains(log, "[WARN]"):
			log = lipgloss.NewStyle().Foreground(warningColor).Render(log)
		case strings.Contains(log, "[INFO]"):
			log = lipgloss.NewStyle().Foreground(successColor).Render(log)
		case strings.Contains(log, "[DEBUG]"):
			log = lipgloss.NewStyle().Foreground(lipgloss.Color("#9999ff")).Render(log)
		}
		content.WriteString("  " + log + "\n")
	}

	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, content.String()))
}

func formatProfitability(p models.Profitability) string {
	switch p {
	case models.ProfitabilityHigh:
		return lipgloss.NewStyle().Foreground(successColor).Bold(true).Render("ВЫСОКАЯ")
	case models.ProfitabilityMedium:
		return lipgloss.NewStyle().Foreground(warningColor).Render("СРЕДНЯЯ")
	default:
		return mutedStyle.Render("НИЗКАЯ ")
	}
}

func formatChange(change float64, trend models.Trend) string {
	arrow := "–"
	if trend == models.TrendUp {
		arrow = "▲"
	} else if trend == models.TrendDown {
		arrow = "▼"
	}
	color := successColor
	if change < 0 {
		color = errorColor
	}
	return lipgloss.NewStyle().Foreground(color).Render(arrow + " " + models.FormatSignedPercent(change, 2))
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline рисует ряд значений блоками разной высоты
func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	out := make([]rune, len(values))
	for i, v := range values {
		idx := len(sparkBlocks) / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}
