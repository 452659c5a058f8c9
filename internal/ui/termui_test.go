package ui

import (
	"context"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/skalibog/fundarb/internal/config"
	"github.com/skalibog/fundarb/internal/generator"
	"github.com/skalibog/fundarb/internal/query"
	"github.com/skalibog/fundarb/internal/referral"
	"github.com/skalibog/fundarb/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	batch      *models.Batch
	refreshing bool
	refreshes  int
}

func (f *fakeSource) Current() *models.Batch { return f.batch }
func (f *fakeSource) Refreshing() bool       { return f.refreshing }

func (f *fakeSource) Refresh() bool {
	if f.refreshing {
		return false
	}
	f.refreshing = true
	f.refreshes++
	return true
}

func testBatch() *models.Batch {
	return &models.Batch{
		ID:          "batch-1",
		Seq:         1,
		GeneratedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Opportunities: []models.ArbitrageOpportunity{
			{ID: "a", Symbol: "BTC-USDT", LongExchange: "Binance", ShortExchange: "OKX", LongRate: 0.0001, ShortRate: 0.0021, ArbitrageProfit: 0.002, ProfitPercentage: 0.2, Profitability: models.ProfitabilityHigh, Trend: models.TrendUp, VolumeMillions: 50, Volume: "$50.0M", NextFunding: "1h 5m", Change24h: 1.5},
			{ID: "b", Symbol: "ETH-USDT", LongExchange: "Bybit", ShortExchange: "Kraken", LongRate: 0.0003, ShortRate: 0.0013, ArbitrageProfit: 0.001, ProfitPercentage: 0.1, Profitability: models.ProfitabilityMedium, Trend: models.TrendNeutral, VolumeMillions: 20, Volume: "$20.0M", NextFunding: "2h 0m", Change24h: -0.7},
			{ID: "c", Symbol: "SOL-USDT", LongExchange: "OKX", ShortExchange: "Gate.io", LongRate: 0.0002, ShortRate: 0.0006, ArbitrageProfit: 0.0004, ProfitPercentage: 0.04, Profitability: models.ProfitabilityLow, Trend: models.TrendDown, VolumeMillions: 10, Volume: "$10.0M", NextFunding: "0h 30m", Change24h: 0.2},
		},
	}
}

func newTestUI(t *testing.T) (*TermUI, *fakeSource) {
	t.Helper()
	src := &fakeSource{batch: testBatch()}
	cfg := config.Default().UI
	ui := NewTermUI(cfg, time.Second, Deps{
		Source:    src,
		Exchanges: []string{"Binance", "OKX", "Bybit", "Kraken", "Gate.io"},
		Referrals: referral.Default(),
		Series:    []models.ChartPoint{{Time: "0:00", Rate: 0.0001}, {Time: "1:00", Rate: -0.0002}},
		Rand:      rand.New(rand.NewPCG(1, 2)),
	})
	return ui, src
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestCycleFilters(t *testing.T) {
	ui, _ := newTestUI(t)
	m := tea.Model(bubbleModel{ui: ui})

	press(m, "p")
	assert.Equal(t, query.ProfitabilityHigh, ui.Params().Profitability)
	list, _ := ui.view()
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)

	press(m, "e", "e")
	assert.Equal(t, "OKX", ui.Params().Exchange)

	press(m, "s")
	assert.Equal(t, query.SortRate, ui.Params().SortBy)

	press(m, "c")
	assert.Equal(t, query.DefaultParams(), ui.Params())
}

func TestSearchMode(t *testing.T) {
	ui, _ := newTestUI(t)
	m := tea.Model(bubbleModel{ui: ui})

	press(m, "/", "e", "t", "h")
	assert.True(t, ui.searching)
	assert.Equal(t, "eth", ui.Params().Search)

	// в режиме поиска клавиши фильтров пишутся в строку
	press(m, "p", "backspace")
	assert.Equal(t, "eth", ui.Params().Search)

	press(m, "enter")
	assert.False(t, ui.searching)
	list, stats := ui.view()
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, 1, stats.TotalOpportunities)

	press(m, "/", "esc")
	assert.False(t, ui.searching)
	assert.Empty(t, ui.Params().Search)
}

func TestSelection(t *testing.T) {
	ui, _ := newTestUI(t)
	m := tea.Model(bubbleModel{ui: ui})

	press(m, "down", "down", "down")
	assert.Equal(t, 2, ui.selectedIndex)
	press(m, "up")
	assert.Equal(t, 1, ui.selectedIndex)

	press(m, "enter")
	assert.Equal(t, "b", ui.selectedID)

	o, ok := ui.selected()
	require.True(t, ok)
	points := ui.detailSeries(o)
	require.Len(t, points, 2)
	assert.Same(t, &points[0], &ui.detailSeries(o)[0], "ряды кешируются для той же пары")

	press(m, "enter")
	assert.Empty(t, ui.selectedID)

	press(m, "enter", "esc")
	assert.Empty(t, ui.selectedID)
}

func TestSelectionSurvivesFilter(t *testing.T) {
	ui, _ := newTestUI(t)
	m := tea.Model(bubbleModel{ui: ui})

	press(m, "down", "enter", "p")
	assert.Equal(t, "b", ui.selectedID)
	_, ok := ui.selected()
	assert.True(t, ok, "выбор ищется во всем наборе")
}

func TestManualRefresh(t *testing.T) {
	ui, src := newTestUI(t)
	m := tea.Model(bubbleModel{ui: ui})

	press(m, "r", "r")
	assert.Equal(t, 1, src.refreshes)
	assert.Contains(t, m.View(), "Обновление данных")
}

func TestToggleReferrals(t *testing.T) {
	ui, _ := newTestUI(t)
	m := tea.Model(bubbleModel{ui: ui})

	assert.NotContains(t, m.View(), "РЕКОМЕНДУЕМЫЕ ПЛОЩАДКИ")
	press(m, "l")
	view := m.View()
	assert.Contains(t, view, "РЕКОМЕНДУЕМЫЕ ПЛОЩАДКИ")
	assert.Contains(t, view, "Hyperliquid")
}

func TestQuit(t *testing.T) {
	ui, _ := newTestUI(t)
	_, cmd := bubbleModel{ui: ui}.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewRendersBatch(t *testing.T) {
	ui, _ := newTestUI(t)
	view := bubbleModel{ui: ui}.View()

	assert.Contains(t, view, "BTC-USDT")
	assert.Contains(t, view, "SOL-USDT")
	assert.Contains(t, view, "СТАВКИ ЗА 24Ч")
	assert.Contains(t, view, "набор #1")
}

func TestViewWithoutBatch(t *testing.T) {
	ui, src := newTestUI(t)
	src.batch = nil

	view := bubbleModel{ui: ui}.View()
	assert.Contains(t, view, "Ожидание данных")
	assert.Contains(t, view, "Нет возможностей")
}

func TestLogsMsg(t *testing.T) {
	ui, _ := newTestUI(t)
	m := tea.Model(bubbleModel{ui: ui})

	m, _ = m.Update(logsMsg{"[12:00:00] [INFO] готово"})
	assert.Equal(t, []string{"[12:00:00] [INFO] готово"}, ui.logs)

	m.Update(logsMsg(nil))
	assert.Len(t, ui.logs, 1, "пустое чтение не стирает панель")
}

func TestSparkline(t *testing.T) {
	assert.Empty(t, sparkline(nil))
	assert.Equal(t, "▁█", sparkline([]float64{0, 1}))
	assert.Equal(t, "▅▅▅", sparkline([]float64{2, 2, 2}))
	assert.Equal(t, 24, len([]rune(sparkline(make([]float64, 24)))))
}

func TestReadLogTail(t *testing.T) {
	dir := t.TempDir()

	lines, err := readLogTail(filepath.Join(dir, "missing.log"), 10)
	require.NoError(t, err)
	assert.Nil(t, lines)

	path := filepath.Join(dir, "app.json.log")
	content := strings.Join([]string{
		`{"level":"INFO","ts":"01.01.2025 - 12:30:45.000000000Z","caller":"main.go:1","msg":"Старт","seq":3,"kind":"manual"}`,
		`{"level":"\u001b[31mERROR\u001b[0m","ts":"bad","msg":"Ошибка"}`,
		`plain text line`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	lines, err = readLogTail(path, 10)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "[12:30:45] [INFO] Старт (kind: manual) (seq: 3)", lines[0])
	assert.Equal(t, "[] [ERROR] Ошибка", lines[1])
	assert.Equal(t, "plain text line", lines[2])

	lines, err = readLogTail(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"[] [ERROR] Ошибка", "plain text line"}, lines)
}

func TestNotifyWhileProgramStarts(t *testing.T) {
	ui, _ := newTestUI(t)
	ui.Notify()

	// у отмененной программы Send возвращается сразу
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := tea.NewProgram(bubbleModel{ui: ui}, tea.WithContext(ctx), tea.WithInput(nil), tea.WithOutput(io.Discard))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ui.Notify()
		}()
	}
	ui.program.Store(p)
	wg.Wait()

	assert.Same(t, p, ui.program.Load())
}

func TestDetailSeriesReproducibleFromSeed(t *testing.T) {
	series := generator.NewSeeded(9, 0).Series()
	build := func(amplitude float64) []models.AugmentedPoint {
		cfg := config.Default().UI
		cfg.JitterAmplitude = amplitude
		ui := NewTermUI(cfg, time.Second, Deps{
			Source: &fakeSource{batch: testBatch()},
			Series: series,
			Rand:   generator.NewJitterRand(9),
		})
		ui.selectedID = "a"
		o, ok := ui.selected()
		require.True(t, ok)
		return ui.detailSeries(o)
	}

	assert.Equal(t, build(generator.DefaultJitterAmplitude), build(generator.DefaultJitterAmplitude))

	for _, p := range build(0) {
		assert.Equal(t, 0.0001, p.LongRate)
		assert.Equal(t, 0.0021, p.ShortRate)
	}
}
