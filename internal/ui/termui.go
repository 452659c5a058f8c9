package ui

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/skalibog/fundarb/internal/config"
	"github.com/skalibog/fundarb/internal/generator"
	"github.com/skalibog/fundarb/internal/query"
	"github.com/skalibog/fundarb/internal/referral"
	"github.com/skalibog/fundarb/pkg/logger"
	"github.com/skalibog/fundarb/pkg/models"
	"go.uber.org/zap"
)

// Source поставщик текущего набора возможностей
type Source interface {
	Current() *models.Batch
	Refreshing() bool
	Refresh() bool
}

// TermUI представляет терминальный интерфейс.
// Состояние меняется только в Update, поэтому блокировки не нужны.
// Исключение program: Notify вызывается из горутины планировщика.
type TermUI struct {
	source    Source
	config    config.UIConfig
	refresh   time.Duration
	exchanges []string
	referrals []referral.Platform
	series    []models.ChartPoint
	rng       *rand.Rand

	params        query.Params
	selectedIndex int
	selectedID    string
	searching     bool
	showReferrals bool

	// ряды выбранной пары пересчитываются только при смене пары или набора
	detailKey    string
	detailPoints []models.AugmentedPoint

	logs    []string
	logFile string
	width   int
	height  int
	program atomic.Pointer[tea.Program]
}

// Сообщения для обновления UI
type refreshMsg struct{}
type logsMsg []string

// bubbleModel - модель для bubbletea
type bubbleModel struct {
	ui *TermUI
}

// Deps зависимости интерфейса
type Deps struct {
	Source    Source
	Exchanges []string
	Referrals []referral.Platform
	Series    []models.ChartPoint
	Rand      *rand.Rand
	LogFile   string
}

func NewTermUI(cfg config.UIConfig, refresh time.Duration, deps Deps) *TermUI {
	if refresh <= 0 {
		refresh = 250 * time.Millisecond
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &TermUI{
		source:    deps.Source,
		config:    cfg,
		refresh:   refresh,
		exchanges: deps.Exchanges,
		referrals: deps.Referrals,
		series:    deps.Series,
		rng:       rng,
		params:    query.DefaultParams(),
		logs:      []string{"Дашборд запущен. Ожидание данных..."},
		logFile:   deps.LogFile,
		width:     120,
		height:    40,
	}
}

// Start запускает UI и блокируется до выхода пользователя или отмены ctx
func (ui *TermUI) Start(ctx context.Context) error {
	p := tea.NewProgram(bubbleModel{ui: ui}, tea.WithAltScreen(), tea.WithContext(ctx))
	ui.program.Store(p)
	defer ui.program.Store(nil)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Notify просит UI перерисоваться, не дожидаясь тика
func (ui *TermUI) Notify() {
	if p := ui.program.Load(); p != nil {
		go p.Send(refreshMsg{})
	}
}

// Params текущие параметры фильтрации
func (ui *TermUI) Params() query.Params {
	return ui.params
}

func (ui *TermUI) tick() tea.Cmd {
	return tea.Tick(ui.refresh, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (ui *TermUI) loadLogs() tea.Cmd {
	if ui.logFile == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := readLogTail(ui.logFile, maxLogLines)
		if err != nil {
			logger.Warn("Ошибка загрузки логов", zap.Error(err))
			return nil
		}
		return logsMsg(lines)
	}
}

func (ui *TermUI) logTick() tea.Cmd {
	if ui.logFile == "" {
		return nil
	}
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return logTickMsg{} })
}

type logTickMsg struct{}

// view применяет текущие параметры к текущему набору
func (ui *TermUI) view() ([]models.ArbitrageOpportunity, models.Stats) {
	batch := ui.source.Current()
	if batch == nil {
		return nil, models.Stats{}
	}
	return query.Apply(batch.Opportunities, ui.params.Normalize(ui.exchanges))
}

// selected возвращает выбранную пару из всего набора, а не из отфильтрованного списка
func (ui *TermUI) selected() (models.ArbitrageOpportunity, bool) {
	if ui.selectedID == "" {
		return models.ArbitrageOpportunity{}, false
	}
	return ui.source.Current().Find(ui.selectedID)
}

func (ui *TermUI) detailSeries(o models.ArbitrageOpportunity) []models.AugmentedPoint {
	key := o.ID
	if b := ui.source.Current(); b != nil {
		key = b.ID + "/" + o.ID
	}
	if key != ui.detailKey {
		ui.detailPoints = generator.JitterSeries(ui.series, o.LongRate, o.ShortRate, ui.config.JitterAmplitude, ui.rng)
		ui.detailKey = key
	}
	return ui.detailPoints
}

// Методы для bubbletea
func (m bubbleModel) Init() tea.Cmd {
	return tea.Batch(m.ui.tick(), m.ui.loadLogs(), m.ui.logTick())
}

func (m bubbleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ui.searching {
			return m, m.ui.handleSearchKey(msg)
		}
		return m, m.ui.handleKey(msg)

	case tea.WindowSizeMsg:
		m.ui.width = msg.Width
		m.ui.height = msg.Height

	case refreshMsg:
		return m, m.ui.tick()

	case logTickMsg:
		return m, tea.Batch(m.ui.loadLogs(), m.ui.logTick())

	case logsMsg:
		if len(msg) > 0 {
			m.ui.logs = msg
		}
	}

	return m, nil
}

func (ui *TermUI) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		ui.selectedIndex = max(0, ui.selectedIndex-1)
	case "down", "j":
		list, _ := ui.view()
		ui.selectedIndex = max(0, min(len(list)-1, ui.selectedIndex+1))
	case "enter", " ":
		list, _ := ui.view()
		if ui.selectedIndex < len(list) {
			id := list[ui.selectedIndex].ID
			if ui.selectedID == id {
				ui.selectedID = ""
			} else {
				ui.selectedID = id
			}
		}
	case "/":
		ui.searching = true
	case "p":
		ui.params.Profitability = query.Next(query.ProfitabilityOptions(), ui.params.Profitability)
		ui.selectedIndex = 0
	case "e":
		ui.params.Exchange = query.Next(query.ExchangeOptions(ui.exchanges), ui.params.Exchange)
		ui.selectedIndex = 0
	case "s":
		ui.params.SortBy = query.Next(query.SortOptions(), ui.params.SortBy)
	case "c":
		ui.params = query.DefaultParams()
		ui.selectedIndex = 0
	case "r":
		if ui.source.Refresh() {
			logger.Info("Ручное обновление данных")
		}
	case "l":
		ui.showReferrals = !ui.showReferrals
	case "esc":
		ui.selectedID = ""
	}
	return nil
}

func (ui *TermUI) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEnter:
		ui.searching = false
	case tea.KeyEsc:
		ui.searching = false
		ui.params.Search = ""
	case tea.KeyBackspace:
		if r := []rune(ui.params.Search); len(r) > 0 {
			ui.params.Search = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		ui.params.Search += " "
	case tea.KeyRunes:
		ui.params.Search += string(msg.Runes)
	}
	ui.selectedIndex = 0
	return nil
}

func (m bubbleModel) View() string {
	return m.ui.render()
}
