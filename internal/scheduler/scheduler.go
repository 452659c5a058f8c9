package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/skalibog/fundarb/pkg/models"
	"go.uber.org/zap"
)

const (
	DefaultInterval    = 10 * time.Second
	DefaultManualDelay = time.Second
)

var (
	ErrAlreadyStarted = errors.New("планировщик уже запущен")
	ErrStopped        = errors.New("планировщик остановлен")
)

// Kind причина обновления набора
type Kind string

const (
	KindInitial   Kind = "initial"
	KindScheduled Kind = "scheduled"
	KindManual    Kind = "manual"
)

// Generator источник новых наборов
type Generator interface {
	Generate() []models.ArbitrageOpportunity
}

// Option настраивает планировщик
type Option func(*Scheduler)

func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithManualDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.manualDelay = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// OnRefresh вызывается после публикации каждого набора, вне s.mu.
// Вызовы не пересекаются и идут в порядке Seq.
func OnRefresh(fn func(Kind, *models.Batch)) Option {
	return func(s *Scheduler) { s.onRefresh = fn }
}

// Scheduler владеет текущим набором и обновляет его по таймеру и вручную
type Scheduler struct {
	gen         Generator
	clock       clockwork.Clock
	interval    time.Duration
	manualDelay time.Duration
	log         *zap.Logger
	onRefresh   func(Kind, *models.Batch)

	// notifyMu держится от публикации набора до конца OnRefresh.
	// Порядок захвата: notifyMu, затем mu.
	notifyMu sync.Mutex

	mu         sync.Mutex
	current    *models.Batch
	seq        uint64
	started    bool
	stopped    bool
	refreshing bool
	pending    clockwork.Timer
	ticker     clockwork.Ticker
	done       chan struct{}
	wg         sync.WaitGroup
}

// New создает планировщик
func New(gen Generator, opts ...Option) *Scheduler {
	s := &Scheduler{
		gen:         gen,
		clock:       clockwork.NewRealClock(),
		interval:    DefaultInterval,
		manualDelay: DefaultManualDelay,
		log:         zap.NewNop(),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start публикует начальный набор и запускает периодическое обновление.
// Обновление прекращается по отмене ctx или вызову Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	batch := s.replaceLocked()
	s.ticker = s.clock.NewTicker(s.interval)
	ticker := s.ticker
	s.mu.Unlock()

	s.notify(KindInitial, batch)
	s.log.Info("Планировщик запущен",
		zap.Duration("interval", s.interval),
		zap.Duration("manual_delay", s.manualDelay))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				s.refresh(KindScheduled)
			case <-ctx.Done():
				s.Stop()
				return
			case <-s.done:
				return
			}
		}
	}()
	return nil
}

// Stop останавливает таймеры. Повторный вызов ничего не делает
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.refreshing = false
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)
	s.mu.Unlock()

	s.log.Info("Планировщик остановлен")
}

// Wait ждет завершения фоновой горутины после Stop или отмены контекста
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Refresh запускает ручное обновление: флаг Refreshing держится manualDelay,
// затем набор заменяется. Возвращает false, если обновление уже идет или
// планировщик остановлен.
func (s *Scheduler) Refresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.refreshing {
		return false
	}
	s.refreshing = true

	s.pending = s.clock.AfterFunc(s.manualDelay, func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()

		s.mu.Lock()
		// Stop мог сработать, пока колбэк ждал блокировку
		if s.stopped || !s.refreshing {
			s.mu.Unlock()
			return
		}
		s.pending = nil
		batch := s.replaceLocked()
		s.refreshing = false
		s.mu.Unlock()

		s.notify(KindManual, batch)
	})

	s.log.Debug("Ручное обновление запрошено")
	return true
}

// Current возвращает текущий набор или nil до Start
func (s *Scheduler) Current() *models.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Refreshing сообщает, идет ли ручное обновление
func (s *Scheduler) Refreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshing
}

// LastRefresh время публикации текущего набора
func (s *Scheduler) LastRefresh() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return time.Time{}
	}
	return s.current.GeneratedAt
}

func (s *Scheduler) refresh(kind Kind) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	batch := s.replaceLocked()
	s.mu.Unlock()

	s.notify(kind, batch)
}

// replaceLocked генерирует и публикует новый набор. Вызывается под s.mu:
// генератор не потокобезопасен.
func (s *Scheduler) replaceLocked() *models.Batch {
	s.seq++
	batch := &models.Batch{
		ID:            uuid.NewString(),
		Seq:           s.seq,
		GeneratedAt:   s.clock.Now(),
		Opportunities: s.gen.Generate(),
	}
	s.current = batch
	return batch
}

func (s *Scheduler) notify(kind Kind, batch *models.Batch) {
	s.log.Debug("Набор обновлен",
		zap.String("kind", string(kind)),
		zap.Uint64("seq", batch.Seq),
		zap.String("batch_id", batch.ID),
		zap.Int("count", batch.Len()))

	if s.onRefresh != nil {
		s.onRefresh(kind, batch)
	}
}
