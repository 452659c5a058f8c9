package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/skalibog/fundarb/internal/config"
	"github.com/skalibog/fundarb/internal/generator"
	"github.com/skalibog/fundarb/internal/metrics"
	"github.com/skalibog/fundarb/internal/query"
	"github.com/skalibog/fundarb/internal/referral"
	"github.com/skalibog/fundarb/internal/scheduler"
	"github.com/skalibog/fundarb/internal/ui"
	"github.com/skalibog/fundarb/pkg/logger"
	"github.com/skalibog/fundarb/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Обработка флагов командной строки
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:    cfg.Logging.Level,
		File:     cfg.Logging.File,
		JSONFile: cfg.Logging.JSONFile,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logger.GetLogger().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("Аварийное завершение", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Работа завершена")
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	seed := cfg.Generator.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	gen := generator.NewSeeded(seed, cfg.Generator.BatchSize)
	logger.Info("Генератор инициализирован",
		zap.Uint64("seed", seed),
		zap.Int("batch_size", gen.BatchSize()))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var termUI *ui.TermUI
	sched := scheduler.New(gen,
		scheduler.WithInterval(cfg.RefreshInterval()),
		scheduler.WithManualDelay(cfg.ManualRefreshDelay()),
		scheduler.WithLogger(logger.Named("scheduler")),
		scheduler.OnRefresh(func(kind scheduler.Kind, b *models.Batch) {
			stats := query.Summarize(b.Opportunities)
			m.Observe(string(kind), b.Seq, stats)
			logger.Info("Данные обновлены",
				zap.String("kind", string(kind)),
				zap.Uint64("seq", b.Seq),
				zap.Int("opportunities", stats.TotalOpportunities),
				zap.Int("high", stats.HighProfitCount))
			if termUI != nil {
				termUI.Notify()
			}
		}),
	)

	termUI = ui.NewTermUI(cfg.UI, cfg.UIRefreshRate(), ui.Deps{
		Source:    sched,
		Exchanges: generator.Exchanges,
		Referrals: referral.WithOverrides(referral.Default(), cfg.Referrals),
		Series:    gen.Series(),
		Rand:      generator.NewJitterRand(seed),
		LogFile:   cfg.Logging.JSONFile,
	})

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("запуск планировщика: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.Serve(gctx, cfg.Metrics.Addr, reg, logger.Named("metrics"))
	})
	g.Go(func() error {
		<-gctx.Done()
		sched.Stop()
		sched.Wait()
		return nil
	})

	// UI в основном потоке, выход из него завершает остальные компоненты
	uiErr := termUI.Start(gctx)
	cancel()

	if err := g.Wait(); err != nil {
		return err
	}
	if uiErr != nil {
		return fmt.Errorf("ошибка UI: %w", uiErr)
	}
	return nil
}
