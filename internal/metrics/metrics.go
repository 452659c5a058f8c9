package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skalibog/fundarb/pkg/models"
	"go.uber.org/zap"
)

// Metrics показатели циклов обновления
type Metrics struct {
	Refreshes     *prometheus.CounterVec
	Opportunities prometheus.Gauge
	HighProfit    prometheus.Gauge
	BestAPY       prometheus.Gauge
	BatchSeq      prometheus.Gauge
}

// New создает и регистрирует метрики в reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fundarb_refreshes_total",
			Help: "Number of published opportunity batches by refresh kind",
		}, []string{"kind"}),
		Opportunities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fundarb_opportunities",
			Help: "Opportunities in the current batch",
		}),
		HighProfit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fundarb_high_profit_opportunities",
			Help: "High profitability opportunities in the current batch",
		}),
		BestAPY: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fundarb_best_apy_percent",
			Help: "Best annualized yield of the current batch, percent",
		}),
		BatchSeq: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fundarb_batch_seq",
			Help: "Sequence number of the current batch",
		}),
	}
	reg.MustRegister(m.Refreshes, m.Opportunities, m.HighProfit, m.BestAPY, m.BatchSeq)
	return m
}

// Observe фиксирует опубликованный набор и его статистику
func (m *Metrics) Observe(kind string, seq uint64, stats models.Stats) {
	m.Refreshes.WithLabelValues(kind).Inc()
	m.Opportunities.Set(float64(stats.TotalOpportunities))
	m.HighProfit.Set(float64(stats.HighProfitCount))
	m.BestAPY.Set(stats.BestCurrentAPY)
	m.BatchSeq.Set(float64(seq))
}

// Handler отдает /metrics и /healthz
func Handler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	}))
	return mux
}

// Serve запускает HTTP-сервер метрик и блокируется до отмены ctx.
// Пустой addr отключает сервер.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry, log *zap.Logger) error {
	if addr == "" {
		log.Info("Сервер метрик отключен")
		return nil
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(reg),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Сервер метрик запущен", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Ошибка остановки сервера метрик", zap.Error(err))
		return err
	}
	log.Info("Сервер метрик остановлен")
	return nil
}
