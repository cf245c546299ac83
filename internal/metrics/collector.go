// internal/metrics/collector.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "swapbot"

// Collector управляет набором метрик бота на собственном реестре.
type Collector struct {
	registry *prometheus.Registry

	swapAttempts  *prometheus.CounterVec
	swapDuration  *prometheus.HistogramVec
	balanceReads  *prometheus.CounterVec
	txStages      *prometheus.CounterVec
	txStageTiming *prometheus.HistogramVec
	sellCycles    prometheus.Counter
}

// NewCollector создает новый экземпляр коллектора метрик
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		swapAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swap_attempts_total",
				Help:      "Swap executor invocations by direction, venue and outcome",
			},
			[]string{"direction", "venue", "outcome"},
		),
		swapDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "swap_duration_seconds",
				Help:      "Duration of a single swap executor invocation",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"direction", "venue"},
		),
		balanceReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "balance_reads_total",
				Help:      "Token balance reads by result",
			},
			[]string{"result"},
		),
		txStages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tx_stage_total",
				Help:      "Transaction pipeline stages by result",
			},
			[]string{"stage", "result"},
		),
		txStageTiming: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tx_stage_duration_seconds",
				Help:      "Transaction pipeline stage latency",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"stage"},
		),
		sellCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sell_cycles_total",
			Help:      "Completed iterations of the sell loop",
		}),
	}
	c.registry.MustRegister(
		c.swapAttempts, c.swapDuration, c.balanceReads,
		c.txStages, c.txStageTiming, c.sellCycles,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry возвращает реестр, например для тестов или внешнего сервера.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordSwap записывает результат одного вызова исполнителя свопа.
func (c *Collector) RecordSwap(direction, venue, outcome string, duration time.Duration) {
	c.swapAttempts.WithLabelValues(direction, venue, outcome).Inc()
	c.swapDuration.WithLabelValues(direction, venue).Observe(duration.Seconds())
}

// RecordBalanceRead записывает попытку чтения баланса.
func (c *Collector) RecordBalanceRead(ok bool) {
	c.balanceReads.WithLabelValues(result(ok)).Inc()
}

// RecordSellCycle увеличивает счётчик итераций цикла продажи.
func (c *Collector) RecordSellCycle() {
	c.sellCycles.Inc()
}

// ObserveTxStage реализует transaction.Recorder.
func (c *Collector) ObserveTxStage(stage string, duration time.Duration, ok bool) {
	c.txStages.WithLabelValues(stage, result(ok)).Inc()
	c.txStageTiming.WithLabelValues(stage).Observe(duration.Seconds())
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// Serve публикует /metrics на addr до отмены ctx.
func (c *Collector) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
