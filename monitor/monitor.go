// monitor/monitor.go
package monitor

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wfunc/mafiaserver/logger"
)

type Metrics struct {
	OnlinePlayers    prometheus.Gauge
	ActiveLobbies    prometheus.Gauge
	GamesInProgress  prometheus.Gauge
	GamesStarted     prometheus.Counter
	GamesFinished    *prometheus.CounterVec
	PhaseAdvances    *prometheus.CounterVec
	MessagesReceived prometheus.Counter
	MessageLatency   prometheus.Histogram
}

// NewMetrics registers the collectors with reg; pass prometheus.DefaultRegisterer in production.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of connected sessions",
		}),
		ActiveLobbies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_lobbies",
			Help:      "Number of lobbies held in memory",
		}),
		GamesInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "games_in_progress",
			Help:      "Number of games currently running",
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Total number of games started",
		}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Total number of finished games by winner",
		}, []string{"winner"}),
		PhaseAdvances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_advances_total",
			Help:      "Phase changes by cause (timer or action)",
		}, []string{"reason"}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of messages received",
		}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	reg.MustRegister(
		m.OnlinePlayers,
		m.ActiveLobbies,
		m.GamesInProgress,
		m.GamesStarted,
		m.GamesFinished,
		m.PhaseAdvances,
		m.MessagesReceived,
		m.MessageLatency,
	)

	return m
}

// Monitor 实现 lobby.Metrics，并提供 /metrics 和 expvar
type Monitor struct {
	metrics      *Metrics
	gatherer     prometheus.Gatherer
	startTime    time.Time
	requestCount int64
	mutex        sync.Mutex
	publishOnce  sync.Once
}

func NewMonitor(namespace string) *Monitor {
	return NewMonitorWithRegistry(namespace, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewMonitorWithRegistry is NewMonitor against an explicit registry, e.g. prometheus.NewRegistry() in tests.
func NewMonitorWithRegistry(namespace string, reg prometheus.Registerer, gatherer prometheus.Gatherer) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace, reg),
		gatherer:  gatherer,
		startTime: time.Now(),
	}
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// Handler serves /metrics and /debug/vars.
func (m *Monitor) Handler() http.Handler {
	m.publishOnce.Do(func() {
		// expvar 名称是全局的，只发布一次
		if expvar.Get("uptime") == nil {
			expvar.Publish("uptime", expvar.Func(func() interface{} {
				return time.Since(m.startTime).Seconds()
			}))
		}
		if expvar.Get("requests") == nil {
			expvar.Publish("requests", expvar.Func(func() interface{} {
				m.mutex.Lock()
				defer m.mutex.Unlock()
				return m.requestCount
			}))
		}
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	return mux
}

// Serve blocks until ctx is cancelled or the listener fails.
func (m *Monitor) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: m.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Log.Infow("metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

func (m *Monitor) IncMessagesReceived() {
	m.metrics.MessagesReceived.Inc()
	m.mutex.Lock()
	m.requestCount++
	m.mutex.Unlock()
}

func (m *Monitor) ObserveMessageLatency(duration time.Duration) {
	m.metrics.MessageLatency.Observe(duration.Seconds())
}

// --- lobby.Metrics ---

func (m *Monitor) LobbyCreated() {
	m.metrics.ActiveLobbies.Inc()
}

func (m *Monitor) LobbyRemoved() {
	m.metrics.ActiveLobbies.Dec()
}

func (m *Monitor) GameStarted() {
	m.metrics.GamesStarted.Inc()
	m.metrics.GamesInProgress.Inc()
}

func (m *Monitor) PhaseAdvanced(reason string) {
	m.metrics.PhaseAdvances.WithLabelValues(reason).Inc()
}

func (m *Monitor) GameFinished(winner string) {
	m.metrics.GamesInProgress.Dec()
	m.metrics.GamesFinished.WithLabelValues(winner).Inc()
}
