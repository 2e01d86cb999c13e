// Package metrics exposes Prometheus metrics and a health endpoint for the
// simulator. Counters and histograms are updated by the rollout runner and
// the telemetry gateway; nothing in the environment hot path touches them
// directly.
package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the simulator.
type Metrics struct {
	EpisodesTotal prometheus.Counter
	StepsTotal    prometheus.Counter
	TradesTotal   *prometheus.CounterVec // labels: action
	EpisodeReward prometheus.Histogram
	StepDur       prometheus.Histogram
	LastEquity    prometheus.Gauge
	DatasetBars   prometheus.Gauge
	EventOverflow prometheus.Counter
	WSClients     prometheus.Gauge
}

// New registers and returns all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		EpisodesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocksim_episodes_total",
			Help: "Total episodes completed",
		}),
		StepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocksim_steps_total",
			Help: "Total environment steps taken",
		}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksim_trades_total",
			Help: "Actions taken (by action)",
		}, []string{"action"}),
		EpisodeReward: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocksim_episode_reward",
			Help:    "Total reward per episode",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		StepDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocksim_step_duration_seconds",
			Help:    "Environment step latency",
			Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001},
		}),
		LastEquity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocksim_last_equity",
			Help: "Equity (cash + holdings at close) at the end of the last episode",
		}),
		DatasetBars: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocksim_dataset_bars",
			Help: "Number of bars in the loaded series",
		}),
		EventOverflow: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocksim_event_overflow_total",
			Help: "Telemetry events dropped due to a full ring buffer",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocksim_ws_clients",
			Help: "Connected WebSocket observers",
		}),
	}

	prometheus.MustRegister(
		m.EpisodesTotal,
		m.StepsTotal,
		m.TradesTotal,
		m.EpisodeReward,
		m.StepDur,
		m.LastEquity,
		m.DatasetBars,
		m.EventOverflow,
		m.WSClients,
	)

	return m
}

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	DatasetLoaded  bool
	RedisConnected bool
	RedisLatencyMs float64
	EpisodesRun    int64
	LastEpisodeAt  time.Time
	StartedAt      time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetDatasetLoaded(v bool) {
	h.mu.Lock()
	h.DatasetLoaded = v
	h.mu.Unlock()
}

func (h *HealthStatus) RecordEpisode() {
	h.mu.Lock()
	h.EpisodesRun++
	h.LastEpisodeAt = time.Now()
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.mu.Unlock()
}

// StartRedisProbe runs periodic Redis liveness checks until ctx ends.
func (h *HealthStatus) StartRedisProbe(ctx context.Context, rdb *goredis.Client, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				h.CheckRedis(probeCtx, rdb)
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if !h.DatasetLoaded {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	lastEpisode := ""
	if !h.LastEpisodeAt.IsZero() {
		lastEpisode = h.LastEpisodeAt.Format(time.RFC3339)
	}

	resp := struct {
		Status         string  `json:"status"`
		Uptime         string  `json:"uptime"`
		DatasetLoaded  bool    `json:"dataset_loaded"`
		RedisConnected bool    `json:"redis_connected"`
		RedisLatencyMs float64 `json:"redis_latency_ms"`
		EpisodesRun    int64   `json:"episodes_run"`
		LastEpisodeAt  string  `json:"last_episode_at"`
	}{
		Status:         status,
		Uptime:         time.Since(h.StartedAt).Round(time.Second).String(),
		DatasetLoaded:  h.DatasetLoaded,
		RedisConnected: h.RedisConnected,
		RedisLatencyMs: h.RedisLatencyMs,
		EpisodesRun:    h.EpisodesRun,
		LastEpisodeAt:  lastEpisode,
	}

	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(resp)
}

// Serve runs an HTTP server exposing /metrics and /healthz until ctx ends.
func Serve(ctx context.Context, addr string, health *HealthStatus) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health)

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[metrics] serving on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("[metrics] server error: %v", err)
	}
}
