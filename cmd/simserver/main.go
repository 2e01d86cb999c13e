// cmd/simserver runs paced rollouts continuously and serves them to
// observers: step telemetry over WebSocket, Prometheus metrics, and a health
// endpoint.
//
// Usage:
//
//	go run ./cmd/simserver --config=config.yaml --speed=10
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stocksim/config"
	"stocksim/internal/dataset"
	"stocksim/internal/env"
	"stocksim/internal/gateway"
	"stocksim/internal/logger"
	"stocksim/internal/metrics"
	"stocksim/internal/ringbuf"
	"stocksim/internal/rollout"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	speed := flag.Float64("speed", 0, "Steps per second (0 = config value)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[simserver] config: %v", err)
	}
	if *speed > 0 {
		cfg.Rollout.Speed = *speed
	}

	slg := logger.Init("simserver", logger.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slg.Info("shutting down")
		cancel()
	}()

	met := metrics.New()
	health := metrics.NewHealthStatus()
	go metrics.Serve(ctx, cfg.Server.MetricsAddr, health)

	bars, err := dataset.Load(ctx, dataset.Source{
		Kind:          cfg.Dataset.Source,
		CSVPath:       cfg.Dataset.CSVPath,
		SQLitePath:    cfg.Dataset.SQLitePath,
		Symbol:        cfg.Dataset.Symbol,
		RedisAddr:     cfg.Dataset.RedisAddr,
		RedisPassword: cfg.Dataset.RedisPass,
		RedisKey:      cfg.Dataset.RedisKey,
	})
	if err != nil {
		log.Fatalf("[simserver] dataset load failed: %v", err)
	}
	health.SetDatasetLoaded(true)
	met.DatasetBars.Set(float64(len(bars)))

	if cfg.Dataset.Source == "redis" {
		probe, err := dataset.NewRedisReader(ctx, cfg.Dataset.RedisAddr, cfg.Dataset.RedisPass)
		if err != nil {
			log.Fatalf("[simserver] redis probe connect failed: %v", err)
		}
		defer probe.Close()
		health.StartRedisProbe(ctx, probe.Client(), 15*time.Second)
	}
	slg.Info("dataset loaded", slog.Int("bars", len(bars)), slog.String("source", cfg.Dataset.Source))

	e, err := env.New(bars, env.Config{
		OscillatorPeriod: cfg.Env.OscillatorPeriod,
		SMAPeriod:        cfg.Env.SMAPeriod,
		EMAPeriod:        cfg.Env.EMAPeriod,
		InitialCash:      cfg.Env.InitialCash,
	})
	if err != nil {
		log.Fatalf("[simserver] env init failed: %v", err)
	}

	hub := gateway.NewHub(500)
	hub.OnClientCount = func(n int) { met.WSClients.Set(float64(n)) }

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	wsSrv := &http.Server{Addr: cfg.Server.WSAddr, Handler: mux}
	go func() {
		slg.Info("ws server listening", slog.String("addr", cfg.Server.WSAddr))
		if err := wsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[simserver] ws server: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer shutdownCancel()
		wsSrv.Shutdown(shutdownCtx)
	}()

	// Decouple the rollout loop from WebSocket fan-out: steps land in a
	// bounded ring and a drainer broadcasts them. A stalled observer costs
	// dropped telemetry, never a stalled simulation.
	ring := ringbuf.New[rollout.StepEvent](4096)
	go func() {
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		var dropped uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for {
					ev, ok := ring.Pop()
					if !ok {
						break
					}
					data, _ := json.Marshal(ev)
					hub.Broadcast("step", data)
				}
				if ov := ring.Overflow(); ov > dropped {
					met.EventOverflow.Add(float64(ov - dropped))
					dropped = ov
				}
			}
		}
	}()

	runner := rollout.NewRunner(e, rollout.NewRandomPolicy(cfg.Rollout.Seed), slg)
	runner.Met = met
	runner.OnStep = func(ev rollout.StepEvent) { ring.Push(ev) }
	runner.OnEpisode = func(res rollout.EpisodeResult) {
		health.RecordEpisode()
		data, _ := json.Marshal(res)
		hub.Broadcast("episode", data)
	}
	if cfg.Rollout.Speed > 0 {
		runner.StepDelay = time.Duration(float64(time.Second) / cfg.Rollout.Speed)
	}

	// Run episodes back to back until shutdown
	for episode := 1; ; episode++ {
		if _, err := runner.RunEpisode(ctx, episode); err != nil {
			if ctx.Err() != nil {
				slg.Info("stopped", slog.Int("episodes", episode-1))
				return
			}
			log.Fatalf("[simserver] episode %d failed: %v", episode, err)
		}
	}
}
