// cmd/rollout runs a batch of episodes over a historical bar series with a
// seeded random policy and prints a summary.
//
// Usage:
//
//	go run ./cmd/rollout --source=csv --csv=data/bars.csv --episodes=10 --seed=42
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stocksim/config"
	"stocksim/internal/dataset"
	"stocksim/internal/env"
	"stocksim/internal/logger"
	"stocksim/internal/rollout"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	// Flags override config file and environment
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	source := flag.String("source", "", "Dataset source: csv|sqlite|redis")
	csvPath := flag.String("csv", "", "Path to CSV bar series")
	episodes := flag.Int("episodes", 0, "Number of episodes to run")
	seed := flag.Int64("seed", 0, "Random policy seed")
	journalPath := flag.String("journal", "", "SQLite episode journal path (empty = no journal)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[rollout] config: %v", err)
	}
	if *source != "" {
		cfg.Dataset.Source = *source
	}
	if *csvPath != "" {
		cfg.Dataset.CSVPath = *csvPath
	}
	if *episodes > 0 {
		cfg.Rollout.Episodes = *episodes
	}
	if *seed != 0 {
		cfg.Rollout.Seed = *seed
	}
	if *journalPath != "" {
		cfg.Rollout.JournalPath = *journalPath
	}

	slg := logger.Init("rollout", logger.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

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
		log.Fatalf("[rollout] dataset load failed: %v", err)
	}
	slg.Info("dataset loaded", slog.Int("bars", len(bars)), slog.String("source", cfg.Dataset.Source))

	e, err := env.New(bars, env.Config{
		OscillatorPeriod: cfg.Env.OscillatorPeriod,
		SMAPeriod:        cfg.Env.SMAPeriod,
		EMAPeriod:        cfg.Env.EMAPeriod,
		InitialCash:      cfg.Env.InitialCash,
	})
	if err != nil {
		log.Fatalf("[rollout] env init failed: %v", err)
	}

	runner := rollout.NewRunner(e, rollout.NewRandomPolicy(cfg.Rollout.Seed), slg)

	if cfg.Rollout.JournalPath != "" {
		journal, err := rollout.NewJournal(cfg.Rollout.JournalPath)
		if err != nil {
			log.Fatalf("[rollout] journal open failed: %v", err)
		}
		defer journal.Close()
		runner.OnEpisode = func(res rollout.EpisodeResult) {
			if err := journal.RecordEpisode(res); err != nil {
				slg.Warn("journal write failed", slog.Any("err", err))
			}
		}
	}

	results, err := runner.Run(ctx, cfg.Rollout.Episodes)
	if err != nil {
		log.Fatalf("[rollout] run failed after %d episodes: %v", len(results), err)
	}

	s := rollout.Summarize(results)
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║        ROLLOUT COMPLETE              ║")
	fmt.Println("╠══════════════════════════════════════╣")
	fmt.Printf("║  Episodes:     %-21d ║\n", s.Episodes)
	fmt.Printf("║  Total steps:  %-21d ║\n", s.TotalSteps)
	fmt.Printf("║  Mean reward:  %-21.4f ║\n", s.MeanReward)
	fmt.Printf("║  Best reward:  %-21.4f ║\n", s.BestReward)
	fmt.Printf("║  Worst reward: %-21.4f ║\n", s.WorstReward)
	fmt.Printf("║  Mean equity:  %-21.2f ║\n", s.MeanEquity)
	fmt.Println("╚══════════════════════════════════════╝")
}
