package rollout

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"stocksim/internal/env"
	"stocksim/internal/model"
)

func testEnv(t *testing.T, n int) *env.Env {
	t.Helper()
	base := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		c := 10 + float64(i%5)
		bars[i] = model.Bar{
			TS:     base.Add(time.Duration(i) * time.Minute),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 500,
		}
	}
	e, err := env.New(bars, env.Config{
		OscillatorPeriod: 3,
		SMAPeriod:        3,
		EMAPeriod:        3,
		InitialCash:      100,
	})
	if err != nil {
		t.Fatalf("env.New: %v", err)
	}
	return e
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedPolicy always returns the same action.
type fixedPolicy struct{ action env.Action }

func (p fixedPolicy) Name() string                   { return "fixed" }
func (p fixedPolicy) Act(env.Observation) env.Action { return p.action }

func TestRunEpisode_StepsEqualSeriesLength(t *testing.T) {
	const n = 12
	r := NewRunner(testEnv(t, n), fixedPolicy{env.ActionHold}, discardLogger())

	res, err := r.RunEpisode(context.Background(), 1)
	if err != nil {
		t.Fatalf("RunEpisode: %v", err)
	}
	if res.Steps != n {
		t.Fatalf("steps = %d, want %d", res.Steps, n)
	}
	if res.Holds != n || res.Buys != 0 || res.Sells != 0 {
		t.Fatalf("action counts wrong: %+v", res)
	}
}

func TestRunEpisode_StepEvents(t *testing.T) {
	const n = 6
	r := NewRunner(testEnv(t, n), fixedPolicy{env.ActionHold}, discardLogger())

	var events []StepEvent
	r.OnStep = func(ev StepEvent) { events = append(events, ev) }

	if _, err := r.RunEpisode(context.Background(), 3); err != nil {
		t.Fatalf("RunEpisode: %v", err)
	}

	if len(events) != n {
		t.Fatalf("got %d events, want %d", len(events), n)
	}
	last := events[len(events)-1]
	if !last.Done {
		t.Fatal("last event should carry done=true")
	}
	if last.Episode != 3 || last.Step != n {
		t.Fatalf("last event = %+v", last)
	}
	if len(last.Obs) != env.ObsWidth {
		t.Fatalf("event obs width = %d, want %d", len(last.Obs), env.ObsWidth)
	}
}

func TestRun_MultipleEpisodes(t *testing.T) {
	r := NewRunner(testEnv(t, 5), NewRandomPolicy(42), discardLogger())

	var journaled []EpisodeResult
	r.OnEpisode = func(res EpisodeResult) { journaled = append(journaled, res) }

	results, err := r.Run(context.Background(), 4)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 4 || len(journaled) != 4 {
		t.Fatalf("got %d results, %d journal calls, want 4 each", len(results), len(journaled))
	}
	for i, res := range results {
		if res.Episode != i+1 {
			t.Fatalf("result %d has episode %d", i, res.Episode)
		}
		if res.Steps != 5 {
			t.Fatalf("episode %d ran %d steps, want 5", res.Episode, res.Steps)
		}
	}
}

func TestRun_ContextCancel(t *testing.T) {
	r := NewRunner(testEnv(t, 10), fixedPolicy{env.ActionHold}, discardLogger())
	r.StepDelay = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	r.OnStep = func(ev StepEvent) {
		if ev.Step == 2 {
			cancel()
		}
	}

	if _, err := r.RunEpisode(ctx, 1); err == nil {
		t.Fatal("expected context error after cancel")
	}
}

func TestRandomPolicy_Deterministic(t *testing.T) {
	a := NewRandomPolicy(7)
	b := NewRandomPolicy(7)
	var obs env.Observation
	for i := 0; i < 50; i++ {
		if a.Act(obs) != b.Act(obs) {
			t.Fatal("same seed should produce same action sequence")
		}
	}
}

func TestSummarize(t *testing.T) {
	results := []EpisodeResult{
		{Steps: 5, TotalReward: 1.0, FinalEquity: 90},
		{Steps: 5, TotalReward: 3.0, FinalEquity: 110},
	}
	s := Summarize(results)
	if s.Episodes != 2 || s.TotalSteps != 10 {
		t.Fatalf("summary = %+v", s)
	}
	if s.MeanReward != 2.0 || s.BestReward != 3.0 || s.WorstReward != 1.0 {
		t.Fatalf("reward stats wrong: %+v", s)
	}
	if s.MeanEquity != 100 {
		t.Fatalf("mean equity = %v, want 100", s.MeanEquity)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Episodes != 0 || s.MeanReward != 0 {
		t.Fatalf("empty summary = %+v", s)
	}
}
