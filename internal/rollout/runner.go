package rollout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stocksim/internal/env"
	"stocksim/internal/metrics"
)

// StepEvent is the telemetry record emitted after every environment step.
type StepEvent struct {
	Episode int       `json:"episode"`
	Step    int       `json:"step"`
	Action  string    `json:"action"`
	Obs     []float64 `json:"obs"`
	Reward  float64   `json:"reward"`
	Done    bool      `json:"done"`
	Owned   int64     `json:"owned"`
	Cash    float64   `json:"cash"`
	Equity  float64   `json:"equity"`
}

// EpisodeResult summarizes one completed episode.
type EpisodeResult struct {
	Episode     int           `json:"episode"`
	Policy      string        `json:"policy"`
	Steps       int           `json:"steps"`
	TotalReward float64       `json:"total_reward"`
	FinalCash   float64       `json:"final_cash"`
	FinalOwned  int64         `json:"final_owned"`
	FinalEquity float64       `json:"final_equity"`
	Buys        int           `json:"buys"`
	Sells       int           `json:"sells"`
	Holds       int           `json:"holds"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}

// Runner drives a policy through repeated episodes of one environment.
type Runner struct {
	env    *env.Env
	policy Policy
	log    *slog.Logger

	// Met is optional; when set, step/episode metrics are recorded.
	Met *metrics.Metrics

	// OnStep is optional per-step telemetry (gateway broadcast, tracing).
	OnStep func(StepEvent)

	// OnEpisode is optional per-episode output (journal persistence).
	OnEpisode func(EpisodeResult)

	// StepDelay paces steps for observable live runs. Zero runs at full speed.
	StepDelay time.Duration
}

// NewRunner creates a Runner for the given environment and policy.
func NewRunner(e *env.Env, policy Policy, log *slog.Logger) *Runner {
	return &Runner{env: e, policy: policy, log: log}
}

// Run executes the given number of episodes, stopping early if ctx ends.
func (r *Runner) Run(ctx context.Context, episodes int) ([]EpisodeResult, error) {
	results := make([]EpisodeResult, 0, episodes)
	for ep := 1; ep <= episodes; ep++ {
		res, err := r.RunEpisode(ctx, ep)
		if err != nil {
			return results, err
		}
		results = append(results, res)

		r.log.Info("episode complete",
			slog.Int("episode", ep),
			slog.Int("steps", res.Steps),
			slog.Float64("total_reward", res.TotalReward),
			slog.Float64("final_equity", res.FinalEquity),
			slog.Int("buys", res.Buys),
			slog.Int("sells", res.Sells),
		)
	}
	return results, nil
}

// RunEpisode drives one full episode from Reset to done.
func (r *Runner) RunEpisode(ctx context.Context, episode int) (EpisodeResult, error) {
	obs, _ := r.env.Reset()

	result := EpisodeResult{
		Episode:   episode,
		Policy:    r.policy.Name(),
		StartedAt: time.Now(),
	}

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		action := r.policy.Act(obs)

		start := time.Now()
		res, err := r.env.Step(action)
		if err != nil {
			return result, fmt.Errorf("rollout: episode %d step %d: %w", episode, result.Steps, err)
		}

		result.Steps++
		result.TotalReward += res.Reward
		switch action {
		case env.ActionBuy:
			result.Buys++
		case env.ActionSell:
			result.Sells++
		default:
			result.Holds++
		}

		if r.Met != nil {
			r.Met.StepsTotal.Inc()
			r.Met.StepDur.Observe(time.Since(start).Seconds())
			r.Met.TradesTotal.WithLabelValues(action.String()).Inc()
		}

		if r.OnStep != nil {
			state := r.env.State()
			r.OnStep(StepEvent{
				Episode: episode,
				Step:    result.Steps,
				Action:  action.String(),
				Obs:     res.Obs.Vector(),
				Reward:  res.Reward,
				Done:    res.Done,
				Owned:   state.Owned,
				Cash:    state.CashInHand,
				Equity:  state.Equity(),
			})
		}

		obs = res.Obs
		if res.Done {
			break
		}

		if r.StepDelay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(r.StepDelay):
			}
		}
	}

	state := r.env.State()
	result.FinalCash = state.CashInHand
	result.FinalOwned = state.Owned
	result.FinalEquity = state.Equity()
	result.Duration = time.Since(result.StartedAt)

	if r.Met != nil {
		r.Met.EpisodesTotal.Inc()
		r.Met.EpisodeReward.Observe(result.TotalReward)
		r.Met.LastEquity.Set(result.FinalEquity)
	}
	if r.OnEpisode != nil {
		r.OnEpisode(result)
	}
	return result, nil
}

// Summary aggregates results across episodes.
type Summary struct {
	Episodes    int
	TotalSteps  int
	MeanReward  float64
	BestReward  float64
	WorstReward float64
	MeanEquity  float64
}

// Summarize computes aggregate statistics over episode results.
func Summarize(results []EpisodeResult) Summary {
	s := Summary{Episodes: len(results)}
	if len(results) == 0 {
		return s
	}

	s.BestReward = results[0].TotalReward
	s.WorstReward = results[0].TotalReward

	var rewardSum, equitySum float64
	for _, r := range results {
		s.TotalSteps += r.Steps
		rewardSum += r.TotalReward
		equitySum += r.FinalEquity
		if r.TotalReward > s.BestReward {
			s.BestReward = r.TotalReward
		}
		if r.TotalReward < s.WorstReward {
			s.WorstReward = r.TotalReward
		}
	}
	s.MeanReward = rewardSum / float64(len(results))
	s.MeanEquity = equitySum / float64(len(results))
	return s
}
