// Package env implements a single-asset trading episode over a historical
// price series. A caller drives it gym-style: Reset returns the first
// normalized observation, then repeated Step(action) calls advance a pointer
// through the series, apply the trade rule, and return reward and a done flag
// when the series is exhausted.
//
// One Env instance serves exactly one caller at a time. The bar series and
// precomputed indicator series are read-only after construction and may be
// shared across independently-running instances.
package env

import (
	"errors"
	"fmt"
	"math"

	"stocksim/internal/indicator"
	"stocksim/internal/model"
)

// Action is a discrete trading decision.
type Action int

const (
	ActionHold Action = 0
	ActionSell Action = 1
	ActionBuy  Action = 2
)

func (a Action) String() string {
	switch a {
	case ActionHold:
		return "HOLD"
	case ActionSell:
		return "SELL"
	case ActionBuy:
		return "BUY"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// NumActions is the size of the discrete action space.
const NumActions = 3

// Config holds the tunable parameters of the environment.
type Config struct {
	OscillatorPeriod int
	SMAPeriod        int
	EMAPeriod        int
	InitialCash      float64
}

// DefaultConfig returns the standard parameters: oscillator 14, SMA 20,
// EMA 20, starting cash 20000.
func DefaultConfig() Config {
	return Config{
		OscillatorPeriod: 14,
		SMAPeriod:        20,
		EMAPeriod:        20,
		InitialCash:      20000,
	}
}

type phase int

const (
	phaseNotStarted phase = iota
	phaseRunning
	phaseDone
)

// Usage errors returned by Step.
var (
	ErrNotStarted = errors.New("env: step called before reset")
	ErrDone       = errors.New("env: episode finished, call reset")
)

// Info is the auxiliary record returned alongside observations. Reserved;
// currently always empty.
type Info map[string]any

// StepResult is everything a Step call produces.
type StepResult struct {
	Obs       Observation
	Reward    float64
	Done      bool
	Truncated bool // reserved, always false
	Info      Info
}

// Env is the episode state machine.
type Env struct {
	cfg  Config
	bars []model.Bar

	// index-aligned indicator series, NaN during warm-up
	osc []float64
	sma []float64
	ema []float64

	bounds bounds

	phase phase
	state EpisodeState
}

// New builds an environment over a validated bar series, precomputing the
// indicator series and normalization bounds once.
func New(bars []model.Bar, cfg Config) (*Env, error) {
	if cfg.OscillatorPeriod <= 0 || cfg.SMAPeriod <= 0 || cfg.EMAPeriod <= 0 {
		return nil, fmt.Errorf("env: indicator periods must be positive: %+v", cfg)
	}
	if cfg.InitialCash < 0 {
		return nil, fmt.Errorf("env: initial cash must be >= 0, got %v", cfg.InitialCash)
	}
	if err := model.ValidateSeries(bars); err != nil {
		return nil, err
	}

	closes := model.Closes(bars)
	e := &Env{
		cfg:  cfg,
		bars: bars,
		osc:  indicator.OscillatorSeries(closes, cfg.OscillatorPeriod),
		sma:  indicator.SMASeries(closes, cfg.SMAPeriod),
		ema:  indicator.EMASeries(closes, cfg.EMAPeriod),
	}
	e.bounds = computeBounds(bars, e.sma, e.ema, e.osc)
	return e, nil
}

// Len returns the number of bars in the series; an episode is exactly Len steps.
func (e *Env) Len() int { return len(e.bars) }

// State returns a copy of the current episode state.
func (e *Env) State() EpisodeState { return e.state }

// Reset starts a new episode: pointer 0, no holdings, initial cash.
func (e *Env) Reset() (Observation, Info) {
	e.state = e.stateAt(0, 0, e.cfg.InitialCash)
	e.phase = phaseRunning
	return e.observe(e.state), Info{}
}

// Step applies one action at the current bar, computes reward, and advances.
// Calling Step before Reset, or after Done was signaled, is rejected.
func (e *Env) Step(action Action) (StepResult, error) {
	switch e.phase {
	case phaseNotStarted:
		return StepResult{}, ErrNotStarted
	case phaseDone:
		return StepResult{}, ErrDone
	}
	if action < ActionHold || action > ActionBuy {
		return StepResult{}, fmt.Errorf("env: invalid action %d", int(action))
	}

	// Re-read the current bar, then trade against it.
	s := e.stateAt(e.state.Pointer, e.state.Owned, e.state.CashInHand)
	s = applyTrade(s, action)

	// Reward is a range-derived signal from the current bar, independent of
	// the portfolio.
	reward := (s.Bar.High - s.Bar.Close) / s.Bar.Low

	next := s.Pointer + 1
	done := next >= len(e.bars)
	if done {
		e.phase = phaseDone
		// Observation stays at the last valid bar.
	} else {
		s = e.stateAt(next, s.Owned, s.CashInHand)
	}
	e.state = s

	return StepResult{
		Obs:    e.observe(s),
		Reward: reward,
		Done:   done,
		Info:   Info{},
	}, nil
}

// stateAt builds the episode state for a pointer, substituting 0 for any
// indicator value still in its warm-up window.
func (e *Env) stateAt(ptr int, owned int64, cash float64) EpisodeState {
	return EpisodeState{
		Owned:      owned,
		CashInHand: cash,
		Bar:        e.bars[ptr],
		SMA:        zeroIfNaN(e.sma[ptr]),
		EMA:        zeroIfNaN(e.ema[ptr]),
		Oscillator: zeroIfNaN(e.osc[ptr]),
		Pointer:    ptr,
	}
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
