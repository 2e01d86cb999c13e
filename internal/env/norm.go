package env

import (
	"stocksim/internal/indicator"
	"stocksim/internal/model"
)

// ObsWidth is the fixed width of the observation vector.
const ObsWidth = 10

// Observation is the normalized state vector handed to the learning agent.
// Field order: owned, cash_in_hand, open, low, close, high, volume, sma,
// ema, oscillator. Every element is in [0,1].
type Observation [ObsWidth]float64

// headroom widens series-derived bounds so in-range values never sit exactly
// at the saturation point.
const headroom = 1.1

// bounds holds the fixed per-field normalization bounds, computed once over
// the entire series at construction.
type bounds struct {
	price  float64 // 1.1 x max close, shared by open/low/close/high
	volume float64
	sma    float64
	ema    float64
	osc    float64
}

func computeBounds(bars []model.Bar, sma, ema, osc []float64) bounds {
	maxClose := 0.0
	maxVolume := 0.0
	for _, b := range bars {
		if b.Close > maxClose {
			maxClose = b.Close
		}
		if b.Volume > maxVolume {
			maxVolume = b.Volume
		}
	}
	return bounds{
		price:  headroom * maxClose,
		volume: headroom * maxVolume,
		sma:    headroom * indicator.MaxIgnoringNaN(sma),
		ema:    headroom * indicator.MaxIgnoringNaN(ema),
		osc:    headroom * indicator.MaxIgnoringNaN(osc),
	}
}

// interp maps x linearly from [0, bound] onto [0, 1], saturating at both ends.
func interp(x, bound float64) float64 {
	if bound <= 0 || x <= 0 {
		return 0
	}
	if x >= bound {
		return 1
	}
	return x / bound
}

// selfBound normalizes x against itself. The interpolation range collapses to
// [0, x], so any positive value maps to exactly 1 and zero maps to 0. The
// holdings and cash fields become a binary "is nonzero" signal.
func selfBound(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// observe maps an episode state to the normalized observation vector.
func (e *Env) observe(s EpisodeState) Observation {
	return Observation{
		selfBound(float64(s.Owned)),
		selfBound(s.CashInHand),
		interp(s.Bar.Open, e.bounds.price),
		interp(s.Bar.Low, e.bounds.price),
		interp(s.Bar.Close, e.bounds.price),
		interp(s.Bar.High, e.bounds.price),
		interp(s.Bar.Volume, e.bounds.volume),
		interp(s.SMA, e.bounds.sma),
		interp(s.EMA, e.bounds.ema),
		interp(s.Oscillator, e.bounds.osc),
	}
}

// Vector returns the observation as a plain slice for serialization.
func (o Observation) Vector() []float64 {
	out := make([]float64, ObsWidth)
	copy(out, o[:])
	return out
}
