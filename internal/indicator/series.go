package indicator

import "math"

// SMASeries computes the simple moving average of closes over a trailing
// window of `period` bars. The warm-up window (indices < period) is NaN.
func SMASeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	sma := NewSMA(period)
	for i, c := range closes {
		sma.Update(c)
		if i < period {
			out[i] = math.NaN()
			continue
		}
		out[i] = sma.Value()
	}
	return out
}

// EMASeries computes the exponentially-weighted mean of closes with smoothing
// 2/(period+1), seeded from the first close. Defined at every index.
func EMASeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	ema := NewEMA(period)
	for i, c := range closes {
		ema.Update(c)
		out[i] = ema.Value()
	}
	return out
}

// OscillatorSeries computes the momentum oscillator over closes. Index 0 has
// no price change yet and is NaN; every later index yields a value.
func OscillatorSeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	osc := NewOscillator(period)
	for i, c := range closes {
		osc.Update(c)
		if !osc.Ready() {
			out[i] = math.NaN()
			continue
		}
		out[i] = osc.Value()
	}
	return out
}

// MaxIgnoringNaN returns the maximum finite value in vals, or 0 if none.
// Warm-up NaNs are skipped so they never poison normalization bounds.
func MaxIgnoringNaN(vals []float64) float64 {
	max := 0.0
	found := false
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if !found || v > max {
			max = v
			found = true
		}
	}
	return max
}
