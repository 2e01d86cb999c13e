package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMASeries_WarmupAndValue(t *testing.T) {
	out := SMASeries([]float64{10, 20, 30}, 2)

	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("expected NaN warm-up, got %v, %v", out[0], out[1])
	}
	if !almostEqual(out[2], 25.0) {
		t.Fatalf("sma[2] = %v, want 25.0", out[2])
	}
}

func TestSMASeries_RollingWindow(t *testing.T) {
	out := SMASeries([]float64{1, 2, 3, 4, 5, 6}, 3)

	// Window ending at index 5 covers {4, 5, 6}
	if !almostEqual(out[5], 5.0) {
		t.Fatalf("sma[5] = %v, want 5.0", out[5])
	}
	// Window ending at index 3 covers {2, 3, 4}
	if !almostEqual(out[3], 3.0) {
		t.Fatalf("sma[3] = %v, want 3.0", out[3])
	}
}

func TestEMASeries_SeededFromFirst(t *testing.T) {
	closes := []float64{10, 13, 16}
	out := EMASeries(closes, 2) // multiplier = 2/3

	if !almostEqual(out[0], 10.0) {
		t.Fatalf("ema[0] = %v, want seed 10.0", out[0])
	}
	want1 := 13*2.0/3 + 10*1.0/3
	if !almostEqual(out[1], want1) {
		t.Fatalf("ema[1] = %v, want %v", out[1], want1)
	}
	want2 := 16*2.0/3 + want1*1.0/3
	if !almostEqual(out[2], want2) {
		t.Fatalf("ema[2] = %v, want %v", out[2], want2)
	}
}

func TestOscillatorSeries_HandComputed(t *testing.T) {
	// period=2, alpha=2/3; deltas are +2, -1, +2
	out := OscillatorSeries([]float64{10, 12, 11, 13}, 2)

	if !math.IsNaN(out[0]) {
		t.Fatalf("osc[0] = %v, want NaN", out[0])
	}
	// Seed: avgGain=2, avgLoss=0 -> clamp to 100
	if !almostEqual(out[1], 100.0) {
		t.Fatalf("osc[1] = %v, want 100.0", out[1])
	}
	// avgGain = 0*2/3 + 2*1/3 = 2/3; avgLoss = 1*2/3 = 2/3; rs=1 -> 50
	if !almostEqual(out[2], 50.0) {
		t.Fatalf("osc[2] = %v, want 50.0", out[2])
	}
	// avgGain = 2*2/3 + (2/3)*1/3 = 14/9; avgLoss = (2/3)*1/3 = 2/9; rs=7 -> 87.5
	if !almostEqual(out[3], 87.5) {
		t.Fatalf("osc[3] = %v, want 87.5", out[3])
	}
}

func TestOscillatorSeries_AllGainsClampsTo100(t *testing.T) {
	out := OscillatorSeries([]float64{1, 2, 3, 4, 5, 6, 7}, 3)
	for i := 1; i < len(out); i++ {
		if !almostEqual(out[i], 100.0) {
			t.Fatalf("osc[%d] = %v, want 100.0 for monotone gains", i, out[i])
		}
	}
}

func TestOscillatorSeries_AllLossesNearZero(t *testing.T) {
	out := OscillatorSeries([]float64{7, 6, 5, 4, 3, 2, 1}, 3)
	for i := 1; i < len(out); i++ {
		if !almostEqual(out[i], 0.0) {
			t.Fatalf("osc[%d] = %v, want 0.0 for monotone losses", i, out[i])
		}
	}
}

func TestStreaming_MatchesSeries(t *testing.T) {
	closes := []float64{10, 12, 9, 14, 13, 15, 11, 16, 18, 17}

	sma := NewSMA(3)
	ema := NewEMA(3)
	osc := NewOscillator(3)

	smaSeries := SMASeries(closes, 3)
	emaSeries := EMASeries(closes, 3)
	oscSeries := OscillatorSeries(closes, 3)

	for i, c := range closes {
		sma.Update(c)
		ema.Update(c)
		osc.Update(c)

		if i >= 3 && !almostEqual(sma.Value(), smaSeries[i]) {
			t.Fatalf("sma mismatch at %d: %v vs %v", i, sma.Value(), smaSeries[i])
		}
		if !almostEqual(ema.Value(), emaSeries[i]) {
			t.Fatalf("ema mismatch at %d: %v vs %v", i, ema.Value(), emaSeries[i])
		}
		if i >= 1 && !almostEqual(osc.Value(), oscSeries[i]) {
			t.Fatalf("osc mismatch at %d: %v vs %v", i, osc.Value(), oscSeries[i])
		}
	}
}

func TestMaxIgnoringNaN(t *testing.T) {
	vals := []float64{math.NaN(), 3, 7, math.NaN(), 5}
	if got := MaxIgnoringNaN(vals); got != 7 {
		t.Fatalf("max = %v, want 7", got)
	}
	if got := MaxIgnoringNaN([]float64{math.NaN()}); got != 0 {
		t.Fatalf("max of all-NaN = %v, want 0", got)
	}
}
