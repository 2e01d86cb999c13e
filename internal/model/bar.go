// Package model defines the shared market data types for the simulator.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Bar represents one OHLCV row of the input price series.
// Bars are immutable once loaded; the series is read-only input.
type Bar struct {
	TS     time.Time `json:"ts"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// JSON returns the JSON-encoded bar (ignoring errors for hot-path usage).
func (b *Bar) JSON() []byte {
	data, _ := json.Marshal(b)
	return data
}

// Series validation errors. All are construction-time failures with no recovery.
var (
	ErrEmptySeries  = errors.New("model: price series is empty")
	ErrNonMonotonic = errors.New("model: timestamps not strictly increasing")
	ErrBadValue     = errors.New("model: non-finite OHLCV value")
)

// ValidateSeries checks that bars form a usable input series: non-empty,
// strictly increasing timestamps, and finite OHLCV fields throughout.
func ValidateSeries(bars []Bar) error {
	if len(bars) == 0 {
		return ErrEmptySeries
	}
	for i, b := range bars {
		for _, v := range [5]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: bar %d (%s)", ErrBadValue, i, b.TS.Format(time.RFC3339))
			}
		}
		if i > 0 && !bars[i-1].TS.Before(b.TS) {
			return fmt.Errorf("%w: bar %d (%s) <= bar %d", ErrNonMonotonic, i, b.TS.Format(time.RFC3339), i-1)
		}
	}
	return nil
}

// Closes extracts the close column from a series.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
