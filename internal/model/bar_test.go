package model

import (
	"errors"
	"math"
	"testing"
	"time"
)

func mkBars(closes ...float64) []Bar {
	base := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	bars := make([]Bar, len(closes))
	for i, c := range closes {
		bars[i] = Bar{
			TS:     base.Add(time.Duration(i) * time.Minute),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 100,
		}
	}
	return bars
}

func TestValidateSeries_Empty(t *testing.T) {
	if err := ValidateSeries(nil); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestValidateSeries_NonMonotonic(t *testing.T) {
	bars := mkBars(10, 11, 12)
	bars[2].TS = bars[1].TS // duplicate timestamp

	if err := ValidateSeries(bars); !errors.Is(err, ErrNonMonotonic) {
		t.Fatalf("expected ErrNonMonotonic, got %v", err)
	}
}

func TestValidateSeries_NaNField(t *testing.T) {
	bars := mkBars(10, 11, 12)
	bars[1].Volume = math.NaN()

	if err := ValidateSeries(bars); !errors.Is(err, ErrBadValue) {
		t.Fatalf("expected ErrBadValue, got %v", err)
	}
}

func TestValidateSeries_OK(t *testing.T) {
	if err := ValidateSeries(mkBars(10, 11, 12)); err != nil {
		t.Fatalf("valid series rejected: %v", err)
	}
}

func TestCloses(t *testing.T) {
	closes := Closes(mkBars(10, 20, 30))
	want := []float64{10, 20, 30}
	for i := range want {
		if closes[i] != want[i] {
			t.Fatalf("closes[%d] = %v, want %v", i, closes[i], want[i])
		}
	}
}
