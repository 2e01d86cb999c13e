// Package indicator provides technical indicator calculations over close prices.
//
// Each indicator exists in two forms: a streaming type fed one price at a
// time (Update/Value/Ready), and a series function that runs the streaming
// form over a full close series and returns an index-aligned []float64 with
// NaN for the warm-up window.
package indicator

// Indicator is the interface for all streaming technical indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "SMA", "OSC").
	Name() string

	// Update feeds a new close price and recalculates.
	Update(price float64)

	// Value returns the current calculated value. Returns 0 if not enough data.
	Value() float64

	// Ready returns true when enough data has been accumulated.
	Ready() bool
}
