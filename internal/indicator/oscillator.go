package indicator

// Oscillator calculates an RSI-style momentum oscillator in [0,100].
// Per-bar price changes are split into nonnegative gain and loss sequences,
// each smoothed with an exponentially-weighted average of span = period
// (alpha = 2/(period+1), seeded from the first change).
//
// When the smoothed average loss is zero the oscillator clamps to 100
// rather than dividing by zero. Update is O(1) per price.
type Oscillator struct {
	period    int
	alpha     float64
	count     int
	prevClose float64
	avgGain   float64
	avgLoss   float64
	current   float64
}

// NewOscillator creates a new oscillator with the given period (typically 14).
func NewOscillator(period int) *Oscillator {
	return &Oscillator{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

func (o *Oscillator) Name() string { return "OSC" }

func (o *Oscillator) Update(price float64) {
	o.count++

	if o.count == 1 {
		// First price, no delta yet.
		o.prevClose = price
		return
	}

	delta := price - o.prevClose
	o.prevClose = price

	gain := 0.0
	loss := 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	if o.count == 2 {
		// Seed both averages from the first change
		o.avgGain = gain
		o.avgLoss = loss
	} else {
		o.avgGain = gain*o.alpha + o.avgGain*(1-o.alpha)
		o.avgLoss = loss*o.alpha + o.avgLoss*(1-o.alpha)
	}

	if o.avgLoss == 0 {
		o.current = 100.0
	} else {
		rs := o.avgGain / o.avgLoss
		o.current = 100.0 - (100.0 / (1.0 + rs))
	}
}

func (o *Oscillator) Value() float64 { return o.current }
func (o *Oscillator) Ready() bool    { return o.count >= 2 }

// Reset clears the oscillator state for reuse.
func (o *Oscillator) Reset() {
	o.count = 0
	o.prevClose = 0
	o.avgGain = 0
	o.avgLoss = 0
	o.current = 0
}
