package env

import "stocksim/internal/model"

// EpisodeState is the mutable core record of one episode. Each transition
// replaces it wholesale rather than mutating fields in place.
type EpisodeState struct {
	Owned      int64     `json:"owned"`
	CashInHand float64   `json:"cash_in_hand"`
	Bar        model.Bar `json:"bar"`
	SMA        float64   `json:"sma"`
	EMA        float64   `json:"ema"`
	Oscillator float64   `json:"oscillator"`
	Pointer    int       `json:"pointer"`
}

// Equity returns the liquidation value of the state: cash plus holdings
// marked at the current close.
func (s EpisodeState) Equity() float64 {
	return s.CashInHand + float64(s.Owned)*s.Bar.Close
}

// applyTrade applies the trade rule for an action and returns the new state.
// No action ever fails: selling with nothing and buying without funds are
// no-ops.
//
//   - sell: liquidate all holdings at the current close
//   - buy:  purchase exactly one share if cash covers the close
func applyTrade(s EpisodeState, action Action) EpisodeState {
	switch action {
	case ActionSell:
		if s.Owned > 0 {
			s.CashInHand += float64(s.Owned) * s.Bar.Close
			s.Owned = 0
		}
	case ActionBuy:
		if s.CashInHand >= s.Bar.Close {
			s.Owned++
			s.CashInHand -= s.Bar.Close
		}
	}
	return s
}
