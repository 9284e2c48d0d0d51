// Package depth implements the tick-scaled price primitive and the
// per-symbol order book state that the replication engine mutates.
package depth

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ScaledPrice is a price encoded as an integer count of ticks for one
// symbol's tick size. Equality and hashing are defined on Value alone —
// Scale is carried for construction and Next, not compared, because every
// ScaledPrice in scope shares its symbol's scale by convention.
type ScaledPrice struct {
	Value int64
	Scale int64
}

// NewScaledPrice builds a ScaledPrice from a decimal price string and a
// decimal tick-size string: scale = round(1/tick), value = round(price*scale).
// Malformed input is a programmer error — callers validate upstream (the
// exchange client only ever passes tick sizes and prices it has already
// parsed out of a well-formed REST/WS payload).
func NewScaledPrice(price, tick string) (ScaledPrice, error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return ScaledPrice{}, fmt.Errorf("depth: invalid price %q: %w", price, err)
	}
	t, err := decimal.NewFromString(tick)
	if err != nil {
		return ScaledPrice{}, fmt.Errorf("depth: invalid tick size %q: %w", tick, err)
	}
	if t.IsZero() {
		return ScaledPrice{}, fmt.Errorf("depth: tick size must be nonzero")
	}
	scale := decimal.NewFromInt(1).DivRound(t, 0).Round(0)
	value := p.Mul(scale).Round(0)
	return ScaledPrice{Value: value.IntPart(), Scale: scale.IntPart()}, nil
}

// Next returns the ScaledPrice k ticks away, same scale.
func (s ScaledPrice) Next(k int64) ScaledPrice {
	return ScaledPrice{Value: s.Value + k, Scale: s.Scale}
}

// IsNextAskForBid reports whether ask is exactly one tick above s, i.e.
// s and ask form a contiguous top-of-book.
func (s ScaledPrice) IsNextAskForBid(ask ScaledPrice) bool {
	return s.Value+1 == ask.Value
}

// Equal compares ScaledPrices on Value alone.
func (s ScaledPrice) Equal(o ScaledPrice) bool {
	return s.Value == o.Value
}

// String renders the price back to a decimal string (value/scale). Used by
// sinks that persist a human-readable price rather than the tick-indexed
// pair.
func (s ScaledPrice) String() string {
	if s.Scale == 0 {
		return "0"
	}
	return decimal.NewFromInt(s.Value).DivRound(decimal.NewFromInt(s.Scale), 18).String()
}
