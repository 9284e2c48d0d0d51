// Package exchange defines the venue-agnostic contract the replication
// engine drives: fetch metadata, fetch a deep snapshot, and listen for the
// tagged stream of depth diffs and aggregate trades.
package exchange

import (
	"context"

	"github.com/BullionBear/depthkeeper/internal/depth"
)

// Exchange is implemented once per venue (see internal/exchange/binanceperp).
type Exchange interface {
	// GetExchangeInfo fetches tick sizes for the requested symbols. Returns
	// ConfigError if the venue's response does not cover every requested
	// symbol.
	GetExchangeInfo(ctx context.Context, symbols []string) (depth.ExchangeInfo, error)

	// GetDepth fetches a one-shot deep snapshot for symbol at limit depth.
	GetDepth(ctx context.Context, symbol string, limit int, info depth.ExchangeInfo) (depth.DeepSnapshot, error)

	// Listen opens one multiplexed connection subscribed to depth diffs and
	// aggregate trades for every symbol, and returns a channel of tagged
	// events. The channel closes when ctx is canceled or the connection
	// terminates with an unrecoverable error.
	Listen(ctx context.Context, symbols []string, info depth.ExchangeInfo, wsSpeedMs int) (<-chan Event, error)
}

// EventKind tags the variant carried by an Event.
type EventKind int

const (
	EventDepthDiff EventKind = iota
	EventAggTrade
)

// Event is the tagged union yielded by Listen.
type Event struct {
	Kind      EventKind
	DepthDiff *depth.DepthDiff
	AggTrade  *depth.AggTrade
}
