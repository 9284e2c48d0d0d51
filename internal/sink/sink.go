// Package sink routes applied snapshots and agg trades to their
// persistence backends: a queryable Postgres projection and a
// durable msgpack log shipped across the loader/writer process
// boundary via a queue publisher.
package sink

import (
	"github.com/rs/zerolog"

	"github.com/BullionBear/depthkeeper/internal/depth"
)

// DBSink persists one applied snapshot as rows in the columnar store.
type DBSink interface {
	InsertSnapshot(snap depth.Snapshot) error
}

// LogPublisher ships one record across the process boundary toward the
// rotated binary log writer.
type LogPublisher interface {
	PublishSnapshot(snap depth.Snapshot) error
	PublishAggTrade(trade depth.AggTrade) error
}

// SinkError wraps a persistence failure. It never crosses back into
// internal/replicator: Dispatcher logs it and moves on, since a dropped
// row or log record does not by itself mean the in-memory book is out
// of sync with the exchange.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string { return "sink: " + e.Sink + ": " + e.Err.Error() }
func (e *SinkError) Unwrap() error { return e.Err }

// Dispatcher implements replicator.SinkDispatcher. Snapshot writes to the
// DB happen in a background goroutine (fire-and-forget, per spec's
// "best-effort" persistence stance); log publication is synchronous: the
// caller waits for each publish to return, so a slow queue applies
// backpressure to the replication loop that calls the dispatcher.
type Dispatcher struct {
	db     DBSink
	log    LogPublisher
	logger zerolog.Logger
}

func NewDispatcher(db DBSink, log LogPublisher, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{db: db, log: log, logger: logger}
}

func (d *Dispatcher) DispatchSnapshot(snap depth.Snapshot) {
	go func() {
		if err := d.db.InsertSnapshot(snap); err != nil {
			d.logger.Error().Err(&SinkError{Sink: "postgres", Err: err}).Str("symbol", snap.Symbol).Msg("failed to persist snapshot")
		}
	}()

	if err := d.log.PublishSnapshot(snap); err != nil {
		d.logger.Error().Err(&SinkError{Sink: "binarylog", Err: err}).Str("symbol", snap.Symbol).Msg("failed to publish snapshot")
	}
}

func (d *Dispatcher) DispatchAggTrade(trade depth.AggTrade) {
	if err := d.log.PublishAggTrade(trade); err != nil {
		d.logger.Error().Err(&SinkError{Sink: "binarylog", Err: err}).Str("symbol", trade.Symbol).Msg("failed to publish agg trade")
	}
}
