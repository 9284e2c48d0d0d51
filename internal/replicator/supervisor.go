package replicator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BullionBear/depthkeeper/internal/depth"
	"github.com/BullionBear/depthkeeper/internal/exchange"
)

// ErrBootstrapTimeout is returned when depth_available does not fire
// within the bootstrap window.
var ErrBootstrapTimeout = errors.New("replicator: bootstrap timed out waiting for initial diffs")

const defaultBootstrapTimeout = 10 * time.Second
const defaultRetryDelay = 2 * time.Second

// SinkDispatcher is the replication engine's only outbound collaborator.
// internal/sink.Dispatcher implements it; kept as an interface here so
// this package never imports internal/sink.
type SinkDispatcher interface {
	DispatchSnapshot(snap depth.Snapshot)
	DispatchAggTrade(trade depth.AggTrade)
}

// Supervisor drives the INIT→BOOTSTRAP→STEADY→(RESYNC→BOOTSTRAP) loop
// around one Engine: fetches exchange metadata, opens the listener,
// buffers diffs until every symbol has one, installs snapshots in
// parallel, then applies the steady-state diff pipeline until desync,
// transport failure, or cancellation.
type Supervisor struct {
	exchange         exchange.Exchange
	engine           *Engine
	dispatcher       SinkDispatcher
	symbols          []string
	depthLimit       int
	wsSpeedMs        int
	bootstrapTimeout time.Duration
	retryDelay       time.Duration
	logger           zerolog.Logger
}

// NewSupervisor builds a Supervisor with the given collaborators. Bootstrap
// timeout defaults to 10s and retry delay to 2s per the spec's timing.
func NewSupervisor(ex exchange.Exchange, engine *Engine, dispatcher SinkDispatcher, symbols []string, depthLimit, wsSpeedMs int, logger zerolog.Logger) *Supervisor {
	return &Supervisor{
		exchange:         ex,
		engine:           engine,
		dispatcher:       dispatcher,
		symbols:          symbols,
		depthLimit:       depthLimit,
		wsSpeedMs:        wsSpeedMs,
		bootstrapTimeout: defaultBootstrapTimeout,
		retryDelay:       defaultRetryDelay,
		logger:           logger,
	}
}

// Run executes the supervisor loop until ctx is canceled or a ConfigError
// aborts startup. TransportError/ProtocolError/bootstrap-timeout trigger a
// logged restart after retryDelay; DesyncError restarts immediately.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			s.logger.Info().Msg("supervisor stopping: context canceled")
			return nil
		}

		s.logger.Info().Msg("starting replication run")
		s.engine.Reset()

		err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			continue
		}

		var desync *DesyncError
		if errors.As(err, &desync) {
			s.logger.Warn().Err(err).Msg("desync detected, restarting immediately")
			continue
		}

		var cfgErr *exchange.ConfigError
		if errors.As(err, &cfgErr) {
			s.logger.Error().Err(err).Msg("fatal configuration error, aborting startup")
			return err
		}

		s.logger.Error().Err(err).Dur("retry_delay", s.retryDelay).Msg("replication run failed, retrying")
		select {
		case <-time.After(s.retryDelay):
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Supervisor) runOnce(ctx context.Context) error {
	info, err := s.exchange.GetExchangeInfo(ctx, s.symbols)
	if err != nil {
		return err
	}

	listenCtx, cancelListen := context.WithCancel(ctx)
	defer cancelListen()

	events, err := s.exchange.Listen(listenCtx, s.symbols, info, s.wsSpeedMs)
	if err != nil {
		return err
	}

	if err := s.bootstrap(ctx, events); err != nil {
		return err
	}

	if err := s.installSnapshots(ctx, info); err != nil {
		return err
	}

	for _, sym := range s.symbols {
		st := s.engine.states[sym]
		var latest *depth.DepthDiff
		for _, d := range st.Pending {
			if latest == nil || d.FinalUpdateID > latest.FinalUpdateID {
				latest = &d
			}
		}
		if latest != nil && latest.FinalUpdateID >= st.Book.LastUpdateID {
			snap, err := s.engine.ApplyDiff(*latest)
			if err != nil {
				return err
			}
			s.dispatcher.DispatchSnapshot(*snap)
		}
	}

	return s.steady(ctx, events)
}

func (s *Supervisor) bootstrap(ctx context.Context, events <-chan exchange.Event) error {
	timer := time.NewTimer(s.bootstrapTimeout)
	defer timer.Stop()

	for !s.engine.BootstrapComplete() {
		select {
		case ev, ok := <-events:
			if !ok {
				return errors.New("replicator: listener closed during bootstrap")
			}
			s.handleBootstrapEvent(ev)
		case <-timer.C:
			return ErrBootstrapTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Supervisor) handleBootstrapEvent(ev exchange.Event) {
	switch ev.Kind {
	case exchange.EventDepthDiff:
		s.engine.BufferBootstrapDiff(*ev.DepthDiff)
	case exchange.EventAggTrade:
		s.dispatcher.DispatchAggTrade(*ev.AggTrade)
	}
}

func (s *Supervisor) installSnapshots(ctx context.Context, info depth.ExchangeInfo) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(s.symbols))

	for _, sym := range s.symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			snap, err := s.exchange.GetDepth(ctx, symbol, s.depthLimit, info)
			if err != nil {
				errCh <- err
				return
			}
			s.engine.InstallSnapshot(symbol, snap)
		}(sym)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Supervisor) steady(ctx context.Context, events <-chan exchange.Event) error {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return errors.New("replicator: listener closed during steady state")
			}
			switch ev.Kind {
			case exchange.EventAggTrade:
				s.dispatcher.DispatchAggTrade(*ev.AggTrade)
			case exchange.EventDepthDiff:
				snap, err := s.engine.ApplyDiff(*ev.DepthDiff)
				if err != nil {
					return err
				}
				s.dispatcher.DispatchSnapshot(*snap)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
