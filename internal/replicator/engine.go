// Package replicator implements the per-run, multi-symbol depth
// replication state machine: BOOTSTRAP buffering, STEADY diff application,
// and the global RESYNC triggered by any one symbol's desync.
package replicator

import (
	"fmt"

	"github.com/BullionBear/depthkeeper/internal/depth"
)

// DesyncError signals a gap or ordering violation detected by
// ValidateFirstPending/ValidateContinuity. It never crosses the package
// boundary to the exchange client — the supervisor handles it as a global
// reset.
type DesyncError struct {
	Symbol string
	Reason string
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("replicator: desync on %s: %s", e.Symbol, e.Reason)
}

// Engine holds the working state for every configured symbol and
// implements the STEADY-state diff pipeline. The supervisor (supervisor.go)
// owns the INIT/BOOTSTRAP/RESYNC transitions around it.
type Engine struct {
	symbols    []string
	depthLimit int
	states     map[string]*depth.SymbolState
}

// NewEngine creates an Engine with fresh, empty per-symbol state.
func NewEngine(symbols []string, depthLimit int) *Engine {
	states := make(map[string]*depth.SymbolState, len(symbols))
	for _, s := range symbols {
		states[s] = depth.NewSymbolState()
	}
	return &Engine{symbols: symbols, depthLimit: depthLimit, states: states}
}

// Reset clears every symbol's book and pending diffs — the RESYNC
// transition. The engine is immediately ready to re-enter BOOTSTRAP.
func (e *Engine) Reset() {
	for _, st := range e.states {
		st.Reset()
	}
}

// BufferBootstrapDiff records an inbound diff while still in BOOTSTRAP.
// The producer must not apply diffs during BOOTSTRAP, only buffer them.
func (e *Engine) BufferBootstrapDiff(diff depth.DepthDiff) {
	if st, ok := e.states[diff.Symbol]; ok {
		st.RecordDiff(diff)
	}
}

// BootstrapComplete reports whether every configured symbol has at least
// one buffered diff — the depth_available signal.
func (e *Engine) BootstrapComplete() bool {
	for _, sym := range e.symbols {
		if len(e.states[sym].Pending) == 0 {
			return false
		}
	}
	return true
}

// InstallSnapshot installs a freshly fetched DeepSnapshot for symbol,
// completing its BOOTSTRAP→STEADY transition.
func (e *Engine) InstallSnapshot(symbol string, snap depth.DeepSnapshot) {
	if st, ok := e.states[symbol]; ok {
		st.InstallSnapshot(snap)
	}
}

// ApplyDiff runs the STEADY-state pipeline for one inbound diff: record,
// one-time filter+bracket check, continuity check, cursor update, and
// project. Returns the dispatchable Snapshot on success, or a *DesyncError
// if the diff cannot be reconciled without a gap.
func (e *Engine) ApplyDiff(diff depth.DepthDiff) (*depth.Snapshot, error) {
	st, ok := e.states[diff.Symbol]
	if !ok {
		return nil, fmt.Errorf("replicator: diff for unconfigured symbol %s", diff.Symbol)
	}

	st.RecordDiff(diff)

	if !st.InitialFilterDone {
		st.FilterPending()
		st.InitialFilterDone = true
		if !st.ValidateFirstPending() {
			return nil, &DesyncError{Symbol: diff.Symbol, Reason: "first retained diff does not bracket snapshot cursor"}
		}
	}

	if !st.ValidateContinuity(diff.LastFinalUpdateID) {
		return nil, &DesyncError{Symbol: diff.Symbol, Reason: "continuity gap between consecutive diffs"}
	}

	st.RecordCursor(diff.FinalUpdateID)

	if err := st.ApplyAndProject(e.depthLimit); err != nil {
		return nil, err
	}

	snap := st.Snapshot(diff.Symbol, diff.EventTimeMs)
	return &snap, nil
}
