package depth

import "sort"

// BookState is the per-symbol working order book: a fixed-width window of
// price levels anchored on the best bid/ask.
type BookState struct {
	LastUpdateID int64
	Bids         map[ScaledPrice]string
	Asks         map[ScaledPrice]string
	FirstBid     *ScaledPrice
	FirstAsk     *ScaledPrice
}

// SymbolState is everything the replication engine tracks for one symbol:
// the current book, diffs awaiting application, and the continuity cursor
// that links consecutive diffs.
type SymbolState struct {
	Book                     BookState
	Pending                  map[int64]DepthDiff // keyed by FinalUpdateID
	InitialFilterDone        bool
	LastAppliedFinalUpdateID *int64
}

// NewSymbolState returns an empty, pre-BOOTSTRAP symbol state.
func NewSymbolState() *SymbolState {
	return &SymbolState{Pending: make(map[int64]DepthDiff)}
}

// InstallSnapshot sets the book from a freshly fetched DeepSnapshot. It
// deliberately leaves Pending untouched: diffs buffered during BOOTSTRAP
// stay queued so the first STEADY filter/validate pass sees the whole
// buffered run, not just the next arrival.
func (s *SymbolState) InstallSnapshot(snap DeepSnapshot) {
	s.Book = BookState{
		LastUpdateID: snap.LastUpdateID,
		Bids:         snap.Bids,
		Asks:         snap.Asks,
		FirstBid:     snap.FirstBid,
		FirstAsk:     snap.FirstAsk,
	}
}

// RecordDiff buffers an inbound diff, keyed by its FinalUpdateID.
func (s *SymbolState) RecordDiff(diff DepthDiff) {
	s.Pending[diff.FinalUpdateID] = diff
}

// FilterPending drops diffs that finalize before the book's cursor — they
// are already subsumed by the installed snapshot.
func (s *SymbolState) FilterPending() {
	cursor := s.Book.LastUpdateID
	for id, d := range s.Pending {
		if d.FinalUpdateID < cursor {
			delete(s.Pending, id)
		}
	}
}

func (s *SymbolState) sortedPendingIDs() []int64 {
	ids := make([]int64, 0, len(s.Pending))
	for id := range s.Pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ValidateFirstPending reports whether the earliest retained diff brackets
// the book's cursor — the precondition for applying the retained stream
// without a gap. Returns false (and thus a forced RESYNC) when there is
// nothing pending to validate.
func (s *SymbolState) ValidateFirstPending() bool {
	ids := s.sortedPendingIDs()
	if len(ids) == 0 {
		return false
	}
	first := s.Pending[ids[0]]
	cursor := s.Book.LastUpdateID
	return first.FirstUpdateID <= cursor && cursor <= first.FinalUpdateID
}

// ValidateContinuity checks that incomingLastFinalUpdateID (the diff's `pu`
// field) matches the final_update_id of the last diff actually applied. The
// very first application after bootstrap has nothing to compare against and
// always succeeds.
func (s *SymbolState) ValidateContinuity(incomingLastFinalUpdateID int64) bool {
	if s.LastAppliedFinalUpdateID == nil {
		return true
	}
	return *s.LastAppliedFinalUpdateID == incomingLastFinalUpdateID
}

// RecordCursor sets the continuity cursor to finalUpdateID.
func (s *SymbolState) RecordCursor(finalUpdateID int64) {
	id := finalUpdateID
	s.LastAppliedFinalUpdateID = &id
}

// ApplyAndProject applies every currently pending diff, in ascending
// FinalUpdateID order, promoting anchors and rebuilding the fixed-width
// bid/ask windows, then clears Pending. The window is total: every level
// from 0..depthLimit-1 is materialized on each side, using the diff's value
// if present, else the prior book's value, else "0".
func (s *SymbolState) ApplyAndProject(depthLimit int) error {
	for _, id := range s.sortedPendingIDs() {
		diff := s.Pending[id]

		if diff.FirstBid != nil && diff.FirstAsk != nil && diff.FirstBid.IsNextAskForBid(*diff.FirstAsk) {
			fb, fa := *diff.FirstBid, *diff.FirstAsk
			s.Book.FirstBid = &fb
			s.Book.FirstAsk = &fa
		}

		switch {
		case s.Book.FirstBid == nil:
			return &ErrMissingAnchor{Symbol: diff.Symbol, Side: SideBid}
		case s.Book.FirstAsk == nil:
			return &ErrMissingAnchor{Symbol: diff.Symbol, Side: SideAsk}
		}

		newBids := make(map[ScaledPrice]string, depthLimit)
		for k := 0; k < depthLimit; k++ {
			key := s.Book.FirstBid.Next(-int64(k))
			newBids[key] = levelValue(diff.Bids, s.Book.Bids, key)
		}
		newAsks := make(map[ScaledPrice]string, depthLimit)
		for k := 0; k < depthLimit; k++ {
			key := s.Book.FirstAsk.Next(int64(k))
			newAsks[key] = levelValue(diff.Asks, s.Book.Asks, key)
		}

		s.Book.Bids = newBids
		s.Book.Asks = newAsks
		s.Book.LastUpdateID = diff.FinalUpdateID
	}
	s.Pending = make(map[int64]DepthDiff)
	return nil
}

func levelValue(diffSide, bookSide map[ScaledPrice]string, key ScaledPrice) string {
	if v, ok := diffSide[key]; ok {
		return v
	}
	if v, ok := bookSide[key]; ok {
		return v
	}
	return "0"
}

// Reset clears all state for the symbol — the RESYNC transition.
func (s *SymbolState) Reset() {
	s.Book = BookState{}
	s.Pending = make(map[int64]DepthDiff)
	s.InitialFilterDone = false
	s.LastAppliedFinalUpdateID = nil
}

// Snapshot copies the current book into a dispatchable Snapshot.
func (s *SymbolState) Snapshot(symbol string, eventTimeMs int64) Snapshot {
	bids := make(map[ScaledPrice]string, len(s.Book.Bids))
	for k, v := range s.Book.Bids {
		bids[k] = v
	}
	asks := make(map[ScaledPrice]string, len(s.Book.Asks))
	for k, v := range s.Book.Asks {
		asks[k] = v
	}
	return Snapshot{Symbol: symbol, EventTimeMs: eventTimeMs, Bids: bids, Asks: asks}
}
