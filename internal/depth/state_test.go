package depth

import "testing"

func sp(value int64) ScaledPrice {
	return ScaledPrice{Value: value, Scale: 100}
}

func baseSnapshot() DeepSnapshot {
	bids := map[ScaledPrice]string{}
	asks := map[ScaledPrice]string{}
	for k := int64(0); k < 5; k++ {
		bids[sp(14050-k)] = "1.0"
		asks[sp(14051+k)] = "1.0"
	}
	fb, fa := sp(14050), sp(14051)
	return DeepSnapshot{
		Symbol:       "SOLUSDT",
		LastUpdateID: 100,
		Bids:         bids,
		Asks:         asks,
		FirstBid:     &fb,
		FirstAsk:     &fa,
	}
}

// Scenario 1: clean bootstrap, single symbol.
func TestCleanBootstrapSingleSymbol(t *testing.T) {
	state := NewSymbolState()
	state.InstallSnapshot(baseSnapshot())

	diff := DepthDiff{
		Symbol:        "SOLUSDT",
		EventTimeMs:   1000,
		FirstUpdateID: 95,
		FinalUpdateID: 101,
		Bids:          map[ScaledPrice]string{},
		Asks:          map[ScaledPrice]string{},
	}
	state.RecordDiff(diff)
	state.FilterPending()
	state.InitialFilterDone = true

	if !state.ValidateFirstPending() {
		t.Fatal("expected first pending diff to bracket the cursor")
	}
	if !state.ValidateContinuity(diff.LastFinalUpdateID) {
		t.Fatal("expected first application to always pass continuity")
	}
	state.RecordCursor(diff.FinalUpdateID)

	if err := state.ApplyAndProject(5); err != nil {
		t.Fatalf("ApplyAndProject: %v", err)
	}

	if len(state.Book.Bids) != 5 || len(state.Book.Asks) != 5 {
		t.Fatalf("expected 5 levels each side, got bids=%d asks=%d", len(state.Book.Bids), len(state.Book.Asks))
	}
	if !state.Book.FirstBid.IsNextAskForBid(*state.Book.FirstAsk) {
		t.Error("expected contiguous top of book")
	}
}

// Scenario 2: a continuity gap is detected (the reset it leads to is the
// replicator's job).
func TestContinuityGapDetected(t *testing.T) {
	state := NewSymbolState()
	state.InstallSnapshot(baseSnapshot())
	state.RecordCursor(101) // as if scenario 1 already applied

	incoming := DepthDiff{Symbol: "SOLUSDT", FinalUpdateID: 150, LastFinalUpdateID: 999}
	if state.ValidateContinuity(incoming.LastFinalUpdateID) {
		t.Fatal("expected continuity gap (999 != 101) to be detected")
	}
}

// Scenario 3: zeroing a level leaves anchors unchanged.
func TestZeroingLevel(t *testing.T) {
	state := NewSymbolState()
	state.InstallSnapshot(baseSnapshot())
	state.RecordCursor(100)

	diff := DepthDiff{
		Symbol:            "SOLUSDT",
		FinalUpdateID:     102,
		LastFinalUpdateID: 100,
		Bids:              map[ScaledPrice]string{sp(14050): "0"},
		Asks:              map[ScaledPrice]string{},
	}
	state.RecordDiff(diff)
	if err := state.ApplyAndProject(5); err != nil {
		t.Fatalf("ApplyAndProject: %v", err)
	}

	if got := state.Book.Bids[sp(14050)]; got != "0" {
		t.Errorf("bids[14050] = %q, want 0", got)
	}
	if state.Book.FirstBid.Value != 14050 || state.Book.FirstAsk.Value != 14051 {
		t.Error("expected anchors to remain unchanged when diff has no promoted anchor")
	}
}

// Scenario 4: top-of-book shift re-centers the window.
func TestTopOfBookShift(t *testing.T) {
	state := NewSymbolState()
	state.InstallSnapshot(baseSnapshot())
	state.RecordCursor(100)

	newBid, newAsk := sp(14051), sp(14052)
	diff := DepthDiff{
		Symbol:            "SOLUSDT",
		FinalUpdateID:     103,
		LastFinalUpdateID: 100,
		Bids:              map[ScaledPrice]string{sp(14051): "2.0"},
		Asks:              map[ScaledPrice]string{sp(14052): "2.0"},
		FirstBid:          &newBid,
		FirstAsk:          &newAsk,
	}
	state.RecordDiff(diff)
	if err := state.ApplyAndProject(5); err != nil {
		t.Fatalf("ApplyAndProject: %v", err)
	}

	if state.Book.FirstBid.Value != 14051 || state.Book.FirstAsk.Value != 14052 {
		t.Fatalf("expected anchors to promote to (14051, 14052), got (%d, %d)",
			state.Book.FirstBid.Value, state.Book.FirstAsk.Value)
	}
	if _, ok := state.Book.Bids[sp(14046)]; ok {
		t.Error("expected level outside new window to be dropped")
	}
	if _, ok := state.Book.Bids[sp(14051)]; !ok {
		t.Error("expected new top bid to be present in rebuilt window")
	}
}

// Projection is idempotent when applying with no pending diffs.
func TestApplyAndProjectIdempotentWithNoPending(t *testing.T) {
	state := NewSymbolState()
	state.InstallSnapshot(baseSnapshot())

	before := len(state.Book.Bids)
	if err := state.ApplyAndProject(5); err != nil {
		t.Fatalf("ApplyAndProject: %v", err)
	}
	if len(state.Book.Bids) != before {
		t.Errorf("expected book unchanged with no pending diffs, got %d levels, want %d", len(state.Book.Bids), before)
	}
}

func TestResetClearsState(t *testing.T) {
	state := NewSymbolState()
	state.InstallSnapshot(baseSnapshot())
	state.RecordDiff(DepthDiff{Symbol: "SOLUSDT", FinalUpdateID: 101})
	state.Reset()

	if len(state.Pending) != 0 {
		t.Error("expected pending diffs cleared after reset")
	}
	if state.Book.FirstBid != nil || state.Book.FirstAsk != nil {
		t.Error("expected book anchors cleared after reset")
	}
}

func TestValidateFirstPendingFalseWhenEmpty(t *testing.T) {
	state := NewSymbolState()
	state.InstallSnapshot(baseSnapshot())
	if state.ValidateFirstPending() {
		t.Error("expected ValidateFirstPending to be false with nothing pending")
	}
}

func TestFilterPendingDropsStaleDiffs(t *testing.T) {
	state := NewSymbolState()
	state.InstallSnapshot(baseSnapshot()) // cursor = 100
	state.RecordDiff(DepthDiff{Symbol: "SOLUSDT", FinalUpdateID: 50})
	state.RecordDiff(DepthDiff{Symbol: "SOLUSDT", FinalUpdateID: 101})
	state.FilterPending()

	if len(state.Pending) != 1 {
		t.Fatalf("expected 1 retained diff, got %d", len(state.Pending))
	}
	if _, ok := state.Pending[101]; !ok {
		t.Error("expected diff with FinalUpdateID >= cursor to be retained")
	}
}
