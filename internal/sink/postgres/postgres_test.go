package postgres

import (
	"testing"

	"github.com/BullionBear/depthkeeper/internal/depth"
)

func TestRowsForSnapshotCountAndTagging(t *testing.T) {
	bid := depth.ScaledPrice{Value: 14050, Scale: 100}
	ask := depth.ScaledPrice{Value: 14051, Scale: 100}
	snap := depth.Snapshot{
		Symbol:      "SOLUSDT",
		EventTimeMs: 1700000000000,
		Bids:        map[depth.ScaledPrice]string{bid: "1.5"},
		Asks:        map[depth.ScaledPrice]string{ask: "2.5"},
	}

	rows := rowsForSnapshot(snap)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	var sawBid, sawAsk bool
	for _, r := range rows {
		if r.ID == "" {
			t.Error("expected non-empty generated ID")
		}
		if r.Symbol != "SOLUSDT" {
			t.Errorf("Symbol = %q, want SOLUSDT", r.Symbol)
		}
		switch r.Type {
		case "BID":
			sawBid = true
			if r.Price != "140.5" || r.Quantity != "1.5" {
				t.Errorf("bid row = %+v", r)
			}
		case "ASK":
			sawAsk = true
			if r.Price != "140.51" || r.Quantity != "2.5" {
				t.Errorf("ask row = %+v", r)
			}
		default:
			t.Errorf("unexpected row type %q", r.Type)
		}
	}
	if !sawBid || !sawAsk {
		t.Error("expected both a BID and an ASK row")
	}
}

func TestRowsForSnapshotEmpty(t *testing.T) {
	rows := rowsForSnapshot(depth.Snapshot{Symbol: "SOLUSDT"})
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}
