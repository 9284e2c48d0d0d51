package queue

import "github.com/BullionBear/depthkeeper/internal/depth"

// DepthRecord is the wire shape for one applied snapshot, keyed by the
// human-readable decimal price rather than the tick-indexed pair so the
// writer process needs no knowledge of any symbol's tick size.
type DepthRecord struct {
	Symbol      string            `msgpack:"symbol"`
	EventTimeMs int64             `msgpack:"event_time_ms"`
	Bids        map[string]string `msgpack:"bids"`
	Asks        map[string]string `msgpack:"asks"`
}

// AggTradeRecord is the wire shape for one aggregate trade.
type AggTradeRecord struct {
	Symbol      string `msgpack:"symbol"`
	EventTimeMs int64  `msgpack:"event_time_ms"`
	TradeID     int64  `msgpack:"trade_id"`
	Price       string `msgpack:"price"`
	Quantity    string `msgpack:"quantity"`
	Side        string `msgpack:"side"`
}

func toDepthRecord(snap depth.Snapshot) DepthRecord {
	bids := make(map[string]string, len(snap.Bids))
	for price, qty := range snap.Bids {
		bids[price.String()] = qty
	}
	asks := make(map[string]string, len(snap.Asks))
	for price, qty := range snap.Asks {
		asks[price.String()] = qty
	}
	return DepthRecord{Symbol: snap.Symbol, EventTimeMs: snap.EventTimeMs, Bids: bids, Asks: asks}
}

func toAggTradeRecord(trade depth.AggTrade) AggTradeRecord {
	side := "SHORT"
	if trade.Side == depth.TradeSideLong {
		side = "LONG"
	}
	return AggTradeRecord{
		Symbol: trade.Symbol, EventTimeMs: trade.EventTimeMs, TradeID: trade.TradeID,
		Price: trade.Price, Quantity: trade.Quantity, Side: side,
	}
}
