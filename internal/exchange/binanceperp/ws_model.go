package binanceperp

import "encoding/json"

// wsCombinedFrame wraps every message on a combined-stream connection:
// {"stream": "<name>", "data": {...}}. Data is left raw so the `e`
// discriminator can be peeked before a type-specific unmarshal.
type wsCombinedFrame struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// wsEventEnvelope is decoded just enough to dispatch on the `e` field.
type wsEventEnvelope struct {
	EventType string `json:"e"`
}

// wsDepthEvent is the diff-depth stream payload.
type wsDepthEvent struct {
	EventType     string     `json:"e"`
	EventTime     int64      `json:"E"`
	Symbol        string     `json:"s"`
	FirstUpdateID int64      `json:"U"`
	FinalUpdateID int64      `json:"u"`
	PrevUpdateID  int64      `json:"pu"`
	Bids          [][]string `json:"b"`
	Asks          [][]string `json:"a"`
}

// wsAggTradeEvent is the aggregate-trade stream payload.
type wsAggTradeEvent struct {
	EventType    string `json:"e"`
	EventTime    int64  `json:"E"`
	Symbol       string `json:"s"`
	AggTradeID   int64  `json:"a"`
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	TradeTime    int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
}
