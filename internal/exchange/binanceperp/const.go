package binanceperp

import "time"

// Mainnet REST API base URL.
const MainnetBaseURL = "https://fapi.binance.com"

// Mainnet combined-stream WebSocket base URL.
const MainnetWSBaseURL = "wss://fstream.binance.com"

// REST paths used by this adapter.
const (
	pathExchangeInfo = "/fapi/v1/exchangeInfo"
	pathDepth        = "/fapi/v1/depth"
)

const (
	statusTrading            = "TRADING"
	contractTypePerpetual    = "PERPETUAL"
	filterTypePriceFilter    = "PRICE_FILTER"
	streamTypeDepthUpdate    = "depthUpdate"
	streamTypeAggTrade       = "aggTrade"
)

const (
	pingInterval   = 3 * time.Minute
	reconnectDelay = 5 * time.Second
	dialTimeout    = 10 * time.Second
)
