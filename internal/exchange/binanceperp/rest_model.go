package binanceperp

// restExchangeInfoResponse is the top-level /fapi/v1/exchangeInfo response.
type restExchangeInfoResponse struct {
	Symbols []restSymbolInfo `json:"symbols"`
}

type restSymbolInfo struct {
	Symbol       string       `json:"symbol"`
	Status       string       `json:"status"`
	ContractType string       `json:"contractType"`
	Filters      []restFilter `json:"filters"`
}

type restFilter struct {
	FilterType string `json:"filterType"`
	TickSize   string `json:"tickSize"`
}

// restDepthResponse is the /fapi/v1/depth response.
type restDepthResponse struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}
