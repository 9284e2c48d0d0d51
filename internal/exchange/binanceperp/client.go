package binanceperp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/BullionBear/depthkeeper/internal/depth"
	"github.com/BullionBear/depthkeeper/internal/exchange"
)

// Client is the Binance USD-M perpetual futures adapter. It implements
// exchange.Exchange.
type Client struct {
	cfg *Config
}

// NewClient returns a Client bound to cfg.
func NewClient(cfg *Config) *Client {
	return &Client{cfg: cfg}
}

// GetExchangeInfo fetches tick sizes for the requested symbols, filtering
// to TRADING/PERPETUAL contracts only. Fails with exchange.ConfigError if
// any requested symbol is absent from the result.
func (c *Client) GetExchangeInfo(ctx context.Context, symbols []string) (depth.ExchangeInfo, error) {
	body, status, err := doUnsignedGet(ctx, c.cfg, pathExchangeInfo, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &exchange.TransportError{StatusCode: status, Msg: string(body)}
	}

	var resp restExchangeInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &exchange.ProtocolError{Msg: "decode exchangeInfo response", Err: err}
	}

	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[s] = true
	}

	info := make(depth.ExchangeInfo, len(symbols))
	for _, sym := range resp.Symbols {
		if !wanted[sym.Symbol] {
			continue
		}
		if sym.Status != statusTrading || sym.ContractType != contractTypePerpetual {
			continue
		}
		for _, f := range sym.Filters {
			if f.FilterType == filterTypePriceFilter {
				info[sym.Symbol] = depth.SymbolInfo{TickSize: f.TickSize}
				break
			}
		}
	}

	var missing []string
	for _, s := range symbols {
		if _, ok := info[s]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return nil, &exchange.ConfigError{Msg: fmt.Sprintf("venue did not report symbol(s): %v", missing)}
	}

	return info, nil
}

// GetDepth fetches a one-shot deep snapshot for symbol at limit depth.
func (c *Client) GetDepth(ctx context.Context, symbol string, limit int, info depth.ExchangeInfo) (depth.DeepSnapshot, error) {
	sym, ok := info[symbol]
	if !ok {
		return depth.DeepSnapshot{}, &exchange.ConfigError{Msg: fmt.Sprintf("no tick size known for %s", symbol)}
	}

	body, status, err := doUnsignedGet(ctx, c.cfg, pathDepth, map[string]string{
		"symbol": symbol,
		"limit":  strconv.Itoa(limit),
	})
	if err != nil {
		return depth.DeepSnapshot{}, err
	}
	if status != http.StatusOK {
		return depth.DeepSnapshot{}, &exchange.TransportError{StatusCode: status, Msg: string(body)}
	}

	var resp restDepthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return depth.DeepSnapshot{}, &exchange.ProtocolError{Msg: "decode depth response", Err: err}
	}

	bids, firstBid, err := depth.BuildPriceLevels(resp.Bids, sym.TickSize, false)
	if err != nil {
		return depth.DeepSnapshot{}, &exchange.ProtocolError{Msg: "parse bids", Err: err}
	}
	asks, firstAsk, err := depth.BuildPriceLevels(resp.Asks, sym.TickSize, false)
	if err != nil {
		return depth.DeepSnapshot{}, &exchange.ProtocolError{Msg: "parse asks", Err: err}
	}
	if firstBid == nil || firstAsk == nil {
		return depth.DeepSnapshot{}, &exchange.ProtocolError{Msg: fmt.Sprintf("can not determine first bid/ask for %s", symbol)}
	}

	return depth.DeepSnapshot{
		Symbol:       symbol,
		LastUpdateID: resp.LastUpdateID,
		Bids:         bids,
		Asks:         asks,
		FirstBid:     firstBid,
		FirstAsk:     firstAsk,
	}, nil
}
