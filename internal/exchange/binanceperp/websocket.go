package binanceperp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/BullionBear/depthkeeper/internal/depth"
	"github.com/BullionBear/depthkeeper/internal/exchange"
	"github.com/BullionBear/depthkeeper/pkg/logger"
)

// Listen opens one multiplexed combined-stream connection subscribed to
// "<sym>@depth@<speed>ms" and "<sym>@aggTrade" for every symbol, and
// returns a channel of tagged depth/aggTrade events. A websocket error
// frame, a read error, or ctx cancellation closes the channel; callers
// (the replication supervisor) are responsible for calling Listen again to
// resubscribe, per the global-reset policy.
func (c *Client) Listen(ctx context.Context, symbols []string, info depth.ExchangeInfo, wsSpeedMs int) (<-chan exchange.Event, error) {
	streams := make([]string, 0, len(symbols)*2)
	for _, sym := range symbols {
		lower := strings.ToLower(sym)
		streams = append(streams, fmt.Sprintf("%s@depth@%dms", lower, wsSpeedMs))
		streams = append(streams, fmt.Sprintf("%s@aggTrade", lower))
	}
	url := fmt.Sprintf("%s/stream?streams=%s", c.cfg.WSBaseURL, strings.Join(streams, "/"))

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return nil, &exchange.TransportError{Msg: fmt.Sprintf("dial %s: %v", url, err)}
	}

	events := make(chan exchange.Event, 256)
	log := logger.Get().With().Str("component", "binanceperp.ws").Logger()

	go pingLoop(ctx, conn, log)
	go readLoop(ctx, conn, info, events, log)

	return events, nil
}

func pingLoop(ctx context.Context, conn *websocket.Conn, log zerolog.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PongMessage, nil); err != nil {
				log.Warn().Err(err).Msg("failed to send keepalive pong")
			}
		}
	}
}

func readLoop(ctx context.Context, conn *websocket.Conn, info depth.ExchangeInfo, events chan<- exchange.Event, log zerolog.Logger) {
	defer close(events)
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Error().Err(err).Msg("websocket read error, terminating listener")
			}
			return
		}

		var frame wsCombinedFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			log.Debug().Err(err).Msg("dropping malformed frame")
			continue
		}

		event, ok, err := decodeEvent(frame, info)
		if err != nil {
			log.Debug().Err(err).Str("stream", frame.Stream).Msg("dropping frame that failed to decode")
			continue
		}
		if !ok {
			continue
		}

		select {
		case events <- event:
		case <-ctx.Done():
			return
		}
	}
}

func decodeEvent(frame wsCombinedFrame, info depth.ExchangeInfo) (exchange.Event, bool, error) {
	var envelope wsEventEnvelope
	if err := json.Unmarshal(frame.Data, &envelope); err != nil {
		return exchange.Event{}, false, err
	}

	switch envelope.EventType {
	case streamTypeDepthUpdate:
		var raw wsDepthEvent
		if err := json.Unmarshal(frame.Data, &raw); err != nil {
			return exchange.Event{}, false, err
		}
		diff, err := toDepthDiff(raw, info)
		if err != nil {
			return exchange.Event{}, false, err
		}
		return exchange.Event{Kind: exchange.EventDepthDiff, DepthDiff: &diff}, true, nil
	case streamTypeAggTrade:
		var raw wsAggTradeEvent
		if err := json.Unmarshal(frame.Data, &raw); err != nil {
			return exchange.Event{}, false, err
		}
		trade := toAggTrade(raw)
		return exchange.Event{Kind: exchange.EventAggTrade, AggTrade: &trade}, true, nil
	default:
		return exchange.Event{}, false, nil
	}
}

func toDepthDiff(raw wsDepthEvent, info depth.ExchangeInfo) (depth.DepthDiff, error) {
	sym, ok := info[raw.Symbol]
	if !ok {
		return depth.DepthDiff{}, fmt.Errorf("binanceperp: no tick size known for %s", raw.Symbol)
	}
	bids, firstBid, err := depth.BuildPriceLevels(raw.Bids, sym.TickSize, true)
	if err != nil {
		return depth.DepthDiff{}, err
	}
	asks, firstAsk, err := depth.BuildPriceLevels(raw.Asks, sym.TickSize, false)
	if err != nil {
		return depth.DepthDiff{}, err
	}
	return depth.DepthDiff{
		Symbol:            raw.Symbol,
		EventTimeMs:       raw.EventTime,
		FirstUpdateID:     raw.FirstUpdateID,
		FinalUpdateID:     raw.FinalUpdateID,
		LastFinalUpdateID: raw.PrevUpdateID,
		Bids:              bids,
		Asks:              asks,
		FirstBid:          firstBid,
		FirstAsk:          firstAsk,
	}, nil
}

func toAggTrade(raw wsAggTradeEvent) depth.AggTrade {
	return depth.AggTrade{
		Symbol:      raw.Symbol,
		EventTimeMs: raw.EventTime,
		TradeID:     raw.AggTradeID,
		Price:       raw.Price,
		Quantity:    raw.Quantity,
		Side:        depth.TradeSideFromIsBuyerMaker(raw.IsBuyerMaker),
	}
}
