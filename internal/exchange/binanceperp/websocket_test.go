package binanceperp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BullionBear/depthkeeper/internal/depth"
	"github.com/BullionBear/depthkeeper/internal/exchange"
)

func newEchoWSServer(t *testing.T, frames []any) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		}
		// keep the connection open briefly so the reader observes EOF
		// only after the test has had a chance to drain events.
		time.Sleep(100 * time.Millisecond)
	})
	return httptest.NewServer(mux)
}

func TestListenDecodesDepthAndAggTrade(t *testing.T) {
	frames := []any{
		wsCombinedFrame{
			Stream: "btcusdt@depth@500ms",
			Data: mustMarshal(wsDepthEvent{
				EventType: streamTypeDepthUpdate, EventTime: 1, Symbol: "BTCUSDT",
				FirstUpdateID: 1, FinalUpdateID: 2, PrevUpdateID: 0,
				Bids: [][]string{{"100.00", "1.0"}},
				Asks: [][]string{{"100.01", "1.0"}},
			}),
		},
		wsCombinedFrame{
			Stream: "btcusdt@aggTrade",
			Data: mustMarshal(wsAggTradeEvent{
				EventType: streamTypeAggTrade, EventTime: 2, Symbol: "BTCUSDT",
				AggTradeID: 9, Price: "100.00", Quantity: "0.5", IsBuyerMaker: true,
			}),
		},
	}

	srv := newEchoWSServer(t, frames)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	client := NewClient(&Config{WSBaseURL: strings.TrimSuffix(wsURL, "/stream")})

	info := depth.ExchangeInfo{"BTCUSDT": depth.SymbolInfo{TickSize: "0.01"}}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := client.Listen(ctx, []string{"BTCUSDT"}, info, 500)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	var gotDiff, gotTrade bool
	for i := 0; i < 2; i++ {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatal("events channel closed early")
			}
			switch ev.Kind {
			case exchange.EventDepthDiff:
				gotDiff = true
				if ev.DepthDiff.FinalUpdateID != 2 {
					t.Errorf("final update id = %d, want 2", ev.DepthDiff.FinalUpdateID)
				}
			case exchange.EventAggTrade:
				gotTrade = true
				if ev.AggTrade.Side != depth.TradeSideLong {
					t.Errorf("trade side = %v, want LONG", ev.AggTrade.Side)
				}
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	if !gotDiff || !gotTrade {
		t.Errorf("gotDiff=%v gotTrade=%v, want both true", gotDiff, gotTrade)
	}
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
