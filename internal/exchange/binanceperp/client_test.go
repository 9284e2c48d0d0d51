package binanceperp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BullionBear/depthkeeper/internal/depth"
	"github.com/BullionBear/depthkeeper/internal/exchange"
)

func newTestServer(t *testing.T, path string, body any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	})
	return httptest.NewServer(mux)
}

func TestGetExchangeInfo(t *testing.T) {
	srv := newTestServer(t, pathExchangeInfo, restExchangeInfoResponse{
		Symbols: []restSymbolInfo{
			{
				Symbol: "BTCUSDT", Status: statusTrading, ContractType: contractTypePerpetual,
				Filters: []restFilter{{FilterType: filterTypePriceFilter, TickSize: "0.01"}},
			},
			{
				Symbol: "IGNOREME", Status: "SETTLING", ContractType: contractTypePerpetual,
				Filters: []restFilter{{FilterType: filterTypePriceFilter, TickSize: "0.01"}},
			},
		},
	})
	defer srv.Close()

	client := NewClient(&Config{BaseURL: srv.URL})
	info, err := client.GetExchangeInfo(context.Background(), []string{"BTCUSDT"})
	if err != nil {
		t.Fatalf("GetExchangeInfo: %v", err)
	}
	if info["BTCUSDT"].TickSize != "0.01" {
		t.Errorf("tick size = %q, want 0.01", info["BTCUSDT"].TickSize)
	}
}

func TestGetExchangeInfoMissingSymbolIsConfigError(t *testing.T) {
	srv := newTestServer(t, pathExchangeInfo, restExchangeInfoResponse{
		Symbols: []restSymbolInfo{
			{Symbol: "BTCUSDT", Status: statusTrading, ContractType: contractTypePerpetual,
				Filters: []restFilter{{FilterType: filterTypePriceFilter, TickSize: "0.01"}}},
		},
	})
	defer srv.Close()

	client := NewClient(&Config{BaseURL: srv.URL})
	_, err := client.GetExchangeInfo(context.Background(), []string{"BTCUSDT", "ETHUSDT"})
	if err == nil {
		t.Fatal("expected error for missing symbol")
	}
	var cfgErr *exchange.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
}

func TestGetDepth(t *testing.T) {
	srv := newTestServer(t, pathDepth, restDepthResponse{
		LastUpdateID: 100,
		Bids:         [][]string{{"100.00", "1.0"}, {"99.99", "2.0"}},
		Asks:         [][]string{{"100.01", "1.0"}, {"100.02", "2.0"}},
	})
	defer srv.Close()

	client := NewClient(&Config{BaseURL: srv.URL})
	info := depth.ExchangeInfo{"BTCUSDT": depth.SymbolInfo{TickSize: "0.01"}}

	snap, err := client.GetDepth(context.Background(), "BTCUSDT", 2, info)
	if err != nil {
		t.Fatalf("GetDepth: %v", err)
	}
	if snap.FirstBid.Value != 10000 {
		t.Errorf("first bid value = %d, want 10000", snap.FirstBid.Value)
	}
	if snap.FirstAsk.Value != 10001 {
		t.Errorf("first ask value = %d, want 10001", snap.FirstAsk.Value)
	}
	if snap.LastUpdateID != 100 {
		t.Errorf("last update id = %d, want 100", snap.LastUpdateID)
	}
}

func TestGetDepthUnknownSymbolIsConfigError(t *testing.T) {
	client := NewClient(&Config{BaseURL: "http://unused.invalid"})
	_, err := client.GetDepth(context.Background(), "BTCUSDT", 5, depth.ExchangeInfo{})
	if err == nil {
		t.Fatal("expected config error for unknown symbol")
	}
	var cfgErr *exchange.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
}
