package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goffycoder/VOCI-TRADE/internal/api"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

func testEngine(serverURL string) *Engine {
	return &Engine{
		cfg:    store.DefaultConfig(),
		apiKey: "test-key",
		client: api.NewClient(api.WithBaseURL(serverURL)),
	}
}

func geminiReply(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + jsonString(text) + `}]}}]}`
}

func jsonString(s string) string {
	out := `"`
	for _, r := range s {
		switch r {
		case '"':
			out += `\"`
		case '\n':
			out += `\n`
		default:
			out += string(r)
		}
	}
	return out + `"`
}

func TestParseCommandUnwrapsFencedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply("```json\n{\"action\":\"BUY\",\"quantity\":10,\"symbol\":\"reliance\",\"price\":null,\"order_type\":\"MARKET\"}\n```")))
	}))
	defer srv.Close()

	intent, err := testEngine(srv.URL).ParseCommand(context.Background(), "buy ten shares of reliance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Action != types.ActionBuy || intent.Quantity != 10 || intent.Symbol != "reliance" {
		t.Errorf("unexpected intent: %+v", intent)
	}
	if intent.OrderType != types.OrderTypeMarket {
		t.Errorf("expected MARKET, got %s", intent.OrderType)
	}
}

func TestParseCommandPriceForcesLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply(`{"action":"SELL","quantity":5,"symbol":"tcs","price":4100.5,"order_type":"MARKET"}`)))
	}))
	defer srv.Close()

	intent, err := testEngine(srv.URL).ParseCommand(context.Background(), "sell five shares of tcs at 4100.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Price == nil || *intent.Price != 4100.5 {
		t.Fatalf("expected price 4100.5, got %v", intent.Price)
	}
	if intent.OrderType != types.OrderTypeLimit {
		t.Errorf("a spoken price must force LIMIT, got %s", intent.OrderType)
	}
}

func TestFillSlotRejectsMissingValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply(`{"action":null,"quantity":null,"symbol":null,"price":null,"order_type":null}`)))
	}))
	defer srv.Close()

	_, err := testEngine(srv.URL).FillSlot(context.Background(), types.OrderDraft{}, "maybe later", "quantity")
	if err == nil {
		t.Error("expected error when the model extracts nothing for the slot")
	}
}

func TestClassifyIntentNormalizesUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply("SOMETHING_ELSE")))
	}))
	defer srv.Close()

	got, err := testEngine(srv.URL).ClassifyIntent(context.Background(), "do a backflip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "UNKNOWN" {
		t.Errorf("unrecognized category should map to UNKNOWN, got %s", got)
	}
}
