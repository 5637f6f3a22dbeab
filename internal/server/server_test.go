package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/goffycoder/VOCI-TRADE/internal/instruments"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

type fakeNLU struct {
	classifyFn  func(string) (string, error)
	parseFn     func(string) (types.Intent, error)
	summarizeFn func([]string) (string, error)
}

func (f *fakeNLU) ParseCommand(_ context.Context, utterance string) (types.Intent, error) {
	if f.parseFn == nil {
		return types.Intent{}, fmt.Errorf("no parse configured")
	}
	return f.parseFn(utterance)
}

func (f *fakeNLU) FillSlot(_ context.Context, _ types.OrderDraft, _, _ string) (types.Intent, error) {
	return types.Intent{}, fmt.Errorf("not used over HTTP")
}

func (f *fakeNLU) ClassifyIntent(_ context.Context, utterance string) (string, error) {
	return f.classifyFn(utterance)
}

func (f *fakeNLU) SummarizeHeadlines(_ context.Context, headlines []string) (string, error) {
	if f.summarizeFn == nil {
		return "", fmt.Errorf("no summarizer configured")
	}
	return f.summarizeFn(headlines)
}

type fakeBroker struct {
	funds     float64
	fundsErr  error
	ltp       float64
	ltpErr    error
	holdings  []types.Holding
	positions []types.Position
	placed    []types.OrderReq
	placeErr  error
}

func (f *fakeBroker) PlaceOrder(_ context.Context, req types.OrderReq) (types.OrderResp, error) {
	if f.placeErr != nil {
		return types.OrderResp{}, f.placeErr
	}
	f.placed = append(f.placed, req)
	return types.OrderResp{OrderID: "WEB-000001", Status: "TRANSIT"}, nil
}

func (f *fakeBroker) AvailableFunds(_ context.Context) (float64, error) {
	return f.funds, f.fundsErr
}

func (f *fakeBroker) OrderMargin(_ context.Context, _ types.MarginReq) (float64, error) {
	return 0, fmt.Errorf("not used over HTTP")
}

func (f *fakeBroker) Holdings(_ context.Context) ([]types.Holding, error) {
	return f.holdings, nil
}

func (f *fakeBroker) Positions(_ context.Context) ([]types.Position, error) {
	return f.positions, nil
}

func (f *fakeBroker) LTP(_ context.Context, _ string) (float64, error) {
	return f.ltp, f.ltpErr
}

func (f *fakeBroker) ConvertPosition(_ context.Context, _ types.Position, _ string) error {
	return nil
}

func (f *fakeBroker) SquareOffAll(_ context.Context) (types.SquareOffResult, error) {
	return types.SquareOffResult{}, nil
}

func testResolver() *instruments.Resolver {
	return instruments.NewResolver(instruments.NewCatalog([]instruments.Record{
		instruments.NewRecord("500325", "RELIANCE INDUSTRIES LTD"),
		instruments.NewRecord("11536", "TCS"),
		instruments.NewRecord("1594", "INFOSYS LIMITED"),
	}))
}

func newTestServer(nlu *fakeNLU, broker *fakeBroker) *Server {
	gin.SetMode(gin.TestMode)
	cfg := store.DefaultConfig()
	return New(Deps{
		Config:   cfg,
		NLU:      nlu,
		Broker:   broker,
		Resolver: testResolver(),
	})
}

func postChat(t *testing.T, s *Server, message string) (int, chatResponse) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"message": message})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var resp chatResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
	}
	return rec.Code, resp
}

func TestChatRequiresMessage(t *testing.T) {
	s := newTestServer(&fakeNLU{classifyFn: func(string) (string, error) { return "UNKNOWN", nil }}, &fakeBroker{})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty message should be a 400, got %d", rec.Code)
	}
}

func TestChatFundsIntent(t *testing.T) {
	nlu := &fakeNLU{classifyFn: func(string) (string, error) { return "GET_FUNDS", nil }}
	broker := &fakeBroker{funds: 12345.67}
	s := newTestServer(nlu, broker)

	code, resp := postChat(t, s, "how much money do I have")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if want := "You have 12345.67 rupees available in your trading account."; resp.Text != want {
		t.Errorf("text = %q, want %q", resp.Text, want)
	}
	if resp.Data["funds"] != 12345.67 {
		t.Errorf("data.funds = %v, want 12345.67", resp.Data["funds"])
	}
	if resp.AudioBase64 != "" {
		t.Error("no synthesizer wired, audio should be empty")
	}
}

func TestChatFundsUnavailable(t *testing.T) {
	nlu := &fakeNLU{classifyFn: func(string) (string, error) { return "GET_FUNDS", nil }}
	broker := &fakeBroker{fundsErr: fmt.Errorf("HTTP 502: gateway")}
	s := newTestServer(nlu, broker)

	_, resp := postChat(t, s, "check my balance")
	if !strings.Contains(resp.Text, "unable to fetch your balance") {
		t.Errorf("expected a balance-unavailable reply, got %q", resp.Text)
	}
}

func TestChatPriceIntent(t *testing.T) {
	nlu := &fakeNLU{
		classifyFn: func(string) (string, error) { return "CHECK_PRICE", nil },
		parseFn: func(string) (types.Intent, error) {
			return types.Intent{Symbol: "infosys"}, nil
		},
	}
	broker := &fakeBroker{ltp: 1501.25}
	s := newTestServer(nlu, broker)

	_, resp := postChat(t, s, "what is infosys trading at")
	if want := "The current price of INFOSYS LIMITED is 1501.25 rupees."; resp.Text != want {
		t.Errorf("text = %q, want %q", resp.Text, want)
	}
	if resp.Data["symbol"] != "INFOSYS LIMITED" {
		t.Errorf("data.symbol = %v", resp.Data["symbol"])
	}
}

func TestChatPriceUnknownStock(t *testing.T) {
	nlu := &fakeNLU{
		classifyFn: func(string) (string, error) { return "CHECK_PRICE", nil },
		parseFn: func(string) (types.Intent, error) {
			return types.Intent{Symbol: "acme rockets"}, nil
		},
	}
	s := newTestServer(nlu, &fakeBroker{})

	_, resp := postChat(t, s, "price of acme rockets")
	if !strings.Contains(resp.Text, "couldn't find a stock named acme rockets") {
		t.Errorf("expected a not-found reply, got %q", resp.Text)
	}
}

func TestChatPlaceOrder(t *testing.T) {
	qty := 10
	nlu := &fakeNLU{
		classifyFn: func(string) (string, error) { return "PLACE_ORDER", nil },
		parseFn: func(string) (types.Intent, error) {
			return types.Intent{Action: types.ActionBuy, Quantity: qty, Symbol: "tcs"}, nil
		},
	}
	broker := &fakeBroker{}
	s := newTestServer(nlu, broker)

	_, resp := postChat(t, s, "buy 10 shares of tcs")
	if want := "Your BUY order for 10 shares of TCS is in transit."; resp.Text != want {
		t.Errorf("text = %q, want %q", resp.Text, want)
	}
	if len(broker.placed) != 1 {
		t.Fatalf("expected 1 placed order, got %d", len(broker.placed))
	}
	placed := broker.placed[0]
	if placed.SecurityID != "11536" || placed.Side != types.ActionBuy || placed.Qty != 10 {
		t.Errorf("unexpected order %+v", placed)
	}
	if placed.OrderType != types.OrderTypeMarket {
		t.Errorf("order type = %q, want MARKET", placed.OrderType)
	}
	if resp.Data["order_id"] != "WEB-000001" {
		t.Errorf("data.order_id = %v", resp.Data["order_id"])
	}
}

func TestChatPlaceOrderRejectsPartial(t *testing.T) {
	nlu := &fakeNLU{
		classifyFn: func(string) (string, error) { return "PLACE_ORDER", nil },
		parseFn: func(string) (types.Intent, error) {
			return types.Intent{Action: types.ActionBuy}, nil
		},
	}
	broker := &fakeBroker{}
	s := newTestServer(nlu, broker)

	_, resp := postChat(t, s, "buy some shares")
	if !strings.Contains(resp.Text, "didn't quite catch the order details") {
		t.Errorf("partial command must be rejected, got %q", resp.Text)
	}
	if len(broker.placed) != 0 {
		t.Error("no order may be placed for a partial command")
	}
}

func TestChatHoldings(t *testing.T) {
	nlu := &fakeNLU{classifyFn: func(string) (string, error) { return "GET_HOLDINGS", nil }}
	broker := &fakeBroker{holdings: []types.Holding{
		{Symbol: "TCS", Qty: 10, AvgPrice: 3900.50},
	}}
	s := newTestServer(nlu, broker)

	_, resp := postChat(t, s, "what am I holding")
	if want := "You are holding 10 shares of TCS at an average of 3900.50."; resp.Text != want {
		t.Errorf("text = %q, want %q", resp.Text, want)
	}
}

func TestChatPositionsShortQuantitySpokenPositive(t *testing.T) {
	nlu := &fakeNLU{classifyFn: func(string) (string, error) { return "GET_POSITIONS", nil }}
	broker := &fakeBroker{positions: []types.Position{
		{Symbol: "INFY", Qty: -20, PositionType: "SHORT"},
	}}
	s := newTestServer(nlu, broker)

	_, resp := postChat(t, s, "show positions")
	if want := "Your open positions: short 20 INFY."; resp.Text != want {
		t.Errorf("text = %q, want %q", resp.Text, want)
	}
}

func TestChatUnknownFallsBack(t *testing.T) {
	nlu := &fakeNLU{classifyFn: func(string) (string, error) { return "", fmt.Errorf("model down") }}
	s := newTestServer(nlu, &fakeBroker{})

	_, resp := postChat(t, s, "tell me a joke")
	if !strings.Contains(resp.Text, "I'm listening") {
		t.Errorf("classification failure should fall back to the help text, got %q", resp.Text)
	}
}
