package rules

import (
	"context"
	"testing"

	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

func TestParseCommandFull(t *testing.T) {
	e := New()
	intent, err := e.ParseCommand(context.Background(), "buy ten shares of reliance at one thousand")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Action != types.ActionBuy {
		t.Errorf("expected BUY, got %s", intent.Action)
	}
	if intent.Quantity != 10 {
		t.Errorf("expected quantity 10, got %d", intent.Quantity)
	}
	if intent.Symbol != "reliance" {
		t.Errorf("expected symbol reliance, got %q", intent.Symbol)
	}
	if intent.Price == nil || *intent.Price != 1000 {
		t.Errorf("expected price 1000, got %v", intent.Price)
	}
	if intent.OrderType != types.OrderTypeLimit {
		t.Errorf("expected LIMIT when price is spoken, got %s", intent.OrderType)
	}
}

func TestParseCommandShortForm(t *testing.T) {
	e := New()
	intent, err := e.ParseCommand(context.Background(), "buy 10 reliance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Action != types.ActionBuy || intent.Quantity != 10 || intent.Symbol != "reliance" {
		t.Errorf("unexpected intent: %+v", intent)
	}
	if intent.Price != nil || intent.OrderType != types.OrderTypeMarket {
		t.Errorf("expected market order without price, got %+v", intent)
	}
}

func TestParseCommandMishearings(t *testing.T) {
	e := New()
	intent, err := e.ParseCommand(context.Background(), "by five shares of audience")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Action != types.ActionBuy {
		t.Errorf("'by' should alias to BUY, got %s", intent.Action)
	}
	if intent.Symbol != "reliance" {
		t.Errorf("'audience' should alias to reliance, got %q", intent.Symbol)
	}
}

func TestParseCommandPartial(t *testing.T) {
	e := New()
	intent, err := e.ParseCommand(context.Background(), "sell tcs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Action != types.ActionSell {
		t.Errorf("expected SELL, got %s", intent.Action)
	}
	if intent.Quantity != 0 {
		t.Errorf("quantity should stay unset, got %d", intent.Quantity)
	}
	if intent.Symbol != "tcs" {
		t.Errorf("expected symbol tcs, got %q", intent.Symbol)
	}
}

func TestParseCommandRejectsGibberish(t *testing.T) {
	e := New()
	if _, err := e.ParseCommand(context.Background(), "what a lovely day"); err == nil {
		t.Error("expected error for non-command utterance")
	}
}

func TestFillSlotQuantity(t *testing.T) {
	e := New()
	intent, err := e.FillSlot(context.Background(), types.OrderDraft{}, "fifty shares", "quantity")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Quantity != 50 {
		t.Errorf("expected 50, got %d", intent.Quantity)
	}
}

func TestFillSlotAction(t *testing.T) {
	e := New()
	intent, err := e.FillSlot(context.Background(), types.OrderDraft{}, "I want to sell it", "action")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Action != types.ActionSell {
		t.Errorf("expected SELL, got %s", intent.Action)
	}
}

func TestFillSlotFailure(t *testing.T) {
	e := New()
	if _, err := e.FillSlot(context.Background(), types.OrderDraft{}, "maybe later", "quantity"); err == nil {
		t.Error("expected failure extracting quantity from non-numeric answer")
	}
}

func TestClassifyIntent(t *testing.T) {
	e := New()
	cases := map[string]string{
		"what's the news on reliance":  interfaces.IntentMarketNews,
		"buy 10 tata steel":            interfaces.IntentPlaceOrder,
		"how are my stocks doing":      interfaces.IntentGetHoldings,
		"what is the price of infosys": interfaces.IntentCheckPrice,
		"how much balance do I have":   interfaces.IntentGetFunds,
		"open positions please":        interfaces.IntentGetPosition,
		"tell me a joke":               interfaces.IntentUnknown,
	}
	for utterance, want := range cases {
		got, err := e.ClassifyIntent(context.Background(), utterance)
		if err != nil {
			t.Fatalf("ClassifyIntent(%q): %v", utterance, err)
		}
		if got != want {
			t.Errorf("ClassifyIntent(%q) = %s, want %s", utterance, got, want)
		}
	}
}

func TestWordsToNumber(t *testing.T) {
	cases := map[string]int{
		"5":                          5,
		"100":                        100,
		"fifty":                      50,
		"twenty five":                25,
		"one hundred":                100,
		"one thousand five hundred":  1500,
		"two lakh":                   200000,
		"one crore":                  10000000,
		"ninety-nine":                99,
	}
	for in, want := range cases {
		got, err := wordsToNumber(in)
		if err != nil {
			t.Fatalf("wordsToNumber(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("wordsToNumber(%q) = %d, want %d", in, got, want)
		}
	}

	if _, err := wordsToNumber("banana"); err == nil {
		t.Error("expected error for non-number input")
	}
}
