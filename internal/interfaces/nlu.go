package interfaces

import (
	"context"

	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

// Intent categories for the chat surface.
const (
	IntentMarketNews  = "MARKET_NEWS"
	IntentPlaceOrder  = "PLACE_ORDER"
	IntentGetFunds    = "GET_FUNDS"
	IntentGetHoldings = "GET_HOLDINGS"
	IntentGetPosition = "GET_POSITIONS"
	IntentCheckPrice  = "CHECK_PRICE"
	IntentUnknown     = "UNKNOWN"
)

// NLU converts utterances into structured trading intent.
type NLU interface {
	// ParseCommand extracts a full order intent from an utterance.
	// Fields the user did not say carry their unset markers.
	ParseCommand(ctx context.Context, utterance string) (types.Intent, error)

	// FillSlot extracts a single missing slot value from a follow-up
	// utterance, given the partial draft as context. Returns the updated
	// intent fragment or an error when nothing could be extracted.
	FillSlot(ctx context.Context, draft types.OrderDraft, utterance, slot string) (types.Intent, error)

	// ClassifyIntent buckets an utterance into one of the Intent* categories.
	ClassifyIntent(ctx context.Context, utterance string) (string, error)

	// SummarizeHeadlines produces a short spoken summary with sentiment.
	SummarizeHeadlines(ctx context.Context, headlines []string) (string, error)
}
