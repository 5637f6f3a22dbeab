// Package nlu holds the prompt templates and wire schema shared by the
// model-backed intent engines.
package nlu

import (
	"fmt"
	"strings"

	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

func BuildCommandPrompt(utterance string) string {
	return fmt.Sprintf(`You extract stock order details from spoken commands transcribed by
speech-to-text, so expect mishearings ("by" means "buy", "cell" means "sell",
"audience" often means "reliance").

Extract from the command below:
- action: "BUY" or "SELL", null if not stated
- quantity: integer number of shares, null if not stated
- symbol: the company or stock name as spoken, null if not stated
- price: numeric limit price if one is spoken ("at 1500"), else null
- order_type: "LIMIT" if a price is spoken, else "MARKET"

Respond with ONLY a JSON object with keys action, quantity, symbol, price,
order_type. No markdown, no explanation.

Command: "%s"`, utterance)
}

func BuildSlotPrompt(draft types.OrderDraft, utterance, slot string) string {
	var sb strings.Builder
	sb.WriteString("A user is building a stock order. Known so far:\n")
	if draft.Action != "" {
		fmt.Fprintf(&sb, "- action: %s\n", draft.Action)
	}
	if draft.Quantity > 0 {
		fmt.Fprintf(&sb, "- quantity: %d\n", draft.Quantity)
	}
	if draft.Symbol != "" {
		fmt.Fprintf(&sb, "- symbol: %s\n", draft.Symbol)
	}
	fmt.Fprintf(&sb, `
They were asked for the missing %q and answered: "%s"

The answer came through speech-to-text, so numbers may be spelled out
("fifty" is 50) and words misheard. Extract the %q value from the answer.

Respond with ONLY a JSON object with keys action, quantity, symbol, price,
order_type, using null for everything the answer does not state. No markdown.`,
		slot, utterance, slot)
	return sb.String()
}

func BuildClassifyPrompt(utterance string) string {
	return fmt.Sprintf(`Classify the user's request into exactly one category:

MARKET_NEWS - asking about market news or headlines
PLACE_ORDER - wants to buy or sell shares
GET_FUNDS - asking about account balance or available funds
GET_HOLDINGS - asking about their holdings or portfolio
GET_POSITIONS - asking about open intraday positions
CHECK_PRICE - asking the current price of a stock
UNKNOWN - anything else

Respond with ONLY the category name.

Request: "%s"`, utterance)
}

func BuildSummaryPrompt(headlines []string) string {
	return fmt.Sprintf(`Summarize these market headlines in two short spoken sentences for an
Indian equities trader. Mention the overall mood and the most notable story.
Plain text only, no markdown.

Headlines:
%s`, strings.Join(headlines, "\n"))
}
