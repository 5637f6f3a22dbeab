package nlu

import (
	"strings"

	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

// WireIntent matches the JSON schema the prompts demand. Null means unset.
type WireIntent struct {
	Action    *string  `json:"action"`
	Quantity  *int     `json:"quantity"`
	Symbol    *string  `json:"symbol"`
	Price     *float64 `json:"price"`
	OrderType *string  `json:"order_type"`
}

func (w WireIntent) ToIntent() types.Intent {
	var intent types.Intent
	if w.Action != nil {
		intent.Action = strings.ToUpper(strings.TrimSpace(*w.Action))
	}
	if w.Quantity != nil {
		intent.Quantity = *w.Quantity
	}
	if w.Symbol != nil {
		intent.Symbol = strings.TrimSpace(*w.Symbol)
	}
	intent.Price = w.Price
	if w.OrderType != nil {
		intent.OrderType = strings.ToUpper(strings.TrimSpace(*w.OrderType))
	}
	if intent.Price != nil {
		intent.OrderType = types.OrderTypeLimit
	}
	if intent.Action != "" && intent.Action != types.ActionBuy && intent.Action != types.ActionSell {
		intent.Action = ""
	}
	return intent
}

// SlotFilled reports whether the intent actually carries the requested slot.
func SlotFilled(intent types.Intent, slot string) bool {
	switch slot {
	case "action":
		return intent.Action == types.ActionBuy || intent.Action == types.ActionSell
	case "quantity":
		return intent.Quantity > 0
	case "symbol":
		return intent.Symbol != ""
	case "price":
		return intent.Price != nil
	}
	return false
}

// StripFences removes the markdown code fences some model replies wrap
// around their JSON.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// NormalizeCategory maps a model's classification reply onto the known
// intent categories, defaulting to UNKNOWN.
func NormalizeCategory(raw string, known ...string) string {
	cat := strings.ToUpper(strings.TrimSpace(StripFences(raw)))
	for _, k := range known {
		if cat == k {
			return cat
		}
	}
	return "UNKNOWN"
}
