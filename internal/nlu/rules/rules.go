// Package rules is an offline NLU provider: a regex grammar plus a spoken
// number parser. It needs no network and doubles as the deterministic
// engine for tests and DRY_RUN sessions.
package rules

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

// actionAliases absorbs common speech-to-text mishearings of buy/sell.
var actionAliases = map[string]string{
	"buy":      types.ActionBuy,
	"by":       types.ActionBuy,
	"my":       types.ActionBuy,
	"purchase": types.ActionBuy,
	"acquire":  types.ActionBuy,
	"sell":     types.ActionSell,
	"cell":     types.ActionSell,
	"short":    types.ActionSell,
}

// symbolAliases fixes mishearings of well-known names.
var symbolAliases = map[string]string{
	"audience": "reliance",
	"rely on":  "reliance",
	"infy":     "infosys",
}

// ACTION QTY share/s of SYMBOL [at PRICE]
var commandPattern = regexp.MustCompile(
	`(?i)\b(buy|by|my|purchase|sell|cell|short)\s+([\w\s]+?)\s+(?:share|shares)\s+of\s+([\w\s]+?)(?:\s+at\s+([\w\s]+))?$`)

// looser form without the "shares of" connective: ACTION QTY SYMBOL
var shortPattern = regexp.MustCompile(
	`(?i)\b(buy|by|my|purchase|sell|cell|short)\s+(\d+|[a-z\s]+?)\s+([\w\s]+?)(?:\s+at\s+([\w\s]+))?$`)

type Engine struct{}

var _ interfaces.NLU = (*Engine)(nil)

func New() *Engine {
	return &Engine{}
}

func (e *Engine) ParseCommand(ctx context.Context, utterance string) (types.Intent, error) {
	text := strings.ToLower(strings.TrimSpace(utterance))
	text = strings.TrimSpace(strings.ReplaceAll(text, "i'm listening", ""))

	m := commandPattern.FindStringSubmatch(text)
	if m == nil {
		m = shortPattern.FindStringSubmatch(text)
	}
	if m == nil {
		// Partial commands ("sell tcs") still carry usable slots; extract
		// what was said and leave the rest unset.
		if intent, ok := parsePartial(text); ok {
			logger.Debug(ctx, "Parsed partial command offline", "utterance", utterance)
			return intent, nil
		}
		logger.Debug(ctx, "Utterance did not match command grammar", "utterance", utterance)
		return types.Intent{}, errors.New("command did not match grammar")
	}

	intent := types.Intent{OrderType: types.OrderTypeMarket}

	action, ok := actionAliases[strings.TrimSpace(m[1])]
	if !ok {
		return types.Intent{}, fmt.Errorf("unknown action %q", m[1])
	}
	intent.Action = action

	qty, err := wordsToNumber(strings.TrimSpace(m[2]))
	if err != nil || qty <= 0 {
		return types.Intent{}, fmt.Errorf("could not understand quantity %q", m[2])
	}
	intent.Quantity = qty

	symbol := strings.TrimSpace(m[3])
	if alias, ok := symbolAliases[symbol]; ok {
		symbol = alias
	}
	intent.Symbol = symbol

	if priceStr := strings.TrimSpace(m[4]); priceStr != "" {
		if p, err := wordsToNumber(priceStr); err == nil && p > 0 {
			price := float64(p)
			intent.Price = &price
			intent.OrderType = types.OrderTypeLimit
		}
	}

	logger.Debug(ctx, "Parsed command offline",
		"action", intent.Action, "qty", intent.Quantity, "symbol", intent.Symbol)
	return intent, nil
}

func (e *Engine) FillSlot(ctx context.Context, draft types.OrderDraft, utterance, slot string) (types.Intent, error) {
	answer := strings.ToLower(strings.TrimSpace(utterance))
	if answer == "" {
		return types.Intent{}, errors.New("empty answer")
	}

	var intent types.Intent
	switch slot {
	case "action":
		for word := range actionAliases {
			if strings.Contains(answer, word) {
				intent.Action = actionAliases[word]
				return intent, nil
			}
		}
		return types.Intent{}, fmt.Errorf("no action in %q", utterance)

	case "quantity":
		qty, err := wordsToNumber(strings.TrimSuffix(strings.TrimSuffix(answer, " shares"), " share"))
		if err != nil || qty <= 0 {
			return types.Intent{}, fmt.Errorf("no quantity in %q", utterance)
		}
		intent.Quantity = qty
		return intent, nil

	case "symbol":
		symbol := answer
		if alias, ok := symbolAliases[symbol]; ok {
			symbol = alias
		}
		intent.Symbol = symbol
		return intent, nil

	case "price":
		p, err := wordsToNumber(strings.TrimPrefix(answer, "at "))
		if err != nil || p <= 0 {
			return types.Intent{}, fmt.Errorf("no price in %q", utterance)
		}
		price := float64(p)
		intent.Price = &price
		return intent, nil
	}

	return types.Intent{}, fmt.Errorf("unknown slot %q", slot)
}

func (e *Engine) ClassifyIntent(ctx context.Context, utterance string) (string, error) {
	text := strings.ToLower(utterance)
	switch {
	case containsAny(text, "news", "headline", "happening"):
		return interfaces.IntentMarketNews, nil
	case containsAny(text, "holding", "portfolio", "my stocks"):
		return interfaces.IntentGetHoldings, nil
	case containsAny(text, "position"):
		return interfaces.IntentGetPosition, nil
	case containsAny(text, "funds", "balance", "money"):
		return interfaces.IntentGetFunds, nil
	case containsAny(text, "price of", "price for", "trading at"):
		return interfaces.IntentCheckPrice, nil
	case containsAny(text, "buy", "sell", "purchase", "shares"):
		return interfaces.IntentPlaceOrder, nil
	}
	return interfaces.IntentUnknown, nil
}

func (e *Engine) SummarizeHeadlines(ctx context.Context, headlines []string) (string, error) {
	if len(headlines) == 0 {
		return "", errors.New("no headlines to summarize")
	}
	// Offline engine cannot judge sentiment; read the top headlines back.
	n := len(headlines)
	if n > 3 {
		n = 3
	}
	return "Top headlines: " + strings.Join(headlines[:n], ". "), nil
}

// parsePartial handles commands missing the quantity or symbol: an action
// word followed by an optional spoken number and an optional name.
func parsePartial(text string) (types.Intent, bool) {
	words := strings.Fields(text)
	actionIdx := -1
	var action string
	for i, w := range words {
		if a, ok := actionAliases[w]; ok {
			actionIdx, action = i, a
			break
		}
	}
	if actionIdx < 0 {
		return types.Intent{}, false
	}

	intent := types.Intent{Action: action, OrderType: types.OrderTypeMarket}
	rest := words[actionIdx+1:]

	// Consume leading number words as the quantity.
	numEnd := 0
	for numEnd < len(rest) {
		if _, err := wordsToNumber(strings.Join(rest[:numEnd+1], " ")); err != nil {
			break
		}
		numEnd++
	}
	if numEnd > 0 {
		if qty, err := wordsToNumber(strings.Join(rest[:numEnd], " ")); err == nil && qty > 0 {
			intent.Quantity = qty
		}
		rest = rest[numEnd:]
	}

	if len(rest) > 0 {
		symbol := strings.Join(rest, " ")
		symbol = strings.TrimPrefix(symbol, "shares of ")
		symbol = strings.TrimPrefix(symbol, "share of ")
		if alias, ok := symbolAliases[symbol]; ok {
			symbol = alias
		}
		intent.Symbol = symbol
	}
	return intent, true
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
