package conversation

import (
	"context"
	"fmt"

	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

// preTradeResult is the advisory verdict before the PIN gate. Allowed
// with a non-empty Message means "proceed, but say this first".
type preTradeResult struct {
	Allowed bool
	Message string
}

// preTradeCheck compares available funds against the margin the pending
// order needs. A shortfall aborts the draft. An unobtainable figure
// downgrades to a warning: a broker outage must not block trading, only
// remove the advisory check.
func (m *Machine) preTradeCheck(ctx context.Context) preTradeResult {
	symbol := m.draft.Instrument.DisplayName

	funds, fundsErr := m.deps.Broker.AvailableFunds(ctx)
	margin, marginErr := m.deps.Broker.OrderMargin(ctx, types.MarginReq{
		SecurityID:      m.draft.Instrument.SecurityID,
		Side:            m.draft.Action,
		Qty:             m.draft.Quantity,
		ProductType:     m.deps.Config.ProductType,
		Price:           m.draft.Price,
		ExchangeSegment: m.deps.Config.ExchangeSegment,
	})

	if fundsErr != nil || marginErr != nil {
		logger.PreTrade(ctx, symbol, "check-unavailable",
			"fundsError", fundsErr, "marginError", marginErr)
		return preTradeResult{
			Allowed: true,
			Message: "I could not verify your available funds, so proceed with caution.",
		}
	}

	if margin > funds {
		deficit := margin - funds
		logger.PreTrade(ctx, symbol, "shortfall",
			"funds", funds, "margin", margin, "deficit", deficit)
		return preTradeResult{
			Allowed: false,
			Message: fmt.Sprintf(
				"This order needs a margin of %.2f rupees but you only have %.2f available. You are short by %.2f. Order cancelled.",
				margin, funds, deficit),
		}
	}

	logger.PreTrade(ctx, symbol, "passed", "funds", funds, "margin", margin)
	return preTradeResult{Allowed: true}
}
