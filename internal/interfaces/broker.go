package interfaces

import (
	"context"

	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

// Broker is the gateway to the equities broker API.
type Broker interface {
	// PlaceOrder submits an order and returns the broker's response.
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)

	// AvailableFunds returns the withdrawable balance of the trading account.
	AvailableFunds(ctx context.Context) (float64, error)

	// OrderMargin estimates the margin required for the pending order.
	OrderMargin(ctx context.Context, req types.MarginReq) (float64, error)

	// Holdings returns delivery holdings.
	Holdings(ctx context.Context) ([]types.Holding, error)

	// Positions returns open intraday positions.
	Positions(ctx context.Context) ([]types.Position, error)

	// LTP returns the last traded price for a security.
	LTP(ctx context.Context, securityID string) (float64, error)

	// ConvertPosition converts a position between product types.
	ConvertPosition(ctx context.Context, pos types.Position, toProduct string) error

	// SquareOffAll closes every open position with opposing market orders.
	SquareOffAll(ctx context.Context) (types.SquareOffResult, error)
}
