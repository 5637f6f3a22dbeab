package brokerobs

import (
	"context"

	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

// observableBroker wraps a Broker with observability (logging & tracing)
type observableBroker struct {
	broker interfaces.Broker
}

// Compile-time interface check
var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap wraps a broker with observability middleware
func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{
		broker: broker,
	}
}

// PlaceOrder places an order with observability
func (ob *observableBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"securityId", req.SecurityID,
		"side", req.Side,
		"qty", req.Qty,
		"orderType", req.OrderType,
		"amo", req.AfterMarket,
	)

	resp, err := ob.broker.PlaceOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"securityId", req.SecurityID,
			"side", req.Side,
			"qty", req.Qty,
		)
		return types.OrderResp{}, err
	}

	logger.InfoSkip(ctx, 1, "Order placed successfully",
		"securityId", req.SecurityID,
		"order_id", resp.OrderID,
		"status", resp.Status,
	)
	return resp, nil
}

// AvailableFunds fetches the account balance with observability
func (ob *observableBroker) AvailableFunds(ctx context.Context) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.AvailableFunds")
	defer span.End()

	funds, err := ob.broker.AvailableFunds(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch available funds", err)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Available funds fetched", "funds", funds)
	return funds, nil
}

// OrderMargin estimates the required margin with observability
func (ob *observableBroker) OrderMargin(ctx context.Context, req types.MarginReq) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.OrderMargin")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Estimating order margin",
		"securityId", req.SecurityID, "side", req.Side, "qty", req.Qty)

	margin, err := ob.broker.OrderMargin(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to estimate margin", err,
			"securityId", req.SecurityID)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Margin estimated", "securityId", req.SecurityID, "margin", margin)
	return margin, nil
}

// Holdings fetches delivery holdings with observability
func (ob *observableBroker) Holdings(ctx context.Context) ([]types.Holding, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Holdings")
	defer span.End()

	holdings, err := ob.broker.Holdings(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch holdings", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Holdings fetched", "count", len(holdings))
	return holdings, nil
}

// Positions fetches open positions with observability
func (ob *observableBroker) Positions(ctx context.Context) ([]types.Position, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Positions")
	defer span.End()

	positions, err := ob.broker.Positions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch positions", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Positions fetched", "count", len(positions))
	return positions, nil
}

// LTP returns the last traded price with observability
func (ob *observableBroker) LTP(ctx context.Context, securityID string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.LTP")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching LTP", "securityId", securityID)

	price, err := ob.broker.LTP(ctx, securityID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch LTP", err, "securityId", securityID)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "LTP fetched successfully", "securityId", securityID, "price", price)
	return price, nil
}

// ConvertPosition converts a position between products with observability
func (ob *observableBroker) ConvertPosition(ctx context.Context, pos types.Position, toProduct string) error {
	ctx, span := trace.StartSpan(ctx, "broker.ConvertPosition")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Converting position",
		"symbol", pos.Symbol, "from", pos.ProductType, "to", toProduct)

	if err := ob.broker.ConvertPosition(ctx, pos, toProduct); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to convert position", err, "symbol", pos.Symbol)
		return err
	}

	logger.InfoSkip(ctx, 1, "Position converted successfully", "symbol", pos.Symbol)
	return nil
}

// SquareOffAll closes every open position with observability
func (ob *observableBroker) SquareOffAll(ctx context.Context) (types.SquareOffResult, error) {
	ctx, span := trace.StartSpan(ctx, "broker.SquareOffAll")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Squaring off all positions")

	result, err := ob.broker.SquareOffAll(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Square-off failed", err)
		return types.SquareOffResult{}, err
	}

	logger.InfoSkip(ctx, 1, "Square-off finished",
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}
