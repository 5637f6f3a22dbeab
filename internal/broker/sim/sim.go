// Package sim is the DRY_RUN broker: it answers every call from canned
// data so the whole conversation flow runs without credentials or a
// live account.
package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

const (
	dummyBalance = 10000000.0 // 1 crore
	dummyPrice   = 100.0
)

type Broker struct {
	mu      sync.Mutex
	nextID  int
	orders  []types.OrderReq
	updates func(context.Context, types.OrderUpdate)
}

var _ interfaces.Broker = (*Broker)(nil)

func New() *Broker {
	return &Broker{}
}

// OnUpdate registers a callback fired after each simulated fill.
func (b *Broker) OnUpdate(fn func(context.Context, types.OrderUpdate)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = fn
}

func (b *Broker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	b.mu.Lock()
	b.nextID++
	id := fmt.Sprintf("SIM-%06d", b.nextID)
	b.orders = append(b.orders, req)
	updates := b.updates
	b.mu.Unlock()

	logger.Info(ctx, "Simulated order placed",
		"orderId", id, "securityId", req.SecurityID, "side", req.Side, "qty", req.Qty)

	if updates != nil {
		updates(ctx, types.OrderUpdate{Symbol: req.Tag, Status: "TRADED"})
	}

	return types.OrderResp{OrderID: id, Status: "TRANSIT"}, nil
}

func (b *Broker) AvailableFunds(ctx context.Context) (float64, error) {
	return dummyBalance, nil
}

// OrderMargin estimates price times quantity, using the dummy quote for
// market orders.
func (b *Broker) OrderMargin(ctx context.Context, req types.MarginReq) (float64, error) {
	price := req.Price
	if price <= 0 {
		price = dummyPrice
	}
	return float64(req.Qty) * price, nil
}

func (b *Broker) Holdings(ctx context.Context) ([]types.Holding, error) {
	return []types.Holding{
		{Symbol: "TCS", Qty: 10, AvgPrice: 3200},
		{Symbol: "RELIANCE", Qty: 5, AvgPrice: 2400},
	}, nil
}

func (b *Broker) Positions(ctx context.Context) ([]types.Position, error) {
	return []types.Position{
		{Symbol: "SBIN", Qty: 50, PositionType: "LONG", ExchangeSegment: "NSE_EQ", SecurityID: "3045", ProductType: "INTRADAY"},
		{Symbol: "INFY", Qty: -20, PositionType: "SHORT", ExchangeSegment: "NSE_EQ", SecurityID: "1594", ProductType: "INTRADAY"},
	}, nil
}

func (b *Broker) LTP(ctx context.Context, securityID string) (float64, error) {
	return dummyPrice, nil
}

func (b *Broker) ConvertPosition(ctx context.Context, pos types.Position, toProduct string) error {
	logger.Info(ctx, "Simulated position conversion",
		"symbol", pos.Symbol, "from", pos.ProductType, "to", toProduct)
	return nil
}

func (b *Broker) SquareOffAll(ctx context.Context) (types.SquareOffResult, error) {
	positions, _ := b.Positions(ctx)
	n := len(positions)
	logger.Info(ctx, "Simulated square-off", "positions", n)
	return types.SquareOffResult{Attempted: n, Succeeded: n}, nil
}

// PlacedOrders returns everything placed so far, oldest first.
func (b *Broker) PlacedOrders() []types.OrderReq {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.OrderReq, len(b.orders))
	copy(out, b.orders)
	return out
}
