// Package dhan talks to the Dhan v2 REST API.
package dhan

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goffycoder/VOCI-TRADE/internal/api"
	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

const baseURL = "https://api.dhan.co"

type Client struct {
	clientID string
	client   *api.Client
}

var _ interfaces.Broker = (*Client)(nil)

func NewClient(clientID, accessToken string) *Client {
	headers := api.DhanHeaders(clientID, accessToken)
	opts := []api.ClientOption{api.WithBaseURL(baseURL)}
	for k, v := range headers {
		opts = append(opts, api.WithHeader(k, v))
	}
	return &Client{
		clientID: clientID,
		client:   api.NewClient(opts...),
	}
}

// orderBody matches the POST /v2/orders request schema.
type orderBody struct {
	DhanClientID     string  `json:"dhanClientId"`
	TransactionType  string  `json:"transactionType"`
	ExchangeSegment  string  `json:"exchangeSegment"`
	ProductType      string  `json:"productType"`
	OrderType        string  `json:"orderType"`
	Validity         string  `json:"validity"`
	SecurityID       string  `json:"securityId"`
	Quantity         int     `json:"quantity"`
	Price            float64 `json:"price"`
	AfterMarketOrder bool    `json:"afterMarketOrder"`
	AMOTime          string  `json:"amoTime,omitempty"`
	CorrelationID    string  `json:"correlationId,omitempty"`
}

type orderResult struct {
	Status string `json:"status"`
	Data   struct {
		OrderID     string `json:"orderId"`
		OrderStatus string `json:"orderStatus"`
	} `json:"data"`
	Remarks remarks `json:"remarks"`
}

func (c *Client) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "dhan-place-order")
	defer span.End()

	body := orderBody{
		DhanClientID:     c.clientID,
		TransactionType:  req.Side,
		ExchangeSegment:  req.ExchangeSegment,
		ProductType:      req.ProductType,
		OrderType:        req.OrderType,
		Validity:         req.Validity,
		SecurityID:       req.SecurityID,
		Quantity:         req.Qty,
		Price:            req.Price,
		AfterMarketOrder: req.AfterMarket,
		CorrelationID:    req.Tag,
	}
	if req.AfterMarket {
		body.AMOTime = "OPEN"
	}

	logger.Info(ctx, "Placing order",
		"securityId", req.SecurityID,
		"side", req.Side,
		"qty", req.Qty,
		"orderType", req.OrderType,
		"amo", req.AfterMarket,
	)

	resp, err := c.client.POST(ctx, "/v2/orders", body)
	if err != nil {
		return types.OrderResp{}, translateHTTPError(err)
	}

	var result orderResult
	if err := resp.ParseJSON(&result); err != nil {
		return types.OrderResp{}, err
	}
	if result.Status == "failure" {
		return types.OrderResp{}, result.Remarks.asError()
	}

	return types.OrderResp{
		OrderID: result.Data.OrderID,
		Status:  result.Data.OrderStatus,
	}, nil
}

func (c *Client) AvailableFunds(ctx context.Context) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "dhan-available-funds")
	defer span.End()

	resp, err := c.client.GET(ctx, "/v2/fundlimit")
	if err != nil {
		return 0, translateHTTPError(err)
	}

	// The field name carries the API's own spelling.
	var r struct {
		AvailableBalance float64 `json:"availabelBalance"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return 0, err
	}
	return r.AvailableBalance, nil
}

func (c *Client) OrderMargin(ctx context.Context, req types.MarginReq) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "dhan-order-margin")
	defer span.End()

	body := map[string]any{
		"dhanClientId":    c.clientID,
		"exchangeSegment": req.ExchangeSegment,
		"transactionType": req.Side,
		"quantity":        req.Qty,
		"productType":     req.ProductType,
		"securityId":      req.SecurityID,
		"price":           req.Price,
	}

	resp, err := c.client.POST(ctx, "/v2/margincalculator", body)
	if err != nil {
		return 0, translateHTTPError(err)
	}

	var r struct {
		TotalMargin float64 `json:"totalMargin"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return 0, err
	}
	return r.TotalMargin, nil
}

func (c *Client) Holdings(ctx context.Context) ([]types.Holding, error) {
	ctx, span := trace.StartSpan(ctx, "dhan-holdings")
	defer span.End()

	resp, err := c.client.GET(ctx, "/v2/holdings")
	if err != nil {
		return nil, translateHTTPError(err)
	}

	var rows []struct {
		TradingSymbol string  `json:"tradingSymbol"`
		TotalQty      int     `json:"totalQty"`
		AvgCostPrice  float64 `json:"avgCostPrice"`
	}
	if err := resp.ParseJSON(&rows); err != nil {
		return nil, err
	}

	holdings := make([]types.Holding, 0, len(rows))
	for _, row := range rows {
		holdings = append(holdings, types.Holding{
			Symbol:   row.TradingSymbol,
			Qty:      row.TotalQty,
			AvgPrice: row.AvgCostPrice,
		})
	}
	return holdings, nil
}

func (c *Client) Positions(ctx context.Context) ([]types.Position, error) {
	ctx, span := trace.StartSpan(ctx, "dhan-positions")
	defer span.End()

	resp, err := c.client.GET(ctx, "/v2/positions")
	if err != nil {
		return nil, translateHTTPError(err)
	}

	var rows []struct {
		TradingSymbol   string  `json:"tradingSymbol"`
		NetQty          int     `json:"netQty"`
		UnrealizedPnL   float64 `json:"unrealizedProfit"`
		PositionType    string  `json:"positionType"`
		ExchangeSegment string  `json:"exchangeSegment"`
		SecurityID      string  `json:"securityId"`
		ProductType     string  `json:"productType"`
	}
	if err := resp.ParseJSON(&rows); err != nil {
		return nil, err
	}

	positions := make([]types.Position, 0, len(rows))
	for _, row := range rows {
		if row.PositionType == "CLOSED" || row.NetQty == 0 {
			continue
		}
		positions = append(positions, types.Position{
			Symbol:          row.TradingSymbol,
			Qty:             row.NetQty,
			PnL:             row.UnrealizedPnL,
			PositionType:    row.PositionType,
			ExchangeSegment: row.ExchangeSegment,
			SecurityID:      row.SecurityID,
			ProductType:     row.ProductType,
		})
	}
	return positions, nil
}

func (c *Client) LTP(ctx context.Context, securityID string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "dhan-ltp")
	defer span.End()

	id, err := strconv.Atoi(securityID)
	if err != nil {
		return 0, fmt.Errorf("security id %q is not numeric: %w", securityID, err)
	}

	body := map[string][]int{"NSE_EQ": {id}}
	resp, err := c.client.POST(ctx, "/v2/marketfeed/ltp", body)
	if err != nil {
		return 0, translateHTTPError(err)
	}

	var r struct {
		Data map[string]map[string]struct {
			LastPrice float64 `json:"last_price"`
		} `json:"data"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return 0, err
	}

	if seg, ok := r.Data["NSE_EQ"]; ok {
		if q, ok := seg[securityID]; ok {
			return q.LastPrice, nil
		}
	}
	return 0, fmt.Errorf("no quote returned for security %s", securityID)
}

func (c *Client) ConvertPosition(ctx context.Context, pos types.Position, toProduct string) error {
	ctx, span := trace.StartSpan(ctx, "dhan-convert-position")
	defer span.End()

	qty := pos.Qty
	if qty < 0 {
		qty = -qty
	}
	body := map[string]any{
		"dhanClientId":    c.clientID,
		"fromProductType": pos.ProductType,
		"toProductType":   toProduct,
		"exchangeSegment": pos.ExchangeSegment,
		"positionType":    pos.PositionType,
		"securityId":      pos.SecurityID,
		"convertQty":      qty,
	}

	if _, err := c.client.POST(ctx, "/v2/positions/convert", body); err != nil {
		return translateHTTPError(err)
	}

	logger.Info(ctx, "Position converted",
		"symbol", pos.Symbol, "from", pos.ProductType, "to", toProduct)
	return nil
}

// SquareOffAll closes every open position with an opposing market order.
// A failure on one position does not stop the rest.
func (c *Client) SquareOffAll(ctx context.Context) (types.SquareOffResult, error) {
	ctx, span := trace.StartSpan(ctx, "dhan-square-off-all")
	defer span.End()

	positions, err := c.Positions(ctx)
	if err != nil {
		return types.SquareOffResult{}, err
	}

	var result types.SquareOffResult
	for _, pos := range positions {
		side := types.ActionSell
		qty := pos.Qty
		if qty < 0 {
			side = types.ActionBuy
			qty = -qty
		}

		result.Attempted++
		_, err := c.PlaceOrder(ctx, types.OrderReq{
			SecurityID:      pos.SecurityID,
			Side:            side,
			Qty:             qty,
			OrderType:       types.OrderTypeMarket,
			ProductType:     pos.ProductType,
			Validity:        "DAY",
			ExchangeSegment: pos.ExchangeSegment,
			AfterMarket:     !IsMarketOpen(),
		})
		if err != nil {
			result.Failed++
			logger.ErrorWithErr(ctx, "Square-off order failed", err, "symbol", pos.Symbol)
			continue
		}
		result.Succeeded++
	}

	logger.Info(ctx, "Square-off complete",
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}
