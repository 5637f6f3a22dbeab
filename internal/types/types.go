package types

// Action values for an order. Empty string means "not yet known".
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Order types understood by the broker.
const (
	OrderTypeMarket = "MARKET"
	OrderTypeLimit  = "LIMIT"
)

// InstrumentRef identifies a tradable instrument after resolution.
type InstrumentRef struct {
	SecurityID  string `json:"security_id"`
	DisplayName string `json:"display_name"`
}

// Intent is the structured result of NLU full-command extraction.
// Unrecognized fields carry their explicit unset markers: "" for strings,
// 0 for quantity, nil for price. The NLU never guesses.
type Intent struct {
	Action    string   `json:"action"`
	Quantity  int      `json:"quantity"`
	Symbol    string   `json:"symbol"`
	Price     *float64 `json:"price"`
	OrderType string   `json:"order_type"`
}

// OrderDraft accumulates slot values across conversation turns.
// At most one of {Instrument bound, Candidates pending} holds at a time.
type OrderDraft struct {
	Action     string
	Quantity   int
	Symbol     string
	Instrument *InstrumentRef
	Price      float64 // 0 means market
	OrderType  string
	Candidates []InstrumentRef // present only during disambiguation
}

// Reset clears every slot. Called on completion, cancellation, or any
// unrecoverable slot-fill failure.
func (d *OrderDraft) Reset() {
	*d = OrderDraft{}
}

// BindInstrument attaches a resolved instrument and drops any pending
// candidate list, preserving the draft invariant.
func (d *OrderDraft) BindInstrument(ref InstrumentRef) {
	d.Instrument = &ref
	d.Candidates = nil
}

// ApplyIntent copies the recognized fields of a full-command intent onto
// the draft. Unset markers leave the draft untouched.
func (d *OrderDraft) ApplyIntent(in Intent) {
	if in.Action != "" {
		d.Action = in.Action
	}
	if in.Quantity > 0 {
		d.Quantity = in.Quantity
	}
	if in.Symbol != "" {
		d.Symbol = in.Symbol
	}
	if in.Price != nil {
		d.Price = *in.Price
		d.OrderType = OrderTypeLimit
	}
	if d.OrderType == "" {
		d.OrderType = OrderTypeMarket
	}
}

type OrderReq struct {
	SecurityID      string
	Side            string // BUY or SELL
	Qty             int
	OrderType       string // MARKET or LIMIT
	ProductType     string // e.g. INTRADAY
	Price           float64
	Validity        string // e.g. DAY
	AfterMarket     bool
	ExchangeSegment string // e.g. NSE_EQ
	Tag             string
}

type OrderResp struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"` // broker order status, e.g. TRANSIT, PENDING
	Message string `json:"message"`
}

// MarginReq describes the pending order for a pre-trade margin estimate.
type MarginReq struct {
	SecurityID      string
	Side            string
	Qty             int
	ProductType     string
	Price           float64
	ExchangeSegment string
}

type Holding struct {
	Symbol   string  `json:"symbol"`
	Qty      int     `json:"qty"`
	AvgPrice float64 `json:"avg_price"`
	PnL      float64 `json:"pnl"`
}

type Position struct {
	Symbol          string  `json:"symbol"`
	Qty             int     `json:"qty"`
	PnL             float64 `json:"pnl"`
	PositionType    string  `json:"position_type"` // LONG or SHORT
	ExchangeSegment string  `json:"exchange_segment"`
	SecurityID      string  `json:"security_id"`
	ProductType     string  `json:"product_type"`
}

// SquareOffResult counts the outcome of closing all open positions.
type SquareOffResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// OrderUpdate is a push notification from the broker's order-update stream.
type OrderUpdate struct {
	Symbol string
	Status string // TRADED, REJECTED, PENDING, ...
	Reason string
}

type Headline struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}
