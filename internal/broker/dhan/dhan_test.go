package dhan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goffycoder/VOCI-TRADE/internal/api"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

func testClient(serverURL string) *Client {
	return &Client{
		clientID: "client-1",
		client:   api.NewClient(api.WithBaseURL(serverURL)),
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/orders" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","data":{"orderId":"112111182198","orderStatus":"TRANSIT"}}`))
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).PlaceOrder(context.Background(), types.OrderReq{
		SecurityID: "11536", Side: types.ActionBuy, Qty: 5,
		OrderType: types.OrderTypeMarket, ProductType: "INTRADAY",
		Validity: "DAY", ExchangeSegment: "NSE_EQ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.OrderID != "112111182198" || resp.Status != "TRANSIT" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestPlaceOrderFailureRemarks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failure","remarks":{"error_code":"DH-905","error_message":"Invalid security id"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).PlaceOrder(context.Background(), types.OrderReq{SecurityID: "0"})
	if err == nil {
		t.Fatal("expected error for failure status")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "DH-905" {
		t.Fatalf("expected APIError DH-905, got %v", err)
	}
	if SpokenError(err) != "The order failed. The broker said the Security ID was invalid." {
		t.Errorf("unexpected spoken form: %q", SpokenError(err))
	}
}

func TestTranslateHTTPError(t *testing.T) {
	err := errors.New(`HTTP 401: {"errorType":"Invalid_Authentication","errorCode":"DH-900","errorMessage":"token expired"}`)

	var apiErr *APIError
	if !errors.As(translateHTTPError(err), &apiErr) || apiErr.Code != "DH-900" {
		t.Fatalf("expected APIError DH-900, got %v", translateHTTPError(err))
	}
	if SpokenError(apiErr) != "Authentication failed. The API token is invalid or expired." {
		t.Errorf("unexpected spoken form: %q", SpokenError(apiErr))
	}

	plain := errors.New("connection refused")
	if translateHTTPError(plain) != plain {
		t.Error("non-broker errors must pass through untouched")
	}
}

func TestAvailableFunds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/fundlimit" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"dhanClientId":"client-1","availabelBalance":98500.25}`))
	}))
	defer srv.Close()

	funds, err := testClient(srv.URL).AvailableFunds(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if funds != 98500.25 {
		t.Errorf("expected 98500.25, got %f", funds)
	}
}

func TestOrderMargin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalMargin":12500.5,"spanMargin":0,"exposureMargin":0}`))
	}))
	defer srv.Close()

	margin, err := testClient(srv.URL).OrderMargin(context.Background(), types.MarginReq{
		SecurityID: "11536", Side: types.ActionBuy, Qty: 5,
		ProductType: "INTRADAY", ExchangeSegment: "NSE_EQ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if margin != 12500.5 {
		t.Errorf("expected 12500.5, got %f", margin)
	}
}

func TestPositionsSkipsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"tradingSymbol":"SBIN","netQty":50,"positionType":"LONG","exchangeSegment":"NSE_EQ","securityId":"3045","productType":"INTRADAY"},
			{"tradingSymbol":"INFY","netQty":0,"positionType":"CLOSED","exchangeSegment":"NSE_EQ","securityId":"1594","productType":"INTRADAY"}
		]`))
	}))
	defer srv.Close()

	positions, err := testClient(srv.URL).Positions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 1 || positions[0].Symbol != "SBIN" {
		t.Errorf("expected only the open SBIN position, got %+v", positions)
	}
}

func TestSquareOffAllCounts(t *testing.T) {
	var orderCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/positions":
			w.Write([]byte(`[
				{"tradingSymbol":"SBIN","netQty":50,"positionType":"LONG","exchangeSegment":"NSE_EQ","securityId":"3045","productType":"INTRADAY"},
				{"tradingSymbol":"INFY","netQty":-20,"positionType":"SHORT","exchangeSegment":"NSE_EQ","securityId":"1594","productType":"INTRADAY"}
			]`))
		case "/v2/orders":
			orderCalls++
			if orderCalls == 2 {
				w.Write([]byte(`{"status":"failure","remarks":{"error_code":"DH-905","error_message":"bad id"}}`))
				return
			}
			w.Write([]byte(`{"status":"success","data":{"orderId":"1","orderStatus":"TRANSIT"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).SquareOffAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Attempted != 2 || result.Succeeded != 1 || result.Failed != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestIsMarketOpen(t *testing.T) {
	ist := istLocation()
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"weekday mid-session", time.Date(2025, 6, 18, 11, 0, 0, 0, ist), true},
		{"weekday at open", time.Date(2025, 6, 18, 9, 15, 0, 0, ist), true},
		{"weekday before open", time.Date(2025, 6, 18, 9, 0, 0, 0, ist), false},
		{"weekday after close", time.Date(2025, 6, 18, 16, 0, 0, 0, ist), false},
		{"saturday", time.Date(2025, 6, 21, 11, 0, 0, 0, ist), false},
		{"sunday", time.Date(2025, 6, 22, 11, 0, 0, 0, ist), false},
	}

	defer func() { nowFunc = time.Now }()
	for _, tc := range cases {
		nowFunc = func() time.Time { return tc.at }
		if got := IsMarketOpen(); got != tc.want {
			t.Errorf("%s: IsMarketOpen() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUpdateListenerParsesAlerts(t *testing.T) {
	var got []types.OrderUpdate
	l := NewUpdateListener("client-1", "token", func(_ context.Context, u types.OrderUpdate) {
		got = append(got, u)
	})

	ctx := context.Background()
	l.handleMessage(ctx, []byte(`{"Type":"order_alert","Data":{"Status":"TRADED","DisplayName":"TATA STEEL LIMITED"}}`))
	l.handleMessage(ctx, []byte(`{"Type":"order_alert","Data":{"Status":"REJECTED","Symbol":"INFY","ReasonDescription":"Insufficient funds"}}`))
	l.handleMessage(ctx, []byte(`{"Type":"heartbeat"}`))
	l.handleMessage(ctx, []byte(`not json`))

	if len(got) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(got))
	}
	if got[0].Symbol != "TATA STEEL LIMITED" || got[0].Status != "TRADED" {
		t.Errorf("unexpected first update: %+v", got[0])
	}
	if got[1].Symbol != "INFY" || got[1].Reason != "Insufficient funds" {
		t.Errorf("unexpected second update: %+v", got[1])
	}
}

func TestConvertPositionSendsAbsoluteQuantity(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/positions/convert" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	pos := types.Position{
		Symbol: "INFY", Qty: -20, PositionType: "SHORT",
		ExchangeSegment: "NSE_EQ", SecurityID: "1594", ProductType: "INTRADAY",
	}
	if err := testClient(srv.URL).ConvertPosition(context.Background(), pos, "CNC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Short quantities go over the wire as a positive convert quantity.
	if got["convertQty"] != 20.0 {
		t.Errorf("convertQty = %v, want 20", got["convertQty"])
	}
	want := map[string]string{
		"dhanClientId":    "client-1",
		"fromProductType": "INTRADAY",
		"toProductType":   "CNC",
		"exchangeSegment": "NSE_EQ",
		"positionType":    "SHORT",
		"securityId":      "1594",
	}
	for key, val := range want {
		if got[key] != val {
			t.Errorf("%s = %v, want %q", key, got[key], val)
		}
	}
}
