package dhan

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

const updatesURL = "wss://api-order-update.dhan.co"

// loginReq authenticates the order-update stream. MsgCode 42 is the
// login message.
type loginReq struct {
	LoginReq struct {
		MsgCode  int    `json:"MsgCode"`
		ClientID string `json:"ClientId"`
		Token    string `json:"Token"`
	} `json:"LoginReq"`
	UserType string `json:"UserType"`
}

type updateMsg struct {
	Type string `json:"Type"`
	Data struct {
		Status            string `json:"Status"`
		Symbol            string `json:"Symbol"`
		DisplayName       string `json:"DisplayName"`
		ReasonDescription string `json:"ReasonDescription"`
	} `json:"Data"`
}

// UpdateListener streams order status changes over the broker websocket
// and forwards them to a callback. It reconnects on failure until the
// context is cancelled.
type UpdateListener struct {
	clientID    string
	accessToken string
	url         string
	onUpdate    func(context.Context, types.OrderUpdate)
}

func NewUpdateListener(clientID, accessToken string, onUpdate func(context.Context, types.OrderUpdate)) *UpdateListener {
	return &UpdateListener{
		clientID:    clientID,
		accessToken: accessToken,
		url:         updatesURL,
		onUpdate:    onUpdate,
	}
}

// Run blocks until ctx is cancelled. Callers start it on its own goroutine.
func (l *UpdateListener) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if err := l.listenOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn(ctx, "Order update stream dropped, reconnecting",
				"error", err, "backoff", backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (l *UpdateListener) listenOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	var login loginReq
	login.LoginReq.MsgCode = 42
	login.LoginReq.ClientID = l.clientID
	login.LoginReq.Token = l.accessToken
	login.UserType = "SELF"
	if err := conn.WriteJSON(login); err != nil {
		return err
	}

	logger.Info(ctx, "Order update stream connected")

	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		l.handleMessage(ctx, raw)
	}
}

func (l *UpdateListener) handleMessage(ctx context.Context, raw []byte) {
	var msg updateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Warn(ctx, "Unparseable order update", "error", err)
		return
	}
	if msg.Type != "order_alert" {
		return
	}

	symbol := msg.Data.DisplayName
	if symbol == "" {
		symbol = msg.Data.Symbol
	}
	if symbol == "" {
		symbol = "Unknown Stock"
	}

	logger.Info(ctx, "Order update received", "symbol", symbol, "status", msg.Data.Status)
	l.onUpdate(ctx, types.OrderUpdate{
		Symbol: symbol,
		Status: msg.Data.Status,
		Reason: msg.Data.ReasonDescription,
	})
}
