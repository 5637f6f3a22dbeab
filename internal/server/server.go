// Package server exposes the assistant over HTTP for browser clients:
// one /chat endpoint that answers with text, optional synthesized
// audio, and structured data.
package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goffycoder/VOCI-TRADE/internal/instruments"
	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/news"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

type Server struct {
	cfg      *store.Config
	nlu      interfaces.NLU
	broker   interfaces.Broker
	resolver *instruments.Resolver
	news     *news.Service

	// synth is optional; without it responses are text-only.
	synth interfaces.Synthesizer

	// marketOpen gates the after-market flag on orders placed over HTTP.
	marketOpen func() bool
}

type Deps struct {
	Config     *store.Config
	NLU        interfaces.NLU
	Broker     interfaces.Broker
	Resolver   *instruments.Resolver
	News       *news.Service
	Synth      interfaces.Synthesizer
	MarketOpen func() bool
}

func New(deps Deps) *Server {
	if deps.MarketOpen == nil {
		deps.MarketOpen = func() bool { return true }
	}
	return &Server{
		cfg:        deps.Config,
		nlu:        deps.NLU,
		broker:     deps.Broker,
		resolver:   deps.Resolver,
		news:       deps.News,
		synth:      deps.Synth,
		marketOpen: deps.MarketOpen,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": s.cfg.Mode})
	})
	r.POST("/chat", s.handleChat)
	return r
}

// Run blocks serving on the configured address.
func (s *Server) Run() error {
	return s.Router().Run(s.cfg.Server.Addr)
}

type chatRequest struct {
	Message string         `json:"message" binding:"required"`
	Context map[string]any `json:"context"`
}

type chatResponse struct {
	Text        string         `json:"text"`
	AudioBase64 string         `json:"audio_base64"`
	Data        map[string]any `json:"data"`
}

func (s *Server) handleChat(c *gin.Context) {
	ctx, span := trace.StartSpan(c.Request.Context(), "chat-request")
	defer span.End()

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	category, err := s.nlu.ClassifyIntent(ctx, req.Message)
	if err != nil {
		logger.ErrorWithErr(ctx, "Intent classification failed", err)
		category = interfaces.IntentUnknown
	}
	logger.Info(ctx, "Chat request", "category", category)

	data := map[string]any{"intent": category}
	var text string

	switch category {
	case interfaces.IntentMarketNews:
		text = s.answerNews(ctx, req.Message, data)
	case interfaces.IntentGetFunds:
		text = s.answerFunds(ctx, data)
	case interfaces.IntentGetHoldings:
		text = s.answerHoldings(ctx)
	case interfaces.IntentGetPosition:
		text = s.answerPositions(ctx)
	case interfaces.IntentCheckPrice:
		text = s.answerPrice(ctx, req.Message, data)
	case interfaces.IntentPlaceOrder:
		text = s.answerOrder(ctx, req.Message, data)
	default:
		text = "I'm listening. You can check prices, funds, holdings, or place an order."
	}

	c.JSON(http.StatusOK, chatResponse{
		Text:        text,
		AudioBase64: s.audioFor(ctx, text),
		Data:        data,
	})
}

// audioFor synthesizes the reply when a synthesizer is wired. Failures
// degrade to text-only.
func (s *Server) audioFor(ctx context.Context, text string) string {
	if s.synth == nil || text == "" {
		return ""
	}
	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		logger.Warn(ctx, "Audio synthesis failed for chat reply", "error", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(audio)
}

// newsQuery narrows the feed query for a few well-known groups.
func newsQuery(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "reliance"):
		return "Reliance Industries"
	case strings.Contains(lower, "adani"):
		return "Adani Group"
	case strings.Contains(lower, "tata"):
		return "Tata Group"
	}
	return ""
}

func (s *Server) answerNews(ctx context.Context, message string, data map[string]any) string {
	if !s.cfg.News.Enabled {
		return "Market news is turned off right now."
	}
	query := newsQuery(message)
	titles, err := s.news.Titles(ctx, query)
	if err != nil || len(titles) == 0 {
		return "I couldn't find any recent market news."
	}
	data["headlines"] = titles

	summary, err := s.nlu.SummarizeHeadlines(ctx, titles)
	if err != nil {
		return "Here are the latest headlines: " + strings.Join(titles, ". ")
	}
	return summary
}

func (s *Server) answerFunds(ctx context.Context, data map[string]any) string {
	funds, err := s.broker.AvailableFunds(ctx)
	if err != nil {
		return "I was unable to fetch your balance details from the broker."
	}
	data["funds"] = funds
	return fmt.Sprintf("You have %.2f rupees available in your trading account.", funds)
}

func (s *Server) answerHoldings(ctx context.Context) string {
	holdings, err := s.broker.Holdings(ctx)
	if err != nil {
		return "I was unable to fetch your holdings from the broker."
	}
	if len(holdings) == 0 {
		return "You don't have any holdings right now."
	}

	parts := make([]string, 0, len(holdings))
	for _, h := range holdings {
		parts = append(parts, fmt.Sprintf("%d shares of %s at an average of %.2f", h.Qty, h.Symbol, h.AvgPrice))
	}
	return "You are holding " + strings.Join(parts, ", ") + "."
}

func (s *Server) answerPositions(ctx context.Context) string {
	positions, err := s.broker.Positions(ctx)
	if err != nil {
		return "I was unable to fetch your positions from the broker."
	}
	if len(positions) == 0 {
		return "You have no open positions."
	}

	parts := make([]string, 0, len(positions))
	for _, p := range positions {
		qty := p.Qty
		if qty < 0 {
			qty = -qty
		}
		parts = append(parts, fmt.Sprintf("%s %d %s", strings.ToLower(p.PositionType), qty, p.Symbol))
	}
	return "Your open positions: " + strings.Join(parts, ", ") + "."
}

func (s *Server) answerPrice(ctx context.Context, message string, data map[string]any) string {
	intent, err := s.nlu.ParseCommand(ctx, message)
	if err != nil || intent.Symbol == "" {
		return "I'm not sure which stock you are asking about."
	}

	refs := s.resolver.Resolve(ctx, intent.Symbol)
	if len(refs) == 0 {
		return fmt.Sprintf("Sorry, I couldn't find a stock named %s.", intent.Symbol)
	}

	ref := refs[0]
	price, err := s.broker.LTP(ctx, ref.SecurityID)
	if err != nil {
		return fmt.Sprintf("I found %s, but the live price data is currently unavailable.", ref.DisplayName)
	}

	data["symbol"] = ref.DisplayName
	data["price"] = price
	return fmt.Sprintf("The current price of %s is %.2f rupees.", ref.DisplayName, price)
}

// answerOrder places a fully-specified order. Partial commands are
// rejected: the HTTP surface has no slot-filling dialogue, that lives
// in the voice loop.
func (s *Server) answerOrder(ctx context.Context, message string, data map[string]any) string {
	intent, err := s.nlu.ParseCommand(ctx, message)
	if err != nil || intent.Action == "" || intent.Quantity <= 0 || intent.Symbol == "" {
		return "I didn't quite catch the order details. Please try saying 'Buy 10 shares of Reliance'."
	}

	refs := s.resolver.Resolve(ctx, intent.Symbol)
	if len(refs) == 0 {
		return fmt.Sprintf("I couldn't find the stock %s. Order cancelled.", intent.Symbol)
	}
	ref := refs[0]

	var draft types.OrderDraft
	draft.ApplyIntent(intent)
	draft.BindInstrument(ref)

	resp, err := s.broker.PlaceOrder(ctx, types.OrderReq{
		SecurityID:      ref.SecurityID,
		Side:            draft.Action,
		Qty:             draft.Quantity,
		OrderType:       draft.OrderType,
		ProductType:     s.cfg.ProductType,
		Price:           draft.Price,
		Validity:        s.cfg.Validity,
		AfterMarket:     !s.marketOpen(),
		ExchangeSegment: s.cfg.ExchangeSegment,
		Tag:             ref.DisplayName,
	})
	if err != nil {
		return "Sorry, the order failed. " + err.Error()
	}

	data["order_id"] = resp.OrderID
	data["symbol"] = ref.DisplayName
	return fmt.Sprintf("Your %s order for %d shares of %s is in transit.",
		draft.Action, draft.Quantity, ref.DisplayName)
}
