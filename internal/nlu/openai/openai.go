// Package openai implements the NLU engine on the OpenAI chat completions
// API via the sashabaranov SDK.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/nlu"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

const defaultModel = openai.GPT4oMini

type Engine struct {
	cfg *store.Config
	sdk *openai.Client
}

var _ interfaces.NLU = (*Engine)(nil)

func New(cfg *store.Config, apiKey string) (*Engine, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY missing")
	}
	return &Engine{
		cfg: cfg,
		sdk: openai.NewClient(apiKey),
	}, nil
}

func (e *Engine) model() string {
	if e.cfg.NLU.Model != "" {
		return e.cfg.NLU.Model
	}
	return defaultModel
}

func (e *Engine) complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: e.cfg.NLU.Temperature,
	}
	if e.cfg.NLU.MaxTokens > 0 {
		req.MaxTokens = e.cfg.NLU.MaxTokens
	}

	resp, err := e.sdk.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (e *Engine) ParseCommand(ctx context.Context, utterance string) (types.Intent, error) {
	ctx, span := trace.StartSpan(ctx, "openai-parse-command")
	defer span.End()

	out, err := e.complete(ctx, nlu.BuildCommandPrompt(utterance))
	if err != nil {
		return types.Intent{}, err
	}

	var wire nlu.WireIntent
	if err := json.Unmarshal([]byte(nlu.StripFences(out)), &wire); err != nil {
		return types.Intent{}, fmt.Errorf("openai returned invalid intent JSON: %w", err)
	}
	return wire.ToIntent(), nil
}

func (e *Engine) FillSlot(ctx context.Context, draft types.OrderDraft, utterance, slot string) (types.Intent, error) {
	ctx, span := trace.StartSpan(ctx, "openai-fill-slot")
	defer span.End()

	out, err := e.complete(ctx, nlu.BuildSlotPrompt(draft, utterance, slot))
	if err != nil {
		return types.Intent{}, err
	}

	var wire nlu.WireIntent
	if err := json.Unmarshal([]byte(nlu.StripFences(out)), &wire); err != nil {
		return types.Intent{}, fmt.Errorf("openai returned invalid slot JSON: %w", err)
	}

	intent := wire.ToIntent()
	if !nlu.SlotFilled(intent, slot) {
		return types.Intent{}, fmt.Errorf("openai could not extract slot %q", slot)
	}
	return intent, nil
}

func (e *Engine) ClassifyIntent(ctx context.Context, utterance string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-classify-intent")
	defer span.End()

	out, err := e.complete(ctx, nlu.BuildClassifyPrompt(utterance))
	if err != nil {
		return interfaces.IntentUnknown, err
	}

	return nlu.NormalizeCategory(out,
		interfaces.IntentMarketNews, interfaces.IntentPlaceOrder, interfaces.IntentGetHoldings,
		interfaces.IntentGetFunds, interfaces.IntentGetPosition, interfaces.IntentCheckPrice,
	), nil
}

func (e *Engine) SummarizeHeadlines(ctx context.Context, headlines []string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-summarize-headlines")
	defer span.End()

	if len(headlines) == 0 {
		return "", errors.New("no headlines to summarize")
	}
	return e.complete(ctx, nlu.BuildSummaryPrompt(headlines))
}
