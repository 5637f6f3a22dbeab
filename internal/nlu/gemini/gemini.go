// Package gemini implements the NLU engine on the Google Gemini
// generateContent REST API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goffycoder/VOCI-TRADE/internal/api"
	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/nlu"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

const defaultModel = "gemini-flash-latest"

type Engine struct {
	cfg    *store.Config
	apiKey string
	client *api.Client
}

var _ interfaces.NLU = (*Engine)(nil)

func New(cfg *store.Config, apiKey string) *Engine {
	return &Engine{
		cfg:    cfg,
		apiKey: apiKey,
		client: api.NewClient(api.WithBaseURL("https://generativelanguage.googleapis.com/v1beta")),
	}
}

func (e *Engine) model() string {
	if e.cfg.NLU.Model != "" {
		return e.cfg.NLU.Model
	}
	return defaultModel
}

// generate sends one prompt and returns the model's raw text output.
func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	if e.apiKey == "" {
		return "", errors.New("GOOGLE_API_KEY missing")
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature": e.cfg.NLU.Temperature,
		},
	}

	url := fmt.Sprintf("/models/%s:generateContent?key=%s", e.model(), e.apiKey)
	resp, err := e.client.POST(ctx, url, body)
	if err != nil {
		return "", err
	}

	var r struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", err
	}
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no candidates in gemini response")
	}

	return strings.TrimSpace(r.Candidates[0].Content.Parts[0].Text), nil
}

func (e *Engine) ParseCommand(ctx context.Context, utterance string) (types.Intent, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-parse-command")
	defer span.End()

	out, err := e.generate(ctx, nlu.BuildCommandPrompt(utterance))
	if err != nil {
		return types.Intent{}, err
	}

	var wire nlu.WireIntent
	if err := json.Unmarshal([]byte(nlu.StripFences(out)), &wire); err != nil {
		return types.Intent{}, fmt.Errorf("gemini returned invalid intent JSON: %w", err)
	}
	return wire.ToIntent(), nil
}

func (e *Engine) FillSlot(ctx context.Context, draft types.OrderDraft, utterance, slot string) (types.Intent, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-fill-slot")
	defer span.End()

	out, err := e.generate(ctx, nlu.BuildSlotPrompt(draft, utterance, slot))
	if err != nil {
		return types.Intent{}, err
	}

	var wire nlu.WireIntent
	if err := json.Unmarshal([]byte(nlu.StripFences(out)), &wire); err != nil {
		return types.Intent{}, fmt.Errorf("gemini returned invalid slot JSON: %w", err)
	}

	intent := wire.ToIntent()
	if !nlu.SlotFilled(intent, slot) {
		return types.Intent{}, fmt.Errorf("gemini could not extract slot %q", slot)
	}
	return intent, nil
}

func (e *Engine) ClassifyIntent(ctx context.Context, utterance string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-classify-intent")
	defer span.End()

	out, err := e.generate(ctx, nlu.BuildClassifyPrompt(utterance))
	if err != nil {
		return interfaces.IntentUnknown, err
	}

	return nlu.NormalizeCategory(out,
		interfaces.IntentMarketNews, interfaces.IntentPlaceOrder, interfaces.IntentGetHoldings,
		interfaces.IntentGetFunds, interfaces.IntentGetPosition, interfaces.IntentCheckPrice,
	), nil
}

func (e *Engine) SummarizeHeadlines(ctx context.Context, headlines []string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-summarize-headlines")
	defer span.End()

	if len(headlines) == 0 {
		return "", errors.New("no headlines to summarize")
	}
	return e.generate(ctx, nlu.BuildSummaryPrompt(headlines))
}
