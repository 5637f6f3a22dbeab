package nluobs

import (
	"context"

	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

// observableNLU wraps an NLU engine with observability (logging & tracing)
type observableNLU struct {
	engine interfaces.NLU
}

// Compile-time interface check
var _ interfaces.NLU = (*observableNLU)(nil)

// Wrap wraps an NLU engine with observability middleware
func Wrap(engine interfaces.NLU) interfaces.NLU {
	return &observableNLU{
		engine: engine,
	}
}

func (on *observableNLU) ParseCommand(ctx context.Context, utterance string) (types.Intent, error) {
	ctx, span := trace.StartSpan(ctx, "nlu.ParseCommand")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Parsing spoken command", "utterance", utterance)

	intent, err := on.engine.ParseCommand(ctx, utterance)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to parse command", err, "utterance", utterance)
		return types.Intent{}, err
	}

	logger.InfoSkip(ctx, 1, "Command parsed",
		"action", intent.Action,
		"quantity", intent.Quantity,
		"symbol", intent.Symbol,
		"orderType", intent.OrderType,
	)
	return intent, nil
}

func (on *observableNLU) FillSlot(ctx context.Context, draft types.OrderDraft, utterance, slot string) (types.Intent, error) {
	ctx, span := trace.StartSpan(ctx, "nlu.FillSlot")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Extracting slot from answer", "slot", slot, "utterance", utterance)

	intent, err := on.engine.FillSlot(ctx, draft, utterance, slot)
	if err != nil {
		logger.WarnSkip(ctx, 1, "Failed to extract slot", "slot", slot, "utterance", utterance, "error", err)
		return types.Intent{}, err
	}

	logger.InfoSkip(ctx, 1, "Slot extracted", "slot", slot)
	return intent, nil
}

func (on *observableNLU) ClassifyIntent(ctx context.Context, utterance string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "nlu.ClassifyIntent")
	defer span.End()

	category, err := on.engine.ClassifyIntent(ctx, utterance)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to classify request", err, "utterance", utterance)
		return interfaces.IntentUnknown, err
	}

	logger.InfoSkip(ctx, 1, "Request classified", "category", category)
	return category, nil
}

func (on *observableNLU) SummarizeHeadlines(ctx context.Context, headlines []string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "nlu.SummarizeHeadlines")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Summarizing headlines", "count", len(headlines))

	summary, err := on.engine.SummarizeHeadlines(ctx, headlines)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to summarize headlines", err, "count", len(headlines))
		return "", err
	}
	return summary, nil
}
