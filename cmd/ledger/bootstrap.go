package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/goffycoder/VOCI-TRADE/internal/app"
	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/speech"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
	"github.com/goffycoder/VOCI-TRADE/internal/tradelog"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
	"github.com/goffycoder/VOCI-TRADE/internal/wake"
)

const startupAttempts = 3

// initializeSystem initializes env, logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// compressOldLogs compresses old trade journal files if retention is configured.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("LEDGER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeSpeech wires the voice path. CLOUD mode uses the microphone
// and hosted speech services; anything else runs on the console.
func initializeSpeech(ctx context.Context, a *app.App) (interfaces.Speaker, interfaces.Listener, interfaces.Prompter) {
	prompter := speech.NewConsolePrompter()

	if a.Cfg.Speech.Provider != "CLOUD" {
		return speech.ConsoleSpeaker{}, speech.NewConsoleListener(prompter), prompter
	}

	transcriber, err := speech.NewGoogleTranscriber(a.Cfg, a.Secrets.GoogleAPIKey)
	if err != nil {
		logger.Warn(ctx, "Speech recognition unavailable, falling back to console input", "error", err)
		return speech.ConsoleSpeaker{}, speech.NewConsoleListener(prompter), prompter
	}

	var speaker interfaces.Speaker = speech.ConsoleSpeaker{}
	if a.Synth != nil {
		speaker = speech.NewSpeaker(a.Synth, a.Cfg.Speech.PlayerCmd)
	}
	return speaker, speech.NewMicListener(a.Cfg, transcriber), prompter
}

// initializeWake picks the wake trigger per config.
func initializeWake(cfg *store.Config, listener interfaces.Listener, prompter interfaces.Prompter) interfaces.WakeDetector {
	if cfg.Wake.Mode == "PHRASE" {
		return wake.NewPhraseDetector(listener, cfg.Wake.Phrase)
	}
	return wake.NewConsoleTrigger(prompter)
}

// startupGate blocks until the operator enters the startup code. Three
// misses end the process.
func startupGate(ctx context.Context, prompter interfaces.Prompter, speaker interfaces.Speaker, want string) error {
	for attempt := 1; attempt <= startupAttempts; attempt++ {
		code, err := prompter.ReadSecret(ctx, "Enter startup code: ")
		if err != nil {
			return err
		}
		if code == want {
			_ = speaker.Say(ctx, "Startup code accepted. Ledger is ready.")
			return nil
		}
		_ = speaker.Say(ctx, "Incorrect startup code.")
	}
	return fmt.Errorf("startup code rejected after %d attempts", startupAttempts)
}

// announceUpdate voices a pushed order status change.
func announceUpdate(speaker interfaces.Speaker) func(context.Context, types.OrderUpdate) {
	return func(ctx context.Context, u types.OrderUpdate) {
		switch u.Status {
		case "TRADED":
			_ = speaker.Say(ctx, fmt.Sprintf("Good news. Your order for %s has been traded.", u.Symbol))
		case "REJECTED":
			msg := fmt.Sprintf("Heads up. Your order for %s was rejected.", u.Symbol)
			if u.Reason != "" {
				msg += " Reason: " + u.Reason + "."
			}
			_ = speaker.Say(ctx, msg)
		default:
			logger.Debug(ctx, "Order update", "symbol", u.Symbol, "status", u.Status)
		}
	}
}

// recordTurn appends a finished conversation turn to the turns journal.
func recordTurn(outcome, utterance, symbol string) {
	_ = tradelog.AppendTurn(tradelog.TurnEntry{
		Utterance: utterance,
		Outcome:   outcome,
		Symbol:    symbol,
	})
}

// recordTrade appends a placed order to the daily trade journal.
func recordTrade(req types.OrderReq, resp types.OrderResp) {
	_ = tradelog.Append(tradelog.Entry{
		Symbol:      req.Tag,
		Side:        req.Side,
		OrderID:     resp.OrderID,
		SecurityID:  req.SecurityID,
		Qty:         req.Qty,
		Price:       req.Price,
		OrderType:   req.OrderType,
		AfterMarket: req.AfterMarket,
	})
}
