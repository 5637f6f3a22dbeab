// Package wake provides the triggers that start a conversation turn.
package wake

import (
	"context"
	"strings"
	"time"

	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
)

// ConsoleTrigger wakes on Enter. The default: it needs no microphone
// loop and works over ssh.
type ConsoleTrigger struct {
	prompter interfaces.Prompter
}

var _ interfaces.WakeDetector = (*ConsoleTrigger)(nil)

func NewConsoleTrigger(prompter interfaces.Prompter) *ConsoleTrigger {
	return &ConsoleTrigger{prompter: prompter}
}

func (t *ConsoleTrigger) WaitForWake(ctx context.Context) error {
	_, err := t.prompter.ReadLine(ctx, "Press Enter to talk to Ledger... ")
	return err
}

// PhraseDetector listens in short windows until the wake phrase shows
// up in a transcription.
type PhraseDetector struct {
	listener interfaces.Listener
	phrase   string
	window   time.Duration
}

var _ interfaces.WakeDetector = (*PhraseDetector)(nil)

func NewPhraseDetector(listener interfaces.Listener, phrase string) *PhraseDetector {
	return &PhraseDetector{
		listener: listener,
		phrase:   strings.ToLower(strings.TrimSpace(phrase)),
		window:   3 * time.Second,
	}
}

func (d *PhraseDetector) WaitForWake(ctx context.Context) error {
	logger.Info(ctx, "Listening for wake phrase", "phrase", d.phrase)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		heard, err := d.listener.Capture(ctx, d.window)
		if err != nil {
			logger.Warn(ctx, "Wake capture failed, retrying", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if strings.Contains(strings.ToLower(heard), d.phrase) {
			logger.Info(ctx, "Wake phrase detected")
			return nil
		}
	}
}
