package interfaces

import (
	"context"
	"time"
)

// Speaker voices a message to the user. Implementations must tolerate
// concurrent calls: the conversation loop and the order-update notifier
// both speak.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Synthesizer renders text to playable audio without playing it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Listener captures one utterance for a bounded interval and returns its
// transcription. An empty string with nil error means nothing was heard.
type Listener interface {
	Capture(ctx context.Context, d time.Duration) (string, error)
}

// Prompter reads from the trusted local input channel (keyboard fallback
// and PIN entry, never voice).
type Prompter interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	ReadSecret(ctx context.Context, prompt string) (string, error)
}

// WakeDetector blocks until the trigger phrase is detected.
type WakeDetector interface {
	WaitForWake(ctx context.Context) error
}
