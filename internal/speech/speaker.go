package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
)

// Speaker voices text through a synthesizer and an external player
// command. Playback is serialized: the conversation loop and the order
// update notifier may call Say at the same time, and overlapping audio
// is worse than a short wait.
type Speaker struct {
	mu        sync.Mutex
	synth     interfaces.Synthesizer
	playerCmd string
}

var _ interfaces.Speaker = (*Speaker)(nil)

func NewSpeaker(synth interfaces.Synthesizer, playerCmd string) *Speaker {
	if playerCmd == "" {
		playerCmd = "mpg123 -q"
	}
	return &Speaker{synth: synth, playerCmd: playerCmd}
}

// Say prints the message and plays it. Synthesis and playback failures
// are logged, not returned: the printed text already delivered the
// message.
func (s *Speaker) Say(ctx context.Context, text string) error {
	fmt.Printf("[Ledger]: %s\n", text)

	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		logger.Warn(ctx, "Speech synthesis failed, text-only", "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.play(ctx, audio); err != nil {
		logger.Warn(ctx, "Audio playback failed", "error", err)
	}
	return nil
}

func (s *Speaker) play(ctx context.Context, audio []byte) error {
	f, err := os.CreateTemp("", "ledger-say-*.mp3")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return err
	}
	f.Close()

	parts := strings.Fields(s.playerCmd)
	args := append(parts[1:], f.Name())
	cmd := exec.CommandContext(ctx, parts[0], args...)
	return cmd.Run()
}
