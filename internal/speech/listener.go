package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
)

// defaultRecorderCmd records mono 16-bit PCM with alsa-utils. {rate},
// {seconds} and {file} are substituted before running.
const defaultRecorderCmd = "arecord -q -f S16_LE -c 1 -r {rate} -d {seconds} {file}"

// MicListener records from the microphone with an external command and
// transcribes the result.
type MicListener struct {
	cfg         *store.Config
	transcriber Transcriber
}

var _ interfaces.Listener = (*MicListener)(nil)

func NewMicListener(cfg *store.Config, transcriber Transcriber) *MicListener {
	return &MicListener{cfg: cfg, transcriber: transcriber}
}

// Capture records for d and returns the transcription. "" with nil
// error means nothing was heard.
func (l *MicListener) Capture(ctx context.Context, d time.Duration) (string, error) {
	f, err := os.CreateTemp("", "ledger-rec-*.wav")
	if err != nil {
		return "", err
	}
	f.Close()
	defer os.Remove(f.Name())

	logger.Debug(ctx, "Recording", "seconds", int(d.Seconds()))
	if err := l.record(ctx, d, f.Name()); err != nil {
		return "", fmt.Errorf("recording failed: %w", err)
	}

	wav, err := os.ReadFile(f.Name())
	if err != nil {
		return "", err
	}
	if len(wav) == 0 {
		return "", nil
	}

	text, err := l.transcriber.Transcribe(ctx, wav)
	if err != nil {
		return "", err
	}
	logger.Debug(ctx, "Transcribed", "text", text)
	return strings.TrimSpace(text), nil
}

func (l *MicListener) record(ctx context.Context, d time.Duration, path string) error {
	tmpl := l.cfg.Speech.RecorderCmd
	if tmpl == "" {
		tmpl = defaultRecorderCmd
	}

	line := strings.NewReplacer(
		"{rate}", fmt.Sprint(l.cfg.Speech.SampleRate),
		"{seconds}", fmt.Sprint(int(d.Seconds())),
		"{file}", path,
	).Replace(tmpl)

	parts := strings.Fields(line)
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	return cmd.Run()
}
