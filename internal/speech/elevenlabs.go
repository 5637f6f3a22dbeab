// Package speech provides voice output and input: ElevenLabs synthesis,
// Google speech-to-text, and console fallbacks for both.
package speech

import (
	"context"
	"errors"

	"github.com/goffycoder/VOCI-TRADE/internal/api"
	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
)

const (
	defaultVoiceID  = "21m00Tcm4TlvDq8ikWAM" // Rachel
	defaultTTSModel = "eleven_multilingual_v2"
)

// ElevenLabsSynthesizer renders text to MP3 audio over the ElevenLabs
// REST API.
type ElevenLabsSynthesizer struct {
	cfg    *store.Config
	client *api.Client
}

var _ interfaces.Synthesizer = (*ElevenLabsSynthesizer)(nil)

func NewElevenLabsSynthesizer(cfg *store.Config, apiKey string) (*ElevenLabsSynthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("ELEVENLABS_API_KEY missing")
	}
	return &ElevenLabsSynthesizer{
		cfg: cfg,
		client: api.NewClient(
			api.WithBaseURL("https://api.elevenlabs.io"),
			api.WithHeader("xi-api-key", apiKey),
			api.WithHeader("Accept", "audio/mpeg"),
		),
	}, nil
}

func (s *ElevenLabsSynthesizer) voiceID() string {
	if s.cfg.Speech.VoiceID != "" {
		return s.cfg.Speech.VoiceID
	}
	return defaultVoiceID
}

func (s *ElevenLabsSynthesizer) modelID() string {
	if s.cfg.Speech.TTSModel != "" {
		return s.cfg.Speech.TTSModel
	}
	return defaultTTSModel
}

func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, span := trace.StartSpan(ctx, "elevenlabs-synthesize")
	defer span.End()

	body := map[string]any{
		"text":     text,
		"model_id": s.modelID(),
	}
	resp, err := s.client.POST(ctx, "/v1/text-to-speech/"+s.voiceID(), body)
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, errors.New("elevenlabs returned empty audio")
	}
	return resp.Body, nil
}
