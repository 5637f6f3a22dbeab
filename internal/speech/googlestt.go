package speech

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/goffycoder/VOCI-TRADE/internal/api"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
)

// Transcriber converts recorded audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// GoogleTranscriber calls the Google Cloud Speech-to-Text REST API.
type GoogleTranscriber struct {
	cfg    *store.Config
	apiKey string
	client *api.Client
}

var _ Transcriber = (*GoogleTranscriber)(nil)

func NewGoogleTranscriber(cfg *store.Config, apiKey string) (*GoogleTranscriber, error) {
	if apiKey == "" {
		return nil, errors.New("GOOGLE_API_KEY missing")
	}
	return &GoogleTranscriber{
		cfg:    cfg,
		apiKey: apiKey,
		client: api.NewClient(api.WithBaseURL("https://speech.googleapis.com")),
	}, nil
}

// Transcribe returns the top transcription, or "" when nothing was
// recognized.
func (t *GoogleTranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	ctx, span := trace.StartSpan(ctx, "google-stt-transcribe")
	defer span.End()

	body := map[string]any{
		"config": map[string]any{
			"encoding":        "LINEAR16",
			"sampleRateHertz": t.cfg.Speech.SampleRate,
			"languageCode":    t.cfg.Speech.Language,
		},
		"audio": map[string]string{
			"content": base64.StdEncoding.EncodeToString(wav),
		},
	}

	resp, err := t.client.POST(ctx, "/v1/speech:recognize?key="+t.apiKey, body)
	if err != nil {
		return "", err
	}

	var r struct {
		Results []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"results"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", err
	}

	if len(r.Results) == 0 || len(r.Results[0].Alternatives) == 0 {
		return "", nil
	}
	return r.Results[0].Alternatives[0].Transcript, nil
}
