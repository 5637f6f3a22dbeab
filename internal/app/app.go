// Package app wires configuration, secrets, the instrument catalog, the
// language engine and the broker into a ready-to-use bundle shared by
// the voice and HTTP binaries.
package app

import (
	"context"
	"fmt"

	"github.com/goffycoder/VOCI-TRADE/internal/broker/brokerobs"
	"github.com/goffycoder/VOCI-TRADE/internal/broker/dhan"
	"github.com/goffycoder/VOCI-TRADE/internal/broker/sim"
	"github.com/goffycoder/VOCI-TRADE/internal/instruments"
	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/news"
	"github.com/goffycoder/VOCI-TRADE/internal/nlu/gemini"
	"github.com/goffycoder/VOCI-TRADE/internal/nlu/nluobs"
	"github.com/goffycoder/VOCI-TRADE/internal/nlu/openai"
	"github.com/goffycoder/VOCI-TRADE/internal/nlu/rules"
	"github.com/goffycoder/VOCI-TRADE/internal/speech"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
)

// App holds the long-lived dependencies of one process.
type App struct {
	Cfg      *store.Config
	Secrets  store.Secrets
	NLU      interfaces.NLU
	Broker   interfaces.Broker
	Resolver *instruments.Resolver
	News     *news.Service

	// Synth is nil when the speech provider is CONSOLE or the
	// ElevenLabs key is missing.
	Synth interfaces.Synthesizer

	// Sim is non-nil only in DRY_RUN mode; it exposes the update hook
	// the live broker delivers over its websocket.
	Sim *sim.Broker
}

func Build(ctx context.Context, cfgPath string) (*App, error) {
	cfg, err := store.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	secrets := store.LoadSecrets()
	if err := secrets.ValidateFor(cfg); err != nil {
		return nil, err
	}

	catalog, err := instruments.LoadCatalog(ctx, cfg.Instruments.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("loading instrument catalog: %w", err)
	}

	a := &App{
		Cfg:      cfg,
		Secrets:  secrets,
		Resolver: instruments.NewResolver(catalog),
		News:     news.NewService(cfg),
	}

	switch cfg.NLU.Provider {
	case "GEMINI":
		a.NLU = nluobs.Wrap(gemini.New(cfg, secrets.GoogleAPIKey))
	case "OPENAI":
		engine, err := openai.New(cfg, secrets.OpenAIAPIKey)
		if err != nil {
			return nil, err
		}
		a.NLU = nluobs.Wrap(engine)
	default:
		a.NLU = nluobs.Wrap(rules.New())
	}

	if cfg.Mode == "LIVE" {
		a.Broker = brokerobs.Wrap(dhan.NewClient(secrets.DhanClientID, secrets.DhanAccessToken))
	} else {
		a.Sim = sim.New()
		a.Broker = brokerobs.Wrap(a.Sim)
		logger.Info(ctx, "Running in DRY_RUN mode, orders are simulated")
	}

	if cfg.Speech.Provider == "CLOUD" {
		synth, err := speech.NewElevenLabsSynthesizer(cfg, secrets.ElevenLabsKey)
		if err != nil {
			logger.Warn(ctx, "Speech synthesis unavailable, falling back to text", "error", err)
		} else {
			a.Synth = synth
		}
	}

	return a, nil
}
