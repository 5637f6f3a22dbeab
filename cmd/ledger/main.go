package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/goffycoder/VOCI-TRADE/internal/app"
	"github.com/goffycoder/VOCI-TRADE/internal/broker/dhan"
	"github.com/goffycoder/VOCI-TRADE/internal/conversation"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
)

func main() {
	if err := initializeSystem(); err != nil {
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutting down...")
		cancel()
	}()

	a, err := app.Build(ctx, "config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Startup failed", err)
		os.Exit(1)
	}

	compressOldLogs(ctx)

	speaker, listener, prompter := initializeSpeech(ctx, a)
	wakeDetector := initializeWake(a.Cfg, listener, prompter)

	if err := startupGate(ctx, prompter, speaker, a.Secrets.StartupPIN); err != nil {
		logger.ErrorWithErr(ctx, "Startup gate failed", err)
		os.Exit(1)
	}

	onUpdate := announceUpdate(speaker)
	if a.Cfg.Mode == "LIVE" {
		updates := dhan.NewUpdateListener(a.Secrets.DhanClientID, a.Secrets.DhanAccessToken, onUpdate)
		go updates.Run(ctx)
	} else if a.Sim != nil {
		a.Sim.OnUpdate(onUpdate)
	}

	machine := conversation.NewMachine(conversation.Deps{
		Config:      a.Cfg,
		NLU:         a.NLU,
		Broker:      a.Broker,
		Resolver:    a.Resolver,
		Speaker:     speaker,
		Listener:    listener,
		Prompter:    prompter,
		Wake:        wakeDetector,
		ConfirmPIN:  a.Secrets.ConfirmPIN,
		MarketOpen:  dhan.IsMarketOpen,
		SpeakError:  dhan.SpokenError,
		RecordTrade: recordTrade,
		RecordTurn:  recordTurn,
	})

	_ = speaker.Say(ctx, "Ledger is online.")
	logger.Info(ctx, "Ledger started", "mode", a.Cfg.Mode, "nlu", a.Cfg.NLU.Provider)

	if err := machine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorWithErr(ctx, "Conversation loop exited", err)
	}

	_ = trace.Shutdown(context.Background())
}
