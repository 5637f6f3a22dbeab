package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/goffycoder/VOCI-TRADE/internal/app"
	"github.com/goffycoder/VOCI-TRADE/internal/broker/dhan"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/server"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutting down...")
		cancel()
		_ = trace.Shutdown(context.Background())
		os.Exit(0)
	}()

	a, err := app.Build(ctx, "config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Startup failed", err)
		os.Exit(1)
	}

	srv := server.New(server.Deps{
		Config:     a.Cfg,
		NLU:        a.NLU,
		Broker:     a.Broker,
		Resolver:   a.Resolver,
		News:       a.News,
		Synth:      a.Synth,
		MarketOpen: dhan.IsMarketOpen,
	})

	logger.Info(ctx, "Chat server listening", "addr", a.Cfg.Server.Addr, "mode", a.Cfg.Mode)
	if err := srv.Run(); err != nil {
		logger.ErrorWithErr(ctx, "Server exited", err)
		os.Exit(1)
	}
}
