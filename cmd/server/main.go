package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"email-trade-bot/internal/logger"
	"email-trade-bot/internal/server"
	"email-trade-bot/internal/store"
	"email-trade-bot/internal/trace"
	"email-trade-bot/internal/tradelog"

	"github.com/joho/godotenv"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()

	must(logger.Init())
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	cfg, err := store.LoadConfig("config.yaml")
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brk := initializeBroker(ctx, cfg)
	decider := initializeDecider(ctx, cfg)
	eng := initializeEngine(cfg, brk, decider)
	srv := server.New(cfg, eng, decider, brk)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			logger.ErrorWithErr(ctx, "HTTP server failed", err)
			cancel()
		}
	}()
	logger.Info(ctx, "Server started", "addr", cfg.ListenAddr, "dry_run", cfg.DryRun)

	select {
	case <-sigc:
		logger.Info(ctx, "Shutting down...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "Server shutdown failed", err)
	}
	_ = tradelog.Close()
	_ = trace.Shutdown(shutdownCtx)
}
