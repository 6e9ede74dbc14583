package main

import (
	"context"

	"email-trade-bot/internal/broker/brokerobs"
	"email-trade-bot/internal/broker/ibkr"
	"email-trade-bot/internal/engine"
	"email-trade-bot/internal/engine/engineobs"
	"email-trade-bot/internal/interfaces"
	"email-trade-bot/internal/llm/llmobs"
	"email-trade-bot/internal/llm/noop"
	"email-trade-bot/internal/llm/openai"
	"email-trade-bot/internal/logger"
	"email-trade-bot/internal/store"
)

// initializeBroker initializes the broker instance with observability
func initializeBroker(ctx context.Context, cfg *store.Config) interfaces.Broker {
	brk := ibkr.New(ibkr.Params{
		DryRun:   cfg.DryRun,
		Host:     cfg.IB.Host,
		Port:     cfg.IB.Port,
		ClientID: cfg.IB.ClientID,
		Exchange: cfg.Order.Exchange,
		Currency: cfg.Order.Currency,
	})

	if cfg.DryRun {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	} else {
		logger.Info(ctx, "Live trading through Client Portal gateway",
			"host", cfg.IB.Host,
			"port", cfg.IB.Port,
		)
	}

	return brokerobs.Wrap(brk)
}

// initializeDecider initializes the LLM decider with observability
func initializeDecider(ctx context.Context, cfg *store.Config) interfaces.Decider {
	var decider interfaces.Decider
	if cfg.LLM.APIKey != "" {
		decider = openai.NewDecider(cfg)
	} else {
		decider = noop.NewDecider()
		logger.Warn(ctx, "OPENAI_API_KEY not set - using Noop decider (never buys)")
	}

	return llmobs.Wrap(decider)
}

// initializeEngine initializes the request engine with observability
func initializeEngine(cfg *store.Config, brk interfaces.Broker, decider interfaces.Decider) interfaces.Engine {
	eng := engine.New(cfg, brk, decider)
	return engineobs.Wrap(eng)
}
