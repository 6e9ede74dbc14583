package brokerobs

import (
	"context"

	"email-trade-bot/internal/interfaces"
	"email-trade-bot/internal/logger"
	"email-trade-bot/internal/trace"
	"email-trade-bot/internal/types"
)

// observableBroker wraps a Broker with observability (logging & tracing)
type observableBroker struct {
	broker interfaces.Broker
}

// Compile-time interface check
var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap wraps a broker with observability middleware
func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{
		broker: broker,
	}
}

func (ob *observableBroker) PlaceMarketBuy(ctx context.Context, symbol string, qty int) (types.TradeResult, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceMarketBuy")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Placing market buy", "symbol", symbol, "qty", qty)

	result, err := ob.broker.PlaceMarketBuy(ctx, symbol, qty)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err, "symbol", symbol, "qty", qty)
		return types.TradeResult{}, err
	}

	logger.Trade(ctx, result.Symbol, result.Qty, result.Status, result.OrderID, result.DryRun)
	return result, nil
}

func (ob *observableBroker) Health(ctx context.Context) (types.BrokerStatus, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Health")
	defer span.End()

	status, err := ob.broker.Health(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Broker health check failed", err)
		return types.BrokerStatus{}, err
	}

	logger.DebugSkip(ctx, 1, "Broker health check",
		"connected", status.Connected,
		"dry_run", status.DryRun,
		"accounts", len(status.Accounts),
	)
	return status, nil
}
