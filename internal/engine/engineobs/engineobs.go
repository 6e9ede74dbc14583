package engineobs

import (
	"context"

	"email-trade-bot/internal/interfaces"
	"email-trade-bot/internal/logger"
	"email-trade-bot/internal/trace"
	"email-trade-bot/internal/types"
)

// observableEngine wraps an Engine with observability (logging & tracing)
type observableEngine struct {
	engine interfaces.Engine
}

// Compile-time interface check
var _ interfaces.Engine = (*observableEngine)(nil)

// Wrap wraps an engine with observability middleware
func Wrap(engine interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: engine,
	}
}

func (oe *observableEngine) Process(ctx context.Context, payload map[string]string) (*types.InboundResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Process")
	defer span.End()

	result, err := oe.engine.Process(ctx, payload)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Request processing failed", err)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Request processed",
		"executed", result.Executed,
		"symbol", result.Decision.Symbol,
	)
	return result, nil
}
