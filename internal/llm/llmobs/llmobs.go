package llmobs

import (
	"context"

	"email-trade-bot/internal/interfaces"
	"email-trade-bot/internal/logger"
	"email-trade-bot/internal/trace"
	"email-trade-bot/internal/types"
)

// observableDecider wraps a Decider with observability (logging & tracing)
type observableDecider struct {
	decider interfaces.Decider
}

// Compile-time interface check
var _ interfaces.Decider = (*observableDecider)(nil)

// Wrap wraps a decider with observability middleware
func Wrap(decider interfaces.Decider) interfaces.Decider {
	return &observableDecider{
		decider: decider,
	}
}

func (od *observableDecider) Decide(ctx context.Context, email types.Email) (types.Decision, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Decide")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting classification",
		"sender", email.Sender,
		"subject", email.Subject,
		"body_len", len(email.Body),
	)

	decision, err := od.decider.Decide(ctx, email)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get classification", err,
			"sender", email.Sender,
		)
		return types.Decision{}, err
	}

	logger.InfoSkip(ctx, 1, "Classification received",
		"buy", decision.Buy,
		"symbol", decision.Symbol,
		"qty", decision.Qty,
		"reason", decision.Reason,
	)

	return decision, nil
}

func (od *observableDecider) Ping(ctx context.Context) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Ping")
	defer span.End()

	reply, err := od.decider.Ping(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Classifier ping failed", err)
		return "", err
	}
	return reply, nil
}
