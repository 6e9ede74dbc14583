package interfaces

import (
	"context"

	"email-trade-bot/internal/types"
)

type Decider interface {
	// Decide classifies one inbound email. Classifier failures degrade to a
	// safe non-buy Decision; the error return is reserved for wiring bugs.
	Decide(ctx context.Context, email types.Email) (types.Decision, error)

	// Ping issues a trivial completion and returns the raw model reply.
	Ping(ctx context.Context) (string, error)
}
