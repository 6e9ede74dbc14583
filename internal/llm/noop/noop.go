package noop

import (
	"context"

	"email-trade-bot/internal/interfaces"
	"email-trade-bot/internal/types"
)

// Decider never buys. It stands in when no API key is configured.
type Decider struct{}

var _ interfaces.Decider = (*Decider)(nil)

func NewDecider() *Decider {
	return &Decider{}
}

func (d *Decider) Decide(ctx context.Context, email types.Email) (types.Decision, error) {
	return types.Decision{Buy: false, Symbol: "", Qty: 0, Reason: "noop decider"}, nil
}

func (d *Decider) Ping(ctx context.Context) (string, error) {
	return "noop", nil
}
