package interfaces

import (
	"context"

	"email-trade-bot/internal/types"
)

type Engine interface {
	Process(ctx context.Context, payload map[string]string) (*types.InboundResult, error)
}
