package interfaces

import (
	"context"

	"email-trade-bot/internal/types"
)

type Broker interface {
	PlaceMarketBuy(ctx context.Context, symbol string, qty int) (types.TradeResult, error)
	Health(ctx context.Context) (types.BrokerStatus, error)
}
