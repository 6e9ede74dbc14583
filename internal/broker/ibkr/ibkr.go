package ibkr

import (
	"context"
	"fmt"
	"sync"
	"time"

	"email-trade-bot/internal/api"
	"email-trade-bot/internal/interfaces"
	"email-trade-bot/internal/trace"
	"email-trade-bot/internal/types"
)

// Params configures the Client Portal gateway connection.
type Params struct {
	DryRun   bool
	Host     string
	Port     int
	ClientID int
	Exchange string
	Currency string

	// BaseURL overrides the https://host:port gateway URL (tests).
	BaseURL string
}

// Broker places market buy orders through the IBKR Client Portal gateway.
// One logical session is shared across requests: it is created lazily on the
// first live order, reused while the gateway reports it alive, and
// re-established otherwise. The mutex serializes session management and
// order submission; the gateway session is not safe for concurrent writers.
type Broker struct {
	p Params

	mu      sync.Mutex
	client  *api.Client
	account string
}

var _ interfaces.Broker = (*Broker)(nil)

const (
	orderTimeout = 30 * time.Second
	pollInterval = time.Second
)

func New(p Params) *Broker {
	return &Broker{p: p}
}

// PlaceMarketBuy submits a market BUY for qty shares of symbol and blocks
// until the order reaches a terminal state or the timeout elapses. In dry-run
// mode no gateway I/O happens at all.
func (b *Broker) PlaceMarketBuy(ctx context.Context, symbol string, qty int) (types.TradeResult, error) {
	if b.p.DryRun {
		return types.TradeResult{
			DryRun: true,
			Action: "BUY",
			Symbol: symbol,
			Qty:    qty,
		}, nil
	}

	ctx, span := trace.StartSpan(ctx, "ibkr.PlaceMarketBuy")
	defer span.End()

	b.mu.Lock()
	defer b.mu.Unlock()

	client, account, err := b.ensureSession(ctx)
	if err != nil {
		return types.TradeResult{}, fmt.Errorf("ibkr: session: %w", err)
	}

	conid, err := b.resolveContract(ctx, client, symbol)
	if err != nil {
		return types.TradeResult{}, fmt.Errorf("ibkr: resolve %s: %w", symbol, err)
	}

	orderID, err := b.submitOrder(ctx, client, account, conid, qty)
	if err != nil {
		return types.TradeResult{}, fmt.Errorf("ibkr: submit %s: %w", symbol, err)
	}

	res := b.waitUntilDone(ctx, client, orderID)
	res.Symbol = symbol
	res.Qty = qty
	return res, nil
}

// Health reports gateway connectivity for the debug surface. Dry-run mode
// never contacts the gateway.
func (b *Broker) Health(ctx context.Context) (types.BrokerStatus, error) {
	if b.p.DryRun {
		return types.BrokerStatus{DryRun: true}, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	client, account, err := b.ensureSession(ctx)
	if err != nil {
		return types.BrokerStatus{}, fmt.Errorf("ibkr: session: %w", err)
	}

	accounts, err := b.listAccounts(ctx, client)
	if err != nil {
		accounts = []string{account}
	}
	return types.BrokerStatus{Connected: true, Accounts: accounts}, nil
}

func (b *Broker) baseURL() string {
	if b.p.BaseURL != "" {
		return b.p.BaseURL
	}
	return fmt.Sprintf("https://%s:%d", b.p.Host, b.p.Port)
}
