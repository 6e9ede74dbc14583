package engine

import (
	"context"

	"email-trade-bot/internal/interfaces"
	"email-trade-bot/internal/logger"
	"email-trade-bot/internal/mail"
	"email-trade-bot/internal/store"
	"email-trade-bot/internal/tradelog"
	"email-trade-bot/internal/types"
)

// Engine runs the per-request flow: normalize the inbound payload, ask the
// classifier, gate the symbol, and place (or simulate) the order.
type Engine struct {
	cfg *store.Config
	brk interfaces.Broker
	llm interfaces.Decider
}

var _ interfaces.Engine = (*Engine)(nil)

func New(cfg *store.Config, brk interfaces.Broker, d interfaces.Decider) *Engine {
	return &Engine{cfg: cfg, brk: brk, llm: d}
}

func (e *Engine) Process(ctx context.Context, payload map[string]string) (*types.InboundResult, error) {
	email := mail.Normalize(payload)
	logger.Info(ctx, "Inbound email",
		"from", email.Sender,
		"subject", email.Subject,
		"has_text", email.Body != "",
	)

	decision, err := e.llm.Decide(ctx, email)
	if err != nil {
		// The decider degrades its own failures; a hard error here still
		// must land on the "do not buy" side.
		decision = types.Decision{Reason: "DeciderError: " + err.Error()}
	}

	logger.Decision(ctx, decision.Symbol, decision.Buy, decision.Qty, decision.Reason)
	_ = tradelog.AppendDecision(tradelog.DecisionEntry{
		Sender:  email.Sender,
		Subject: email.Subject,
		Buy:     decision.Buy,
		Symbol:  decision.Symbol,
		Qty:     decision.Qty,
		Reason:  decision.Reason,
	})

	result := &types.InboundResult{Decision: decision}

	if decision.Buy && allowedSymbol(decision.Symbol, e.cfg.AllowSet) {
		trade, err := e.brk.PlaceMarketBuy(ctx, decision.Symbol, decision.Qty)
		if err != nil {
			// Broker failures surface to the HTTP boundary.
			return nil, err
		}
		_ = tradelog.Append(tradelog.Entry{
			Symbol:  trade.Symbol,
			Qty:     trade.Qty,
			Status:  trade.Status,
			OrderID: trade.OrderID,
			DryRun:  trade.DryRun,
			Reason:  decision.Reason,
		})
		result.Trade = &trade
		result.Executed = true
		return result, nil
	}

	reason := decision.Reason
	if reason == "" {
		reason = "Not a BUY or symbol not allowed"
	}
	result.Reason = reason
	return result, nil
}
