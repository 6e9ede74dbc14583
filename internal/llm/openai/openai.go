package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"email-trade-bot/internal/api"
	"email-trade-bot/internal/interfaces"
	"email-trade-bot/internal/store"
	"email-trade-bot/internal/trace"
	"email-trade-bot/internal/types"
)

// Decider classifies inbound emails through the OpenAI chat completions API.
// This is the only boundary where unstructured model output is turned into a
// structured decision: every failure mode degrades to "do not buy", never the
// other way around.
type Decider struct {
	cfg    *store.Config
	client *api.Client
}

var _ interfaces.Decider = (*Decider)(nil)

const systemPrompt = "You are a strict financial email classifier. " +
	"Return ONLY JSON with keys: buy (boolean), symbol (string), qty (integer), reason (string). " +
	"Only true BUY signals for listed US stocks. If symbol is unclear, set symbol to ''. " +
	"If quantity is missing, infer a reasonable integer or 0."

func NewDecider(cfg *store.Config) *Decider {
	client := api.NewClient(
		api.WithBaseURL(strings.TrimRight(cfg.LLM.Endpoint, "/")),
		api.WithHeader("Authorization", "Bearer "+cfg.LLM.APIKey),
		api.WithTimeout(60*time.Second),
	)
	return &Decider{cfg: cfg, client: client}
}

// Decide builds the two-message prompt and coerces the model response into a
// complete Decision. API failures are not errors from the caller's point of
// view; they come back as a non-buy Decision carrying the diagnostic reason.
func (d *Decider) Decide(ctx context.Context, email types.Email) (types.Decision, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	user := fmt.Sprintf("From: %s\nSubject: %s\n\n%s\n\nReturn only JSON.",
		email.Sender, email.Subject, email.Body)

	// NOTE: no temperature here; some models only accept the default.
	body := map[string]any{
		"model":           d.cfg.LLM.Model,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": user},
		},
	}

	content, err := d.complete(ctx, body)
	if err != nil {
		return types.Decision{Reason: "OpenAIError: " + err.Error()}, nil
	}

	return coerceDecision(content, d.cfg.Order.DefaultQty), nil
}

// Ping issues a trivial completion for the debug endpoint.
func (d *Decider) Ping(ctx context.Context) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-ping")
	defer span.End()

	body := map[string]any{
		"model":    d.cfg.LLM.Model,
		"messages": []map[string]string{{"role": "user", "content": "Ping"}},
	}
	content, err := d.complete(ctx, body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (d *Decider) complete(ctx context.Context, body map[string]any) (string, error) {
	if d.cfg.LLM.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY missing")
	}

	resp, err := d.client.POST(ctx, "/chat/completions", body)
	if err != nil {
		return "", err
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("no choices")
	}

	return r.Choices[0].Message.Content, nil
}

// coerceDecision repairs the raw model output into a structurally complete
// Decision: missing keys are backfilled, qty is forced positive, the symbol
// is uppercased and trimmed.
func coerceDecision(content string, defaultQty int) types.Decision {
	raw, ok := parseObject(content)
	if !ok {
		return types.Decision{Reason: "ParseError"}
	}

	var dec types.Decision
	if b, ok := raw["buy"].(bool); ok {
		dec.Buy = b
	}
	if s, ok := raw["symbol"].(string); ok {
		dec.Symbol = s
	}
	if s, ok := raw["reason"].(string); ok {
		dec.Reason = s
	}
	dec.Qty = coerceQty(raw["qty"], defaultQty)
	dec.Symbol = strings.ToUpper(strings.TrimSpace(dec.Symbol))
	return dec
}

// parseObject unmarshals content as a JSON object, tolerating models that
// wrap the object in prose or code fences.
func parseObject(content string) (map[string]any, bool) {
	t := strings.TrimSpace(content)

	var raw map[string]any
	if err := json.Unmarshal([]byte(t), &raw); err == nil {
		return raw, true
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(t[start:end+1]), &raw); err == nil {
			return raw, true
		}
	}
	return nil, false
}

func coerceQty(v any, defaultQty int) int {
	qty := 0
	switch t := v.(type) {
	case float64:
		qty = int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return defaultQty
		}
		qty = n
	default:
		return defaultQty
	}
	if qty <= 0 {
		return defaultQty
	}
	return qty
}
