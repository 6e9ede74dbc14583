package ibkr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"email-trade-bot/internal/api"
	"email-trade-bot/internal/types"
)

// ensureSession returns the shared gateway session, creating or repairing it
// as needed. Callers must hold b.mu.
func (b *Broker) ensureSession(ctx context.Context) (*api.Client, string, error) {
	if b.client != nil {
		if b.alive(ctx, b.client) {
			return b.client, b.account, nil
		}
		// Session went stale; try to bring it back before rebuilding.
		_, _ = b.client.POST(ctx, "/iserver/reauthenticate", nil)
		if b.alive(ctx, b.client) {
			return b.client, b.account, nil
		}
		b.client = nil
		b.account = ""
	}

	opts := []api.ClientOption{
		api.WithBaseURL(b.baseURL() + "/v1/api"),
		api.WithTimeout(15 * time.Second),
	}
	if b.p.BaseURL == "" {
		opts = append(opts, api.WithInsecureTLS())
	}
	client := api.NewClient(opts...)

	if !b.alive(ctx, client) {
		if _, err := client.POST(ctx, "/iserver/reauthenticate", nil); err != nil {
			return nil, "", err
		}
		if !b.alive(ctx, client) {
			return nil, "", errors.New("gateway session not authenticated")
		}
	}

	accounts, err := b.listAccounts(ctx, client)
	if err != nil {
		return nil, "", err
	}
	if len(accounts) == 0 {
		return nil, "", errors.New("no brokerage accounts")
	}

	b.client = client
	b.account = accounts[0]
	return b.client, b.account, nil
}

func (b *Broker) alive(ctx context.Context, client *api.Client) bool {
	resp, err := client.GET(ctx, "/iserver/auth/status")
	if err != nil {
		return false
	}
	var st struct {
		Authenticated bool `json:"authenticated"`
		Connected     bool `json:"connected"`
	}
	if err := resp.ParseJSON(&st); err != nil {
		return false
	}
	return st.Authenticated && st.Connected
}

func (b *Broker) listAccounts(ctx context.Context, client *api.Client) ([]string, error) {
	resp, err := client.GET(ctx, "/iserver/accounts")
	if err != nil {
		return nil, err
	}
	var r struct {
		Accounts        []string `json:"accounts"`
		SelectedAccount string   `json:"selectedAccount"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return nil, err
	}
	if r.SelectedAccount != "" {
		ordered := []string{r.SelectedAccount}
		for _, a := range r.Accounts {
			if a != r.SelectedAccount {
				ordered = append(ordered, a)
			}
		}
		return ordered, nil
	}
	return r.Accounts, nil
}

// resolveContract maps a ticker to a contract id for a listed stock.
func (b *Broker) resolveContract(ctx context.Context, client *api.Client, symbol string) (int64, error) {
	resp, err := client.GET(ctx, "/iserver/secdef/search?symbol="+url.QueryEscape(symbol)+"&secType=STK")
	if err != nil {
		return 0, err
	}
	var hits []struct {
		Conid    any `json:"conid"`
		Sections []struct {
			SecType string `json:"secType"`
		} `json:"sections"`
	}
	if err := resp.ParseJSON(&hits); err != nil {
		return 0, err
	}
	for _, h := range hits {
		for _, s := range h.Sections {
			if s.SecType == "STK" {
				if id, ok := conidFrom(h.Conid); ok {
					return b.qualifyContract(ctx, client, id), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("no stock contract for %q", symbol)
}

// qualifyContract pins the contract to the configured exchange and currency.
// Best effort: the search conid is kept when the gateway cannot refine it.
func (b *Broker) qualifyContract(ctx context.Context, client *api.Client, conid int64) int64 {
	path := fmt.Sprintf("/iserver/secdef/info?conid=%d&sectype=STK&exchange=%s&currency=%s",
		conid, url.QueryEscape(b.p.Exchange), url.QueryEscape(b.p.Currency))
	resp, err := client.GET(ctx, path)
	if err != nil {
		return conid
	}
	var infos []struct {
		Conid any `json:"conid"`
	}
	if err := resp.ParseJSON(&infos); err != nil || len(infos) == 0 {
		return conid
	}
	if id, ok := conidFrom(infos[0].Conid); ok {
		return id
	}
	return conid
}

func (b *Broker) submitOrder(ctx context.Context, client *api.Client, account string, conid int64, qty int) (string, error) {
	order := map[string]any{
		"acctId":          account,
		"conid":           conid,
		"cOID":            fmt.Sprintf("email-%d-%d", b.p.ClientID, time.Now().UnixNano()),
		"orderType":       "MKT",
		"side":            "BUY",
		"quantity":        qty,
		"tif":             "DAY",
		"listingExchange": b.p.Exchange,
	}
	body := map[string]any{"orders": []map[string]any{order}}

	resp, err := client.POST(ctx, "/iserver/account/"+account+"/orders", body)
	if err != nil {
		return "", err
	}
	return b.extractOrderID(ctx, client, resp)
}

// extractOrderID walks the reply chain: the gateway may answer with
// confirmation prompts before handing out the order id.
func (b *Broker) extractOrderID(ctx context.Context, client *api.Client, resp *api.Response) (string, error) {
	for hop := 0; hop < 3; hop++ {
		var entries []struct {
			OrderID string `json:"order_id"`
			ID      string `json:"id"`
		}
		if err := resp.ParseJSON(&entries); err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "", errors.New("empty order response")
		}
		if entries[0].OrderID != "" {
			return entries[0].OrderID, nil
		}
		if entries[0].ID == "" {
			return "", errors.New("order response carried no id")
		}

		var err error
		resp, err = client.POST(ctx, "/iserver/reply/"+entries[0].ID, map[string]bool{"confirmed": true})
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("too many confirmation prompts")
}

// waitUntilDone polls order status until a terminal state or the timeout.
// Fields the gateway does not expose stay at their sentinels.
func (b *Broker) waitUntilDone(ctx context.Context, client *api.Client, orderID string) types.TradeResult {
	res := types.TradeResult{Status: "UNKNOWN", OrderID: orderID}
	deadline := time.Now().Add(orderTimeout)

	for {
		resp, err := client.GET(ctx, "/iserver/account/order/status/"+orderID)
		if err == nil {
			var st struct {
				OrderStatus string `json:"order_status"`
				CumFill     any    `json:"cum_fill"`
				AvgPrice    any    `json:"average_price"`
			}
			if err := resp.ParseJSON(&st); err == nil {
				if st.OrderStatus != "" {
					res.Status = st.OrderStatus
				}
				if f, ok := floatFrom(st.CumFill); ok {
					res.Filled = &f
				}
				if f, ok := floatFrom(st.AvgPrice); ok {
					res.AvgPrice = &f
				}
				if terminalStatus(st.OrderStatus) {
					return res
				}
			}
		}

		if time.Now().After(deadline) {
			return res
		}
		select {
		case <-ctx.Done():
			return res
		case <-time.After(pollInterval):
		}
	}
}

func terminalStatus(status string) bool {
	switch status {
	case "Filled", "Cancelled", "ApiCancelled", "Inactive", "Rejected":
		return true
	}
	return false
}

func conidFrom(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func floatFrom(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
