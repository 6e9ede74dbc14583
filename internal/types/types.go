package types

// Email is the canonical view of one inbound message. All fields are plain
// strings, empty when the provider did not send them.
type Email struct {
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Decision is the normalized classifier output. All four keys are always
// present regardless of what the model returned.
type Decision struct {
	Buy    bool   `json:"buy"`
	Symbol string `json:"symbol"`
	Qty    int    `json:"qty"`
	Reason string `json:"reason"`
}

// TradeResult is the outcome of attempting (or simulating) a market buy.
// Broker-reported fields are optional: the gateway does not always expose
// them, so absent values stay absent instead of defaulting to zero.
type TradeResult struct {
	DryRun   bool     `json:"dry_run"`
	Action   string   `json:"action,omitempty"`
	Symbol   string   `json:"symbol"`
	Qty      int      `json:"qty"`
	Status   string   `json:"status,omitempty"`
	Filled   *float64 `json:"filled,omitempty"`
	AvgPrice *float64 `json:"avgPrice,omitempty"`
	OrderID  string   `json:"orderId,omitempty"`
}

// InboundResult is the webhook response body.
type InboundResult struct {
	Decision Decision     `json:"decision"`
	Executed bool         `json:"executed"`
	Trade    *TradeResult `json:"trade,omitempty"`
	Reason   string       `json:"reason,omitempty"`
}

// BrokerStatus reports gateway health for the debug surface.
type BrokerStatus struct {
	DryRun    bool     `json:"dry_run"`
	Connected bool     `json:"connected"`
	Accounts  []string `json:"accounts,omitempty"`
}
