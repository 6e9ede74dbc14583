package tradelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Append-only JSONL audit of classifications and placed orders. Rotation and
// compression are handled by lumberjack. Writes are best effort: an audit
// failure must never fail the request that produced it.

type Entry struct {
	Time    string `json:"time"`
	Symbol  string `json:"symbol"`
	Qty     int    `json:"qty"`
	Status  string `json:"status,omitempty"`
	OrderID string `json:"order_id,omitempty"`
	DryRun  bool   `json:"dry_run"`
	Reason  string `json:"reason,omitempty"`
}

type DecisionEntry struct {
	Time    string `json:"time"`
	Sender  string `json:"sender,omitempty"`
	Subject string `json:"subject,omitempty"`
	Buy     bool   `json:"buy"`
	Symbol  string `json:"symbol"`
	Qty     int    `json:"qty"`
	Reason  string `json:"reason,omitempty"`
}

var (
	mu        sync.Mutex
	dir       string
	trades    *lumberjack.Logger
	decisions *lumberjack.Logger
)

// Configure sets the log directory and resets open writers. Without it the
// TRADELOG_DIR env var (default "logs") applies on first write.
func Configure(d string) {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	dir = d
}

func logDir() string {
	if dir != "" {
		return dir
	}
	if v := os.Getenv("TRADELOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func rotating(name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir(), name),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

// Append records one placed (or simulated) order.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	if trades == nil {
		trades = rotating("trades.jsonl")
	}
	e.Time = timestamp()
	return writeLocked(trades, e)
}

// AppendDecision records one classification outcome.
func AppendDecision(e DecisionEntry) error {
	mu.Lock()
	defer mu.Unlock()
	if decisions == nil {
		decisions = rotating("decisions.jsonl")
	}
	e.Time = timestamp()
	return writeLocked(decisions, e)
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}

func writeLocked(w *lumberjack.Logger, e any) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Close flushes and closes the underlying files.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	var first error
	if trades != nil {
		if err := trades.Close(); err != nil {
			first = err
		}
		trades = nil
	}
	if decisions != nil {
		if err := decisions.Close(); err != nil && first == nil {
			first = err
		}
		decisions = nil
	}
	return first
}
