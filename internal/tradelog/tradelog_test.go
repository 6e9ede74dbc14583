package tradelog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func TestAppendWritesOneLinePerOrder(t *testing.T) {
	d := t.TempDir()
	Configure(d)
	defer Configure("")

	if err := Append(Entry{Symbol: "ACME", Qty: 5, Status: "Filled", OrderID: "901", Reason: "signal"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := Append(Entry{Symbol: "SIRI", Qty: 1, DryRun: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	lines := readLines(t, filepath.Join(d, "trades.jsonl"))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var e Entry
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if e.Symbol != "ACME" || e.Qty != 5 || e.Status != "Filled" || e.OrderID != "901" {
		t.Errorf("entry = %+v", e)
	}
	if e.Time == "" {
		t.Error("entry has no timestamp")
	}

	if err := json.Unmarshal([]byte(lines[1]), &e); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if e.Symbol != "SIRI" || !e.DryRun {
		t.Errorf("entry = %+v", e)
	}
}

func TestAppendDecision(t *testing.T) {
	d := t.TempDir()
	Configure(d)
	defer Configure("")

	err := AppendDecision(DecisionEntry{
		Sender:  "a@b.com",
		Subject: "Buy signal",
		Buy:     true,
		Symbol:  "ACME",
		Qty:     5,
		Reason:  "strong signal",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	lines := readLines(t, filepath.Join(d, "decisions.jsonl"))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}

	var e DecisionEntry
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if !e.Buy || e.Symbol != "ACME" || e.Sender != "a@b.com" || e.Time == "" {
		t.Errorf("entry = %+v", e)
	}
}

func TestConfigureResetsWriters(t *testing.T) {
	d1 := t.TempDir()
	d2 := t.TempDir()
	defer Configure("")

	Configure(d1)
	if err := Append(Entry{Symbol: "ACME", Qty: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}

	Configure(d2)
	if err := Append(Entry{Symbol: "SIRI", Qty: 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := readLines(t, filepath.Join(d1, "trades.jsonl")); len(got) != 1 {
		t.Errorf("first dir has %d lines, want 1", len(got))
	}
	if got := readLines(t, filepath.Join(d2, "trades.jsonl")); len(got) != 1 {
		t.Errorf("second dir has %d lines, want 1", len(got))
	}
}
