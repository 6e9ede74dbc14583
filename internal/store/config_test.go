package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks every override so tests see only what they set themselves.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LISTEN_ADDR", "DRY_RUN",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_API_ENDPOINT",
		"IB_HOST", "IB_PORT", "IB_CLIENT_ID",
		"DEFAULT_BUY_QTY", "DEFAULT_EXCHANGE", "DEFAULT_CURRENCY",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("SYMBOL_ALLOWLIST", "")
	_ = os.Unsetenv("SYMBOL_ALLOWLIST")
}

func missingPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(missingPath(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if !cfg.DryRun {
		t.Error("dry-run must default to true")
	}
	if cfg.LLM.Model != "gpt-5-nano" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Endpoint != "https://api.openai.com/v1" {
		t.Errorf("Endpoint = %q", cfg.LLM.Endpoint)
	}
	if cfg.IB.Host != "127.0.0.1" || cfg.IB.Port != 5000 || cfg.IB.ClientID != 42 {
		t.Errorf("IB = %+v", cfg.IB)
	}
	if cfg.Order.DefaultQty != 10 || cfg.Order.Exchange != "SMART" || cfg.Order.Currency != "USD" {
		t.Errorf("Order = %+v", cfg.Order)
	}
	if len(cfg.AllowSet) != 0 {
		t.Errorf("AllowSet = %v, want empty", cfg.AllowSet)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("DRY_RUN", "no")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-test")
	t.Setenv("IB_HOST", "gateway.local")
	t.Setenv("IB_PORT", "5001")
	t.Setenv("DEFAULT_BUY_QTY", "3")
	t.Setenv("SYMBOL_ALLOWLIST", " acme , siri ,")

	cfg, err := LoadConfig(missingPath(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DryRun {
		t.Error("DRY_RUN=no must disable dry-run")
	}
	if cfg.LLM.APIKey != "sk-test" || cfg.LLM.Model != "gpt-test" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.IB.Host != "gateway.local" || cfg.IB.Port != 5001 {
		t.Errorf("IB = %+v", cfg.IB)
	}
	if cfg.Order.DefaultQty != 3 {
		t.Errorf("DefaultQty = %d", cfg.Order.DefaultQty)
	}
	if len(cfg.AllowSet) != 2 {
		t.Errorf("AllowSet = %v", cfg.AllowSet)
	}
	for _, want := range []string{"ACME", "SIRI"} {
		if _, ok := cfg.AllowSet[want]; !ok {
			t.Errorf("AllowSet missing %s: %v", want, cfg.AllowSet)
		}
	}
}

func TestLoadConfigYAMLWithEnvPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_MODEL", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := strings.Join([]string{
		"listen_addr: \":7070\"",
		"dry_run: \"false\"",
		"llm:",
		"  model: from-file",
		"ib:",
		"  host: filehost",
		"  port: 6000",
		"allowlist: [acme]",
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DryRun {
		t.Error("file dry_run false must stick")
	}
	if cfg.LLM.Model != "from-env" {
		t.Errorf("Model = %q, env must win over file", cfg.LLM.Model)
	}
	if cfg.IB.Host != "filehost" || cfg.IB.Port != 6000 {
		t.Errorf("IB = %+v", cfg.IB)
	}
	if _, ok := cfg.AllowSet["ACME"]; !ok {
		t.Errorf("AllowSet = %v", cfg.AllowSet)
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoadConfigInvalidQty(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_BUY_QTY", "-5")

	if _, err := LoadConfig(missingPath(t)); err == nil {
		t.Fatal("expected validation error for negative qty")
	}
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "Yes", "on", " on "} {
		if !Truthy(v) {
			t.Errorf("Truthy(%q) = false", v)
		}
	}
	for _, v := range []string{"", "0", "false", "no", "off", "banana"} {
		if Truthy(v) {
			t.Errorf("Truthy(%q) = true", v)
		}
	}
}
