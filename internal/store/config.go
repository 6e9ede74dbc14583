package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration. It is loaded once at startup and
// read-only afterwards. An optional config.yaml provides base values; every
// field can be overridden from the environment, which is also where secrets
// live.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	// DryRunRaw holds the configured value before truthy parsing; DryRun is
	// the parsed flag. Dry-run is the default: live trading is opt-in.
	DryRunRaw string `yaml:"dry_run"`
	DryRun    bool   `yaml:"-"`

	LLM struct {
		Model    string `yaml:"model"`
		Endpoint string `yaml:"endpoint"`
		APIKey   string `yaml:"-"`
	} `yaml:"llm"`

	IB struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		ClientID int    `yaml:"client_id"`
	} `yaml:"ib"`

	Order struct {
		DefaultQty int    `yaml:"default_qty"`
		Exchange   string `yaml:"exchange"`
		Currency   string `yaml:"currency"`
	} `yaml:"order"`

	Allowlist []string `yaml:"allowlist"`

	// AllowSet is the normalized allowlist; empty means unrestricted.
	AllowSet map[string]struct{} `yaml:"-"`
}

func (c *Config) Validate() error {
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model cannot be empty")
	}
	if c.Order.DefaultQty <= 0 {
		return fmt.Errorf("order.default_qty must be positive, got %d", c.Order.DefaultQty)
	}
	if !c.DryRun {
		if c.IB.Host == "" {
			return fmt.Errorf("ib.host cannot be empty in live mode")
		}
		if c.IB.Port <= 0 || c.IB.Port > 65535 {
			return fmt.Errorf("ib.port must be a valid port, got %d", c.IB.Port)
		}
	}
	return nil
}

// LoadConfig reads the optional yaml file at path, applies environment
// overrides, fills defaults, and validates.
func LoadConfig(path string) (*Config, error) {
	var c Config

	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	c.applyEnv()
	c.applyDefaults()

	c.AllowSet = make(map[string]struct{})
	for _, s := range c.Allowlist {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			c.AllowSet[s] = struct{}{}
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("DRY_RUN"); v != "" {
		c.DryRunRaw = v
	}

	c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("OPENAI_API_ENDPOINT"); v != "" {
		c.LLM.Endpoint = v
	}

	if v := os.Getenv("IB_HOST"); v != "" {
		c.IB.Host = v
	}
	if v := os.Getenv("IB_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IB.Port = n
		}
	}
	if v := os.Getenv("IB_CLIENT_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IB.ClientID = n
		}
	}

	if v := os.Getenv("DEFAULT_BUY_QTY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Order.DefaultQty = n
		}
	}
	if v := os.Getenv("DEFAULT_EXCHANGE"); v != "" {
		c.Order.Exchange = v
	}
	if v := os.Getenv("DEFAULT_CURRENCY"); v != "" {
		c.Order.Currency = v
	}

	if v, set := os.LookupEnv("SYMBOL_ALLOWLIST"); set {
		c.Allowlist = strings.Split(v, ",")
	}
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.DryRunRaw == "" {
		c.DryRunRaw = "true"
	}
	c.DryRun = Truthy(c.DryRunRaw)
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-5-nano"
	}
	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = "https://api.openai.com/v1"
	}
	if c.IB.Host == "" {
		c.IB.Host = "127.0.0.1"
	}
	if c.IB.Port == 0 {
		c.IB.Port = 5000
	}
	if c.IB.ClientID == 0 {
		c.IB.ClientID = 42
	}
	if c.Order.DefaultQty == 0 {
		c.Order.DefaultQty = 10
	}
	if c.Order.Exchange == "" {
		c.Order.Exchange = "SMART"
	}
	if c.Order.Currency == "" {
		c.Order.Currency = "USD"
	}
}

// Truthy reports whether v is one of the common truthy strings.
func Truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
