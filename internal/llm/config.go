package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config selects and configures the extraction model.
type Config struct {
	// Provider is one of anthropic, openai, gemini, openrouter or replay.
	Provider string

	Anthropic  VendorConfig
	OpenAI     VendorConfig
	Gemini     VendorConfig
	OpenRouter VendorConfig

	// ReplayFile is the recorded reply the replay provider serves.
	ReplayFile string

	Retry RetryConfig

	// Timeout bounds one extraction, retries included.
	Timeout time.Duration
}

// VendorConfig is the per-vendor connection. Model may be a short alias
// ("claude-sonnet", "gemini-flash") or a full vendor model ID.
type VendorConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// vendors lists the providers backed by a remote API, with the env name
// fragment used for their settings and the key variable the vendor's own
// tooling reads.
var vendors = []struct {
	name      string
	env       string
	commonKey string
	pick      func(*Config) *VendorConfig
}{
	{"gemini", "GEMINI", "GEMINI_API_KEY", func(c *Config) *VendorConfig { return &c.Gemini }},
	{"openai", "OPENAI", "OPENAI_API_KEY", func(c *Config) *VendorConfig { return &c.OpenAI }},
	{"anthropic", "ANTHROPIC", "ANTHROPIC_API_KEY", func(c *Config) *VendorConfig { return &c.Anthropic }},
	{"openrouter", "OPENROUTER", "OPENROUTER_API_KEY", func(c *Config) *VendorConfig { return &c.OpenRouter }},
}

func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  VendorConfig{Model: "claude-sonnet"},
		OpenAI:     VendorConfig{Model: "gpt-4o-mini"},
		Gemini:     VendorConfig{Model: "gemini-flash"},
		OpenRouter: VendorConfig{Model: "google/gemini-2.5-flash", BaseURL: defaultOpenRouterBaseURL},
		// One attempt: a failed extraction is reported, not silently redone.
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		// Reading a long PDF is slow.
		Timeout: 2 * time.Minute,
	}
}

// ConfigFromEnv overlays QUIZARCADE_* variables on DefaultConfig. Each vendor
// reads QUIZARCADE_<VENDOR>_API_KEY, _MODEL and _BASE_URL.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	setString(&cfg.Provider, "QUIZARCADE_LLM_PROVIDER")
	setString(&cfg.ReplayFile, "QUIZARCADE_LLM_REPLAY_FILE")

	for _, v := range vendors {
		vc := v.pick(&cfg)
		prefix := "QUIZARCADE_" + v.env
		setString(&vc.APIKey, prefix+"_API_KEY")
		setString(&vc.Model, prefix+"_MODEL")
		setString(&vc.BaseURL, prefix+"_BASE_URL")
	}

	if n, err := strconv.Atoi(os.Getenv("QUIZARCADE_LLM_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	if d, err := time.ParseDuration(os.Getenv("QUIZARCADE_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// DiscoverConfig falls back to the vendors' own key variables
// (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY),
// first match wins.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, v := range vendors {
		if k := os.Getenv(v.commonKey); k != "" {
			cfg.Provider = v.name
			v.pick(&cfg).APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks the selected provider has what it needs to start.
func (c Config) Validate() error {
	if c.Provider == "replay" {
		if c.ReplayFile == "" {
			return fmt.Errorf("QUIZARCADE_LLM_REPLAY_FILE is required for the replay provider")
		}
		return nil
	}
	for _, v := range vendors {
		if v.name != c.Provider {
			continue
		}
		if v.pick(&c).APIKey == "" {
			return fmt.Errorf("QUIZARCADE_%s_API_KEY is required for the %s provider", v.env, v.name)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider: %q", c.Provider)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
