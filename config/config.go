package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full bot configuration, loaded from YAML with environment
// overrides applied afterwards. It is built once per process and passed into
// each pipeline stage explicitly.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	LLM     LLMConfig     `yaml:"llm"`
	Filter  FilterConfig  `yaml:"filter"`
	Reply   ReplyConfig   `yaml:"reply"`
	Summary SummaryConfig `yaml:"summary"`
	History HistoryConfig `yaml:"history"`
	Server  ServerConfig  `yaml:"server"`
}

// SourceConfig selects and configures the post source.
type SourceConfig struct {
	Type          string `yaml:"type"` // "twitter", "reddit", "rss"
	APIURL        string `yaml:"api_url"`
	BearerToken   string `yaml:"bearer_token"`
	UserAgent     string `yaml:"user_agent"`
	Subreddits    string `yaml:"subreddits"`
	FeedURL       string `yaml:"feed_url"`
	FetchInterval int    `yaml:"fetch_interval"` // seconds
	FetchTimeout  int    `yaml:"fetch_timeout"`  // seconds
}

// LLMConfig configures the model backend used for reply generation.
type LLMConfig struct {
	BaseURL      string  `yaml:"base_url"` // empty means api.openai.com
	Model        string  `yaml:"model"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	SystemPrompt string  `yaml:"system_prompt"`
	Timeout      int     `yaml:"timeout"` // seconds per request
}

// FilterConfig holds the content filter thresholds.
type FilterConfig struct {
	MinEngagement   int      `yaml:"min_engagement"`
	KeywordsInclude []string `yaml:"keywords_include"`
	KeywordsExclude []string `yaml:"keywords_exclude"`
	Language        string   `yaml:"language"`
	MaxAgeHours     float64  `yaml:"max_age_hours"`
	MinSentiment    *float64 `yaml:"min_sentiment"` // VADER compound floor, nil disables
}

// ReplyConfig controls how replies are selected, throttled, and delivered.
type ReplyConfig struct {
	Mode             string  `yaml:"mode"`     // "log", "post", "both"
	Strategy         string  `yaml:"strategy"` // "random", "engagement_based", "selective"
	ReplyProbability float64 `yaml:"reply_probability"`
	MaxPerHour       int     `yaml:"max_replies_per_hour"`
	DelayMinSeconds  int     `yaml:"delay_min_seconds"`
	DelayMaxSeconds  int     `yaml:"delay_max_seconds"`
	MaxLength        int     `yaml:"max_length"`
	QuoteRatio       float64 `yaml:"quote_ratio"` // fraction of actions sent as quotes
	ResponseLog      string  `yaml:"response_log"`
}

// SummaryConfig controls the once-per-day activity recap. The recap covers
// the trailing 24 hours of response-log activity and follows the reply mode:
// logged in log mode, published in post mode.
type SummaryConfig struct {
	Enabled bool `yaml:"enabled"`
	Hour    int  `yaml:"hour"` // earliest local hour to publish, 0-23
}

// HistoryConfig selects the history-store backend.
type HistoryConfig struct {
	Backend       string `yaml:"backend"` // "file" or "valkey"
	Path          string `yaml:"path"`
	RateStatePath string `yaml:"rate_state_path"`
	StatusPath    string `yaml:"status_path"`
}

// ServerConfig configures the optional status HTTP server.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the built-in configuration, mirroring what a fresh
// `replyflow config --write-default` produces.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Type:          "twitter",
			UserAgent:     "replyflow-client/1.0 (+https://github.com/spacesedan/replyflow)",
			FetchInterval: 300,
			FetchTimeout:  30,
		},
		LLM: LLMConfig{
			Model:        "gpt-4o-mini",
			Temperature:  0.7,
			MaxTokens:    150,
			SystemPrompt: "You are a helpful assistant that writes short, natural social media replies.",
			Timeout:      60,
		},
		Filter: FilterConfig{
			MinEngagement:   5,
			KeywordsExclude: []string{"spam", "giveaway", "promo"},
			Language:        "en",
			MaxAgeHours:     24,
		},
		Reply: ReplyConfig{
			Mode:             "log",
			Strategy:         "engagement_based",
			ReplyProbability: 1.0,
			MaxPerHour:       10,
			DelayMinSeconds:  60,
			DelayMaxSeconds:  300,
			MaxLength:        280,
			ResponseLog:      "responses.jsonl",
		},
		Summary: SummaryConfig{
			Hour: 18,
		},
		History: HistoryConfig{
			Backend:       "file",
			Path:          "history.json",
			RateStatePath: "rate_state.json",
			StatusPath:    "status.json",
		},
		Server: ServerConfig{
			Addr: ":8090",
		},
	}
}

// Load reads the YAML config at path, falling back to defaults when the file
// does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SOURCE_TYPE"); v != "" {
		c.Source.Type = v
	}
	if v := os.Getenv("SOURCE_API_URL"); v != "" {
		c.Source.APIURL = v
	}
	if v := os.Getenv("SOURCE_BEARER_TOKEN"); v != "" {
		c.Source.BearerToken = v
	}
	if v := os.Getenv("SOURCE_FEED_URL"); v != "" {
		c.Source.FeedURL = v
	}
	if v := os.Getenv("SOURCE_SUBREDDITS"); v != "" {
		c.Source.Subreddits = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("REPLY_MODE"); v != "" {
		c.Reply.Mode = v
	}
	if v := os.Getenv("REPLY_STRATEGY"); v != "" {
		c.Reply.Strategy = v
	}
	if v := os.Getenv("REPLY_MAX_PER_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Reply.MaxPerHour = n
		}
	}
	if v := os.Getenv("HISTORY_BACKEND"); v != "" {
		c.History.Backend = v
	}
	if v := os.Getenv("HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
}

// Validate enforces the fatal-config rules: a process with an unusable
// configuration refuses to start rather than limping into cycles.
func (c *Config) Validate() error {
	switch c.Source.Type {
	case "twitter", "reddit", "rss":
	default:
		return fmt.Errorf("unsupported source type %q", c.Source.Type)
	}

	switch c.Reply.Mode {
	case "log", "post", "both":
	default:
		return fmt.Errorf("unsupported reply mode %q", c.Reply.Mode)
	}

	switch c.Reply.Strategy {
	case "random", "engagement_based", "selective":
	default:
		return fmt.Errorf("unsupported selection strategy %q", c.Reply.Strategy)
	}

	if c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	// Log mode still drives the generator, so model credentials are needed
	// in every mode.
	if os.Getenv("OPENAI_API_KEY") == "" && c.LLM.BaseURL == "" {
		return errors.New("OPENAI_API_KEY is required unless llm.base_url points at a local backend")
	}
	if c.Source.Type == "twitter" && c.Source.APIURL == "" {
		return errors.New("source.api_url is required for the twitter source")
	}
	if c.Source.Type == "rss" && c.Source.FeedURL == "" {
		return errors.New("source.feed_url is required for the rss source")
	}
	if c.Reply.MaxPerHour <= 0 {
		return errors.New("reply.max_replies_per_hour must be positive")
	}
	if c.Reply.DelayMaxSeconds < c.Reply.DelayMinSeconds {
		return errors.New("reply.delay_max_seconds must be >= reply.delay_min_seconds")
	}
	if c.Reply.ReplyProbability < 0 || c.Reply.ReplyProbability > 1 {
		return errors.New("reply.reply_probability must be within [0,1]")
	}

	if c.Summary.Enabled && (c.Summary.Hour < 0 || c.Summary.Hour > 23) {
		return errors.New("summary.hour must be within [0,23]")
	}

	switch c.History.Backend {
	case "file", "valkey":
	default:
		return fmt.Errorf("unsupported history backend %q", c.History.Backend)
	}

	return nil
}

// FetchIntervalDuration is the poll interval for the start command.
func (c *Config) FetchIntervalDuration() time.Duration {
	return time.Duration(c.Source.FetchInterval) * time.Second
}
