package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robdiste97/telegram-offerte-bot/internal/window"
)

const (
	defaultTimezone    = "Europe/Rome"
	defaultRegion      = "it"
	defaultMaxPerDay   = 6
	defaultPollSecs    = 600
	defaultIdleSecs    = 1800
	defaultCooldown    = 45
	defaultMaxTitleLen = 120

	// DefaultRank sorts sources without an explicit rank after everything else.
	DefaultRank = 1_000_000

	configPathEnv = "BOT_CONFIG"
	tokenEnv      = "BOT_TOKEN"
	channelITEnv  = "CHANNEL_IT"
	databaseEnv   = "DATABASE_URL"
	statePathEnv  = "STATE_FILE_PATH"
)

// Config holds every knob the bot reads. The YAML file provides the posting
// policy and the source list; secrets and deployment paths come from the
// environment only.
type Config struct {
	Timezone       string            `yaml:"timezone"`
	Region         string            `yaml:"region"`
	Windows        []WindowConfig    `yaml:"windows"`
	MaxPostsPerDay int               `yaml:"max_posts_per_day"`
	Posting        PostingConfig     `yaml:"posting"`
	Channels       map[string]string `yaml:"channels"`
	Filters        FilterConfig      `yaml:"filters"`
	Sources        []Source          `yaml:"sources"`

	// Environment-only settings.
	Token       string `yaml:"-"`
	DatabaseURL string `yaml:"-"`
	StatePath   string `yaml:"-"`

	location *time.Location
	windows  []window.Window
}

// WindowConfig is one "HH:MM" posting interval as written in YAML.
type WindowConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// PostingConfig controls the scheduler loop pacing.
type PostingConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	IdleIntervalSeconds int `yaml:"idle_interval_seconds"`
	CooldownSeconds     int `yaml:"cooldown_seconds"`
}

// FilterConfig holds the keyword rules applied to every candidate.
type FilterConfig struct {
	RequiredKeywordsAny []string `yaml:"required_keywords_any"`
	BlockedKeywords     []string `yaml:"blocked_keywords"`
	MaxTitleLen         int      `yaml:"max_title_len"`
}

// Source describes one syndicated feed. Only type "rss" is processed.
type Source struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	URL    string `yaml:"url"`
	Region string `yaml:"region"`
	Lang   string `yaml:"lang"`
	Rank   int    `yaml:"rank"`
}

// Load reads the YAML config (path from BOT_CONFIG, default configs/bot.yaml),
// applies environment overrides and validates the result. A missing file is
// not an error: the bot starts with defaults and an empty source list.
func Load() (*Config, error) {
	cfg := defaults()

	path := os.Getenv(configPathEnv)
	if path == "" {
		path = "configs/bot.yaml"
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// keep defaults
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Timezone:       defaultTimezone,
		Region:         defaultRegion,
		MaxPostsPerDay: defaultMaxPerDay,
		Posting: PostingConfig{
			PollIntervalSeconds: defaultPollSecs,
			IdleIntervalSeconds: defaultIdleSecs,
			CooldownSeconds:     defaultCooldown,
		},
		Channels:  map[string]string{},
		Filters:   FilterConfig{MaxTitleLen: defaultMaxTitleLen},
		StatePath: "data/state.json",
	}
}

func (c *Config) applyEnv() {
	c.Token = os.Getenv(tokenEnv)
	c.DatabaseURL = os.Getenv(databaseEnv)
	if v := os.Getenv(statePathEnv); v != "" {
		c.StatePath = v
	}
	if v := os.Getenv(channelITEnv); v != "" {
		if c.Channels == nil {
			c.Channels = map[string]string{}
		}
		c.Channels["it"] = v
	}
}

// finalize fills zero values back in, resolves the timezone and parses the
// posting windows. It fails on settings an operator clearly got wrong.
func (c *Config) finalize() error {
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.Region == "" {
		c.Region = defaultRegion
	}
	if c.MaxPostsPerDay < 0 {
		return fmt.Errorf("max_posts_per_day must be >= 0, got %d", c.MaxPostsPerDay)
	}
	if c.Posting.PollIntervalSeconds <= 0 {
		c.Posting.PollIntervalSeconds = defaultPollSecs
	}
	if c.Posting.IdleIntervalSeconds <= 0 {
		c.Posting.IdleIntervalSeconds = defaultIdleSecs
	}
	if c.Posting.CooldownSeconds <= 0 {
		c.Posting.CooldownSeconds = defaultCooldown
	}
	if c.Filters.MaxTitleLen <= 0 {
		c.Filters.MaxTitleLen = defaultMaxTitleLen
	}

	c.windows = c.windows[:0]
	for _, wc := range c.Windows {
		w, err := window.Parse(wc.Start, wc.End)
		if err != nil {
			return fmt.Errorf("posting window: %w", err)
		}
		c.windows = append(c.windows, w)
	}

	for i := range c.Sources {
		if c.Sources[i].Rank <= 0 {
			c.Sources[i].Rank = DefaultRank
		}
	}
	return nil
}

// Location returns the resolved posting timezone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		loc, _ := time.LoadLocation(defaultTimezone)
		return loc
	}
	return c.location
}

// ParsedWindows returns the validated posting windows.
func (c *Config) ParsedWindows() []window.Window { return c.windows }

// Channel returns the destination channel for the configured region.
func (c *Config) Channel() string { return c.Channels[c.Region] }

// EnabledSources returns the rss sources for the configured region, ordered
// by rank (stable on ties). Collecting in rank order means the best-ranked
// copy of a cross-posted offer is the one that survives deduplication.
func (c *Config) EnabledSources() []Source {
	out := make([]Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		if s.Type != "rss" {
			continue
		}
		if s.Region != "" && s.Region != c.Region {
			continue
		}
		out = append(out, s)
	}
	// insertion sort keeps encounter order on equal ranks
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Rank < out[j-1].Rank; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// PollInterval is the sleep between productive cycles.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Posting.PollIntervalSeconds) * time.Second
}

// IdleInterval is the longer sleep used when a cycle was gated by the posting
// window or the daily quota.
func (c *Config) IdleInterval() time.Duration {
	return time.Duration(c.Posting.IdleIntervalSeconds) * time.Second
}

// Cooldown is the pause after every send attempt.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Posting.CooldownSeconds) * time.Second
}

// PostingIssue reports why publishing cannot run, or nil when it can. These
// are the config errors that disable the loop without killing the process.
func (c *Config) PostingIssue() error {
	if c.Token == "" {
		return fmt.Errorf("%s is not set", tokenEnv)
	}
	ch := c.Channel()
	if ch == "" {
		return fmt.Errorf("no channel configured for region %q", c.Region)
	}
	if !strings.HasPrefix(ch, "@") {
		return fmt.Errorf("channel %q must start with @", ch)
	}
	return nil
}
