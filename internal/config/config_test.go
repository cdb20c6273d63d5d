package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
timezone: Europe/Rome
windows:
  - {start: "09:00", end: "13:00"}
  - {start: "16:00", end: "21:00"}
max_posts_per_day: 4
posting:
  poll_interval_seconds: 300
  cooldown_seconds: 20
channels:
  it: "@offerteitalia"
filters:
  required_keywords_any: [sconto, offerta]
  blocked_keywords: [scam]
  max_title_len: 100
sources:
  - {name: primo, type: rss, url: "https://a.example/feed", region: it, lang: it, rank: 1}
  - {name: secondo, type: rss, url: "https://b.example/feed", region: it, lang: it}
  - {name: estero, type: rss, url: "https://c.example/feed", region: de, lang: de, rank: 2}
  - {name: scraper, type: html, url: "https://d.example", region: it, lang: it, rank: 3}
`

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOT_CONFIG", path)
}

func TestLoad(t *testing.T) {
	writeConfig(t, sampleYAML)
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MaxPostsPerDay != 4 {
		t.Errorf("MaxPostsPerDay = %d, want 4", cfg.MaxPostsPerDay)
	}
	if got := cfg.Posting.PollIntervalSeconds; got != 300 {
		t.Errorf("PollIntervalSeconds = %d, want 300", got)
	}
	if got := cfg.Posting.IdleIntervalSeconds; got != defaultIdleSecs {
		t.Errorf("IdleIntervalSeconds = %d, want default %d", got, defaultIdleSecs)
	}
	if cfg.Channel() != "@offerteitalia" {
		t.Errorf("Channel() = %q", cfg.Channel())
	}
	if len(cfg.ParsedWindows()) != 2 {
		t.Errorf("ParsedWindows() len = %d, want 2", len(cfg.ParsedWindows()))
	}
	if cfg.Location().String() != "Europe/Rome" {
		t.Errorf("Location() = %v", cfg.Location())
	}
	if err := cfg.PostingIssue(); err != nil {
		t.Errorf("PostingIssue() = %v, want nil", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("BOT_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxPostsPerDay != defaultMaxPerDay {
		t.Errorf("MaxPostsPerDay = %d, want default %d", cfg.MaxPostsPerDay, defaultMaxPerDay)
	}
	if len(cfg.Sources) != 0 {
		t.Errorf("Sources should be empty, got %d", len(cfg.Sources))
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad timezone", "timezone: Mars/Olympus"},
		{"window crosses midnight", "windows:\n  - {start: \"22:00\", end: \"06:00\"}"},
		{"negative quota", "max_posts_per_day: -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.yaml)
			if _, err := Load(); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestEnabledSources(t *testing.T) {
	writeConfig(t, sampleYAML)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	srcs := cfg.EnabledSources()
	if len(srcs) != 2 {
		t.Fatalf("EnabledSources() len = %d, want 2 (rss + region it only)", len(srcs))
	}
	if srcs[0].Name != "primo" {
		t.Errorf("first source = %q, want primo (rank 1)", srcs[0].Name)
	}
	if srcs[1].Name != "secondo" || srcs[1].Rank != DefaultRank {
		t.Errorf("unranked source should sort last with sentinel rank, got %q rank %d", srcs[1].Name, srcs[1].Rank)
	}
}

func TestPostingIssue(t *testing.T) {
	writeConfig(t, sampleYAML)

	t.Run("missing token", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.PostingIssue() == nil {
			t.Error("PostingIssue() should report missing token")
		}
	})

	t.Run("channel without sigil", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "123:abc")
		t.Setenv("CHANNEL_IT", "offerteitalia")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.PostingIssue() == nil {
			t.Error("PostingIssue() should reject channel without @")
		}
	})
}
