package cli

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.BaseURL == "" || cfg.LoginURL == "" || cfg.ScheduleIndexURL == "" {
		t.Fatalf("expected URL defaults, got %+v", cfg)
	}
	if len(cfg.CallupURLs) == 0 {
		t.Fatal("expected at least one default callup URL")
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("expected 30m default TTL, got %v", cfg.CacheTTL)
	}
	if cfg.RESTPort != "8080" || cfg.WSPort != "8081" {
		t.Errorf("unexpected default ports: %s / %s", cfg.RESTPort, cfg.WSPort)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RDYSL_BASE_URL", "https://league.example.org/")
	t.Setenv("RDYSL_CALLUP_PAGES", "/teams/1/callups, /teams/2/callups")
	t.Setenv("CACHE_TTL_SECONDS", "600")

	cfg := LoadConfig()

	if cfg.BaseURL != "https://league.example.org" {
		t.Errorf("trailing slash not trimmed: %s", cfg.BaseURL)
	}
	if len(cfg.CallupURLs) != 2 {
		t.Fatalf("expected 2 callup URLs, got %v", cfg.CallupURLs)
	}
	if cfg.CallupURLs[0] != "https://league.example.org/teams/1/callups" {
		t.Errorf("unexpected callup URL: %s", cfg.CallupURLs[0])
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("expected 10m TTL, got %v", cfg.CacheTTL)
	}
}

func TestLoadConfigIgnoresBadTTL(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "not-a-number")

	cfg := LoadConfig()
	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("bad TTL should fall back to default, got %v", cfg.CacheTTL)
	}
}

func TestRootCmdSubcommands(t *testing.T) {
	root := NewRootCmd()

	expected := map[string]bool{"callups": false, "season": false, "serve": false}
	for _, sub := range root.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
