package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if cfg.AppName != "ARIA" {
		t.Errorf("expected default app name, got %q", cfg.AppName)
	}
	if cfg.ListenAddr == "" {
		t.Error("expected a default listen address")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "aria_config.json")

	cfg := Default()
	cfg.Browser = "firefox"
	cfg.HistoryLimit = 42
	cfg.WakeWords = []string{"aria"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Browser != "firefox" || loaded.HistoryLimit != 42 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if len(loaded.WakeWords) != 1 || loaded.WakeWords[0] != "aria" {
		t.Errorf("wake words lost: %v", loaded.WakeWords)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ARIA_REDIS_ADDR", "redis:6380")
	t.Setenv("ARIA_HEADLESS", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("OPENAI_API_KEY not applied: %q", cfg.OpenAIAPIKey)
	}
	if cfg.RedisAddr != "redis:6380" {
		t.Errorf("ARIA_REDIS_ADDR not applied: %q", cfg.RedisAddr)
	}
	if !cfg.Headless {
		t.Error("ARIA_HEADLESS not applied")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.VoiceEnabled = false
	cfg.Browser = "netscape"
	cfg.HistoryLimit = 0

	issues := cfg.Validate()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", issues)
	}
}

func TestEnabledFeatures(t *testing.T) {
	cfg := Default()
	cfg.GmailEnabled = true
	cfg.VoiceEnabled = false
	cfg.WebEnabled = false

	features := cfg.EnabledFeatures()
	has := func(name string) bool {
		for _, f := range features {
			if f == name {
				return true
			}
		}
		return false
	}
	if !has("gmail") || has("voice") || has("web_automation") {
		t.Errorf("unexpected feature set: %v", features)
	}
}
