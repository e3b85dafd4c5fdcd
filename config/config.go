// Package config loads the ARIA settings file and environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config is the full assistant configuration, persisted as JSON.
type Config struct {
	AppName string `json:"app_name"`
	Version string `json:"version"`
	Debug   bool   `json:"debug"`

	DataDir string `json:"data_dir"`
	LogsDir string `json:"logs_dir"`

	// Voice pipeline
	VoiceEnabled bool     `json:"voice_enabled"`
	WakeWords    []string `json:"wake_words"`
	Language     string   `json:"language"`

	// Speech backends
	OpenAIAPIKey  string  `json:"openai_api_key"`
	WhisperModel  string  `json:"whisper_model"`
	TTSVoice      string  `json:"tts_voice"`
	SttCommand    string  `json:"stt_command"`
	EspeakCommand string  `json:"espeak_command"`
	TestOnStartup bool    `json:"test_on_startup"`
	ListenTimeout float64 `json:"listen_timeout_seconds"`

	// Google APIs
	GmailEnabled    bool   `json:"gmail_enabled"`
	CalendarEnabled bool   `json:"calendar_enabled"`
	CredentialsFile string `json:"google_credentials_file"`
	TokenFile       string `json:"google_token_file"`

	// Browser automation
	WebEnabled  bool   `json:"web_enabled"`
	Browser     string `json:"browser"`
	Headless    bool   `json:"headless"`
	PageTimeout int    `json:"page_timeout_seconds"`

	// System control
	AppCatalogFile string `json:"app_catalog_file"`
	AllowShutdown  bool   `json:"allow_shutdown"`
	CommandTimeout int    `json:"command_timeout_seconds"`

	// Infrastructure
	RedisAddr    string `json:"redis_addr"`
	NatsURL      string `json:"nats_url"`
	ListenAddr   string `json:"listen_addr"`
	HistoryLimit int    `json:"history_limit"`

	// Reminders
	RemindersEnabled bool   `json:"reminders_enabled"`
	ReminderSchedule string `json:"reminder_schedule"`
	ReminderWindow   int    `json:"reminder_window_minutes"`
}

// Default returns the baseline configuration used when no file exists.
func Default() *Config {
	return &Config{
		AppName:          "ARIA",
		Version:          "1.0.0",
		Debug:            false,
		DataDir:          "data",
		LogsDir:          "logs",
		VoiceEnabled:     true,
		WakeWords:        []string{"aria", "hey aria", "salut aria"},
		Language:         "fr",
		WhisperModel:     "whisper-1",
		TTSVoice:         "alloy",
		EspeakCommand:    "espeak-ng",
		ListenTimeout:    5.0,
		CredentialsFile:  "credentials.json",
		TokenFile:        "token.json",
		WebEnabled:       true,
		Browser:          "chromium",
		Headless:         false,
		PageTimeout:      30,
		AllowShutdown:    false,
		CommandTimeout:   30,
		RedisAddr:        "localhost:6379",
		NatsURL:          "nats://localhost:4222",
		ListenAddr:       ":8181",
		HistoryLimit:     200,
		RemindersEnabled: false,
		ReminderSchedule: "*/5 * * * *",
		ReminderWindow:   15,
	}
}

// Load reads the settings file if present, then applies environment
// overrides. A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("ARIA_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("ARIA_NATS_URL"); v != "" {
		c.NatsURL = v
	}
	if v := os.Getenv("ARIA_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("ARIA_BROWSER"); v != "" {
		c.Browser = v
	}
	if v := os.Getenv("ARIA_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Headless = b
		}
	}
	if v := os.Getenv("ARIA_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
	if v := os.Getenv("GOOGLE_CREDENTIALS_FILE"); v != "" {
		c.CredentialsFile = v
	}
}

// Save writes the configuration back to disk as indented JSON.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Validate returns a list of configuration problems. An empty list means
// the configuration is usable; callers decide which issues are fatal.
func (c *Config) Validate() []string {
	var issues []string

	if c.OpenAIAPIKey == "" && c.VoiceEnabled {
		issues = append(issues, "voice enabled but OPENAI_API_KEY not set: cloud speech backends unavailable")
	}
	if c.GmailEnabled || c.CalendarEnabled {
		if _, err := os.Stat(c.CredentialsFile); err != nil {
			issues = append(issues, fmt.Sprintf("google credentials file not found: %s", c.CredentialsFile))
		}
	}
	switch c.Browser {
	case "chromium", "chrome", "firefox":
	default:
		issues = append(issues, fmt.Sprintf("unsupported browser: %s", c.Browser))
	}
	if c.HistoryLimit <= 0 {
		issues = append(issues, "history_limit must be positive")
	}
	if c.ReminderWindow <= 0 && c.RemindersEnabled {
		issues = append(issues, "reminder_window_minutes must be positive when reminders are enabled")
	}
	return issues
}

// EnabledFeatures lists the features active under the current configuration.
func (c *Config) EnabledFeatures() []string {
	features := []string{"intent_analysis", "task_execution", "system_control"}
	if c.VoiceEnabled {
		features = append(features, "voice")
	}
	if c.WebEnabled {
		features = append(features, "web_automation")
	}
	if c.GmailEnabled {
		features = append(features, "gmail")
	}
	if c.CalendarEnabled {
		features = append(features, "calendar")
	}
	if c.RemindersEnabled {
		features = append(features, "reminders")
	}
	return features
}
