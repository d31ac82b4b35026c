package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.ConfigPath != "./calendar.yml" {
		t.Errorf("Expected config path './calendar.yml', got '%s'", cfg.ConfigPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.UserAgent != "Calendar Comb/1.0" {
		t.Errorf("Expected user agent 'Calendar Comb/1.0', got '%s'", cfg.UserAgent)
	}
	if cfg.Serve {
		t.Error("Expected one-shot mode by default")
	}
	if cfg.Version == "" {
		t.Error("Expected version to be set")
	}
}

func TestParse_FlagsAndEnvironment(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK", "https://hooks.example.com/T000/B000")
	t.Setenv("API_ACCESS_KEY", "secret")

	cfg, err := Parse([]string{"--config", "/etc/calendar.yml", "--serve", "--port", "9090", "--debug"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.ConfigPath != "/etc/calendar.yml" {
		t.Errorf("Expected config path '/etc/calendar.yml', got '%s'", cfg.ConfigPath)
	}
	if cfg.WebhookURL != "https://hooks.example.com/T000/B000" {
		t.Errorf("Expected webhook URL from environment, got '%s'", cfg.WebhookURL)
	}
	if cfg.APIAccessKey != "secret" {
		t.Errorf("Expected API key 'secret', got '%s'", cfg.APIAccessKey)
	}
	if !cfg.Serve || !cfg.Debug {
		t.Error("Expected serve and debug to be enabled")
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
}

func TestParse_UnknownFlag(t *testing.T) {
	if _, err := Parse([]string{"--no-such-flag"}); err == nil {
		t.Error("Expected error for unknown flag")
	}
}
