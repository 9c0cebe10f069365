package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ADDR", "ENV", "DEFAULT_COUNTRY_CODE", "CAMPAIGN_NAME",
		"VAPI_BASE_URL", "ASSISTANT_ID", "WEBHOOK_URL", "OVERLAY_DELAY",
		"VAPI_PRIVATE_KEY", "CONFIG",
	} {
		t.Setenv(EnvPrefix+key, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, _, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %q", cfg.Env)
	}
	if cfg.DefaultCountryCode != "1" {
		t.Fatalf("expected default country code 1, got %q", cfg.DefaultCountryCode)
	}
	if cfg.CampaignName != "Outbound Campaign" {
		t.Fatalf("expected default campaign name, got %q", cfg.CampaignName)
	}
	if cfg.VapiBaseURL != "https://api.vapi.ai" {
		t.Fatalf("expected default vapi base url, got %q", cfg.VapiBaseURL)
	}
	if cfg.OverlayDelay != "3s" {
		t.Fatalf("expected default overlay_delay, got %q", cfg.OverlayDelay)
	}
}

func TestYAMLLoading(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yamlContent := `
addr: ":9090"
env: staging
default_country_code: "44"
campaign_name: Follow-ups
assistant_id: asst-yaml
webhook_url: https://hooks.example.com/transcripts
overlay_delay: 5s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg, _, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr != ":9090" || cfg.Env != "staging" {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.DefaultCountryCode != "44" {
		t.Fatalf("expected country code 44, got %q", cfg.DefaultCountryCode)
	}
	if cfg.ParsedOverlayDelay() != 5*time.Second {
		t.Fatalf("expected 5s overlay delay, got %v", cfg.ParsedOverlayDelay())
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPrefix+"ADDR", ":7070")
	t.Setenv(EnvPrefix+"ASSISTANT_ID", "asst-env")
	t.Setenv(EnvPrefix+"VAPI_PRIVATE_KEY", "sk-test")

	cfg, warnings, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr != ":7070" {
		t.Fatalf("expected env override, got %q", cfg.Addr)
	}
	if cfg.AssistantID != "asst-env" {
		t.Fatalf("expected assistant id from env, got %q", cfg.AssistantID)
	}
	if cfg.VapiPrivateKey != "sk-test" {
		t.Fatalf("expected private key from env")
	}
	for _, w := range warnings {
		if strings.Contains(w, "private key") {
			t.Fatalf("unexpected private key warning: %q", w)
		}
	}
}

func TestMissingConfigFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load with missing file failed: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected defaults, got %q", cfg.Addr)
	}
}

func TestValidationWarnings(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPrefix+"OVERLAY_DELAY", "not-a-duration")

	cfg, warnings, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	wantSubstrings := []string{"private key", "Assistant ID", "webhook", "overlay_delay"}
	for _, want := range wantSubstrings {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected warning mentioning %q, got %v", want, warnings)
		}
	}

	if cfg.ParsedOverlayDelay() != 3*time.Second {
		t.Fatalf("expected fallback overlay delay, got %v", cfg.ParsedOverlayDelay())
	}
}

func TestSecretsNeverFromYAML(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("vapi_private_key: leaked\n"), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg, _, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.VapiPrivateKey != "" {
		t.Fatalf("private key must only come from the environment, got %q", cfg.VapiPrivateKey)
	}
}
