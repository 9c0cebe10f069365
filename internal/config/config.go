package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the namespace prefix for all environment variables.
const EnvPrefix = "CALLCENTER_"

// Config holds all application configuration. The platform credential is
// loaded exclusively from the environment and never appears in the config
// file.
type Config struct {
	Addr               string `yaml:"addr"`
	Env                string `yaml:"env"`
	DefaultCountryCode string `yaml:"default_country_code"`
	CampaignName       string `yaml:"campaign_name"`
	VapiBaseURL        string `yaml:"vapi_base_url"`
	AssistantID        string `yaml:"assistant_id"`
	WebhookURL         string `yaml:"webhook_url"`
	OverlayDelay       string `yaml:"overlay_delay"`

	// Secret — env var only, never serialized to YAML.
	VapiPrivateKey string `yaml:"-"`
}

func defaults() Config {
	return Config{
		Addr:               ":8080",
		Env:                "development",
		DefaultCountryCode: "1",
		CampaignName:       "Outbound Campaign",
		VapiBaseURL:        "https://api.vapi.ai",
		OverlayDelay:       "3s",
	}
}

// Load reads configuration from a YAML file (if it exists), applies
// environment variable overrides, loads the secret, and validates the
// result. It returns the config, any validation warnings, and an error if
// the file exists but cannot be read or parsed.
func Load(path string) (Config, []string, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	loadSecrets(&cfg)

	warnings := validate(&cfg)
	return cfg, warnings, nil
}

// ParsedOverlayDelay returns OverlayDelay as a time.Duration, falling back
// to 3s if the value is invalid.
func (c *Config) ParsedOverlayDelay() time.Duration {
	d, err := time.ParseDuration(c.OverlayDelay)
	if err != nil {
		return 3 * time.Second
	}
	return d
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvPrefix + "ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv(EnvPrefix + "DEFAULT_COUNTRY_CODE"); v != "" {
		cfg.DefaultCountryCode = v
	}
	if v := os.Getenv(EnvPrefix + "CAMPAIGN_NAME"); v != "" {
		cfg.CampaignName = v
	}
	if v := os.Getenv(EnvPrefix + "VAPI_BASE_URL"); v != "" {
		cfg.VapiBaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "ASSISTANT_ID"); v != "" {
		cfg.AssistantID = v
	}
	if v := os.Getenv(EnvPrefix + "WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}
	if v := os.Getenv(EnvPrefix + "OVERLAY_DELAY"); v != "" {
		cfg.OverlayDelay = v
	}
}

func loadSecrets(cfg *Config) {
	cfg.VapiPrivateKey = os.Getenv(EnvPrefix + "VAPI_PRIVATE_KEY")
}

func validate(cfg *Config) []string {
	var warnings []string

	if cfg.VapiPrivateKey == "" {
		warnings = append(warnings, "Vapi private key not configured — outbound calls and campaigns are disabled. Set "+EnvPrefix+"VAPI_PRIVATE_KEY.")
	}
	if cfg.AssistantID == "" {
		warnings = append(warnings, "Assistant ID not configured — browser calls cannot start. Set "+EnvPrefix+"ASSISTANT_ID.")
	}
	if cfg.WebhookURL == "" {
		warnings = append(warnings, "Transcript webhook URL not configured — transcript forwarding is disabled. Set "+EnvPrefix+"WEBHOOK_URL.")
	}
	if _, err := time.ParseDuration(cfg.OverlayDelay); err != nil {
		warnings = append(warnings, fmt.Sprintf("Invalid overlay_delay %q — using default 3s.", cfg.OverlayDelay))
	}

	return warnings
}
