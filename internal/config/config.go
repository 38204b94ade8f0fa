// Package config loads the agent configuration: environment variables first,
// with an optional yaml file overlay named by AGENT_CONFIG.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "30s" decode.
type Duration time.Duration

// UnmarshalYAML decodes a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config defines the agent configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	ERPBaseURL string `yaml:"erp_base_url"`
	ERPToken   string `yaml:"erp_token"`

	LocationBaseURL string   `yaml:"location_base_url"`
	LocationTimeout Duration `yaml:"location_timeout"`

	JWTSecret string `yaml:"jwt_secret"`

	CatalogTTL Duration `yaml:"catalog_ttl"`

	AlertWebhookURL string   `yaml:"alert_webhook_url"`
	AlertInterval   Duration `yaml:"alert_interval"`

	SettingsPath string `yaml:"settings_path"`
}

// Load loads config from env or yaml.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:      getenvDefault("LISTEN_ADDR", ":8090"),
		ERPBaseURL:      os.Getenv("ERP_BASE_URL"),
		ERPToken:        os.Getenv("ERP_TOKEN"),
		LocationBaseURL: getenvDefault("LOCATION_BASE_URL", "http://127.0.0.1:7070"),
		LocationTimeout: Duration(getenvDuration("LOCATION_TIMEOUT", 10*time.Second)),
		JWTSecret:       os.Getenv("AUTH_JWT_SECRET"),
		CatalogTTL:      Duration(getenvDuration("CATALOG_TTL", 5*time.Minute)),
		AlertWebhookURL: os.Getenv("ALERT_WEBHOOK_URL"),
		AlertInterval:   Duration(getenvDuration("ALERT_INTERVAL", 10*time.Minute)),
		SettingsPath:    getenvDefault("SETTINGS_PATH", filepath.FromSlash("var/settings.json")),
	}

	if path := os.Getenv("AGENT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.ERPBaseURL == "" {
		return cfg, errors.New("config: ERP_BASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("config: AUTH_JWT_SECRET is required")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
