package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultMBTABaseURL = "https://api-v3.mbta.com"
	defaultPort        = 8000
	defaultTimeoutMS   = 10000
	defaultIntervalS   = 30
	defaultPerDir      = 3
	defaultMaxStops    = 12
	defaultHourlyCap   = 12
	defaultDBPath      = "headsign.db"
)

// Load reads the application configuration from the given YAML file, applies
// environment overrides, and validates the result. A missing config file is
// not an error; everything has a default except the webhook URL, whose
// absence only disables delivery (checked per cycle, not here).
func Load(path string) (AppConfig, error) {
	// Secrets live in .env during development; absence is fine.
	_ = godotenv.Load()

	var cfg AppConfig
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, err
		}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.MBTA.BaseURL == "" {
		cfg.MBTA.BaseURL = defaultMBTABaseURL
	}
	if cfg.MBTA.TimeoutMS == 0 {
		cfg.MBTA.TimeoutMS = defaultTimeoutMS
	}
	if cfg.Display.PollIntervalS == 0 {
		cfg.Display.PollIntervalS = defaultIntervalS
	}
	if cfg.Display.PredictionsPerDirection == 0 {
		cfg.Display.PredictionsPerDirection = defaultPerDir
	}
	if cfg.Display.MaxStops == 0 {
		cfg.Display.MaxStops = defaultMaxStops
	}
	if cfg.Display.HourlySendCap == 0 {
		cfg.Display.HourlySendCap = defaultHourlyCap
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("MBTA_API_KEY"); v != "" {
		cfg.MBTA.APIKey = v
	}
	if v := os.Getenv("TRMNL_WEBHOOK_URL"); v != "" {
		cfg.Display.WebhookURL = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Server.APIKeys = append(cfg.Server.APIKeys, v)
	}
}
