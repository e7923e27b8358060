package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Server
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	APIPrefix   string `json:"api_prefix"`
	LogLevel    string `json:"log_level"`

	// CORS
	CORSOrigins []string `json:"cors_origins"`

	// Auth
	APIKeyHeader string   `json:"api_key_header"`
	APIKeys      []string `json:"api_keys"`
	EnableAuth   bool     `json:"enable_auth"`

	// Rate Limiting
	RateLimitPerMinute int `json:"rate_limit_per_minute"`

	// Data source: "sqlite" | "csv" | "postgres"
	DataSource  string `json:"data_source"`
	SQLitePath  string `json:"sqlite_path"`
	SeedSample  bool   `json:"seed_sample"`
	CSVPath     string `json:"csv_path"`
	PostgresDSN string `json:"postgres_dsn"`

	// KPI glossary
	KPIPath string `json:"kpi_path"`

	// AI / LLM
	AnthropicAPIKey  string `json:"anthropic_api_key"`
	AnthropicBaseURL string `json:"anthropic_base_url"` // override for custom proxy
	Model            string `json:"model"`

	// Sessions
	HistoryTurns int `json:"history_turns"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		Environment:        DefaultEnvironment,
		APIPrefix:          DefaultAPIPrefix,
		LogLevel:           DefaultLogLevel,
		CORSOrigins:        DefaultCORSOrigins,
		APIKeyHeader:       "X-API-Key",
		EnableAuth:         false,
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		DataSource:         DefaultDataSource,
		SQLitePath:         DefaultSQLitePath,
		SeedSample:         true,
		KPIPath:            DefaultKPIPath,
		HistoryTurns:       DefaultHistoryTurns,
	}

	// Load from JSON config file if specified
	if path := getEnv("COPILOT_CONFIG", ""); path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, err
		}
	}

	// Environment overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("COPILOT_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("COPILOT_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("COPILOT_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("COPILOT_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("COPILOT_API_KEYS", ""); v != "" {
		cfg.APIKeys = strings.Split(v, ",")
		cfg.EnableAuth = true
	}
	if v := getEnv("COPILOT_ENABLE_AUTH", ""); v != "" {
		cfg.EnableAuth = v == "true" || v == "1"
	}
	if v := getEnv("COPILOT_RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("COPILOT_DATA_SOURCE", ""); v != "" {
		cfg.DataSource = v
	}
	if v := getEnv("COPILOT_SQLITE_PATH", ""); v != "" {
		cfg.SQLitePath = v
	}
	if v := getEnv("COPILOT_SEED_SAMPLE", ""); v != "" {
		cfg.SeedSample = v == "true" || v == "1"
	}
	if v := getEnv("COPILOT_CSV_PATH", ""); v != "" {
		cfg.CSVPath = v
	}
	if v := getEnv("COPILOT_POSTGRES_DSN", ""); v != "" {
		cfg.PostgresDSN = v
	}
	if v := getEnv("COPILOT_KPI_PATH", ""); v != "" {
		cfg.KPIPath = v
	}
	if v := getEnv("ANTHROPIC_API_KEY", ""); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := getEnv("ANTHROPIC_BASE_URL", ""); v != "" {
		cfg.AnthropicBaseURL = v
	}
	if v := getEnv("COPILOT_MODEL", ""); v != "" {
		cfg.Model = v
	}
	if v := getEnv("COPILOT_HISTORY_TURNS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryTurns = n
		}
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
