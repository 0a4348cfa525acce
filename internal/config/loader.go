package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "caprail.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "CAPRAIL_PORT")
	setString(&cfg.Server.CORSOrigin, "CAPRAIL_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "CAPRAIL_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "CAPRAIL_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "CAPRAIL_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "CAPRAIL_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "CAPRAIL_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Analyzer.Backend, "CAPRAIL_ANALYZER_BACKEND")
	setString(&cfg.Analyzer.URL, "CAPRAIL_ANALYZER_URL")
	setString(&cfg.Analyzer.APIKey, "CAPRAIL_ANALYZER_API_KEY")
	setString(&cfg.Analyzer.Model, "CAPRAIL_ANALYZER_MODEL")
	setDuration(&cfg.Analyzer.Timeout, "CAPRAIL_ANALYZER_TIMEOUT")
	setString(&cfg.Auth.TokenSecret, "CAPRAIL_TOKEN_SECRET")
	setDuration(&cfg.Auth.TokenTTL, "CAPRAIL_TOKEN_TTL")
	setInt(&cfg.Auth.BcryptCost, "CAPRAIL_BCRYPT_COST")
	setInt64(&cfg.Cache.MaxSizeMB, "CAPRAIL_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.DashboardTTL, "CAPRAIL_CACHE_DASHBOARD_TTL")
	setString(&cfg.Logging.Level, "CAPRAIL_LOG_LEVEL")
	setString(&cfg.Logging.Service, "CAPRAIL_LOG_SERVICE")
	setBool(&cfg.Telemetry.Enabled, "CAPRAIL_TELEMETRY_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "CAPRAIL_TELEMETRY_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	switch cfg.Analyzer.Backend {
	case "offline", "llm":
	default:
		return fmt.Errorf("analyzer.backend must be \"offline\" or \"llm\", got %q", cfg.Analyzer.Backend)
	}
	if cfg.Analyzer.Backend == "llm" && cfg.Analyzer.URL == "" {
		return errors.New("analyzer.url is required when analyzer.backend is llm")
	}
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		return errors.New("auth.bcrypt_cost must be in [4,31]")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
