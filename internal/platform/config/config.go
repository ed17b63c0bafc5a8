package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `yaml:"service_name"`
	HTTPPort     string   `yaml:"http_port"`
	PostgresDSN  string   `yaml:"postgres_dsn"`
	RedisAddr    string   `yaml:"redis_addr"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	JWTSecret    string   `yaml:"jwt_secret"`

	ClassifierURL     string `yaml:"classifier_url"`
	ClassifierAPIKey  string `yaml:"classifier_api_key"`
	ClassifierTimeout int    `yaml:"classifier_timeout_ms"`

	Reputation ReputationConfig `yaml:"reputation"`
	Reports    ReportsConfig    `yaml:"reports"`
	Appeals    AppealsConfig    `yaml:"appeals"`

	Worker WorkerConfig `yaml:"worker"`
}

// ReputationConfig carries the standing tunables: reporter weights by
// level and violation penalties by severity.
type ReputationConfig struct {
	ViolationTTLDays int                `yaml:"violation_ttl_days"`
	Weights          map[string]float64 `yaml:"weights"`
	Penalties        map[string]int     `yaml:"penalties"`
}

// ReportsConfig carries the priority engine tunables.
type ReportsConfig struct {
	CategoryMultipliers  map[string]float64 `yaml:"category_multipliers"`
	LevelBaselines       map[string]float64 `yaml:"level_baselines"`
	EscalationThresholds map[string]int     `yaml:"escalation_thresholds"`
}

type AppealsConfig struct {
	EligibilityWindowDays int `yaml:"eligibility_window_days"`
	ReviewTTLDays         int `yaml:"review_ttl_days"`
}

type WorkerConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	BatchSize       int `yaml:"batch_size"`
}

// Load reads the YAML file named by WARDEN_CONFIG (when set), then applies
// environment overrides on top.
func Load() (Config, error) {
	cfg := Config{}

	if path := strings.TrimSpace(os.Getenv("WARDEN_CONFIG")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.ServiceName = envOrDefault("SERVICE_NAME", defaultString(cfg.ServiceName, "warden"))
	cfg.HTTPPort = envOrDefault("HTTP_PORT", defaultString(cfg.HTTPPort, "8080"))
	cfg.PostgresDSN = envOrDefault("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.RedisAddr = envOrDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.ClassifierURL = envOrDefault("CLASSIFIER_URL", cfg.ClassifierURL)
	cfg.ClassifierAPIKey = envOrDefault("CLASSIFIER_API_KEY", cfg.ClassifierAPIKey)
	cfg.ClassifierTimeout = envInt("CLASSIFIER_TIMEOUT_MS", defaultInt(cfg.ClassifierTimeout, 2000))

	if brokers := envCSV("KAFKA_BROKERS"); len(brokers) > 0 {
		cfg.KafkaBrokers = brokers
	}

	cfg.Reputation.ViolationTTLDays = envInt("REPUTATION_VIOLATION_TTL_DAYS", defaultInt(cfg.Reputation.ViolationTTLDays, 90))
	cfg.Appeals.EligibilityWindowDays = envInt("APPEAL_ELIGIBILITY_WINDOW_DAYS", defaultInt(cfg.Appeals.EligibilityWindowDays, 30))
	cfg.Appeals.ReviewTTLDays = envInt("APPEAL_REVIEW_TTL_DAYS", defaultInt(cfg.Appeals.ReviewTTLDays, 30))
	cfg.Worker.IntervalSeconds = envInt("WORKER_INTERVAL_SECONDS", defaultInt(cfg.Worker.IntervalSeconds, 5))
	cfg.Worker.BatchSize = envInt("WORKER_BATCH_SIZE", defaultInt(cfg.Worker.BatchSize, 100))

	return cfg, nil
}

func (c Config) ViolationTTL() time.Duration {
	return time.Duration(c.Reputation.ViolationTTLDays) * 24 * time.Hour
}

func (c Config) AppealEligibilityWindow() time.Duration {
	return time.Duration(c.Appeals.EligibilityWindowDays) * 24 * time.Hour
}

func (c Config) AppealReviewTTL() time.Duration {
	return time.Duration(c.Appeals.ReviewTTLDays) * 24 * time.Hour
}

func (c Config) WorkerInterval() time.Duration {
	return time.Duration(c.Worker.IntervalSeconds) * time.Second
}

func envOrDefault(name string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envCSV(name string) []string {
	var values []string
	for _, value := range strings.Split(os.Getenv(name), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}

func defaultString(value string, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func defaultInt(value int, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
