// Package config loads service settings from an optional file and the
// environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

// Config is the full service configuration.
type Config struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Store           StoreConfig   `mapstructure:"store"`
	Kafka           KafkaConfig   `mapstructure:"kafka"`
	Tracing         TracingConfig `mapstructure:"tracing"`
}

// StoreConfig selects and configures the durable mirror.
type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	DataFile    string `mapstructure:"data_file"`
	DatabaseURL string `mapstructure:"database_url"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisKey    string `mapstructure:"redis_key"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Key       string `mapstructure:"s3_key"`
	S3Region    string `mapstructure:"s3_region"`
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3PathStyle bool   `mapstructure:"s3_path_style"`
}

// KafkaConfig configures event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// TracingConfig configures OpenTelemetry.
type TracingConfig struct {
	Host        string  `mapstructure:"host"`
	Stdout      bool    `mapstructure:"stdout"`
	Probability float64 `mapstructure:"probability"`
}

// envBindings maps config keys to their environment variables.
var envBindings = map[string]string{
	"http_addr":           "HTTP_ADDR",
	"log_level":           "LOG_LEVEL",
	"shutdown_timeout":    "SHUTDOWN_TIMEOUT",
	"store.driver":        "STORE_DRIVER",
	"store.data_file":     "DATA_FILE",
	"store.database_url":  "DATABASE_URL",
	"store.sqlite_path":   "SQLITE_PATH",
	"store.redis_addr":    "REDIS_ADDR",
	"store.redis_key":     "REDIS_KEY",
	"store.s3_bucket":     "S3_BUCKET",
	"store.s3_key":        "S3_KEY",
	"store.s3_region":     "S3_REGION",
	"store.s3_endpoint":   "S3_ENDPOINT",
	"store.s3_path_style": "S3_PATH_STYLE",
	"kafka.brokers":       "KAFKA_BROKERS",
	"kafka.topic":         "KAFKA_TOPIC",
	"tracing.host":        "OTEL_HOST",
	"tracing.stdout":      "OTEL_STDOUT",
	"tracing.probability": "OTEL_PROBABILITY",
}

// Load reads the file at path when non-empty, then applies environment
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.data_file", "hospital_data.txt")
	v.SetDefault("store.sqlite_path", "patientflow.db")
	v.SetDefault("kafka.topic", "patient-events")
	v.SetDefault("tracing.probability", 1.0)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file, path = %s, err = %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverFile:
		if c.Store.DataFile == "" {
			return fmt.Errorf("store.data_file required for file driver")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL required for postgres driver")
		}
	case DriverSQLite:
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR required for redis driver")
		}
	case DriverS3:
		if c.Store.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET required for s3 driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
