// Package config loads service configuration from an optional YAML file
// layered with OCITYSMAP_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all settings shared by the server, worker and CLI.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	Data    DataConfig    `mapstructure:"data"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Render  RenderConfig  `mapstructure:"render"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// DataConfig selects the map data backend. When DSN is set the PostGIS
// source is used, otherwise PBFPath must point at an OSM extract.
type DataConfig struct {
	DSN     string `mapstructure:"dsn"`
	PBFPath string `mapstructure:"pbf_path"`
}

type RedisConfig struct {
	Addr   string `mapstructure:"addr"`
	JobTTL string `mapstructure:"job_ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type RenderConfig struct {
	OutputDir     string  `mapstructure:"output_dir"`
	DefaultPaper  string  `mapstructure:"default_paper"`
	DefaultLocale string  `mapstructure:"default_locale"`
	DefaultScale  float64 `mapstructure:"default_scale"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from an optional config.yaml and the environment.
// Environment variables use the OCITYSMAP prefix: OCITYSMAP_HTTP_ADDR
// overrides http.addr.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)
	v.SetDefault("data.dsn", "")
	v.SetDefault("data.pbf_path", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.job_ttl", "168h")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "render-jobs")
	v.SetDefault("kafka.group_id", "map-workers")
	v.SetDefault("render.output_dir", "out")
	v.SetDefault("render.default_paper", "A4")
	v.SetDefault("render.default_locale", "en_US.UTF-8")
	v.SetDefault("render.default_scale", 10000)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("metrics.path", "/metrics")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("OCITYSMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	var errs []string

	if c.HTTP.Addr == "" {
		errs = append(errs, "http.addr is required")
	}
	if c.Redis.Addr == "" {
		errs = append(errs, "redis.addr is required")
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, "kafka.brokers is required")
	}
	if c.Kafka.Topic == "" {
		errs = append(errs, "kafka.topic is required")
	}
	if c.Render.DefaultScale <= 0 {
		errs = append(errs, fmt.Sprintf("render.default_scale must be positive, got %g", c.Render.DefaultScale))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
