package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// GatewayConfig - remote API endpoint settings
type GatewayConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// CacheConfig - offline snapshot cache settings.
// Driver is one of "sqlite", "postgres", "redis", "memory".
type CacheConfig struct {
	Driver   string   `yaml:"driver"`
	DSN      string   `yaml:"dsn"`
	Replicas []string `yaml:"replicas"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PollerConfig - freshness poller settings
type PollerConfig struct {
	ThreadIntervalMS int `yaml:"thread_interval_ms"`
	PageSize         int `yaml:"page_size"`
}

// PushConfig - optional websocket push channel for feed events
type PushConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

type LogsConfig struct {
	Level string `yaml:"level"`
}

type ConfigSchema struct {
	Gateway GatewayConfig `yaml:"gateway"`
	Cache   CacheConfig   `yaml:"cache"`
	Redis   RedisConfig   `yaml:"redis"`
	Poller  PollerConfig  `yaml:"poller"`
	Push    PushConfig    `yaml:"push"`
	Logs    LogsConfig    `yaml:"logs"`
}

var AppConfig *ConfigSchema

// Default returns a config usable without a config file (tests, feedwatch).
func Default() *ConfigSchema {
	return &ConfigSchema{
		Gateway: GatewayConfig{BaseURL: "http://localhost:8080", TimeoutMS: 10000},
		Cache:   CacheConfig{Driver: "memory"},
		Redis:   RedisConfig{Host: "localhost", Port: 6379},
		Poller:  PollerConfig{ThreadIntervalMS: 3000, PageSize: 20},
		Logs:    LogsConfig{Level: "info"},
	}
}

func LoadConfig(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	conf := Default()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", filePath, err)
	}
	if conf.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	AppConfig = conf
	return nil
}
