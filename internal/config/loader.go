// Package config provides configuration management for the arena client.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "ARENA"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing config file is not an error; defaults, a local .env file and
// ARENA_* environment variables fill in the rest.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// .env is optional
	_ = godotenv.Load()

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers a default for every key so that ARENA_* variables
// bind even when the file omits a section.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "trader-arena")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("api.base_url", "http://localhost:3333/api/v1")
	v.SetDefault("api.auth_token", "")
	v.SetDefault("api.timeout_seconds", 30)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("api.rate_limit", 10.0)

	v.SetDefault("realtime.url", "ws://localhost:3333/ws")
	v.SetDefault("realtime.room", "global")
	v.SetDefault("realtime.max_reconnect_attempts", 5)
	v.SetDefault("realtime.reconnect_delay_ms", 1000)
	v.SetDefault("realtime.redis.enabled", false)
	v.SetDefault("realtime.redis.addr", "localhost:6379")
	v.SetDefault("realtime.redis.password", "")
	v.SetDefault("realtime.redis.db", 0)
	v.SetDefault("realtime.redis.channel", "arena:pool-events")

	v.SetDefault("solana.rpc_url", "https://api.devnet.solana.com")
	v.SetDefault("solana.network", "devnet")
	v.SetDefault("solana.keypair_path", "")
	v.SetDefault("solana.confirm_timeout_seconds", 60)
	v.SetDefault("solana.poll_interval_ms", 1000)

	v.SetDefault("betting.default_min_bet_sol", "0.01")
	v.SetDefault("betting.default_max_bet_sol", "100")
	v.SetDefault("betting.simulation_debounce_ms", 500)

	v.SetDefault("wallet.balance_refresh_seconds", 30)

	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.interval_seconds", 300)

	v.SetDefault("market_data.pnl_api_url", "https://user-pnl-api.polymarket.com")
	v.SetDefault("market_data.data_api_url", "https://data-api.polymarket.com")
	v.SetDefault("market_data.cache_ttl_seconds", 300)
	v.SetDefault("market_data.rate_limit", 5.0)

	v.SetDefault("notifications.ttl_seconds", 5)
	v.SetDefault("notifications.bet_placed_seconds", 8)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 5)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("secrets.enabled", false)
	v.SetDefault("secrets.region", "")
	v.SetDefault("secrets.secret_name", "")
}
