// Package config provides configuration management for the arena client.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	API           APIConfig           `mapstructure:"api" validate:"required"`
	Realtime      RealtimeConfig      `mapstructure:"realtime" validate:"required"`
	Solana        SolanaConfig        `mapstructure:"solana" validate:"required"`
	Betting       BettingConfig       `mapstructure:"betting" validate:"required"`
	Wallet        WalletConfig        `mapstructure:"wallet" validate:"required"`
	Refresh       RefreshConfig       `mapstructure:"refresh"`
	MarketData    MarketDataConfig    `mapstructure:"market_data" validate:"required"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Secrets       SecretsConfig       `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// APIConfig represents the pool/bet backend configuration
type APIConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	AuthToken      string  `mapstructure:"auth_token"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// RealtimeConfig represents the push channel configuration
type RealtimeConfig struct {
	URL                  string      `mapstructure:"url" validate:"required"`
	Room                 string      `mapstructure:"room" validate:"required"`
	MaxReconnectAttempts int         `mapstructure:"max_reconnect_attempts" validate:"gte=0"`
	ReconnectDelayMS     int         `mapstructure:"reconnect_delay_ms" validate:"required,gt=0"`
	Redis                RedisConfig `mapstructure:"redis"`
}

// RedisConfig represents the optional Redis relay for pool events
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Channel  string `mapstructure:"channel"`
}

// SolanaConfig represents chain RPC and wallet signer configuration
type SolanaConfig struct {
	RPCURL                string `mapstructure:"rpc_url" validate:"required,url"`
	Network               string `mapstructure:"network" validate:"required,solananetwork"`
	KeypairPath           string `mapstructure:"keypair_path"`
	ConfirmTimeoutSeconds int    `mapstructure:"confirm_timeout_seconds" validate:"required,gt=0"`
	PollIntervalMS        int    `mapstructure:"poll_interval_ms" validate:"required,gt=0"`
}

// BettingConfig represents client-side betting defaults
type BettingConfig struct {
	DefaultMinBetSOL     string `mapstructure:"default_min_bet_sol" validate:"required,numeric"`
	DefaultMaxBetSOL     string `mapstructure:"default_max_bet_sol" validate:"required,numeric"`
	SimulationDebounceMS int    `mapstructure:"simulation_debounce_ms" validate:"required,gt=0"`
}

// WalletConfig represents wallet balance polling
type WalletConfig struct {
	BalanceRefreshSeconds int `mapstructure:"balance_refresh_seconds" validate:"required,gt=0"`
}

// RefreshConfig represents the auto-refresh cadence for trader and pool views
type RefreshConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalSeconds int  `mapstructure:"interval_seconds" validate:"omitempty,gte=1"`
}

// MarketDataConfig represents the trader market-data APIs
type MarketDataConfig struct {
	PNLAPIURL       string  `mapstructure:"pnl_api_url" validate:"required,url"`
	DataAPIURL      string  `mapstructure:"data_api_url" validate:"required,url"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// NotificationsConfig represents transient notification lifetimes
type NotificationsConfig struct {
	TTLSeconds       int `mapstructure:"ttl_seconds" validate:"omitempty,gt=0"`
	BetPlacedSeconds int `mapstructure:"bet_placed_seconds" validate:"omitempty,gt=0"`
}

// DatabaseConfig represents the optional bet history mirror
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Enabled true"`
	User           string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// SecretsConfig points at an AWS Secrets Manager secret overlaid on load
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// APITimeout returns the backend request timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// ReconnectDelay returns the fixed delay between push channel reconnects.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Realtime.ReconnectDelayMS) * time.Millisecond
}

// SimulationDebounce returns the quiet period before a simulate call.
func (c *Config) SimulationDebounce() time.Duration {
	return time.Duration(c.Betting.SimulationDebounceMS) * time.Millisecond
}

// BalanceRefreshInterval returns the wallet balance polling interval.
func (c *Config) BalanceRefreshInterval() time.Duration {
	return time.Duration(c.Wallet.BalanceRefreshSeconds) * time.Second
}

// RefreshInterval returns the auto-refresh interval.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalSeconds) * time.Second
}

// ConfirmTimeout returns the bound on waiting for transaction confirmation.
func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.Solana.ConfirmTimeoutSeconds) * time.Second
}

// ConfirmPollInterval returns how often signature status is polled.
func (c *Config) ConfirmPollInterval() time.Duration {
	return time.Duration(c.Solana.PollIntervalMS) * time.Millisecond
}

// MarketDataCacheTTL returns the market-data response cache lifetime.
func (c *Config) MarketDataCacheTTL() time.Duration {
	return time.Duration(c.MarketData.CacheTTLSeconds) * time.Second
}

// NotificationTTL returns the default notification lifetime.
func (c *Config) NotificationTTL() time.Duration {
	return time.Duration(c.Notifications.TTLSeconds) * time.Second
}

// BetPlacedNotificationTTL returns the lifetime of bet confirmation notices.
func (c *Config) BetPlacedNotificationTTL() time.Duration {
	return time.Duration(c.Notifications.BetPlacedSeconds) * time.Second
}
