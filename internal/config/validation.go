// Package config provides configuration management for the arena client.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("solananetwork", validateSolanaNetwork)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateSolanaNetwork(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "devnet", "testnet", "mainnet-beta", "localnet":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	minBet, err := decimal.NewFromString(cfg.Betting.DefaultMinBetSOL)
	if err != nil {
		return fmt.Errorf("invalid betting default_min_bet_sol: %w", err)
	}
	maxBet, err := decimal.NewFromString(cfg.Betting.DefaultMaxBetSOL)
	if err != nil {
		return fmt.Errorf("invalid betting default_max_bet_sol: %w", err)
	}
	if minBet.Sign() <= 0 {
		return fmt.Errorf("betting default_min_bet_sol must be greater than 0")
	}
	if minBet.GreaterThan(maxBet) {
		return fmt.Errorf("betting default_min_bet_sol cannot exceed default_max_bet_sol")
	}

	if !strings.HasPrefix(cfg.Realtime.URL, "ws://") && !strings.HasPrefix(cfg.Realtime.URL, "wss://") {
		return fmt.Errorf("realtime url must use ws:// or wss://, got %q", cfg.Realtime.URL)
	}

	if cfg.Realtime.Redis.Enabled && (cfg.Realtime.Redis.Addr == "" || cfg.Realtime.Redis.Channel == "") {
		return fmt.Errorf("realtime redis relay requires addr and channel")
	}

	if cfg.IsProduction() {
		if cfg.Database.Enabled && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
		if cfg.Solana.Network == "localnet" {
			return fmt.Errorf("production environment cannot use the localnet cluster")
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "numeric":
			fmt.Fprintf(&b, "- Field '%s' must be numeric, got '%v'\n", field, value)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "solananetwork":
			fmt.Fprintf(&b, "- Field '%s' must be one of: devnet, testnet, mainnet-beta, localnet\n", field)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}
