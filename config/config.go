// Package config loads and validates the multi-strategy YAML
// configuration and the venue credentials from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Strategy is one named strategy block: which venue to trade through and
// which pricing model to quote with. Immutable once a loop starts.
type Strategy struct {
	API         API    `yaml:"api"`
	MarketMaker Maker  `yaml:"market_maker"`
	LogLevel    string `yaml:"log_level"`
}

// API selects and parameterizes the venue.
type API struct {
	Type         string  `yaml:"type"` // real | simulated
	MarketTicker string  `yaml:"market_ticker"`
	TradeSide    string  `yaml:"trade_side"` // yes | no
	BaseURL      string  `yaml:"base_url"`   // overrides KALSHI_BASE_URL
	InitialPrice float64 `yaml:"initial_price"`
	Volatility   float64 `yaml:"volatility"`
}

// Maker selects and parameterizes the quoting engine.
type Maker struct {
	Type string `yaml:"type"` // simple | avellaneda

	// simple
	Spread float64 `yaml:"spread"`
	Skew   float64 `yaml:"k_skew"`

	// avellaneda
	Gamma               float64 `yaml:"gamma"`
	K                   float64 `yaml:"k"`
	Sigma               float64 `yaml:"sigma"`
	Horizon             float64 `yaml:"T"` // seconds
	MinSpread           float64 `yaml:"min_spread"`
	PositionLimitBuffer float64 `yaml:"position_limit_buffer"`
	InventorySkewFactor float64 `yaml:"inventory_skew_factor"`

	MaxPosition     int     `yaml:"max_position"`
	OrderExpiration int     `yaml:"order_expiration"` // seconds, 0 = none
	DT              float64 `yaml:"dt"`               // tick interval, seconds
}

// TickInterval returns dt as a duration.
func (m Maker) TickInterval() time.Duration {
	return time.Duration(m.DT * float64(time.Second))
}

// HorizonDuration returns T as a duration.
func (m Maker) HorizonDuration() time.Duration {
	return time.Duration(m.Horizon * float64(time.Second))
}

// ExpirationDuration returns the per-order expiry as a duration.
func (m Maker) ExpirationDuration() time.Duration {
	return time.Duration(m.OrderExpiration) * time.Second
}

// Credentials are never part of the YAML file; they come from the
// environment (optionally loaded from .env by the entrypoint).
type Credentials struct {
	Email    string
	Password string
	BaseURL  string
}

// CredentialsFromEnv reads KALSHI_EMAIL, KALSHI_PASSWORD and
// KALSHI_BASE_URL.
func CredentialsFromEnv() Credentials {
	return Credentials{
		Email:    os.Getenv("KALSHI_EMAIL"),
		Password: os.Getenv("KALSHI_PASSWORD"),
		BaseURL:  os.Getenv("KALSHI_BASE_URL"),
	}
}

// ConfigError marks a construction-time configuration fault: fatal to
// the strategy it names, surfaced before its loop starts, never retried.
type ConfigError struct {
	Strategy string
	Field    string
	Value    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("strategy %s: unknown %s %q", e.Strategy, e.Field, e.Value)
}

// ApplyDefaults fills unset fields with the stock parameter values.
func ApplyDefaults(s *Strategy) {
	api := &s.API
	if api.InitialPrice == 0 {
		api.InitialPrice = 0.5
	}
	if api.Volatility == 0 {
		api.Volatility = 0.01
	}
	if api.TradeSide == "" {
		api.TradeSide = "yes"
	}

	mm := &s.MarketMaker
	if mm.Spread == 0 {
		mm.Spread = 0.01
	}
	if mm.Gamma == 0 {
		mm.Gamma = 0.1
	}
	if mm.K == 0 {
		mm.K = 1.5
	}
	if mm.Sigma == 0 {
		mm.Sigma = 0.5
	}
	if mm.Horizon == 0 {
		mm.Horizon = 3600
	}
	if mm.MaxPosition == 0 {
		mm.MaxPosition = 100
	}
	if mm.OrderExpiration == 0 {
		mm.OrderExpiration = 300
	}
	if mm.MinSpread == 0 {
		mm.MinSpread = 0.01
	}
	if mm.PositionLimitBuffer == 0 {
		mm.PositionLimitBuffer = 0.1
	}
	if mm.InventorySkewFactor == 0 {
		mm.InventorySkewFactor = 0.01
	}
	if mm.DT == 0 {
		mm.DT = 1
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}
