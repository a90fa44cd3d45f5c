package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file mapping strategy names to their blocks,
// applies defaults and validates the numeric parameters. The api.type
// and market_maker.type strings are deliberately not checked here: an
// unknown type is a construction-time fault for that one strategy and
// must not take its siblings down with it.
func Load(path string) (map[string]Strategy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var out map[string]Strategy
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("no strategies configured")
	}
	for name, s := range out {
		ApplyDefaults(&s)
		if err := Validate(name, s); err != nil {
			return nil, err
		}
		out[name] = s
	}
	return out, nil
}

// Validate checks one strategy's parameter ranges.
func Validate(name string, s Strategy) error {
	api := s.API
	if api.MarketTicker == "" && api.Type != "simulated" {
		return fmt.Errorf("strategy %s: api.market_ticker is required", name)
	}
	if api.TradeSide != "yes" && api.TradeSide != "no" {
		return fmt.Errorf("strategy %s: api.trade_side must be yes or no", name)
	}
	if api.InitialPrice < 0 || api.InitialPrice > 1 {
		return fmt.Errorf("strategy %s: api.initial_price must be in [0,1]", name)
	}
	if api.Volatility < 0 {
		return fmt.Errorf("strategy %s: api.volatility must be >= 0", name)
	}

	mm := s.MarketMaker
	if mm.DT <= 0 {
		return fmt.Errorf("strategy %s: market_maker.dt must be > 0", name)
	}
	if mm.MaxPosition <= 0 {
		return fmt.Errorf("strategy %s: market_maker.max_position must be > 0", name)
	}
	if mm.Spread < 0 {
		return fmt.Errorf("strategy %s: market_maker.spread must be >= 0", name)
	}
	if mm.Gamma <= 0 {
		return fmt.Errorf("strategy %s: market_maker.gamma must be > 0", name)
	}
	if mm.K <= 0 {
		return fmt.Errorf("strategy %s: market_maker.k must be > 0", name)
	}
	if mm.Sigma <= 0 {
		return fmt.Errorf("strategy %s: market_maker.sigma must be > 0", name)
	}
	if mm.Horizon <= 0 {
		return fmt.Errorf("strategy %s: market_maker.T must be > 0", name)
	}
	if mm.MinSpread < 0 {
		return fmt.Errorf("strategy %s: market_maker.min_spread must be >= 0", name)
	}
	if mm.PositionLimitBuffer <= 0 || mm.PositionLimitBuffer > 1 {
		return fmt.Errorf("strategy %s: market_maker.position_limit_buffer must be in (0,1]", name)
	}
	if mm.OrderExpiration < 0 {
		return fmt.Errorf("strategy %s: market_maker.order_expiration must be >= 0", name)
	}
	return nil
}
