package runner

import (
	"kalshi-mm-go/config"
	"kalshi-mm-go/infrastructure/logger"
	"kalshi-mm-go/strategy"
	"kalshi-mm-go/venue"
)

// BuildVenue constructs the venue selected by api.type. An unknown type
// is a *config.ConfigError: fatal to this strategy at construction,
// before any loop starts.
func BuildVenue(name string, api config.API, creds config.Credentials, log *logger.Logger) (venue.Venue, error) {
	switch api.Type {
	case "real":
		baseURL := api.BaseURL
		if baseURL == "" {
			baseURL = creds.BaseURL
		}
		return venue.NewKalshi(baseURL, creds.Email, creds.Password, api.MarketTicker, venue.Side(api.TradeSide), log.Logger)
	case "simulated":
		return venue.NewSim(api.InitialPrice, api.Volatility, log.Logger), nil
	default:
		return nil, &config.ConfigError{Strategy: name, Field: "api.type", Value: api.Type}
	}
}

// BuildQuoter constructs the quoting engine selected by
// market_maker.type.
func BuildQuoter(name string, mm config.Maker, log *logger.Logger) (strategy.Quoter, error) {
	switch mm.Type {
	case "simple":
		return strategy.NewSimple(mm.Spread, mm.Skew, mm.MaxPosition, log.Logger), nil
	case "avellaneda":
		return strategy.NewAvellaneda(
			mm.Gamma, mm.K, mm.Sigma,
			mm.HorizonDuration(),
			mm.MaxPosition,
			mm.MinSpread, mm.PositionLimitBuffer, mm.InventorySkewFactor,
			log.Logger,
		), nil
	default:
		return nil, &config.ConfigError{Strategy: name, Field: "market_maker.type", Value: mm.Type}
	}
}
