package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleConfig = `
btc-hourly:
  api:
    type: real
    market_ticker: BTC-22DEC31-H17
    trade_side: yes
  market_maker:
    type: avellaneda
    gamma: 0.2
    k: 1.5
    sigma: 0.3
    T: 1800
    max_position: 50
    dt: 2

paper:
  api:
    type: simulated
    initial_price: 0.4
    volatility: 0.02
  market_maker:
    type: simple
    spread: 0.04
    max_position: 20
`

func TestLoadParsesStrategies(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)
	strategies, err := Load(path)
	require.NoError(t, err)
	require.Len(t, strategies, 2)

	btc := strategies["btc-hourly"]
	assert.Equal(t, "real", btc.API.Type)
	assert.Equal(t, "BTC-22DEC31-H17", btc.API.MarketTicker)
	assert.Equal(t, 0.2, btc.MarketMaker.Gamma)
	assert.Equal(t, 1800.0, btc.MarketMaker.Horizon)
	assert.Equal(t, 50, btc.MarketMaker.MaxPosition)

	paper := strategies["paper"]
	assert.Equal(t, "simulated", paper.API.Type)
	assert.Equal(t, 0.04, paper.MarketMaker.Spread)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
minimal:
  api:
    type: simulated
  market_maker:
    type: simple
`)
	strategies, err := Load(path)
	require.NoError(t, err)

	s := strategies["minimal"]
	assert.Equal(t, 0.5, s.API.InitialPrice)
	assert.Equal(t, "yes", s.API.TradeSide)
	assert.Equal(t, 0.01, s.MarketMaker.Spread)
	assert.Equal(t, 100, s.MarketMaker.MaxPosition)
	assert.Equal(t, 1.0, s.MarketMaker.DT)
	assert.Equal(t, 300, s.MarketMaker.OrderExpiration)
	assert.Equal(t, "info", s.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeTempConfig(t, "strategies: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsEmptyConfig(t *testing.T) {
	path := writeTempConfig(t, "")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing ticker on real venue", `
s:
  api:
    type: real
  market_maker:
    type: simple
`},
		{"bad trade side", `
s:
  api:
    type: simulated
    trade_side: maybe
  market_maker:
    type: simple
`},
		{"initial price out of range", `
s:
  api:
    type: simulated
    initial_price: 1.5
  market_maker:
    type: simple
`},
		{"negative dt", `
s:
  api:
    type: simulated
  market_maker:
    type: simple
    dt: -1
`},
		{"buffer above one", `
s:
  api:
    type: simulated
  market_maker:
    type: avellaneda
    position_limit_buffer: 1.5
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempConfig(t, tc.yaml)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

// Unknown engine and venue types pass Load; they fail the one strategy
// that names them when it is constructed, not the whole file.
func TestLoadAcceptsUnknownTypes(t *testing.T) {
	path := writeTempConfig(t, `
mystery:
  api:
    type: simulated
  market_maker:
    type: martingale
`)
	strategies, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "martingale", strategies["mystery"].MarketMaker.Type)
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Strategy: "s1", Field: "api.type", Value: "telepathy"}
	assert.Equal(t, `strategy s1: unknown api.type "telepathy"`, err.Error())
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("KALSHI_EMAIL", "mm@example.com")
	t.Setenv("KALSHI_PASSWORD", "hunter2")
	t.Setenv("KALSHI_BASE_URL", "https://demo-api.kalshi.co")

	creds := CredentialsFromEnv()
	assert.Equal(t, "mm@example.com", creds.Email)
	assert.Equal(t, "hunter2", creds.Password)
	assert.Equal(t, "https://demo-api.kalshi.co", creds.BaseURL)
}
