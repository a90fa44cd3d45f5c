// Command mm runs a single fixed-spread market maker against a live
// market, configured entirely from flags and environment credentials.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kalshi-mm-go/config"
	"kalshi-mm-go/infrastructure/logger"
	"kalshi-mm-go/maker"
	"kalshi-mm-go/strategy"
	"kalshi-mm-go/venue"
)

func main() {
	dt := flag.Float64("dt", 1.0, "trading frequency in seconds")
	ticker := flag.String("market-ticker", "", "market ticker (required)")
	side := flag.String("trade-side", "", "side to trade: yes or no (required)")
	spread := flag.Float64("spread", 0.01, "spread in dollars")
	maxPosition := flag.Int("max-position", 10, "maximum absolute position")
	orderExpiration := flag.Int("order-expiration", 60, "order expiration in seconds")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *ticker == "" || (*side != "yes" && *side != "no") {
		flag.Usage()
		os.Exit(2)
	}

	// .env is optional; real deployments export the variables directly.
	_ = godotenv.Load()
	creds := config.CredentialsFromEnv()
	if creds.Email == "" || creds.Password == "" || creds.BaseURL == "" {
		log.Fatal("KALSHI_EMAIL, KALSHI_PASSWORD and KALSHI_BASE_URL must be set")
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = *logLevel
	lg, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Close()

	v, err := venue.NewKalshi(creds.BaseURL, creds.Email, creds.Password, *ticker, venue.Side(*side), lg.Logger)
	if err != nil {
		log.Fatalf("venue login: %v", err)
	}

	quoter := strategy.NewSimple(*spread, strategy.DefaultSkew, *maxPosition, lg.Logger)
	mm := maker.New(maker.Config{
		Name:            *ticker,
		TickInterval:    time.Duration(*dt * float64(time.Second)),
		OrderExpiration: time.Duration(*orderExpiration) * time.Second,
	}, v, quoter, lg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := mm.Run(ctx); err != nil {
		log.Fatalf("market maker stopped: %v", err)
	}
}
