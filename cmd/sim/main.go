// Command sim runs a strategy dry against the in-memory simulated
// venue: no credentials, no network, just the quote/reconcile loop
// ticking over a random walk. Useful for eyeballing model behavior.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"kalshi-mm-go/config"
	"kalshi-mm-go/infrastructure/logger"
	"kalshi-mm-go/maker"
	"kalshi-mm-go/runner"
	"kalshi-mm-go/venue"
)

func main() {
	model := flag.String("model", "avellaneda", "quoting model: simple or avellaneda")
	initialPrice := flag.Float64("initialPrice", 0.5, "starting mid price")
	volatility := flag.Float64("volatility", 0.05, "price process volatility")
	maxPosition := flag.Int("maxPosition", 100, "maximum absolute position")
	dt := flag.Float64("dt", 0.1, "tick interval in seconds")
	horizon := flag.Float64("T", 30, "run horizon in seconds")
	flag.Parse()

	lg, err := logger.New(logger.Config{Level: "debug", Outputs: []string{"stdout"}, Format: "console"})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Close()

	strat := config.Strategy{
		API: config.API{Type: "simulated", InitialPrice: *initialPrice, Volatility: *volatility},
		MarketMaker: config.Maker{
			Type:        *model,
			MaxPosition: *maxPosition,
			Horizon:     *horizon,
			DT:          *dt,
		},
	}
	config.ApplyDefaults(&strat)
	mm := strat.MarketMaker
	name := "sim-" + *model
	quoter, err := runner.BuildQuoter(name, mm, lg)
	if err != nil {
		log.Fatalf("build quoter: %v", err)
	}

	v := venue.NewSim(*initialPrice, *volatility, lg.Logger)
	loop := maker.New(maker.Config{
		Name:         name,
		TickInterval: mm.TickInterval(),
		Horizon:      mm.HorizonDuration(),
	}, v, quoter, lg)

	ctx, cancel := context.WithTimeout(context.Background(), mm.HorizonDuration()+time.Second)
	defer cancel()
	if err := loop.Run(ctx); err != nil {
		log.Fatalf("sim run: %v", err)
	}
	position, _ := v.GetPosition()
	lg.Sugar().Infow("sim finished", "position", position)
}
