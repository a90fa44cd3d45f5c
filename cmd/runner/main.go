// Command runner starts every strategy from a YAML config file and
// supervises them until interrupted. Credentials come from the
// environment (optionally a .env file); a Prometheus endpoint exposes
// per-strategy counters.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kalshi-mm-go/config"
	"kalshi-mm-go/infrastructure/logger"
	"kalshi-mm-go/metrics"
	"kalshi-mm-go/runner"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	metricsAddr := flag.String("metricsAddr", ":9100", "Prometheus metrics listen address, empty to disable")
	flag.Parse()

	_ = godotenv.Load()
	creds := config.CredentialsFromEnv()

	strategies, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = *logLevel
	lg, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Close()

	if *metricsAddr != "" {
		metrics.StartServer(*metricsAddr)
	}

	r := runner.New(strategies, creds, lg)
	fmt.Println("Starting the following strategies:")
	for _, name := range r.Names() {
		fmt.Printf("- %s\n", name)
	}

	// Rewrites of the config file apply to strategies started later;
	// running loops keep what they started with.
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	go func() {
		if err := config.Watch(watchCtx, *cfgPath, r.Reload); err != nil && watchCtx.Err() == nil {
			lg.LogError(err, map[string]interface{}{"stage": "config_watch"})
		}
	}()

	failures := r.StartAll()
	for name, err := range failures {
		lg.LogError(err, map[string]interface{}{"strategy": name, "stage": "construction"})
	}
	if len(failures) == len(strategies) {
		log.Fatal("no strategy could be started")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	lg.Info("shutting down")
	r.StopAll()
	r.Wait()
}
