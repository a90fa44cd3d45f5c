// Package runner supervises independent strategy loops: one goroutine
// per started strategy, each with its own venue session and child
// logger, coordinated only through per-strategy stop signals. A fault in
// one strategy never signals, blocks or stops another.
package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"kalshi-mm-go/config"
	"kalshi-mm-go/infrastructure/logger"
	"kalshi-mm-go/maker"
)

// State describes one strategy's lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Status is the read-only view exposed to callers (dashboards query
// this; they never reach into the strategies themselves).
type Status struct {
	State State
	Err   error
}

// Runner owns the configured strategies and their running state. There
// is no implicit "current strategy": every operation names its target.
type Runner struct {
	mu         sync.Mutex
	wg         sync.WaitGroup
	log        *logger.Logger
	creds      config.Credentials
	strategies map[string]config.Strategy
	handles    map[string]*handle
}

type handle struct {
	cancel context.CancelFunc
	state  State
	err    error
}

// New creates a runner over a loaded strategy set.
func New(strategies map[string]config.Strategy, creds config.Credentials, log *logger.Logger) *Runner {
	return &Runner{
		log:        log,
		creds:      creds,
		strategies: strategies,
		handles:    make(map[string]*handle),
	}
}

// Reload swaps in a freshly loaded strategy set. Running loops keep the
// immutable config they started with; the new set applies to strategies
// started afterward.
func (r *Runner) Reload(strategies map[string]config.Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = strategies
	r.log.Info("config reloaded", zap.Int("strategies", len(strategies)))
}

// Names lists the configured strategies in stable order.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start constructs the strategy's venue and quoter and launches its
// loop. Construction failures (unknown type, failed login) are returned
// to the caller before any loop starts and leave sibling strategies
// untouched.
func (r *Runner) Start(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.strategies[name]
	if !ok {
		return fmt.Errorf("unknown strategy %q", name)
	}
	if h, exists := r.handles[name]; exists && h.state == StateRunning {
		return fmt.Errorf("strategy %q already running", name)
	}

	slog := r.log.Named(name)
	v, err := BuildVenue(name, cfg.API, r.creds, slog)
	if err != nil {
		r.handles[name] = &handle{state: StateFailed, err: err}
		return err
	}
	q, err := BuildQuoter(name, cfg.MarketMaker, slog)
	if err != nil {
		// The session was opened for nothing; release it.
		if cerr := v.Close(); cerr != nil {
			slog.LogError(cerr, map[string]interface{}{"strategy": name, "stage": "logout"})
		}
		r.handles[name] = &handle{state: StateFailed, err: err}
		return err
	}

	// Only the adaptive model is time-bounded.
	var horizon time.Duration
	if cfg.MarketMaker.Type == "avellaneda" {
		horizon = cfg.MarketMaker.HorizonDuration()
	}
	mm := maker.New(maker.Config{
		Name:            name,
		TickInterval:    cfg.MarketMaker.TickInterval(),
		Horizon:         horizon,
		OrderExpiration: cfg.MarketMaker.ExpirationDuration(),
	}, v, q, slog)

	ctx, cancel := context.WithCancel(context.Background())
	h := &handle{cancel: cancel, state: StateRunning}
	r.handles[name] = h

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := mm.Run(ctx)
		r.mu.Lock()
		defer r.mu.Unlock()
		if err != nil {
			h.state = StateFailed
			h.err = err
		} else {
			h.state = StateStopped
		}
	}()
	return nil
}

// StartAll starts every configured strategy and reports per-strategy
// construction failures; one failure does not prevent the rest from
// starting.
func (r *Runner) StartAll() map[string]error {
	failures := make(map[string]error)
	for _, name := range r.Names() {
		if err := r.Start(name); err != nil {
			failures[name] = err
		}
	}
	return failures
}

// Stop signals one strategy's loop to terminate at its next tick
// boundary. The loop itself releases the venue session.
func (r *Runner) Stop(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[name]
	if !ok || h.state != StateRunning {
		return fmt.Errorf("strategy %q not running", name)
	}
	h.cancel()
	return nil
}

// StopAll signals every running strategy.
func (r *Runner) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.handles {
		if h.state == StateRunning {
			h.cancel()
		}
	}
}

// Wait blocks until all launched loops have returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Status reports one strategy's state; ok is false for unknown names.
func (r *Runner) Status(name string) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Started strategies stay visible even if a reload dropped their
	// name from the configured set.
	if h, started := r.handles[name]; started {
		return Status{State: h.state, Err: h.err}, true
	}
	if _, configured := r.strategies[name]; configured {
		return Status{State: StateIdle}, true
	}
	return Status{}, false
}

// Statuses reports every configured strategy's state.
func (r *Runner) Statuses() map[string]Status {
	out := make(map[string]Status, len(r.strategies))
	for _, name := range r.Names() {
		st, _ := r.Status(name)
		out[name] = st
	}
	return out
}
