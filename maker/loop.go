package maker

import (
	"context"
	"fmt"
	"time"

	"kalshi-mm-go/infrastructure/logger"
	"kalshi-mm-go/metrics"
	"kalshi-mm-go/strategy"
	"kalshi-mm-go/venue"
)

// Config holds the immutable per-strategy loop parameters.
type Config struct {
	Name            string
	TickInterval    time.Duration // dt
	Horizon         time.Duration // T; zero means unbounded
	OrderExpiration time.Duration // per-order expiry; zero means none
}

// MarketMaker runs the tick loop for a single strategy. Ticks execute
// strictly sequentially; the inter-tick sleep is the only voluntary
// suspension point besides the venue's blocking calls.
type MarketMaker struct {
	cfg    Config
	venue  venue.Venue
	quoter strategy.Quoter
	rec    *Reconciler
	log    *logger.Logger
}

// New builds a market maker around an authenticated venue session.
func New(cfg Config, v venue.Venue, q strategy.Quoter, log *logger.Logger) *MarketMaker {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &MarketMaker{
		cfg:    cfg,
		venue:  v,
		quoter: q,
		rec:    &Reconciler{Name: cfg.Name, Venue: v, Log: log},
		log:    log,
	}
}

// Run executes ticks until the context is canceled or the horizon
// elapses. The venue session is released on every exit path, including
// panics; a failed logout is logged, never re-raised. Venue failures
// abort only the tick they occur in.
func (m *MarketMaker) Run(ctx context.Context) (err error) {
	defer func() {
		if cerr := m.venue.Close(); cerr != nil {
			m.log.LogError(cerr, map[string]interface{}{
				"strategy": m.cfg.Name,
				"stage":    "logout",
			})
		}
	}()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("strategy %s panicked: %v", m.cfg.Name, p)
			m.log.Event("strategy_stop", map[string]interface{}{
				"strategy": m.cfg.Name,
				"reason":   "panic",
				"panic":    fmt.Sprint(p),
			})
		}
	}()

	start := time.Now()
	for {
		// Stop conditions are checked at tick boundaries only.
		select {
		case <-ctx.Done():
			m.stop("stop_signal")
			return nil
		default:
		}
		elapsed := time.Since(start)
		if m.cfg.Horizon > 0 && elapsed >= m.cfg.Horizon {
			m.stop("horizon_elapsed")
			return nil
		}

		if terr := m.tick(elapsed); terr != nil {
			metrics.TickErrors.WithLabelValues(m.cfg.Name).Inc()
			m.log.Event("tick_error", map[string]interface{}{
				"strategy": m.cfg.Name,
				"error":    terr.Error(),
			})
		}
		metrics.TicksTotal.WithLabelValues(m.cfg.Name).Inc()

		select {
		case <-ctx.Done():
			m.stop("stop_signal")
			return nil
		case <-time.After(m.cfg.TickInterval):
		}
	}
}

// tick pulls fresh venue state, computes desired quotes and reconciles.
// Resting orders are re-queried every tick rather than trusted from a
// cached id list; lazy expiry on the venue side makes caches lie.
func (m *MarketMaker) tick(elapsed time.Duration) error {
	mid, err := m.venue.GetPrice()
	if err != nil {
		return err
	}
	position, err := m.venue.GetPosition()
	if err != nil {
		return err
	}
	resting, err := m.venue.GetOrders()
	if err != nil {
		return err
	}
	metrics.MidPrice.WithLabelValues(m.cfg.Name).Set(mid)
	metrics.PositionNet.WithLabelValues(m.cfg.Name).Set(float64(position))

	quotes := m.quoter.Quotes(mid, position, elapsed)
	for _, q := range quotes {
		metrics.QuotesGenerated.WithLabelValues(m.cfg.Name, string(q.Action)).Inc()
	}

	var expiration time.Time
	if m.cfg.OrderExpiration > 0 {
		expiration = time.Now().Add(m.cfg.OrderExpiration)
	}
	m.rec.Apply(mid, quotes, resting, expiration)
	return nil
}

func (m *MarketMaker) stop(reason string) {
	m.log.Event("strategy_stop", map[string]interface{}{
		"strategy": m.cfg.Name,
		"reason":   reason,
	})
}
