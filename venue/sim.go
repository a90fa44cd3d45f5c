package venue

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sim is an in-memory venue: a stochastic mid-price process plus a
// minimal matching engine. Every instance owns its own book, position
// and random source, so concurrent strategies stay fully isolated.
//
// The price only advances as a side effect of GetPrice; observation and
// time advance are deliberately coupled, there is no wall-clock ticker.
type Sim struct {
	mu sync.Mutex

	price      float64
	volatility float64
	lastStep   time.Time

	// bids/asks map integer cents to a FIFO queue per price level.
	bids     map[int][]*Order
	asks     map[int][]*Order
	orders   map[string]*Order
	position int
	nextID   int

	rng *rand.Rand
	now func() time.Time
	log *zap.Logger
}

// NewSim creates a simulated venue seeded from the wall clock.
func NewSim(initialPrice, volatility float64, log *zap.Logger) *Sim {
	return NewSimSeeded(initialPrice, volatility, time.Now().UnixNano(), log)
}

// NewSimSeeded creates a simulated venue with a deterministic random
// source, for tests.
func NewSimSeeded(initialPrice, volatility float64, seed int64, log *zap.Logger) *Sim {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Sim{
		price:      initialPrice,
		volatility: volatility,
		bids:       make(map[int][]*Order),
		asks:       make(map[int][]*Order),
		orders:     make(map[string]*Order),
		rng:        rand.New(rand.NewSource(seed)),
		now:        time.Now,
		log:        log,
	}
	s.lastStep = s.now()
	return s
}

// SetClock replaces the time source, for tests driving expiry.
func (s *Sim) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.lastStep = now()
}

// GetPrice advances the price process by one Brownian step scaled by
// volatility*sqrt(elapsed), clamps it into [0,1], resolves at most one
// crossing in the book, and returns the mid rounded to two decimals.
func (s *Sim) GetPrice() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	elapsed := now.Sub(s.lastStep).Seconds()
	s.lastStep = now
	if elapsed > 0 {
		s.price += s.rng.NormFloat64() * s.volatility * math.Sqrt(elapsed)
	}
	if s.price < 0 {
		s.price = 0
	}
	if s.price > 1 {
		s.price = 1
	}
	s.matchOnce()
	mid := math.Round(s.price*100) / 100
	s.log.Debug("sim price", zap.Float64("mid", mid))
	return mid, nil
}

// matchOnce executes a single pair at the crossing levels, if any.
// Repeated crossings require repeated GetPrice calls.
func (s *Sim) matchOnce() {
	bestBid, okBid := s.bestPrice(s.bids, true)
	bestAsk, okAsk := s.bestPrice(s.asks, false)
	if !okBid || !okAsk || bestBid < bestAsk {
		return
	}
	buy := s.bids[bestBid][0]
	sell := s.asks[bestAsk][0]
	execPrice := CentsToDollars(bestBid+bestAsk) / 2

	s.position += buy.Remaining
	s.position -= sell.Remaining
	s.removeFromBook(buy)
	s.removeFromBook(sell)
	delete(s.orders, buy.ID)
	delete(s.orders, sell.ID)

	s.log.Info("sim match",
		zap.String("buy_id", buy.ID),
		zap.String("sell_id", sell.ID),
		zap.Float64("exec_price", execPrice),
		zap.Int("position", s.position))
}

func (s *Sim) bestPrice(book map[int][]*Order, highest bool) (int, bool) {
	best, found := 0, false
	for price, queue := range book {
		if len(queue) == 0 {
			continue
		}
		if !found || (highest && price > best) || (!highest && price < best) {
			best, found = price, true
		}
	}
	return best, found
}

func (s *Sim) removeFromBook(o *Order) {
	book := s.bids
	if o.Action == Sell {
		book = s.asks
	}
	cents := DollarsToCents(o.Price)
	queue := book[cents]
	for i, q := range queue {
		if q.ID == o.ID {
			book[cents] = append(queue[:i], queue[i+1:]...)
			break
		}
	}
	if len(book[cents]) == 0 {
		delete(book, cents)
	}
}

// PlaceOrder always succeeds: the simulated venue is authoritative.
func (s *Sim) PlaceOrder(action Action, price float64, size int, expiration time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	o := &Order{
		ID:         fmt.Sprintf("sim-%d", s.nextID),
		Action:     action,
		Price:      price,
		Size:       size,
		Remaining:  size,
		Expiration: expiration,
	}
	s.orders[o.ID] = o
	cents := DollarsToCents(price)
	if action == Buy {
		s.bids[cents] = append(s.bids[cents], o)
	} else {
		s.asks[cents] = append(s.asks[cents], o)
	}
	s.log.Debug("sim order placed",
		zap.String("order_id", o.ID),
		zap.String("action", string(action)),
		zap.Float64("price", price),
		zap.Int("size", size))
	return o.ID, nil
}

// CancelOrder removes the order from its book level and the registry.
// Unknown ids report false rather than an error.
func (s *Sim) CancelOrder(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return false, nil
	}
	s.removeFromBook(o)
	delete(s.orders, id)
	s.log.Debug("sim order canceled", zap.String("order_id", id))
	return o.Remaining > 0, nil
}

// GetPosition returns the venue-owned signed inventory.
func (s *Sim) GetPosition() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position, nil
}

// GetOrders lists resting orders, filtering out expired ones. Expiry is
// lazy: an expired order stays in the registry until explicitly
// canceled, it is merely excluded from listings.
func (s *Sim) GetOrders() ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	orders := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		if o.Expired(now) {
			continue
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// Close is a no-op: there is no session to release.
func (s *Sim) Close() error { return nil }

// SetPosition overrides the inventory, for tests and dry runs.
func (s *Sim) SetPosition(position int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = position
}
