// Package venue abstracts the trading venue behind a capability
// interface with two implementations: a live Kalshi HTTP client and an
// in-memory simulated exchange.
package venue

import "time"

// Action is the order direction.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

// Side is the binary-market side being traded.
type Side string

const (
	Yes Side = "yes"
	No  Side = "no"
)

// PriceTick is the minimum meaningful price increment in dollars.
const PriceTick = 0.01

// Order is a resting order as reported by the venue.
type Order struct {
	ID         string
	Action     Action
	Price      float64 // dollars, strictly inside (0,1)
	Size       int
	Remaining  int
	Expiration time.Time // zero value means no expiration
}

// Expired reports whether the order has a set expiration that passed.
func (o Order) Expired(now time.Time) bool {
	return !o.Expiration.IsZero() && now.After(o.Expiration)
}

// Venue is the capability interface a strategy trades through. Calls are
// synchronous and may block on I/O. Implementations must provide
// read-after-write consistency between consecutive calls within one tick:
// a CancelOrder followed by GetOrders must not return the canceled order.
type Venue interface {
	// GetPrice returns the current mid price for the configured trade
	// side, rounded to two decimals. Never cached between calls.
	GetPrice() (float64, error)
	// PlaceOrder submits a limit order. Price must be in (0,1).
	// A zero expiration means the order does not expire.
	PlaceOrder(action Action, price float64, size int, expiration time.Time) (string, error)
	// CancelOrder reports whether resting quantity was actually reduced.
	CancelOrder(id string) (bool, error)
	// GetPosition returns the signed inventory for the configured
	// market and side. Positive is net long.
	GetPosition() (int, error)
	// GetOrders returns currently resting, non-expired orders only.
	GetOrders() ([]Order, error)
	// Close releases the venue session. Idempotent.
	Close() error
}
