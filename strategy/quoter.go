// Package strategy holds the quoting engines: pure pricing logic mapping
// market state and inventory to desired quotes. Venue interaction lives
// in package maker.
package strategy

import (
	"time"

	"kalshi-mm-go/venue"
)

// Quote is an ephemeral desired order, recomputed every tick and never
// stored between ticks.
type Quote struct {
	Action venue.Action
	Price  float64
	Size   int
}

// Quoter turns a mid price, the current inventory and the elapsed run
// time into at most one desired quote per action side. An empty result
// means stand down: no quoting this tick.
type Quoter interface {
	Quotes(mid float64, position int, elapsed time.Duration) []Quote
}
