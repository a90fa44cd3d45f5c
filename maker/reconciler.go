// Package maker drives one strategy: a periodic tick loop pulling market
// state from the venue, asking the quoting engine for desired quotes and
// applying them through the order reconciler.
package maker

import (
	"math"
	"time"

	"kalshi-mm-go/infrastructure/logger"
	"kalshi-mm-go/metrics"
	"kalshi-mm-go/strategy"
	"kalshi-mm-go/venue"
)

// Reconciler compares desired quotes to resting orders and emits
// place/cancel actions, one resting order per action side at most.
// Unchanged orders are left alone: cancel-and-replace every tick would
// generate needless venue load and lose queue priority.
type Reconciler struct {
	Name  string
	Venue venue.Venue
	Log   *logger.Logger
}

// replaceEps absorbs float noise when comparing against the price tick.
const replaceEps = 1e-9

// Apply reconciles the desired quotes for both action sides against the
// resting orders observed this tick. Per-leg failures are logged and do
// not stop the other side from being attempted.
func (r *Reconciler) Apply(mid float64, desired []strategy.Quote, resting []venue.Order, expiration time.Time) {
	for _, action := range []venue.Action{venue.Buy, venue.Sell} {
		r.applySide(action, mid, pickQuote(desired, action), pickResting(resting, action), expiration)
	}
}

// applySide runs the per-side state machine:
// absent -> resting (place), resting -> absent (cancel),
// resting -> resting (keep, unchanged).
func (r *Reconciler) applySide(action venue.Action, mid float64, want *strategy.Quote, have []venue.Order, expiration time.Time) {
	// At most one resting order per side; anything beyond the first is
	// a leftover and gets canceled.
	var current *venue.Order
	if len(have) > 0 {
		current = &have[0]
		for i := 1; i < len(have); i++ {
			r.cancel(action, have[i].ID, "duplicate")
		}
	}

	if want == nil {
		if current != nil {
			if !r.cancel(action, current.ID, "stand_down") {
				return
			}
		}
		return
	}

	if current != nil {
		if !r.needsReplace(current, want) {
			metrics.OrdersKept.WithLabelValues(r.Name, string(action)).Inc()
			r.Log.Event("order_keep", map[string]interface{}{
				"strategy": r.Name,
				"action":   string(action),
				"order_id": current.ID,
				"price":    current.Price,
			})
			return
		}
		if !r.cancel(action, current.ID, "replace") {
			// Leave the old order rather than risk doubling up.
			return
		}
	}

	r.place(action, mid, *want, expiration)
}

// needsReplace reports whether the resting order has drifted a full
// price tick from the desired price or no longer matches the size.
func (r *Reconciler) needsReplace(current *venue.Order, want *strategy.Quote) bool {
	return math.Abs(current.Price-want.Price) >= venue.PriceTick-replaceEps ||
		current.Remaining != want.Size
}

// place submits the desired quote unless it would cross the mid in the
// wrong direction (a bid at or above the mid, an ask at or below it).
func (r *Reconciler) place(action venue.Action, mid float64, want strategy.Quote, expiration time.Time) {
	crosses := (action == venue.Buy && want.Price >= mid) ||
		(action == venue.Sell && want.Price <= mid)
	if crosses {
		r.Log.Event("quote_skip", map[string]interface{}{
			"strategy": r.Name,
			"action":   string(action),
			"price":    want.Price,
			"reason":   "crosses_mid",
			"mid":      mid,
		})
		return
	}

	id, err := r.Venue.PlaceOrder(action, want.Price, want.Size, expiration)
	if err != nil {
		rejected := &venue.OrderRejected{Action: action, Price: want.Price, Size: want.Size, Err: err}
		metrics.OrderRejects.WithLabelValues(r.Name, string(action)).Inc()
		r.Log.Event("order_reject", map[string]interface{}{
			"strategy": r.Name,
			"action":   string(action),
			"price":    want.Price,
			"size":     want.Size,
			"error":    rejected.Error(),
		})
		return
	}
	metrics.OrdersPlaced.WithLabelValues(r.Name, string(action)).Inc()
	r.Log.Event("order_place", map[string]interface{}{
		"strategy": r.Name,
		"action":   string(action),
		"price":    want.Price,
		"size":     want.Size,
		"order_id": id,
	})
}

// cancel issues a cancel and reports whether the side is now clear.
func (r *Reconciler) cancel(action venue.Action, id, reason string) bool {
	reduced, err := r.Venue.CancelOrder(id)
	if err != nil {
		r.Log.LogError(err, map[string]interface{}{
			"strategy": r.Name,
			"action":   string(action),
			"order_id": id,
			"stage":    "cancel",
		})
		return false
	}
	metrics.OrdersCanceled.WithLabelValues(r.Name, string(action)).Inc()
	r.Log.Event("order_cancel", map[string]interface{}{
		"strategy": r.Name,
		"action":   string(action),
		"order_id": id,
		"reason":   reason,
		"reduced":  reduced,
	})
	return true
}

func pickQuote(quotes []strategy.Quote, action venue.Action) *strategy.Quote {
	for i := range quotes {
		if quotes[i].Action == action {
			return &quotes[i]
		}
	}
	return nil
}

func pickResting(orders []venue.Order, action venue.Action) []venue.Order {
	var out []venue.Order
	for _, o := range orders {
		if o.Action == action {
			out = append(out, o)
		}
	}
	return out
}
