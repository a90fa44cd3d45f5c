package strategy

import (
	"math"
	"time"

	"go.uber.org/zap"

	"kalshi-mm-go/venue"
)

// Avellaneda is the risk-averse adaptive quoting engine. It centers
// quotes on an inventory- and time-adjusted reservation price and
// derives the spread from the Avellaneda-Stoikov optimal spread,
// compressed as inventory approaches its bound so the book mean-reverts
// faster.
type Avellaneda struct {
	Gamma       float64       // base risk aversion gamma0
	K           float64       // order-flow intensity
	Sigma       float64       // volatility
	Horizon     time.Duration // T
	MaxPosition int
	MinSpread   float64
	Buffer      float64 // fraction of MaxPosition sizing the reducing side
	SkewFactor  float64 // proportional inventory skew on the mid

	log *zap.Logger
}

// reduceTighten scales the inventory-reducing half-spread down by up to
// this multiple of the position ratio; the floor keeps it positive.
const (
	reduceTighten   = 3.0
	minReduceFactor = 0.1
	priceBound      = venue.PriceTick // quotes stay in [tick, 1-tick]
)

// NewAvellaneda builds the adaptive quoter.
func NewAvellaneda(gamma, k, sigma float64, horizon time.Duration, maxPosition int, minSpread, buffer, skewFactor float64, log *zap.Logger) *Avellaneda {
	if log == nil {
		log = zap.NewNop()
	}
	return &Avellaneda{
		Gamma:       gamma,
		K:           k,
		Sigma:       sigma,
		Horizon:     horizon,
		MaxPosition: maxPosition,
		MinSpread:   minSpread,
		Buffer:      buffer,
		SkewFactor:  skewFactor,
		log:         log,
	}
}

// DynamicGamma damps risk aversion as inventory grows: gamma0*exp(-|q|/M).
// Growing tolerance pulls quotes back toward neutral instead of running
// the skew away.
func (a *Avellaneda) DynamicGamma(position int) float64 {
	return a.Gamma * math.Exp(-float64(abs(position))/float64(a.MaxPosition))
}

// ReservationPrice is the inventory- and time-adjusted fair value:
// r = m + q*skew*m - q*gamma(q)*sigma^2*(1-t/T).
func (a *Avellaneda) ReservationPrice(mid float64, position int, elapsed time.Duration) float64 {
	q := float64(position)
	g := a.DynamicGamma(position)
	return mid + q*a.SkewFactor*mid - q*g*a.Sigma*a.Sigma*a.timeRemaining(elapsed)
}

// OptimalSpread derives the full spread in price units, floored at the
// configured minimum and compressed by (1-(|q|/M)^2) near the bound.
func (a *Avellaneda) OptimalSpread(position int, elapsed time.Duration) float64 {
	g := a.DynamicGamma(position)
	raw := g*a.Sigma*a.Sigma*a.timeRemaining(elapsed) + (2/g)*math.Log(1+g/a.K)
	spread := raw * venue.PriceTick // model units to dollars
	if spread < a.MinSpread {
		spread = a.MinSpread
	}
	ratio := float64(abs(position)) / float64(a.MaxPosition)
	return spread * (1 - ratio*ratio)
}

// timeRemaining returns 1-t/T clamped to [0,1].
func (a *Avellaneda) timeRemaining(elapsed time.Duration) float64 {
	if a.Horizon <= 0 {
		return 1
	}
	frac := 1 - elapsed.Seconds()/a.Horizon.Seconds()
	if frac < 0 {
		return 0
	}
	return frac
}

// AsymmetricQuotes splits the spread so the inventory-reducing side
// quotes tighter and the increasing side wider, then clamps the bid at
// the mid from above and the ask from below, keeping both inside (0,1).
func (a *Avellaneda) AsymmetricQuotes(mid float64, position int, elapsed time.Duration) (bid, ask float64) {
	r := a.ReservationPrice(mid, position, elapsed)
	half := a.OptimalSpread(position, elapsed) / 2
	ratio := float64(abs(position)) / float64(a.MaxPosition)

	tighter := 1 - reduceTighten*ratio
	if tighter < minReduceFactor {
		tighter = minReduceFactor
	}
	wider := 1 + reduceTighten*ratio

	bidHalf, askHalf := half, half
	switch {
	case position > 0: // long: selling reduces inventory
		askHalf = half * tighter
		bidHalf = half * wider
	case position < 0: // short: buying reduces inventory
		bidHalf = half * tighter
		askHalf = half * wider
	}

	bid = r - bidHalf
	ask = r + askHalf
	if bid > mid {
		bid = mid
	}
	if ask < mid {
		ask = mid
	}
	bid = clamp(bid, priceBound, 1-priceBound)
	ask = clamp(ask, priceBound, 1-priceBound)
	return bid, ask
}

// OrderSizes favors inventory reduction: the reducing side is capped to
// min(buffer*M, capacity) while the increasing side takes the whole
// remaining headroom in one fill.
func (a *Avellaneda) OrderSizes(position int) (buySize, sellSize int) {
	buyCap := a.MaxPosition - position  // headroom toward +M
	sellCap := a.MaxPosition + position // headroom toward -M
	base := int(a.Buffer * float64(a.MaxPosition))
	if base < 1 {
		base = 1
	}
	switch {
	case position > 0:
		sellSize = min(base, sellCap)
		buySize = buyCap
	case position < 0:
		buySize = min(base, buyCap)
		sellSize = sellCap
	default:
		buySize = base
		sellSize = base
	}
	return buySize, sellSize
}

// Quotes produces both sides, or nothing once the position limit is hit.
func (a *Avellaneda) Quotes(mid float64, position int, elapsed time.Duration) []Quote {
	if abs(position) >= a.MaxPosition {
		a.log.Info("position limit reached, standing down",
			zap.Int("position", position),
			zap.Int("max_position", a.MaxPosition))
		return nil
	}

	bid, ask := a.AsymmetricQuotes(mid, position, elapsed)
	buySize, sellSize := a.OrderSizes(position)
	a.log.Debug("adaptive quotes",
		zap.Float64("mid", mid),
		zap.Int("position", position),
		zap.Float64("reservation", a.ReservationPrice(mid, position, elapsed)),
		zap.Float64("bid", bid),
		zap.Float64("ask", ask),
		zap.Int("buy_size", buySize),
		zap.Int("sell_size", sellSize))

	var quotes []Quote
	if buySize > 0 {
		quotes = append(quotes, Quote{Action: venue.Buy, Price: bid, Size: buySize})
	}
	if sellSize > 0 {
		quotes = append(quotes, Quote{Action: venue.Sell, Price: ask, Size: sellSize})
	}
	return quotes
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
