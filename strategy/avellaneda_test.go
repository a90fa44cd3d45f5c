package strategy

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalshi-mm-go/venue"
)

func newAvellaneda(t *testing.T) *Avellaneda {
	t.Helper()
	return NewAvellaneda(0.1, 1.5, 0.1, time.Hour, 100, 0.01, 0.1, 0.01, nil)
}

func TestDynamicGammaDampsWithInventory(t *testing.T) {
	a := newAvellaneda(t)
	assert.InDelta(t, a.Gamma, a.DynamicGamma(0), 1e-12)
	assert.Less(t, a.DynamicGamma(50), a.Gamma)
	assert.Less(t, a.DynamicGamma(-50), a.Gamma)
	assert.Equal(t, a.DynamicGamma(50), a.DynamicGamma(-50), "damping depends on |q| only")
}

func TestReservationPriceEqualsMidAtZeroInventory(t *testing.T) {
	a := newAvellaneda(t)
	assert.InDelta(t, 0.50, a.ReservationPrice(0.50, 0, 0), 1e-12)
}

func TestReservationPriceSkewsAgainstInventory(t *testing.T) {
	a := newAvellaneda(t)
	long := a.ReservationPrice(0.50, 20, 0)
	short := a.ReservationPrice(0.50, -20, 0)
	assert.NotEqual(t, long, short)
}

func TestOptimalSpreadFlooredAndCompressed(t *testing.T) {
	a := newAvellaneda(t)
	atZero := a.OptimalSpread(0, 0)
	assert.GreaterOrEqual(t, atZero, a.MinSpread*(1-0.0), "floored at min spread when flat")

	// Approaching the bound compresses the spread quadratically.
	near := a.OptimalSpread(90, 0)
	assert.Less(t, near, atZero)
	assert.Greater(t, near, 0.0)
}

func TestAsymmetricQuotesBracketMid(t *testing.T) {
	a := newAvellaneda(t)
	for _, position := range []int{-80, -20, 0, 20, 80} {
		bid, ask := a.AsymmetricQuotes(0.50, position, 30*time.Minute)
		assert.LessOrEqual(t, bid, 0.50, "bid never exceeds mid (q=%d)", position)
		assert.GreaterOrEqual(t, ask, 0.50, "ask never falls below mid (q=%d)", position)
		assert.GreaterOrEqual(t, bid, 0.0)
		assert.LessOrEqual(t, ask, 1.0)
	}
}

func TestAsymmetricSplitFavorsReduction(t *testing.T) {
	a := newAvellaneda(t)
	mid := 0.50

	// Long: the ask (inventory-reducing) sits closer to the
	// reservation price than the bid does.
	r := a.ReservationPrice(mid, 40, 0)
	bid, ask := a.AsymmetricQuotes(mid, 40, 0)
	assert.Less(t, ask-r, r-bid)

	// Short: mirrored.
	r = a.ReservationPrice(mid, -40, 0)
	bid, ask = a.AsymmetricQuotes(mid, -40, 0)
	assert.Less(t, r-bid, ask-r)
}

func TestOrderSizesFavorInventoryReduction(t *testing.T) {
	a := newAvellaneda(t)

	buySize, sellSize := a.OrderSizes(0)
	assert.Equal(t, 10, buySize, "buffer fraction of max position")
	assert.Equal(t, 10, sellSize)

	// Long 40: selling reduces, buying increases.
	buySize, sellSize = a.OrderSizes(40)
	assert.Equal(t, 10, sellSize, "reducing side capped at buffer")
	assert.Equal(t, 60, buySize, "increasing side takes full headroom")

	// Short 95: reducing side capped by remaining capacity.
	buySize, sellSize = a.OrderSizes(-95)
	assert.Equal(t, 5, sellSize)
	assert.Equal(t, 10, buySize)
}

func TestAvellanedaStandsDownAtLimit(t *testing.T) {
	a := newAvellaneda(t)
	assert.Empty(t, a.Quotes(0.50, 100, 0))
	assert.Empty(t, a.Quotes(0.50, -120, 0))
}

func TestAvellanedaQuotesStayInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := newAvellaneda(t)
	for i := 0; i < 1000; i++ {
		mid := rng.Float64()
		position := rng.Intn(199) - 99
		elapsed := time.Duration(rng.Int63n(int64(time.Hour)))
		for _, q := range a.Quotes(mid, position, elapsed) {
			require.Greater(t, q.Price, 0.0)
			require.Less(t, q.Price, 1.0)
			require.Greater(t, q.Size, 0)
			assert.True(t, q.Action == venue.Buy || q.Action == venue.Sell)
		}
	}
}

func TestHorizonDecayReducesTimeTerm(t *testing.T) {
	a := newAvellaneda(t)
	early := a.OptimalSpread(0, 0)
	late := a.OptimalSpread(0, 59*time.Minute)
	assert.LessOrEqual(t, late, early, "time term decays toward the horizon")
}
