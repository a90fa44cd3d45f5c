package strategy

import (
	"time"

	"go.uber.org/zap"

	"kalshi-mm-go/venue"
)

// Simple is the fixed-spread quoting engine: a symmetric spread around a
// mid skewed linearly against inventory, one unit per side.
type Simple struct {
	Spread      float64 // full spread in dollars
	Skew        float64 // linear inventory skew per held unit
	MaxPosition int

	log *zap.Logger
}

// DefaultSkew is the per-unit inventory adjustment applied to the mid.
const DefaultSkew = 0.001

// NewSimple builds a fixed-spread quoter.
func NewSimple(spread, skew float64, maxPosition int, log *zap.Logger) *Simple {
	if log == nil {
		log = zap.NewNop()
	}
	if skew == 0 {
		skew = DefaultSkew
	}
	return &Simple{Spread: spread, Skew: skew, MaxPosition: maxPosition, log: log}
}

// Quotes skews the mid down when long and up when short, then quotes
// half a spread either side. Quotes landing outside (0,1) are skipped
// and logged, never clamped. At or beyond the position limit no side is
// quoted at all.
func (s *Simple) Quotes(mid float64, position int, _ time.Duration) []Quote {
	if abs(position) >= s.MaxPosition {
		s.log.Info("position limit reached, standing down",
			zap.Int("position", position),
			zap.Int("max_position", s.MaxPosition))
		return nil
	}

	center := mid - s.Skew*float64(position)
	bid := center - s.Spread/2
	ask := center + s.Spread/2

	var quotes []Quote
	if inRange(bid) {
		quotes = append(quotes, Quote{Action: venue.Buy, Price: bid, Size: 1})
	} else {
		s.log.Info("skipping buy quote, price out of range",
			zap.Float64("price", bid))
	}
	if inRange(ask) {
		quotes = append(quotes, Quote{Action: venue.Sell, Price: ask, Size: 1})
	} else {
		s.log.Info("skipping sell quote, price out of range",
			zap.Float64("price", ask))
	}
	return quotes
}

func inRange(price float64) bool { return price > 0 && price < 1 }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
