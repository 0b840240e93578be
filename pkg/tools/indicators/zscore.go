package indicators

import (
	"errors"
	"fmt"

	"github.com/peter-kozarec/rollstat/pkg/tools/rolling"
	"github.com/peter-kozarec/rollstat/pkg/utility/fixed"
)

var ErrNotReady = errors.New("not enough data")

// ZScore measures points in sample standard deviations from the window mean. It reads the
// aggregates of stats, so the caller keeps feeding stats directly.
type ZScore struct {
	stats *rolling.Statistics
}

func NewZScore(stats *rolling.Statistics) *ZScore {
	return &ZScore{stats: stats}
}

// Of scores p against the current window. A flat window scores zero. A score outside the decimal
// range is returned as an error.
func (z *ZScore) Of(p fixed.Point) (fixed.Point, error) {
	if !z.IsReady() {
		return fixed.Point{}, ErrNotReady
	}

	mean, _ := z.stats.Mean()
	stdDev, _ := z.stats.StandardDeviation()
	if stdDev.IsZero() {
		return fixed.Zero, nil
	}

	deviation, err := p.SubChecked(mean)
	if err != nil {
		return fixed.Point{}, fmt.Errorf("scoring %s: %w", p, err)
	}
	score, err := deviation.DivChecked(stdDev)
	if err != nil {
		return fixed.Point{}, fmt.Errorf("scoring %s: %w", p, err)
	}
	return score, nil
}

// Value scores the most recent observation.
func (z *ZScore) Value() (fixed.Point, error) {
	latest, ok := z.stats.Latest()
	if !ok {
		return fixed.Point{}, ErrNotReady
	}
	return z.Of(latest)
}

func (z *ZScore) IsReady() bool {
	return z.stats.IsReady()
}
