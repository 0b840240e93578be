package synthetic

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/peter-kozarec/rollstat/pkg/datasource"
	"github.com/peter-kozarec/rollstat/pkg/utility/fixed"
)

var pointFive = fixed.FromInt64(5, 1)

// Generator emits a geometric Brownian motion price path, one observation per step.
type Generator struct {
	rng *rand.Rand

	deltaLogPre1 fixed.Point
	deltaLogPre2 fixed.Point
	steps        int64
	t            int64

	lastPrice   fixed.Point
	priceDigits int
}

func NewGenerator(rng *rand.Rand, startPrice, mu, sigma, deltaT fixed.Point, steps int64) (*Generator, error) {
	if !startPrice.Gt(fixed.Zero) {
		return nil, fmt.Errorf("start price must be positive, got %s", startPrice)
	}

	// Pre-calculated values for GBM
	drift, err := sigma.MulChecked(sigma)
	if err != nil {
		return nil, fmt.Errorf("invalid sigma %s: %w", sigma, err)
	}
	if drift, err = mu.SubChecked(drift.Mul(pointFive)); err != nil {
		return nil, fmt.Errorf("invalid mu %s: %w", mu, err)
	}
	if drift, err = drift.MulChecked(deltaT); err != nil {
		return nil, fmt.Errorf("invalid delta t %s: %w", deltaT, err)
	}
	sqrtDeltaT, err := deltaT.SqrtChecked()
	if err != nil {
		return nil, fmt.Errorf("invalid delta t %s: %w", deltaT, err)
	}
	diffusion, err := sigma.MulChecked(sqrtDeltaT)
	if err != nil {
		return nil, fmt.Errorf("invalid sigma %s: %w", sigma, err)
	}

	return &Generator{
		rng:   rng,
		steps: steps,

		deltaLogPre1: drift,
		deltaLogPre2: diffusion,

		lastPrice:   startPrice,
		priceDigits: 5,
	}, nil
}

func (g *Generator) SetPriceDigits(digits int) {
	g.priceDigits = digits
}

// Next returns an error instead of a price once the path leaves the decimal range.
func (g *Generator) Next(_ context.Context) (any, error) {
	if g.t >= g.steps {
		return nil, datasource.ErrEof
	}

	z, err := fixed.ParseFloat64(g.rng.NormFloat64())
	if err != nil {
		return nil, err
	}
	shock, err := g.deltaLogPre2.MulChecked(z)
	if err != nil {
		return nil, fmt.Errorf("step %d: %w", g.t, err)
	}
	growth, err := g.deltaLogPre1.Add(shock).ExpChecked()
	if err != nil {
		return nil, fmt.Errorf("step %d: %w", g.t, err)
	}
	price, err := g.lastPrice.MulChecked(growth)
	if err != nil {
		return nil, fmt.Errorf("step %d: %w", g.t, err)
	}

	g.lastPrice = price.Round(fixed.Scale)
	g.t++

	return g.lastPrice.Round(g.priceDigits), nil
}
