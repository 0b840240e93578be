package rolling

import (
	"go.uber.org/zap/zapcore"

	"github.com/peter-kozarec/rollstat/pkg/utility/fixed"
)

// Snapshot is a copy of the engine's observable state after one insert.
type Snapshot struct {
	Count    int
	Capacity int
	Phase    Phase

	Defined           bool
	Sum               fixed.Point
	Mean              fixed.Point
	Variance          fixed.Point
	StandardDeviation fixed.Point
}

func (s *Statistics) Snapshot() Snapshot {
	snap := Snapshot{
		Count:    s.Count(),
		Capacity: s.WindowCapacity(),
		Phase:    s.Phase(),
		Defined:  s.defined,
	}
	if s.defined {
		snap.Sum = s.sum
		snap.Mean = s.mean
		snap.Variance = s.variance
		snap.StandardDeviation, _ = s.StandardDeviation()
	}
	return snap
}

func (s Snapshot) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("count", s.Count)
	enc.AddInt("capacity", s.Capacity)
	enc.AddString("phase", s.Phase.String())
	if !s.Defined {
		enc.AddBool("defined", false)
		return nil
	}
	enc.AddString("sum", s.Sum.String())
	enc.AddString("mean", s.Mean.String())
	enc.AddString("variance", s.Variance.String())
	enc.AddString("stddev", s.StandardDeviation.String())
	return nil
}
