package rolling

import (
	"errors"
	"fmt"

	"github.com/peter-kozarec/rollstat/pkg/utility/circular"
	"github.com/peter-kozarec/rollstat/pkg/utility/fixed"
)

var (
	ErrConfiguration      = errors.New("invalid window configuration")
	ErrInvalidObservation = errors.New("invalid observation")
)

type Phase uint8

const (
	Filling Phase = iota
	Full
)

func (p Phase) String() string {
	switch p {
	case Filling:
		return "filling"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Statistics keeps the sum, mean and sample variance of the last windowSize observations.
// Every insert costs O(1): while the window fills it runs Welford's update, afterwards it
// replaces the evicted observation in place. The sum is exact; mean and variance carry the
// quotient rounding of fixed.Scale decimal places.
//
// Statistics is not safe for concurrent use.
type Statistics struct {
	window *circular.Buffer[fixed.Point]

	defined  bool
	sum      fixed.Point
	mean     fixed.Point
	variance fixed.Point
}

func NewStatistics(windowSize int) (*Statistics, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", ErrConfiguration, windowSize)
	}
	return &Statistics{
		window: circular.NewBuffer[fixed.Point](windowSize),
	}, nil
}

// Insert adds an observation. Any finite decimal is accepted; only a value whose exponent lies
// outside the decimal range is rejected, and then the state is left untouched.
func (s *Statistics) Insert(value fixed.Point) error {
	var (
		sum, mean, variance fixed.Point
		err                 error
	)

	if evicted, full := s.window.Next(); full {
		sum, mean, variance, err = s.slide(value, evicted)
	} else {
		sum, mean, variance, err = s.grow(value)
	}
	if err != nil {
		return fmt.Errorf("%w: %s is out of range: %v", ErrInvalidObservation, value, err)
	}

	// Rounding may leave the variance a hair below zero once the window turns uniform.
	if variance.IsNeg() {
		variance = fixed.Zero
	}

	s.sum, s.mean, s.variance = sum, mean, variance
	s.defined = true
	s.window.Push(value)
	return nil
}

func (s *Statistics) InsertFloat64(value float64) error {
	p, err := fixed.ParseFloat64(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidObservation, err)
	}
	return s.Insert(p)
}

func (s *Statistics) InsertString(value string) error {
	p, err := fixed.Parse(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidObservation, err)
	}
	return s.Insert(p)
}

// InsertValue accepts any type Observation understands.
func (s *Statistics) InsertValue(value any) error {
	p, err := Observation(value)
	if err != nil {
		return err
	}
	return s.Insert(p)
}

// grow is Welford's online update for a window that has not wrapped yet.
func (s *Statistics) grow(value fixed.Point) (sum, mean, variance fixed.Point, err error) {
	k := s.window.Size()
	if k == 0 {
		return value, value, fixed.Zero, nil
	}

	oldDeviation, err := value.SubChecked(s.mean)
	if err != nil {
		return
	}
	if sum, err = s.sum.AddChecked(value); err != nil {
		return
	}
	step, err := oldDeviation.DivIntChecked(k + 1)
	if err != nil {
		return
	}
	if mean, err = s.mean.AddChecked(step); err != nil {
		return
	}
	newDeviation, err := value.SubChecked(mean)
	if err != nil {
		return
	}
	product, err := oldDeviation.MulChecked(newDeviation)
	if err != nil {
		return
	}
	delta, err := product.SubChecked(s.variance)
	if err != nil {
		return
	}
	if delta, err = delta.DivIntChecked(k); err != nil {
		return
	}
	variance, err = s.variance.AddChecked(delta)
	return
}

// slide replaces evicted with value in a full window without rescanning it.
func (s *Statistics) slide(value, evicted fixed.Point) (sum, mean, variance fixed.Point, err error) {
	windowSize := s.window.Capacity()
	oldMean := s.mean

	if sum, err = s.sum.SubChecked(evicted); err != nil {
		return
	}
	if sum, err = sum.AddChecked(value); err != nil {
		return
	}
	diff, err := value.SubChecked(evicted)
	if err != nil {
		return
	}
	step, err := diff.DivIntChecked(windowSize)
	if err != nil {
		return
	}
	if mean, err = oldMean.AddChecked(step); err != nil {
		return
	}

	// A window of one has no sample variance to carry.
	if windowSize == 1 {
		return sum, mean, fixed.Zero, nil
	}

	newDeviation, err := value.SubChecked(mean)
	if err != nil {
		return
	}
	oldDeviation, err := evicted.SubChecked(oldMean)
	if err != nil {
		return
	}
	summedDeviation, err := newDeviation.AddChecked(oldDeviation)
	if err != nil {
		return
	}
	delta, err := diff.MulChecked(summedDeviation)
	if err != nil {
		return
	}
	if delta, err = delta.DivIntChecked(windowSize - 1); err != nil {
		return
	}
	variance, err = s.variance.AddChecked(delta)
	return
}

func (s *Statistics) Count() int {
	return s.window.Size()
}

func (s *Statistics) WindowCapacity() int {
	return s.window.Capacity()
}

func (s *Statistics) Phase() Phase {
	if s.window.IsFull() {
		return Full
	}
	return Filling
}

func (s *Statistics) IsReady() bool {
	return s.window.IsFull()
}

// Sum returns false until the first observation arrives. The same holds for Mean, Variance
// and StandardDeviation.
func (s *Statistics) Sum() (fixed.Point, bool) {
	return s.sum, s.defined
}

func (s *Statistics) Mean() (fixed.Point, bool) {
	return s.mean, s.defined
}

func (s *Statistics) Variance() (fixed.Point, bool) {
	return s.variance, s.defined
}

func (s *Statistics) StandardDeviation() (fixed.Point, bool) {
	if !s.defined {
		return fixed.Point{}, false
	}
	return s.variance.Sqrt(), true
}

func (s *Statistics) Latest() (fixed.Point, bool) {
	if s.window.IsEmpty() {
		return fixed.Point{}, false
	}
	return s.window.First(), true
}

// Values returns the retained observations, oldest first.
func (s *Statistics) Values() []fixed.Point {
	return s.window.Data()
}
