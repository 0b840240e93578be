package rolling

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/peter-kozarec/rollstat/pkg/utility/fixed"
)

func ints(values ...int64) []fixed.Point {
	out := make([]fixed.Point, len(values))
	for i, v := range values {
		out[i] = fixed.New(v, 0)
	}
	return out
}

func within(got, want fixed.Point, tolerance string) bool {
	return got.Sub(want).Abs().Lte(fixed.MustParse(tolerance))
}

func mustStatistics(t testing.TB, windowSize int, values ...fixed.Point) *Statistics {
	t.Helper()
	s, err := NewStatistics(windowSize)
	if err != nil {
		t.Fatalf("NewStatistics(%d): %v", windowSize, err)
	}
	for _, v := range values {
		if err := s.Insert(v); err != nil {
			t.Fatalf("Insert(%s): %v", v, err)
		}
	}
	return s
}

func sameSnapshot(a, b Snapshot) bool {
	return a.Count == b.Count && a.Capacity == b.Capacity && a.Phase == b.Phase && a.Defined == b.Defined &&
		a.Sum.Eq(b.Sum) && a.Mean.Eq(b.Mean) && a.Variance.Eq(b.Variance) && a.StandardDeviation.Eq(b.StandardDeviation)
}

func assertPoints(t *testing.T, got, want []fixed.Point) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Eq(want[i]) {
			t.Errorf("value %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRollingStatistics_NewStatistics(t *testing.T) {
	tests := []struct {
		name       string
		windowSize int
		wantErr    bool
	}{
		{"positive", 5, false},
		{"one", 1, false},
		{"zero", 0, true},
		{"negative", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStatistics(tt.windowSize)
			if tt.wantErr {
				if !errors.Is(err, ErrConfiguration) {
					t.Errorf("error = %v; want ErrConfiguration", err)
				}
				if s != nil {
					t.Error("expected no engine on configuration error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.WindowCapacity() != tt.windowSize {
				t.Errorf("WindowCapacity() = %d; want %d", s.WindowCapacity(), tt.windowSize)
			}
		})
	}
}

func TestRollingStatistics_Empty(t *testing.T) {
	s := mustStatistics(t, 5)

	if s.Count() != 0 {
		t.Errorf("Count() = %d; want 0", s.Count())
	}
	if s.Phase() != Filling || s.IsReady() {
		t.Errorf("Phase() = %s; want filling", s.Phase())
	}
	if _, ok := s.Sum(); ok {
		t.Error("Sum() should be undefined")
	}
	if _, ok := s.Mean(); ok {
		t.Error("Mean() should be undefined")
	}
	if _, ok := s.Variance(); ok {
		t.Error("Variance() should be undefined")
	}
	if _, ok := s.StandardDeviation(); ok {
		t.Error("StandardDeviation() should be undefined")
	}
	if _, ok := s.Latest(); ok {
		t.Error("Latest() should be undefined")
	}
	if len(s.Values()) != 0 {
		t.Errorf("Values() = %v; want empty", s.Values())
	}
}

func TestRollingStatistics_SingleObservation(t *testing.T) {
	s := mustStatistics(t, 5, fixed.MustParse("12.5"))

	sum, _ := s.Sum()
	mean, _ := s.Mean()
	variance, ok := s.Variance()
	if !ok || !variance.IsZero() {
		t.Errorf("Variance() = %s, %v; want 0, true", variance, ok)
	}
	if !sum.Eq(fixed.MustParse("12.5")) || !mean.Eq(fixed.MustParse("12.5")) {
		t.Errorf("Sum() = %s, Mean() = %s; want 12.5", sum, mean)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d; want 1", s.Count())
	}
}

func TestRollingStatistics_Window(t *testing.T) {
	s := mustStatistics(t, 5, ints(100, 110, 40, 55, 45)...)

	if s.Count() != 5 || s.Phase() != Full || !s.IsReady() {
		t.Fatalf("Count() = %d, Phase() = %s; want 5, full", s.Count(), s.Phase())
	}

	tests := []struct {
		name string
		get  func() (fixed.Point, bool)
		want fixed.Point
	}{
		{"sum", s.Sum, fixed.New(350, 0)},
		{"mean", s.Mean, fixed.New(70, 0)},
		{"variance", s.Variance, fixed.MustParse("1062.5")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.get()
			if !ok || !got.Eq(tt.want) {
				t.Errorf("got %s, %v; want %s", got, ok, tt.want)
			}
		})
	}

	if err := s.Insert(fixed.New(70, 0)); err != nil {
		t.Fatalf("Insert(70): %v", err)
	}

	assertPoints(t, s.Values(), ints(110, 40, 55, 45, 70))
	if latest, ok := s.Latest(); !ok || !latest.Eq(fixed.New(70, 0)) {
		t.Errorf("Latest() = %s, %v; want 70, true", latest, ok)
	}

	sum, _ := s.Sum()
	mean, _ := s.Mean()
	variance, _ := s.Variance()
	if !sum.Eq(fixed.New(320, 0)) {
		t.Errorf("Sum() = %s; want 320", sum)
	}
	if !mean.Eq(fixed.New(64, 0)) {
		t.Errorf("Mean() = %s; want 64", mean)
	}
	if !variance.Eq(fixed.MustParse("792.5")) {
		t.Errorf("Variance() = %s; want 792.5", variance)
	}
	if s.Count() != 5 {
		t.Errorf("Count() = %d; want 5", s.Count())
	}
}

func TestRollingStatistics_InvalidObservation(t *testing.T) {
	s := mustStatistics(t, 5, ints(100, 110, 40)...)
	before := s.Snapshot()
	values := s.Values()

	inserts := []struct {
		name   string
		insert func() error
	}{
		{"nan", func() error { return s.InsertFloat64(math.NaN()) }},
		{"positive infinity", func() error { return s.InsertFloat64(math.Inf(1)) }},
		{"negative infinity", func() error { return s.InsertFloat64(math.Inf(-1)) }},
		{"nan string", func() error { return s.InsertString("NaN") }},
		{"empty string", func() error { return s.InsertString("") }},
		{"nil", func() error { return s.InsertValue(nil) }},
		{"bool", func() error { return s.InsertValue(true) }},
		{"struct", func() error { return s.InsertValue(struct{}{}) }},
		{"nan float32", func() error { return s.InsertValue(float32(math.NaN())) }},
	}

	for _, tt := range inserts {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.insert(); !errors.Is(err, ErrInvalidObservation) {
				t.Fatalf("error = %v; want ErrInvalidObservation", err)
			}
			if !sameSnapshot(s.Snapshot(), before) {
				t.Errorf("state changed after rejected insert")
			}
			assertPoints(t, s.Values(), values)
		})
	}

	if err := s.InsertFloat64(55); err != nil {
		t.Fatalf("valid insert after rejection: %v", err)
	}
	if s.Count() != 4 {
		t.Errorf("Count() = %d; want 4", s.Count())
	}
}

func TestRollingStatistics_WideValues(t *testing.T) {
	large := fixed.MustParse("9999999999999999999")

	s := mustStatistics(t, 3, large, large)
	if s.Count() != 2 {
		t.Fatalf("Count() = %d; want 2", s.Count())
	}
	sum, _ := s.Sum()
	mean, _ := s.Mean()
	variance, _ := s.Variance()
	if sum.String() != "19999999999999999998" || !mean.Eq(large) || !variance.IsZero() {
		t.Errorf("sum=%s mean=%s variance=%s", sum, mean, variance)
	}

	s = mustStatistics(t, 2, fixed.MustParse("1000000000"), fixed.MustParse("0.0000000000000000001"))
	if sum, _ := s.Sum(); sum.String() != "1000000000.0000000000000000001" {
		t.Errorf("Sum() = %s; want 1000000000.0000000000000000001", sum)
	}
}

func TestRollingStatistics_NoCancellation(t *testing.T) {
	s := mustStatistics(t, 2, fixed.MustParse("123456789012345678901234567890.5"), fixed.One, fixed.Two)

	sum, _ := s.Sum()
	mean, _ := s.Mean()
	variance, _ := s.Variance()
	if !sum.Eq(fixed.Three) {
		t.Errorf("Sum() = %s; want 3", sum)
	}
	if !mean.Eq(fixed.MustParse("1.5")) {
		t.Errorf("Mean() = %s; want 1.5", mean)
	}
	if !variance.Eq(fixed.MustParse("0.5")) {
		t.Errorf("Variance() = %s; want 0.5", variance)
	}
}

func TestRollingStatistics_OutOfRange(t *testing.T) {
	huge := fixed.MustParse("1e99999")
	s := mustStatistics(t, 2, huge)
	before := s.Snapshot()

	// The squared deviation of the second value exceeds the exponent range.
	if err := s.Insert(huge.Neg()); !errors.Is(err, ErrInvalidObservation) {
		t.Fatalf("error = %v; want ErrInvalidObservation", err)
	}
	if !sameSnapshot(s.Snapshot(), before) {
		t.Error("state changed after rejected insert")
	}
}

func TestRollingStatistics_FillPhase(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	const windowSize = 12
	s := mustStatistics(t, windowSize)
	var inserted []fixed.Point

	for n := 1; n <= windowSize; n++ {
		v := fixed.New(int64(r.Intn(200000)-100000), 2)
		if err := s.Insert(v); err != nil {
			t.Fatalf("Insert(%s): %v", v, err)
		}
		inserted = append(inserted, v)

		if s.Count() != n {
			t.Fatalf("Count() = %d; want %d", s.Count(), n)
		}
		sum, _ := s.Sum()
		mean, _ := s.Mean()
		variance, _ := s.Variance()

		if !sum.Eq(fixed.Sum(inserted)) {
			t.Errorf("n=%d: Sum() = %s; want %s", n, sum, fixed.Sum(inserted))
		}
		if !within(mean, fixed.Mean(inserted), "0.0000000001") {
			t.Errorf("n=%d: Mean() = %s; want %s", n, mean, fixed.Mean(inserted))
		}
		if !within(variance, fixed.SampleVariance(inserted), "0.00000001") {
			t.Errorf("n=%d: Variance() = %s; want %s", n, variance, fixed.SampleVariance(inserted))
		}
	}
}

func TestRollingStatistics_SteadyState(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	const windowSize = 7
	s := mustStatistics(t, windowSize)
	var inserted []fixed.Point

	for i := 0; i < 200; i++ {
		v := fixed.New(int64(r.Intn(200000)-100000), 2)
		if err := s.Insert(v); err != nil {
			t.Fatalf("Insert(%s): %v", v, err)
		}
		inserted = append(inserted, v)

		if i < windowSize {
			continue
		}

		last := inserted[len(inserted)-windowSize:]
		assertPoints(t, s.Values(), last)

		sum, _ := s.Sum()
		mean, _ := s.Mean()
		variance, _ := s.Variance()
		stdDev, _ := s.StandardDeviation()

		if s.Count() != windowSize {
			t.Fatalf("Count() = %d; want %d", s.Count(), windowSize)
		}
		if !sum.Eq(fixed.Sum(last)) {
			t.Fatalf("i=%d: Sum() = %s; want %s", i, sum, fixed.Sum(last))
		}
		if !within(mean, fixed.Mean(last), "0.0000000001") {
			t.Fatalf("i=%d: Mean() = %s; want %s", i, mean, fixed.Mean(last))
		}
		if !within(variance, fixed.SampleVariance(last), "0.00000001") {
			t.Fatalf("i=%d: Variance() = %s; want %s", i, variance, fixed.SampleVariance(last))
		}
		if !within(stdDev, fixed.SampleStdDev(last), "0.00000001") {
			t.Fatalf("i=%d: StandardDeviation() = %s; want %s", i, stdDev, fixed.SampleStdDev(last))
		}
	}
}

func TestRollingStatistics_MatchesFloatReference(t *testing.T) {
	r := rand.New(rand.NewSource(3))

	const windowSize = 20
	s := mustStatistics(t, windowSize)
	var floats []float64

	for i := 0; i < 100; i++ {
		f := float64(r.Intn(1000000)) / 1000
		if err := s.InsertFloat64(f); err != nil {
			t.Fatalf("InsertFloat64(%v): %v", f, err)
		}
		floats = append(floats, f)
	}

	window := floats[len(floats)-windowSize:]
	wantMean, wantStd := stat.MeanStdDev(window, nil)

	mean, _ := s.Mean()
	stdDev, _ := s.StandardDeviation()
	gotMean, _ := mean.Float64()
	gotStd, _ := stdDev.Float64()

	if math.Abs(gotMean-wantMean) > 1e-6 {
		t.Errorf("Mean() = %v; want %v", gotMean, wantMean)
	}
	if math.Abs(gotStd-wantStd) > 1e-6 {
		t.Errorf("StandardDeviation() = %v; want %v", gotStd, wantStd)
	}
}

func TestRollingStatistics_UniformWindowHasZeroVariance(t *testing.T) {
	tests := []struct {
		name     string
		constant fixed.Point
	}{
		{"zero", fixed.Zero},
		{"seven", fixed.New(7, 0)},
		{"negative", fixed.New(-12, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustStatistics(t, 5, ints(100, 110, 40, 55, 45)...)
			for i := 0; i < 5; i++ {
				if err := s.Insert(tt.constant); err != nil {
					t.Fatalf("Insert(%s): %v", tt.constant, err)
				}
				if variance, _ := s.Variance(); variance.IsNeg() {
					t.Fatalf("Variance() = %s after %d inserts; must not be negative", variance, i+1)
				}
			}

			variance, _ := s.Variance()
			stdDev, ok := s.StandardDeviation()
			if !variance.IsZero() {
				t.Errorf("Variance() = %s; want 0", variance)
			}
			if !ok || !stdDev.IsZero() {
				t.Errorf("StandardDeviation() = %s, %v; want 0, true", stdDev, ok)
			}
			if mean, _ := s.Mean(); !mean.Eq(tt.constant) {
				t.Errorf("Mean() = %s; want %s", mean, tt.constant)
			}
		})
	}
}

func TestRollingStatistics_NegativeVarianceIsClamped(t *testing.T) {
	s := mustStatistics(t, 3, ints(1, 2, 3)...)

	// Simulate accumulated rounding drift, then substitute an equal value so the update is a no-op.
	s.variance = fixed.MustParse("-0.000000000000000001")
	if err := s.Insert(fixed.One); err != nil {
		t.Fatalf("Insert(1): %v", err)
	}

	variance, _ := s.Variance()
	if !variance.IsZero() {
		t.Errorf("Variance() = %s; want 0", variance)
	}
	if _, ok := s.StandardDeviation(); !ok {
		t.Error("StandardDeviation() should be defined")
	}
}

func TestRollingStatistics_WindowOfOne(t *testing.T) {
	s := mustStatistics(t, 1)

	for _, v := range ints(5, -3, 8) {
		if err := s.Insert(v); err != nil {
			t.Fatalf("Insert(%s): %v", v, err)
		}
		sum, _ := s.Sum()
		mean, _ := s.Mean()
		variance, _ := s.Variance()
		if s.Count() != 1 || !sum.Eq(v) || !mean.Eq(v) || !variance.IsZero() {
			t.Errorf("after %s: count=%d sum=%s mean=%s variance=%s", v, s.Count(), sum, mean, variance)
		}
	}
}

func TestRollingStatistics_CountNeverDecreases(t *testing.T) {
	s := mustStatistics(t, 4)
	prev := 0
	for i := 0; i < 10; i++ {
		if err := s.Insert(fixed.New(int64(i), 0)); err != nil {
			t.Fatal(err)
		}
		if s.Count() < prev || s.Count() > s.WindowCapacity() {
			t.Fatalf("Count() = %d after %d inserts", s.Count(), i+1)
		}
		prev = s.Count()
	}
	if prev != 4 {
		t.Errorf("Count() = %d; want 4", prev)
	}
}

func BenchmarkRollingStatistics_Insert(b *testing.B) {
	s := mustStatistics(b, 50)
	values := make([]fixed.Point, 64)
	for i := range values {
		values[i] = fixed.New(int64(i*37%101), 1)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Insert(values[i%len(values)])
	}
}
