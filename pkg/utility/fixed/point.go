package fixed

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/govalues/decimal"
)

// Scale is the number of decimal places Div, Sqrt and Exp round to, half up. Add, Sub and Mul are
// exact.
const Scale = 20

var (
	ErrNotFinite = errors.New("value is not finite")
	ErrParse     = errors.New("value is not a decimal")
)

// exact never rounds, it is only valid for Add, Sub and Mul.
var exact = apd.BaseContext.WithPrecision(0)

// Point is an unsafe wrapper around an arbitrary precision decimal. Caller must make sure the
// calculations will not result in an error state, otherwise it will panic. The *Checked variants
// report the error instead.
type Point struct {
	v apd.Decimal
}

func New(value int64, scale int) Point {
	return Point{*apd.New(value, int32(-scale))}
}

func FromInt(value int, scale int) Point {
	return New(int64(value), scale)
}

func FromInt64(value int64, scale int) Point {
	return New(value, scale)
}

func FromFloat64(value float64) Point {
	return must(ParseFloat64(value))
}

// FromDecimal converts a fixed precision govalues decimal without loss.
func FromDecimal(d decimal.Decimal) Point {
	return MustParse(d.String())
}

// ParseFloat64 converts a finite float64 using its shortest decimal representation. NaN and
// infinities are rejected.
func ParseFloat64(value float64) (Point, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Point{}, fmt.Errorf("%w: %v", ErrNotFinite, value)
	}
	var d apd.Decimal
	if _, err := d.SetFloat64(value); err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrNotFinite, err)
	}
	return Point{d}, nil
}

func ParseUint64(value uint64) (Point, error) {
	return Parse(strconv.FormatUint(value, 10))
}

// Parse reads a decimal literal such as "-12.5" or "1e-3". NaN and infinities are rejected.
func Parse(s string) (Point, error) {
	s = strings.TrimSpace(s)
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
	}
	if d.Form != apd.Finite {
		return Point{}, fmt.Errorf("%w: %q is not finite", ErrParse, s)
	}
	return Point{*d}, nil
}

func MustParse(s string) Point {
	return must(Parse(s))
}

func (p Point) String() string { return p.v.Text('f') }

func (p Point) Float64() (float64, bool) {
	f, err := p.v.Float64()
	return f, err == nil
}

func (p Point) Abs() Point {
	var d apd.Decimal
	d.Abs(&p.v)
	return Point{d}
}

func (p Point) Neg() Point {
	var d apd.Decimal
	d.Neg(&p.v)
	return Point{d}
}

func (p Point) Add(o Point) Point { return must(p.AddChecked(o)) }
func (p Point) Sub(o Point) Point { return must(p.SubChecked(o)) }
func (p Point) Mul(o Point) Point { return must(p.MulChecked(o)) }
func (p Point) Div(o Point) Point { return must(p.DivChecked(o)) }

func (p Point) MulInt(o int) Point { return p.Mul(FromInt(o, 0)) }
func (p Point) DivInt(o int) Point { return p.Div(FromInt(o, 0)) }

func (p Point) AddChecked(o Point) (Point, error) {
	var d apd.Decimal
	_, err := exact.Add(&d, &p.v, &o.v)
	return wrap(d, err)
}

func (p Point) SubChecked(o Point) (Point, error) {
	var d apd.Decimal
	_, err := exact.Sub(&d, &p.v, &o.v)
	return wrap(d, err)
}

func (p Point) MulChecked(o Point) (Point, error) {
	var d apd.Decimal
	_, err := exact.Mul(&d, &p.v, &o.v)
	return wrap(d, err)
}

// DivChecked rounds the quotient half up to Scale decimal places.
func (p Point) DivChecked(o Point) (Point, error) {
	var q apd.Decimal
	// One digit for the integer part estimate, two guard digits below Scale.
	ctx := truncating(magnitude(&p.v) - magnitude(&o.v) + Scale + 3)
	if _, err := ctx.Quo(&q, &p.v, &o.v); err != nil {
		return Point{}, err
	}
	return rounded(&q)
}

func (p Point) DivIntChecked(o int) (Point, error) {
	return p.DivChecked(FromInt(o, 0))
}

// SqrtChecked rounds the root half up to Scale decimal places.
func (p Point) SqrtChecked() (Point, error) {
	var r apd.Decimal
	ctx := truncating(magnitude(&p.v)/2 + Scale + 3)
	if _, err := ctx.Sqrt(&r, &p.v); err != nil {
		return Point{}, err
	}
	return rounded(&r)
}

func (p Point) ExpChecked() (Point, error) {
	var e apd.Decimal
	if _, err := apd.BaseContext.WithPrecision(2*Scale).Exp(&e, &p.v); err != nil {
		return Point{}, err
	}
	return rounded(&e)
}

func (p Point) Sqrt() Point { return must(p.SqrtChecked()) }
func (p Point) Exp() Point  { return must(p.ExpChecked()) }

func (p Point) Eq(o Point) bool  { return p.v.Cmp(&o.v) == 0 }
func (p Point) Gt(o Point) bool  { return p.v.Cmp(&o.v) > 0 }
func (p Point) Lt(o Point) bool  { return p.v.Cmp(&o.v) < 0 }
func (p Point) Gte(o Point) bool { return p.v.Cmp(&o.v) >= 0 }
func (p Point) Lte(o Point) bool { return p.v.Cmp(&o.v) <= 0 }

func (p Point) IsZero() bool { return p.v.IsZero() }
func (p Point) IsNeg() bool  { return p.v.Sign() < 0 }

// Round rounds half up to scale decimal places, keeping trailing zeros.
func (p Point) Round(scale int) Point {
	d, err := quantize(&p.v, scale)
	if err != nil {
		panic(err)
	}
	return Point{d}
}

func (p Point) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// magnitude is the number of digits left of the decimal point, negative for leading zeros
// right of it.
func magnitude(d *apd.Decimal) int64 {
	return int64(d.Exponent) + d.NumDigits()
}

func truncating(digits int64) *apd.Context {
	ctx := apd.BaseContext.WithPrecision(uint32(max(digits, 1)))
	ctx.Rounding = apd.RoundDown
	return ctx
}

func quantize(x *apd.Decimal, scale int) (apd.Decimal, error) {
	var d apd.Decimal
	ctx := apd.BaseContext.WithPrecision(uint32(max(magnitude(x)+int64(scale)+1, 1)))
	ctx.Rounding = apd.RoundHalfUp
	_, err := ctx.Quantize(&d, x, int32(-scale))
	return d, err
}

// rounded brings an inexact result to Scale decimal places without trailing zeros.
func rounded(x *apd.Decimal) (Point, error) {
	d, err := quantize(x, Scale)
	if err != nil {
		return Point{}, err
	}
	d.Reduce(&d)
	return Point{d}, nil
}

func wrap(d apd.Decimal, err error) (Point, error) {
	if err != nil {
		return Point{}, err
	}
	return Point{d}, nil
}

func must(p Point, err error) Point {
	if err == nil {
		// Return in the happy path
		return p
	}
	panic(err)
}
