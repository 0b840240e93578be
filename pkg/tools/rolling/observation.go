package rolling

import (
	"fmt"

	"github.com/govalues/decimal"
	"github.com/peter-kozarec/rollstat/pkg/utility/fixed"
)

// Observation converts a loosely typed value, as produced by a SQL scan or a text feed, into a
// finite decimal. Anything that is not a finite number yields ErrInvalidObservation.
func Observation(value any) (fixed.Point, error) {
	var (
		p   fixed.Point
		err error
	)

	switch v := value.(type) {
	case fixed.Point:
		return v, nil
	case decimal.Decimal:
		return fixed.FromDecimal(v), nil
	case float64:
		p, err = fixed.ParseFloat64(v)
	case float32:
		p, err = fixed.ParseFloat64(float64(v))
	case int:
		return fixed.FromInt64(int64(v), 0), nil
	case int8:
		return fixed.FromInt64(int64(v), 0), nil
	case int16:
		return fixed.FromInt64(int64(v), 0), nil
	case int32:
		return fixed.FromInt64(int64(v), 0), nil
	case int64:
		return fixed.FromInt64(v, 0), nil
	case uint:
		p, err = fixed.ParseUint64(uint64(v))
	case uint8:
		return fixed.FromInt64(int64(v), 0), nil
	case uint16:
		return fixed.FromInt64(int64(v), 0), nil
	case uint32:
		return fixed.FromInt64(int64(v), 0), nil
	case uint64:
		p, err = fixed.ParseUint64(v)
	case string:
		p, err = fixed.Parse(v)
	case []byte:
		p, err = fixed.Parse(string(v))
	case fmt.Stringer:
		p, err = fixed.Parse(v.String())
	case nil:
		return fixed.Point{}, fmt.Errorf("%w: missing value", ErrInvalidObservation)
	default:
		return fixed.Point{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidObservation, value)
	}

	if err != nil {
		return fixed.Point{}, fmt.Errorf("%w: %v", ErrInvalidObservation, err)
	}
	return p, nil
}
