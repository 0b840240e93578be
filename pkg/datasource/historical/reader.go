package historical

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/peter-kozarec/rollstat/pkg/datasource"
)

const invalidIndex = -1

// BinaryObservation is the on-disk record: a unix nano timestamp followed by the value.
type BinaryObservation struct {
	TimeStamp int64
	Value     float64
}

// Reader walks the records of a File whose timestamps fall in [from, to]. The file must be
// sorted by timestamp.
type Reader struct {
	file *File[BinaryObservation]

	from int64
	to   int64
	idx  int64
}

type ReaderOption func(*Reader)

func WithRange(from, to time.Time) ReaderOption {
	return func(r *Reader) {
		r.from = from.UnixNano()
		r.to = to.UnixNano()
	}
}

func NewReader(file *File[BinaryObservation], options ...ReaderOption) *Reader {
	r := &Reader{
		file:   file,
		from:   math.MinInt64,
		to:     math.MaxInt64,
		idx:    invalidIndex,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Next yields the record value as float64 so non-finite values reach validation untouched.
func (r *Reader) Next(_ context.Context) (any, error) {
	if r.idx == invalidIndex {
		if err := r.lookupStartIndex(); err != nil {
			return nil, err
		}
	}

	entry, err := r.file.Record(r.idx)
	if err != nil {
		return nil, err
	}
	r.idx++

	if entry.TimeStamp < r.from {
		return nil, fmt.Errorf("observation at %d precedes the range start %d", entry.TimeStamp, r.from)
	}
	if entry.TimeStamp > r.to {
		return nil, datasource.ErrEof
	}

	return entry.Value, nil
}

func (r *Reader) lookupStartIndex() error {
	entryCount := r.file.Len()
	if entryCount == 0 {
		return datasource.ErrEof
	}

	low := int64(0)
	high := entryCount - 1

	for low <= high {
		mid := (low + high) / 2

		entry, err := r.file.Record(mid)
		if err != nil {
			return err
		}

		if entry.TimeStamp < r.from {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	if low >= entryCount {
		return datasource.ErrEof
	}

	r.idx = low
	return nil
}
