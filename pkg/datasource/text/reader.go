package text

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/peter-kozarec/rollstat/pkg/datasource"
)

// Reader yields one field per CSV record as a string. A file with a single value per line is a
// CSV file with one column.
type Reader struct {
	csv    *csv.Reader
	column int
	header bool
	line   int
}

type ReaderOption func(*Reader)

func WithColumn(column int) ReaderOption {
	return func(r *Reader) {
		r.column = column
	}
}

func WithHeader() ReaderOption {
	return func(r *Reader) {
		r.header = true
	}
}

func WithComma(comma rune) ReaderOption {
	return func(r *Reader) {
		r.csv.Comma = comma
	}
}

func NewReader(in io.Reader, options ...ReaderOption) *Reader {
	c := csv.NewReader(in)
	c.FieldsPerRecord = -1
	c.TrimLeadingSpace = true
	c.Comment = '#'
	c.ReuseRecord = true

	r := &Reader{csv: c}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *Reader) Next(_ context.Context) (any, error) {
	if r.header {
		r.header = false
		if _, err := r.read(); err != nil {
			return nil, err
		}
	}

	record, err := r.read()
	if err != nil {
		return nil, err
	}
	if r.column < 0 || r.column >= len(record) {
		return nil, fmt.Errorf("line %d: column %d out of range, record has %d fields", r.line, r.column, len(record))
	}
	return record[r.column], nil
}

func (r *Reader) read() ([]string, error) {
	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return nil, datasource.ErrEof
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read record: %w", err)
	}
	r.line, _ = r.csv.FieldPos(0)
	return record, nil
}
