package historical

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/mmap"

	"github.com/peter-kozarec/rollstat/pkg/datasource"
)

// File maps a file of fixed-size observation records and decodes them by index in host byte
// order. It is not safe for concurrent use.
type File[T any] struct {
	path   string
	reader *mmap.ReaderAt

	recordSize int
	records    int64
	scratch    []byte
}

// OpenFile maps path and checks that it holds a whole number of T records.
func OpenFile[T any](path string) (*File[T], error) {
	var record T
	size := binary.Size(record)
	if size <= 0 {
		return nil, fmt.Errorf("observation record %T has no fixed size", record)
	}

	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open observation file %q: %w", path, err)
	}
	if reader.Len()%size != 0 {
		_ = reader.Close()
		return nil, fmt.Errorf("observation file %q holds %d bytes, not a multiple of the %d byte record", path, reader.Len(), size)
	}

	return &File[T]{
		path:       path,
		reader:     reader,
		recordSize: size,
		records:    int64(reader.Len() / size),
		scratch:    make([]byte, size),
	}, nil
}

func (f *File[T]) Close() {
	_ = f.reader.Close()
}

func (f *File[T]) Len() int64 {
	return f.records
}

// Record decodes the record at index, or returns datasource.ErrEof past the last one.
func (f *File[T]) Record(index int64) (T, error) {
	var record T
	if index < 0 || index >= f.records {
		return record, datasource.ErrEof
	}

	if _, err := f.reader.ReadAt(f.scratch, index*int64(f.recordSize)); err != nil {
		return record, fmt.Errorf("unable to read observation record %d of %q: %w", index, f.path, err)
	}
	if _, err := binary.Decode(f.scratch, binary.NativeEndian, &record); err != nil {
		return record, fmt.Errorf("unable to decode observation record %d of %q: %w", index, f.path, err)
	}
	return record, nil
}
