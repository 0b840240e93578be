package circular

// Buffer is a fixed-capacity ring. Once full, every Push overwrites the oldest slot.
type Buffer[T any] struct {
	capacity int

	head int // next slot to write
	size int
	data []T
}

func NewBuffer[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		panic("capacity must > 0")
	}
	return &Buffer[T]{
		capacity: capacity,
		data:     make([]T, capacity),
	}
}

func (b *Buffer[T]) Capacity() int {
	return b.capacity
}

func (b *Buffer[T]) Size() int {
	return b.size
}

func (b *Buffer[T]) Cursor() int {
	return b.head
}

func (b *Buffer[T]) IsEmpty() bool {
	return b.size == 0
}

func (b *Buffer[T]) IsFull() bool {
	return b.size == b.capacity
}

// Push writes value at the cursor and advances it. When the buffer was already full the
// overwritten value is returned with ok set.
func (b *Buffer[T]) Push(value T) (evicted T, ok bool) {
	if b.size == b.capacity {
		evicted, ok = b.data[b.head], true
	}
	b.data[b.head] = value
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
	return evicted, ok
}

// Next returns the value the next Push will overwrite. ok is false until the buffer is full.
func (b *Buffer[T]) Next() (value T, ok bool) {
	if b.size < b.capacity {
		return value, false
	}
	return b.data[b.head], true
}

// Get indexes from the newest element (0) towards the oldest.
func (b *Buffer[T]) Get(idx int) T {
	if idx < 0 || idx >= b.size {
		panic("index out of range")
	}
	return b.data[(b.head-1-idx+b.capacity)%b.capacity]
}

func (b *Buffer[T]) First() T {
	return b.Get(0)
}

func (b *Buffer[T]) Last() T {
	return b.Get(b.size - 1)
}

// Data copies the stored values, oldest first.
func (b *Buffer[T]) Data() []T {
	out := make([]T, b.size)
	for i := range out {
		out[i] = b.Get(b.size - 1 - i)
	}
	return out
}
