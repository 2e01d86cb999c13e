// Package ringbuf provides a bounded single-producer single-consumer ring
// buffer. Pushes to a full buffer are rejected and counted as overflow, so a
// fast producer can never block or grow memory unboundedly.
package ringbuf

import "sync"

// Ring is a fixed-capacity FIFO queue over elements of type T.
type Ring[T any] struct {
	mu       sync.Mutex
	buf      []T
	head     int // next read position
	tail     int // next write position
	size     int
	overflow uint64
}

// New creates a ring buffer with the given capacity (minimum 1).
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v to the buffer. Returns false (and counts an overflow) if
// the buffer is full.
func (r *Ring[T]) Push(v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == len(r.buf) {
		r.overflow++
		return false
	}
	r.buf[r.tail] = v
	r.tail = (r.tail + 1) % len(r.buf)
	r.size++
	return true
}

// Pop removes and returns the oldest element. The second return is false
// when the buffer is empty.
func (r *Ring[T]) Pop() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.size == 0 {
		return zero, false
	}
	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.size--
	return v, true
}

// Len returns the number of buffered elements.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Overflow returns the number of rejected pushes since creation.
func (r *Ring[T]) Overflow() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overflow
}
