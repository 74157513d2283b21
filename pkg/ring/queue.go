// Package ring provides a growable FIFO ring buffer with constant-time
// membership checks, used as the idle queue of each tagpool pool.
package ring

// Queue is a first-in first-out ring buffer of comparable items.
// It grows by doubling when full and never shrinks. A Queue is not safe for
// concurrent use; callers provide their own synchronization.
type Queue[T comparable] struct {
	buffer []T
	mask   int
	head   int
	size   int

	// members counts occurrences so Contains stays O(1)
	members map[T]int
}

// MaxInitialCapacity bounds the capacity accepted by New. Larger requests
// are clamped; the queue can still grow past it by doubling.
const MaxInitialCapacity = 1 << 20

// New creates a queue with room for at least capacity items before growing.
// Capacity is rounded up to the next power of 2 for efficient masking.
func New[T comparable](capacity int) *Queue[T] {
	if capacity > MaxInitialCapacity {
		capacity = MaxInitialCapacity
	}
	c := 1
	for c < capacity {
		c <<= 1
	}
	return &Queue[T]{
		buffer:  make([]T, c),
		mask:    c - 1,
		members: make(map[T]int, c),
	}
}

// Push appends item to the tail of the queue.
func (q *Queue[T]) Push(item T) {
	if q.size == len(q.buffer) {
		q.grow()
	}
	q.buffer[(q.head+q.size)&q.mask] = item
	q.size++
	q.members[item]++
}

// Pop removes and returns the head of the queue.
// It returns the zero value and false when the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}

	item := q.buffer[q.head]
	q.buffer[q.head] = zero // drop the reference
	q.head = (q.head + 1) & q.mask
	q.size--

	if n := q.members[item]; n <= 1 {
		delete(q.members, item)
	} else {
		q.members[item] = n - 1
	}
	return item, true
}

// Contains reports whether item is currently queued.
func (q *Queue[T]) Contains(item T) bool {
	return q.members[item] > 0
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return q.size
}

// IsEmpty returns true if the queue holds no items.
func (q *Queue[T]) IsEmpty() bool {
	return q.size == 0
}

// Cap returns the current buffer capacity.
func (q *Queue[T]) Cap() int {
	return len(q.buffer)
}

// Items returns a copy of the queued items in head-to-tail order.
func (q *Queue[T]) Items() []T {
	out := make([]T, 0, q.size)
	for i := 0; i < q.size; i++ {
		out = append(out, q.buffer[(q.head+i)&q.mask])
	}
	return out
}

// grow doubles the buffer and unwraps the items so head starts at index 0.
func (q *Queue[T]) grow() {
	next := make([]T, len(q.buffer)<<1)
	for i := 0; i < q.size; i++ {
		next[i] = q.buffer[(q.head+i)&q.mask]
	}
	q.buffer = next
	q.mask = len(next) - 1
	q.head = 0
}
