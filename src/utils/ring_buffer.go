package utils

// -----------------------------------------------------------------------------
// RingBuffer is a circular FIFO of timestamps.
// Unlike a fixed ring it grows on demand so a burst never drops events that
// are still inside the window.
// -----------------------------------------------------------------------------

type RingBuffer struct {
	data     []float64
	capacity int
	head     int // Oldest element
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with an initial capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 64
	}

	return &RingBuffer{
		data:     make([]float64, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a timestamp at the tail, doubling capacity when full
func (rb *RingBuffer) Append(ts float64) {
	if rb.size == rb.capacity {
		rb.grow(rb.capacity * 2)
	}

	idx := (rb.head + rb.size) % rb.capacity
	rb.data[idx] = ts
	rb.size++
}

// -----------------------------------------------------------------------------

// PopFront removes the oldest timestamp
func (rb *RingBuffer) PopFront() (float64, bool) {
	if rb.size == 0 {
		return 0, false
	}

	ts := rb.data[rb.head]
	rb.head = (rb.head + 1) % rb.capacity
	rb.size--
	if rb.size == 0 {
		rb.head = 0
	}
	return ts, true
}

// -----------------------------------------------------------------------------

// PruneBefore drops every head entry strictly older than cutoff and
// returns how many were removed. Entries equal to cutoff stay.
func (rb *RingBuffer) PruneBefore(cutoff float64) int {
	removed := 0
	for rb.size > 0 && rb.data[rb.head] < cutoff {
		rb.PopFront()
		removed++
	}
	return removed
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// grow moves the contents, oldest first, into a larger backing slice
func (rb *RingBuffer) grow(newCapacity int) {
	newData := make([]float64, newCapacity)
	for i := 0; i < rb.size; i++ {
		newData[i] = rb.data[(rb.head+i)%rb.capacity]
	}

	rb.data = newData
	rb.capacity = newCapacity
	rb.head = 0
}
