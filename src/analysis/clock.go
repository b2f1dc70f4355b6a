package analysis

import "time"

// Clock yields receipt timestamps in seconds.
// Values only need to be comparable with each other, not with wall time.
type Clock interface {
	Now() float64
}

// -----------------------------------------------------------------------------

// MonotonicClock measures seconds since its creation on the monotonic clock.
type MonotonicClock struct {
	start time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

func (c *MonotonicClock) Now() float64 {
	return time.Since(c.start).Seconds()
}
