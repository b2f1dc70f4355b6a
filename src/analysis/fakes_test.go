package analysis

import (
	"context"
	"io"
	"sync"

	"feed-monitor/src/models"
)

// fakeSource replays frames then returns end (io.EOF when nil).
// With block set it waits for ctx instead of ending.
type fakeSource struct {
	frames []string
	end    error
	block  bool
	pos    int
}

func (s *fakeSource) Name() string                  { return "fake" }
func (s *fakeSource) Open(ctx context.Context) error { return nil }
func (s *fakeSource) Close() error                  { return nil }
func (s *fakeSource) Status() models.MDataSourceStatus {
	return models.MDataSourceStatus{SourceName: "fake"}
}

func (s *fakeSource) Next(ctx context.Context) (string, error) {
	if s.pos < len(s.frames) {
		s.pos++
		return s.frames[s.pos-1], nil
	}
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if s.end != nil {
		return "", s.end
	}
	return "", io.EOF
}

// stepClock returns successive values, repeating the last one
type stepClock struct {
	mu     sync.Mutex
	values []float64
	pos    int
}

func (c *stepClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.values[c.pos]
	if c.pos < len(c.values)-1 {
		c.pos++
	}
	return v
}

// fixedClock always returns the same value
type fixedClock float64

func (c fixedClock) Now() float64 { return float64(c) }

// recordingSink keeps every report it receives
type recordingSink struct {
	mu      sync.Mutex
	reports []models.MRateReport
	err     error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Publish(ctx context.Context, report models.MRateReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}
