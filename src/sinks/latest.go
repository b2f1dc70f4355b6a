package sinks

import (
	"context"
	"sync"

	"feed-monitor/src/models"
)

// LatestSink keeps the most recent report for the HTTP and gRPC surfaces.
type LatestSink struct {
	mu     sync.RWMutex
	latest *models.MRateReport
}

func NewLatestSink() *LatestSink {
	return &LatestSink{}
}

func (l *LatestSink) Name() string { return "latest" }

func (l *LatestSink) Publish(ctx context.Context, report models.MRateReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latest = &report
	return nil
}

// Latest returns the last report, false before the first one
func (l *LatestSink) Latest() (models.MRateReport, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.latest == nil {
		return models.MRateReport{}, false
	}
	return *l.latest, true
}
