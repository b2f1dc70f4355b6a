package analysis

import (
	"sync"

	"feed-monitor/src/analysis/core"
	"feed-monitor/src/models"
	"feed-monitor/src/utils"
)

const initialRecordCapacity = 64

// -----------------------------------------------------------------------------

// WindowAggregator keeps one timestamp record per key plus a global record.
// The global record lives outside the key table, so no feed symbol can
// shadow it. Every access goes through Record, PruneAndCount,
// PruneAndCountGlobal and Snapshot, which are mutually exclusive.
type WindowAggregator struct {
	mu      sync.Mutex
	records map[string]*utils.RingBuffer
	global  *utils.RingBuffer
}

// -----------------------------------------------------------------------------

func NewWindowAggregator() *WindowAggregator {
	return &WindowAggregator{
		records: make(map[string]*utils.RingBuffer),
		global:  utils.NewRingBuffer(initialRecordCapacity),
	}
}

// -----------------------------------------------------------------------------

// Record appends ts to the key record and to the global record.
// Timestamps are expected non-decreasing; nothing is validated.
func (a *WindowAggregator) Record(key string, ts float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, ok := a.records[key]
	if !ok {
		rec = utils.NewRingBuffer(initialRecordCapacity)
		a.records[key] = rec
	}
	rec.Append(ts)
	a.global.Append(ts)
}

// -----------------------------------------------------------------------------

// PruneAndCount drops entries of key older than now-window and returns what is left.
// Unknown keys count 0.
func (a *WindowAggregator) PruneAndCount(key string, now, window float64) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, ok := a.records[key]
	if !ok {
		return 0
	}
	return pruneAndCount(rec, now, window)
}

// -----------------------------------------------------------------------------

// PruneAndCountGlobal is PruneAndCount for the record of all pricing traffic.
func (a *WindowAggregator) PruneAndCountGlobal(now, window float64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return pruneAndCount(a.global, now, window)
}

// -----------------------------------------------------------------------------

// Snapshot prunes every record at (now, window) and ranks the non-zero keys.
// Empty records are kept so the key table only grows.
func (a *WindowAggregator) Snapshot(now, window float64) models.MSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	counts := make(map[string]int, len(a.records))
	for key, rec := range a.records {
		counts[key] = pruneAndCount(rec, now, window)
	}

	return models.MSnapshot{
		GlobalRate: pruneAndCount(a.global, now, window),
		Entries:    core.RankRates(counts),
	}
}

// -----------------------------------------------------------------------------

// Keys returns the number of keys seen so far
func (a *WindowAggregator) Keys() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// -----------------------------------------------------------------------------

func pruneAndCount(rec *utils.RingBuffer, now, window float64) int {
	rec.PruneBefore(now - window)
	return rec.Size()
}
