package models

import "time"

// MRateReport is what the periodic reporter hands to every sink.
type MRateReport struct {
	Name            string       `json:"name"`
	Timestamp       time.Time    `json:"timestamp"`
	WindowSeconds   float64      `json:"window_seconds"`
	IntervalSeconds float64      `json:"interval_seconds"`
	GlobalRate      int          `json:"global_rate"`
	Entries         []MRateEntry `json:"entries"`
	MarketOpen      bool         `json:"market_open"`
	OpenMarkets     []string     `json:"open_markets"`
}

// NewRateReport builds a report from a snapshot.
func NewRateReport(name string, at time.Time, window, interval time.Duration, snap MSnapshot) MRateReport {
	entries := snap.Entries
	if entries == nil {
		entries = []MRateEntry{}
	}
	return MRateReport{
		Name:            name,
		Timestamp:       at.UTC(),
		WindowSeconds:   window.Seconds(),
		IntervalSeconds: interval.Seconds(),
		GlobalRate:      snap.GlobalRate,
		Entries:         entries,
		OpenMarkets:     []string{},
	}
}
