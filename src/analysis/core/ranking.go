package core

import (
	"sort"

	"feed-monitor/src/models"
)

// -----------------------------------------------------------------------------

// RankRates turns per-key counts into snapshot entries.
// Zero counts are dropped; order is rate desc, then key asc.
func RankRates(counts map[string]int) []models.MRateEntry {
	entries := make([]models.MRateEntry, 0, len(counts))
	for key, rate := range counts {
		if rate <= 0 {
			continue
		}
		entries = append(entries, models.MRateEntry{Symbol: key, Rate: rate})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rate != entries[j].Rate {
			return entries[i].Rate > entries[j].Rate
		}
		return entries[i].Symbol < entries[j].Symbol
	})
	return entries
}

// -----------------------------------------------------------------------------

// PerMinute scales a count observed over window to a per-minute figure.
func PerMinute(count int, windowSeconds float64) float64 {
	if windowSeconds <= 0 {
		return 0
	}
	return float64(count) * 60 / windowSeconds
}
