package models

// MRateEntry is the rate of one key inside the trailing window.
type MRateEntry struct {
	Symbol string `json:"symbol"`
	Rate   int    `json:"rate"`
}

// MSnapshot is a point-in-time view of the aggregator.
// Entries only hold keys with a positive rate, sorted by rate desc then symbol asc.
type MSnapshot struct {
	GlobalRate int          `json:"global_rate"`
	Entries    []MRateEntry `json:"entries"`
}
