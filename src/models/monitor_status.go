package models

// MMonitorStatus combines the feed connection state with ingestion counters.
type MMonitorStatus struct {
	Source          MDataSourceStatus `json:"source"`
	FramesProcessed int64             `json:"frames_processed"`
	PricingMessages int64             `json:"pricing_messages"`
	OtherMessages   int64             `json:"other_messages"`
	KnownSymbols    int               `json:"known_symbols"`
	WindowSeconds   float64           `json:"window_seconds"`
}
