package models

const (
	// KindPricing is the only message kind that feeds aggregation.
	KindPricing = "pricing"

	// UnknownSymbol is recorded when a pricing message carries no id.
	UnknownSymbol = "UNKNOWN"
)

// MInboundMessage is a decoded frame as seen by the ingestion loop.
// Payload holds the decoded JSON value unchanged.
type MInboundMessage struct {
	Kind      string      `json:"kind"`
	Symbol    string      `json:"symbol,omitempty"`
	Payload   interface{} `json:"payload"`
	Raw       string      `json:"-"`
	Timestamp float64     `json:"timestamp"`
}

// IsPricing reports whether the message feeds aggregation.
func (m MInboundMessage) IsPricing() bool {
	return m.Kind == KindPricing
}
