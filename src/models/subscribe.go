package models

// -----------------------------------------------------------------------------
// MSubscribeRequest is the one-time handshake sent to the feed
// -----------------------------------------------------------------------------

type MSubscribeRequest struct {
	Subscribe []string `json:"subscribe"`
}
