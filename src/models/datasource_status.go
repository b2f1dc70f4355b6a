package models

import "time"

// -----------------------------------------------------------------------------

// MDataSourceStatus represents the runtime status and technical metadata of the inbound stream.

type MDataSourceStatus struct {
	SourceName    string    `json:"source_name"`
	Running       bool      `json:"running"`
	TransportType string    `json:"transport_type"` // e.g. "websocket"
	Endpoint      string    `json:"endpoint"`
	SessionID     string    `json:"session_id"`
	Symbols       []string  `json:"symbols"`
	ConnectedAt   time.Time `json:"connected_at"`
	FramesRead    int64     `json:"frames_read"`
}
