package interfaces

import (
	"context"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for opening feed connections with proxy/retry logic.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Dial opens a websocket connection to the given URL.
	// Retries are bounded by the configured retry count and by ctx.
	Dial(ctx context.Context, url string) (*websocket.Conn, error)
}
