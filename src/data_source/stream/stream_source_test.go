package stream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"feed-monitor/src/helpers"
	"feed-monitor/src/logger"
	"feed-monitor/src/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainDialer struct{}

func (plainDialer) Dial(ctx context.Context, url string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	return conn, err
}

// feedServer upgrades, captures the subscription and hands the conn to script
func feedServer(t *testing.T, script func(conn *websocket.Conn)) (*httptest.Server, <-chan models.MSubscribeRequest) {
	t.Helper()
	subs := make(chan models.MSubscribeRequest, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req models.MSubscribeRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		subs <- req
		script(conn)
	}))
	t.Cleanup(srv.Close)
	return srv, subs
}

func newSource(srv *httptest.Server, symbols []string) *WebSocketSource {
	cfg := models.MFeedConfig{
		Name:    "test-feed",
		URL:     "ws" + strings.TrimPrefix(srv.URL, "http"),
		Symbols: symbols,
	}
	return NewWebSocketSource(cfg, plainDialer{}, logger.NewLoggerTo(io.Discard, "INFO", "test"))
}

func TestSourceSubscribesAndReadsTextFrames(t *testing.T) {
	srv, subs := feedServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pricing","message":{"id":"AAPL"}}`))
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02})
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		time.Sleep(50 * time.Millisecond)
	})

	src := newSource(srv, []string{"AAPL", "GOOG"})
	ctx := context.Background()
	require.NoError(t, src.Open(ctx))
	defer src.Close()

	assert.Equal(t, []string{"AAPL", "GOOG"}, (<-subs).Subscribe)

	frame, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"pricing","message":{"id":"AAPL"}}`, frame)

	frame, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"heartbeat"}`, frame)

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)

	status := src.Status()
	assert.Equal(t, "websocket", status.TransportType)
	assert.Equal(t, int64(2), status.FramesRead)
	assert.NotEmpty(t, status.SessionID)
	assert.False(t, status.Running)
}

func TestSourceEmptySubscription(t *testing.T) {
	srv, subs := feedServer(t, func(conn *websocket.Conn) {})
	src := newSource(srv, nil)
	require.NoError(t, src.Open(context.Background()))
	defer src.Close()

	req := <-subs
	assert.NotNil(t, req.Subscribe)
	assert.Empty(t, req.Subscribe)
}

func TestSourceAbnormalDisconnect(t *testing.T) {
	srv, _ := feedServer(t, func(conn *websocket.Conn) {
		conn.UnderlyingConn().Close()
	})

	src := newSource(srv, []string{"AAPL"})
	require.NoError(t, src.Open(context.Background()))
	defer src.Close()

	_, err := src.Next(context.Background())
	var transportErr *helpers.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestSourceCancelUnblocksNext(t *testing.T) {
	release := make(chan struct{})
	srv, _ := feedServer(t, func(conn *websocket.Conn) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	src := newSource(srv, []string{"AAPL"})
	require.NoError(t, src.Open(ctx))

	done := make(chan error, 1)
	go func() {
		_, err := src.Next(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return after cancel")
	}
}

func TestSourceNextBeforeOpen(t *testing.T) {
	src := NewWebSocketSource(models.MFeedConfig{Name: "x"}, plainDialer{}, nil)
	_, err := src.Next(context.Background())
	assert.Error(t, err)
	assert.NoError(t, src.Close())
}
