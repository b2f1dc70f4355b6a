package network

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"feed-monitor/src/helpers"
	"feed-monitor/src/logger"
	"feed-monitor/src/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialSendsUserAgent(t *testing.T) {
	upgrader := websocket.Upgrader{}
	agent := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent <- r.Header.Get("User-Agent")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err == nil {
			conn.Close()
		}
	}))
	defer srv.Close()

	nm := NewAsyncNetworkManager(models.MFeedConfig{MaxRetries: 1, RequestTimeout: 2, UserAgent: "probe/1.0"},
		logger.NewLoggerTo(io.Discard, "INFO", "test"))

	conn, err := nm.Dial(context.Background(), wsURL(srv))
	require.NoError(t, err)
	conn.Close()
	assert.Equal(t, "probe/1.0", <-agent)
}

func TestDialRetriesUntilUpgrade(t *testing.T) {
	var hits atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err == nil {
			conn.Close()
		}
	}))
	defer srv.Close()

	nm := NewAsyncNetworkManager(models.MFeedConfig{MaxRetries: 3, RequestTimeout: 2}, logger.NewLoggerTo(io.Discard, "INFO", "test"))
	nm.retryDelay = time.Millisecond

	conn, err := nm.Dial(context.Background(), wsURL(srv))
	require.NoError(t, err)
	conn.Close()
	assert.Equal(t, int32(3), hits.Load())
}

func TestDialGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	nm := NewAsyncNetworkManager(models.MFeedConfig{MaxRetries: 2, RequestTimeout: 2}, logger.NewLoggerTo(io.Discard, "INFO", "test"))
	nm.retryDelay = time.Millisecond

	_, err := nm.Dial(context.Background(), wsURL(srv))
	var netErr *helpers.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Contains(t, err.Error(), "status 403")
}

func TestDialCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	nm := NewAsyncNetworkManager(models.MFeedConfig{MaxRetries: 3, RequestTimeout: 1}, logger.NewLoggerTo(io.Discard, "INFO", "test"))
	_, err := nm.Dial(ctx, "ws://127.0.0.1:1/feed")
	assert.ErrorIs(t, err, context.Canceled)
}
