package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"feed-monitor/src/helpers"
	"feed-monitor/src/interfaces"
	"feed-monitor/src/logger"
	"feed-monitor/src/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketSource reads text frames from a subscription-based push feed.
type WebSocketSource struct {
	Config  models.MFeedConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger

	mu          sync.Mutex
	conn        *websocket.Conn
	sessionID   string
	connectedAt time.Time
	running     bool
	closed      atomic.Bool
	framesRead  atomic.Int64
	done        chan struct{}
	closeOnce   sync.Once
}

// -----------------------------------------------------------------------------

func NewWebSocketSource(cfg models.MFeedConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *WebSocketSource {
	if log == nil {
		log = logger.NewLogger("INFO", "WebSocketSource-"+cfg.Name)
	}
	return &WebSocketSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
		done:    make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

func (s *WebSocketSource) Name() string {
	return s.Config.Name
}

// -----------------------------------------------------------------------------

// Open dials the feed and sends the subscription once
func (s *WebSocketSource) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return fmt.Errorf("source %s is already open", s.Name())
	}

	conn, err := s.Network.Dial(ctx, s.Config.URL)
	if err != nil {
		return err
	}

	symbols := s.Config.Symbols
	if symbols == nil {
		symbols = []string{}
	}
	if err := conn.WriteJSON(models.MSubscribeRequest{Subscribe: symbols}); err != nil {
		conn.Close()
		return helpers.NewTransportError("subscribe failed", err)
	}

	s.conn = conn
	s.sessionID = uuid.NewString()
	s.connectedAt = time.Now().UTC()
	s.running = true

	s.Logger.Info("Session %s subscribed to %d symbols on %s", s.sessionID, len(symbols), s.Config.URL)

	go s.watch(ctx)
	if s.Config.PingIntervalSecs > 0 {
		go s.keepalive(time.Duration(s.Config.PingIntervalSecs) * time.Second)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Next returns the next text frame, skipping binary and control frames
func (s *WebSocketSource) Next(ctx context.Context) (string, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return "", helpers.NewTransportError("source not open", nil)
	}

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			s.markStopped()
			switch {
			case ctx.Err() != nil:
				return "", ctx.Err()
			case s.closed.Load(),
				errors.Is(err, io.EOF),
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				return "", io.EOF
			default:
				return "", helpers.NewTransportError("feed read failed", err)
			}
		}

		if mt != websocket.TextMessage {
			continue
		}
		s.framesRead.Add(1)
		return string(data), nil
	}
}

// -----------------------------------------------------------------------------

// Close sends a close frame and releases the connection
func (s *WebSocketSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)

		s.mu.Lock()
		conn := s.conn
		s.running = false
		s.mu.Unlock()

		if conn == nil {
			return
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"),
			time.Now().Add(time.Second))
		err = conn.Close()
		s.Logger.Info("Closed session %s after %d frames", s.sessionID, s.framesRead.Load())
	})
	return err
}

// -----------------------------------------------------------------------------

func (s *WebSocketSource) Status() models.MDataSourceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbols := make([]string, len(s.Config.Symbols))
	copy(symbols, s.Config.Symbols)

	return models.MDataSourceStatus{
		SourceName:    s.Name(),
		Running:       s.running,
		TransportType: "websocket",
		Endpoint:      s.Config.URL,
		SessionID:     s.sessionID,
		Symbols:       symbols,
		ConnectedAt:   s.connectedAt,
		FramesRead:    s.framesRead.Load(),
	}
}

// -----------------------------------------------------------------------------

// watch closes the connection on cancellation so a blocked read returns
func (s *WebSocketSource) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		s.Close()
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------

func (s *WebSocketSource) keepalive(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			conn := s.conn
			s.mu.Unlock()
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(every)); err != nil {
				s.Logger.Debug("Ping failed: %v", err)
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *WebSocketSource) markStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
