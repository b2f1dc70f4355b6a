package server

import (
	"encoding/json"
	"net/http"

	"feed-monitor/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub owns the client set until stopHub
func (s *Server) runHub() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))
			if report, ok := s.reports.Latest(); ok {
				client.send <- client.view(report)
			}

		case client := <-s.unregister:
			s.drop(client)

		case client := <-s.refresh:
			if _, ok := s.clients[client]; !ok {
				continue
			}
			if report, ok := s.reports.Latest(); ok {
				select {
				case client.send <- client.view(report):
				default:
				}
			}

		case report := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- client.view(report):
				default:
					// Slow client, disconnect so the hub never blocks
					s.Logger.Warning("Dropping slow client %s", client.id)
					s.drop(client)
				}
			}

		case <-s.done:
			for client := range s.clients {
				s.drop(client)
			}
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (s *Server) drop(client *Client) {
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
		s.connections.Store(int64(len(s.clients)))
	}
}

// -----------------------------------------------------------------------------

func (s *Server) stopHub() {
	s.stopOnce.Do(func() { close(s.done) })
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  s,
		conn: conn,
		send: make(chan models.MRateReport, 8),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}
	s.Logger.Debug("Client %s connected from %s", client.id, c.ClientIP())

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies a {"subscribe": [...]} filter and replies with the
// filtered latest report. Anything unparsable closes the client.
func (s *Server) HandleClientMessage(client *Client, message []byte) {
	var req models.MSubscribeRequest
	if err := json.Unmarshal(message, &req); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	client.setFilter(req.Subscribe)

	select {
	case s.refresh <- client:
	case <-s.done:
	}
}
