package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"feed-monitor/src/interfaces"
	"feed-monitor/src/logger"
	"feed-monitor/src/models"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// -----------------------------------------------------------------------------
// Server exposes the latest rates over REST and pushes each report to
// websocket clients.
// -----------------------------------------------------------------------------

type Server struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine

	reports interfaces.IReportStore
	status  interfaces.IStatusProvider

	// WebSocket clients, owned by the hub loop
	clients     map[*Client]struct{}
	connections atomic.Int64
	broadcast   chan models.MRateReport
	register    chan *Client
	unregister  chan *Client
	refresh     chan *Client
	done        chan struct{}
	stopOnce    sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewServer(cfg *models.MConfig, reports interfaces.IReportStore, status interfaces.IStatusProvider, log *logger.Logger) *Server {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.NewLogger(cfg.LogLevel, "Server")
	}

	s := &Server{
		Config:     cfg,
		Logger:     log,
		engine:     gin.New(),
		reports:    reports,
		status:     status,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan models.MRateReport, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		refresh:    make(chan *Client),
		done:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery())

	// CORS for local dashboards
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	s.engine.GET("/api/rates", s.getRates)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/status", s.getStatus)

	s.engine.GET("/ws", s.handleWebSocket)
}

// SetStatusProvider binds the monitor once it exists
func (s *Server) SetStatusProvider(status interfaces.IStatusProvider) {
	s.status = status
}

// Handler returns the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve runs the hub and the HTTP server on lis until ctx is done
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go s.runHub()
	defer s.stopHub()

	httpSrv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting server on %s", lis.Addr())
		errCh <- httpSrv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		s.Logger.Warning("Server shutdown: %v", err)
	}
	s.Logger.Info("Server stopped")
	return nil
}

// -----------------------------------------------------------------------------
// Report Sink Implementation
// -----------------------------------------------------------------------------

func (s *Server) Name() string { return "websocket" }

// Publish queues the report for broadcast without blocking the reporter
func (s *Server) Publish(ctx context.Context, report models.MRateReport) error {
	select {
	case s.broadcast <- report:
	default:
		s.Logger.Warning("Broadcast queue full, dropping report")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *Server) getRates(c *gin.Context) {
	report, ok := s.reports.Latest()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, report)
}

// -----------------------------------------------------------------------------

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":                    s.Config.Name,
		"feed":                    s.Config.Feed.URL,
		"symbols":                 s.Config.Feed.Symbols,
		"window_seconds":          s.Config.Aggregation.WindowSeconds,
		"report_interval_seconds": s.Config.Aggregation.ReportIntervalSeconds,
	})
}

// -----------------------------------------------------------------------------

func (s *Server) getHealth(c *gin.Context) {
	var latest interface{}
	if report, ok := s.reports.Latest(); ok {
		latest = report.Timestamp
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   s.connections.Load(),
		"latest_update": latest,
	})
}

// -----------------------------------------------------------------------------

func (s *Server) getStatus(c *gin.Context) {
	if s.status == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "monitor not running"})
		return
	}
	c.JSON(http.StatusOK, s.status.Status())
}
