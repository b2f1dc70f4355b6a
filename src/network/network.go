package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"feed-monitor/src/helpers"
	"feed-monitor/src/interfaces"
	"feed-monitor/src/logger"
	"feed-monitor/src/models"

	"github.com/gorilla/websocket"
)

const baseRetryDelay = time.Second

type AsyncNetworkManager struct {
	Config       models.MFeedConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger
	retryDelay   time.Duration
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg models.MFeedConfig, log *logger.Logger) *AsyncNetworkManager {
	if log == nil {
		log = logger.NewLogger("INFO", "NetworkManager")
	}
	return &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(cfg.Proxies, cfg.UserAgent, log.Named("ProxyManager")),
		Logger:       log,
		retryDelay:   baseRetryDelay,
	}
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createDialer() *websocket.Dialer {
	d := &websocket.Dialer{
		HandshakeTimeout: time.Duration(nm.Config.RequestTimeout) * time.Second,
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: nm.Config.InsecureSkipVerify}, // #nosec G402 opt-in
		Proxy:            http.ProxyFromEnvironment,
	}

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			if proxyURL, err := url.Parse(proxyStr); err == nil {
				d.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}
	return d
}

// -----------------------------------------------------------------------------

// Dial opens the feed websocket with retries and proxy rotation.
func (nm *AsyncNetworkManager) Dial(ctx context.Context, urlStr string) (*websocket.Conn, error) {
	if _, err := url.Parse(urlStr); err != nil {
		return nil, helpers.NewNetworkError(fmt.Sprintf("invalid feed url %q", urlStr), err)
	}

	retries := nm.Config.MaxRetries
	if retries < 1 {
		retries = 1
	}

	res, err := helpers.RetryWithBackoff(ctx, nm.Logger, "dial "+urlStr, retries, nm.retryDelay, func(attempt int) (interface{}, error) {
		if attempt > 0 && nm.ProxyManager.HasProxies() {
			nm.ProxyManager.RotateProxy()
		}

		header := http.Header{}
		header.Set("User-Agent", nm.ProxyManager.GetUserAgent())

		conn, resp, err := nm.createDialer().DialContext(ctx, urlStr, header)
		if err != nil {
			if resp != nil {
				return nil, fmt.Errorf("handshake failed (status %d): %w", resp.StatusCode, err)
			}
			return nil, err
		}
		return conn, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, helpers.NewNetworkError("feed unreachable", err)
	}
	conn := res.(*websocket.Conn)

	nm.Logger.Info("Connected to %s", urlStr)
	return conn, nil
}
