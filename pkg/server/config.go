package server

import (
	"net/http"
	"time"
)

// Config configures the HTTP/WebSocket server.
type Config struct {
	// Address is the listen address (default ":8080").
	Address string

	// ReadBufferSize is the WebSocket read buffer size.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	WriteBufferSize int

	// CheckOrigin validates WebSocket upgrade origins.
	// Default allows all origins.
	CheckOrigin func(r *http.Request) bool

	// ReadHeaderTimeout is the HTTP read header timeout.
	ReadHeaderTimeout time.Duration

	// WriteTimeout is the WebSocket write deadline.
	WriteTimeout time.Duration

	// HeartbeatInterval is the interval between WebSocket pings.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum inbound WebSocket message size.
	MaxMessageSize int64

	// SendQueueSize is the per-client outbound frame queue. A client
	// that falls this far behind is disconnected.
	SendQueueSize int

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       func(r *http.Request) bool { return true },
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024,
		SendQueueSize:     64,
		ShutdownTimeout:   10 * time.Second,
	}
}

// fillDefaults fills unset fields from DefaultConfig.
func (c *Config) fillDefaults() {
	defaults := DefaultConfig()
	if c.Address == "" {
		c.Address = defaults.Address
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = defaults.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = defaults.WriteBufferSize
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = defaults.CheckOrigin
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaults.WriteTimeout
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = defaults.MaxMessageSize
	}
	if c.SendQueueSize == 0 {
		c.SendQueueSize = defaults.SendQueueSize
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
}
