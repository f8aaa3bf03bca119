package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rebind-dev/rebind/pkg/protocol"
)

// client is one connected mirror: a WebSocket that receives the handshake
// snapshot and every patch batch after it.
type client struct {
	id     string
	conn   *websocket.Conn
	server *Server
	logger *slog.Logger

	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(s *Server, conn *websocket.Conn) *client {
	id := uuid.NewString()
	return &client{
		id:     id,
		conn:   conn,
		server: s,
		logger: s.logger.With("client_id", id),
		send:   make(chan []byte, s.config.SendQueueSize),
		done:   make(chan struct{}),
	}
}

// enqueue queues a frame for delivery. A client whose queue is full is
// disconnected rather than allowed to stall the broadcast.
func (c *client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		c.logger.Warn("send queue full, dropping client")
		c.server.metrics.wsErrors.WithLabelValues("queue_full").Inc()
		c.close()
	}
}

// readLoop drains inbound messages. Mirrors only receive; anything but a
// control frame is ignored. The loop ends when the connection drops.
func (c *client) readLoop() {
	defer c.close()

	c.conn.SetReadLimit(c.server.config.MaxMessageSize)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
				c.server.metrics.wsErrors.WithLabelValues("read").Inc()
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			c.logger.Error("frame decode error", "error", err)
			continue
		}
		if frame.Type != protocol.FrameControl {
			c.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

// writeLoop delivers queued frames and sends periodic pings.
func (c *client) writeLoop() {
	ticker := time.NewTicker(c.server.config.HeartbeatInterval)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.server.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				c.logger.Error("write error", "error", err)
				c.server.metrics.wsErrors.WithLabelValues("write").Inc()
				return
			}
			c.server.metrics.patchBytes.Add(float64(len(frame)))

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.server.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
		c.server.removeClient(c)
	})
}
