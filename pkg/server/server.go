package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rebind-dev/rebind/pkg/protocol"
	"github.com/rebind-dev/rebind/pkg/snapshot"
)

// Server serves one bound document over HTTP and mirrors its patches to
// WebSocket clients.
type Server struct {
	config *Config
	doc    *Document
	logger *slog.Logger

	upgrader websocket.Upgrader
	tracer   trace.Tracer
	metrics  *metrics
	registry *prometheus.Registry

	// order serializes verb application with sequence assignment and
	// frame enqueueing, so mirrors receive batches in the order the
	// document applied them. Handshakes take it too: a snapshot must not
	// fall between a verb and the broadcast of its patches.
	order sync.Mutex

	mu      sync.Mutex
	clients map[string]*client
	seq     uint64

	snapshots snapshot.Store

	httpServer *http.Server
}

// New creates a server over the given document.
func New(doc *Document, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	} else {
		config.fillDefaults()
	}

	registry := prometheus.NewRegistry()

	s := &Server{
		config: config,
		doc:    doc,
		logger: slog.Default().With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		tracer:   otel.Tracer("rebind"),
		metrics:  newMetrics(registry),
		registry: registry,
		clients:  map[string]*client{},
	}
	return s
}

// SetSnapshotStore enables the snapshot endpoints.
func (s *Server) SetSnapshotStore(store snapshot.Store) {
	s.snapshots = store
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Document returns the served document.
func (s *Server) Document() *Document { return s.doc }

// Handler returns the server's HTTP handler for mounting in external
// routers.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWebSocket)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/set", s.handleSet)
		r.Post("/delete", s.handleDelete)
		r.Post("/call", s.handleCall)
		r.Post("/react", s.handleReact)
		r.Post("/list/{verb}", s.handleList)
		r.Post("/snapshot", s.handleSnapshotSave)
		r.Get("/snapshot/{id}", s.handleSnapshotLoad)
	})

	return r
}

// handleIndex serves the current document tree.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(s.doc.HTML()))
}

// handleWebSocket upgrades the connection and registers a mirror client.
// The client receives a handshake frame with the full document, then every
// patch batch from that point on.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(s, conn)

	// Snapshot, register and enqueue the handshake under the ordering
	// lock: no verb can apply and broadcast in between, so the snapshot
	// can neither miss patches nor see them re-delivered.
	s.order.Lock()
	hs := &protocol.Handshake{
		ClientID: c.id,
		Seq:      s.seq,
		HTML:     s.doc.HTML(),
	}
	frame := &protocol.Frame{Type: protocol.FrameHandshake, Payload: protocol.EncodeHandshake(hs)}
	data, err := frame.Encode()
	if err != nil {
		s.order.Unlock()
		s.logger.Error("handshake encode failed", "error", err)
		conn.Close()
		return
	}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	c.enqueue(data)
	s.order.Unlock()

	s.metrics.mirrorClients.Inc()
	go c.readLoop()
	go c.writeLoop()

	s.logger.Info("mirror connected", "client_id", c.id)
}

// broadcast delivers a patch batch to every connected mirror. Callers hold
// s.order, which keeps sequence numbers in document application order.
func (s *Server) broadcast(patches []protocol.Patch) {
	if len(patches) == 0 {
		return
	}

	s.mu.Lock()
	s.seq++
	pf := &protocol.PatchesFrame{Seq: s.seq, Patches: patches}
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	frame := &protocol.Frame{Type: protocol.FramePatches, Payload: protocol.EncodePatches(pf)}
	data, err := frame.Encode()
	if err != nil {
		s.logger.Error("patch frame encode failed", "error", err, "patches", len(patches))
		return
	}

	for _, c := range targets {
		c.enqueue(data)
	}
	s.metrics.patchesSent.Add(float64(len(patches)))
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	_, present := s.clients[c.id]
	delete(s.clients, c.id)
	s.mu.Unlock()
	if present {
		s.metrics.mirrorClients.Dec()
		s.logger.Info("mirror disconnected", "client_id", c.id)
	}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server: mirrors are disconnected and
// the HTTP server is drained.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()
	for _, c := range targets {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.close()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
