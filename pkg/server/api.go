package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rebind-dev/rebind/pkg/bind"
	"github.com/rebind-dev/rebind/pkg/protocol"
	"github.com/rebind-dev/rebind/pkg/snapshot"
)

type setRequest struct {
	Values map[string]any `json:"values"`
}

type deleteRequest struct {
	Paths []string `json:"paths"`
}

type callRequest struct {
	Path string `json:"path"`
	Args []any  `json:"args"`
}

type reactRequest struct {
	Paths []string `json:"paths"`
}

type listRequest struct {
	Path    string `json:"path"`
	Items   []any  `json:"items"`
	Start   int    `json:"start"`
	Delete  int    `json:"delete"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Swap    bool   `json:"swap"`
	Indices []int  `json:"indices"`
}

type verbResponse struct {
	Patches int `json:"patches"`
	Result  any `json:"result,omitempty"`
}

// runVerb executes one mutation verb with tracing and metrics, broadcasts
// its patches, and returns them.
func (s *Server) runVerb(r *http.Request, verb string, fn func() ([]protocol.Patch, error)) ([]protocol.Patch, error) {
	_, span := s.tracer.Start(r.Context(), "rebind."+verb,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("rebind.verb", verb)),
	)
	defer span.End()

	// Apply and broadcast under the ordering lock so concurrent verbs
	// cannot broadcast in a different order than the document applied
	// them.
	start := time.Now()
	s.order.Lock()
	patches, err := fn()
	if err == nil {
		s.broadcast(patches)
	}
	s.order.Unlock()
	s.metrics.verbDuration.WithLabelValues(verb).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.Int("rebind.patch_count", len(patches)))
	}
	s.metrics.verbsTotal.WithLabelValues(verb, status).Inc()

	if err != nil {
		return nil, err
	}
	return patches, nil
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if !s.decode(w, r, &req) {
		return
	}
	patches, err := s.runVerb(r, "set", func() ([]protocol.Patch, error) {
		return s.doc.Set(req.Values)
	})
	s.respond(w, r, patches, nil, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !s.decode(w, r, &req) {
		return
	}
	patches, err := s.runVerb(r, "delete", func() ([]protocol.Patch, error) {
		return s.doc.Delete(req.Paths...)
	})
	s.respond(w, r, patches, nil, err)
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if !s.decode(w, r, &req) {
		return
	}
	var result any
	patches, err := s.runVerb(r, "call", func() ([]protocol.Patch, error) {
		var callErr error
		var p []protocol.Patch
		result, p, callErr = s.doc.Call(req.Path, req.Args...)
		return p, callErr
	})
	s.respond(w, r, patches, result, err)
}

func (s *Server) handleReact(w http.ResponseWriter, r *http.Request) {
	var req reactRequest
	if !s.decode(w, r, &req) {
		return
	}
	patches, err := s.runVerb(r, "react", func() ([]protocol.Patch, error) {
		return s.doc.React(req.Paths...)
	})
	s.respond(w, r, patches, nil, err)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	verb := chi.URLParam(r, "verb")
	var req listRequest
	if !s.decode(w, r, &req) {
		return
	}

	var fn func() ([]protocol.Patch, error)
	switch verb {
	case "push":
		fn = func() ([]protocol.Patch, error) { return s.doc.ListPush(req.Path, req.Items...) }
	case "pop":
		fn = func() ([]protocol.Patch, error) { return s.doc.ListPop(req.Path) }
	case "splice":
		fn = func() ([]protocol.Patch, error) {
			return s.doc.ListSplice(req.Path, req.Start, req.Delete, req.Items...)
		}
	case "move":
		fn = func() ([]protocol.Patch, error) { return s.doc.ListMove(req.Path, req.From, req.To, req.Swap) }
	case "delete":
		fn = func() ([]protocol.Patch, error) { return s.doc.ListDelete(req.Path, req.Indices...) }
	default:
		s.httpError(w, r, fmt.Errorf("%w: %q", ErrUnknownListVerb, verb))
		return
	}

	patches, err := s.runVerb(r, "list_"+verb, fn)
	s.respond(w, r, patches, nil, err)
}

func (s *Server) handleSnapshotSave(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.httpError(w, r, ErrSnapshotsDisabled)
		return
	}

	snap := &snapshot.Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Graph:     s.doc.Graph(),
		HTML:      s.doc.HTML(),
	}
	if err := s.snapshots.Save(r.Context(), snap); err != nil {
		s.httpError(w, r, err)
		return
	}

	s.logger.Info("snapshot saved", "snapshot_id", snap.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": snap.ID})
}

func (s *Server) handleSnapshotLoad(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.httpError(w, r, ErrSnapshotsDisabled)
		return
	}

	snap, err := s.snapshots.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// decode reads a JSON request body, answering 400 on malformed input.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, patches []protocol.Patch, result any, err error) {
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(verbResponse{Patches: len(patches), Result: result})
}

// httpError maps an error to its status code and logs it.
func (s *Server) httpError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrListNotMounted), errors.Is(err, snapshot.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUnknownListVerb):
		status = http.StatusBadRequest
	case errors.Is(err, bind.ErrReentrantReact):
		status = http.StatusConflict
	case errors.Is(err, ErrSnapshotsDisabled):
		status = http.StatusNotImplemented
	}

	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	http.Error(w, err.Error(), status)
}
