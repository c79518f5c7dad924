package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/hub"
	"github.com/agenthub/agenthub/logging"
	"github.com/agenthub/agenthub/stream"
)

const (
	// DefaultAddr is used when Run receives an empty address.
	DefaultAddr = ":8080"

	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
)

// Options configures the HTTP server.
type Options struct {
	Logger logging.Logger
}

// Server routes HTTP requests to a hub.
type Server struct {
	hub    *hub.Hub
	mux    *http.ServeMux
	logger logging.Logger
}

// New creates a server with all routes registered.
func New(h *hub.Hub, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Server{hub: h, mux: http.NewServeMux(), logger: opts.Logger}
	s.mux.HandleFunc("POST /v1/chat/stream", s.handleStream)
	s.mux.HandleFunc("GET /v1/chat/history/{thread_id}", s.handleHistory)
	s.mux.HandleFunc("POST /v1/chat/cancel/{thread_id}", s.handleCancel)
	s.mux.HandleFunc("GET /v1/agents", s.handleAgents)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return s
}

// Handler returns the HTTP handler with recovery and request logging
// applied.
func (s *Server) Handler() http.Handler {
	return s.recover(s.logRequests(s.mux))
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// chatRequest is the turn submission body.
type chatRequest struct {
	Content  string              `json:"content"`
	ThreadID string              `json:"thread_id,omitempty"`
	AgentID  string              `json:"agent_id,omitempty"`
	Resume   *core.ResumePayload `json:"resume,omitempty"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Content == "" && req.Resume == nil {
		s.writeError(w, http.StatusBadRequest, "content or resume is required")
		return
	}

	threadID, events, errs, err := s.hub.Submit(r.Context(), hub.Input{
		Content:  req.Content,
		ThreadID: req.ThreadID,
		AgentID:  req.AgentID,
		Resume:   req.Resume,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.Header().Set("X-Thread-ID", threadID)

	if err := stream.NewEncoder(w).Pump(events, errs); err != nil {
		// The client went away mid-stream; nothing useful left to write.
		s.logger.Debug("stream aborted", "thread_id", threadID, "error", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("thread_id")
	history, err := s.hub.History(r.Context(), threadID)
	if errors.Is(err, core.ErrCheckpointNotFound) {
		s.writeError(w, http.StatusNotFound, "unknown thread "+threadID)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"thread_id": threadID,
		"messages":  history,
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("thread_id")
	err := s.hub.Cancel(r.Context(), threadID)
	if errors.Is(err, core.ErrCheckpointNotFound) {
		s.writeError(w, http.StatusNotFound, "unknown thread "+threadID)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"agents": s.hub.Agents()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// recover turns handler panics into 500s instead of dropped connections.
func (s *Server) recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panic", "path", r.URL.Path, "panic", rec)
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
