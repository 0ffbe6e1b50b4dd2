// Package server exposes the coordinator to control surfaces: a small JSON
// API for one-shot reads and commands, a WebSocket feed for live session
// updates, and the usual health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entrhq/maestro/pkg/coordinator"
	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/types"
)

// Hub is the coordinator surface the server depends on.
type Hub interface {
	Sessions() []types.Session
	ForwardCommand(ctx context.Context, cmd types.Command) error
	Shortcut(ctx context.Context, name types.ShortcutName) error
	Subscribe(sub coordinator.Subscriber)
	Unsubscribe(sub coordinator.Subscriber)
}

// Server hosts the control API. It binds to loopback by default; there is
// no authentication layer, the listen address is the boundary.
type Server struct {
	hub  Hub
	log  *logging.Logger
	http *http.Server
}

// New creates a server bound to addr.
func New(addr string, hub Hub, log *logging.Logger) *Server {
	s := &Server{hub: hub, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/api/sessions", s.handleSessions)
	r.Post("/api/command", s.handleCommand)
	r.Post("/api/shortcut/{name}", s.handleShortcut)
	r.Get("/ws", s.handleWebSocket)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until Shutdown. It blocks; run it in a goroutine.
func (s *Server) Start() error {
	s.log.Infof("control API listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSessions(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.hub.Sessions())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd types.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid command payload")
		return
	}
	if cmd.SessionID.IsZero() || cmd.Verb == "" {
		respondError(w, http.StatusBadRequest, "command requires sessionId and verb")
		return
	}

	if err := s.hub.ForwardCommand(r.Context(), cmd); err != nil {
		if errors.Is(err, coordinator.ErrNoSession) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.log.Warnf("command %s on %s failed: %v", cmd.Verb, cmd.SessionID, err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleShortcut(w http.ResponseWriter, r *http.Request) {
	name := types.ShortcutName(chi.URLParam(r, "name"))
	if err := s.hub.Shortcut(r.Context(), name); err != nil {
		if errors.Is(err, coordinator.ErrNoSession) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
