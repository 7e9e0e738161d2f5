package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/conquest/internal/game"
	"github.com/mitchelldurbincs/conquest/internal/manager"
	"github.com/mitchelldurbincs/conquest/internal/monitoring"
	"github.com/mitchelldurbincs/conquest/internal/render"
	"github.com/mitchelldurbincs/conquest/internal/store"
)

// Server exposes read-only game views over HTTP and pushes events over websockets.
type Server struct {
	manager  *manager.Manager
	renderer *render.Renderer
	hub      *Hub
	monitor  *monitoring.RuntimeMonitor
	logger   zerolog.Logger
}

// NewServer creates the HTTP front end. renderer and hub may be nil, which
// disables the map and websocket routes.
func NewServer(m *manager.Manager, renderer *render.Renderer, hub *Hub, logger zerolog.Logger) *Server {
	return &Server{
		manager:  m,
		renderer: renderer,
		hub:      hub,
		logger:   logger.With().Str("component", "WebServer").Logger(),
	}
}

// WithMonitor adds runtime metrics to the health report
func (s *Server) WithMonitor(m *monitoring.RuntimeMonitor) *Server {
	s.monitor = m
	return s
}

// GameResponse is the body of GET /games/{id}
type GameResponse struct {
	GameID int64      `json:"game_id"`
	State  *game.View `json:"state"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status  string              `json:"status"`
	Storage store.Stats         `json:"storage"`
	Clients int                 `json:"websocket_clients"`
	Runtime *monitoring.Metrics `json:"runtime,omitempty"`
}

// Handler returns the routed and wrapped handler
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /games/{id}", s.handleGame)
	api.HandleFunc("GET /healthz", s.handleHealth)
	if s.renderer != nil {
		api.HandleFunc("GET /games/{id}/map.png", s.handleMap)
	}

	root := http.NewServeMux()
	root.Handle("/", handlers.CompressHandler(api))
	if s.hub != nil {
		root.HandleFunc("GET /ws", s.hub.ServeWS)
	}

	logged := handlers.CombinedLoggingHandler(accessLog{s.logger}, root)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLog{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(logged)
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	id, gs, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, GameResponse{GameID: int64(id), State: gs.View()})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	_, gs, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.renderer.Render(w, gs); err != nil {
		s.logger.Error().Err(err).Str("game_id", gs.ID).Msg("Failed to render map")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Storage: s.manager.Stats()}
	if s.hub != nil {
		resp.Clients = s.hub.ClientCount()
	}
	if s.monitor != nil {
		metrics := s.monitor.Metrics()
		resp.Runtime = &metrics
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (store.GameID, *game.GameState, bool) {
	id, err := store.ParseGameID(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return 0, nil, false
	}
	gs, err := s.manager.Snapshot(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrGameNotFound):
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("game %s not found", id))
		return 0, nil, false
	case errors.Is(err, context.Canceled):
		return 0, nil, false
	case err != nil:
		s.logger.Error().Err(err).Str("game_id", id.String()).Msg("Failed to load game")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return 0, nil, false
	}
	return id, gs, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// accessLog turns combined-format access lines into debug log entries.
type accessLog struct {
	logger zerolog.Logger
}

func (a accessLog) Write(p []byte) (int, error) {
	n := len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[:n-1]
	}
	a.logger.Debug().Str("access", string(p)).Msg("HTTP request")
	return n, nil
}

type recoveryLog struct {
	logger zerolog.Logger
}

func (l recoveryLog) Println(v ...interface{}) {
	l.logger.Error().Str("panic", fmt.Sprint(v...)).Msg("Recovered from panic in HTTP handler")
}
