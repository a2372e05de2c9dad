// Package gateway exposes the engine at the process boundary: a JSON
// HTTP endpoint for inbound action requests and a websocket fan-out of
// engine events for observers. The engine itself never depends on
// this package.
package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/chiptable/holdem/internal/engine"
	"github.com/chiptable/holdem/internal/game"
)

const writeWait = 5 * time.Second

// Server serves the engine over HTTP and broadcasts events over
// websockets. It implements engine.Events.
type Server struct {
	engine   *engine.Engine
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewServer creates a gateway for the given engine.
func NewServer(eng *engine.Engine, logger *log.Logger) *Server {
	return &Server{
		engine: eng,
		logger: logger.WithPrefix("gateway"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]bool),
	}
}

// Handler returns the gateway's HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("POST /games/{id}/actions", s.handleAction)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Publish implements engine.Events: fire-and-forget fan-out to every
// connected observer. A slow or dead connection is dropped, never
// waited on.
func (s *Server) Publish(event engine.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("encode event", "type", event.Type, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.logger.Info("dropping observer", "error", err)
			_ = conn.Close()
			delete(s.conns, conn)
		}
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	s.mu.Lock()
	s.conns[conn] = true
	total := len(s.conns)
	s.mu.Unlock()
	s.logger.Info("observer connected", "total", total)

	// Observers only listen; the read loop just detects disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()
				_ = conn.Close()
				return
			}
		}
	}()
}

type createGameRequest struct {
	AgentIDs []string `json:"agent_ids"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	state, err := s.engine.CreateGame(r.Context(), req.AgentIDs)
	if err != nil {
		// A bad request is the caller's fault; a store or settlement
		// fault is not.
		if errors.Is(err, game.ErrInvalidGame) {
			writeError(w, http.StatusUnprocessableEntity, "invalid_game", err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "create_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"game_id":     state.GameID,
		"hand_number": state.HandNumber,
		"players":     len(state.Players),
	})
}

type actionRequest struct {
	AgentID string          `json:"agent_id"`
	Action  game.ActionType `json:"action"`
	Amount  int64           `json:"amount,omitempty"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	summary, err := s.engine.HandleAction(r.Context(), gameID, req.AgentID, req.Action, req.Amount)
	if err != nil {
		var verr *game.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, verr)
		case errors.Is(err, engine.ErrGameNotFound):
			writeError(w, http.StatusNotFound, "game_not_found", err.Error())
		case errors.Is(err, engine.ErrInsufficientFunds):
			writeError(w, http.StatusPaymentRequired, "insufficient_funds", err.Error())
		default:
			writeError(w, http.StatusBadGateway, "settlement_failed", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
