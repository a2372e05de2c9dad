// Package store provides GameState persistence behind the engine's
// Store contract: an in-memory store for tests and single-process
// runs, and a Postgres-backed store for durable deployments.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chiptable/holdem/internal/engine"
	"github.com/chiptable/holdem/internal/game"
)

// Memory is an in-process Store. Load returns a deep copy so the
// engine can discard mutations on an aborted hand; Save replaces the
// whole document.
type Memory struct {
	mu    sync.RWMutex
	games map[string][]byte // serialized documents, gameID -> JSON
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{games: make(map[string][]byte)}
}

// Load implements engine.Store.
func (m *Memory) Load(_ context.Context, gameID string) (*game.State, error) {
	m.mu.RLock()
	doc, ok := m.games[gameID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrGameNotFound, gameID)
	}
	var s game.State
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("store: decode game %s: %w", gameID, err)
	}
	return &s, nil
}

// Save implements engine.Store.
func (m *Memory) Save(_ context.Context, s *game.State) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("store: encode game %s: %w", s.GameID, err)
	}
	m.mu.Lock()
	m.games[s.GameID] = doc
	m.mu.Unlock()
	return nil
}

// ListInProgress implements engine.Store.
func (m *Memory) ListInProgress(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, doc := range m.games {
		var probe struct {
			Status game.GameStatus `json:"game_status"`
		}
		if err := json.Unmarshal(doc, &probe); err != nil {
			return nil, fmt.Errorf("store: decode game %s: %w", id, err)
		}
		if probe.Status == game.GameInProgress {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
