package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/chrisf-bit/agency-simulator-sub000/internal/game"
)

// Memory is the in-process store. Games go through a JSON round-trip on
// every read and write so code paths cannot accidentally depend on shared
// pointers or map iteration order, exactly as they cannot with a database.
type Memory struct {
	mu    sync.RWMutex
	games map[string][]byte
	codes map[string]string // join code -> game id
}

func NewMemory() *Memory {
	return &Memory{
		games: map[string][]byte{},
		codes: map[string]string{},
	}
}

func (m *Memory) CreateGame(_ context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := json.Marshal(g)
	if err != nil {
		return err
	}
	m.games[g.ID] = doc
	m.codes[g.JoinCode] = g.ID
	return nil
}

func (m *Memory) GetGame(_ context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.decode(id)
}

func (m *Memory) GetGameByJoinCode(_ context.Context, code string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.codes[code]
	if !ok {
		return nil, game.ErrBadJoinCode
	}
	return m.decode(id)
}

func (m *Memory) UpdateGame(_ context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.games[g.ID]
	if !ok {
		return game.ErrGameNotFound
	}
	var current game.Game
	if err := json.Unmarshal(doc, &current); err != nil {
		return err
	}
	if current.Version != g.Version {
		return game.ErrConflict
	}
	g.Version++
	out, err := json.Marshal(g)
	if err != nil {
		g.Version--
		return err
	}
	m.games[g.ID] = out
	return nil
}

func (m *Memory) ListOverdue(_ context.Context, now time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for id := range m.games {
		g, err := m.decode(id)
		if err != nil {
			return nil, err
		}
		if g.Status == game.StatusRunning && !g.SubmissionDeadline.IsZero() && g.SubmissionDeadline.Before(now) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Close() {}

func (m *Memory) decode(id string) (*game.Game, error) {
	doc, ok := m.games[id]
	if !ok {
		return nil, game.ErrGameNotFound
	}
	var g game.Game
	if err := json.Unmarshal(doc, &g); err != nil {
		return nil, err
	}
	return &g, nil
}
