package store

import (
	"context"
	"sync"

	"friendgraph/backend/internal/graph"
)

// Memory is a map-backed store for tests and local runs. It implements both
// the graph.Store contract and the tracked-channel config record.
type Memory struct {
	mu       sync.RWMutex
	edges    map[string][]graph.Edge
	channels map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		edges:    make(map[string][]graph.Edge),
		channels: make(map[string]string),
	}
}

// LoadEdges returns a copy of the stored edge set, empty when nothing is
// stored for the scope yet.
func (m *Memory) LoadEdges(_ context.Context, scope graph.Scope) ([]graph.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.edges[scope.Key()]
	out := make([]graph.Edge, len(stored))
	copy(out, stored)
	return out, nil
}

// SaveEdges replaces the scope's edge set wholesale.
func (m *Memory) SaveEdges(_ context.Context, scope graph.Scope, edges []graph.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]graph.Edge, len(edges))
	copy(stored, edges)
	m.edges[scope.Key()] = stored
	return nil
}

// ClearEdges drops the scope's record entirely.
func (m *Memory) ClearEdges(_ context.Context, scope graph.Scope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.edges, scope.Key())
	return nil
}

// TrackedChannel returns the tracking channel for a guild, or "" when none
// has been configured.
func (m *Memory) TrackedChannel(_ context.Context, guildID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.channels[guildID], nil
}

// SetTrackedChannel records the tracking channel for a guild.
func (m *Memory) SetTrackedChannel(_ context.Context, guildID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.channels[guildID] = channelID
	return nil
}
