package graph

import (
	"context"
	"sync"

	"friendgraph/backend/pkg/logger"

	"go.uber.org/zap"
)

// Store is the durable home of each scope's edge set. Implementations must
// make SaveEdges a full atomic replace: concurrent readers of the same scope
// see either the old set or the new one, never a partial write. LoadEdges
// returns an empty set, not an error, when nothing is stored yet.
type Store interface {
	LoadEdges(ctx context.Context, scope Scope) ([]Edge, error)
	SaveEdges(ctx context.Context, scope Scope, edges []Edge) error
	ClearEdges(ctx context.Context, scope Scope) error
}

// Service owns all graph mutations and reads. Every operation runs a
// load-modify-save cycle against the store under a per-scope lock, so the
// in-memory view is rebuilt from durable state each time and a failed save
// leaves nothing divergent behind. Different scopes proceed in parallel.
type Service struct {
	store  Store
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a graph service backed by the given store.
func NewService(store Store) *Service {
	return &Service{
		store:  store,
		logger: logger.Get(),
		locks:  make(map[string]*sync.Mutex),
	}
}

// scopeLock returns the mutex serializing mutations for one scope.
func (s *Service) scopeLock(scope Scope) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scope.Key()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// Connect adds the edge {a,b} to the scope's graph. Adding an edge that is
// already present is a no-op, not an error; the return value reports whether
// the edge was new. Connecting a user to themselves fails with an invalid
// edge error and changes nothing.
func (s *Service) Connect(ctx context.Context, scope Scope, a, b UserID) (bool, error) {
	edge, err := NewEdge(a, b)
	if err != nil {
		return false, err
	}

	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	edges, err := s.store.LoadEdges(ctx, scope)
	if err != nil {
		return false, err
	}

	for _, existing := range edges {
		if existing == edge {
			return false, nil
		}
	}

	if err := s.store.SaveEdges(ctx, scope, append(edges, edge)); err != nil {
		return false, err
	}

	s.logger.Debug("edge added",
		zap.String("scope", scope.Key()),
		zap.String("a", string(edge.A)),
		zap.String("b", string(edge.B)),
	)
	return true, nil
}

// ConnectAll connects every pair among the given users in one load-save
// cycle and returns the edges that were actually new. Duplicate IDs in the
// input are ignored; fewer than two distinct users is a no-op.
func (s *Service) ConnectAll(ctx context.Context, scope Scope, ids []UserID) ([]Edge, error) {
	distinct := make([]UserID, 0, len(ids))
	seen := make(map[UserID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	if len(distinct) < 2 {
		return nil, nil
	}

	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	edges, err := s.store.LoadEdges(ctx, scope)
	if err != nil {
		return nil, err
	}

	present := make(map[Edge]struct{}, len(edges))
	for _, e := range edges {
		present[e] = struct{}{}
	}

	var added []Edge
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			edge, err := NewEdge(distinct[i], distinct[j])
			if err != nil {
				return nil, err
			}
			if _, dup := present[edge]; dup {
				continue
			}
			present[edge] = struct{}{}
			added = append(added, edge)
		}
	}

	if len(added) == 0 {
		return nil, nil
	}

	if err := s.store.SaveEdges(ctx, scope, append(edges, added...)); err != nil {
		return nil, err
	}

	s.logger.Info("edges added",
		zap.String("scope", scope.Key()),
		zap.Int("count", len(added)),
	)
	return added, nil
}

// Disconnect removes the edge {a,b} if present. Removing an absent edge is a
// no-op; the return value reports whether anything was removed.
func (s *Service) Disconnect(ctx context.Context, scope Scope, a, b UserID) (bool, error) {
	edge, err := NewEdge(a, b)
	if err != nil {
		return false, err
	}

	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	edges, err := s.store.LoadEdges(ctx, scope)
	if err != nil {
		return false, err
	}

	remaining := make([]Edge, 0, len(edges))
	removed := false
	for _, existing := range edges {
		if existing == edge {
			removed = true
			continue
		}
		remaining = append(remaining, existing)
	}

	if !removed {
		return false, nil
	}

	if err := s.store.SaveEdges(ctx, scope, remaining); err != nil {
		return false, err
	}

	s.logger.Debug("edge removed",
		zap.String("scope", scope.Key()),
		zap.String("a", string(edge.A)),
		zap.String("b", string(edge.B)),
	)
	return true, nil
}

// Clear removes every edge for the scope.
func (s *Service) Clear(ctx context.Context, scope Scope) error {
	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.ClearEdges(ctx, scope); err != nil {
		return err
	}

	s.logger.Info("graph cleared", zap.String("scope", scope.Key()))
	return nil
}

// Snapshot returns a consistent read-only view of the scope's graph for
// rendering. The snapshot is derived by copy; holding it never blocks, and
// rendering from it never mutates stored state.
func (s *Service) Snapshot(ctx context.Context, scope Scope) (*Snapshot, error) {
	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	edges, err := s.store.LoadEdges(ctx, scope)
	if err != nil {
		return nil, err
	}

	return newSnapshot(edges), nil
}
