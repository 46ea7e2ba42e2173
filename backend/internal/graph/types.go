package graph

import (
	"sort"

	apperrors "friendgraph/backend/pkg/errors"
)

// UserID is an opaque platform account handle. Discord snowflakes in
// practice, but nothing here assumes a format beyond stable string equality.
type UserID string

// Scope identifies one logical graph: the guild plus its tracking channel.
type Scope struct {
	GuildID   string
	ChannelID string
}

// Key returns a stable map key for the scope.
func (s Scope) Key() string {
	return s.GuildID + "/" + s.ChannelID
}

// Edge is an unordered pair of distinct users, stored normalized so that
// A < B. Two edges are equal iff they connect the same pair, regardless of
// the order the endpoints were given in.
type Edge struct {
	A UserID `bson:"a" json:"a"`
	B UserID `bson:"b" json:"b"`
}

// NewEdge builds a normalized edge. Self-loops are rejected.
func NewEdge(a, b UserID) (Edge, error) {
	if a == b {
		return Edge{}, apperrors.NewInvalidEdge(string(a))
	}
	if b < a {
		a, b = b, a
	}
	return Edge{A: a, B: b}, nil
}

// Snapshot is an immutable point-in-time view of one scope's graph. Nodes is
// the sorted union of all edge endpoints; Edges is the sorted, deduplicated
// edge set. Renderers must treat both slices as read-only.
type Snapshot struct {
	Nodes []UserID
	Edges []Edge
}

// newSnapshot derives a snapshot from an edge set. The input slice is copied,
// deduplicated and sorted; callers keep ownership of their slice.
func newSnapshot(edges []Edge) *Snapshot {
	seen := make(map[Edge]struct{}, len(edges))
	nodes := make(map[UserID]struct{}, len(edges)*2)

	deduped := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		deduped = append(deduped, e)
		nodes[e.A] = struct{}{}
		nodes[e.B] = struct{}{}
	}

	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i].A != deduped[j].A {
			return deduped[i].A < deduped[j].A
		}
		return deduped[i].B < deduped[j].B
	})

	nodeList := make([]UserID, 0, len(nodes))
	for n := range nodes {
		nodeList = append(nodeList, n)
	}
	sort.Slice(nodeList, func(i, j int) bool { return nodeList[i] < nodeList[j] })

	return &Snapshot{Nodes: nodeList, Edges: deduped}
}

// Empty reports whether the snapshot has no edges (and therefore no nodes).
func (s *Snapshot) Empty() bool {
	return len(s.Edges) == 0
}
