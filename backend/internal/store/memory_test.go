package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendgraph/backend/internal/graph"
	"friendgraph/backend/internal/store"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	scope := graph.Scope{GuildID: "g1", ChannelID: "c1"}

	edges := []graph.Edge{
		{A: "alice", B: "bob"},
		{A: "bob", B: "carol"},
	}
	require.NoError(t, mem.SaveEdges(ctx, scope, edges))

	loaded, err := mem.LoadEdges(ctx, scope)
	require.NoError(t, err)
	assert.ElementsMatch(t, edges, loaded)
}

func TestMemoryLoadMissingScopeIsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	loaded, err := mem.LoadEdges(ctx, graph.Scope{GuildID: "nope", ChannelID: "nope"})
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestMemorySaveReplacesWholeSet(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	scope := graph.Scope{GuildID: "g1", ChannelID: "c1"}

	require.NoError(t, mem.SaveEdges(ctx, scope, []graph.Edge{{A: "a", B: "b"}, {A: "b", B: "c"}}))
	require.NoError(t, mem.SaveEdges(ctx, scope, []graph.Edge{{A: "x", B: "y"}}))

	loaded, err := mem.LoadEdges(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []graph.Edge{{A: "x", B: "y"}}, loaded)
}

func TestMemoryClear(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	scope := graph.Scope{GuildID: "g1", ChannelID: "c1"}

	require.NoError(t, mem.SaveEdges(ctx, scope, []graph.Edge{{A: "a", B: "b"}}))
	require.NoError(t, mem.ClearEdges(ctx, scope))

	loaded, err := mem.LoadEdges(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestMemoryLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	scope := graph.Scope{GuildID: "g1", ChannelID: "c1"}

	require.NoError(t, mem.SaveEdges(ctx, scope, []graph.Edge{{A: "a", B: "b"}}))

	loaded, err := mem.LoadEdges(ctx, scope)
	require.NoError(t, err)
	loaded[0] = graph.Edge{A: "mutated", B: "mutated2"}

	again, err := mem.LoadEdges(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []graph.Edge{{A: "a", B: "b"}}, again)
}

func TestMemoryTrackedChannel(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	channel, err := mem.TrackedChannel(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, channel)

	require.NoError(t, mem.SetTrackedChannel(ctx, "g1", "c1"))
	require.NoError(t, mem.SetTrackedChannel(ctx, "g1", "c2"))

	channel, err = mem.TrackedChannel(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "c2", channel)
}
