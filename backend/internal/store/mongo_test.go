package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"friendgraph/backend/internal/graph"
	"friendgraph/backend/internal/store"
	"friendgraph/backend/pkg/config"
)

// These tests require a running MongoDB instance.
// Set MONGODB_URI (and optionally MONGODB_DATABASE) to point at it.
func newTestMongo(t *testing.T) (*store.Mongo, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	require.NoError(t, err)

	database := cfg.MongoDatabase + "_test"
	cleanup := func() {
		cleanCtx, cancelClean := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelClean()
		_ = client.Database(database).Collection("graphs").Drop(cleanCtx)
		_ = client.Database(database).Collection("configs").Drop(cleanCtx)
		_ = client.Disconnect(cleanCtx)
	}

	return store.NewMongo(client, database, 5*time.Second), cleanup
}

func TestMongoRoundTrip(t *testing.T) {
	m, cleanup := newTestMongo(t)
	defer cleanup()

	ctx := context.Background()
	scope := graph.Scope{GuildID: "itest-guild-" + time.Now().Format("20060102150405"), ChannelID: "itest-chan"}

	edges := []graph.Edge{
		{A: "alice", B: "bob"},
		{A: "bob", B: "carol"},
	}
	require.NoError(t, m.SaveEdges(ctx, scope, edges))

	loaded, err := m.LoadEdges(ctx, scope)
	require.NoError(t, err)
	assert.ElementsMatch(t, edges, loaded)

	// Replace wholesale
	require.NoError(t, m.SaveEdges(ctx, scope, []graph.Edge{{A: "x", B: "y"}}))
	loaded, err = m.LoadEdges(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []graph.Edge{{A: "x", B: "y"}}, loaded)

	require.NoError(t, m.ClearEdges(ctx, scope))
	loaded, err = m.LoadEdges(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestMongoLoadMissingScopeIsEmpty(t *testing.T) {
	m, cleanup := newTestMongo(t)
	defer cleanup()

	loaded, err := m.LoadEdges(context.Background(), graph.Scope{GuildID: "never-written", ChannelID: "never"})
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestMongoTrackedChannel(t *testing.T) {
	m, cleanup := newTestMongo(t)
	defer cleanup()

	ctx := context.Background()
	guildID := "itest-guild-" + time.Now().Format("20060102150405")

	channel, err := m.TrackedChannel(ctx, guildID)
	require.NoError(t, err)
	assert.Empty(t, channel)

	require.NoError(t, m.SetTrackedChannel(ctx, guildID, "chan-a"))
	require.NoError(t, m.SetTrackedChannel(ctx, guildID, "chan-b"))

	channel, err = m.TrackedChannel(ctx, guildID)
	require.NoError(t, err)
	assert.Equal(t, "chan-b", channel)
}
