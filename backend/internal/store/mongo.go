package store

import (
	"context"
	"errors"
	"time"

	"friendgraph/backend/internal/graph"
	apperrors "friendgraph/backend/pkg/errors"
	"friendgraph/backend/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	graphsCollection  = "graphs"
	configsCollection = "configs"
)

// graphDoc is the persisted shape of one scope's graph: one document per
// scope, holding the full normalized edge set.
type graphDoc struct {
	GuildID   string       `bson:"guild_id"`
	ChannelID string       `bson:"channel_id"`
	Edges     []graph.Edge `bson:"edges"`
}

// configDoc records a guild's designated tracking channel.
type configDoc struct {
	GuildID   string `bson:"guild_id"`
	ChannelID string `bson:"channel_id"`
}

// Mongo persists graphs and tracking-channel config to MongoDB. Each scope
// maps to a single document, so a full-set replace is atomic with respect to
// concurrent readers of that scope. Every operation is bounded by a timeout;
// transport failures surface as store-unavailable errors.
type Mongo struct {
	graphs  *mongo.Collection
	configs *mongo.Collection
	timeout time.Duration
	logger  *zap.Logger
}

// NewMongo creates a Mongo store on the given client and database.
func NewMongo(client *mongo.Client, database string, timeout time.Duration) *Mongo {
	db := client.Database(database)
	return &Mongo{
		graphs:  db.Collection(graphsCollection),
		configs: db.Collection(configsCollection),
		timeout: timeout,
		logger:  logger.Get(),
	}
}

func (m *Mongo) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

func scopeFilter(scope graph.Scope) bson.M {
	return bson.M{"guild_id": scope.GuildID, "channel_id": scope.ChannelID}
}

// LoadEdges returns the stored edge set for a scope. A scope with no document
// yet is an empty graph, never an error.
func (m *Mongo) LoadEdges(ctx context.Context, scope graph.Scope) ([]graph.Edge, error) {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	var doc graphDoc
	err := m.graphs.FindOne(ctx, scopeFilter(scope)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailable("load", err)
	}
	return doc.Edges, nil
}

// SaveEdges replaces the scope's entire edge set. The upsert replaces one
// document, so readers see either the old set or the new one.
func (m *Mongo) SaveEdges(ctx context.Context, scope graph.Scope, edges []graph.Edge) error {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	doc := graphDoc{
		GuildID:   scope.GuildID,
		ChannelID: scope.ChannelID,
		Edges:     edges,
	}

	_, err := m.graphs.ReplaceOne(ctx, scopeFilter(scope), doc, options.Replace().SetUpsert(true))
	if err != nil {
		return apperrors.NewStoreUnavailable("save", err)
	}

	m.logger.Debug("edge set saved",
		zap.String("scope", scope.Key()),
		zap.Int("edges", len(edges)),
	)
	return nil
}

// ClearEdges deletes the scope's graph document. Clearing an absent graph is
// a no-op.
func (m *Mongo) ClearEdges(ctx context.Context, scope graph.Scope) error {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	if _, err := m.graphs.DeleteOne(ctx, scopeFilter(scope)); err != nil {
		return apperrors.NewStoreUnavailable("clear", err)
	}
	return nil
}

// TrackedChannel returns the guild's designated tracking channel, or "" when
// none has been configured yet.
func (m *Mongo) TrackedChannel(ctx context.Context, guildID string) (string, error) {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	var doc configDoc
	err := m.configs.FindOne(ctx, bson.M{"guild_id": guildID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewStoreUnavailable("load config", err)
	}
	return doc.ChannelID, nil
}

// SetTrackedChannel records the guild's tracking channel, creating the config
// document on first use.
func (m *Mongo) SetTrackedChannel(ctx context.Context, guildID, channelID string) error {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	_, err := m.configs.UpdateOne(ctx,
		bson.M{"guild_id": guildID},
		bson.M{"$set": bson.M{"channel_id": channelID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return apperrors.NewStoreUnavailable("save config", err)
	}

	m.logger.Info("tracking channel set",
		zap.String("guild_id", guildID),
		zap.String("channel_id", channelID),
	)
	return nil
}
