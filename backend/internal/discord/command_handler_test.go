package discord

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendgraph/backend/internal/graph"
	"friendgraph/backend/internal/store"
	apperrors "friendgraph/backend/pkg/errors"
	"friendgraph/backend/pkg/logger"
)

func newTestHandler() *Handler {
	mem := store.NewMemory()
	return NewHandler(graph.NewService(mem), mem, nil, "-", logger.Get())
}

func newTestSession() *discordgo.Session {
	state := discordgo.NewState()
	state.User = &discordgo.User{ID: "bot-id", Username: "friendgraph"}
	return &discordgo.Session{State: state}
}

func TestMentionedUsersSkipsBotAndDuplicates(t *testing.T) {
	h := newTestHandler()
	s := newTestSession()

	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		Mentions: []*discordgo.User{
			{ID: "u1"},
			{ID: "bot-id"},
			{ID: "u2"},
			{ID: "u1"},
		},
	}}

	ids := h.mentionedUsers(s, m)
	assert.Equal(t, []graph.UserID{"u1", "u2"}, ids)
}

func TestDisplayNamePrecedence(t *testing.T) {
	assert.Equal(t, "nick", displayName(&discordgo.Member{
		Nick: "nick",
		User: &discordgo.User{GlobalName: "global", Username: "user"},
	}))
	assert.Equal(t, "global", displayName(&discordgo.Member{
		User: &discordgo.User{GlobalName: "global", Username: "user"},
	}))
	assert.Equal(t, "user", displayName(&discordgo.Member{
		User: &discordgo.User{Username: "user"},
	}))
}

func TestUserMessageMapsTaxonomy(t *testing.T) {
	assert.Contains(t, userMessage(apperrors.NewInvalidEdge("u1")), "yourself")
	assert.Contains(t, userMessage(apperrors.NewNotConfigured("g1")), "setchannel")
	assert.Contains(t, userMessage(apperrors.NewStoreUnavailable("save", assert.AnError)), "unavailable")
	assert.Contains(t, userMessage(apperrors.NewPublishFailed("obj", assert.AnError)), "upload")
	assert.Contains(t, userMessage(assert.AnError), "error occurred")
}

func TestExpirePendingDropsStaleConfirmations(t *testing.T) {
	h := newTestHandler()
	scope := graph.Scope{GuildID: "g1", ChannelID: "c1"}

	h.mu.Lock()
	h.pending[pendingKey("g1", "u1")] = pendingClear{
		scope:   scope,
		expires: time.Now().Add(-time.Second),
	}
	h.pending[pendingKey("g1", "u2")] = pendingClear{
		scope:   scope,
		expires: time.Now().Add(clearConfirmWindow),
	}
	h.mu.Unlock()

	h.expirePending(time.Now())

	h.mu.Lock()
	defer h.mu.Unlock()
	_, stale := h.pending[pendingKey("g1", "u1")]
	_, fresh := h.pending[pendingKey("g1", "u2")]
	require.False(t, stale)
	assert.True(t, fresh)
}

func TestPendingKeyIsPerGuildAndUser(t *testing.T) {
	assert.NotEqual(t, pendingKey("g1", "u1"), pendingKey("g1", "u2"))
	assert.NotEqual(t, pendingKey("g1", "u1"), pendingKey("g2", "u1"))
}
