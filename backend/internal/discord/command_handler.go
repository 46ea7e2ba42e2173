package discord

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"friendgraph/backend/internal/graph"
	"friendgraph/backend/internal/publish"
	"friendgraph/backend/internal/render"
	apperrors "friendgraph/backend/pkg/errors"
)

// clearConfirmWindow is how long a -cleargraph confirmation stays valid.
const clearConfirmWindow = 30 * time.Second

// ChannelConfig is the tracking-channel config record: which channel in a
// guild the graph commands are scoped to.
type ChannelConfig interface {
	TrackedChannel(ctx context.Context, guildID string) (string, error)
	SetTrackedChannel(ctx context.Context, guildID, channelID string) error
}

// Handler dispatches prefix commands from Discord messages to the graph
// service and renderers.
type Handler struct {
	svc       *graph.Service
	channels  ChannelConfig
	publisher publish.Publisher
	prefix    string
	logger    *zap.Logger

	mu      sync.Mutex
	pending map[string]pendingClear
}

// pendingClear tracks a -cleargraph awaiting its "yes" confirmation.
type pendingClear struct {
	scope   graph.Scope
	session *discordgo.Session
	expires time.Time
}

// NewHandler creates a command handler. publisher may be nil when no object
// storage is configured; -link and the post-mutation links degrade gracefully.
func NewHandler(svc *graph.Service, channels ChannelConfig, publisher publish.Publisher, prefix string, logger *zap.Logger) *Handler {
	return &Handler{
		svc:       svc,
		channels:  channels,
		publisher: publisher,
		prefix:    prefix,
		logger:    logger,
		pending:   make(map[string]pendingClear),
	}
}

// HandleMessage processes a Discord message: either a prefix command or a
// reply to a pending clear confirmation.
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, h.prefix) {
		h.resolvePendingClear(s, m, content)
		return
	}

	fields := strings.Fields(strings.TrimPrefix(content, h.prefix))
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])

	ctx := context.Background()

	h.logger.Debug("command received",
		zap.String("command", command),
		zap.String("user_id", m.Author.ID),
		zap.String("guild_id", m.GuildID),
	)

	switch command {
	case "hello":
		h.reply(s, m.ChannelID, "Hello!")
	case "setchannel":
		h.handleSetChannel(ctx, s, m)
	case "connect":
		h.handleConnect(ctx, s, m)
	case "delete":
		h.handleDelete(ctx, s, m)
	case "cleargraph":
		h.handleClearGraph(ctx, s, m)
	case "graph":
		h.handleGraph(ctx, s, m)
	case "link":
		h.handleLink(ctx, s, m)
	}
}

// Run expires abandoned clear confirmations until ctx is done. The original
// behavior: a confirmation that never arrives times out with a notice.
func (h *Handler) Run(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			h.expirePending(now)
		}
	}
}

func (h *Handler) expirePending(now time.Time) {
	h.mu.Lock()
	var expired []pendingClear
	for key, p := range h.pending {
		if now.After(p.expires) {
			expired = append(expired, p)
			delete(h.pending, key)
		}
	}
	h.mu.Unlock()

	for _, p := range expired {
		if p.session == nil {
			continue
		}
		h.reply(p.session, p.scope.ChannelID, "Confirmation timed out. Graph data was not cleared.")
	}
}

// handleSetChannel records the invoking channel as the tracking channel.
// Admin only.
func (h *Handler) handleSetChannel(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" {
		h.reply(s, m.ChannelID, "This command must be run within a server.")
		return
	}
	if !h.requireAdmin(s, m) {
		return
	}

	if err := h.channels.SetTrackedChannel(ctx, m.GuildID, m.ChannelID); err != nil {
		h.replyError(s, m.ChannelID, err)
		return
	}

	h.reply(s, m.ChannelID, "This channel (<#"+m.ChannelID+">) has been set as the designated channel for tracking pings and graph data.")
}

// handleConnect connects every pair of mentioned users, then returns an
// updated interactive link.
func (h *Handler) handleConnect(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	scope, ok := h.trackedScope(ctx, s, m)
	if !ok {
		return
	}

	ids := h.mentionedUsers(s, m)
	if len(ids) < 2 {
		h.reply(s, m.ChannelID, "Error: You must mention at least two users to create connections.")
		return
	}

	added, err := h.svc.ConnectAll(ctx, scope, ids)
	if err != nil {
		h.replyError(s, m.ChannelID, err)
		return
	}

	if len(added) == 0 {
		h.reply(s, m.ChannelID, "These users are already connected.")
	} else {
		h.reply(s, m.ChannelID, "New connections added between the mentioned users.")
	}

	h.sendInteractiveLink(ctx, s, m, scope, "Here is your interactive graph: ")
}

// handleDelete removes the edge between exactly two mentioned users.
func (h *Handler) handleDelete(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	scope, ok := h.trackedScope(ctx, s, m)
	if !ok {
		return
	}

	ids := h.mentionedUsers(s, m)
	if len(ids) != 2 {
		h.reply(s, m.ChannelID, "Error: You must mention exactly two users to delete a connection.")
		return
	}

	removed, err := h.svc.Disconnect(ctx, scope, ids[0], ids[1])
	if err != nil {
		h.replyError(s, m.ChannelID, err)
		return
	}

	if removed {
		h.reply(s, m.ChannelID, "Connection between <@"+string(ids[0])+"> and <@"+string(ids[1])+"> has been deleted.")
	} else {
		h.reply(s, m.ChannelID, "No connection between the mentioned users was found.")
	}

	h.sendInteractiveLink(ctx, s, m, scope, "Here is your updated interactive graph: ")
}

// handleClearGraph asks for confirmation before clearing. Admin only.
func (h *Handler) handleClearGraph(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	scope, ok := h.trackedScope(ctx, s, m)
	if !ok {
		return
	}
	if !h.requireAdmin(s, m) {
		return
	}

	h.mu.Lock()
	h.pending[pendingKey(m.GuildID, m.Author.ID)] = pendingClear{
		scope:   scope,
		session: s,
		expires: time.Now().Add(clearConfirmWindow),
	}
	h.mu.Unlock()

	h.reply(s, m.ChannelID, "Are you sure you want to clear the graph data? Type `yes` to confirm. (This will timeout in 30 seconds)")
}

// resolvePendingClear consumes a plain message from a user with a pending
// -cleargraph: "yes" clears, anything else cancels.
func (h *Handler) resolvePendingClear(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	key := pendingKey(m.GuildID, m.Author.ID)

	h.mu.Lock()
	p, ok := h.pending[key]
	if !ok || m.ChannelID != p.scope.ChannelID {
		h.mu.Unlock()
		return
	}
	delete(h.pending, key)
	expired := time.Now().After(p.expires)
	h.mu.Unlock()

	if expired {
		h.reply(s, m.ChannelID, "Confirmation timed out. Graph data was not cleared.")
		return
	}

	if !strings.EqualFold(content, "yes") {
		h.reply(s, m.ChannelID, "Graph data clearing cancelled.")
		return
	}

	if err := h.svc.Clear(context.Background(), p.scope); err != nil {
		h.replyError(s, m.ChannelID, err)
		return
	}
	h.reply(s, m.ChannelID, "Graph data cleared.")
}

// handleGraph renders the static image and attaches it to the reply.
func (h *Handler) handleGraph(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	scope, ok := h.trackedScope(ctx, s, m)
	if !ok {
		return
	}

	snap, err := h.svc.Snapshot(ctx, scope)
	if err != nil {
		h.replyError(s, m.ChannelID, err)
		return
	}

	png, err := render.StaticPNG(ctx, snap, h.guildLabels(s, m.GuildID))
	if err != nil {
		h.logger.Error("static render failed", zap.Error(err), zap.String("scope", scope.Key()))
		h.reply(s, m.ChannelID, "Failed to render the graph image.")
		return
	}

	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Files: []*discordgo.File{{
			Name:   "graph.png",
			Reader: bytes.NewReader(png),
		}},
	})
	if err != nil {
		h.logger.Error("failed to send graph image",
			zap.Error(err),
			zap.String("channel_id", m.ChannelID),
		)
	}
}

// handleLink renders the interactive document, publishes it, and returns the
// URL.
func (h *Handler) handleLink(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	scope, ok := h.trackedScope(ctx, s, m)
	if !ok {
		return
	}
	h.sendInteractiveLink(ctx, s, m, scope, "Here is your interactive graph: ")
}

// sendInteractiveLink runs the interactive pipeline: snapshot, render,
// publish, reply with the URL. Publishing failure leaves graph state as-is.
func (h *Handler) sendInteractiveLink(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, scope graph.Scope, preamble string) {
	if h.publisher == nil {
		h.reply(s, m.ChannelID, "Interactive graph hosting is not configured.")
		return
	}

	snap, err := h.svc.Snapshot(ctx, scope)
	if err != nil {
		h.replyError(s, m.ChannelID, err)
		return
	}

	html, err := render.InteractiveHTML(snap, h.guildLabels(s, m.GuildID))
	if err != nil {
		h.logger.Error("interactive render failed", zap.Error(err), zap.String("scope", scope.Key()))
		h.reply(s, m.ChannelID, "Failed to render the interactive graph.")
		return
	}

	url, err := h.publisher.Publish(ctx, publish.ObjectName(scope.GuildID), html)
	if err != nil {
		h.logger.Error("publish failed", zap.Error(err), zap.String("scope", scope.Key()))
		h.reply(s, m.ChannelID, "Failed to upload the graph.")
		return
	}

	h.reply(s, m.ChannelID, preamble+url)
}

// trackedScope validates the command's scope: run in a guild, a tracking
// channel configured, and the command issued in that channel. On failure a
// user-facing message is sent and ok is false.
func (h *Handler) trackedScope(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) (graph.Scope, bool) {
	if m.GuildID == "" {
		h.reply(s, m.ChannelID, "This command must be run within a server.")
		return graph.Scope{}, false
	}

	channelID, err := h.channels.TrackedChannel(ctx, m.GuildID)
	if err != nil {
		h.replyError(s, m.ChannelID, err)
		return graph.Scope{}, false
	}
	if channelID == "" {
		h.replyError(s, m.ChannelID, apperrors.NewNotConfigured(m.GuildID))
		return graph.Scope{}, false
	}
	if m.ChannelID != channelID {
		h.reply(s, m.ChannelID, "This command can only be used in the designated tracking channel.")
		return graph.Scope{}, false
	}

	return graph.Scope{GuildID: m.GuildID, ChannelID: channelID}, true
}

// requireAdmin checks the author's administrator permission and reports the
// denial to the channel when absent.
func (h *Handler) requireAdmin(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		h.logger.Warn("permission lookup failed",
			zap.Error(err),
			zap.String("user_id", m.Author.ID),
		)
		h.reply(s, m.ChannelID, "An error occurred while processing the command.")
		return false
	}
	if perms&discordgo.PermissionAdministrator == 0 {
		h.reply(s, m.ChannelID, "You do not have permission to use this command. (Administrator permission required)")
		return false
	}
	return true
}

// mentionedUsers extracts the mentioned user IDs, skipping the bot itself and
// duplicates, in mention order.
func (h *Handler) mentionedUsers(s *discordgo.Session, m *discordgo.MessageCreate) []graph.UserID {
	seen := make(map[string]struct{}, len(m.Mentions))
	ids := make([]graph.UserID, 0, len(m.Mentions))
	for _, mention := range m.Mentions {
		if mention.ID == s.State.User.ID {
			continue
		}
		if _, dup := seen[mention.ID]; dup {
			continue
		}
		seen[mention.ID] = struct{}{}
		ids = append(ids, graph.UserID(mention.ID))
	}
	return ids
}

// guildLabels resolves node labels to member display names. Users no longer
// resolvable in the guild are dropped from renders, matching how departed
// members disappear from the picture.
func (h *Handler) guildLabels(s *discordgo.Session, guildID string) render.LabelFunc {
	return func(id graph.UserID) (string, bool) {
		member, err := s.State.Member(guildID, string(id))
		if err != nil || member == nil {
			member, err = s.GuildMember(guildID, string(id))
			if err != nil || member == nil {
				return "", false
			}
		}
		return displayName(member), true
	}
}

// displayName picks the most specific name a member carries.
func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		if member.User.GlobalName != "" {
			return member.User.GlobalName
		}
		return member.User.Username
	}
	return ""
}

func (h *Handler) reply(s *discordgo.Session, channelID, message string) {
	if _, err := s.ChannelMessageSend(channelID, message); err != nil {
		h.logger.Error("failed to send message",
			zap.Error(err),
			zap.String("channel_id", channelID),
		)
	}
}

// replyError reports a failure to the invoking channel with a human-readable
// cause. Nothing here is fatal; every failure is scoped to one command.
func (h *Handler) replyError(s *discordgo.Session, channelID string, err error) {
	h.logger.Error("command failed", zap.Error(err), zap.String("channel_id", channelID))
	h.reply(s, channelID, userMessage(err))
}

// userMessage maps the error taxonomy to the text users see.
func userMessage(err error) string {
	switch {
	case apperrors.IsInvalidEdge(err):
		return "Error: You cannot connect a user to themselves."
	case apperrors.IsNotConfigured(err):
		return "The tracking channel has not been set up yet. Please run `-setchannel` in the channel you wish to use."
	case apperrors.IsStoreUnavailable(err):
		return "The graph store is currently unavailable. Please try again shortly."
	case apperrors.IsErrorType(err, apperrors.ErrorTypePublish):
		return "Failed to upload the graph."
	default:
		return "An error occurred while processing the command."
	}
}

func pendingKey(guildID, userID string) string {
	return guildID + "/" + userID
}
