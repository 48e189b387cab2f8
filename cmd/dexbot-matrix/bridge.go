// ABOUTME: Matrix bridge core for the dexbot support bot
// ABOUTME: Feeds Matrix messages into the router and delivers replies

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/mundonet/dexbot/internal/menu"
	"github.com/mundonet/dexbot/internal/phone"
	"github.com/mundonet/dexbot/internal/router"
)

// typingTimeout is the duration the typing indicator shows (30 seconds).
const typingTimeout = 30 * time.Second

// networkTimeout is the timeout for Matrix API calls.
const networkTimeout = 10 * time.Second

// Bridge connects Matrix rooms to the bot engine. It implements
// router.Channel for outbound replies.
type Bridge struct {
	config     *Config
	matrix     *mautrix.Client
	router     *router.Router
	normalizer *phone.Normalizer
	logger     *slog.Logger

	// Caches room member counts so group detection is one lookup per room.
	roomIsGroup sync.Map

	// Caches sender display names.
	displayNames sync.Map

	// Maps conversation ids back to the room replies should go to.
	convRooms sync.Map

	ctx    context.Context
	cancel context.CancelFunc
}

// NewBridge creates a new Matrix bridge. The router is attached later, once
// the engine is built.
func NewBridge(cfg *Config, logger *slog.Logger) (*Bridge, error) {
	client, err := mautrix.NewClient(cfg.Matrix.Homeserver, id.UserID(cfg.Matrix.UserID), cfg.Matrix.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}

	return &Bridge{
		config:     cfg,
		matrix:     client,
		normalizer: phone.NewNormalizer(logger),
		logger:     logger.With("component", "bridge"),
	}, nil
}

// SetRouter attaches the message router. Must be called before Run.
func (b *Bridge) SetRouter(r *router.Router) {
	b.router = r
}

// Run starts the bridge and blocks until context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	if b.router == nil {
		return fmt.Errorf("bridge has no router attached")
	}

	b.logger.Info("starting matrix bridge",
		"homeserver", b.config.Matrix.Homeserver,
		"user_id", b.config.Matrix.UserID,
	)

	b.ctx, b.cancel = context.WithCancel(ctx)
	defer b.cancel()

	syncer, ok := b.matrix.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return fmt.Errorf("unexpected syncer type: %T", b.matrix.Syncer)
	}
	syncer.OnEventType(event.EventMessage, b.handleMessageEvent)

	b.logger.Info("connecting to matrix homeserver")

	syncErr := make(chan error, 1)
	go func() {
		syncErr <- b.matrix.SyncWithContext(b.ctx)
	}()

	b.logger.Info("matrix bridge running")

	select {
	case <-ctx.Done():
		b.logger.Info("shutting down matrix bridge")
		b.cancel()
		return nil
	case err := <-syncErr:
		return fmt.Errorf("matrix sync failed: %w", err)
	}
}

// handleMessageEvent processes incoming Matrix messages.
func (b *Bridge) handleMessageEvent(ctx context.Context, evt *event.Event) {
	// Ignore our own messages
	if evt.Sender == id.UserID(b.config.Matrix.UserID) {
		return
	}

	content, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok {
		return
	}

	var body string
	var hasAttachment bool
	switch content.MsgType {
	case event.MsgText, event.MsgNotice:
		body = content.Body
	case event.MsgImage, event.MsgFile, event.MsgVideo, event.MsgAudio:
		hasAttachment = true
	default:
		return
	}

	roomID := evt.RoomID.String()
	if !b.isRoomAllowed(roomID) {
		b.logger.Debug("ignoring message from non-allowed room", "room", roomID)
		return
	}

	b.logger.Info("received message",
		"room", roomID,
		"sender", evt.Sender.String(),
		"attachment", hasAttachment,
	)

	msg := router.InboundMessage{
		ConversationID:    senderNumber(evt.Sender),
		SenderDisplayName: b.senderDisplayName(evt.Sender),
		BodyText:          body,
		HasAttachment:     hasAttachment,
		IsGroup:           b.isGroupRoom(evt.RoomID),
	}

	// Process in a goroutine to not block sync. Replies go back to the
	// sender's room, so we remember it for the send path.
	b.rememberRoom(msg.ConversationID, evt.RoomID)
	go func() {
		if err := b.router.HandleMessage(b.ctx, msg); err != nil {
			b.logger.Error("message handling failed", "room", roomID, "error", err)
		}
	}()
}

// rememberRoom records where replies for this conversation should go, keyed
// the way the router keys conversations: canonical number when the id
// normalizes, raw id otherwise.
func (b *Bridge) rememberRoom(convID string, roomID id.RoomID) {
	if canonical, err := b.normalizer.Normalize(convID); err == nil {
		convID = canonical
	}
	b.convRooms.Store(convID, roomID)
}

// Send implements router.Channel. Replies with an image path are uploaded and
// sent as media; everything else goes out as plain text.
func (b *Bridge) Send(ctx context.Context, convID string, replies []menu.Reply) error {
	v, ok := b.convRooms.Load(convID)
	if !ok {
		return fmt.Errorf("no known room for conversation %s", convID)
	}
	roomID := v.(id.RoomID)

	if b.config.Bridge.TypingIndicator {
		b.setTyping(roomID, true)
		defer b.setTyping(roomID, false)
	}

	for _, r := range replies {
		if r.ImagePath != "" {
			if err := b.sendImage(ctx, roomID, r.ImagePath, r.Text); err != nil {
				b.logger.Warn("image send failed, falling back to text", "room", roomID.String(), "error", err)
				if _, err := b.matrix.SendText(ctx, roomID, r.Text); err != nil {
					return fmt.Errorf("sending reply: %w", err)
				}
			}
			continue
		}
		if _, err := b.matrix.SendText(ctx, roomID, r.Text); err != nil {
			return fmt.Errorf("sending reply: %w", err)
		}
	}
	return nil
}

// sendImage uploads the file and sends it as an m.image event with a caption.
func (b *Bridge) sendImage(ctx context.Context, roomID id.RoomID, path, caption string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	upload, err := b.matrix.UploadBytes(ctx, data, contentTypeForPath(path))
	if err != nil {
		return fmt.Errorf("uploading image: %w", err)
	}

	_, err = b.matrix.SendMessageEvent(ctx, roomID, event.EventMessage, &event.MessageEventContent{
		MsgType: event.MsgImage,
		Body:    caption,
		URL:     upload.ContentURI.CUString(),
	})
	if err != nil {
		return fmt.Errorf("sending image event: %w", err)
	}
	return nil
}

func contentTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// senderNumber extracts the conversation identity from a Matrix user ID. For
// WhatsApp-bridged rooms the localpart carries the phone number; regular
// Matrix users fall back to their full ID, which the router treats as an
// unregistered identity.
func senderNumber(sender id.UserID) string {
	localpart, _, err := sender.Parse()
	if err != nil {
		return sender.String()
	}
	// Bridged identities look like whatsapp_258845551234 or just the digits.
	if i := strings.LastIndexByte(localpart, '_'); i >= 0 {
		localpart = localpart[i+1:]
	}
	return localpart
}

// senderDisplayName resolves and caches the sender's profile name.
func (b *Bridge) senderDisplayName(sender id.UserID) string {
	if v, ok := b.displayNames.Load(sender); ok {
		return v.(string)
	}

	ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
	defer cancel()
	resp, err := b.matrix.GetDisplayName(ctx, sender)
	if err != nil || resp.DisplayName == "" {
		return ""
	}
	b.displayNames.Store(sender, resp.DisplayName)
	return resp.DisplayName
}

// isGroupRoom reports whether the room has more than two members.
func (b *Bridge) isGroupRoom(roomID id.RoomID) bool {
	if v, ok := b.roomIsGroup.Load(roomID); ok {
		return v.(bool)
	}

	ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
	defer cancel()
	members, err := b.matrix.JoinedMembers(ctx, roomID)
	if err != nil {
		b.logger.Debug("failed to count room members", "room", roomID.String(), "error", err)
		return false
	}
	isGroup := len(members.Joined) > 2
	b.roomIsGroup.Store(roomID, isGroup)
	return isGroup
}

// isRoomAllowed checks if the room is in the allowed list.
func (b *Bridge) isRoomAllowed(roomID string) bool {
	if len(b.config.Bridge.AllowedRooms) == 0 {
		return true // Allow all if no filter
	}

	for _, allowed := range b.config.Bridge.AllowedRooms {
		if allowed == roomID {
			return true
		}
	}
	return false
}

// setTyping sends typing indicator to room.
func (b *Bridge) setTyping(roomID id.RoomID, typing bool) {
	var timeout time.Duration
	if typing {
		timeout = typingTimeout
	}
	// Use a timeout context to avoid hanging during shutdown or network issues
	ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
	defer cancel()
	_, err := b.matrix.UserTyping(ctx, roomID, typing, timeout)
	if err != nil {
		b.logger.Debug("failed to set typing indicator", "room", roomID.String(), "error", err)
	}
}
