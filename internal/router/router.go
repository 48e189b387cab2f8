// ABOUTME: Message router connecting transports to the conversation engine
// ABOUTME: Handles identity, registration, admin commands, and reply delivery

package router

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mundonet/dexbot/internal/admincmd"
	"github.com/mundonet/dexbot/internal/dailyset"
	"github.com/mundonet/dexbot/internal/menu"
	"github.com/mundonet/dexbot/internal/phone"
	"github.com/mundonet/dexbot/internal/session"
)

// DefaultMessageTimeout bounds the handling of one inbound message.
const DefaultMessageTimeout = 10 * time.Second

// InboundMessage is one message arriving from a transport.
type InboundMessage struct {
	// ConversationID is the transport's identity for the sender, usually a
	// raw phone number.
	ConversationID    string
	SenderDisplayName string
	BodyText          string
	HasAttachment     bool
	IsGroup           bool
}

// Channel delivers replies back to a conversation. Implementations are
// provided by the transports.
type Channel interface {
	Send(ctx context.Context, conversationID string, replies []menu.Reply) error
}

// Router routes inbound messages through admin handling, customer
// registration, and the conversation state machine.
type Router struct {
	channel     Channel
	normalizer  *phone.Normalizer
	sessions    *session.Registry
	dispatcher  *menu.Dispatcher
	admin       *admincmd.Handler
	persister   *Persister
	seenToday   *dailyset.Set
	adminNumber string
	timeout     time.Duration
	logger      *slog.Logger
}

// Config carries the router's collaborators and settings.
type Config struct {
	Channel     Channel
	Normalizer  *phone.Normalizer
	Sessions    *session.Registry
	Dispatcher  *menu.Dispatcher
	Admin       *admincmd.Handler
	Persister   *Persister
	SeenToday   *dailyset.Set
	AdminNumber string // canonical form
	// Timeout bounds one message's handling; zero means DefaultMessageTimeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// New creates a Router.
func New(cfg Config) *Router {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultMessageTimeout
	}
	return &Router{
		channel:     cfg.Channel,
		normalizer:  cfg.Normalizer,
		sessions:    cfg.Sessions,
		dispatcher:  cfg.Dispatcher,
		admin:       cfg.Admin,
		persister:   cfg.Persister,
		seenToday:   cfg.SeenToday,
		adminNumber: cfg.AdminNumber,
		timeout:     timeout,
		logger:      cfg.Logger.With("component", "router"),
	}
}

// HandleMessage processes one inbound message end to end. Group messages are
// ignored. Errors are handled internally; the method only reports failures the
// caller might want to count.
func (r *Router) HandleMessage(ctx context.Context, msg InboundMessage) error {
	if msg.IsGroup {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Conversations are keyed by canonical number when the sender's id
	// normalizes, otherwise by the raw transport id. Registration only
	// happens for canonical identities.
	convID := msg.ConversationID
	canonical, err := r.normalizer.Normalize(msg.ConversationID)
	if err == nil {
		convID = canonical
	} else {
		r.logger.Warn("sender id did not normalize", "conversation_id", msg.ConversationID)
	}

	if err == nil && r.seenToday.MarkOnce(canonical) {
		r.persister.Enqueue(UpsertJob{
			Name:   displayName(msg),
			Number: canonical,
			Tag:    phone.Classify(canonical),
		})
	}

	if err == nil && canonical == r.adminNumber {
		if cmd, ok := admincmd.Parse(msg.BodyText); ok {
			report := r.admin.Execute(ctx, cmd)
			return r.send(ctx, convID, []menu.Reply{{Text: report}})
		}
		// Unrecognized admin text falls through to the normal flow.
	}

	sess, isNew := r.sessions.GetOrCreate(convID)
	if isNew {
		return r.send(ctx, convID, menu.WelcomeReplies(displayName(msg)))
	}

	out := r.dispatcher.Dispatch(sess.State, menu.Input{
		Text:          msg.BodyText,
		HasAttachment: msg.HasAttachment,
		DisplayName:   displayName(msg),
	})

	// Replies go out before the state is committed, so a timed-out message
	// leaves the session exactly as it was.
	if len(out.Replies) > 0 {
		if sendErr := r.send(ctx, convID, out.Replies); sendErr != nil {
			return sendErr
		}
	}

	if out.UpdateState {
		r.sessions.Transition(convID, out.NextState)
	} else {
		// Silent states still count as activity for eviction purposes.
		r.sessions.Touch(convID)
	}
	return nil
}

// send delivers replies, recovering to the menu when delivery fails. A timed
// out message is dropped without a reply and without touching the session.
func (r *Router) send(ctx context.Context, convID string, replies []menu.Reply) error {
	err := r.channel.Send(ctx, convID, replies)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		r.logger.Warn("message handling timed out, reply dropped", "conversation_id", convID)
		return err
	}
	r.logger.Error("send failed, recovering to menu", "conversation_id", convID, "error", err)
	r.sessions.Transition(convID, session.StateMenu)
	if recErr := r.channel.Send(ctx, convID, menu.RecoveryReplies()); recErr != nil {
		r.logger.Error("recovery send failed", "conversation_id", convID, "error", recErr)
	}
	return err
}

func displayName(msg InboundMessage) string {
	if msg.SenderDisplayName != "" {
		return msg.SenderDisplayName
	}
	return "cliente"
}
