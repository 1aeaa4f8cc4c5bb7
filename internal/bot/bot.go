// Package bot turns incoming chat messages into relay operations: commands from
// operators and live relay of posts in the source chat.
package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sunpark333/topicwala/internal/core/access"
	"github.com/sunpark333/topicwala/internal/core/chat"
	"github.com/sunpark333/topicwala/internal/core/route"
	"github.com/sunpark333/topicwala/internal/core/rules"
	"github.com/sunpark333/topicwala/internal/core/topic"
	"github.com/sunpark333/topicwala/internal/relay"
)

// Store is the state the bot reads and changes.
type Store interface {
	topic.Directory
	rules.Store
	access.Store
	route.Store
}

// level is the access a command requires.
type level int

const (
	levelAnyone level = iota
	levelAuthorized
	levelSuperAdmin
)

type command struct {
	usage       string
	help        string
	level       level
	privateOnly bool
	run         func(ctx context.Context, msg chat.Message) (string, error)
}

// Bot dispatches messages. Handle is meant to be called sequentially from a
// single poller; replay jobs run in the background.
type Bot struct {
	store     Store
	messenger chat.Messenger
	engine    *relay.Engine
	auth      *access.Authorizer
	log       zerolog.Logger
	now       func() time.Time

	commands map[string]command
	order    []string
	jobs     sync.WaitGroup
}

// New creates a Bot.
func New(store Store, messenger chat.Messenger, engine *relay.Engine, auth *access.Authorizer, log zerolog.Logger) *Bot {
	b := &Bot{
		store:     store,
		messenger: messenger,
		engine:    engine,
		auth:      auth,
		log:       log,
		now:       time.Now,
	}
	b.registerCommands()
	return b
}

// Wait blocks until background replay jobs finish.
func (b *Bot) Wait() {
	b.jobs.Wait()
}

// Handle processes one incoming message.
func (b *Bot) Handle(ctx context.Context, msg chat.Message) {
	if msg.Command == "" {
		b.relay(ctx, msg)
		return
	}

	cmd, ok := b.commands[msg.Command]
	if !ok {
		if msg.IsPrivate() {
			b.reply(ctx, msg, "Unknown command. Send /help for the list of commands.")
		}
		return
	}

	if cmd.privateOnly && !msg.IsPrivate() {
		return
	}

	if denied := b.permit(ctx, msg, cmd.level); denied != "" {
		b.reply(ctx, msg, denied)
		return
	}

	text, err := cmd.run(ctx, msg)
	if err != nil {
		text = b.failureText(cmd, msg, err)
	}
	if text != "" {
		b.reply(ctx, msg, text)
	}
}

// permit returns the denial reply, or "" when msg may run a command of lvl.
func (b *Bot) permit(ctx context.Context, msg chat.Message, lvl level) string {
	switch lvl {
	case levelSuperAdmin:
		if !b.auth.IsSuperAdmin(msg.SenderID) {
			return superAdminOnlyText
		}
	case levelAuthorized:
		var container *int64
		if !msg.IsPrivate() {
			container = &msg.ChatID
		}
		if !b.auth.IsAuthorized(ctx, msg.SenderID, container) {
			return deniedText
		}
	}
	return ""
}

func (b *Bot) failureText(cmd command, msg chat.Message, err error) string {
	var usage usageError
	if errors.As(err, &usage) {
		if usage.reason == "" {
			return "Usage: " + cmd.usage
		}
		return usage.reason + "\nUsage: " + cmd.usage
	}

	b.log.Error().Err(err).
		Str("command", msg.Command).
		Int64("chat_id", msg.ChatID).
		Int64("user_id", msg.SenderID).
		Msg("command failed")
	return "Command failed: " + err.Error()
}

func (b *Bot) reply(ctx context.Context, msg chat.Message, text string) {
	if _, err := b.messenger.SendText(ctx, msg.ChatID, 0, text); err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("send reply")
	}
}

// relay forwards posts from the source chat. Posts from users need the user
// to be authorized for the source chat; channel posts carry no user.
func (b *Bot) relay(ctx context.Context, msg chat.Message) {
	rt, err := b.store.Route(ctx)
	if err != nil {
		b.log.Error().Err(err).Msg("load route")
		return
	}
	if !rt.Complete() || msg.ChatID != rt.Source {
		return
	}

	if msg.SenderID != 0 && !b.auth.IsAuthorized(ctx, msg.SenderID, &msg.ChatID) {
		b.log.Debug().
			Int64("user_id", msg.SenderID).
			Int("message_id", msg.ID).
			Msg("ignored post from unauthorized user")
		return
	}

	d, err := b.engine.Relay(ctx, rt.Destination, msg)
	switch {
	case errors.Is(err, relay.ErrNothingToRelay):
		b.log.Debug().Int("message_id", msg.ID).Msg("nothing to relay")
	case err != nil:
		b.log.Error().Err(err).Int("message_id", msg.ID).Msg("relay message")
	default:
		b.log.Info().
			Int("message_id", msg.ID).
			Str("label", string(d.Label)).
			Int("thread_id", int(d.Thread)).
			Msg("relayed")
	}
}
