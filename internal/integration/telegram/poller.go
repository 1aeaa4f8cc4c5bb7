package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/sunpark333/topicwala/internal/core/chat"
)

// Updates is the long polling part of *tgbotapi.BotAPI.
type Updates interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler receives converted messages in arrival order.
type Handler func(ctx context.Context, msg chat.Message)

// Poller long polls for messages and channel posts.
type Poller struct {
	updates Updates
	timeout int
	log     zerolog.Logger
}

// NewPoller creates a Poller. timeout is the long polling timeout in seconds.
func NewPoller(updates Updates, timeout int, log zerolog.Logger) *Poller {
	return &Poller{updates: updates, timeout: timeout, log: log}
}

// Run delivers updates to handle one at a time until ctx is done or the
// update channel closes.
func (p *Poller) Run(ctx context.Context, handle Handler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	cfg.AllowedUpdates = []string{"message", "channel_post"}

	updates := p.updates.GetUpdatesChan(cfg)
	defer p.updates.StopReceivingUpdates()

	p.log.Info().Int("timeout", p.timeout).Msg("polling for updates")

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("stopped polling")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				p.log.Info().Msg("updates channel closed")
				return nil
			}

			m := update.Message
			if m == nil {
				m = update.ChannelPost
			}
			if m == nil {
				continue
			}

			msg := ToMessage(m)
			p.log.Debug().
				Int("update_id", update.UpdateID).
				Int64("chat_id", msg.ChatID).
				Int("message_id", msg.ID).
				Str("command", msg.Command).
				Msg("received update")

			handle(ctx, msg)
		}
	}
}
