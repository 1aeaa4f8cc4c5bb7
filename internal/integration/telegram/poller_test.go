package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunpark333/topicwala/internal/core/chat"
)

type fakeUpdates struct {
	ch      chan tgbotapi.Update
	config  tgbotapi.UpdateConfig
	stopped bool
}

func (f *fakeUpdates) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.config = config
	return f.ch
}

func (f *fakeUpdates) StopReceivingUpdates() {
	f.stopped = true
}

func TestPoller_Run(t *testing.T) {
	src := &fakeUpdates{ch: make(chan tgbotapi.Update, 4)}
	src.ch <- tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{MessageID: 1, Text: "a", Chat: &tgbotapi.Chat{ID: 9}}}
	src.ch <- tgbotapi.Update{UpdateID: 2}
	src.ch <- tgbotapi.Update{UpdateID: 3, ChannelPost: &tgbotapi.Message{MessageID: 2, Text: "b", Chat: &tgbotapi.Chat{ID: 9}}}
	close(src.ch)

	var got []chat.Message
	p := NewPoller(src, 30, zerolog.Nop())
	err := p.Run(context.Background(), func(ctx context.Context, msg chat.Message) {
		got = append(got, msg)
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Text)
	assert.Equal(t, "b", got[1].Text)
	assert.Equal(t, 30, src.config.Timeout)
	assert.True(t, src.stopped)
}

func TestPoller_RunCanceled(t *testing.T) {
	src := &fakeUpdates{ch: make(chan tgbotapi.Update)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPoller(src, 1, zerolog.Nop()).Run(ctx, func(context.Context, chat.Message) {
		t.Fatal("unexpected message")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, src.stopped)
}
