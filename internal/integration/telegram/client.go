// Package telegram implements chat.Messenger on the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/sunpark333/topicwala/internal/core/chat"
	"github.com/sunpark333/topicwala/internal/core/topic"
)

// API is the subset of *tgbotapi.BotAPI used by Client.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// Connect authenticates token and returns the bot. Library logs are routed to log.
func Connect(token string, debug bool, log zerolog.Logger) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(&botLogger{log: log}); err != nil {
		return nil, fmt.Errorf("set bot logger: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect bot: %w", err)
	}
	bot.Debug = debug

	log.Info().Str("username", bot.Self.UserName).Msg("authorized bot")
	return bot, nil
}

// Client sends messages through the Bot API. The library predates forum
// topics, so calls that carry a thread id are built as raw requests.
type Client struct {
	api API
}

// NewClient creates a Client.
func NewClient(api API) *Client {
	return &Client{api: api}
}

func (c *Client) SendText(ctx context.Context, chatID int64, thread topic.ThreadID, text string) (chat.MessageRef, error) {
	params := threadParams(chatID, thread)
	params.AddNonEmpty("text", text)
	return c.sendMessage(ctx, "sendMessage", chatID, params)
}

func (c *Client) SendVideo(ctx context.Context, chatID int64, thread topic.ThreadID, fileID, caption string) (chat.MessageRef, error) {
	params := threadParams(chatID, thread)
	params.AddNonEmpty("video", fileID)
	params.AddNonEmpty("caption", caption)
	return c.sendMessage(ctx, "sendVideo", chatID, params)
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, thread topic.ThreadID, fileID, caption string) (chat.MessageRef, error) {
	params := threadParams(chatID, thread)
	params.AddNonEmpty("document", fileID)
	params.AddNonEmpty("caption", caption)
	return c.sendMessage(ctx, "sendDocument", chatID, params)
}

func (c *Client) CopyMessage(ctx context.Context, toChat int64, thread topic.ThreadID, fromChat int64, messageID int) (chat.MessageRef, error) {
	params := threadParams(toChat, thread)
	params.AddNonZero64("from_chat_id", fromChat)
	params.AddNonZero("message_id", messageID)

	var out tgbotapi.MessageID
	if err := c.call(ctx, "copyMessage", params, &out); err != nil {
		return chat.MessageRef{}, err
	}
	return chat.MessageRef{ChatID: toChat, ID: out.MessageID}, nil
}

func (c *Client) EditCaption(ctx context.Context, ref chat.MessageRef, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Request(tgbotapi.NewEditMessageCaption(ref.ChatID, ref.ID, caption)); err != nil {
		return fmt.Errorf("editMessageCaption: %w", err)
	}
	return nil
}

type forumTopic struct {
	MessageThreadID int    `json:"message_thread_id"`
	Name            string `json:"name"`
}

func (c *Client) CreateThread(ctx context.Context, chatID int64, name string) (topic.ThreadID, error) {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonEmpty("name", name)

	var out forumTopic
	if err := c.call(ctx, "createForumTopic", params, &out); err != nil {
		return 0, err
	}
	if out.MessageThreadID == 0 {
		return 0, fmt.Errorf("createForumTopic: response has no thread id")
	}
	return topic.ThreadID(out.MessageThreadID), nil
}

func (c *Client) DeleteMessage(ctx context.Context, ref chat.MessageRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.ID)); err != nil {
		return fmt.Errorf("deleteMessage: %w", err)
	}
	return nil
}

func (c *Client) ForwardMessage(ctx context.Context, toChat, fromChat int64, messageID int) (chat.Message, error) {
	if err := ctx.Err(); err != nil {
		return chat.Message{}, err
	}
	sent, err := c.api.Send(tgbotapi.NewForward(toChat, fromChat, messageID))
	if err != nil {
		return chat.Message{}, fmt.Errorf("forwardMessage: %w", err)
	}
	return ToMessage(&sent), nil
}

func (c *Client) sendMessage(ctx context.Context, endpoint string, chatID int64, params tgbotapi.Params) (chat.MessageRef, error) {
	var out tgbotapi.Message
	if err := c.call(ctx, endpoint, params, &out); err != nil {
		return chat.MessageRef{}, err
	}
	return chat.MessageRef{ChatID: chatID, ID: out.MessageID}, nil
}

func (c *Client) call(ctx context.Context, endpoint string, params tgbotapi.Params, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	resp, err := c.api.MakeRequest(endpoint, params)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", endpoint, err)
	}
	return nil
}

// threadParams returns params addressing chatID, and thread when it is not the
// general thread.
func threadParams(chatID int64, thread topic.ThreadID) tgbotapi.Params {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero("message_thread_id", int(thread))
	return params
}

var _ chat.Messenger = (*Client)(nil)
