package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatInfo is the part of a Bot API Chat the relay checks.
type ChatInfo struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	IsForum bool   `json:"is_forum"`
}

// Member is the part of a Bot API ChatMember the relay checks.
type Member struct {
	Status          string `json:"status"`
	CanManageTopics bool   `json:"can_manage_topics"`
}

// GetChat returns chat metadata, including whether topics are enabled.
func (c *Client) GetChat(ctx context.Context, chatID int64) (ChatInfo, error) {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)

	var out ChatInfo
	err := c.call(ctx, "getChat", params, &out)
	return out, err
}

// GetMember returns userID's status and rights in chatID.
func (c *Client) GetMember(ctx context.Context, chatID, userID int64) (Member, error) {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero64("user_id", userID)

	var out Member
	err := c.call(ctx, "getChatMember", params, &out)
	return out, err
}
