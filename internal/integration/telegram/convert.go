package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sunpark333/topicwala/internal/core/chat"
)

// ToMessage converts a Bot API message. Channel posts have no sender and
// SenderID is left zero.
func ToMessage(m *tgbotapi.Message) chat.Message {
	if m == nil {
		return chat.Message{}
	}

	out := chat.Message{
		ID:      m.MessageID,
		Text:    m.Text,
		Caption: m.Caption,
	}
	if m.Chat != nil {
		out.ChatID = m.Chat.ID
		out.ChatType = m.Chat.Type
	}
	if m.From != nil {
		out.SenderID = m.From.ID
	}
	if m.Video != nil {
		out.VideoFileID = m.Video.FileID
	}
	if m.Document != nil {
		out.DocumentFileID = m.Document.FileID
	}
	if m.IsCommand() {
		out.Command = m.Command()
		out.Args = strings.Fields(m.CommandArguments())
	}
	return out
}
