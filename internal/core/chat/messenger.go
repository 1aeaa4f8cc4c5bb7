package chat

import (
	"context"

	"github.com/sunpark333/topicwala/internal/core/topic"
)

// Messenger is the messaging platform client. Every call is a remote operation
// that may fail transiently or permanently.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, thread topic.ThreadID, text string) (MessageRef, error)
	SendVideo(ctx context.Context, chatID int64, thread topic.ThreadID, fileID, caption string) (MessageRef, error)
	SendDocument(ctx context.Context, chatID int64, thread topic.ThreadID, fileID, caption string) (MessageRef, error)
	// CopyMessage copies a message without a forward header into thread.
	CopyMessage(ctx context.Context, toChat int64, thread topic.ThreadID, fromChat int64, messageID int) (MessageRef, error)
	EditCaption(ctx context.Context, ref MessageRef, caption string) error
	// CreateThread creates a forum thread named name in chatID.
	CreateThread(ctx context.Context, chatID int64, name string) (topic.ThreadID, error)
	DeleteMessage(ctx context.Context, ref MessageRef) error
	// ForwardMessage forwards a message and returns the forwarded copy as seen by toChat.
	ForwardMessage(ctx context.Context, toChat, fromChat int64, messageID int) (Message, error)
}
