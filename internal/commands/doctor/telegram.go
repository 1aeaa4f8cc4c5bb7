package doctor

import (
	"context"
	"fmt"

	"github.com/sunpark333/topicwala/internal/integration/telegram"
)

// ChatInspector reads chat metadata from the Bot API.
type ChatInspector interface {
	GetChat(ctx context.Context, chatID int64) (telegram.ChatInfo, error)
	GetMember(ctx context.Context, chatID, userID int64) (telegram.Member, error)
}

// TelegramCheck verifies the bot can read the source and manage topics in
// the destination.
type TelegramCheck struct {
	inspector   ChatInspector
	botID       int64
	source      int64
	destination int64
}

// NewTelegramCheck creates a new Telegram check. Zero chat ids are skipped.
func NewTelegramCheck(inspector ChatInspector, botID, source, destination int64) *TelegramCheck {
	return &TelegramCheck{
		inspector:   inspector,
		botID:       botID,
		source:      source,
		destination: destination,
	}
}

func (c *TelegramCheck) Name() string {
	return "Telegram"
}

func (c *TelegramCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.source != 0 {
		info, err := c.inspector.GetChat(ctx, c.source)
		if err != nil {
			result.fail("Source chat", err.Error())
		} else {
			result.pass("Source chat", describe(info))
		}
	}

	if c.destination == 0 {
		return result
	}

	info, err := c.inspector.GetChat(ctx, c.destination)
	if err != nil {
		result.fail("Destination chat", err.Error())
		return result
	}
	if !info.IsForum {
		result.fail("Destination chat", describe(info)+" has topics disabled")
	} else {
		result.pass("Destination chat", describe(info))
	}

	member, err := c.inspector.GetMember(ctx, c.destination, c.botID)
	switch {
	case err != nil:
		result.fail("Bot permissions", err.Error())
	case member.Status == "creator":
		result.pass("Bot permissions", "owner")
	case member.Status != "administrator":
		result.fail("Bot permissions", fmt.Sprintf("bot is %s; it must be an administrator", member.Status))
	case !member.CanManageTopics:
		result.fail("Bot permissions", "administrator without the manage topics right")
	default:
		result.pass("Bot permissions", "administrator, can manage topics")
	}

	return result
}

func describe(info telegram.ChatInfo) string {
	if info.Title == "" {
		return fmt.Sprintf("%d (%s)", info.ID, info.Type)
	}
	return fmt.Sprintf("%s (%s)", info.Title, info.Type)
}
