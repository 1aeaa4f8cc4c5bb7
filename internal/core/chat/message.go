// Package chat defines the platform-neutral message model and the messaging
// operations the relay depends on.
package chat

// Kind classifies the deliverable content of a message.
type Kind string

const (
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
	KindText     Kind = "text"
)

// Message is an inbound or fetched message.
type Message struct {
	ID       int    `json:"id"`
	ChatID   int64  `json:"chat_id"`
	ChatType string `json:"chat_type,omitempty"`
	// SenderID is the user who sent the message, zero for anonymous channel posts.
	SenderID int64  `json:"sender_id,omitempty"`
	Text     string `json:"text,omitempty"`
	Caption  string `json:"caption,omitempty"`

	VideoFileID    string `json:"video_file_id,omitempty"`
	DocumentFileID string `json:"document_file_id,omitempty"`

	// Command is the bot command without its slash, empty for plain messages.
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
}

// Kind picks the delivery form. Video wins over document, which wins over text.
func (m Message) Kind() Kind {
	switch {
	case m.VideoFileID != "":
		return KindVideo
	case m.DocumentFileID != "":
		return KindDocument
	default:
		return KindText
	}
}

// Body returns the caption, falling back to the text.
func (m Message) Body() string {
	if m.Caption != "" {
		return m.Caption
	}
	return m.Text
}

// IsPrivate reports whether the message came from a one-to-one chat with the bot.
func (m Message) IsPrivate() bool {
	return m.ChatType == "private"
}

// MessageRef points at a message the platform created.
type MessageRef struct {
	ChatID int64 `json:"chat_id"`
	ID     int   `json:"id"`
}
