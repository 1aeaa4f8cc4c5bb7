package chat

import (
	"context"
	"sync"

	"github.com/sunpark333/topicwala/internal/core/topic"
)

// Method names recorded by RecordingMessenger.
const (
	MethodSendText       = "SendText"
	MethodSendVideo      = "SendVideo"
	MethodSendDocument   = "SendDocument"
	MethodCopyMessage    = "CopyMessage"
	MethodEditCaption    = "EditCaption"
	MethodCreateThread   = "CreateThread"
	MethodDeleteMessage  = "DeleteMessage"
	MethodForwardMessage = "ForwardMessage"
)

// RecordedCall captures one Messenger call.
type RecordedCall struct {
	Method    string
	ChatID    int64
	Thread    topic.ThreadID
	FromChat  int64
	MessageID int
	FileID    string
	Text      string
}

// RecordingMessenger captures calls for testing.
// Configure Errors, Fail, Captions and Texts to control results.
type RecordingMessenger struct {
	mu    sync.Mutex
	Calls []RecordedCall

	// Errors maps method names to the error every call of that method returns.
	Errors map[string]error

	// Fail, when set, is consulted after Errors and may fail individual calls.
	Fail func(call RecordedCall) error

	// Captions maps source message ids to the caption ForwardMessage reports.
	Captions map[int]string
	// Texts maps source message ids to the text ForwardMessage reports.
	Texts map[int]string

	nextMessage int
	nextThread  topic.ThreadID
}

func (r *RecordingMessenger) SendText(ctx context.Context, chatID int64, thread topic.ThreadID, text string) (MessageRef, error) {
	return r.deliver(RecordedCall{Method: MethodSendText, ChatID: chatID, Thread: thread, Text: text})
}

func (r *RecordingMessenger) SendVideo(ctx context.Context, chatID int64, thread topic.ThreadID, fileID, caption string) (MessageRef, error) {
	return r.deliver(RecordedCall{Method: MethodSendVideo, ChatID: chatID, Thread: thread, FileID: fileID, Text: caption})
}

func (r *RecordingMessenger) SendDocument(ctx context.Context, chatID int64, thread topic.ThreadID, fileID, caption string) (MessageRef, error) {
	return r.deliver(RecordedCall{Method: MethodSendDocument, ChatID: chatID, Thread: thread, FileID: fileID, Text: caption})
}

func (r *RecordingMessenger) CopyMessage(ctx context.Context, toChat int64, thread topic.ThreadID, fromChat int64, messageID int) (MessageRef, error) {
	return r.deliver(RecordedCall{Method: MethodCopyMessage, ChatID: toChat, Thread: thread, FromChat: fromChat, MessageID: messageID})
}

func (r *RecordingMessenger) EditCaption(ctx context.Context, ref MessageRef, caption string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record(RecordedCall{Method: MethodEditCaption, ChatID: ref.ChatID, MessageID: ref.ID, Text: caption})
}

func (r *RecordingMessenger) CreateThread(ctx context.Context, chatID int64, name string) (topic.ThreadID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(RecordedCall{Method: MethodCreateThread, ChatID: chatID, Text: name}); err != nil {
		return 0, err
	}
	r.nextThread++
	return 100 + r.nextThread, nil
}

func (r *RecordingMessenger) DeleteMessage(ctx context.Context, ref MessageRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record(RecordedCall{Method: MethodDeleteMessage, ChatID: ref.ChatID, MessageID: ref.ID})
}

func (r *RecordingMessenger) ForwardMessage(ctx context.Context, toChat, fromChat int64, messageID int) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(RecordedCall{Method: MethodForwardMessage, ChatID: toChat, FromChat: fromChat, MessageID: messageID}); err != nil {
		return Message{}, err
	}
	r.nextMessage++
	return Message{
		ID:      1000 + r.nextMessage,
		ChatID:  toChat,
		Text:    r.Texts[messageID],
		Caption: r.Captions[messageID],
	}, nil
}

// CallsTo returns the recorded calls of method.
func (r *RecordingMessenger) CallsTo(method string) []RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []RecordedCall
	for _, c := range r.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded calls.
func (r *RecordingMessenger) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = nil
}

func (r *RecordingMessenger) deliver(call RecordedCall) (MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(call); err != nil {
		return MessageRef{}, err
	}
	r.nextMessage++
	return MessageRef{ChatID: call.ChatID, ID: 1000 + r.nextMessage}, nil
}

// record appends call and returns its configured error. Callers hold mu.
func (r *RecordingMessenger) record(call RecordedCall) error {
	r.Calls = append(r.Calls, call)

	if r.Errors != nil {
		if err := r.Errors[call.Method]; err != nil {
			return err
		}
	}
	if r.Fail != nil {
		return r.Fail(call)
	}
	return nil
}

var _ Messenger = (*RecordingMessenger)(nil)
