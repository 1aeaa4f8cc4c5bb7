package relay

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunpark333/topicwala/internal/core/chat"
	"github.com/sunpark333/topicwala/internal/core/topic"
	"github.com/sunpark333/topicwala/internal/store/jsonfile"
)

const testDestination int64 = -1001

func newTestStore(t *testing.T) *jsonfile.Store {
	t.Helper()
	return jsonfile.New(filepath.Join(t.TempDir(), "state.json"))
}

func TestResolver_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	messenger := &chat.RecordingMessenger{}
	r := NewResolver(store, messenger, zerolog.Nop())

	label, ok := topic.Extract("Topic: Announcements\nHello world")
	require.True(t, ok)
	assert.Equal(t, topic.Label("Announcements"), label)

	first, err := r.Resolve(ctx, testDestination, label)
	require.NoError(t, err)

	second, err := r.Resolve(ctx, testDestination, label)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	creates := messenger.CallsTo(chat.MethodCreateThread)
	require.Len(t, creates, 1)
	assert.Equal(t, "Announcements", creates[0].Text)
	assert.Equal(t, testDestination, creates[0].ChatID)

	threads, err := store.Topics(ctx, testDestination)
	require.NoError(t, err)
	assert.Equal(t, map[topic.Label]topic.ThreadID{"Announcements": first}, threads)
}

func TestResolver_CaseSensitive(t *testing.T) {
	ctx := context.Background()
	messenger := &chat.RecordingMessenger{}
	r := NewResolver(newTestStore(t), messenger, zerolog.Nop())

	a, err := r.Resolve(ctx, testDestination, "news")
	require.NoError(t, err)
	b, err := r.Resolve(ctx, testDestination, "News")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, messenger.CallsTo(chat.MethodCreateThread), 2)
}

func TestResolver_ScopedByDestination(t *testing.T) {
	ctx := context.Background()
	messenger := &chat.RecordingMessenger{}
	r := NewResolver(newTestStore(t), messenger, zerolog.Nop())

	_, err := r.Resolve(ctx, 1, "News")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, 2, "News")
	require.NoError(t, err)

	assert.Len(t, messenger.CallsTo(chat.MethodCreateThread), 2)
}

func TestResolver_Truncates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	messenger := &chat.RecordingMessenger{}
	r := NewResolver(store, messenger, zerolog.Nop())

	long := topic.Label(strings.Repeat("x", topic.MaxLabelLength+20))
	thread, err := r.Resolve(ctx, testDestination, long)
	require.NoError(t, err)

	creates := messenger.CallsTo(chat.MethodCreateThread)
	require.Len(t, creates, 1)
	assert.Len(t, creates[0].Text, topic.MaxLabelLength)

	threads, err := store.Topics(ctx, testDestination)
	require.NoError(t, err)
	assert.Equal(t, thread, threads[topic.Truncate(long)])

	// a different label sharing the same prefix maps to the same thread
	again, err := r.Resolve(ctx, testDestination, long+"yz")
	require.NoError(t, err)
	assert.Equal(t, thread, again)
	assert.Len(t, messenger.CallsTo(chat.MethodCreateThread), 1)
}

func TestResolver_CreateFailureNotCached(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	boom := errors.New("forum topics disabled")
	messenger := &chat.RecordingMessenger{
		Errors: map[string]error{chat.MethodCreateThread: boom},
	}
	r := NewResolver(store, messenger, zerolog.Nop())

	_, err := r.Resolve(ctx, testDestination, "News")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemote)
	assert.ErrorIs(t, err, boom)

	threads, err := store.Topics(ctx, testDestination)
	require.NoError(t, err)
	assert.Empty(t, threads)

	messenger.Errors = nil
	thread, err := r.Resolve(ctx, testDestination, "News")
	require.NoError(t, err)
	assert.NotZero(t, thread)
	assert.Len(t, messenger.CallsTo(chat.MethodCreateThread), 2)
}

func TestResolver_ConcurrentSameLabel(t *testing.T) {
	ctx := context.Background()
	messenger := &chat.RecordingMessenger{}
	r := NewResolver(newTestStore(t), messenger, zerolog.Nop())

	const workers = 8
	threads := make([]topic.ThreadID, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			thread, err := r.Resolve(ctx, testDestination, "Shared")
			assert.NoError(t, err)
			threads[i] = thread
		}()
	}
	wg.Wait()

	for _, th := range threads {
		assert.Equal(t, threads[0], th)
	}
	assert.Len(t, messenger.CallsTo(chat.MethodCreateThread), 1)
}

// blockingMessenger holds CreateThread until release is closed, then fails with
// the call's context error if there is one.
type blockingMessenger struct {
	*chat.RecordingMessenger
	entered chan struct{}
	release chan struct{}
}

func (m *blockingMessenger) CreateThread(ctx context.Context, chatID int64, name string) (topic.ThreadID, error) {
	m.entered <- struct{}{}
	<-m.release
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return m.RecordingMessenger.CreateThread(ctx, chatID, name)
}

func TestResolver_CancelledCallerDoesNotFailSharedCreate(t *testing.T) {
	messenger := &blockingMessenger{
		RecordingMessenger: &chat.RecordingMessenger{},
		entered:            make(chan struct{}, 1),
		release:            make(chan struct{}),
	}
	store := newTestStore(t)
	r := NewResolver(store, messenger, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, testDestination, "Shared")
		firstErr <- err
	}()

	<-messenger.entered
	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	type result struct {
		thread topic.ThreadID
		err    error
	}
	second := make(chan result, 1)
	go func() {
		thread, err := r.Resolve(context.Background(), testDestination, "Shared")
		second <- result{thread, err}
	}()
	close(messenger.release)

	got := <-second
	require.NoError(t, got.err)
	assert.NotZero(t, got.thread)
	assert.Len(t, messenger.CallsTo(chat.MethodCreateThread), 1)

	threads, err := store.Topics(context.Background(), testDestination)
	require.NoError(t, err)
	assert.Equal(t, got.thread, threads["Shared"])
}
