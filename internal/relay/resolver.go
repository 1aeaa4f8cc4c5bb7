package relay

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sunpark333/topicwala/internal/core/chat"
	"github.com/sunpark333/topicwala/internal/core/topic"
	"github.com/sunpark333/topicwala/internal/telemetry"
)

// Resolver maps topic labels to forum threads, creating threads on first use.
//
// Concurrent resolutions of one key inside this process share a single create
// call. Separate processes sharing a store can still both create a thread for
// the same label; the later write wins in the directory.
type Resolver struct {
	dir       topic.Directory
	messenger chat.Messenger
	log       zerolog.Logger
	flight    singleflight.Group
}

// NewResolver creates a Resolver.
func NewResolver(dir topic.Directory, messenger chat.Messenger, log zerolog.Logger) *Resolver {
	return &Resolver{dir: dir, messenger: messenger, log: log}
}

// Resolve returns the thread for label in destination. The label is truncated
// to topic.MaxLabelLength first. A failed create is returned as is and nothing
// is recorded. A caller whose ctx ends returns early while a create already in
// flight completes for the callers sharing it.
func (r *Resolver) Resolve(ctx context.Context, destination int64, label topic.Label) (topic.ThreadID, error) {
	label = topic.Truncate(label)

	if thread, ok, err := r.lookup(ctx, destination, label); err != nil || ok {
		return thread, err
	}

	// the flight outlives any one caller so others sharing it are not cancelled
	key := strconv.FormatInt(destination, 10) + "/" + string(label)
	ch := r.flight.DoChan(key, func() (any, error) {
		return r.create(context.WithoutCancel(ctx), destination, label)
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(topic.ThreadID), nil
	}
}

func (r *Resolver) lookup(ctx context.Context, destination int64, label topic.Label) (topic.ThreadID, bool, error) {
	threads, err := r.dir.Topics(ctx, destination)
	if err != nil {
		return 0, false, fmt.Errorf("load topics of %d: %w: %w", destination, ErrPersist, err)
	}
	thread, ok := threads[label]
	return thread, ok, nil
}

func (r *Resolver) create(ctx context.Context, destination int64, label topic.Label) (topic.ThreadID, error) {
	// a flight that finished just before this one may have stored the label
	if thread, ok, err := r.lookup(ctx, destination, label); err != nil || ok {
		return thread, err
	}

	thread, err := r.messenger.CreateThread(ctx, destination, string(label))
	if err != nil {
		return 0, fmt.Errorf("create thread %q: %w: %w", label, ErrRemote, err)
	}

	if err := r.dir.PutTopic(ctx, destination, label, thread); err != nil {
		return 0, fmt.Errorf("save thread %q: %w: %w", label, ErrPersist, err)
	}

	telemetry.ThreadCreated()
	r.log.Info().
		Int64("destination", destination).
		Str("label", string(label)).
		Int("thread_id", int(thread)).
		Msg("created topic thread")

	return thread, nil
}
