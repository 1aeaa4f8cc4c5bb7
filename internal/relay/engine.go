// Package relay routes messages into per-topic forum threads, both live and by
// replaying ranges of existing source messages.
package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sunpark333/topicwala/internal/core/chat"
	"github.com/sunpark333/topicwala/internal/core/rules"
	"github.com/sunpark333/topicwala/internal/core/topic"
	"github.com/sunpark333/topicwala/internal/telemetry"
)

// Options configures an Engine.
type Options struct {
	// DefaultThread receives live messages without a topic label.
	DefaultThread topic.ThreadID
	// FallbackLabel is used for replayed messages without a topic label.
	FallbackLabel topic.Label
	// ReplayRate is the number of messages replayed per second. Zero disables
	// pacing.
	ReplayRate float64
}

// Delivery describes a live relayed message.
type Delivery struct {
	Kind   chat.Kind
	Label  topic.Label
	Thread topic.ThreadID
	Ref    chat.MessageRef
}

// Engine relays messages through a Resolver and a Messenger.
type Engine struct {
	messenger chat.Messenger
	resolver  *Resolver
	rules     rules.Store
	opts      Options
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// NewEngine creates an Engine.
func NewEngine(messenger chat.Messenger, dir topic.Directory, ruleStore rules.Store, opts Options, log zerolog.Logger) *Engine {
	limit := rate.Inf
	if opts.ReplayRate > 0 {
		limit = rate.Limit(opts.ReplayRate)
	}
	if opts.FallbackLabel == "" {
		opts.FallbackLabel = "General"
	}

	return &Engine{
		messenger: messenger,
		resolver:  NewResolver(dir, messenger, log),
		rules:     ruleStore,
		opts:      opts,
		limiter:   rate.NewLimiter(limit, 1),
		log:       log,
	}
}

// Resolver returns the engine's thread resolver.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// Relay delivers msg to destination. The thread is chosen from the topic label
// in the caption or text, or the default thread when there is none. Content is
// sent unmodified. Messages other than videos and documents are sent as their
// caption or text.
func (e *Engine) Relay(ctx context.Context, destination int64, msg chat.Message) (Delivery, error) {
	d := Delivery{Kind: msg.Kind(), Thread: e.opts.DefaultThread}

	if d.Kind == chat.KindText && msg.Body() == "" {
		return d, ErrNothingToRelay
	}

	if label, ok := topic.Extract(msg.Body()); ok {
		thread, err := e.resolver.Resolve(ctx, destination, label)
		if err != nil {
			telemetry.Skipped(telemetry.ModeLive, string(StageResolving))
			return d, err
		}
		d.Label = topic.Truncate(label)
		d.Thread = thread
	}

	var (
		ref chat.MessageRef
		err error
	)
	switch d.Kind {
	case chat.KindVideo:
		ref, err = e.messenger.SendVideo(ctx, destination, d.Thread, msg.VideoFileID, msg.Caption)
	case chat.KindDocument:
		ref, err = e.messenger.SendDocument(ctx, destination, d.Thread, msg.DocumentFileID, msg.Caption)
	default:
		// captioned posts without a video or document go out as their caption
		ref, err = e.messenger.SendText(ctx, destination, d.Thread, msg.Body())
	}
	if err != nil {
		telemetry.Skipped(telemetry.ModeLive, string(StageDelivering))
		return d, fmt.Errorf("deliver %s message %d: %w: %w", d.Kind, msg.ID, ErrRemote, err)
	}

	d.Ref = ref
	telemetry.Relayed(telemetry.ModeLive)
	e.log.Debug().
		Int64("destination", destination).
		Int("message_id", msg.ID).
		Str("kind", string(d.Kind)).
		Str("label", string(d.Label)).
		Int("thread_id", int(d.Thread)).
		Msg("relayed message")

	return d, nil
}

// Sync replays the inclusive id range of job in ascending order. A failing
// message is recorded in the summary and the next id is attempted. Sync
// returns an error wrapping ErrInvalidRange before any call when the job fails
// Validate, and otherwise only when ctx is done, together with the partial
// summary.
func (e *Engine) Sync(ctx context.Context, job Job) (Summary, error) {
	if err := job.Validate(); err != nil {
		return Summary{}, err
	}
	job = job.Normalized()
	started := time.Now()

	count := job.End - job.Start + 1
	sum := Summary{
		ID:      uuid.NewString(),
		Start:   job.Start,
		End:     job.End,
		Results: make([]Result, 0, count),
	}
	log := e.log.With().Str("job_id", sum.ID).Logger()
	log.Info().
		Int64("source", job.Source).
		Int64("destination", job.Destination).
		Int("start", job.Start).
		Int("end", job.End).
		Msg("replay started")

	var err error
	for n := range count {
		id := job.Start + n
		if err = e.limiter.Wait(ctx); err != nil {
			break
		}

		res := e.replayOne(ctx, job, id)
		sum.Results = append(sum.Results, res)

		if res.OK() {
			sum.Delivered++
			telemetry.Relayed(telemetry.ModeReplay)
			continue
		}

		telemetry.Skipped(telemetry.ModeReplay, string(res.Stage))
		log.Warn().Err(res.Err).
			Int("message_id", id).
			Str("stage", string(res.Stage)).
			Msg("skipped message")
	}

	sum.Duration = time.Since(started)
	telemetry.ObserveReplay(sum.Duration.Seconds())

	log.Info().
		Int("delivered", sum.Delivered).
		Int("requested", sum.Requested()).
		Dur("duration", sum.Duration).
		Msg("replay finished")

	return sum, err
}

func (e *Engine) replayOne(ctx context.Context, job Job, id int) Result {
	res := Result{MessageID: id, Stage: StageFetching}
	fail := func(err error) Result {
		res.Err = err
		return res
	}

	staged, err := e.messenger.ForwardMessage(ctx, job.Staging, job.Source, id)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrRemote, err))
	}
	if err := e.messenger.DeleteMessage(ctx, chat.MessageRef{ChatID: staged.ChatID, ID: staged.ID}); err != nil {
		e.log.Debug().Err(err).Int("message_id", staged.ID).Msg("delete staging copy")
	}
	res.Stage = StageExtracting
	label, ok := topic.Extract(staged.Caption)
	if !ok {
		label = e.opts.FallbackLabel
	}
	res.Label = topic.Truncate(label)

	res.Stage = StageResolving
	thread, err := e.resolver.Resolve(ctx, job.Destination, label)
	if err != nil {
		return fail(err)
	}
	res.Thread = thread

	res.Stage = StageDelivering
	ref, err := e.messenger.CopyMessage(ctx, job.Destination, thread, job.Source, id)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrRemote, err))
	}

	if staged.Caption != "" {
		res.Stage = StageRewriting
		set, err := e.rules.Rules(ctx)
		if err != nil {
			return fail(fmt.Errorf("%w: %w", ErrPersist, err))
		}
		if rewritten := set.Apply(staged.Caption); rewritten != staged.Caption {
			if err := e.messenger.EditCaption(ctx, ref, rewritten); err != nil {
				return fail(fmt.Errorf("%w: %w", ErrRemote, err))
			}
		}
	}

	res.Stage = StageCounted
	return res
}
