package relay

import (
	"fmt"
	"math"
	"time"

	"github.com/sunpark333/topicwala/internal/core/topic"
)

// Stage is the step of the replay pipeline a message reached.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageExtracting Stage = "extracting"
	StageResolving  Stage = "resolving"
	StageDelivering Stage = "delivering"
	StageRewriting  Stage = "rewriting"
	StageCounted    Stage = "counted"
)

const (
	// MaxMessageID is the largest message id the platform issues.
	MaxMessageID = math.MaxInt32
	// MaxRangeSize caps the number of ids a single replay may request.
	MaxRangeSize = 10_000
)

// Job replays an inclusive range of source message ids into the destination.
type Job struct {
	Source      int64
	Destination int64
	// Staging is a chat the bot can forward into to read captions.
	Staging int64
	Start   int
	End     int
}

// Normalized returns the job with Start <= End.
func (j Job) Normalized() Job {
	if j.Start > j.End {
		j.Start, j.End = j.End, j.Start
	}
	return j
}

// Validate checks that both ids are valid message ids and that the range is no
// larger than MaxRangeSize. The bounds may be given in either order.
func (j Job) Validate() error {
	j = j.Normalized()
	if j.Start < 1 || j.End > MaxMessageID {
		return fmt.Errorf("%w: message ids must be between 1 and %d", ErrInvalidRange, MaxMessageID)
	}
	if j.End-j.Start >= MaxRangeSize {
		return fmt.Errorf("%w: at most %d messages per replay", ErrInvalidRange, MaxRangeSize)
	}
	return nil
}

// Result is the outcome for one message id. Stage is StageCounted on success,
// otherwise the stage that failed.
type Result struct {
	MessageID int
	Stage     Stage
	Label     topic.Label
	Thread    topic.ThreadID
	Err       error
}

// OK reports whether the message was delivered and rewritten.
func (r Result) OK() bool {
	return r.Err == nil && r.Stage == StageCounted
}

// Summary reports a finished replay job.
type Summary struct {
	ID        string
	Start     int
	End       int
	Results   []Result
	Delivered int
	Duration  time.Duration
}

// Requested returns the number of ids in the range.
func (s Summary) Requested() int {
	return s.End - s.Start + 1
}

// Failed returns the results of messages that were skipped.
func (s Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
