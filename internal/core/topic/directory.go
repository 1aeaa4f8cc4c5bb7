package topic

import "context"

// ThreadID identifies a forum thread inside one destination chat. Zero is the
// chat's general thread.
type ThreadID int

// Directory persists the label to thread mapping per destination chat.
//
// Entries are created on the first resolution of a label and never removed.
type Directory interface {
	// Topics returns the label mapping for destination, empty when unknown.
	Topics(ctx context.Context, destination int64) (map[Label]ThreadID, error)
	// PutTopic records thread for label and persists before returning.
	PutTopic(ctx context.Context, destination int64, label Label, thread ThreadID) error
	// Destinations returns every destination with at least one entry.
	Destinations(ctx context.Context) ([]int64, error)
}
