// Package route defines the persisted source and destination chats of the relay.
package route

import (
	"context"
	"errors"
)

// ErrIncomplete is returned when an operation needs both chats configured.
var ErrIncomplete = errors.New("source and destination must both be set")

// Route is the relay's source chat and the forum chat it delivers into.
type Route struct {
	Source      int64 `json:"source,omitempty"`
	Destination int64 `json:"destination,omitempty"`
}

// Complete reports whether both ends are set.
func (r Route) Complete() bool {
	return r.Source != 0 && r.Destination != 0
}

// Store defines persistence operations for the route.
type Store interface {
	// Route returns the stored route. Unset ends are zero.
	Route(ctx context.Context) (Route, error)
	// SetSource stores the source chat.
	SetSource(ctx context.Context, chatID int64) error
	// SetDestination stores the destination chat.
	SetDestination(ctx context.Context, chatID int64) error
}
