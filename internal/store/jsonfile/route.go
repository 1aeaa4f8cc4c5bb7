package jsonfile

import (
	"context"

	"github.com/sunpark333/topicwala/internal/core/route"
)

// Route returns the stored route.
func (s *Store) Route(ctx context.Context) (route.Route, error) {
	var r route.Route
	err := s.read(func(f *StateFile) {
		r = f.Config
	})
	return r, err
}

// SetSource stores the source chat.
func (s *Store) SetSource(ctx context.Context, chatID int64) error {
	return s.update(func(f *StateFile) error {
		f.Config.Source = chatID
		return nil
	})
}

// SetDestination stores the destination chat.
func (s *Store) SetDestination(ctx context.Context, chatID int64) error {
	return s.update(func(f *StateFile) error {
		f.Config.Destination = chatID
		return nil
	})
}
