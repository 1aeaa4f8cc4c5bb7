package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sunpark333/topicwala/internal/core/route"
)

// Route returns the stored route.
func (s *Store) Route(ctx context.Context) (route.Route, error) {
	var r route.Route
	err := s.queryRow(ctx, `SELECT source, destination FROM route WHERE id = 1`).Scan(&r.Source, &r.Destination)
	if errors.Is(err, sql.ErrNoRows) {
		return route.Route{}, nil
	}
	if err != nil {
		return route.Route{}, fmt.Errorf("query route: %w", err)
	}
	return r, nil
}

// SetSource stores the source chat.
func (s *Store) SetSource(ctx context.Context, chatID int64) error {
	_, err := s.exec(ctx, `
		INSERT INTO route (id, source) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET source = excluded.source`, chatID)
	if err != nil {
		return fmt.Errorf("save source: %w", err)
	}
	return nil
}

// SetDestination stores the destination chat.
func (s *Store) SetDestination(ctx context.Context, chatID int64) error {
	_, err := s.exec(ctx, `
		INSERT INTO route (id, destination) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET destination = excluded.destination`, chatID)
	if err != nil {
		return fmt.Errorf("save destination: %w", err)
	}
	return nil
}
