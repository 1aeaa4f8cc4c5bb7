package sqlstore

import (
	"context"
	"fmt"

	"github.com/sunpark333/topicwala/internal/core/topic"
)

// Topics returns the label mapping for destination.
func (s *Store) Topics(ctx context.Context, destination int64) (map[topic.Label]topic.ThreadID, error) {
	rows, err := s.query(ctx, `SELECT label, thread_id FROM topics WHERE destination = ?`, destination)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[topic.Label]topic.ThreadID)
	for rows.Next() {
		var (
			label  string
			thread int64
		)
		if err := rows.Scan(&label, &thread); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		out[topic.Label(label)] = topic.ThreadID(thread)
	}
	return out, rows.Err()
}

// PutTopic records thread for label in destination.
func (s *Store) PutTopic(ctx context.Context, destination int64, label topic.Label, thread topic.ThreadID) error {
	_, err := s.exec(ctx, `
		INSERT INTO topics (destination, label, thread_id) VALUES (?, ?, ?)
		ON CONFLICT (destination, label) DO UPDATE SET thread_id = excluded.thread_id`,
		destination, string(label), int64(thread))
	if err != nil {
		return fmt.Errorf("save topic: %w", err)
	}
	return nil
}

// Destinations returns every destination with recorded topics.
func (s *Store) Destinations(ctx context.Context) ([]int64, error) {
	rows, err := s.query(ctx, `SELECT DISTINCT destination FROM topics ORDER BY destination`)
	if err != nil {
		return nil, fmt.Errorf("query destinations: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []int64
	for rows.Next() {
		var dest int64
		if err := rows.Scan(&dest); err != nil {
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		out = append(out, dest)
	}
	return out, rows.Err()
}
