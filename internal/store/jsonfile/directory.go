package jsonfile

import (
	"context"
	"maps"
	"slices"

	"github.com/sunpark333/topicwala/internal/core/topic"
)

// Topics returns the label mapping for destination.
func (s *Store) Topics(ctx context.Context, destination int64) (map[topic.Label]topic.ThreadID, error) {
	out := make(map[topic.Label]topic.ThreadID)
	err := s.read(func(f *StateFile) {
		maps.Copy(out, f.TopicDirectory[destination])
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PutTopic records thread for label in destination.
func (s *Store) PutTopic(ctx context.Context, destination int64, label topic.Label, thread topic.ThreadID) error {
	return s.update(func(f *StateFile) error {
		m := f.TopicDirectory[destination]
		if m == nil {
			m = make(map[topic.Label]topic.ThreadID)
			f.TopicDirectory[destination] = m
		}
		m[label] = thread
		return nil
	})
}

// Destinations returns every destination with recorded topics.
func (s *Store) Destinations(ctx context.Context) ([]int64, error) {
	var out []int64
	err := s.read(func(f *StateFile) {
		for dest, m := range f.TopicDirectory {
			if len(m) > 0 {
				out = append(out, dest)
			}
		}
	})
	slices.Sort(out)
	return out, err
}
