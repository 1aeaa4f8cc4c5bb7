package jsonfile

import (
	"context"
	"slices"

	"github.com/sunpark333/topicwala/internal/core/rules"
)

// Rules returns the substitution rules in declaration order.
func (s *Store) Rules(ctx context.Context) (rules.Set, error) {
	var out rules.Set
	err := s.read(func(f *StateFile) {
		out = slices.Clone(f.SubstitutionRules)
	})
	return out, err
}

// PutRule creates or updates the rule for old.
func (s *Store) PutRule(ctx context.Context, old, new string) error {
	return s.update(func(f *StateFile) error {
		f.SubstitutionRules = f.SubstitutionRules.Upsert(old, new)
		return nil
	})
}

// DeleteRule removes the rule for old. Returns rules.ErrNotFound if absent.
func (s *Store) DeleteRule(ctx context.Context, old string) error {
	return s.update(func(f *StateFile) error {
		set, ok := f.SubstitutionRules.Remove(old)
		if !ok {
			return rules.ErrNotFound
		}
		f.SubstitutionRules = set
		return nil
	})
}
