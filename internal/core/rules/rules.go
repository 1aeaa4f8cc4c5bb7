// Package rules defines the ordered literal substitutions applied to replayed captions.
package rules

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when no rule exists for a token.
var ErrNotFound = errors.New("rule not found")

// Rule replaces every literal occurrence of Old with New.
type Rule struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Set is an ordered list of rules. Order is declaration order and is significant:
// a rule sees the output of every rule before it.
type Set []Rule

// Apply runs every rule over text in order.
func (s Set) Apply(text string) string {
	for _, r := range s {
		if r.Old == "" {
			continue
		}
		text = strings.ReplaceAll(text, r.Old, r.New)
	}
	return text
}

// Upsert returns a set with old mapped to new. An existing rule keeps its position.
func (s Set) Upsert(old, new string) Set {
	out := make(Set, 0, len(s)+1)
	found := false
	for _, r := range s {
		if r.Old == old {
			r.New = new
			found = true
		}
		out = append(out, r)
	}
	if !found {
		out = append(out, Rule{Old: old, New: new})
	}
	return out
}

// Remove returns a set without the rule for old and reports whether it existed.
func (s Set) Remove(old string) (Set, bool) {
	out := make(Set, 0, len(s))
	found := false
	for _, r := range s {
		if r.Old == old {
			found = true
			continue
		}
		out = append(out, r)
	}
	return out, found
}

// Store defines persistence operations for substitution rules.
type Store interface {
	// Rules returns all rules in declaration order.
	Rules(ctx context.Context) (Set, error)
	// PutRule creates or updates the rule for old.
	PutRule(ctx context.Context, old, new string) error
	// DeleteRule removes the rule for old. Returns ErrNotFound if absent.
	DeleteRule(ctx context.Context, old string) error
}
