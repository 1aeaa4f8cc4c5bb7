// Package access defines who may operate the relay: super admins, time-boxed
// grants and per-chat allow lists.
package access

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a user has no grant.
var ErrNotFound = errors.New("grant not found")

// Grant gives a user access until ExpiresAt. Expired grants stay on record but
// authorize nothing.
type Grant struct {
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ActiveAt reports whether the grant is still valid at now.
func (g Grant) ActiveAt(now time.Time) bool {
	return now.Before(g.ExpiresAt)
}

// NewGrant returns a grant for userID lasting days from now.
func NewGrant(userID int64, days int, now time.Time) Grant {
	return Grant{
		UserID:    userID,
		ExpiresAt: now.UTC().Add(time.Duration(days) * 24 * time.Hour),
	}
}

// Store defines persistence operations for authorization records.
type Store interface {
	// GetGrant returns the grant for userID. Returns ErrNotFound if none.
	GetGrant(ctx context.Context, userID int64) (Grant, error)
	// PutGrant creates or replaces the grant for g.UserID.
	PutGrant(ctx context.Context, g Grant) error
	// Grants returns every grant, expired ones included.
	Grants(ctx context.Context) ([]Grant, error)
	// GroupMembers returns the allow list of chatID, sorted ascending.
	GroupMembers(ctx context.Context, chatID int64) ([]int64, error)
	// AddGroupMember adds userID to the allow list of chatID.
	AddGroupMember(ctx context.Context, chatID, userID int64) error
	// RemoveGroupMember removes userID from the allow list of chatID.
	RemoveGroupMember(ctx context.Context, chatID, userID int64) error
}
