package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sunpark333/topicwala/internal/core/access"
)

// GetGrant returns the grant for userID. Returns access.ErrNotFound if none.
func (s *Store) GetGrant(ctx context.Context, userID int64) (access.Grant, error) {
	var expires int64
	err := s.queryRow(ctx, `SELECT expires_at FROM grants WHERE user_id = ?`, userID).Scan(&expires)
	if errors.Is(err, sql.ErrNoRows) {
		return access.Grant{}, access.ErrNotFound
	}
	if err != nil {
		return access.Grant{}, fmt.Errorf("query grant: %w", err)
	}
	return access.Grant{UserID: userID, ExpiresAt: time.Unix(expires, 0).UTC()}, nil
}

// PutGrant creates or replaces the grant for g.UserID.
func (s *Store) PutGrant(ctx context.Context, g access.Grant) error {
	_, err := s.exec(ctx, `
		INSERT INTO grants (user_id, expires_at) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET expires_at = excluded.expires_at`,
		g.UserID, g.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("save grant: %w", err)
	}
	return nil
}

// Grants returns every grant.
func (s *Store) Grants(ctx context.Context) ([]access.Grant, error) {
	rows, err := s.query(ctx, `SELECT user_id, expires_at FROM grants ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []access.Grant
	for rows.Next() {
		var (
			g       access.Grant
			expires int64
		)
		if err := rows.Scan(&g.UserID, &expires); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		g.ExpiresAt = time.Unix(expires, 0).UTC()
		out = append(out, g)
	}
	return out, rows.Err()
}

// GroupMembers returns the allow list of chatID.
func (s *Store) GroupMembers(ctx context.Context, chatID int64) ([]int64, error) {
	rows, err := s.query(ctx, `SELECT user_id FROM group_members WHERE chat_id = ? ORDER BY user_id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// AddGroupMember adds userID to the allow list of chatID.
func (s *Store) AddGroupMember(ctx context.Context, chatID, userID int64) error {
	_, err := s.exec(ctx, `
		INSERT INTO group_members (chat_id, user_id) VALUES (?, ?)
		ON CONFLICT (chat_id, user_id) DO NOTHING`, chatID, userID)
	if err != nil {
		return fmt.Errorf("save group member: %w", err)
	}
	return nil
}

// RemoveGroupMember removes userID from the allow list of chatID.
func (s *Store) RemoveGroupMember(ctx context.Context, chatID, userID int64) error {
	if _, err := s.exec(ctx, `DELETE FROM group_members WHERE chat_id = ? AND user_id = ?`, chatID, userID); err != nil {
		return fmt.Errorf("delete group member: %w", err)
	}
	return nil
}
