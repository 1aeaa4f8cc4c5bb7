package sqlstore

import (
	"context"
	"fmt"

	"github.com/sunpark333/topicwala/internal/core/rules"
)

// Rules returns the substitution rules in declaration order.
func (s *Store) Rules(ctx context.Context) (rules.Set, error) {
	rows, err := s.query(ctx, `SELECT old_token, new_token FROM rules ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out rules.Set
	for rows.Next() {
		var r rules.Rule
		if err := rows.Scan(&r.Old, &r.New); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PutRule creates or updates the rule for old. Updates keep the rule's position.
func (s *Store) PutRule(ctx context.Context, old, new string) error {
	_, err := s.exec(ctx, `
		INSERT INTO rules (old_token, new_token, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM rules))
		ON CONFLICT (old_token) DO UPDATE SET new_token = excluded.new_token`,
		old, new)
	if err != nil {
		return fmt.Errorf("save rule: %w", err)
	}
	return nil
}

// DeleteRule removes the rule for old. Returns rules.ErrNotFound if absent.
func (s *Store) DeleteRule(ctx context.Context, old string) error {
	res, err := s.exec(ctx, `DELETE FROM rules WHERE old_token = ?`, old)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if n == 0 {
		return rules.ErrNotFound
	}
	return nil
}
