package jsonfile

import (
	"context"
	"slices"

	"github.com/sunpark333/topicwala/internal/core/access"
)

// GetGrant returns the grant for userID. Returns access.ErrNotFound if none.
func (s *Store) GetGrant(ctx context.Context, userID int64) (access.Grant, error) {
	var (
		grant access.Grant
		found bool
	)
	err := s.read(func(f *StateFile) {
		for _, g := range f.AuthRecords.Grants {
			if g.UserID == userID {
				grant, found = g, true
				return
			}
		}
	})
	if err != nil {
		return access.Grant{}, err
	}
	if !found {
		return access.Grant{}, access.ErrNotFound
	}
	return grant, nil
}

// PutGrant creates or replaces the grant for g.UserID.
func (s *Store) PutGrant(ctx context.Context, g access.Grant) error {
	return s.update(func(f *StateFile) error {
		for i, existing := range f.AuthRecords.Grants {
			if existing.UserID == g.UserID {
				f.AuthRecords.Grants[i] = g
				return nil
			}
		}
		f.AuthRecords.Grants = append(f.AuthRecords.Grants, g)
		return nil
	})
}

// Grants returns every grant.
func (s *Store) Grants(ctx context.Context) ([]access.Grant, error) {
	var out []access.Grant
	err := s.read(func(f *StateFile) {
		out = slices.Clone(f.AuthRecords.Grants)
	})
	return out, err
}

// GroupMembers returns the allow list of chatID.
func (s *Store) GroupMembers(ctx context.Context, chatID int64) ([]int64, error) {
	var out []int64
	err := s.read(func(f *StateFile) {
		out = slices.Clone(f.AuthRecords.Groups[chatID])
	})
	slices.Sort(out)
	return out, err
}

// AddGroupMember adds userID to the allow list of chatID.
func (s *Store) AddGroupMember(ctx context.Context, chatID, userID int64) error {
	return s.update(func(f *StateFile) error {
		members := f.AuthRecords.Groups[chatID]
		if !slices.Contains(members, userID) {
			f.AuthRecords.Groups[chatID] = append(members, userID)
		}
		return nil
	})
}

// RemoveGroupMember removes userID from the allow list of chatID.
func (s *Store) RemoveGroupMember(ctx context.Context, chatID, userID int64) error {
	return s.update(func(f *StateFile) error {
		members := slices.DeleteFunc(f.AuthRecords.Groups[chatID], func(id int64) bool { return id == userID })
		if len(members) == 0 {
			delete(f.AuthRecords.Groups, chatID)
			return nil
		}
		f.AuthRecords.Groups[chatID] = members
		return nil
	})
}
