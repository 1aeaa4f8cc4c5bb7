package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunpark333/topicwala/internal/core/access"
	"github.com/sunpark333/topicwala/internal/core/route"
	"github.com/sunpark333/topicwala/internal/core/rules"
	"github.com/sunpark333/topicwala/internal/core/topic"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), SQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Topics(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "topicwala.db")
	s := openTestStore(t, path)

	got, err := s.Topics(ctx, -100)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.PutTopic(ctx, -100, "Announcements", 5))
	require.NoError(t, s.PutTopic(ctx, -100, "announcements", 6))
	require.NoError(t, s.PutTopic(ctx, -300, "Other", 1))

	got, err = s.Topics(ctx, -100)
	require.NoError(t, err)
	assert.Equal(t, map[topic.Label]topic.ThreadID{"Announcements": 5, "announcements": 6}, got)

	dests, err := s.Destinations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{-300, -100}, dests)

	require.NoError(t, s.Close())
	reopened := openTestStore(t, path)
	got, err = reopened.Topics(ctx, -100)
	require.NoError(t, err)
	assert.Equal(t, topic.ThreadID(5), got["Announcements"])
}

func TestStore_Rules(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "topicwala.db"))

	require.NoError(t, s.PutRule(ctx, "foo", "bar"))
	require.NoError(t, s.PutRule(ctx, "bar", "baz"))
	require.NoError(t, s.PutRule(ctx, "foo", "qux"))

	got, err := s.Rules(ctx)
	require.NoError(t, err)
	assert.Equal(t, rules.Set{{Old: "foo", New: "qux"}, {Old: "bar", New: "baz"}}, got)

	require.NoError(t, s.DeleteRule(ctx, "foo"))
	assert.ErrorIs(t, s.DeleteRule(ctx, "foo"), rules.ErrNotFound)
}

func TestStore_Access(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "topicwala.db"))

	_, err := s.GetGrant(ctx, 1)
	assert.ErrorIs(t, err, access.ErrNotFound)

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.PutGrant(ctx, access.Grant{UserID: 1, ExpiresAt: exp}))

	g, err := s.GetGrant(ctx, 1)
	require.NoError(t, err)
	assert.True(t, g.ExpiresAt.Equal(exp))

	grants, err := s.Grants(ctx)
	require.NoError(t, err)
	assert.Len(t, grants, 1)

	require.NoError(t, s.AddGroupMember(ctx, -5, 30))
	require.NoError(t, s.AddGroupMember(ctx, -5, 10))
	require.NoError(t, s.AddGroupMember(ctx, -5, 30))

	members, err := s.GroupMembers(ctx, -5)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 30}, members)

	require.NoError(t, s.RemoveGroupMember(ctx, -5, 10))
	members, err = s.GroupMembers(ctx, -5)
	require.NoError(t, err)
	assert.Equal(t, []int64{30}, members)
}

func TestStore_Route(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "topicwala.db"))

	r, err := s.Route(ctx)
	require.NoError(t, err)
	assert.Equal(t, route.Route{}, r)

	require.NoError(t, s.SetDestination(ctx, -2))
	require.NoError(t, s.SetSource(ctx, -1))

	r, err = s.Route(ctx)
	require.NoError(t, err)
	assert.Equal(t, route.Route{Source: -1, Destination: -2}, r)
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: Postgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &Store{dialect: SQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestOpen_UnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), Dialect("mongo"), "")
	assert.Error(t, err)
}
