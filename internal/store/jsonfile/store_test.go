package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sunpark333/topicwala/internal/core/access"
	"github.com/sunpark333/topicwala/internal/core/rules"
	"github.com/sunpark333/topicwala/internal/core/topic"
)

func TestStore_Topics(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown destination is empty", func(t *testing.T) {
		store := New(filepath.Join(t.TempDir(), "state.json"))

		got, err := store.Topics(ctx, -100)
		if err != nil {
			t.Fatalf("Topics: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d topics, want 0", len(got))
		}
	})

	t.Run("put persists across instances", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		store := New(path)

		if err := store.PutTopic(ctx, -100, "Announcements", 5); err != nil {
			t.Fatalf("PutTopic: %v", err)
		}

		got, err := New(path).Topics(ctx, -100)
		if err != nil {
			t.Fatalf("Topics: %v", err)
		}
		if got["Announcements"] != 5 {
			t.Errorf("got %v, want Announcements=5", got)
		}
	})

	t.Run("labels are case sensitive and scoped per destination", func(t *testing.T) {
		store := New(filepath.Join(t.TempDir(), "state.json"))

		_ = store.PutTopic(ctx, -100, "news", 1)
		_ = store.PutTopic(ctx, -100, "News", 2)
		_ = store.PutTopic(ctx, -200, "news", 3)

		got, _ := store.Topics(ctx, -100)
		want := map[topic.Label]topic.ThreadID{"news": 1, "News": 2}
		if len(got) != 2 || got["news"] != want["news"] || got["News"] != want["News"] {
			t.Errorf("got %v, want %v", got, want)
		}

		dests, err := store.Destinations(ctx)
		if err != nil {
			t.Fatalf("Destinations: %v", err)
		}
		if len(dests) != 2 || dests[0] != -200 || dests[1] != -100 {
			t.Errorf("got %v, want [-200 -100]", dests)
		}
	})

	t.Run("returned map is a copy", func(t *testing.T) {
		store := New(filepath.Join(t.TempDir(), "state.json"))
		_ = store.PutTopic(ctx, -100, "a", 1)

		got, _ := store.Topics(ctx, -100)
		got["b"] = 2

		again, _ := store.Topics(ctx, -100)
		if len(again) != 1 {
			t.Errorf("mutation leaked into store: %v", again)
		}
	})
}

func TestStore_Rules(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	store := New(path)

	if err := store.PutRule(ctx, "foo", "bar"); err != nil {
		t.Fatalf("PutRule: %v", err)
	}
	if err := store.PutRule(ctx, "bar", "baz"); err != nil {
		t.Fatalf("PutRule: %v", err)
	}
	if err := store.PutRule(ctx, "foo", "qux"); err != nil {
		t.Fatalf("PutRule: %v", err)
	}

	got, err := New(path).Rules(ctx)
	if err != nil {
		t.Fatalf("Rules: %v", err)
	}
	want := rules.Set{{Old: "foo", New: "qux"}, {Old: "bar", New: "baz"}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}

	if err := store.DeleteRule(ctx, "foo"); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	if err := store.DeleteRule(ctx, "foo"); !errors.Is(err, rules.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStore_Access(t *testing.T) {
	ctx := context.Background()
	store := New(filepath.Join(t.TempDir(), "state.json"))

	if _, err := store.GetGrant(ctx, 7); !errors.Is(err, access.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := store.PutGrant(ctx, access.Grant{UserID: 7, ExpiresAt: exp}); err != nil {
		t.Fatalf("PutGrant: %v", err)
	}
	later := exp.Add(24 * time.Hour)
	if err := store.PutGrant(ctx, access.Grant{UserID: 7, ExpiresAt: later}); err != nil {
		t.Fatalf("PutGrant: %v", err)
	}

	g, err := store.GetGrant(ctx, 7)
	if err != nil {
		t.Fatalf("GetGrant: %v", err)
	}
	if !g.ExpiresAt.Equal(later) {
		t.Errorf("got expiry %v, want %v", g.ExpiresAt, later)
	}

	grants, _ := store.Grants(ctx)
	if len(grants) != 1 {
		t.Errorf("got %d grants, want 1", len(grants))
	}

	for _, id := range []int64{30, 10, 30} {
		if err := store.AddGroupMember(ctx, -5, id); err != nil {
			t.Fatalf("AddGroupMember: %v", err)
		}
	}
	members, _ := store.GroupMembers(ctx, -5)
	if len(members) != 2 || members[0] != 10 || members[1] != 30 {
		t.Errorf("got %v, want [10 30]", members)
	}

	_ = store.RemoveGroupMember(ctx, -5, 10)
	_ = store.RemoveGroupMember(ctx, -5, 30)
	members, _ = store.GroupMembers(ctx, -5)
	if len(members) != 0 {
		t.Errorf("got %v, want empty", members)
	}
}

func TestStore_Route(t *testing.T) {
	ctx := context.Background()
	store := New(filepath.Join(t.TempDir(), "state.json"))

	r, err := store.Route(ctx)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if r.Complete() {
		t.Errorf("empty route reported complete: %+v", r)
	}

	_ = store.SetSource(ctx, -1)
	_ = store.SetDestination(ctx, -2)

	r, _ = store.Route(ctx)
	if r.Source != -1 || r.Destination != -2 {
		t.Errorf("got %+v, want source -1 destination -2", r)
	}
}

func TestStore_FileLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	store := New(path)

	_ = store.SetSource(ctx, -1)
	_ = store.PutTopic(ctx, -2, "Announcements", 9)
	_ = store.PutRule(ctx, "old", "new")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"config", "topic_directory", "auth_records", "substitution_rules"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := New(path)
	if _, err := store.Topics(context.Background(), -1); err == nil {
		t.Error("expected parse error")
	}
	if err := store.PutTopic(context.Background(), -1, "a", 1); err == nil {
		t.Error("expected parse error on write")
	}
}
