package bookmark

import (
	"context"
	"errors"
	"testing"
	"time"

	"hivedex/internal/store"
)

func setup(t *testing.T) (*store.Store, context.Context) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()
	if _, err := s.UpsertAccount(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertPost(ctx, 101, "bob", "great-post"); err != nil {
		t.Fatal(err)
	}
	return s, ctx
}

func TestProcessAddRemove(t *testing.T) {
	s, ctx := setup(t)
	now := time.Now()

	add := []byte(`{"account":"alice","author":"bob","permlink":"great-post","action":"add","category":"food"}`)
	if err := Process(ctx, s, "alice", add, now); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.CountBookmarks(ctx, 101); n != 1 {
		t.Fatalf("bookmarks: %d", n)
	}

	remove := []byte(`{"account":"alice","author":"bob","permlink":"great-post","action":"remove","category":"food"}`)
	if err := Process(ctx, s, "alice", remove, now); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.CountBookmarks(ctx, 101); n != 0 {
		t.Fatalf("bookmarks after remove: %d", n)
	}
}

func TestProcessRejections(t *testing.T) {
	s, ctx := setup(t)
	now := time.Now()

	cases := []struct {
		name    string
		account string
		raw     string
	}{
		{"missing param", "alice", `{"account":"alice","author":"bob","permlink":"great-post","action":"add"}`},
		{"impersonation", "mallory", `{"account":"alice","author":"bob","permlink":"great-post","action":"add","category":"food"}`},
		{"bad action", "alice", `{"account":"alice","author":"bob","permlink":"great-post","action":"toggle","category":"food"}`},
		{"unknown account", "eve", `{"account":"eve","author":"bob","permlink":"great-post","action":"add","category":"food"}`},
		{"unknown post", "alice", `{"account":"alice","author":"bob","permlink":"gone","action":"add","category":"food"}`},
		{"malformed json", "alice", `{"account":`},
	}
	for _, c := range cases {
		err := Process(ctx, s, c.account, []byte(c.raw), now)
		if !errors.Is(err, ErrRejected) {
			t.Fatalf("%s: expected rejection, got %v", c.name, err)
		}
	}
	if n, _ := s.CountBookmarks(ctx, 101); n != 0 {
		t.Fatalf("rejected ops must not write: %d", n)
	}
}
