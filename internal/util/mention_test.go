package util

import (
	"reflect"
	"testing"
)

func set(names ...string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func TestMentions(t *testing.T) {
	cases := []struct {
		body string
		want map[string]struct{}
	}{
		// underscore is not a handle character, so @Bob_2 yields "bob";
		// @x is too short
		{"@alice hi @Bob_2 @x", set("alice", "bob")},
		{"thanks @Alice and @alice!", set("alice")},
		{"@first-mid.last rocks", set("first-mid.last")},
		// glued to a word or another handle: no mention
		{"mail me a@alice or @bob@carol", set("bob")},
		{"line start\n@dave end", set("dave")},
		// trailing punctuation does not break the handle
		{"cc @erin.", set("erin")},
		{"no mentions here", set()},
		// handles cap at 16 characters and must end alphanumeric
		{"@aaaaaaaaaaaaaaaaaaaa", set()},
		{"", set()},
	}
	for _, c := range cases {
		if got := Mentions(c.body); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("Mentions(%q) = %v, want %v", c.body, got, c.want)
		}
	}
}
