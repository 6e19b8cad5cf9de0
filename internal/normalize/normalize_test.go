package normalize

import (
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("12.345 SBD")
	if err != nil || v != 12.345 {
		t.Fatalf("got %v %v", v, err)
	}
	v, err = ParseAmount("0.000 SBD")
	if err != nil || v != 0 {
		t.Fatalf("got %v %v", v, err)
	}
	if _, err := ParseAmount("SBD"); err == nil {
		t.Fatal("expected error for missing value")
	}
	if _, err := ParseAmount("abc SBD"); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
}

func TestParseTime(t *testing.T) {
	ts, err := ParseTime("2017-06-01T00:00:00")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2017, 6, 1, 0, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("got %v", ts)
	}
	if UTCTimestamp(ts) != 1496275200 {
		t.Fatalf("timestamp: %v", UTCTimestamp(ts))
	}
	if _, err := ParseTime("2017-06-01 00:00:00"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestSafeImgURL(t *testing.T) {
	if got := SafeImgURL("https://img.example/a.png "); got != "https://img.example/a.png" {
		t.Fatalf("got %q", got)
	}
	if got := SafeImgURL("ftp://img.example/a.png"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	long := "http://" + string(make([]byte, 1200))
	if got := SafeImgURL(long); got != "" {
		t.Fatalf("expected empty for oversized url")
	}
}

func TestRepLog10(t *testing.T) {
	cases := []struct {
		raw  int64
		want float64
	}{
		{0, 25},
		{100, 25},
		{2321387987213, 55.29},
		{-2321387987213, -5.29},
	}
	for _, c := range cases {
		if got := RepLog10(c.raw); got != c.want {
			t.Fatalf("RepLog10(%d) = %v, want %v", c.raw, got, c.want)
		}
	}
}
