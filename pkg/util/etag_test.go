package util

import (
	"testing"
	"time"
)

func TestETagFromTime(t *testing.T) {
	ts := time.UnixMilli(1756640000123)
	if got := ETagFromTime(ts); got != `"1756640000123"` {
		t.Fatalf("etag = %s", got)
	}
}

func TestCleanIfMatch(t *testing.T) {
	cases := map[string]string{
		`"1234"`:     "1234",
		`W/"1234"`:   "1234",
		"1234":       "1234",
		`  "1234"  `: "1234",
		"":           "",
	}
	for in, want := range cases {
		if got := CleanIfMatch(in); got != want {
			t.Fatalf("CleanIfMatch(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckIfMatch(t *testing.T) {
	current := ETagFromTime(time.UnixMilli(42))
	if !CheckIfMatch("", current) {
		t.Fatal("absent header must pass")
	}
	if !CheckIfMatch(`"42"`, current) {
		t.Fatal("matching tag rejected")
	}
	if !CheckIfMatch(`W/"42"`, current) {
		t.Fatal("weak matching tag rejected")
	}
	if CheckIfMatch(`"43"`, current) {
		t.Fatal("stale tag accepted")
	}
}
