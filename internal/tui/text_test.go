package tui

import "testing"

func TestTextHelpers(t *testing.T) {
	if got := truncate("hello", 3); got != "hel" {
		t.Fatalf("truncate: got %q", got)
	}
	if got := truncate("hi", 0); got != "" {
		t.Fatalf("truncate zero: got %q", got)
	}
	if got := truncate("日本語", 4); got != "日本" {
		t.Fatalf("truncate wide: got %q", got)
	}
	if got := tail("abcdef", 3); got != "def" {
		t.Fatalf("tail: got %q", got)
	}
	if got := tail("abc", 5); got != "abc" {
		t.Fatalf("tail short: got %q", got)
	}
	if got := tail("abc", -1); got != "" {
		t.Fatalf("tail negative: got %q", got)
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight: got %q", got)
	}
	if got := padRight("abcd", 2); got != "abcd" {
		t.Fatalf("padRight long: got %q", got)
	}
	if got := displayWidth("日本"); got != 4 {
		t.Fatalf("displayWidth: got %d", got)
	}
}
