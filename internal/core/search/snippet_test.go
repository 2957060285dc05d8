package search

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSnippet_HasMarkers(t *testing.T) {
	got := Snippet("For God so loved the world", []string{"LOVED"})
	if got != "For God so <<loved>> the world" {
		t.Fatalf("snippet=%q", got)
	}
}

func TestSnippet_PrefersLongestTerm(t *testing.T) {
	got := Snippet("God is love", []string{"is", "love"})
	if got != "God is <<love>>" {
		t.Fatalf("snippet=%q", got)
	}
}

func TestSnippet_WindowsLongText(t *testing.T) {
	text := strings.Repeat("a ", 100) + "needle" + strings.Repeat(" b", 100)
	got := Snippet(text, []string{"needle"})
	if !strings.HasPrefix(got, "…") || !strings.HasSuffix(got, "…") || !strings.Contains(got, "<<needle>>") {
		t.Fatalf("snippet=%q", got)
	}
}

func TestSnippet_NoTermReturnsText(t *testing.T) {
	if got := Snippet("  grace  ", []string{"mercy"}); got != "grace" {
		t.Fatalf("snippet=%q", got)
	}
	if got := Snippet("", []string{"x"}); got != "" {
		t.Fatalf("snippet=%q", got)
	}
}

func TestSnippet_KeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("é", 80) + "x" + strings.Repeat("é", 80)
	got := Snippet(text, []string{"x"})
	if !strings.Contains(got, "<<x>>") {
		t.Fatalf("snippet=%q", got)
	}
	for _, r := range got {
		if r == utf8.RuneError {
			t.Fatalf("split rune in %q", got)
		}
	}
}
