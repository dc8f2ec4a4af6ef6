package fileid

import (
	"strings"
	"testing"
)

func TestSource(t *testing.T) {
	// Deterministic: same path gives same key
	s1 := Source("/foo/bar.yaml")
	s2 := Source("/foo/bar.yaml")
	if s1 != s2 {
		t.Errorf("same path should give same source: %q vs %q", s1, s2)
	}
	if s1 != "file:/foo/bar.yaml" {
		t.Errorf("Source = %q, want file:/foo/bar.yaml", s1)
	}
}

func TestSource_differentPaths(t *testing.T) {
	if Source("/foo/bar.yaml") == Source("/foo/baz.yaml") {
		t.Error("different paths should give different sources")
	}
}

func TestSource_normalized(t *testing.T) {
	// Clean path: /foo/bar and /foo/bar/ and /foo/./bar should match
	s1 := Source("/foo/bar")
	s2 := Source("/foo/bar/")
	s3 := Source("/foo/./bar")
	if s1 != s2 {
		t.Errorf("paths differing only by trailing slash should match: %q vs %q", s1, s2)
	}
	if s1 != s3 {
		t.Errorf("paths with . should normalize: %q vs %q", s1, s3)
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/foo/bar.yaml", "file:///foo/bar.yaml"},
		{"/foo/./bar.yaml", "file:///foo/bar.yaml"},
		{"/notes/my article.yaml", "file:///notes/my%20article.yaml"},
	}
	for _, tt := range tests {
		got := URL(tt.path)
		if got != tt.want {
			t.Errorf("URL(%q) = %q, want %q", tt.path, got, tt.want)
		}
		if !strings.HasPrefix(got, "file://") {
			t.Errorf("URL(%q) = %q, want file:// scheme", tt.path, got)
		}
	}
}
