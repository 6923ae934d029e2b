package lca

import (
	"errors"
	"testing"
)

func TestFind_SharedPrefix(t *testing.T) {
	paths := []string{"/foo/bar/a", "/foo/baz/b"}
	result, err := Find(paths)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if result != "/foo" {
		t.Errorf("Find() = %q, want %q", result, "/foo")
	}
}

func TestFind_RootOnly(t *testing.T) {
	result, err := Find([]string{"/foo", "/bar"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if result != "/" {
		t.Errorf("Find() = %q, want %q", result, "/")
	}
}

func TestFind_SegmentBoundary(t *testing.T) {
	// /foo/ba is a character prefix of /foo/bar but not an ancestor.
	result, err := Find([]string{"/foo/ba", "/foo/bar"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if result != "/foo" {
		t.Errorf("Find() = %q, want %q", result, "/foo")
	}
}

func TestFind_TooFewPaths(t *testing.T) {
	if _, err := Find([]string{"/foo"}); !errors.Is(err, ErrTooFewPaths) {
		t.Errorf("Find() error = %v, want ErrTooFewPaths", err)
	}
	if _, err := Find(nil); !errors.Is(err, ErrTooFewPaths) {
		t.Errorf("Find() error = %v, want ErrTooFewPaths", err)
	}
}

func TestFind_OrderInsensitive(t *testing.T) {
	forward := []string{"/a/b/c", "/a/b/d", "/a/e"}
	reversed := []string{"/a/e", "/a/b/d", "/a/b/c"}

	got1, err := Find(forward)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	got2, err := Find(reversed)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got1 != got2 {
		t.Errorf("Find() order-sensitive: %q vs %q", got1, got2)
	}
	if got1 != "/a" {
		t.Errorf("Find() = %q, want %q", got1, "/a")
	}
}

func TestFind_DifferentDepths(t *testing.T) {
	paths := []string{"/a", "/a/b/c/d/e", "/a/b"}
	result, err := Find(paths)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if result != "/a" {
		t.Errorf("Find() = %q, want %q", result, "/a")
	}
}

func TestFind_NormalizesInputs(t *testing.T) {
	paths := []string{"/a/b/../b/c", "/a/b//d/"}
	result, err := Find(paths)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if result != "/a/b" {
		t.Errorf("Find() = %q, want %q", result, "/a/b")
	}
}

func TestFind_NoCommonSegments(t *testing.T) {
	result, err := Find([]string{"a/x", "b/y"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if result != "" {
		t.Errorf("Find() = %q, want empty string", result)
	}
}

func TestFind_SameDirectory(t *testing.T) {
	result, err := Find([]string{"/pkg/dist/app.dmg", "/pkg/dist/app.pkg"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if result != "/pkg/dist" {
		t.Errorf("Find() = %q, want %q", result, "/pkg/dist")
	}
}
