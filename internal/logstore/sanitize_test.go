package logstore_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ehrlich-b/joblog/internal/logstore"
)

func TestSafeFileNamePassthrough(t *testing.T) {
	for _, id := range []string{"suite-a", "Suite_42", "nightly-build-001"} {
		if got := logstore.SafeFileName(id); got != id {
			t.Errorf("expected %q unchanged, got %q", id, got)
		}
	}
}

func TestSafeFileNameNeverEscapesDir(t *testing.T) {
	hostile := []string{
		"..",
		"../..",
		"../../etc/passwd",
		"a/b/c",
		`a\b\c`,
		"/absolute",
		"..\\windows",
		"suite id with spaces",
		"suite\x00null",
		"ünïcode/suite",
	}
	dir := string(filepath.Separator) + "logs"
	for _, id := range hostile {
		got := logstore.SafeFileName(id)
		if strings.ContainsAny(got, `/\`) {
			t.Errorf("SafeFileName(%q) = %q contains a separator", id, got)
		}
		if got == "." || got == ".." {
			t.Errorf("SafeFileName(%q) = %q is a traversal segment", id, got)
		}
		joined := filepath.Clean(filepath.Join(dir, got))
		if filepath.Dir(joined) != dir {
			t.Errorf("SafeFileName(%q) = %q escapes %s: %s", id, got, dir, joined)
		}
	}
}

func TestSafeFileNameDeterministic(t *testing.T) {
	id := "../suite with spaces/and.dots"
	first := logstore.SafeFileName(id)
	for i := 0; i < 5; i++ {
		if got := logstore.SafeFileName(id); got != first {
			t.Fatalf("non-deterministic output: %q vs %q", first, got)
		}
	}
}

func TestSafeFileNameEscaping(t *testing.T) {
	if got, want := logstore.SafeFileName("a.b"), "a%002Eb"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got, want := logstore.SafeFileName("a/b"), "a%002Fb"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
