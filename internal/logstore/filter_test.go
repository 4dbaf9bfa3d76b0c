package logstore_test

import (
	"io"
	"strings"
	"testing"

	"github.com/ehrlich-b/joblog/internal/logstore"
)

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func hasPrefix(prefix string) func(string) bool {
	return func(line string) bool { return strings.HasPrefix(line, prefix) }
}

func TestLineFilterReaderKeepsMatchingLines(t *testing.T) {
	src := &closeRecorder{Reader: strings.NewReader("job1: a\njob2: b\njob1: c\n")}
	r := logstore.NewLineFilterReader(src, hasPrefix("job1:"))

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got, want := string(data), "job1: a\njob1: c\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLineFilterReaderNoMatches(t *testing.T) {
	src := &closeRecorder{Reader: strings.NewReader("job2: b\njob3: c\n")}
	r := logstore.NewLineFilterReader(src, hasPrefix("job1:"))

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected no output, got %q", data)
	}
}

func TestLineFilterReaderUnterminatedFinalLine(t *testing.T) {
	src := &closeRecorder{Reader: strings.NewReader("job1: a\njob1: b")}
	r := logstore.NewLineFilterReader(src, hasPrefix("job1:"))

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got, want := string(data), "job1: a\njob1: b"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLineFilterReaderTrimsTerminatorForPredicate(t *testing.T) {
	var seen []string
	src := &closeRecorder{Reader: strings.NewReader("one\r\ntwo\n")}
	r := logstore.NewLineFilterReader(src, func(line string) bool {
		seen = append(seen, line)
		return true
	})
	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(seen) != 2 || seen[0] != "one" || seen[1] != "two" {
		t.Errorf("predicate saw %q, expected trimmed lines", seen)
	}
}

func TestLineFilterReaderSmallReads(t *testing.T) {
	src := &closeRecorder{Reader: strings.NewReader("job1: alpha\njob2: skip\njob1: beta\n")}
	r := logstore.NewLineFilterReader(src, hasPrefix("job1:"))

	var out strings.Builder
	buf := make([]byte, 3)
	for {
		n, err := r.Read(buf)
		out.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
	}
	if got, want := out.String(), "job1: alpha\njob1: beta\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLineFilterReaderClosesUnderlying(t *testing.T) {
	src := &closeRecorder{Reader: strings.NewReader("job1: a\n")}
	r := logstore.NewLineFilterReader(src, hasPrefix("job1:"))

	if err := r.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !src.closed {
		t.Error("underlying reader was not closed")
	}
}
