package logstore

import (
	"bufio"
	"io"
	"strings"
)

// LineFilterReader streams only the lines of an underlying reader for which
// a predicate returns true. Lines are emitted verbatim, in order, with their
// original terminators. Single pass, at most one line buffered at a time;
// Close closes the underlying reader.
type LineFilterReader struct {
	rc   io.ReadCloser
	br   *bufio.Reader
	keep func(line string) bool
	buf  []byte // unread bytes of the current matching line
	err  error  // sticky read error, including io.EOF
}

// NewLineFilterReader wraps rc with a lazy line filter. The predicate is
// called with the line content excluding its terminator.
func NewLineFilterReader(rc io.ReadCloser, keep func(line string) bool) *LineFilterReader {
	return &LineFilterReader{
		rc:   rc,
		br:   bufio.NewReader(rc),
		keep: keep,
	}
}

func (r *LineFilterReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		line, err := r.br.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return 0, err
			}
			r.err = io.EOF // final line may still lack a terminator
		}
		if line == "" {
			continue
		}
		if r.keep(strings.TrimRight(line, "\r\n")) {
			r.buf = []byte(line)
		}
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// Close closes the underlying reader.
func (r *LineFilterReader) Close() error {
	return r.rc.Close()
}
