package logstore

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// TimestampLayout is the timestamp format of appended log lines.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatLine renders a log line in the fixed "timestamp level - message"
// layout. External sinks writing to an appender target directly must honor
// the same layout.
func FormatLine(ts time.Time, level, message string) string {
	return ts.Format(TimestampLayout) + " " + level + " - " + message
}

// Appender is an open append handle on a suite's current log file.
type Appender struct {
	path string

	mu sync.Mutex
	f  *os.File
}

// Path returns the log file the appender writes to.
func (a *Appender) Path() string {
	return a.path
}

// Append writes one formatted log line, timestamped now.
func (a *Appender) Append(level, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.f == nil {
		return fmt.Errorf("appender for %s is closed", a.path)
	}
	if _, err := a.f.WriteString(FormatLine(time.Now(), level, message) + "\n"); err != nil {
		return fmt.Errorf("append to %s: %w", a.path, err)
	}
	return nil
}

// Close closes the underlying file. Safe to call more than once.
func (a *Appender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.f == nil {
		return nil
	}
	err := a.f.Close()
	a.f = nil
	return err
}
