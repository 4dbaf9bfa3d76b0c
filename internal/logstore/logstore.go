// Package logstore stores per-suite execution logs on the file system.
// Each suite gets one file under {base}/latest/logs, and backups move that
// file into a date-partitioned archive under {base}/backup.
package logstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when a suite has no current log file.
	ErrNotFound = errors.New("log not found")

	// ErrNoSuiteID is returned when a required suite identifier is blank.
	ErrNoSuiteID = errors.New("suite id is required")
)

const logSuffix = ".log"

// backupStampLayout is the filename timestamp for archived logs. Combined
// with the millisecond suffix below, two backups of the same suite on the
// same day get distinct names.
const backupStampLayout = "20060102150405"

// Store manages suite log files under a configurable base directory.
//
// The derived "latest" and "backup" directories are recomputed lazily:
// setting a new log directory only marks them stale, and the next operation
// resolves them. Safe for concurrent use from multiple suite-processing
// goroutines.
type Store struct {
	log *slog.Logger

	mu          sync.Mutex
	baseDir     string
	fallbackDir string
	latestDir   string
	backupRoot  string
	stale       bool
	catalog     *Catalog
}

// New creates a Store rooted at baseDir. If baseDir is blank, fallbackDir is
// used instead. A nil logger defaults to slog.Default().
func New(baseDir, fallbackDir string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		log:         log,
		baseDir:     baseDir,
		fallbackDir: fallbackDir,
		stale:       true,
	}
}

// DefaultLogDir returns the default base log directory.
func DefaultLogDir() string {
	if dir := os.Getenv("JOBLOG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "joblog"
	}
	return filepath.Join(home, ".joblog")
}

// LogDir returns the configured base directory (not the fallback).
func (s *Store) LogDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseDir
}

// SetLogDir changes the base directory and marks the derived directories
// stale. Logs already under the old directory are left untouched.
func (s *Store) SetLogDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseDir = dir
	s.stale = true
}

// SetCatalog attaches a backup catalog. Subsequent backups record their
// archive entries in it. A nil catalog disables recording.
func (s *Store) SetCatalog(c *Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c
}

// resolve recomputes the derived directories if the base directory changed.
// It only computes paths; operations that write create their own target
// directory. Returns the latest-logs dir and the backup root.
func (s *Store) resolve() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale {
		base := s.baseDir
		if strings.TrimSpace(base) == "" {
			base = s.fallbackDir
		}
		abs, err := filepath.Abs(base)
		if err != nil {
			return "", "", fmt.Errorf("resolve log directory %q: %w", base, err)
		}
		s.latestDir = filepath.Join(abs, "latest", "logs")
		s.backupRoot = filepath.Join(abs, "backup")
		s.stale = false
		s.log.Debug("resolved log directories",
			"latest", s.latestDir, "backup", s.backupRoot)
	}

	return s.latestDir, s.backupRoot, nil
}

// BackupRoot returns the resolved backup root directory. It is not created.
func (s *Store) BackupRoot() (string, error) {
	_, backupRoot, err := s.resolve()
	return backupRoot, err
}

// LogFilePath returns the path of the suite's current log file. The file and
// its directory are not created; use CreateAppender for that.
func (s *Store) LogFilePath(suiteID string) (string, error) {
	if suiteID == "" {
		return "", ErrNoSuiteID
	}
	latestDir, _, err := s.resolve()
	if err != nil {
		return "", err
	}
	return filepath.Join(latestDir, SafeFileName(suiteID)+logSuffix), nil
}

// CreateAppender opens the suite's current log file for appending, creating
// the latest-logs directory and the file as needed.
func (s *Store) CreateAppender(suiteID string) (*Appender, error) {
	path, err := s.LogFilePath(suiteID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return &Appender{path: path, f: f}, nil
}

// GetLog returns a streaming reader over the suite's current log file.
// Returns ErrNotFound if the suite has no current log.
func (s *Store) GetLog(ctx context.Context, suiteID string) (io.ReadCloser, error) {
	path, err := s.LogFilePath(suiteID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

// GetJobLog returns a streaming reader over the lines of the suite log that
// belong to one job, identified by a "jobID:" line prefix. An empty jobID
// returns the full suite log. Returns ErrNotFound if the suite has no log.
func (s *Store) GetJobLog(ctx context.Context, suiteID, jobID string) (io.ReadCloser, error) {
	if jobID == "" {
		return s.GetLog(ctx, suiteID)
	}
	full, err := s.GetLog(ctx, suiteID)
	if err != nil {
		return nil, err
	}
	prefix := jobID + ":"
	return NewLineFilterReader(full, func(line string) bool {
		return strings.HasPrefix(line, prefix)
	}), nil
}

// Backup moves the suite's current log into the archive, partitioned by the
// calendar date of when: {backup}/YYYY/MM/DD/logs/{stamp}__{suite}.log.
// A suite with no current log is a no-op and returns an empty path. The
// archive entry is recorded in the attached catalog, if any.
func (s *Store) Backup(ctx context.Context, suiteID string, when time.Time) (string, error) {
	src, err := s.LogFilePath(suiteID)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", nil // nothing to back up
		}
		return "", fmt.Errorf("stat log file %s: %w", src, err)
	}

	_, backupRoot, err := s.resolve()
	if err != nil {
		return "", err
	}
	dateDir := filepath.Join(backupRoot,
		when.Format("2006"), when.Format("01"), when.Format("02"), "logs")
	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory %s: %w", dateDir, err)
	}

	stamp := when.Format(backupStampLayout) +
		fmt.Sprintf("%04d", when.Nanosecond()/int(time.Millisecond))
	dst := filepath.Join(dateDir, stamp+"__"+SafeFileName(suiteID)+logSuffix)
	if err := moveFile(src, dst); err != nil {
		return "", err
	}

	s.mu.Lock()
	catalog := s.catalog
	s.mu.Unlock()
	if catalog != nil {
		entry := &BackupEntry{SuiteID: suiteID, Stamp: when, Path: dst}
		if err := catalog.Record(ctx, entry); err != nil {
			// The archive itself succeeded; the catalog is advisory.
			s.log.Warn("failed to record backup", "suite_id", suiteID, "error", err)
		}
	}

	s.log.Debug("backed up suite log", "suite_id", suiteID, "path", dst)
	return dst, nil
}

// Equal reports whether both stores are configured with the same base
// directory. Derived paths are not compared.
func (s *Store) Equal(other *Store) bool {
	if other == nil {
		return false
	}
	return s.LogDir() == other.LogDir()
}

func (s *Store) String() string {
	return fmt.Sprintf("logstore.Store(logdir=%s)", s.LogDir())
}

// moveFile renames src to dst, falling back to copy-then-delete when the
// rename fails (e.g. across volumes). The copy is verified by size before
// the source is removed.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if n != info.Size() {
		os.Remove(dst)
		return fmt.Errorf("copy %s to %s: wrote %d of %d bytes", src, dst, n, info.Size())
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", src, err)
	}
	return nil
}
