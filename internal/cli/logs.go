// Package cli implements the joblog command logic.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ehrlich-b/joblog/internal/logstore"
)

// Path prints the current log file path for a suite.
func Path(store *logstore.Store, suiteID string, out io.Writer) error {
	path, err := store.LogFilePath(suiteID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, path)
	return nil
}

// Cat streams a suite's current log to out. A non-empty jobID restricts the
// output to that job's lines.
func Cat(ctx context.Context, store *logstore.Store, suiteID, jobID string, out io.Writer) error {
	rc, err := store.GetJobLog(ctx, suiteID, jobID)
	if err != nil {
		if errors.Is(err, logstore.ErrNotFound) {
			return fmt.Errorf("no current log for suite %s", suiteID)
		}
		return err
	}
	defer rc.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	return nil
}

// Backup archives a suite's current log with the given timestamp and prints
// the archive path, or a notice when the suite has nothing to back up.
func Backup(ctx context.Context, store *logstore.Store, suiteID string, when time.Time, out io.Writer) error {
	dst, err := store.Backup(ctx, suiteID, when)
	if err != nil {
		return err
	}
	if dst == "" {
		fmt.Fprintf(out, "suite %s has no current log, nothing to back up\n", suiteID)
		return nil
	}
	fmt.Fprintln(out, dst)
	return nil
}

// ListBackups prints catalog entries, oldest first. An empty suiteID lists
// backups for all suites.
func ListBackups(ctx context.Context, catalog *logstore.Catalog, suiteID string, out io.Writer) error {
	entries, err := catalog.List(ctx, suiteID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no backups recorded")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %s  %s\n",
			e.Stamp.UTC().Format(time.RFC3339), e.SuiteID, e.Path)
	}
	return nil
}
