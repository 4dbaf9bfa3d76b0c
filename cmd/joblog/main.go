package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ehrlich-b/joblog/internal/cli"
	"github.com/ehrlich-b/joblog/internal/config"
	"github.com/ehrlich-b/joblog/internal/logstore"
	"github.com/ehrlich-b/joblog/internal/version"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "joblog",
		Short:   "File-system log store for job suites",
		Version: version.Version,
	}
	rootCmd.PersistentFlags().String("log-dir", "", "Base log directory (overrides config file)")

	rootCmd.AddCommand(
		pathCmd(),
		catCmd(),
		backupCmd(),
		backupsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newStore builds a store from --log-dir, a config file in the working
// directory, or the default location, in that order.
func newStore(cmd *cobra.Command) (*logstore.Store, error) {
	logDir, _ := cmd.Flags().GetString("log-dir")
	if logDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		cfg, _, err := config.Load(cwd)
		if err != nil && !errors.Is(err, config.ErrNoConfig) {
			return nil, err
		}
		if cfg != nil {
			logDir = cfg.LogDir
		}
	}
	return logstore.New(logDir, logstore.DefaultLogDir(), slog.Default()), nil
}

func pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <suite>",
		Short: "Print the current log file path for a suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(cmd)
			if err != nil {
				return err
			}
			return cli.Path(store, args[0], cmd.OutOrStdout())
		},
	}
}

func catCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat <suite>",
		Short: "Print a suite's current log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(cmd)
			if err != nil {
				return err
			}
			jobID, _ := cmd.Flags().GetString("job")
			return cli.Cat(cmd.Context(), store, args[0], jobID, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("job", "", "Only print lines for this job id")
	return cmd
}

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup <suite>",
		Short: "Move a suite's current log into the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(cmd)
			if err != nil {
				return err
			}
			when := time.Now()
			if at, _ := cmd.Flags().GetString("at"); at != "" {
				when, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at timestamp: %w", err)
				}
			}

			catalog, err := openCatalog(store)
			if err != nil {
				return err
			}
			defer catalog.Close()
			store.SetCatalog(catalog)

			return cli.Backup(cmd.Context(), store, args[0], when, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("at", "", "Backup timestamp (RFC3339, default: now)")
	return cmd
}

func backupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups [suite]",
		Short: "List recorded backups",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(cmd)
			if err != nil {
				return err
			}
			suiteID := ""
			if len(args) == 1 {
				suiteID = args[0]
			}

			catalog, err := openCatalog(store)
			if err != nil {
				return err
			}
			defer catalog.Close()

			return cli.ListBackups(cmd.Context(), catalog, suiteID, cmd.OutOrStdout())
		},
	}
	return cmd
}

// openCatalog opens the backup catalog kept at the root of the backup tree.
func openCatalog(store *logstore.Store) (*logstore.Catalog, error) {
	root, err := store.BackupRoot()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create backup directory %s: %w", root, err)
	}
	return logstore.OpenCatalog(filepath.Join(root, "catalog.db"))
}
