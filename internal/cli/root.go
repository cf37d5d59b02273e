// Package cli implements the notevault command tree.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/atarasov/NoteVault/internal/config"
	"github.com/atarasov/NoteVault/internal/kv"
)

var (
	version   string
	buildDate string

	opts = config.New()
)

var rootCmd = &cobra.Command{
	Use:           "notevault",
	Short:         "Password-encrypted note vault",
	Long:          "NoteVault keeps notes encrypted at rest under a password-derived key.\nNotes written under one password are invisible under another and reappear\nwhen the original password is entered again.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.Addr, "addr", "a", opts.Addr, "listen address for the HTTP API (ip:port)")
	pf.StringVarP(&opts.Storage, "storage", "s", opts.Storage, "persistence backend: file, badger, or postgres")
	pf.StringVarP(&opts.DataDir, "data-dir", "p", opts.DataDir, "data directory for the file and badger backends")
	pf.StringVarP(&opts.DatabaseDSN, "dsn", "d", opts.DatabaseDSN, "Postgres connection string for the postgres backend")
	pf.IntVarP(&opts.Iterations, "iterations", "i", opts.Iterations, "PBKDF2 iteration count")
	pf.StringVarP(&opts.LogLevel, "log-level", "l", opts.LogLevel, "log level: debug, info, warn, or error")
	pf.StringVarP(&opts.Config, "config", "c", opts.Config, "path to JSON config file")
}

// Execute runs the command tree. Build metadata arrives from main via
// ldflags.
func Execute(ver, date string) error {
	version, buildDate = ver, date
	return rootCmd.Execute()
}

// openStore builds the configured persistence backend. The returned closer
// is nil for backends without shutdown needs.
func openStore(opts *config.Options) (kv.Store, func() error, error) {
	switch opts.Storage {
	case config.StorageFile:
		fs, err := kv.NewFileStore(opts.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	case config.StorageBadger:
		bs, err := kv.NewBadgerStore(filepath.Join(opts.DataDir, "badger"))
		if err != nil {
			return nil, nil, err
		}
		return bs, bs.Close, nil
	case config.StoragePostgres:
		ps, err := kv.NewPostgresStore(opts.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return ps, ps.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", opts.Storage)
	}
}
