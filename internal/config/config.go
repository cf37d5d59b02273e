// Package config provides configuration for the vault binaries from
// command-line flags, environment variables, and an optional JSON file.
// Precedence, lowest to highest: defaults, flags already bound by the CLI,
// config file, environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Storage backend names accepted by Options.Storage.
const (
	StorageFile     = "file"
	StorageBadger   = "badger"
	StoragePostgres = "postgres"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr is the listen address (ip:port) for the local HTTP API.
	Addr string `json:"addr"`

	// Storage selects the persistence backend: file, badger, or postgres.
	Storage string `json:"storage"`

	// DataDir is the data directory used by the file and badger backends.
	DataDir string `json:"data_dir"`

	// DatabaseDSN is the connection string for the postgres backend.
	DatabaseDSN string `json:"database_dsn"`

	// Iterations is the PBKDF2 iteration count for key derivation. It is a
	// hardening knob: existing notes stay readable only under the count they
	// were written with.
	Iterations int `json:"iterations"`

	// LogLevel sets the zap log level.
	LogLevel string `json:"log_level"`

	// Config is the path to the JSON config file.
	Config string `json:"-"`
}

// New returns Options preloaded with defaults, ready for flag binding.
func New() *Options {
	return &Options{
		Addr:       "localhost:8080",
		Storage:    StorageFile,
		DataDir:    ".notevault",
		Iterations: 1000,
		LogLevel:   "info",
	}
}

// Resolve applies the config file (if present) and environment-variable
// overrides on top of the current values, then validates the result.
func Resolve(opts *Options) (*Options, error) {
	if path := os.Getenv("CONFIG"); path != "" {
		opts.Config = path
	}
	if opts.Config != "" {
		if _, err := os.Stat(opts.Config); err == nil {
			data, err := os.ReadFile(opts.Config)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := json.Unmarshal(data, opts); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		opts.Addr = addr
	}
	if storage := os.Getenv("STORAGE"); storage != "" {
		opts.Storage = storage
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		opts.DataDir = dir
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		opts.DatabaseDSN = dsn
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		opts.LogLevel = level
	}
	if iters := os.Getenv("PBKDF2_ITERATIONS"); iters != "" {
		n, err := strconv.Atoi(iters)
		if err != nil {
			return nil, fmt.Errorf("parse PBKDF2_ITERATIONS: %w", err)
		}
		opts.Iterations = n
	}

	switch opts.Storage {
	case StorageFile, StorageBadger, StoragePostgres:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Storage)
	}
	if opts.Storage == StoragePostgres && opts.DatabaseDSN == "" {
		return nil, fmt.Errorf("postgres backend requires a database DSN")
	}
	if opts.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be positive, got %d", opts.Iterations)
	}

	return opts, nil
}
