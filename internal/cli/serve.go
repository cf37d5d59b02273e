package cli

import (
	nethttp "net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atarasov/NoteVault/internal/config"
	"github.com/atarasov/NoteVault/internal/logger"
	"github.com/atarasov/NoteVault/internal/server/handler/http"
	"github.com/atarasov/NoteVault/internal/store"
	"github.com/atarasov/NoteVault/internal/vault"
	"github.com/atarasov/NoteVault/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the vault over a local HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, err := config.Resolve(opts)
		if err != nil {
			return err
		}

		log := logger.New()
		if err := log.Init(resolved.LogLevel); err != nil {
			return err
		}
		defer func() { _ = log.Log.Sync() }()
		zapLogger := log.Log

		st, closeStore, err := openStore(resolved)
		if err != nil {
			zapLogger.Error("cannot open storage", zap.Error(err))
			return err
		}
		if closeStore != nil {
			defer func() { _ = closeStore() }()
		}

		pool := worker.NewPool(0)
		defer pool.Close()

		v, err := vault.New(cmd.Context(), store.New(st), pool, resolved.Iterations, zapLogger)
		if err != nil {
			zapLogger.Error("cannot init vault", zap.Error(err))
			return err
		}

		// Mirror state changes into the log; any presentation layer can
		// subscribe the same way.
		events := v.Subscribe()
		go func() {
			for e := range events {
				zapLogger.Info("vault changed",
					zap.String("op", string(e.Op)),
					zap.String("note_id", e.NoteID),
				)
			}
		}()

		router := http.NewRouter(&http.NotesHandler{Vault: v}, zapLogger)

		zapLogger.Info("starting HTTP server",
			zap.String("addr", resolved.Addr),
			zap.String("storage", resolved.Storage),
		)
		if err := nethttp.ListenAndServe(resolved.Addr, router); err != nil {
			zapLogger.Error("HTTP server failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
