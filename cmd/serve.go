package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/brurucy/ernst/internal/server"
	"github.com/brurucy/ernst/internal/store"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveDataDir string
	serveBadger  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the annealing job server",
	Long: `Starts an HTTP server that accepts annealing jobs, streams their
progress over SSE, and persists checkpoints so jobs survive restarts.
Checkpoints go to plain JSON files by default; --badger switches to an
embedded Badger database under the data directory.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Base directory for checkpoints and traces")
	serveCmd.Flags().BoolVar(&serveBadger, "badger", false, "Store checkpoints in an embedded Badger database")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	checkpointStore, err := openStore(serveDataDir, serveBadger)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint store: %w", err)
	}
	defer checkpointStore.Close()

	srv := server.NewServer(serveAddr, checkpointStore, serveDataDir)

	// Serve until interrupted, then drain in-flight requests.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// openStore picks the checkpoint backend. Badger keeps everything in one
// embedded database; the default filesystem store writes one JSON file
// per job, which is easier to inspect by hand.
func openStore(dataDir string, useBadger bool) (store.Store, error) {
	if useBadger {
		return store.NewBadgerStore(filepath.Join(dataDir, "badger"))
	}
	return store.NewFSStore(dataDir)
}
