package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/server"
	"github.com/1F47E/golf-hole-mapper/pkg/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve course search, saved holes and the pin index over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	docs, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer docs.Close()

	client, cleanup := e.searchClient()
	defer cleanup()

	pins, err := loadIndex(indexFile)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: e.cfg.HTTPAddr,
		Handler: server.New(server.Deps{
			Search:  client,
			Gateway: store.NewGateway(docs, e.log),
			Index:   pins,
			Log:     e.log,
		}).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("http_listen", "addr", srv.Addr, "pins", pins.Count())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.log.Warn("http_shutdown_failed", "err", err)
	}
	if err := pins.SaveToFile(indexFile); err != nil {
		e.log.Warn("index_save_failed", "file", indexFile, "err", err)
	}
	e.log.Info("http_stopped")
	return nil
}
