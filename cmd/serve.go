package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dressi-app/dressi/internal/auth"
	"github.com/dressi-app/dressi/internal/curated"
	"github.com/dressi-app/dressi/internal/handlers"
	"github.com/dressi-app/dressi/internal/images"
	"github.com/dressi-app/dressi/internal/notify"
	"github.com/dressi-app/dressi/internal/swipe"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local web service hosting swipe sessions",
		Long: `Starts a local JSON web service on the specified port.

Clients start swipe sessions from quiz answers, like or pass on outfits,
and save the curated looks to the signed-in user's wardrobe. Session state
lives in memory; liked outfits and saved wardrobe keys are kept in the
local store so the CLI sees them too.`,
		Example: `  # Start server on the configured port (default 8888)
  dressi serve

  # Start server on custom port
  dressi serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = a.cfg.Port
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if err := store.Watch(ctx); err != nil {
				slog.Warn("Changes from other processes will not be picked up", "err", err)
			}

			client := a.client()
			banner := notify.New(notify.DefaultDelay)
			tracker := curated.NewTracker(store, client, func() string {
				if u := auth.Load(store); u != nil {
					return u.Token
				}
				return ""
			}, banner)
			tracker.Follow(ctx)
			defer tracker.Close()

			var prefetcher swipe.Prefetcher
			if a.cfg.ImageCacheDir != "" {
				prefetcher = images.NewFetcher(a.cfg.ImageCacheDir)
			}

			handler := handlers.New(handlers.Options{
				Fetcher:    client,
				Store:      store,
				Tracker:    tracker,
				Banner:     banner,
				Prefetcher: prefetcher,
				ImageDir:   a.cfg.ImageCacheDir,
				Queue:      a.cfg.Swipe.QueueOptions(),
				UseWeather: a.cfg.Swipe.UseWeather,
			})
			defer handler.Close()

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Dressi service available", "addr", addr, "url", "http://localhost"+addr, "backend", a.cfg.APIBaseURL)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-ctx.Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from config)")

	return cmd
}
